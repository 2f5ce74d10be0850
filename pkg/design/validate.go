package design

import "fmt"

// Severity indicates whether a validation finding blocks tessellation or is
// merely informational.
type Severity int

const (
	SeverityError   Severity = iota // blocks tessellation
	SeverityWarning                 // informational
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// Finding describes a single validation result.
type Finding struct {
	NodeID   NodeID
	Message  string
	Severity Severity
}

func (f Finding) Error() string {
	if f.NodeID.IsZero() {
		return fmt.Sprintf("[%s] %s", f.Severity, f.Message)
	}
	return fmt.Sprintf("[%s] node %s: %s", f.Severity, f.NodeID.Short(), f.Message)
}

// Result separates blocking errors from warnings.
type Result struct {
	Errors   []Finding
	Warnings []Finding
}

// OK reports whether no blocking error was found.
func (r Result) OK() bool {
	return len(r.Errors) == 0
}

// Validate checks the graph structure and the parameters of every part.
// It is read-only.
func Validate(g *Graph) Result {
	var all []Finding
	all = append(all, validateDAG(g)...)
	all = append(all, validateReferences(g)...)
	all = append(all, validateRoots(g)...)
	all = append(all, validateParts(g)...)

	var res Result
	for _, f := range all {
		if f.Severity == SeverityWarning {
			res.Warnings = append(res.Warnings, f)
		} else {
			res.Errors = append(res.Errors, f)
		}
	}
	return res
}

// validateDAG checks for cycles using DFS with 3-color marking.
func validateDAG(g *Graph) []Finding {
	const (
		white = iota
		gray
		black
	)
	color := make(map[NodeID]int)
	var errs []Finding

	var visit func(id NodeID) bool
	visit = func(id NodeID) bool {
		switch color[id] {
		case black:
			return false
		case gray:
			errs = append(errs, Finding{
				NodeID:   id,
				Message:  fmt.Sprintf("cycle detected: node %s is part of a cycle", id.Short()),
				Severity: SeverityError,
			})
			return true
		}
		color[id] = gray
		node, ok := g.Nodes[id]
		if !ok {
			color[id] = black
			return false
		}
		for _, childID := range node.Children {
			if visit(childID) {
				return true
			}
		}
		color[id] = black
		return false
	}

	for _, id := range g.Order {
		if color[id] == white && visit(id) {
			break
		}
	}
	return errs
}

// validateReferences checks that every child reference resolves and that
// node payloads match their kind.
func validateReferences(g *Graph) []Finding {
	var errs []Finding
	for _, id := range g.Order {
		node := g.Nodes[id]
		for _, childID := range node.Children {
			if _, ok := g.Nodes[childID]; !ok {
				errs = append(errs, Finding{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("child reference %s does not exist", childID.Short()),
					Severity: SeverityError,
				})
			}
		}

		ok := true
		switch node.Kind {
		case NodePart:
			_, ok = node.Data.(PartData)
			if len(node.Children) > 0 {
				errs = append(errs, Finding{NodeID: node.ID, Message: "part has children", Severity: SeverityError})
			}
		case NodeTransform:
			_, ok = node.Data.(TransformData)
		case NodeGroup:
			_, ok = node.Data.(GroupData)
		}
		if !ok {
			errs = append(errs, Finding{
				NodeID:   node.ID,
				Message:  fmt.Sprintf("%s node has %T data", node.Kind, node.Data),
				Severity: SeverityError,
			})
		}
	}
	return errs
}

// validateRoots checks that roots exist and warns about nodes that no root
// reaches.
func validateRoots(g *Graph) []Finding {
	var errs []Finding
	reachable := make(map[NodeID]bool)
	var queue []NodeID
	for _, rid := range g.Roots {
		if _, ok := g.Nodes[rid]; !ok {
			errs = append(errs, Finding{
				Message:  fmt.Sprintf("root reference %s does not exist", rid.Short()),
				Severity: SeverityError,
			})
			continue
		}
		if !reachable[rid] {
			reachable[rid] = true
			queue = append(queue, rid)
		}
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, c := range g.Nodes[cur].Children {
			if _, ok := g.Nodes[c]; ok && !reachable[c] {
				reachable[c] = true
				queue = append(queue, c)
			}
		}
	}
	for _, id := range g.Order {
		if !reachable[id] {
			errs = append(errs, Finding{
				NodeID:   id,
				Message:  "node is not reachable from any root",
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}

// validateParts runs thread parameter validation on every part and turns
// parameter warnings into graph warnings.
func validateParts(g *Graph) []Finding {
	var out []Finding
	for _, n := range g.Parts() {
		pd, ok := n.Data.(PartData)
		if !ok {
			continue
		}
		if err := pd.Params.Validate(); err != nil {
			out = append(out, Finding{NodeID: n.ID, Message: err.Error(), Severity: SeverityError})
		}
		for _, w := range pd.Params.Warnings() {
			out = append(out, Finding{NodeID: n.ID, Message: w, Severity: SeverityWarning})
		}
	}
	return out
}
