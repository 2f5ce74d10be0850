package engine

import (
	"fmt"
	"strings"

	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/helix/pkg/design"
	"github.com/chazu/helix/pkg/params"
	"github.com/chazu/helix/pkg/thread"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource rewrites helix source into something zygomys reads:
//
//   - :keyword becomes the string literal "__kw_keyword", so keywords never
//     collide with user variables of the same name.
//   - lead-in becomes lead_in. zygomys reads a hyphen as subtraction, so a
//     hyphen between identifier characters is replaced.
//   - ; and ;; comments become // comments.
//
// String and backtick literals pass through untouched.
func preprocessSource(source string) string {
	sc := scanner{src: source}
	sc.out.Grow(len(source) + len(source)/4)
	for !sc.done() {
		switch c := sc.peek(0); {
		case c == '"':
			sc.copyQuoted('"', true)
		case c == '`':
			sc.copyQuoted('`', false)
		case c == ';':
			sc.comment()
		case c == ':' && sc.peek(1) == '=':
			sc.copyN(2)
		case c == ':' && isLetter(sc.peek(1)):
			sc.keyword()
		case c == '-' && sc.pos > 0 && isIdentChar(sc.src[sc.pos-1]) && isLetter(sc.peek(1)):
			sc.out.WriteByte('_')
			sc.pos++
		default:
			sc.copyN(1)
		}
	}
	return sc.out.String()
}

// scanner walks source bytes and accumulates the rewritten text.
type scanner struct {
	src string
	pos int
	out strings.Builder
}

func (sc *scanner) done() bool { return sc.pos >= len(sc.src) }

// peek returns the byte k positions ahead, or 0 past the end.
func (sc *scanner) peek(k int) byte {
	if sc.pos+k < len(sc.src) {
		return sc.src[sc.pos+k]
	}
	return 0
}

func (sc *scanner) copyN(n int) {
	end := min(sc.pos+n, len(sc.src))
	sc.out.WriteString(sc.src[sc.pos:end])
	sc.pos = end
}

// copyQuoted copies a literal delimited by q, including both delimiters.
// An unterminated literal runs to the end of the source.
func (sc *scanner) copyQuoted(q byte, escapes bool) {
	sc.copyN(1)
	for !sc.done() {
		switch c := sc.peek(0); {
		case c == q:
			sc.copyN(1)
			return
		case escapes && c == '\\':
			sc.copyN(2)
		default:
			sc.copyN(1)
		}
	}
}

func (sc *scanner) comment() {
	sc.out.WriteString("//")
	for sc.peek(0) == ';' {
		sc.pos++
	}
	for !sc.done() && sc.peek(0) != '\n' {
		sc.copyN(1)
	}
}

func (sc *scanner) keyword() {
	start := sc.pos + 1
	end := start
	for end < len(sc.src) && isKWChar(sc.src[end]) {
		end++
	}
	sc.out.WriteByte('"')
	sc.out.WriteString(kwPrefix)
	sc.out.WriteString(sc.src[start:end])
	sc.out.WriteByte('"')
	sc.pos = end
}

func isLetter(c byte) bool {
	return c|0x20 >= 'a' && c|0x20 <= 'z'
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentChar(c byte) bool { return isLetter(c) || isDigit(c) || c == '_' }

func isKWChar(c byte) bool { return isIdentChar(c) || c == '-' }

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpThread wraps a thread parameter set so it can be returned from
// `thread` and consumed by `defpart`.
type sexpThread struct {
	params thread.Params
}

func (s *sexpThread) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(thread r=%g/%g steps=%d turns=%d)",
		s.params.InnerRadius, s.params.OuterRadius, s.params.StepsPerTurn, s.params.Turns)
}
func (s *sexpThread) Type() *zygo.RegisteredType { return nil }

// sexpNodeRef wraps a design.NodeID so it can be passed between builtins.
type sexpNodeRef struct {
	id   design.NodeID
	name string // human-readable name for error messages
}

func (n *sexpNodeRef) SexpString(ps *zygo.PrintState) string {
	if n.name != "" {
		return fmt.Sprintf("(noderef %q)", n.name)
	}
	return fmt.Sprintf("(noderef %s)", n.id.Short())
}
func (n *sexpNodeRef) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a v3.Vec.
type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	order      []string // keywords in source order
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
// A keyword in value position (:direction :left) is taken as the value.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			i++
			continue
		}
		if _, seen := result.kw[name]; !seen {
			result.order = append(result.order, name)
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i += 2
		} else {
			// Keyword at end with no value: treat as flag with nil.
			result.kw[name] = zygo.SexpNull
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_left) and plain strings ("left").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toGoValue converts a scalar Sexp into the Go value pkg/params expects.
func toGoValue(s zygo.Sexp) (any, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	case *zygo.SexpBool:
		return v.Val, nil
	case *zygo.SexpStr:
		return toKeywordString(v)
	}
	return nil, fmt.Errorf("expected number, bool or keyword, got %T (%s)", s, s.SexpString(nil))
}

// toNodeRef extracts a NodeID from a sexpNodeRef.
func toNodeRef(s zygo.Sexp) (design.NodeID, error) {
	if ref, ok := s.(*sexpNodeRef); ok {
		return ref.id, nil
	}
	return design.ZeroID, fmt.Errorf("expected node reference, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts a v3.Vec from a sexpVec3.
func toVec3(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return v3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// ---------------------------------------------------------------------------
// Evaluation state
// ---------------------------------------------------------------------------

// evalState is shared by the builtins of one evaluation.
type evalState struct {
	graph    *design.Graph
	defaults thread.Params
	warnings []EvalWarning
	seq      int
}

// nextSuffix provides unique, evaluation-local suffixes for anonymous nodes.
// Being local to the evaluation keeps IDs stable across re-evaluations.
func (st *evalState) nextSuffix() string {
	st.seq++
	return fmt.Sprintf("#%d", st.seq)
}

func (st *evalState) warn(id design.NodeID, format string, args ...any) {
	st.warnings = append(st.warnings, EvalWarning{Message: fmt.Sprintf(format, args...), NodeID: id})
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs all helix DSL builtins into a zygomys environment.
// The builtins populate st.graph during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, st *evalState) {
	g := st.graph

	// -----------------------------------------------------------------------
	// (thread :inner-radius 1 :thread-radius 1.2 :steps 64 :turns 6
	//         :height 0.3 :lead 0.1 :lead-in true :lead-out true :direction :right)
	// -----------------------------------------------------------------------
	env.AddFunction("thread", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) > 0 {
			return zygo.SexpNull, fmt.Errorf("thread: unexpected positional argument %s", pa.positional[0].SexpString(nil))
		}

		p := st.defaults
		for _, key := range pa.order {
			v, err := toGoValue(pa.kw[key])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("thread: %s: %w", key, err)
			}
			clamped, err := params.Set(&p, key, v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("thread: %w", err)
			}
			if clamped {
				got, _ := params.Get(p, key)
				st.warn(design.ZeroID, "thread: %s %v out of range, clamped to %v", key, v, got)
			}
		}
		return &sexpThread{params: p}, nil
	})

	// -----------------------------------------------------------------------
	// (defpart "name" (thread ...))
	// -----------------------------------------------------------------------
	env.AddFunction("defpart", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return zygo.SexpNull, fmt.Errorf("defpart requires a name and a body expression")
		}

		partName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defpart: name: %w", err)
		}
		if g.Lookup(partName) != nil {
			return zygo.SexpNull, fmt.Errorf("defpart: %q is already defined", partName)
		}

		body, ok := args[1].(*sexpThread)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("defpart: expected thread expression, got %T", args[1])
		}

		id := design.NewNodeID("defpart/" + partName)
		g.AddNode(&design.Node{
			ID:   id,
			Kind: design.NodePart,
			Name: partName,
			Data: design.PartData{Params: body.params},
		})

		return &sexpNodeRef{id: id, name: partName}, nil
	})

	// -----------------------------------------------------------------------
	// (part "name")
	// -----------------------------------------------------------------------
	env.AddFunction("part", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("part requires a name argument")
		}

		partName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("part: name: %w", err)
		}

		n := g.Lookup(partName)
		if n == nil {
			return zygo.SexpNull, fmt.Errorf("part: no part named %q", partName)
		}

		return &sexpNodeRef{id: n.ID, name: partName}, nil
	})

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}

		var c [3]float64
		for i, axis := range []string{"x", "y", "z"} {
			f, err := toFloat64(args[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: %s: %w", axis, err)
			}
			c[i] = f
		}

		return &sexpVec3{vec: v3.Vec{X: c[0], Y: c[1], Z: c[2]}}, nil
	})

	// -----------------------------------------------------------------------
	// (place (part "m6") :at (vec3 0 0 10) :rotate (vec3 0 0 90))
	// -----------------------------------------------------------------------
	env.AddFunction("place", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("place requires a part reference as first argument")
		}

		childID, err := toNodeRef(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("place: part: %w", err)
		}

		td := design.TransformData{}
		if v, ok := pa.kw["at"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("place: at: %w", err)
			}
			td.Translation = &vec
		}
		if v, ok := pa.kw["rotate"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("place: rotate: %w", err)
			}
			td.Rotation = &vec
		}

		idPath := "place/" + childID.Short() + st.nextSuffix()
		if child := g.Get(childID); child != nil && child.Name != "" {
			idPath = "place/" + child.Name + st.nextSuffix()
		}
		id := design.NewNodeID(idPath)

		g.AddNode(&design.Node{
			ID:       id,
			Kind:     design.NodeTransform,
			Children: []design.NodeID{childID},
			Data:     td,
		})

		return &sexpNodeRef{id: id}, nil
	})

	// -----------------------------------------------------------------------
	// (assembly "name" (place ...) (place ...) ...)
	// -----------------------------------------------------------------------
	env.AddFunction("assembly", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("assembly requires a name argument")
		}

		asmName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("assembly: name: %w", err)
		}

		var children []design.NodeID
		for i := 1; i < len(args); i++ {
			if ref, ok := args[i].(*sexpNodeRef); ok {
				children = append(children, ref.id)
				continue
			}
			// A list of references, e.g. built with map.
			items, err := sexpListToSlice(args[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("assembly: child %d: expected node reference, got %T (%s)",
					i, args[i], args[i].SexpString(nil))
			}
			for _, item := range items {
				id, err := toNodeRef(item)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("assembly: child %d: %w", i, err)
				}
				children = append(children, id)
			}
		}
		if len(children) == 0 {
			st.warn(design.ZeroID, "assembly %q is empty", asmName)
		}

		id := design.NewNodeID("assembly/" + asmName)
		g.AddNode(&design.Node{
			ID:       id,
			Kind:     design.NodeGroup,
			Name:     asmName,
			Children: children,
			Data:     design.GroupData{},
		})
		g.AddRoot(id)

		return &sexpNodeRef{id: id, name: asmName}, nil
	})
}
