package design

// Graph is the top-level immutable data structure produced by evaluation.
// It is never mutated after evaluation returns.
type Graph struct {
	Nodes     map[NodeID]*Node  `json:"nodes"`
	Roots     []NodeID          `json:"roots"`
	NameIndex map[string]NodeID `json:"name_index"`
	// Order lists node IDs in insertion order so that traversals which do
	// not start from a root are deterministic.
	Order   []NodeID `json:"order"`
	Version uint64   `json:"version"`
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		Nodes:     make(map[NodeID]*Node),
		NameIndex: make(map[string]NodeID),
	}
}

// AddNode adds a node to the graph. A node with an existing ID replaces the
// previous one but keeps its position in Order.
func (g *Graph) AddNode(n *Node) {
	if _, ok := g.Nodes[n.ID]; !ok {
		g.Order = append(g.Order, n.ID)
	}
	g.Nodes[n.ID] = n
	if n.Name != "" {
		g.NameIndex[n.Name] = n.ID
	}
}

// AddRoot registers a node ID as a root of the graph. Duplicates are ignored.
func (g *Graph) AddRoot(id NodeID) {
	for _, r := range g.Roots {
		if r == id {
			return
		}
	}
	g.Roots = append(g.Roots, id)
}

// Lookup returns the node with the given user-assigned name, or nil.
func (g *Graph) Lookup(name string) *Node {
	id, ok := g.NameIndex[name]
	if !ok {
		return nil
	}
	return g.Nodes[id]
}

// Get returns the node with the given ID, or nil.
func (g *Graph) Get(id NodeID) *Node {
	return g.Nodes[id]
}

// Parts returns all part nodes in insertion order.
func (g *Graph) Parts() []*Node {
	var parts []*Node
	for _, id := range g.Order {
		if n := g.Nodes[id]; n.Kind == NodePart {
			parts = append(parts, n)
		}
	}
	return parts
}

// Children returns the child nodes of the given node.
func (g *Graph) Children(n *Node) []*Node {
	children := make([]*Node, 0, len(n.Children))
	for _, cid := range n.Children {
		if c := g.Nodes[cid]; c != nil {
			children = append(children, c)
		}
	}
	return children
}

// NodeCount returns the total number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.Nodes)
}

// PromoteUnreferenced makes every node that is neither a root nor the child
// of another node a root, in insertion order. A script that only defines
// parts therefore still renders them.
func (g *Graph) PromoteUnreferenced() {
	referenced := make(map[NodeID]bool)
	for _, n := range g.Nodes {
		for _, c := range n.Children {
			referenced[c] = true
		}
	}
	for _, id := range g.Order {
		if !referenced[id] {
			g.AddRoot(id)
		}
	}
}
