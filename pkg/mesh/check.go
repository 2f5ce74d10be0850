package mesh

import "fmt"

// ---------------------------------------------------------------------------
// Topology checks
// ---------------------------------------------------------------------------

// Edge is an undirected edge with Lo < Hi.
type Edge struct {
	Lo, Hi int
}

func makeEdge(a, b int) Edge {
	if a > b {
		a, b = b, a
	}
	return Edge{Lo: a, Hi: b}
}

func (e Edge) String() string {
	return fmt.Sprintf("%d-%d", e.Lo, e.Hi)
}

// edgeUse counts how often an undirected edge is used, and how often in each
// direction. For a closed, consistently wound surface every edge is used
// exactly twice, once from Lo to Hi and once from Hi to Lo.
type edgeUse struct {
	total   int
	forward int // traversed Lo -> Hi
}

// Report summarises the topology of a mesh.
type Report struct {
	Edges int
	// Open edges are used by a single polygon.
	Open []Edge
	// NonManifold edges are used by more than two polygons.
	NonManifold []Edge
	// Misoriented edges are used twice but traversed in the same direction
	// by both polygons.
	Misoriented []Edge
	// Degenerate lists polygons that repeat a vertex index.
	Degenerate []int
}

// Watertight reports whether every edge borders exactly two polygons.
func (r Report) Watertight() bool {
	return len(r.Open) == 0 && len(r.NonManifold) == 0
}

// Oriented reports whether the mesh is watertight and every shared edge is
// traversed in opposite directions by its two polygons.
func (r Report) Oriented() bool {
	return r.Watertight() && len(r.Misoriented) == 0
}

// Check counts edge usage over all polygons. Edges are listed in the order in
// which they are first seen so that reports are deterministic.
func Check(m *Mesh) Report {
	use := make(map[Edge]*edgeUse)
	var order []Edge
	var rep Report

	for pi, p := range m.Polygons {
		if hasRepeat(p) {
			rep.Degenerate = append(rep.Degenerate, pi)
		}
		for j := range p {
			a, b := p[j], p[(j+1)%len(p)]
			e := makeEdge(a, b)
			u, ok := use[e]
			if !ok {
				u = &edgeUse{}
				use[e] = u
				order = append(order, e)
			}
			u.total++
			if a < b {
				u.forward++
			}
		}
	}

	rep.Edges = len(order)
	for _, e := range order {
		u := use[e]
		switch {
		case u.total == 1:
			rep.Open = append(rep.Open, e)
		case u.total > 2:
			rep.NonManifold = append(rep.NonManifold, e)
		case u.forward != 1:
			rep.Misoriented = append(rep.Misoriented, e)
		}
	}
	return rep
}

func hasRepeat(p Polygon) bool {
	for i := range p {
		for j := i + 1; j < len(p); j++ {
			if p[i] == p[j] {
				return true
			}
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Append auditing
// ---------------------------------------------------------------------------

// Recorder wraps a Sink and keeps, for every polygon, the vertex count at
// the moment it was appended. It lets callers verify the no-forward-reference
// invariant independently of the wrapped sink's own checks.
type Recorder struct {
	Sink
	// CountAtAppend[i] is the vertex count when polygon i was appended.
	CountAtAppend []int
	// Polygons is a copy of every polygon passed through, accepted or not.
	Polygons []Polygon
}

// NewRecorder wraps s.
func NewRecorder(s Sink) *Recorder {
	return &Recorder{Sink: s}
}

// AppendPolygon records the polygon, then forwards it.
func (r *Recorder) AppendPolygon(idx ...int) error {
	r.CountAtAppend = append(r.CountAtAppend, r.Sink.VertexCount())
	r.Polygons = append(r.Polygons, append(Polygon(nil), idx...))
	return r.Sink.AppendPolygon(idx...)
}

// ForwardReferences returns the positions of recorded polygons that
// referenced a vertex index not yet appended at the time.
func (r *Recorder) ForwardReferences() []int {
	var bad []int
	for i, p := range r.Polygons {
		for _, idx := range p {
			if idx < 0 || idx >= r.CountAtAppend[i] {
				bad = append(bad, i)
				break
			}
		}
	}
	return bad
}
