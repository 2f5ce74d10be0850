// Package mesh holds the append-only polygon mesh that the thread builder
// writes into. A vertex is identified by its position in the vertex list;
// indices are never reassigned and nothing is ever removed.
package mesh

import (
	"errors"
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ErrIndexOutOfRange reports a polygon or read-back that references a
// vertex which has not been appended yet.
var ErrIndexOutOfRange = errors.New("vertex index out of range")

// ErrPolygonArity reports a polygon that is neither a triangle nor a quad.
var ErrPolygonArity = errors.New("polygon must have 3 or 4 vertices")

// IndexError carries the offending index and the vertex count at the time
// of the failed operation. It unwraps to ErrIndexOutOfRange.
type IndexError struct {
	Index int
	Count int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("mesh: index %d with %d vertices: %v", e.Index, e.Count, ErrIndexOutOfRange)
}

func (e *IndexError) Unwrap() error { return ErrIndexOutOfRange }

// Sink accumulates vertices and polygons. The thread builder only appends,
// and only reads back vertices it has already appended.
type Sink interface {
	// AppendVertex appends a point and returns its stable index.
	AppendVertex(p v3.Vec) int
	// AppendPolygon appends a triangle or quad. Every index must already exist.
	AppendPolygon(idx ...int) error
	// VertexCount returns the number of appended vertices.
	VertexCount() int
	// VertexAt returns a previously appended vertex.
	VertexAt(i int) (v3.Vec, error)
}

// Polygon is an ordered list of 3 or 4 vertex indices.
type Polygon []int

// Mesh is the in-memory Sink implementation.
type Mesh struct {
	Vertices []v3.Vec  `json:"vertices"`
	Polygons []Polygon `json:"polygons"`
}

// Compile-time interface check.
var _ Sink = (*Mesh)(nil)

// New returns an empty mesh.
func New() *Mesh {
	return &Mesh{}
}

// AppendVertex appends p and returns its index.
func (m *Mesh) AppendVertex(p v3.Vec) int {
	m.Vertices = append(m.Vertices, p)
	return len(m.Vertices) - 1
}

// AppendPolygon appends a polygon after checking its arity and that it has
// no forward references. The index slice is copied.
func (m *Mesh) AppendPolygon(idx ...int) error {
	if len(idx) != 3 && len(idx) != 4 {
		return fmt.Errorf("mesh: %d indices: %w", len(idx), ErrPolygonArity)
	}
	n := len(m.Vertices)
	for _, i := range idx {
		if i < 0 || i >= n {
			return &IndexError{Index: i, Count: n}
		}
	}
	m.Polygons = append(m.Polygons, append(Polygon(nil), idx...))
	return nil
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// VertexAt returns vertex i.
func (m *Mesh) VertexAt(i int) (v3.Vec, error) {
	if i < 0 || i >= len(m.Vertices) {
		return v3.Vec{}, &IndexError{Index: i, Count: len(m.Vertices)}
	}
	return m.Vertices[i], nil
}

// PolygonCount returns the number of polygons.
func (m *Mesh) PolygonCount() int {
	return len(m.Polygons)
}

// TriangleCount returns the number of triangles after fan triangulation:
// one per triangle, two per quad.
func (m *Mesh) TriangleCount() int {
	n := 0
	for _, p := range m.Polygons {
		n += len(p) - 2
	}
	return n
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Bounds returns the axis-aligned bounding box of all vertices. An empty
// mesh has zero bounds.
func (m *Mesh) Bounds() (min, max v3.Vec) {
	if len(m.Vertices) == 0 {
		return v3.Vec{}, v3.Vec{}
	}
	min, max = m.Vertices[0], m.Vertices[0]
	for _, v := range m.Vertices[1:] {
		min = min.Min(v)
		max = max.Max(v)
	}
	return min, max
}
