package tessellate

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Mesh is a triangle mesh suitable for rendering and export.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
// Triangles do not share vertices so that each carries its face normal.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	PartName string    `json:"partName"` // which design graph part this came from

	// Watertight is false when the part was built with an open end.
	Watertight bool `json:"watertight"`
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Vertex returns vertex i as a vector.
func (m *Mesh) Vertex(i int) v3.Vec {
	return v3.Vec{
		X: float64(m.Vertices[i*3]),
		Y: float64(m.Vertices[i*3+1]),
		Z: float64(m.Vertices[i*3+2]),
	}
}

// Triangle returns the corners of triangle i.
func (m *Mesh) Triangle(i int) [3]v3.Vec {
	return [3]v3.Vec{
		m.Vertex(int(m.Indices[i*3])),
		m.Vertex(int(m.Indices[i*3+1])),
		m.Vertex(int(m.Indices[i*3+2])),
	}
}

// Bounds returns the axis-aligned bounding box of the mesh.
func (m *Mesh) Bounds() (min, max v3.Vec) {
	if m.IsEmpty() {
		return v3.Vec{}, v3.Vec{}
	}
	min, max = m.Vertex(0), m.Vertex(0)
	for i := 1; i < m.VertexCount(); i++ {
		v := m.Vertex(i)
		min = min.Min(v)
		max = max.Max(v)
	}
	return min, max
}

// addTriangle appends one triangle with its face normal. Degenerate
// triangles get a zero normal.
func (m *Mesh) addTriangle(a, b, c v3.Vec) {
	n := b.Sub(a).Cross(c.Sub(a))
	if l := n.Length(); l > 0 && !math.IsInf(l, 0) {
		n = n.DivScalar(l)
	} else {
		n = v3.Vec{}
	}
	base := uint32(m.VertexCount())
	for _, v := range [3]v3.Vec{a, b, c} {
		m.Vertices = append(m.Vertices, float32(v.X), float32(v.Y), float32(v.Z))
		m.Normals = append(m.Normals, float32(n.X), float32(n.Y), float32(n.Z))
	}
	m.Indices = append(m.Indices, base, base+1, base+2)
}
