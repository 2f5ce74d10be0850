package mesh

import (
	"errors"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// tetra returns a closed, consistently wound tetrahedron.
func tetra() *Mesh {
	m := New()
	m.AppendVertex(v3.Vec{X: 0, Y: 0, Z: 0})
	m.AppendVertex(v3.Vec{X: 1, Y: 0, Z: 0})
	m.AppendVertex(v3.Vec{X: 0, Y: 1, Z: 0})
	m.AppendVertex(v3.Vec{X: 0, Y: 0, Z: 1})
	for _, p := range []Polygon{{0, 2, 1}, {0, 1, 3}, {1, 2, 3}, {2, 0, 3}} {
		if err := m.AppendPolygon(p...); err != nil {
			panic(err)
		}
	}
	return m
}

func TestAppendVertexReturnsStableIndex(t *testing.T) {
	m := New()
	for i := 0; i < 5; i++ {
		if got := m.AppendVertex(v3.Vec{X: float64(i)}); got != i {
			t.Fatalf("AppendVertex #%d returned %d", i, got)
		}
	}
	if m.VertexCount() != 5 {
		t.Errorf("VertexCount() = %d, want 5", m.VertexCount())
	}
	v, err := m.VertexAt(3)
	if err != nil {
		t.Fatalf("VertexAt(3): %v", err)
	}
	if v.X != 3 {
		t.Errorf("VertexAt(3).X = %v, want 3", v.X)
	}
}

func TestAppendPolygonRejectsForwardReference(t *testing.T) {
	m := New()
	m.AppendVertex(v3.Vec{})
	m.AppendVertex(v3.Vec{X: 1})

	err := m.AppendPolygon(0, 1, 2)
	if !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("AppendPolygon(0,1,2) error = %v, want ErrIndexOutOfRange", err)
	}
	var ie *IndexError
	if !errors.As(err, &ie) {
		t.Fatalf("error %T is not *IndexError", err)
	}
	if ie.Index != 2 || ie.Count != 2 {
		t.Errorf("IndexError = %+v, want Index=2 Count=2", ie)
	}
	if m.PolygonCount() != 0 {
		t.Errorf("rejected polygon was appended")
	}
}

func TestAppendPolygonArity(t *testing.T) {
	m := New()
	for i := 0; i < 5; i++ {
		m.AppendVertex(v3.Vec{X: float64(i)})
	}
	tests := []struct {
		name string
		idx  []int
		ok   bool
	}{
		{"two", []int{0, 1}, false},
		{"triangle", []int{0, 1, 2}, true},
		{"quad", []int{0, 1, 2, 3}, true},
		{"pentagon", []int{0, 1, 2, 3, 4}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := m.AppendPolygon(tt.idx...)
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrPolygonArity) {
				t.Errorf("error = %v, want ErrPolygonArity", err)
			}
		})
	}
}

func TestAppendPolygonCopiesIndices(t *testing.T) {
	m := New()
	for i := 0; i < 3; i++ {
		m.AppendVertex(v3.Vec{})
	}
	idx := []int{0, 1, 2}
	if err := m.AppendPolygon(idx...); err != nil {
		t.Fatal(err)
	}
	idx[0] = 2
	if m.Polygons[0][0] != 0 {
		t.Error("mesh polygon aliases the caller's slice")
	}
}

func TestVertexAtOutOfRange(t *testing.T) {
	m := New()
	if _, err := m.VertexAt(0); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("VertexAt(0) on empty mesh: %v", err)
	}
	if _, err := m.VertexAt(-1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("VertexAt(-1): %v", err)
	}
}

func TestTriangleCountAndBounds(t *testing.T) {
	m := New()
	m.AppendVertex(v3.Vec{X: -1, Y: 0, Z: 2})
	m.AppendVertex(v3.Vec{X: 1, Y: 0, Z: 2})
	m.AppendVertex(v3.Vec{X: 1, Y: 3, Z: -2})
	m.AppendVertex(v3.Vec{X: -1, Y: 3, Z: -2})
	if err := m.AppendPolygon(0, 1, 2, 3); err != nil {
		t.Fatal(err)
	}
	if err := m.AppendPolygon(0, 1, 2); err != nil {
		t.Fatal(err)
	}
	if got := m.TriangleCount(); got != 3 {
		t.Errorf("TriangleCount() = %d, want 3", got)
	}
	min, max := m.Bounds()
	if min != (v3.Vec{X: -1, Y: 0, Z: -2}) {
		t.Errorf("min = %v", min)
	}
	if max != (v3.Vec{X: 1, Y: 3, Z: 2}) {
		t.Errorf("max = %v", max)
	}
}

func TestMeshIsEmpty(t *testing.T) {
	if !New().IsEmpty() {
		t.Error("IsEmpty() = false for new mesh")
	}
	if tetra().IsEmpty() {
		t.Error("IsEmpty() = true for tetrahedron")
	}
}

// ---------------------------------------------------------------------------
// Check
// ---------------------------------------------------------------------------

func TestCheckClosedTetrahedron(t *testing.T) {
	rep := Check(tetra())
	if rep.Edges != 6 {
		t.Errorf("Edges = %d, want 6", rep.Edges)
	}
	if !rep.Watertight() {
		t.Errorf("tetrahedron not watertight: open=%v nonmanifold=%v", rep.Open, rep.NonManifold)
	}
	if !rep.Oriented() {
		t.Errorf("tetrahedron not oriented: %v", rep.Misoriented)
	}
}

func TestCheckOpenSurface(t *testing.T) {
	m := tetra()
	m.Polygons = m.Polygons[:3]
	rep := Check(m)
	if rep.Watertight() {
		t.Fatal("tetrahedron with a missing face reported watertight")
	}
	if len(rep.Open) != 3 {
		t.Errorf("open edges = %v, want 3", rep.Open)
	}
}

func TestCheckFlippedFace(t *testing.T) {
	m := tetra()
	m.Polygons[0] = Polygon{0, 1, 2}
	rep := Check(m)
	if !rep.Watertight() {
		t.Fatal("flipping a face must not open the surface")
	}
	if rep.Oriented() {
		t.Error("flipped face not detected")
	}
	if len(rep.Misoriented) != 3 {
		t.Errorf("misoriented = %v, want 3 edges", rep.Misoriented)
	}
}

func TestCheckNonManifoldAndDegenerate(t *testing.T) {
	m := tetra()
	m.Polygons = append(m.Polygons, Polygon{0, 2, 1}, Polygon{0, 0, 1})
	rep := Check(m)
	if len(rep.NonManifold) == 0 {
		t.Error("duplicated face should produce non-manifold edges")
	}
	if len(rep.Degenerate) != 1 || rep.Degenerate[0] != 5 {
		t.Errorf("Degenerate = %v, want [5]", rep.Degenerate)
	}
}

func TestRecorderForwardReferences(t *testing.T) {
	rec := NewRecorder(New())
	rec.AppendVertex(v3.Vec{})
	rec.AppendVertex(v3.Vec{})
	rec.AppendVertex(v3.Vec{})
	if err := rec.AppendPolygon(0, 1, 2); err != nil {
		t.Fatal(err)
	}
	if err := rec.AppendPolygon(1, 2, 3); err == nil {
		t.Fatal("expected forward reference error from wrapped mesh")
	}
	bad := rec.ForwardReferences()
	if len(bad) != 1 || bad[0] != 1 {
		t.Errorf("ForwardReferences() = %v, want [1]", bad)
	}
	if rec.CountAtAppend[0] != 3 {
		t.Errorf("CountAtAppend[0] = %d, want 3", rec.CountAtAppend[0])
	}
}
