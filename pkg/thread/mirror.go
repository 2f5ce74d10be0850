package thread

import (
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/helix/pkg/mesh"
)

// mirrorSink reflects everything the builder appends through the XY plane,
// turning a right-hand thread into a left-hand one. Polygons keep their first
// vertex and reverse the rest, which flips the winding without moving the
// fan diagonal of a quad. Read-backs are reflected again so the builder only
// ever sees its own frame.
type mirrorSink struct {
	mesh.Sink
}

func mirror(p v3.Vec) v3.Vec {
	return v3.Vec{X: p.X, Y: p.Y, Z: -p.Z}
}

func (m mirrorSink) AppendVertex(p v3.Vec) int {
	return m.Sink.AppendVertex(mirror(p))
}

func (m mirrorSink) AppendPolygon(idx ...int) error {
	rev := make([]int, len(idx))
	for i, v := range idx {
		rev[(len(idx)-i)%len(idx)] = v
	}
	return m.Sink.AppendPolygon(rev...)
}

func (m mirrorSink) VertexAt(i int) (v3.Vec, error) {
	p, err := m.Sink.VertexAt(i)
	if err != nil {
		return p, err
	}
	return mirror(p), nil
}
