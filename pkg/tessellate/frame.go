package tessellate

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Frame selects the output coordinate system.
//
// Placements in the design graph are expressed Z-up, the way CAD and slicer
// tools expect. Threads are built Y-up with clockwise front faces; the
// mapping into the design frame swaps Y and Z, which is a reflection and
// turns the winding counter-clockwise with outward normals.
type Frame int

const (
	// FrameYUp is the preview frame of the desktop viewer.
	FrameYUp Frame = iota
	// FrameZUp is the frame written to STL and 3MF files.
	FrameZUp
)

func (f Frame) String() string {
	switch f {
	case FrameYUp:
		return "y-up"
	case FrameZUp:
		return "z-up"
	default:
		return fmt.Sprintf("Frame(%d)", int(f))
	}
}

// ParseFrame accepts "y-up" or "z-up".
func ParseFrame(s string) (Frame, error) {
	switch s {
	case "y-up", "yup", "y":
		return FrameYUp, nil
	case "z-up", "zup", "z", "":
		return FrameZUp, nil
	}
	return FrameZUp, fmt.Errorf("tessellate: unknown frame %q", s)
}

// partToDesign maps a point from the thread builder frame into the Z-up
// design frame.
func partToDesign(v v3.Vec) v3.Vec {
	return v3.Vec{X: v.X, Y: v.Z, Z: v.Y}
}

// fromDesign maps a point from the design frame into f. Both maps are
// rotations, so the winding is preserved.
func (f Frame) fromDesign(v v3.Vec) v3.Vec {
	if f == FrameYUp {
		return v3.Vec{X: v.X, Y: v.Z, Z: -v.Y}
	}
	return v
}
