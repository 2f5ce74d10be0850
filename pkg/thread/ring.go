package thread

import (
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// RingKind tells what a ring is used for.
type RingKind int

const (
	RingInner   RingKind = iota // ramped ring on the core radius
	RingOuter                   // ramped ring on the thread crest radius
	RingClosing                 // extra ramped core ring of the last turn
	RingFlat                    // planar ring of a lead cap
)

func (k RingKind) String() string {
	switch k {
	case RingInner:
		return "inner"
	case RingOuter:
		return "outer"
	case RingClosing:
		return "closing"
	case RingFlat:
		return "flat"
	default:
		return "unknown"
	}
}

// Ring describes a contiguous block of vertices, one per step around the
// axis. Stitching and seam closing address vertices only through rings.
type Ring struct {
	Start int
	Size  int
	Kind  RingKind
}

// At returns the vertex index of step i. Steps wrap around the ring.
func (r Ring) At(i int) int {
	i %= r.Size
	if i < 0 {
		i += r.Size
	}
	return r.Start + i
}

// Last returns the vertex index of the final step.
func (r Ring) Last() int {
	return r.Start + r.Size - 1
}

func (r Ring) String() string {
	return fmt.Sprintf("%s[%d:%d]", r.Kind, r.Start, r.Start+r.Size)
}

// ring appends one vertex per step. A ramped ring climbs span over the full
// turn, one step at a time; a flat ring sits at yStart+span.
func (b *builder) ring(kind RingKind, radius, yStart, span float64, ramp bool) Ring {
	steps := b.p.StepsPerTurn
	r := Ring{Start: -1, Size: steps, Kind: kind}
	for i := 0; i < steps; i++ {
		ang := 2 * math.Pi * float64(i) / float64(steps)
		y := yStart + span
		if ramp {
			y = yStart + span/float64(steps)*float64(i)
		}
		idx := b.vertex(v3.Vec{X: radius * math.Cos(ang), Y: y, Z: radius * math.Sin(ang)})
		if i == 0 {
			r.Start = idx
		}
	}
	return r
}
