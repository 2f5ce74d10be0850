package thread

import (
	"errors"
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/helix/pkg/mesh"
)

// ErrNilSink is returned by Build when no sink is given.
var ErrNilSink = errors.New("thread: nil sink")

// Phase is a stage of a build.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseBuildSides
	PhaseCloseGaps
	PhaseBuildLeadOut
	PhaseBuildLeadIn
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseBuildSides:
		return "build-sides"
	case PhaseCloseGaps:
		return "close-gaps"
	case PhaseBuildLeadOut:
		return "build-lead-out"
	case PhaseBuildLeadIn:
		return "build-lead-in"
	case PhaseDone:
		return "done"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Report summarises a build.
type Report struct {
	Vertices  int // vertices appended by this build
	Polygons  int // polygons appended by this build
	SideQuads int
	GapQuads  int
	LeadIn    LeadReport
	LeadOut   LeadReport
	Phases    []Phase
	Helix     Helix
}

// builder carries the state of one build. Errors are sticky: after the
// first failure every further vertex and polygon append is skipped.
type builder struct {
	p     Params
	sink  mesh.Sink
	rep   Report
	phase Phase
	err   error
}

func (b *builder) enter(ph Phase) {
	b.phase = ph
	b.rep.Phases = append(b.rep.Phases, ph)
}

func (b *builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// vertex appends p. After a failure it appends nothing and returns -1.
func (b *builder) vertex(p v3.Vec) int {
	if b.err != nil {
		return -1
	}
	b.rep.Vertices++
	return b.sink.AppendVertex(p)
}

// offsetVertex appends a copy of vertex i moved by dy along the axis.
func (b *builder) offsetVertex(i int, dy float64) int {
	p, err := b.sink.VertexAt(i)
	if err != nil {
		b.fail(fmt.Errorf("thread: %s: read back: %w", b.phase, err))
		return -1
	}
	p.Y += dy
	return b.vertex(p)
}

// poly appends a polygon and bumps count.
func (b *builder) poly(count *int, idx ...int) {
	if b.err != nil {
		return
	}
	if err := b.sink.AppendPolygon(idx...); err != nil {
		b.fail(fmt.Errorf("thread: %s: %w", b.phase, err))
		return
	}
	b.rep.Polygons++
	*count++
}

// Build validates p and appends the thread mesh to sink. Invalid parameters
// are reported before anything is appended. The sink does not need to be
// empty; the thread's vertices follow whatever it already holds.
func Build(p Params, sink mesh.Sink) (Report, error) {
	if sink == nil {
		return Report{}, ErrNilSink
	}
	if err := p.Validate(); err != nil {
		return Report{}, err
	}
	if p.Direction == LeftHand {
		sink = mirrorSink{Sink: sink}
	}

	b := &builder{p: p, sink: sink}
	b.rep.Phases = append(b.rep.Phases, PhaseIdle)

	b.enter(PhaseBuildSides)
	hx := b.buildSides()
	b.rep.Helix = hx

	b.enter(PhaseCloseGaps)
	b.closeGaps(hx)

	if p.LeadOut {
		b.enter(PhaseBuildLeadOut)
		b.leadOut(hx)
	}
	if p.LeadIn {
		b.enter(PhaseBuildLeadIn)
		b.leadIn(hx)
	}
	if b.err != nil {
		return b.rep, b.err
	}
	b.enter(PhaseDone)
	return b.rep, nil
}

// Generate builds p into a fresh mesh.
func Generate(p Params) (*mesh.Mesh, Report, error) {
	m := mesh.New()
	rep, err := Build(p, m)
	if err != nil {
		return nil, rep, err
	}
	return m, rep, nil
}
