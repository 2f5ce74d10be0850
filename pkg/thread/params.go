package thread

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidParameter is wrapped by every ParamError.
var ErrInvalidParameter = errors.New("invalid parameter")

// ParamError reports a parameter that fails a structural precondition of
// the builder. It unwraps to ErrInvalidParameter.
type ParamError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("thread: %v: %s=%v %s", ErrInvalidParameter, e.Field, e.Value, e.Reason)
}

func (e *ParamError) Unwrap() error { return ErrInvalidParameter }

// Direction is the handedness of the thread.
type Direction int

const (
	RightHand Direction = iota
	LeftHand
)

func (d Direction) String() string {
	switch d {
	case RightHand:
		return "right"
	case LeftHand:
		return "left"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// ParseDirection accepts "right"/"left" in any case, and "r"/"l".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "right", "r", "":
		return RightHand, nil
	case "left", "l":
		return LeftHand, nil
	}
	return RightHand, &ParamError{Field: "direction", Value: s, Reason: "must be right or left"}
}

// MarshalText implements encoding.TextMarshaler.
func (d Direction) MarshalText() ([]byte, error) {
	if d != RightHand && d != LeftHand {
		return nil, &ParamError{Field: "direction", Value: int(d), Reason: "must be right or left"}
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Direction) UnmarshalText(text []byte) error {
	v, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Params is the complete, immutable input of a build. It is passed by value.
type Params struct {
	InnerRadius   float64   `yaml:"inner_radius" json:"innerRadius"`
	OuterRadius   float64   `yaml:"thread_radius" json:"threadRadius"`
	StepsPerTurn  int       `yaml:"steps" json:"steps"`
	Turns         int       `yaml:"turns" json:"turns"`
	HeightPerTurn float64   `yaml:"height" json:"height"`
	LeadLength    float64   `yaml:"lead" json:"lead"`
	LeadIn        bool      `yaml:"lead_in" json:"leadIn"`
	LeadOut       bool      `yaml:"lead_out" json:"leadOut"`
	Direction     Direction `yaml:"direction" json:"direction"`
}

// DefaultParams returns the default parameter set.
func DefaultParams() Params {
	return Params{
		InnerRadius:   1.0,
		OuterRadius:   1.2,
		StepsPerTurn:  64,
		Turns:         6,
		HeightPerTurn: 0.3,
		LeadLength:    0.1,
		LeadIn:        true,
		LeadOut:       true,
		Direction:     RightHand,
	}
}

// VerticalOffset is the height by which the helix is lifted to make room
// for the lead-in.
func (p Params) VerticalOffset() float64 {
	if p.LeadIn {
		return p.LeadLength
	}
	return 0
}

// Top is the largest y coordinate of the mesh: the lead-out lid or,
// without a lead-out, the last vertex of the closing ring.
func (p Params) Top() float64 {
	h := p.HeightPerTurn
	base := float64(p.Turns)*h + p.VerticalOffset()
	if p.LeadOut {
		return base + h + p.LeadLength
	}
	return base + h*float64(p.StepsPerTurn-1)/float64(p.StepsPerTurn)
}

// leadVertices is the number of vertices a lead adds: a flat ring, the seam
// midpoint and the lid center.
func (p Params) leadVertices() int {
	return p.StepsPerTurn + 2
}

// leadPolygons is the number of polygons a lead adds: the stitch strip with
// its split seam step, four seam polygons and the lid fan.
func (p Params) leadPolygons() int {
	return p.StepsPerTurn + 4 + p.StepsPerTurn
}

// VertexCount is the exact number of vertices Build appends for p.
func (p Params) VertexCount() int {
	n := p.StepsPerTurn * (2*p.Turns + 1)
	if p.LeadIn {
		n += p.leadVertices()
	}
	if p.LeadOut {
		n += p.leadVertices()
	}
	return n
}

// PolygonCount is the exact number of polygons Build appends for p.
func (p Params) PolygonCount() int {
	n := 2*p.Turns*(p.StepsPerTurn-1) + 2*(p.Turns-1)
	if p.LeadIn {
		n += p.leadPolygons()
	}
	if p.LeadOut {
		n += p.leadPolygons()
	}
	return n
}

// Validate checks the structural preconditions of the builder. All failing
// fields are reported; each error unwraps to ErrInvalidParameter.
func (p Params) Validate() error {
	var errs []error
	positive := func(field string, v float64) {
		switch {
		case math.IsNaN(v) || math.IsInf(v, 0):
			errs = append(errs, &ParamError{Field: field, Value: v, Reason: "must be finite"})
		case v <= 0:
			errs = append(errs, &ParamError{Field: field, Value: v, Reason: "must be positive"})
		}
	}

	positive("inner_radius", p.InnerRadius)
	positive("thread_radius", p.OuterRadius)
	positive("height", p.HeightPerTurn)

	if p.StepsPerTurn < 3 {
		errs = append(errs, &ParamError{Field: "steps", Value: p.StepsPerTurn, Reason: "must be at least 3"})
	}
	if p.Turns < 1 {
		errs = append(errs, &ParamError{Field: "turns", Value: p.Turns, Reason: "must be at least 1"})
	}
	switch {
	case math.IsNaN(p.LeadLength) || math.IsInf(p.LeadLength, 0):
		errs = append(errs, &ParamError{Field: "lead", Value: p.LeadLength, Reason: "must be finite"})
	case p.LeadLength < 0:
		errs = append(errs, &ParamError{Field: "lead", Value: p.LeadLength, Reason: "must not be negative"})
	}
	if p.Direction != RightHand && p.Direction != LeftHand {
		errs = append(errs, &ParamError{Field: "direction", Value: int(p.Direction), Reason: "must be right or left"})
	}
	return errors.Join(errs...)
}

// Warnings lists conditions that produce valid but questionable geometry.
// They never prevent a build.
func (p Params) Warnings() []string {
	var w []string
	if p.OuterRadius <= p.InnerRadius {
		w = append(w, fmt.Sprintf("thread radius %g does not exceed inner radius %g", p.OuterRadius, p.InnerRadius))
	}
	if (p.LeadIn || p.LeadOut) && p.LeadLength == 0 {
		w = append(w, "lead length is zero; the lid touches the thread")
	}
	if !p.LeadIn {
		w = append(w, "lead-in disabled; the bottom end is open")
	}
	if !p.LeadOut {
		w = append(w, "lead-out disabled; the top end is open")
	}
	return w
}
