// Package params is the host-side registry of thread parameters: labels,
// script and file keys, defaults and slider ranges. Values set through it
// are clamped to the range, the way a UI slider would.
package params

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/helix/pkg/thread"
)

// ErrUnknownKey is returned for a key that names no parameter.
var ErrUnknownKey = errors.New("unknown parameter")

// ErrType is returned when a value cannot be converted to the parameter kind.
var ErrType = errors.New("wrong value type")

// Kind is the value type of a parameter.
type Kind int

const (
	KindFloat Kind = iota
	KindInt
	KindBool
	KindChoice
)

func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindInt:
		return "integer"
	case KindBool:
		return "bool"
	case KindChoice:
		return "choice"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Spec describes one parameter. Min and Max apply to numeric kinds only.
type Spec struct {
	Label   string
	Key     string
	Kind    Kind
	Default any
	Min     float64
	Max     float64
	Choices []string
}

var specs = []Spec{
	{Label: "Inner Radius", Key: "inner-radius", Kind: KindFloat, Default: 1.0, Min: 0.1, Max: 100},
	{Label: "Thread Radius", Key: "thread-radius", Kind: KindFloat, Default: 1.2, Min: 0.1, Max: 100},
	{Label: "Steps / Turn", Key: "steps", Kind: KindInt, Default: 64, Min: 10, Max: 500},
	{Label: "Turns", Key: "turns", Kind: KindInt, Default: 6, Min: 1, Max: 1000},
	{Label: "Height / Turn", Key: "height", Kind: KindFloat, Default: 0.3, Min: 0.01, Max: 100},
	{Label: "Lead length", Key: "lead", Kind: KindFloat, Default: 0.1, Min: 0.01, Max: 100},
	{Label: "Create Lead-Out", Key: "lead-out", Kind: KindBool, Default: true},
	{Label: "Create Lead-In", Key: "lead-in", Kind: KindBool, Default: true},
	{Label: "Direction", Key: "direction", Kind: KindChoice, Default: "right", Choices: []string{"right", "left"}},
}

// Specs returns the parameter table in display order.
func Specs() []Spec {
	out := make([]Spec, len(specs))
	copy(out, specs)
	return out
}

// Lookup returns the Spec for key.
func Lookup(key string) (Spec, bool) {
	for _, s := range specs {
		if s.Key == key {
			return s, true
		}
	}
	return Spec{}, false
}

// clamp limits v to [Min, Max].
func (s Spec) clamp(v float64) float64 {
	return math.Max(s.Min, math.Min(s.Max, v))
}

// Set converts value to the parameter kind, clamps numeric values into range
// and stores the result in p. It reports whether the value was clamped.
func Set(p *thread.Params, key string, value any) (clamped bool, err error) {
	s, ok := Lookup(key)
	if !ok {
		return false, fmt.Errorf("params: %q: %w", key, ErrUnknownKey)
	}

	switch s.Kind {
	case KindFloat, KindInt:
		f, err := toFloat(value)
		if err != nil {
			return false, fmt.Errorf("params: %s: %w", key, err)
		}
		if math.IsNaN(f) {
			return false, fmt.Errorf("params: %s: NaN: %w", key, ErrType)
		}
		if s.Kind == KindInt {
			f = math.Round(f)
		}
		c := s.clamp(f)
		clamped = c != f
		setNumber(p, key, c)
	case KindBool:
		b, ok := value.(bool)
		if !ok {
			return false, fmt.Errorf("params: %s: expected bool, got %T: %w", key, value, ErrType)
		}
		if key == "lead-in" {
			p.LeadIn = b
		} else {
			p.LeadOut = b
		}
	case KindChoice:
		str, ok := value.(string)
		if !ok {
			return false, fmt.Errorf("params: %s: expected string, got %T: %w", key, value, ErrType)
		}
		d, err := thread.ParseDirection(str)
		if err != nil {
			return false, fmt.Errorf("params: %s: %w", key, err)
		}
		p.Direction = d
	}
	return clamped, nil
}

func setNumber(p *thread.Params, key string, v float64) {
	switch key {
	case "inner-radius":
		p.InnerRadius = v
	case "thread-radius":
		p.OuterRadius = v
	case "steps":
		p.StepsPerTurn = int(v)
	case "turns":
		p.Turns = int(v)
	case "height":
		p.HeightPerTurn = v
	case "lead":
		p.LeadLength = v
	}
}

// Get returns the current value of key in p, in the kind's natural Go type.
func Get(p thread.Params, key string) (any, error) {
	switch key {
	case "inner-radius":
		return p.InnerRadius, nil
	case "thread-radius":
		return p.OuterRadius, nil
	case "steps":
		return p.StepsPerTurn, nil
	case "turns":
		return p.Turns, nil
	case "height":
		return p.HeightPerTurn, nil
	case "lead":
		return p.LeadLength, nil
	case "lead-out":
		return p.LeadOut, nil
	case "lead-in":
		return p.LeadIn, nil
	case "direction":
		return p.Direction.String(), nil
	}
	return nil, fmt.Errorf("params: %q: %w", key, ErrUnknownKey)
}

// Apply sets every entry of values on a copy of p. All entries are
// attempted; the returned list names the keys that were clamped.
func Apply(p thread.Params, values map[string]any) (thread.Params, []string, error) {
	var clamped []string
	var errs []error
	// Table order keeps the result independent of map iteration.
	for _, s := range specs {
		v, ok := values[s.Key]
		if !ok {
			continue
		}
		c, err := Set(&p, s.Key, v)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if c {
			clamped = append(clamped, s.Key)
		}
	}
	for k := range values {
		if _, ok := Lookup(k); !ok {
			errs = append(errs, fmt.Errorf("params: %q: %w", k, ErrUnknownKey))
		}
	}
	return p, clamped, errors.Join(errs...)
}

// Clamp returns p with every numeric field limited to its range.
func Clamp(p thread.Params) thread.Params {
	for _, s := range specs {
		if s.Kind != KindFloat && s.Kind != KindInt {
			continue
		}
		v, _ := Get(p, s.Key)
		f, _ := toFloat(v)
		setNumber(&p, s.Key, s.clamp(f))
	}
	return p
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	}
	return 0, fmt.Errorf("expected number, got %T: %w", v, ErrType)
}
