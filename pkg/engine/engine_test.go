package engine

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/chazu/helix/pkg/thread"
)

func TestEvaluateEmptyString(t *testing.T) {
	eng := NewEngine()

	for _, src := range []string{"", "   \n\t  \n  "} {
		res, err := eng.Evaluate(src)
		if err != nil {
			t.Fatalf("unexpected fatal error: %v", err)
		}
		if len(res.Errors) > 0 {
			t.Fatalf("unexpected eval errors: %v", res.Errors)
		}
		if res.Graph == nil {
			t.Fatal("expected non-nil graph")
		}
		if res.Graph.NodeCount() != 0 {
			t.Errorf("expected empty graph, got %d nodes", res.Graph.NodeCount())
		}
	}
}

func TestEvaluateValidExpression(t *testing.T) {
	eng := NewEngine()

	res, err := eng.Evaluate("(def x 10)\n(def y 20)\n(+ x y)")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(res.Errors) > 0 {
		t.Fatalf("unexpected eval errors: %v", res.Errors)
	}
	if res.Graph == nil || res.Graph.NodeCount() != 0 {
		t.Errorf("plain arithmetic should produce an empty graph")
	}
}

func TestEvaluateSyntaxError(t *testing.T) {
	eng := NewEngine()

	res, err := eng.Evaluate("(+ 1 2")
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if res.Graph != nil {
		t.Fatal("expected nil graph on syntax error")
	}
	if len(res.Errors) == 0 {
		t.Fatal("expected at least one eval error for syntax error")
	}
	if res.Errors[0].Message == "" {
		t.Error("eval error message should not be empty")
	}
}

func TestEvaluateUndefinedSymbol(t *testing.T) {
	eng := NewEngine()

	res, err := eng.Evaluate("(+ 1 undefined-symbol)")
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if res.Graph != nil {
		t.Fatal("expected nil graph on eval error")
	}
	if len(res.Errors) == 0 {
		t.Fatal("expected at least one eval error for undefined symbol")
	}
}

func TestEvaluateSyntaxErrorHasLineInfo(t *testing.T) {
	eng := NewEngine()

	res, err := eng.Evaluate("(+ 1 2)\n(+ 3")
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if len(res.Errors) == 0 {
		t.Fatal("expected at least one eval error")
	}
	e := res.Errors[0]
	if e.Message == "" {
		t.Error("eval error message should not be empty")
	}
	// Line info depends on the zygomys error format.
	t.Logf("line=%d, message=%q", e.Line, e.Message)
}

func TestEvalErrorImplementsError(t *testing.T) {
	e := EvalError{Line: 5, Message: "something went wrong"}
	if s := e.Error(); !strings.Contains(s, "line 5") || !strings.Contains(s, "something went wrong") {
		t.Errorf("Error() = %q", s)
	}
	e2 := EvalError{Message: "no location"}
	if strings.Contains(e2.Error(), "line") {
		t.Errorf("Error() with no line should not contain 'line', got: %s", e2.Error())
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	eng := NewEngine()
	src := `(defpart "m6" (thread :turns 3))
(assembly "a" (place (part "m6") :at (vec3 1 0 0)) (place (part "m6") :at (vec3 2 0 0)))`

	first, err := eng.Evaluate(src)
	if err != nil || len(first.Errors) > 0 {
		t.Fatalf("evaluate: %v %v", err, first.Errors)
	}
	for i := 0; i < 3; i++ {
		res, err := eng.Evaluate(src)
		if err != nil {
			t.Fatalf("iteration %d: unexpected fatal error: %v", i, err)
		}
		if len(res.Graph.Order) != len(first.Graph.Order) {
			t.Fatalf("iteration %d: node count changed", i)
		}
		for j, id := range res.Graph.Order {
			if id != first.Graph.Order[j] {
				t.Errorf("iteration %d: node %d id %s, want %s", i, j, id.Short(), first.Graph.Order[j].Short())
			}
		}
	}
}

func TestEngineDefaults(t *testing.T) {
	eng := NewEngine()
	eng.Defaults.Turns = 2
	eng.Defaults.Direction = thread.LeftHand

	res, err := eng.Evaluate(`(defpart "d" (thread :steps 12))`)
	if err != nil || len(res.Errors) > 0 {
		t.Fatalf("evaluate: %v %v", err, res.Errors)
	}
	p := partParams(t, res.Graph, "d")
	if p.Turns != 2 || p.Direction != thread.LeftHand || p.StepsPerTurn != 12 {
		t.Errorf("params = %+v", p)
	}
}

func TestEvaluateTimeout(t *testing.T) {
	var mu sync.Mutex
	var gen uint64 = 1
	ch := make(chan evalResult) // never sends

	start := time.Now()
	_, err := waitWithTimeout(ch, 1, &mu, &gen, 50*time.Millisecond)
	if err == nil {
		t.Fatal("expected timeout error, got nil")
	}
	if !strings.Contains(err.Error(), "timed out") {
		t.Errorf("expected timeout error message, got: %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Errorf("timeout took %s", time.Since(start))
	}
}

func TestEvaluateGenerationDiscardsStale(t *testing.T) {
	var mu sync.Mutex
	gen := uint64(2)

	ch := make(chan evalResult, 1)
	ch <- evalResult{}

	_, err := waitWithTimeout(ch, 1, &mu, &gen, time.Second)
	if err == nil {
		t.Fatal("expected error for stale generation")
	}
	if !strings.Contains(err.Error(), "superseded") {
		t.Errorf("expected superseded error, got: %v", err)
	}
}

func TestParseZygomysError(t *testing.T) {
	tests := []struct {
		name     string
		msg      string
		wantLine int
		wantMsg  string
	}{
		{"error on line format", "Error on line 5: unexpected token\n", 5, "unexpected token"},
		{"no line info", "some generic error", 0, "some generic error"},
		{"line format lowercase", "error on line 12: missing paren", 12, "missing paren"},
		{"short format", "line 3: bad", 3, "bad"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := parseZygomysError(errString(tt.msg))
			if len(errs) == 0 {
				t.Fatal("expected at least one error")
			}
			if errs[0].Line != tt.wantLine {
				t.Errorf("line = %d, want %d", errs[0].Line, tt.wantLine)
			}
			if !strings.Contains(errs[0].Message, tt.wantMsg) {
				t.Errorf("message = %q, want containing %q", errs[0].Message, tt.wantMsg)
			}
		})
	}
}

// errString is a simple error type for testing.
type errString string

func (e errString) Error() string { return string(e) }
