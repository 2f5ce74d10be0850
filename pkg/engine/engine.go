// Package engine provides the Lisp evaluation engine for helix.
// It wraps zygomys in a sandboxed environment and produces a design graph
// of thread parts from user source code.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"
	"go.uber.org/zap"

	"github.com/chazu/helix/pkg/design"
	"github.com/chazu/helix/pkg/logger"
	"github.com/chazu/helix/pkg/thread"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// EvalWarning represents a non-fatal warning produced during evaluation.
type EvalWarning struct {
	Line    int
	Col     int
	Message string
	NodeID  design.NodeID
}

// EvalResult bundles the full output of an evaluation.
//
//   - On success: Graph is set, Errors is empty.
//   - On parse, eval or validation failure: Graph is nil, Errors is set.
//
// Warnings may accompany either outcome.
type EvalResult struct {
	Graph    *design.Graph
	Errors   []EvalError
	Warnings []EvalWarning
}

// Engine wraps the zygomys interpreter. It is safe for concurrent use; each
// call to Evaluate creates a fresh sandboxed environment for determinism.
type Engine struct {
	// Defaults seeds every (thread ...) form; keywords override it.
	Defaults thread.Params
	// Timeout bounds a single evaluation.
	Timeout time.Duration

	mu         sync.Mutex
	generation uint64
}

// NewEngine creates a new Engine with the default thread parameters and
// EvalTimeout.
func NewEngine() *Engine {
	return &Engine{
		Defaults: thread.DefaultParams(),
		Timeout:  EvalTimeout,
	}
}

// Evaluate takes Lisp source code and produces a new design graph.
// Fatal failures (timeout, panic, superseded by a newer evaluation) are
// returned as the error; everything else is reported in the result.
func (e *Engine) Evaluate(source string) (EvalResult, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	timeout := e.Timeout
	defaults := e.Defaults
	e.mu.Unlock()

	if timeout <= 0 {
		timeout = EvalTimeout
	}

	ch := make(chan evalResult, 1)
	start := time.Now()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		res := evaluate(source, defaults)
		ch <- evalResult{result: res}
	}()

	res, err := waitWithTimeout(ch, gen, &e.mu, &e.generation, timeout)
	log := logger.Named("engine")
	if err != nil {
		log.Warn("evaluation failed", zap.Uint64("generation", gen), zap.Error(err))
		return EvalResult{}, err
	}
	nodes := 0
	if res.Graph != nil {
		nodes = res.Graph.NodeCount()
	}
	log.Debug("evaluated",
		zap.Uint64("generation", gen),
		zap.Duration("took", time.Since(start)),
		zap.Int("nodes", nodes),
		zap.Int("errors", len(res.Errors)),
		zap.Int("warnings", len(res.Warnings)))
	return res, nil
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func evaluate(source string, defaults thread.Params) EvalResult {
	// Empty source is a valid program that produces an empty graph.
	if strings.TrimSpace(source) == "" {
		return EvalResult{Graph: design.New()}
	}

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	g := design.New()
	st := &evalState{graph: g, defaults: defaults}
	registerBuiltins(env, st)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return EvalResult{Errors: parseZygomysError(err), Warnings: st.warnings}
	}
	if _, err := env.Run(); err != nil {
		return EvalResult{Errors: parseZygomysError(err), Warnings: st.warnings}
	}

	g.PromoteUnreferenced()

	res := EvalResult{Warnings: st.warnings}
	v := design.Validate(g)
	for _, w := range v.Warnings {
		res.Warnings = append(res.Warnings, EvalWarning{Message: w.Message, NodeID: w.NodeID})
	}
	if !v.OK() {
		for _, f := range v.Errors {
			res.Errors = append(res.Errors, EvalError{Message: f.Error()})
		}
		return res
	}
	res.Graph = g
	return res
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	if m := linePattern.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
	}
	if m := linePatternShort.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
	}
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
