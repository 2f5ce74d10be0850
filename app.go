package main

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/wailsapp/wails/v2/pkg/runtime"
	"go.uber.org/zap"

	"github.com/chazu/helix/pkg/config"
	"github.com/chazu/helix/pkg/design"
	"github.com/chazu/helix/pkg/engine"
	"github.com/chazu/helix/pkg/export"
	"github.com/chazu/helix/pkg/logger"
	"github.com/chazu/helix/pkg/params"
	"github.com/chazu/helix/pkg/preview"
	"github.com/chazu/helix/pkg/tessellate"
	"github.com/chazu/helix/pkg/thread"
)

// colorPalette is a default palette used to assign distinct colors to parts.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// EventMeshRebuilt is emitted with an EvalResult after every rebuild.
const EventMeshRebuilt = "mesh:rebuilt"

// defaultPartName names the part built from the parameter panel when no
// script is loaded.
const defaultPartName = "thread"

// ErrNothingToExport is returned by Export before a successful build.
var ErrNothingToExport = errors.New("nothing to export")

// App is the Wails backend. It exposes methods to the frontend via bindings.
type App struct {
	ctx    context.Context
	cfg    *config.Config
	engine *engine.Engine
	log    *zap.Logger

	mu sync.Mutex
	// params is the parameter panel state. It seeds every (thread ...) form.
	params thread.Params
	// source is the last evaluated script; empty means panel-only mode.
	source string
	// graph is the last successfully built design, kept for export.
	graph *design.Graph
}

// MeshData is the JSON-serializable mesh format sent to the frontend.
type MeshData struct {
	Vertices   []float32 `json:"vertices"`
	Normals    []float32 `json:"normals"`
	Indices    []uint32  `json:"indices"`
	PartName   string    `json:"partName"`
	Color      string    `json:"color"`
	Watertight bool      `json:"watertight"`
}

// EvalErrorData is a JSON-serializable eval error for the frontend.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result returned to the frontend.
type EvalResult struct {
	Meshes    []MeshData      `json:"meshes"`
	Errors    []EvalErrorData `json:"errors"`
	Warnings  []EvalErrorData `json:"warnings"`
	Triangles int             `json:"triangles"`
}

// ParamData describes one parameter panel control and its current value.
type ParamData struct {
	Label   string   `json:"label"`
	Key     string   `json:"key"`
	Kind    string   `json:"kind"`
	Value   any      `json:"value"`
	Default any      `json:"default"`
	Min     float64  `json:"min"`
	Max     float64  `json:"max"`
	Choices []string `json:"choices,omitempty"`
}

// NewApp creates a new App with the default configuration.
func NewApp() *App {
	return NewAppWithConfig(config.Default())
}

// NewAppWithConfig creates a new App whose panel and engine start from cfg.
func NewAppWithConfig(cfg *config.Config) *App {
	eng := engine.NewEngine()
	eng.Timeout = cfg.Engine.Timeout
	return &App{
		cfg:    cfg,
		engine: eng,
		log:    logger.Named("app"),
		params: params.Clamp(cfg.Thread),
	}
}

// startup is called by Wails on app startup. The context is saved
// so we can call Wails runtime methods later.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
}

// Evaluate takes Lisp source and returns mesh data + errors.
// This is the primary binding called by the frontend editor.
func (a *App) Evaluate(source string) EvalResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.source = source
	return a.rebuild()
}

// Rebuild applies parameter panel values and rebuilds the current design.
// Numeric values are clamped into range; clamped keys are reported as
// warnings. The result is also emitted as EventMeshRebuilt.
func (a *App) Rebuild(values map[string]any) EvalResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	p, clamped, err := params.Apply(a.params, values)
	if err != nil {
		res := newEvalResult()
		res.Errors = append(res.Errors, EvalErrorData{Message: err.Error()})
		return res
	}
	a.params = p

	res := a.rebuild()
	for _, key := range clamped {
		res.Warnings = append(res.Warnings, EvalErrorData{Message: fmt.Sprintf("%s clamped to its range", key)})
	}
	a.emit(EventMeshRebuilt, res)
	return res
}

// Parameters returns the parameter panel description with current values.
func (a *App) Parameters() []ParamData {
	a.mu.Lock()
	p := a.params
	a.mu.Unlock()

	specs := params.Specs()
	out := make([]ParamData, 0, len(specs))
	for _, s := range specs {
		v, _ := params.Get(p, s.Key)
		out = append(out, ParamData{
			Label:   s.Label,
			Key:     s.Key,
			Kind:    s.Kind.String(),
			Value:   v,
			Default: s.Default,
			Min:     s.Min,
			Max:     s.Max,
			Choices: s.Choices,
		})
	}
	return out
}

// Export writes the last successful build to path. An empty format is
// inferred from the file extension. Exports are always Z-up.
func (a *App) Export(path, format string) error {
	a.mu.Lock()
	g := a.graph
	a.mu.Unlock()

	if g == nil {
		return ErrNothingToExport
	}
	var (
		f   export.Format
		err error
	)
	if format == "" {
		f, err = export.FormatFromPath(path)
	} else {
		f, err = export.ParseFormat(format)
	}
	if err != nil {
		return err
	}

	meshes, err := tessellate.Tessellate(g, tessellate.FrameZUp)
	if err != nil {
		return err
	}
	return export.Write(path, f, meshes)
}

// ExportPreview writes a .png or .webp thumbnail of the last successful
// build.
func (a *App) ExportPreview(path string) error {
	a.mu.Lock()
	g := a.graph
	a.mu.Unlock()

	if g == nil {
		return ErrNothingToExport
	}
	meshes, err := tessellate.Tessellate(g, tessellate.FrameZUp)
	if err != nil {
		return err
	}
	return preview.Save(path, preview.Render(meshes, preview.DefaultOptions()))
}

// SaveParameters persists the parameter panel state as YAML.
func (a *App) SaveParameters(path string) error {
	a.mu.Lock()
	p := a.params
	a.mu.Unlock()
	return params.Save(path, p)
}

// LoadParameters replaces the parameter panel state from a YAML file and
// rebuilds.
func (a *App) LoadParameters(path string) EvalResult {
	p, err := params.Load(path)
	if err != nil {
		res := newEvalResult()
		res.Errors = append(res.Errors, EvalErrorData{Message: err.Error()})
		return res
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.params = params.Clamp(p)
	res := a.rebuild()
	a.emit(EventMeshRebuilt, res)
	return res
}

func newEvalResult() EvalResult {
	return EvalResult{
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}
}

// rebuild evaluates the current source, or the panel parameters when there
// is none, and tessellates the result for preview. a.mu must be held.
func (a *App) rebuild() EvalResult {
	result := newEvalResult()

	// Step 1: produce a design graph.
	var g *design.Graph
	if a.source == "" {
		g = panelGraph(a.params)
		v := design.Validate(g)
		for _, f := range v.Errors {
			result.Errors = append(result.Errors, EvalErrorData{Message: f.Message})
		}
		for _, f := range v.Warnings {
			result.Warnings = append(result.Warnings, EvalErrorData{Message: f.Message})
		}
		if !v.OK() {
			return result
		}
	} else {
		a.engine.Defaults = a.params
		res, err := a.engine.Evaluate(a.source)
		if err != nil {
			// Fatal error (panic, timeout, etc.)
			a.log.Error("evaluate failed", zap.Error(err))
			result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
			return result
		}
		for _, w := range res.Warnings {
			result.Warnings = append(result.Warnings, EvalErrorData{Line: w.Line, Col: w.Col, Message: w.Message})
		}
		if len(res.Errors) > 0 {
			for _, e := range res.Errors {
				result.Errors = append(result.Errors, EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message})
			}
			return result
		}
		g = res.Graph
	}

	// Step 2: tessellate the design graph into triangle meshes.
	meshes, err := tessellate.Tessellate(g, tessellate.FrameYUp)
	if err != nil {
		a.log.Error("tessellate failed", zap.Error(err))
		result.Errors = append(result.Errors, EvalErrorData{Message: "tessellation failed: " + err.Error()})
		return result
	}
	a.graph = g

	// Step 3: convert to the frontend MeshData format.
	for i, m := range meshes {
		result.Meshes = append(result.Meshes, MeshData{
			Vertices:   m.Vertices,
			Normals:    m.Normals,
			Indices:    m.Indices,
			PartName:   m.PartName,
			Color:      colorPalette[i%len(colorPalette)],
			Watertight: m.Watertight,
		})
		result.Triangles += m.TriangleCount()
	}

	a.log.Info("rebuilt",
		zap.Bool("script", a.source != ""),
		zap.Int("parts", len(meshes)),
		zap.Int("triangles", result.Triangles),
		zap.Int("warnings", len(result.Warnings)))
	return result
}

// panelGraph is the design of the parameter panel: a single root part.
func panelGraph(p thread.Params) *design.Graph {
	g := design.New()
	n := &design.Node{
		ID:   design.NewNodeID("panel/" + defaultPartName),
		Kind: design.NodePart,
		Name: defaultPartName,
		Data: design.PartData{Params: p},
	}
	g.AddNode(n)
	g.AddRoot(n.ID)
	return g
}

// emit sends a Wails event. Without a runtime context (tests, CLI) it is
// a no-op.
func (a *App) emit(name string, data any) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, name, data)
}
