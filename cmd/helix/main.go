// Command helix builds thread meshes from flags, a parameter file or a
// script and writes them as STL or 3MF.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

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

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// optBool is a boolean flag that remembers whether it was given.
type optBool struct {
	v *bool
}

func (o *optBool) String() string {
	if o == nil || o.v == nil {
		return ""
	}
	return strconv.FormatBool(*o.v)
}

func (o *optBool) Set(s string) error {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	o.v = &b
	return nil
}

func (o *optBool) IsBoolFlag() bool { return true }

// optFloat is a float flag that remembers whether it was given.
type optFloat struct {
	v *float64
}

func (o *optFloat) String() string {
	if o == nil || o.v == nil {
		return ""
	}
	return strconv.FormatFloat(*o.v, 'g', -1, 64)
}

func (o *optFloat) Set(s string) error {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	o.v = &f
	return nil
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("helix", flag.ContinueOnError)
	fs.SetOutput(stderr)

	// CLI flags
	configFile := fs.String("config", "", "Path to helix.yaml (default: ./helix.yaml or the user config dir)")
	scriptFile := fs.String("script", "", "Lisp script defining parts and assemblies")
	paramsFile := fs.String("params", "", "Parameter set saved with -save-params")
	saveParams := fs.String("save-params", "", "Write the resolved parameter set to this file")
	saveConfig := fs.String("save-config", "", "Write the resolved configuration to this file")
	innerRadius := fs.Float64("inner-radius", 0, "Inner (core) radius")
	threadRadius := fs.Float64("thread-radius", 0, "Thread (crest) radius")
	steps := fs.Int("steps", 0, "Segments per turn")
	turns := fs.Int("turns", 0, "Number of turns")
	height := fs.Float64("height", 0, "Height per turn")
	var lead optFloat
	fs.Var(&lead, "lead", "Lead length")
	var leadIn, leadOut optBool
	fs.Var(&leadIn, "lead-in", "Create the bottom lead and cap")
	fs.Var(&leadOut, "lead-out", "Create the top lead and cap")
	direction := fs.String("direction", "", "Thread direction: right or left")
	output := fs.String("o", "", "Output file (default: thread.stl)")
	format := fs.String("format", "", "Output format: stl or 3mf (default: from -o)")
	previewFile := fs.String("preview", "", "Also write a .png or .webp thumbnail")
	logLevel := fs.String("log-level", "", "Log level: debug, info, warn, error")
	logFile := fs.String("log-file", "", "Also log JSON to this rotating file")

	if err := fs.Parse(args); err != nil {
		return err
	}

	// Load config
	cfg, err := config.Load(*configFile)
	if err != nil {
		return err
	}
	if *paramsFile != "" {
		p, err := params.Load(*paramsFile)
		if err != nil {
			return err
		}
		cfg.Thread = p
	}

	// CLI flags override config and parameter files
	if err := cfg.Resolve(config.Flags{
		InnerRadius:  *innerRadius,
		ThreadRadius: *threadRadius,
		Steps:        *steps,
		Turns:        *turns,
		Height:       *height,
		Lead:         lead.v,
		LeadIn:       leadIn.v,
		LeadOut:      leadOut.v,
		Direction:    *direction,
		Output:       *output,
		Format:       *format,
		Preview:      *previewFile,
		LogLevel:     *logLevel,
		LogFile:      *logFile,
	}); err != nil {
		return err
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return err
	}
	defer logger.Sync()
	log := logger.Named("cli")

	if *saveParams != "" {
		if err := params.Save(*saveParams, cfg.Thread); err != nil {
			return err
		}
		log.Info("parameters saved", zap.String("path", *saveParams))
	}
	if *saveConfig != "" {
		if err := cfg.SaveTo(*saveConfig); err != nil {
			return err
		}
		log.Info("config saved", zap.String("path", *saveConfig))
	}

	g, err := buildGraph(cfg, *scriptFile, stderr)
	if err != nil {
		return err
	}

	outFormat, err := export.ParseFormat(cfg.Output.Format)
	if err != nil {
		return err
	}
	meshes, err := tessellate.Tessellate(g, tessellate.FrameZUp)
	if err != nil {
		return err
	}
	if err := export.Write(cfg.Output.Path, outFormat, meshes); err != nil {
		return err
	}

	if cfg.Output.Preview != "" {
		if err := preview.Save(cfg.Output.Preview, preview.Render(meshes, preview.DefaultOptions())); err != nil {
			return err
		}
		log.Info("preview written", zap.String("path", cfg.Output.Preview))
	}

	tris := 0
	for _, m := range meshes {
		tris += m.TriangleCount()
		if !m.Watertight {
			fmt.Fprintf(stderr, "Warning: part %q is open\n", m.PartName)
		}
	}
	fmt.Fprintf(stdout, "Wrote %s: %d part(s), %d triangles\n", cfg.Output.Path, len(meshes), tris)
	return nil
}

// buildGraph evaluates the script, or turns the resolved parameters into a
// single-part design when there is none.
func buildGraph(cfg *config.Config, scriptFile string, stderr io.Writer) (*design.Graph, error) {
	if scriptFile == "" {
		return singlePart(cfg.Thread, stderr)
	}

	source, err := os.ReadFile(scriptFile)
	if err != nil {
		return nil, err
	}
	eng := engine.NewEngine()
	eng.Defaults = cfg.Thread
	eng.Timeout = cfg.Engine.Timeout

	res, err := eng.Evaluate(string(source))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", scriptFile, err)
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(stderr, "Warning: %s\n", w.Message)
	}
	if len(res.Errors) > 0 {
		for _, e := range res.Errors {
			fmt.Fprintf(stderr, "%s: %s\n", scriptFile, e.Error())
		}
		return nil, fmt.Errorf("%s: %d error(s)", scriptFile, len(res.Errors))
	}
	if len(res.Graph.Parts()) == 0 {
		return nil, fmt.Errorf("%s: script defines no parts", scriptFile)
	}
	return res.Graph, nil
}

func singlePart(p thread.Params, stderr io.Writer) (*design.Graph, error) {
	clamped := params.Clamp(p)
	if clamped != p {
		fmt.Fprintln(stderr, "Warning: parameters clamped to their ranges")
	}
	for _, w := range clamped.Warnings() {
		fmt.Fprintf(stderr, "Warning: %s\n", w)
	}

	g := design.New()
	n := &design.Node{
		ID:   design.NewNodeID("cli/thread"),
		Kind: design.NodePart,
		Name: "thread",
		Data: design.PartData{Params: clamped},
	}
	g.AddNode(n)
	g.AddRoot(n.ID)
	return g, nil
}
