package main

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/helix/pkg/config"
	"github.com/chazu/helix/pkg/params"
	"github.com/chazu/helix/pkg/thread"
)

// stlTriangles reads the triangle count of a binary STL file.
func stlTriangles(t *testing.T, path string) int {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) < 84 {
		t.Fatalf("%s: short file", path)
	}
	return int(binary.LittleEndian.Uint32(data[80:84]))
}

// trianglesFor counts the fan triangles of a single build.
func trianglesFor(t *testing.T, p thread.Params) int {
	t.Helper()
	m, _, err := thread.Generate(p)
	if err != nil {
		t.Fatal(err)
	}
	return m.TriangleCount()
}

func TestRunFlags(t *testing.T) {
	out := filepath.Join(t.TempDir(), "m6.stl")
	var stdout, stderr bytes.Buffer

	err := run([]string{
		"-config", filepath.Join(t.TempDir(), "none.yaml"),
		"-steps", "12", "-turns", "2", "-lead-out=false",
		"-o", out,
	}, &stdout, &stderr)
	if err == nil {
		t.Fatal("expected error for a missing config file")
	}

	stdout.Reset()
	stderr.Reset()
	err = run([]string{"-steps", "12", "-turns", "2", "-lead-out=false", "-o", out}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("run: %v\n%s", err, stderr.String())
	}

	p := thread.DefaultParams()
	p.StepsPerTurn, p.Turns, p.LeadOut = 12, 2, false
	if got, want := stlTriangles(t, out), trianglesFor(t, p); got != want {
		t.Errorf("triangles = %d, want %d", got, want)
	}
	if !strings.Contains(stdout.String(), "1 part(s)") {
		t.Errorf("stdout = %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "open") {
		t.Errorf("expected an open-part warning, stderr = %q", stderr.String())
	}
}

func TestRunClampsFlags(t *testing.T) {
	out := filepath.Join(t.TempDir(), "coarse.stl")
	var stdout, stderr bytes.Buffer

	if err := run([]string{"-steps", "4", "-turns", "1", "-o", out}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	p := thread.DefaultParams()
	p.StepsPerTurn, p.Turns = 10, 1
	if got, want := stlTriangles(t, out), trianglesFor(t, p); got != want {
		t.Errorf("triangles = %d, want %d", got, want)
	}
	if !strings.Contains(stderr.String(), "clamped") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestRunScript(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "pair.thread")
	src := `(defpart "m6" (thread :steps 12 :turns 1))
(assembly "pair" (place (part "m6") :at (vec3 0 0 0)) (place (part "m6") :at (vec3 5 0 0)))`
	if err := os.WriteFile(script, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "pair.3mf")
	var stdout, stderr bytes.Buffer

	thumb := filepath.Join(dir, "pair.png")
	if err := run([]string{"-script", script, "-o", out, "-preview", thumb}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v\n%s", err, stderr.String())
	}
	if info, err := os.Stat(thumb); err != nil || info.Size() == 0 {
		t.Errorf("preview not written: %v", err)
	}
	if !strings.Contains(stdout.String(), "2 part(s)") {
		t.Errorf("stdout = %q", stdout.String())
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(data[:2]) != "PK" {
		t.Error("expected a 3mf (zip) file")
	}
}

func TestRunScriptErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		src  string
	}{
		{"syntax", `(defpart "x"`},
		{"no parts", `(+ 1 2)`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			script := filepath.Join(dir, tt.name+".thread")
			if err := os.WriteFile(script, []byte(tt.src), 0o644); err != nil {
				t.Fatal(err)
			}
			var stdout, stderr bytes.Buffer
			err := run([]string{"-script", script, "-o", filepath.Join(dir, "x.stl")}, &stdout, &stderr)
			if err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestRunParamsFileAndSave(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.yaml")
	p := thread.DefaultParams()
	p.StepsPerTurn, p.Turns = 16, 2
	if err := params.Save(in, p); err != nil {
		t.Fatal(err)
	}

	saved := filepath.Join(dir, "saved.yaml")
	out := filepath.Join(dir, "out.stl")
	var stdout, stderr bytes.Buffer
	// The -turns flag overrides the file.
	if err := run([]string{"-params", in, "-turns", "3", "-save-params", saved, "-o", out}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}

	got, err := params.Load(saved)
	if err != nil {
		t.Fatal(err)
	}
	if got.StepsPerTurn != 16 || got.Turns != 3 {
		t.Errorf("saved params = %+v", got)
	}
	want := p
	want.Turns = 3
	if n := stlTriangles(t, out); n != trianglesFor(t, want) {
		t.Errorf("triangles = %d, want %d", n, trianglesFor(t, want))
	}
}

func TestRunSaveConfig(t *testing.T) {
	dir := t.TempDir()
	saved := filepath.Join(dir, "conf", "helix.yaml")
	out := filepath.Join(dir, "out.stl")
	var stdout, stderr bytes.Buffer
	args := []string{"-steps", "12", "-turns", "1", "-format", "stl", "-o", out, "-save-config", saved}
	if err := run(args, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}

	cfg, err := config.Load(saved)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Thread.StepsPerTurn != 12 || cfg.Thread.Turns != 1 {
		t.Errorf("saved thread = %+v", cfg.Thread)
	}
	if cfg.Output.Path != out {
		t.Errorf("saved output path = %q, want %q", cfg.Output.Path, out)
	}
}

func TestRunBadFlags(t *testing.T) {
	var stdout, stderr bytes.Buffer
	for _, args := range [][]string{
		{"-direction", "up"},
		{"-format", "obj"},
		{"-lead-in=maybe"},
	} {
		if err := run(append(args, "-o", filepath.Join(t.TempDir(), "x.stl")), &stdout, &stderr); err == nil {
			t.Errorf("%v: expected an error", args)
		}
	}
}
