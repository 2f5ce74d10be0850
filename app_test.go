package main

import (
	"os"
	"testing"
)

// TestE2EKitExample exercises the full pipeline: Lisp source → engine → graph
// → tessellate → meshes. This is the same path that the Wails Evaluate binding
// takes, but without the Wails runtime.
func TestE2EKitExample(t *testing.T) {
	app := NewApp()

	source, err := os.ReadFile("examples/kit.thread")
	if err != nil {
		t.Fatalf("failed to read kit.thread: %v", err)
	}

	result := app.Evaluate(string(source))

	// No errors expected.
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error (line %d): %s", e.Line, e.Message)
		}
		t.FailNow()
	}

	// Expect 3 meshes: right, left, open.
	if len(result.Meshes) != 3 {
		t.Fatalf("expected 3 meshes, got %d", len(result.Meshes))
	}

	expectedParts := map[string]bool{
		"right": false,
		"left":  false,
		"open":  false,
	}

	total := 0
	for _, m := range result.Meshes {
		if _, ok := expectedParts[m.PartName]; !ok {
			t.Errorf("unexpected part name: %q", m.PartName)
			continue
		}
		expectedParts[m.PartName] = true

		// Each mesh must have non-empty geometry.
		if len(m.Vertices) == 0 {
			t.Errorf("part %q: no vertices", m.PartName)
		}
		if len(m.Normals) != len(m.Vertices) {
			t.Errorf("part %q: %d normals for %d vertices", m.PartName, len(m.Normals), len(m.Vertices))
		}
		if len(m.Indices) == 0 {
			t.Errorf("part %q: no indices", m.PartName)
		}

		// Must have a color assigned.
		if m.Color == "" {
			t.Errorf("part %q: no color assigned", m.PartName)
		}
		if m.Watertight != (m.PartName != "open") {
			t.Errorf("part %q: watertight = %v", m.PartName, m.Watertight)
		}
		total += len(m.Indices) / 3
	}

	for name, found := range expectedParts {
		if !found {
			t.Errorf("missing mesh for part %q", name)
		}
	}
	if result.Triangles != total {
		t.Errorf("Triangles = %d, want %d", result.Triangles, total)
	}

	// The open part disables both leads and must say so.
	if len(result.Warnings) < 2 {
		t.Errorf("expected lead warnings for the open part, got %v", result.Warnings)
	}
}

// TestE2EM6Example checks the single-part example.
func TestE2EM6Example(t *testing.T) {
	app := NewApp()

	source, err := os.ReadFile("examples/m6.thread")
	if err != nil {
		t.Fatalf("failed to read m6.thread: %v", err)
	}
	result := app.Evaluate(string(source))
	if len(result.Errors) > 0 {
		t.Fatalf("eval errors: %v", result.Errors)
	}
	if len(result.Meshes) != 1 || result.Meshes[0].PartName != "m6" {
		t.Fatalf("expected the m6 mesh, got %d meshes", len(result.Meshes))
	}
	if !result.Meshes[0].Watertight {
		t.Error("m6 should be watertight")
	}
}

// TestE2EEmptySource shows the parameter panel thread when the editor is empty.
func TestE2EEmptySource(t *testing.T) {
	app := NewApp()
	result := app.Evaluate("")

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors for empty source: %v", result.Errors)
	}
	if len(result.Meshes) != 1 {
		t.Fatalf("expected the panel mesh for empty source, got %d", len(result.Meshes))
	}
	if result.Meshes[0].PartName != defaultPartName {
		t.Errorf("part name = %q, want %q", result.Meshes[0].PartName, defaultPartName)
	}
}

// TestE2EScriptWithoutParts renders nothing.
func TestE2EScriptWithoutParts(t *testing.T) {
	app := NewApp()
	result := app.Evaluate("(+ 1 2)")

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes, got %d", len(result.Meshes))
	}
}

// TestE2ESyntaxError ensures eval errors are reported, not fatal errors.
func TestE2ESyntaxError(t *testing.T) {
	app := NewApp()
	result := app.Evaluate("(defpart \"test\"")

	if len(result.Errors) == 0 {
		t.Fatal("expected eval errors for syntax error")
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes on error, got %d", len(result.Meshes))
	}
}

// TestE2ESinglePart ensures a minimal single-part source renders one mesh.
func TestE2ESinglePart(t *testing.T) {
	app := NewApp()
	source := `(defpart "bolt" (thread :turns 3 :steps 16))`
	result := app.Evaluate(source)

	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error: %s", e.Message)
		}
		t.FailNow()
	}
	if len(result.Meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(result.Meshes))
	}
	if result.Meshes[0].PartName != "bolt" {
		t.Errorf("expected part name 'bolt', got %q", result.Meshes[0].PartName)
	}
}
