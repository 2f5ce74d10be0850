package params

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/chazu/helix/pkg/thread"
)

// Load reads a parameter set saved by Save. Keys missing from the file keep
// their default; unknown keys are an error. The result is validated.
func Load(path string) (thread.Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return thread.Params{}, fmt.Errorf("params: reading %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a YAML parameter set.
func Parse(data []byte) (thread.Params, error) {
	p := thread.DefaultParams()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return thread.Params{}, fmt.Errorf("params: parsing: %w", err)
	}
	if err := p.Validate(); err != nil {
		return thread.Params{}, err
	}
	return p, nil
}

// Save writes p as YAML.
func Save(path string, p thread.Params) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("params: encoding: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("params: writing %s: %w", path, err)
	}
	return nil
}
