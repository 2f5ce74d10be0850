package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML config file on top of the defaults. An empty path looks
// in the standard locations and falls back to the defaults when none exists.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = findConfigFile()
	}
	if path == "" {
		return cfg, nil
	}
	if err := loadFromFile(cfg, path); err != nil {
		return nil, fmt.Errorf("config: loading %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./helix.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "Helix")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "Helix")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "helix")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "helix")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks the values a file or flag may have broken.
func (c *Config) Validate() error {
	if err := c.Thread.Validate(); err != nil {
		return err
	}
	switch strings.ToLower(c.Output.Format) {
	case "stl", "3mf":
	default:
		return fmt.Errorf("output format %q: must be stl or 3mf", c.Output.Format)
	}
	if c.Engine.Timeout <= 0 {
		return fmt.Errorf("engine timeout %s: must be positive", c.Engine.Timeout)
	}
	return nil
}
