// Package config handles application configuration loading and management.
package config

import (
	"time"

	"github.com/chazu/helix/pkg/thread"
)

// Config holds all application settings.
type Config struct {
	Thread  thread.Params `yaml:"thread"`
	Output  OutputConfig  `yaml:"output"`
	Engine  EngineConfig  `yaml:"engine"`
	Logging LoggingConfig `yaml:"logging"`
	Window  WindowConfig  `yaml:"window"`
}

// OutputConfig holds export settings.
type OutputConfig struct {
	Path   string `yaml:"path"`
	Format string `yaml:"format"` // stl or 3mf
	// Preview is an optional .png or .webp thumbnail written next to the mesh.
	Preview string `yaml:"preview"`
}

// EngineConfig holds script evaluation settings.
type EngineConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// WindowConfig holds desktop window settings.
type WindowConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Thread: thread.DefaultParams(),
		Output: OutputConfig{
			Path:   "thread.stl",
			Format: "stl",
		},
		Engine: EngineConfig{
			Timeout: 5 * time.Second,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
		Window: WindowConfig{
			Width:  1280,
			Height: 800,
		},
	}
}
