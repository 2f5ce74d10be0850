package config

import (
	"path/filepath"
	"strings"
)

// Flags holds CLI flag values that override config file settings. Zero
// values mean "not given"; booleans and the direction are pointers for the
// same reason.
type Flags struct {
	InnerRadius  float64
	ThreadRadius float64
	Steps        int
	Turns        int
	Height       float64
	Lead         *float64
	LeadIn       *bool
	LeadOut      *bool
	Direction    string

	Output   string
	Format   string
	Preview  string
	LogLevel string
	LogFile  string
}

// Resolve applies flag overrides and fills in what is still empty.
func (c *Config) Resolve(flags Flags) error {
	if flags.InnerRadius > 0 {
		c.Thread.InnerRadius = flags.InnerRadius
	}
	if flags.ThreadRadius > 0 {
		c.Thread.OuterRadius = flags.ThreadRadius
	}
	if flags.Steps > 0 {
		c.Thread.StepsPerTurn = flags.Steps
	}
	if flags.Turns > 0 {
		c.Thread.Turns = flags.Turns
	}
	if flags.Height > 0 {
		c.Thread.HeightPerTurn = flags.Height
	}
	if flags.Lead != nil {
		c.Thread.LeadLength = *flags.Lead
	}
	if flags.LeadIn != nil {
		c.Thread.LeadIn = *flags.LeadIn
	}
	if flags.LeadOut != nil {
		c.Thread.LeadOut = *flags.LeadOut
	}
	if flags.Direction != "" {
		if err := c.Thread.Direction.UnmarshalText([]byte(flags.Direction)); err != nil {
			return err
		}
	}

	if flags.Output != "" {
		c.Output.Path = flags.Output
	}
	if flags.Format != "" {
		c.Output.Format = flags.Format
	}
	if flags.Preview != "" {
		c.Output.Preview = flags.Preview
	}
	if flags.LogLevel != "" {
		c.Logging.Level = flags.LogLevel
	}
	if flags.LogFile != "" {
		c.Logging.LogFile = flags.LogFile
	}

	// The format follows the output extension unless given explicitly.
	if flags.Format == "" && flags.Output != "" {
		switch strings.ToLower(filepath.Ext(flags.Output)) {
		case ".3mf":
			c.Output.Format = "3mf"
		case ".stl":
			c.Output.Format = "stl"
		}
	}
	c.Output.Format = strings.ToLower(c.Output.Format)
	if c.Output.Format == "" {
		c.Output.Format = "stl"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	return c.Validate()
}
