package config

import (
	"strings"

	"github.com/danieljhkim/hdlplan/internal/cfgerr"
	"github.com/danieljhkim/hdlplan/internal/planner"
)

// Project is a decoded project manifest plus its resolved settings.
type Project struct {
	// Root is the absolute base directory for source patterns
	Root string `koanf:"root"`

	// Simulator is handed to the external engine untouched
	Simulator string `koanf:"simulator"`

	// Jobs bounds concurrent pattern resolution
	Jobs int `koanf:"jobs"`

	Verbose bool `koanf:"verbose"`

	// Builtins lists engine-provided builtin library sets, e.g. "vhdl"
	Builtins []string `koanf:"builtins"`

	// Libraries in compile order
	Libraries []LibraryConfig `koanf:"libraries"`

	// CompileOptions are appended per (backend, key)
	CompileOptions []OptionConfig `koanf:"compile_options"`

	// SimOptions replace any earlier value for the same (backend, key)
	SimOptions []OptionConfig `koanf:"sim_options"`

	Runner RunnerConfig `koanf:"runner"`

	// ManifestPath is the manifest that was loaded, if any
	ManifestPath string `koanf:"-"`
}

// LibraryConfig declares one library.
type LibraryConfig struct {
	Name string `koanf:"name"`

	// Sources are glob patterns; "**" matches any directory depth
	Sources []string `koanf:"sources"`

	// Root overrides the project root for this library's patterns
	Root string `koanf:"root"`
}

// OptionConfig is one qualified option, e.g. name "ghdl.a_flags".
type OptionConfig struct {
	Name   string   `koanf:"name"`
	Values []string `koanf:"values"`
}

// RunnerConfig configures the external simulation engine.
type RunnerConfig struct {
	// Command is the engine program followed by fixed arguments
	Command []string `koanf:"command"`

	// Format is the plan encoding written to the engine's stdin
	Format string `koanf:"format"`

	// Dir is the engine's working directory
	Dir string `koanf:"dir"`
}

// Validate checks the manifest's shape. Library contents are checked later,
// when the plan is frozen.
func (p *Project) Validate() error {
	if p.Jobs < 0 {
		return cfgerr.Configurationf("jobs must not be negative, got %d", p.Jobs)
	}
	for i, lib := range p.Libraries {
		if strings.TrimSpace(lib.Name) == "" {
			return cfgerr.Configurationf("library #%d has no name", i+1)
		}
	}
	for _, group := range [][]OptionConfig{p.CompileOptions, p.SimOptions} {
		for _, opt := range group {
			if !strings.Contains(opt.Name, ".") {
				return cfgerr.Configurationf("option name %q must have the form <backend>.<key>", opt.Name)
			}
		}
	}
	if _, err := planner.ParseFormat(p.Runner.Format); err != nil {
		return err
	}
	return nil
}

// RunnerFormat returns the parsed runner format.
func (p *Project) RunnerFormat() planner.Format {
	f, err := planner.ParseFormat(p.Runner.Format)
	if err != nil {
		return planner.FormatJSON
	}
	return f
}
