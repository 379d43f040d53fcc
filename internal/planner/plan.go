package planner

import (
	"slices"
	"sort"
	"strings"

	"github.com/danieljhkim/hdlplan/internal/locator"
	"github.com/danieljhkim/hdlplan/internal/options"
)

// BuildPlan is a frozen, validated build configuration.
// All accessors return copies; a BuildPlan never changes after Freeze.
type BuildPlan struct {
	// libraries in compile order
	libraries []PlannedLibrary

	compile  options.Snapshot
	sim      options.Snapshot
	builtins []string
}

// PlannedLibrary is one library of a plan.
type PlannedLibrary struct {
	// Name is the library name as registered
	Name string

	// Files are the library's sources in compile order
	Files []locator.SourceFile

	// Patterns are the patterns that contributed to Files
	Patterns []string
}

func (l PlannedLibrary) clone() PlannedLibrary {
	return PlannedLibrary{
		Name:     l.Name,
		Files:    slices.Clone(l.Files),
		Patterns: slices.Clone(l.Patterns),
	}
}

// Paths returns the absolute paths of the library's files.
func (l PlannedLibrary) Paths() []string {
	out := make([]string, len(l.Files))
	for i, f := range l.Files {
		out[i] = f.Path
	}
	return out
}

// Libraries returns the libraries in compile order.
func (p *BuildPlan) Libraries() []PlannedLibrary {
	out := make([]PlannedLibrary, len(p.libraries))
	for i, l := range p.libraries {
		out[i] = l.clone()
	}
	return out
}

// LibraryNames returns library names in compile order.
func (p *BuildPlan) LibraryNames() []string {
	out := make([]string, len(p.libraries))
	for i, l := range p.libraries {
		out[i] = l.Name
	}
	return out
}

// Library returns the named library. Names match case-insensitively.
func (p *BuildPlan) Library(name string) (PlannedLibrary, bool) {
	for _, l := range p.libraries {
		if strings.EqualFold(l.Name, name) {
			return l.clone(), true
		}
	}
	return PlannedLibrary{}, false
}

// FileCount returns the total number of source entries across libraries.
func (p *BuildPlan) FileCount() int {
	n := 0
	for _, l := range p.libraries {
		n += len(l.Files)
	}
	return n
}

// CompileValues returns compile-time values for (backend, key).
func (p *BuildPlan) CompileValues(backend, key string) []string {
	return p.compile.Values(backend, key)
}

// SimValues returns simulation-time values for (backend, key).
func (p *BuildPlan) SimValues(backend, key string) []string {
	return p.sim.Values(backend, key)
}

// CompileOptions returns a copy of the compile-time options.
func (p *BuildPlan) CompileOptions() options.Snapshot {
	return p.compile.Clone()
}

// SimOptions returns a copy of the simulation-time options.
func (p *BuildPlan) SimOptions() options.Snapshot {
	return p.sim.Clone()
}

// Backends returns every backend named by either option set, sorted.
func (p *BuildPlan) Backends() []string {
	seen := make(map[string]struct{})
	for b := range p.compile {
		seen[b] = struct{}{}
	}
	for b := range p.sim {
		seen[b] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for b := range seen {
		out = append(out, b)
	}
	sort.Strings(out)
	return out
}

// Builtins returns the builtin library sets the engine must provide.
func (p *BuildPlan) Builtins() []string {
	return slices.Clone(p.builtins)
}
