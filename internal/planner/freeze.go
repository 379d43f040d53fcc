package planner

import (
	"slices"
	"strings"

	"github.com/danieljhkim/hdlplan/internal/cfgerr"
	"github.com/danieljhkim/hdlplan/internal/options"
	"github.com/danieljhkim/hdlplan/internal/registry"
)

// Freeze validates reg and the option tables and returns a detached plan.
// It does not modify its inputs, so freezing unchanged inputs twice yields
// equal plans. Nil tables are treated as empty.
//
// Compile order is registration order. Dependencies between libraries are
// neither inferred nor checked: an out-of-order registration surfaces as a
// compile error in the external tool.
func Freeze(reg *registry.Registry, compile, sim *options.Table) (*BuildPlan, error) {
	if reg == nil {
		return nil, cfgerr.Configurationf("no library registry")
	}

	libs := reg.Libraries()

	seen := make(map[string]struct{}, len(libs))
	planned := make([]PlannedLibrary, 0, len(libs))
	for _, lib := range libs {
		key := strings.ToLower(lib.Name)
		if _, dup := seen[key]; dup {
			return nil, &cfgerr.DuplicateLibraryError{Name: lib.Name}
		}
		seen[key] = struct{}{}

		if len(lib.Sources) == 0 {
			return nil, &cfgerr.EmptySourceSetError{
				Library:  lib.Name,
				Patterns: slices.Clone(lib.Patterns),
			}
		}

		planned = append(planned, PlannedLibrary{
			Name:     lib.Name,
			Files:    slices.Clone(lib.Sources),
			Patterns: slices.Clone(lib.Patterns),
		})
	}

	return &BuildPlan{
		libraries: planned,
		compile:   snapshot(compile),
		sim:       snapshot(sim),
		builtins:  reg.Builtins(),
	}, nil
}

func snapshot(t *options.Table) options.Snapshot {
	if t == nil {
		return options.Snapshot{}
	}
	return t.Snapshot()
}
