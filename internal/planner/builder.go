package planner

import (
	"github.com/danieljhkim/hdlplan/internal/cfgerr"
	"github.com/danieljhkim/hdlplan/internal/locator"
	"github.com/danieljhkim/hdlplan/internal/options"
	"github.com/danieljhkim/hdlplan/internal/registry"
)

// Builder is the mutable configuration of one run. It is passed explicitly
// through the configuration phase and turned into a BuildPlan by Freeze.
// A Builder is not safe for concurrent use.
type Builder struct {
	locator *locator.Locator
	reg     *registry.Registry
	compile *options.Table
	sim     *options.Table
	plan    *BuildPlan
}

// NewBuilder creates an empty Builder. loc may be nil if sources are only
// added through the Registry directly.
func NewBuilder(loc *locator.Locator) *Builder {
	return &Builder{
		locator: loc,
		reg:     registry.New(),
		compile: options.New(),
		sim:     options.New(),
	}
}

// Registry returns the library registry.
func (b *Builder) Registry() *registry.Registry {
	return b.reg
}

// CompileOptions returns the compile-time option table.
func (b *Builder) CompileOptions() *options.Table {
	return b.compile
}

// SimOptions returns the simulation-time option table.
func (b *Builder) SimOptions() *options.Table {
	return b.sim
}

// AddLibrary registers name and adds the files matching each pattern under
// root.
func (b *Builder) AddLibrary(name, root string, patterns ...string) (registry.Handle, error) {
	h, err := b.reg.Register(name)
	if err != nil {
		return registry.Handle{}, err
	}
	for _, p := range patterns {
		if err := b.AddSourceFiles(h, root, p); err != nil {
			return h, err
		}
	}
	return h, nil
}

// AddSourceFiles resolves pattern under root and adds the matches to h.
func (b *Builder) AddSourceFiles(h registry.Handle, root, pattern string) error {
	if b.Frozen() {
		return cfgerr.Configurationf("cannot add sources for %q: configuration is frozen", pattern)
	}
	if b.locator == nil {
		return cfgerr.Configurationf("builder has no source locator")
	}
	files, err := b.locator.Resolve(root, pattern)
	if err != nil {
		return err
	}
	return b.reg.AddSources(h, pattern, files)
}

// Frozen reports whether Freeze has succeeded.
func (b *Builder) Frozen() bool {
	return b.plan != nil
}

// Freeze validates the configuration and seals the Builder. Once frozen,
// further calls return the same plan. A failed Freeze leaves the Builder
// unsealed and returns no plan.
func (b *Builder) Freeze() (*BuildPlan, error) {
	if b.plan != nil {
		return b.plan, nil
	}

	plan, err := Freeze(b.reg, b.compile, b.sim)
	if err != nil {
		return nil, err
	}

	b.reg.Seal()
	b.compile.Seal()
	b.sim.Seal()
	b.plan = plan
	return plan, nil
}
