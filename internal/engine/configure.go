package engine

import (
	"context"
	"fmt"

	"github.com/danieljhkim/hdlplan/internal/config"
	"github.com/danieljhkim/hdlplan/internal/locator"
	"github.com/danieljhkim/hdlplan/internal/planner"
	"github.com/danieljhkim/hdlplan/internal/registry"
)

// Configure builds a Builder from a project. Every library is registered
// before any pattern is resolved, so a duplicate name fails without touching
// the filesystem. Patterns are resolved concurrently and applied in
// declaration order.
func (e *Engine) Configure(ctx context.Context, p *config.Project) (*planner.Builder, error) {
	if p == nil {
		return nil, ErrNoProject
	}

	b := planner.NewBuilder(e.locator)
	reg := b.Registry()

	if err := reg.AddBuiltins(p.Builtins...); err != nil {
		return nil, err
	}

	handles := make([]registry.Handle, len(p.Libraries))
	var queries []locator.Query
	var owners []int
	for i, lib := range p.Libraries {
		h, err := reg.Register(lib.Name)
		if err != nil {
			return nil, err
		}
		handles[i] = h

		root := lib.Root
		if root == "" {
			root = p.Root
		}
		for _, pattern := range lib.Sources {
			queries = append(queries, locator.Query{Root: root, Pattern: pattern})
			owners = append(owners, i)
		}
	}

	results, err := e.locator.ResolveAll(ctx, queries, p.Jobs)
	if err != nil {
		return nil, err
	}
	for i, files := range results {
		owner := owners[i]
		if err := reg.AddSources(handles[owner], queries[i].Pattern, files); err != nil {
			return nil, fmt.Errorf("failed to add sources to %s: %w", p.Libraries[owner].Name, err)
		}
		e.logger.Debug("resolved pattern",
			"library", p.Libraries[owner].Name,
			"root", queries[i].Root,
			"pattern", queries[i].Pattern,
			"files", len(files))
	}

	for _, opt := range p.CompileOptions {
		if err := b.CompileOptions().AddQualified(opt.Name, opt.Values...); err != nil {
			return nil, err
		}
	}
	for _, opt := range p.SimOptions {
		if err := b.SimOptions().SetQualified(opt.Name, opt.Values...); err != nil {
			return nil, err
		}
	}

	return b, nil
}

// freeze configures and freezes p.
func (e *Engine) freeze(ctx context.Context, p *config.Project) (*planner.BuildPlan, error) {
	b, err := e.Configure(ctx, p)
	if err != nil {
		return nil, err
	}
	plan, err := b.Freeze()
	if err != nil {
		return nil, err
	}
	e.logger.Debug("plan frozen",
		"libraries", len(plan.Libraries()),
		"files", plan.FileCount(),
		"backends", plan.Backends())
	return plan, nil
}
