package engine

import (
	"context"
	"fmt"
)

// Plan freezes the project and fingerprints the result.
func (e *Engine) Plan(ctx context.Context, req PlanRequest) (*PlanResult, error) {
	plan, err := e.freeze(ctx, req.Project)
	if err != nil {
		return nil, err
	}

	result := &PlanResult{Plan: plan}
	if req.SkipFingerprint {
		return result, nil
	}

	fp, err := plan.Fingerprint(e.hasher)
	if err != nil {
		return nil, fmt.Errorf("failed to fingerprint plan: %w", err)
	}
	result.Fingerprint = fp
	return result, nil
}

// List freezes the project and summarizes its libraries.
func (e *Engine) List(ctx context.Context, req ListRequest) (*ListResult, error) {
	plan, err := e.freeze(ctx, req.Project)
	if err != nil {
		return nil, err
	}

	libs := plan.Libraries()
	result := &ListResult{
		Libraries: make([]LibrarySummary, len(libs)),
		Builtins:  plan.Builtins(),
		Backends:  plan.Backends(),
	}
	for i, lib := range libs {
		result.Libraries[i] = LibrarySummary{
			Name:     lib.Name,
			Files:    len(lib.Files),
			Patterns: lib.Patterns,
		}
	}
	return result, nil
}
