package engine

import (
	"context"
	"fmt"

	"github.com/danieljhkim/hdlplan/internal/cfgerr"
	"github.com/danieljhkim/hdlplan/internal/delegate"
)

// Run freezes the project and hands the plan to the simulation engine once.
// A non-zero engine status is returned in the result, not as an error.
func (e *Engine) Run(ctx context.Context, req RunRequest) (*RunResult, error) {
	planned, err := e.Plan(ctx, PlanRequest{Project: req.Project})
	if err != nil {
		return nil, err
	}
	if e.runner == nil {
		return nil, fmt.Errorf("%w: %w", cfgerr.ErrConfiguration, ErrNoRunner)
	}

	result := &RunResult{
		RunID:       e.newRunID(),
		Fingerprint: planned.Fingerprint,
		StartedAt:   e.clock.Now(),
		Plan:        planned.Plan,
	}
	e.logger.Info("starting simulation",
		"run_id", result.RunID,
		"simulator", req.Project.Simulator,
		"libraries", len(planned.Plan.Libraries()),
		"files", planned.Plan.FileCount())

	status, err := e.runner.Run(ctx, delegate.Invocation{
		Plan:      planned.Plan,
		Args:      req.Args,
		RunID:     result.RunID,
		Simulator: req.Project.Simulator,
	})
	result.Duration = e.clock.Since(result.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to run simulation engine: %w", err)
	}
	result.Status = status

	e.logger.Info("simulation finished",
		"run_id", result.RunID,
		"code", status.Code,
		"duration", result.Duration)
	return result, nil
}
