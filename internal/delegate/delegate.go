// Package delegate hands a frozen build plan to an external simulation engine.
//
// The engine is opaque: hdlplan supplies the plan and pass-through arguments
// and reads back one exit status. Failed runs are reported, never retried,
// and the external status is surfaced unchanged.
package delegate

import (
	"context"
	"fmt"

	"github.com/danieljhkim/hdlplan/internal/planner"
)

// Invocation is one request to the external engine.
type Invocation struct {
	// Plan is the frozen plan to execute
	Plan *planner.BuildPlan

	// Args are passed through to the engine verbatim
	Args []string

	// RunID identifies this run in the engine's environment
	RunID string

	// Simulator names the backend the engine should drive (opaque here)
	Simulator string
}

// ExitStatus is the engine's final status.
type ExitStatus struct {
	Code int `json:"code"`
}

// Success reports whether the engine exited cleanly.
func (s ExitStatus) Success() bool {
	return s.Code == 0
}

// Runner drives an external engine.
type Runner interface {
	Run(ctx context.Context, inv Invocation) (ExitStatus, error)
}

// ExitError carries a non-zero engine status up to the process exit.
type ExitError struct {
	Status ExitStatus
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("simulation engine exited with status %d", e.Status.Code)
}

// ExitCode returns the engine's status so the CLI can exit with it verbatim.
func (e *ExitError) ExitCode() int {
	return e.Status.Code
}
