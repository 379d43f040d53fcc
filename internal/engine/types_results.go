package engine

import (
	"time"

	"github.com/danieljhkim/hdlplan/internal/delegate"
	"github.com/danieljhkim/hdlplan/internal/planner"
)

// PlanResult represents a frozen plan.
type PlanResult struct {
	// Plan is the immutable build plan
	Plan *planner.BuildPlan

	// Fingerprint digests the plan and its source contents; empty when
	// skipped
	Fingerprint string
}

// RunResult represents one simulation run.
type RunResult struct {
	// RunID identifies the run; it is also exported to the engine
	RunID string `json:"run_id"`

	// Status is the simulation engine's exit status, unchanged
	Status delegate.ExitStatus `json:"status"`

	// Fingerprint is the digest of the plan that was run
	Fingerprint string `json:"fingerprint"`

	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`

	Plan *planner.BuildPlan `json:"-"`
}

// LibrarySummary describes one planned library.
type LibrarySummary struct {
	Name     string   `json:"name"`
	Files    int      `json:"files"`
	Patterns []string `json:"patterns"`
}

// ListResult represents the libraries of a frozen plan, in compile order.
type ListResult struct {
	Libraries []LibrarySummary `json:"libraries"`
	Builtins  []string         `json:"builtins"`
	Backends  []string         `json:"backends"`
}

// TotalFiles returns the number of files across all libraries.
func (r *ListResult) TotalFiles() int {
	total := 0
	for _, lib := range r.Libraries {
		total += lib.Files
	}
	return total
}
