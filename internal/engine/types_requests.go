package engine

import "github.com/danieljhkim/hdlplan/internal/config"

// PlanRequest represents a request to freeze a project into a plan.
type PlanRequest struct {
	// Project is the loaded project configuration
	Project *config.Project

	// SkipFingerprint skips hashing source contents
	SkipFingerprint bool
}

// RunRequest represents a request to plan and then simulate.
type RunRequest struct {
	// Project is the loaded project configuration
	Project *config.Project

	// Args are passed to the simulation engine unchanged
	Args []string
}

// ListRequest represents a request to summarize a project's libraries.
type ListRequest struct {
	Project *config.Project
}
