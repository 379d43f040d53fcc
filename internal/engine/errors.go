package engine

import "errors"

var (
	// ErrNoProject indicates an operation was called without a project.
	ErrNoProject = errors.New("no project configuration")

	// ErrNoRunner indicates Run was called on an engine built without a
	// simulation engine.
	ErrNoRunner = errors.New("no simulation engine configured")
)
