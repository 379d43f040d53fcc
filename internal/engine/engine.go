// Package engine wires the configuration phase to the simulation engine.
//
// A run follows one path: the project's source patterns are resolved by the
// locator, libraries are registered in declaration order, options are
// recorded, the configuration is frozen into a BuildPlan, and the plan is
// handed to the delegate. Nothing reaches the delegate unless the freeze
// succeeded.
//
// Key components:
//   - Configure: builds a mutable planner.Builder from a config.Project
//   - Plan/List: freeze the builder and describe the result
//   - Run: freeze, then invoke the external simulation engine once
package engine

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/danieljhkim/hdlplan/internal/clock"
	"github.com/danieljhkim/hdlplan/internal/delegate"
	"github.com/danieljhkim/hdlplan/internal/fsops"
	"github.com/danieljhkim/hdlplan/internal/hash"
	"github.com/danieljhkim/hdlplan/internal/locator"
)

// Engine orchestrates all hdlplan operations.
// It is the main API surface called by the CLI.
type Engine struct {
	locator  *locator.Locator
	hasher   hash.Hasher
	clock    clock.Clock
	runner   delegate.Runner
	logger   *slog.Logger
	newRunID func() string
}

// New creates a new Engine with the given dependencies. runner may be nil
// for engines that only plan; logger may be nil to discard logs.
func New(
	fs fsops.FS,
	hasher hash.Hasher,
	clk clock.Clock,
	runner delegate.Runner,
	logger *slog.Logger,
) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{
		locator:  locator.New(fs),
		hasher:   hasher,
		clock:    clk,
		runner:   runner,
		logger:   logger,
		newRunID: uuid.NewString,
	}
}
