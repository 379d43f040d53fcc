package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/hdlplan/internal/clock"
	"github.com/danieljhkim/hdlplan/internal/config"
	"github.com/danieljhkim/hdlplan/internal/ctxlog"
	"github.com/danieljhkim/hdlplan/internal/delegate"
	"github.com/danieljhkim/hdlplan/internal/engine"
	"github.com/danieljhkim/hdlplan/internal/fsops"
	"github.com/danieljhkim/hdlplan/internal/hash"
)

// projectKey stores the loaded project in the command context.
type projectKey struct{}

// pathsKey stores the user paths in the command context.
type pathsKey struct{}

// projectFrom returns the project loaded by the root command.
func projectFrom(ctx context.Context) (*config.Project, error) {
	if p, ok := ctx.Value(projectKey{}).(*config.Project); ok {
		return p, nil
	}
	return nil, engine.ErrNoProject
}

// pathsFrom returns the user paths, falling back to the defaults.
func pathsFrom(ctx context.Context) (*config.Paths, error) {
	if p, ok := ctx.Value(pathsKey{}).(*config.Paths); ok {
		return p, nil
	}
	return config.DefaultPaths()
}

// newLogger builds the command logger on stderr.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// newEngine creates an engine with real implementations of all dependencies.
// The simulation engine's output goes to the command's writers.
func newEngine(cmd *cobra.Command, p *config.Project) *engine.Engine {
	logger := ctxlog.FromContext(cmd.Context())
	runner := &delegate.ExecRunner{
		Command: p.Runner.Command,
		Format:  p.RunnerFormat(),
		Dir:     p.Runner.Dir,
		Stdout:  cmd.OutOrStdout(),
		Stderr:  cmd.ErrOrStderr(),
		Logger:  logger,
	}
	return engine.New(fsops.NewRealFS(), hash.NewSHA256Hasher(), clock.System{}, runner, logger)
}

// jsonOutput reports whether --json was given.
func jsonOutput(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

// outputJSON writes a value as indented JSON.
func outputJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
