package delegate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"syscall"

	"github.com/danieljhkim/hdlplan/internal/cfgerr"
	"github.com/danieljhkim/hdlplan/internal/planner"
)

// Environment variables set for the external engine.
const (
	EnvRunID      = "HDLPLAN_RUN_ID"
	EnvSimulator  = "HDLPLAN_SIMULATOR"
	EnvPlanFormat = "HDLPLAN_PLAN_FORMAT"
)

// ExecRunner runs an external command. The plan manifest is written to the
// command's stdin; pass-through arguments are appended to Command.
type ExecRunner struct {
	// Command is the program and its fixed leading arguments
	Command []string

	// Format is the manifest encoding written to stdin
	Format planner.Format

	// Dir is the working directory (empty for the current one)
	Dir string

	// Stdout and Stderr receive the engine's output (default os.Stdout/os.Stderr)
	Stdout io.Writer
	Stderr io.Writer

	Logger *slog.Logger
}

// Run executes the engine once. A non-zero exit is returned as a status with
// a nil error; only failing to run the command at all is an error.
func (r *ExecRunner) Run(ctx context.Context, inv Invocation) (ExitStatus, error) {
	if len(r.Command) == 0 {
		return ExitStatus{}, cfgerr.Configurationf("no runner command configured")
	}
	if inv.Plan == nil {
		return ExitStatus{}, cfgerr.Configurationf("runner invoked without a frozen plan")
	}

	format := r.Format
	if format == "" {
		format = planner.FormatJSON
	}

	var stdin bytes.Buffer
	if err := inv.Plan.Manifest().Encode(&stdin, format); err != nil {
		return ExitStatus{}, fmt.Errorf("failed to encode plan manifest: %w", err)
	}

	args := append(append([]string{}, r.Command[1:]...), inv.Args...)
	cmd := exec.CommandContext(ctx, r.Command[0], args...)
	cmd.Dir = r.Dir
	cmd.Stdin = &stdin
	cmd.Stdout = orDefault(r.Stdout, os.Stdout)
	cmd.Stderr = orDefault(r.Stderr, os.Stderr)
	cmd.Env = append(os.Environ(),
		EnvRunID+"="+inv.RunID,
		EnvSimulator+"="+inv.Simulator,
		EnvPlanFormat+"="+string(format),
	)

	logger := r.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger.Debug("starting simulation engine", "command", r.Command[0], "args", args, "run_id", inv.RunID)

	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ExitStatus{}, fmt.Errorf("simulation engine interrupted: %w", ctxErr)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitCode(exitErr)
		logger.Debug("simulation engine failed", "run_id", inv.RunID, "code", code)
		return ExitStatus{Code: code}, nil
	}
	if err != nil {
		return ExitStatus{}, fmt.Errorf("failed to run %s: %w", r.Command[0], err)
	}

	logger.Debug("simulation engine finished", "run_id", inv.RunID)
	return ExitStatus{}, nil
}

// exitCode maps a signal death to 128+signal, the status a shell reports.
func exitCode(err *exec.ExitError) int {
	if code := err.ExitCode(); code >= 0 {
		return code
	}
	if ws, ok := err.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	return 1
}

func orDefault(w, def io.Writer) io.Writer {
	if w == nil {
		return def
	}
	return w
}
