package cfgerr

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypedErrorsUnwrapToSentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		contains string
	}{
		{
			name:     "path",
			err:      &PathError{Root: "/nope", Err: fs.ErrNotExist},
			sentinel: ErrPath,
			contains: "/nope",
		},
		{
			name:     "duplicate library",
			err:      &DuplicateLibraryError{Name: "utils"},
			sentinel: ErrDuplicateLibrary,
			contains: `"utils"`,
		},
		{
			name:     "empty source set",
			err:      &EmptySourceSetError{Library: "core", Patterns: []string{"src/**/*.vhd", "lib/*.vhd"}},
			sentinel: ErrEmptySourceSet,
			contains: "src/**/*.vhd, lib/*.vhd",
		},
		{
			name:     "configuration",
			err:      Configurationf("registry is frozen"),
			sentinel: ErrConfiguration,
			contains: "registry is frozen",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("failed to configure: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.sentinel)
			assert.True(t, IsConfigPhase(wrapped))
			assert.Contains(t, wrapped.Error(), tt.contains)
		})
	}
}

func TestPathErrorKeepsCause(t *testing.T) {
	err := &PathError{Root: "rtl", Err: fs.ErrNotExist}
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.ErrorIs(t, err, ErrPath)

	var pe *PathError
	require.ErrorAs(t, fmt.Errorf("wrap: %w", err), &pe)
	assert.Equal(t, "rtl", pe.Root)
}

func TestEmptySourceSetErrorWithoutPatterns(t *testing.T) {
	err := &EmptySourceSetError{Library: "tb"}
	assert.Contains(t, err.Error(), "no source patterns")
}

type statusErr struct{ code int }

func (e statusErr) Error() string { return "exited" }
func (e statusErr) ExitCode() int { return e.code }

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 1, ExitCode(errors.New("boom")))
	assert.Equal(t, 1, ExitCode(&DuplicateLibraryError{Name: "x"}))
	assert.Equal(t, 42, ExitCode(fmt.Errorf("run: %w", statusErr{code: 42})))
	assert.Equal(t, 130, ExitCode(fmt.Errorf("failed to run simulation engine: %w", context.Canceled)))
	assert.False(t, IsConfigPhase(statusErr{code: 3}))
}
