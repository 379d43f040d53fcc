// Package cfgerr defines the errors raised while a build plan is being
// configured.
//
// Every error in this package is fatal to the configuration phase: it
// propagates to the top-level caller, which reports it and exits non-zero
// before any external simulation is attempted. Typed errors carry the context
// needed for a useful message and unwrap to a sentinel so callers can match
// them with errors.Is.
package cfgerr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrPath indicates a declared source root does not exist.
	ErrPath = errors.New("source root not found")

	// ErrDuplicateLibrary indicates a library name is already registered.
	ErrDuplicateLibrary = errors.New("duplicate library")

	// ErrEmptySourceSet indicates a library resolved to zero source files.
	ErrEmptySourceSet = errors.New("empty source set")

	// ErrConfiguration indicates an invalid configuration.
	ErrConfiguration = errors.New("configuration error")
)

// PathError reports a source root that does not exist or is not a directory.
type PathError struct {
	Root string
	Err  error
}

func (e *PathError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%v: %s: %v", ErrPath, e.Root, e.Err)
	}
	return fmt.Sprintf("%v: %s", ErrPath, e.Root)
}

// Unwrap returns ErrPath so both the sentinel and the cause can be matched.
func (e *PathError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrPath}
	}
	return []error{ErrPath, e.Err}
}

// DuplicateLibraryError reports an attempt to register a library twice.
type DuplicateLibraryError struct {
	Name string
}

func (e *DuplicateLibraryError) Error() string {
	return fmt.Sprintf("%v: %q is already registered", ErrDuplicateLibrary, e.Name)
}

func (e *DuplicateLibraryError) Unwrap() error {
	return ErrDuplicateLibrary
}

// EmptySourceSetError reports a library with no source files at freeze time.
// Patterns lists every pattern contributed to the library; all of them
// matched nothing.
type EmptySourceSetError struct {
	Library  string
	Patterns []string
}

func (e *EmptySourceSetError) Error() string {
	if len(e.Patterns) == 0 {
		return fmt.Sprintf("%v: library %q has no source files and no source patterns", ErrEmptySourceSet, e.Library)
	}
	return fmt.Sprintf("%v: library %q has no source files (patterns matched nothing: %s)",
		ErrEmptySourceSet, e.Library, strings.Join(e.Patterns, ", "))
}

func (e *EmptySourceSetError) Unwrap() error {
	return ErrEmptySourceSet
}

// ConfigurationError is the catch-all for invalid configuration, including any
// mutation attempted after the configuration has been frozen.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%v: %s", ErrConfiguration, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

// Configurationf builds a ConfigurationError from a format string.
func Configurationf(format string, args ...any) error {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// IsConfigPhase reports whether err belongs to the configuration taxonomy.
func IsConfigPhase(err error) bool {
	return errors.Is(err, ErrPath) ||
		errors.Is(err, ErrDuplicateLibrary) ||
		errors.Is(err, ErrEmptySourceSet) ||
		errors.Is(err, ErrConfiguration)
}
