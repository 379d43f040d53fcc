package cfgerr

import (
	"context"
	"errors"
)

// exitCoder is implemented by errors that carry a process exit status that
// must be surfaced unchanged, such as a failed external simulation run.
type exitCoder interface {
	ExitCode() int
}

// ExitCode maps err to a process exit status. A nil error is 0, an error
// carrying its own status passes it through verbatim, an interrupted run is
// 130 and anything else is 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ec exitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	if errors.Is(err, context.Canceled) {
		return 130
	}
	return 1
}
