package delegate

import "context"

// FakeRunner records invocations and returns a canned status.
type FakeRunner struct {
	Status ExitStatus
	Err    error
	Calls  []Invocation
}

func (f *FakeRunner) Run(_ context.Context, inv Invocation) (ExitStatus, error) {
	f.Calls = append(f.Calls, inv)
	return f.Status, f.Err
}
