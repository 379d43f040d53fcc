// Package clock abstracts time so run timing can be tested deterministically.
package clock

import "time"

// Clock reports the current time.
type Clock interface {
	Now() time.Time
	Since(t time.Time) time.Duration
}

// System is the wall clock.
type System struct{}

func (System) Now() time.Time {
	return time.Now()
}

func (System) Since(t time.Time) time.Duration {
	return time.Since(t)
}

// Manual is a Clock that only moves when told to.
type Manual struct {
	current time.Time
}

// NewManual creates a Manual clock starting at t.
func NewManual(t time.Time) *Manual {
	return &Manual{current: t}
}

func (c *Manual) Now() time.Time {
	return c.current
}

func (c *Manual) Since(t time.Time) time.Duration {
	return c.current.Sub(t)
}

// Advance moves the clock forward by d.
func (c *Manual) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}
