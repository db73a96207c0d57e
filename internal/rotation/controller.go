// Package rotation advances the current quote index on a fixed interval.
package rotation

import "time"

// DefaultInterval matches the stock one minute cadence.
const DefaultInterval = time.Minute

// State is the controller state.
type State int

const (
	// Idle means there is nothing to show.
	Idle State = iota

	// Rotating means at least one quote is stored.
	Rotating
)

// String returns the state name used in logs and API responses.
func (s State) String() string {
	if s == Rotating {
		return "rotating"
	}

	return "idle"
}

// Controller owns the current index and the time of the last rotation.
// A render is pending from the moment the index changes until Rendered is
// called, so a failed commit is retried on the next Tick without advancing.
//
// Controller is not safe for concurrent use.
type Controller struct {
	interval time.Duration
	now      func() time.Time

	count   int
	index   int
	last    time.Time
	pending bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// New returns an idle controller. A non-positive interval uses DefaultInterval.
func New(interval time.Duration, opts ...Option) *Controller {
	if interval <= 0 {
		interval = DefaultInterval
	}

	c := &Controller{interval: interval, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// State returns Idle when the count is zero and Rotating otherwise.
func (c *Controller) State() State {
	if c.count == 0 {
		return Idle
	}

	return Rotating
}

// Index returns the current index. It is always 0 when idle.
func (c *Controller) Index() int {
	return c.index
}

// Count returns the quote count last reported through SetCount.
func (c *Controller) Count() int {
	return c.count
}

// Interval returns the rotation interval.
func (c *Controller) Interval() time.Duration {
	return c.interval
}

// Pending reports whether a render is owed.
func (c *Controller) Pending() bool {
	return c.pending
}

// SetCount records a new quote count. An index that would fall outside the
// new count is clamped to 0 immediately. Returns true when the displayed
// position changed and a render is now pending.
func (c *Controller) SetCount(n int) bool {
	n = max(n, 0)
	prev := c.count
	c.count = n

	switch {
	case n == 0:
		changed := prev > 0
		c.index = 0
		c.pending = changed

		return changed

	case prev == 0:
		c.index = 0
		c.last = c.now()
		c.pending = true

		return true

	case c.index >= n:
		c.index = 0
		c.pending = true

		return true
	}

	return false
}

// Tick advances to (index+1) mod count once the interval has elapsed since
// the last rotation. It returns the index to render and whether a render is
// due, which includes a pending render from an earlier failed commit.
func (c *Controller) Tick() (int, bool) {
	if c.count == 0 {
		return 0, c.pending
	}

	now := c.now()
	if now.Sub(c.last) >= c.interval {
		c.index = (c.index + 1) % c.count
		c.last = now
		c.pending = true
	}

	return c.index, c.pending
}

// Next advances immediately and restarts the interval.
func (c *Controller) Next() int {
	if c.count == 0 {
		return 0
	}

	c.index = (c.index + 1) % c.count
	c.last = c.now()
	c.pending = true

	return c.index
}

// Request marks a render of the current index as pending.
func (c *Controller) Request() {
	c.pending = true
}

// Reset moves back to index 0 and restarts the interval.
func (c *Controller) Reset() {
	c.index = 0
	c.last = c.now()
	c.pending = true
}

// Rendered clears the pending render after a successful commit.
func (c *Controller) Rendered() {
	c.pending = false
}
