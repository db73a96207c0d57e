package clients

import (
	"sync"
	"time"

	"github.com/jostojic/quotescreen/internal/platform/config"
)

// State is the position of a circuit breaker.
type State int

const (
	// StateClosed lets every request through.
	StateClosed State = iota

	// StateOpen rejects requests until the cool-down has passed.
	StateOpen

	// StateHalfOpen lets a limited number of probes through.
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// transition is a state change reported to the caller, which logs it after
// the breaker lock is released.
type transition struct {
	from, to State
}

func (t transition) changed() bool { return t.from != t.to }

// breaker stops a panel uplink from being hammered while the cloud is down.
// A frame that cannot be delivered is retried by the control loop anyway, so
// failing fast costs nothing.
//
//	closed    -> open       after MaxFailures consecutive failures
//	open      -> half-open  once Timeout has passed since the last failure
//	half-open -> closed     after HalfOpenLimit successes
//	half-open -> open       on any failure
type breaker struct {
	cfg config.CircuitBreakerConfig
	now func() time.Time

	mu        sync.Mutex
	state     State
	failures  int
	successes int
	probes    int
	openedAt  time.Time
}

func newBreaker(cfg config.CircuitBreakerConfig, now func() time.Time) *breaker {
	cfg.MaxFailures = max(cfg.MaxFailures, 1)
	cfg.HalfOpenLimit = max(cfg.HalfOpenLimit, 1)

	if now == nil {
		now = time.Now
	}

	return &breaker{cfg: cfg, now: now}
}

// allow reports whether a request may proceed. An allowed request must be
// followed by exactly one call to done.
func (b *breaker) allow() (bool, transition) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t := transition{from: b.state, to: b.state}

	if b.state == StateOpen {
		if b.now().Sub(b.openedAt) < b.cfg.Timeout {
			return false, t
		}

		b.moveTo(StateHalfOpen)
		t.to = StateHalfOpen
	}

	if b.state == StateHalfOpen {
		if b.probes >= b.cfg.HalfOpenLimit {
			return false, t
		}

		b.probes++
	}

	return true, t
}

// done records the outcome of an allowed request.
func (b *breaker) done(ok bool) transition {
	b.mu.Lock()
	defer b.mu.Unlock()

	t := transition{from: b.state}

	switch {
	case b.state == StateHalfOpen && ok:
		b.probes--
		b.successes++

		if b.successes >= b.cfg.HalfOpenLimit {
			b.moveTo(StateClosed)
		}
	case b.state == StateHalfOpen:
		b.probes--
		b.moveTo(StateOpen)
	case ok:
		b.failures = 0
	default:
		b.failures++
		if b.failures >= b.cfg.MaxFailures {
			b.moveTo(StateOpen)
		}
	}

	t.to = b.state

	return t
}

func (b *breaker) current() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.state
}

// moveTo must be called with mu held.
func (b *breaker) moveTo(s State) {
	b.state = s
	b.failures = 0
	b.successes = 0

	switch s {
	case StateOpen:
		b.openedAt = b.now()
		b.probes = 0
	case StateClosed:
		b.probes = 0
	}
}
