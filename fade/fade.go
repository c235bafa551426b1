// Package fade schedules timed volume interpolations on a manually advanced
// timeline. It stands in for an external tween engine: callers register a
// fade with Animate, then drive time by calling Timeline.Tick once per frame.
//
// A Handle moves Running → Completed when its duration elapses, or
// Running → Cancelled when replaced. Both states are terminal. Cancellation
// is synchronous: once Cancel returns, no step or completion callback tied
// to that handle will fire, including later in the same tick.
package fade

import (
	"time"

	"github.com/google/uuid"
)

// State is the lifecycle phase of a fade handle.
type State int

const (
	Idle State = iota
	Running
	Completed
	Cancelled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	}
	return "unknown"
}

// Handle is one scheduled interpolation from a pinned start value to a
// target. The start value is read once, at registration.
type Handle struct {
	id       uuid.UUID
	state    State
	set      func(float64)
	from     float64
	target   float64
	duration time.Duration
	elapsed  time.Duration
	unscaled bool

	onStep     func(float64)
	onComplete func()
}

// ID returns the handle's unique identifier.
func (h *Handle) ID() uuid.UUID { return h.id }

// State returns the handle's current lifecycle state.
func (h *Handle) State() State { return h.state }

// Target returns the value the fade converges toward.
func (h *Handle) Target() float64 { return h.target }

// Done reports whether the handle reached a terminal state.
func (h *Handle) Done() bool { return h.state == Completed || h.state == Cancelled }

// OnStep registers a callback invoked after every value the fade writes.
// Returns the handle for chaining.
func (h *Handle) OnStep(fn func(v float64)) *Handle {
	h.onStep = fn
	return h
}

// OnComplete registers a callback invoked exactly once when the fade
// reaches its target. Cancelled fades never complete.
func (h *Handle) OnComplete(fn func()) *Handle {
	h.onComplete = fn
	return h
}

// Cancel moves a running handle to Cancelled. Terminal states are left
// untouched, so cancelling a completed or already cancelled fade is a no-op.
func (h *Handle) Cancel() {
	if h.state == Running {
		h.state = Cancelled
	}
}

// step advances the fade by dt and writes the interpolated value. On
// reaching the target it flips to Completed and fires the completion
// callback last, after the final value has been written.
func (h *Handle) step(dt time.Duration) {
	h.elapsed += dt
	if h.duration <= 0 || h.elapsed >= h.duration {
		h.set(h.target)
		if h.onStep != nil {
			h.onStep(h.target)
		}
		h.state = Completed
		if h.onComplete != nil {
			h.onComplete()
		}
		return
	}
	frac := float64(h.elapsed) / float64(h.duration)
	v := h.from + (h.target-h.from)*frac
	h.set(v)
	if h.onStep != nil {
		h.onStep(v)
	}
}
