package fade

import (
	"time"

	"github.com/google/uuid"
)

// Timeline owns every active fade and advances them in registration order.
// It is driven from a single control goroutine; nothing here locks.
type Timeline struct {
	active []*Handle
}

// NewTimeline returns an empty timeline.
func NewTimeline() *Timeline {
	return &Timeline{}
}

// Animate registers a linear fade from the getter's current value to target
// over the given duration and returns its handle in the Running state. The
// first sample is produced on the next Tick, never synchronously; a zero or
// negative duration completes on that first tick.
//
// When unscaled is true the fade advances by the raw tick delta and keeps
// moving while scaled time is paused.
func (t *Timeline) Animate(get func() float64, set func(float64), target float64, duration time.Duration, unscaled bool) *Handle {
	h := &Handle{
		id:       uuid.New(),
		state:    Running,
		set:      set,
		from:     get(),
		target:   target,
		duration: duration,
		unscaled: unscaled,
	}
	t.active = append(t.active, h)
	return h
}

// Tick advances every running fade: scale-respecting fades by scaled,
// unscaled fades by unscaled. A handle cancelled earlier in the same tick
// (for example by another fade's callback) is skipped, so no sample from a
// cancelled fade is ever delivered. Fades registered during the tick start
// on the next one.
func (t *Timeline) Tick(scaled, unscaled time.Duration) {
	snapshot := t.active
	for _, h := range snapshot {
		if h.state != Running {
			continue
		}
		dt := scaled
		if h.unscaled {
			dt = unscaled
		}
		h.step(dt)
	}

	kept := t.active[:0]
	for _, h := range t.active {
		if h.state == Running {
			kept = append(kept, h)
		}
	}
	t.active = kept
}

// CancelAll cancels every running fade. Used at teardown so no completion
// callback can fire into released channels.
func (t *Timeline) CancelAll() {
	for _, h := range t.active {
		h.Cancel()
	}
	t.active = t.active[:0]
}

// Len returns the number of fades still running.
func (t *Timeline) Len() int {
	n := 0
	for _, h := range t.active {
		if h.state == Running {
			n++
		}
	}
	return n
}
