package audiomux

import (
	"time"

	"github.com/shaban/audiomux/fade"
)

// Channel is one playback slot. It wraps a single Device, tracks the clip
// assigned to it and the base volume/pitch the caller asked for, and holds
// at most one active fade on its base volume.
//
// A channel is free — eligible for reassignment by Play — when its device
// reports not-playing and it is not locked. Channels are created with their
// group's pool and live until the manager closes; Stop releases the slot,
// never the channel.
type Channel struct {
	dev    Device
	group  *Group
	clip   Clip
	volume float64 // base volume, before group and master multipliers
	pitch  float64
	loop   bool
	locked bool
	fade   *fade.Handle
}

// Clip returns the assigned clip, or nil when the channel is unassigned.
func (c *Channel) Clip() Clip { return c.clip }

// Volume returns the channel's base volume.
func (c *Channel) Volume() float64 { return c.volume }

// Pitch returns the channel's playback rate multiplier.
func (c *Channel) Pitch() float64 { return c.pitch }

// Loop reports whether the assigned clip repeats.
func (c *Channel) Loop() bool { return c.loop }

// IsPlaying reports whether the underlying device is emitting audio.
func (c *Channel) IsPlaying() bool { return c.dev.IsPlaying() }

// Fading reports whether a fade is currently driving the base volume.
func (c *Channel) Fading() bool { return c.fade != nil && !c.fade.Done() }

// Lock marks the channel ineligible for automatic reuse even once it stops
// playing. Callers lock a channel to keep manual control of it outside the
// normal allocation flow.
func (c *Channel) Lock() { c.locked = true }

// Unlock clears the lock, returning the channel to the allocation pool.
// Unlocking does not interrupt playback.
func (c *Channel) Unlock() { c.locked = false }

// Locked reports whether the channel is reserved.
func (c *Channel) Locked() bool { return c.locked }

// SetVolume sets the base volume. The device hears the change on the next
// tick, when the effective product is recomputed.
func (c *Channel) SetVolume(v float64) error {
	if v < 0 {
		return ErrInvalidVolume
	}
	c.volume = v
	return nil
}

// SetPitch sets the playback rate multiplier and pushes it to the device
// immediately.
func (c *Channel) SetPitch(p float64) {
	c.pitch = p
	c.dev.SetPitch(p)
}

// Stop halts playback, clears the clip assignment and cancels any fade on
// this channel. Safe to call on an idle channel.
func (c *Channel) Stop() {
	c.cancelFade()
	c.clip = nil
	c.dev.Stop()
}

// FadeTo drives the channel's base volume toward target over duration,
// replacing any fade already running on this channel. Group and master
// volume are untouched. If opts.StopOnComplete is set the channel stops
// when the target is reached; opts.OnComplete then fires after the stop.
func (c *Channel) FadeTo(target float64, duration time.Duration, opts FadeOpts) error {
	if target < 0 {
		return ErrInvalidVolume
	}
	c.cancelFade()
	h := c.group.mgr.timeline.Animate(
		func() float64 { return c.volume },
		func(v float64) { c.volume = v },
		target, duration, opts.IgnoreTimeScale,
	)
	h.OnComplete(func() {
		if c.fade == h {
			c.fade = nil
		}
		if opts.StopOnComplete {
			c.Stop()
		}
		if opts.OnComplete != nil {
			opts.OnComplete()
		}
	})
	c.fade = h
	return nil
}

// start assigns the clip and begins playback at the requested base volume.
func (c *Channel) start(clip Clip, volume, pitch float64, loop bool) error {
	c.cancelFade()
	c.clip = clip
	c.volume = volume
	c.pitch = pitch
	c.loop = loop
	return c.dev.Start(clip, c.effective(), pitch, loop)
}

// free reports whether Play may reassign this channel.
func (c *Channel) free() bool {
	return !c.locked && !c.dev.IsPlaying()
}

func (c *Channel) cancelFade() {
	if c.fade != nil {
		c.fade.Cancel()
		c.fade = nil
	}
}

// effective is the volume the device actually emits: the product of the
// channel, group and master levels, clamped to [0, 1] at this boundary.
func (c *Channel) effective() float64 {
	return clamp01(c.volume * c.group.volume * c.group.mgr.masterVolume)
}

// apply pushes the current effective volume to the device. Called from
// Manager.Tick for every playing channel.
func (c *Channel) apply() {
	c.dev.SetVolume(c.effective())
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
