package audiomux

import (
	"fmt"
	"time"

	"github.com/shaban/audiomux/fade"
)

// GroupID names a group of channels. Ids are declared in the configuration;
// GroupDefault is reserved for the implicit catch-all group the manager
// synthesizes itself.
type GroupID string

// GroupDefault is the implicit group that receives playback requests which
// name no group. It always exists and sits last in the manager's group
// order.
const GroupDefault GroupID = "default"

// FadeOpts tunes a fade started on a channel, group or the master volume.
// The zero value is a plain fade: scale-respecting, no stop, no callback.
type FadeOpts struct {
	// IgnoreTimeScale advances the fade by wall-clock time even while the
	// manager's time scale is zero.
	IgnoreTimeScale bool
	// StopOnComplete stops the faded scope once the target is reached.
	StopOnComplete bool
	// OnComplete fires exactly once when the target is reached, after the
	// stop (if any). It never fires for a fade that was replaced.
	OnComplete func()
}

// Group is a named, fixed-size pool of channels sharing a volume multiplier
// and an optional routing token. The pool size is frozen at initialization;
// channels are reassigned, never added or removed.
type Group struct {
	id       GroupID
	route    string
	volume   float64
	channels []*Channel
	fade     *fade.Handle
	mgr      *Manager
}

func newGroup(m *Manager, cfg GroupConfig, newDevice DeviceFactory) (*Group, error) {
	g := &Group{
		id:     cfg.ID,
		route:  cfg.Route,
		volume: cfg.Volume,
		mgr:    m,
	}
	if g.volume == 0 {
		g.volume = 1
	}
	g.channels = make([]*Channel, 0, cfg.PoolSize)
	for i := 0; i < cfg.PoolSize; i++ {
		dev, err := newDevice()
		if err != nil {
			return nil, fmt.Errorf("group %q: device %d: %w", cfg.ID, i, err)
		}
		g.channels = append(g.channels, &Channel{dev: dev, group: g, volume: 1, pitch: 1})
	}
	return g, nil
}

// ID returns the group's identifier.
func (g *Group) ID() GroupID { return g.id }

// Route returns the optional external mixer routing token.
func (g *Group) Route() string { return g.route }

// Volume returns the group's volume multiplier.
func (g *Group) Volume() float64 { return g.volume }

// Channels returns the group's channels in pool order.
func (g *Group) Channels() []*Channel {
	out := make([]*Channel, len(g.channels))
	copy(out, g.channels)
	return out
}

// Fading reports whether a group-level fade is in flight.
func (g *Group) Fading() bool { return g.fade != nil && !g.fade.Done() }

// SetVolume sets the group multiplier. Playing channels pick the change up
// on the next tick.
func (g *Group) SetVolume(v float64) error {
	if v < 0 {
		return ErrInvalidVolume
	}
	g.volume = v
	return nil
}

// Play assigns the first free channel in the pool to clip and starts it.
// When every channel is busy or locked it fails with ErrNoFreeChannel; the
// pool never steals a playing channel.
func (g *Group) Play(clip Clip, volume, pitch float64, loop bool) (*Channel, error) {
	if volume < 0 {
		return nil, ErrInvalidVolume
	}
	for _, c := range g.channels {
		if !c.free() {
			continue
		}
		if err := c.start(clip, volume, pitch, loop); err != nil {
			return nil, fmt.Errorf("group %q: %w", g.id, err)
		}
		return c, nil
	}
	g.mgr.logger.Warn("pool exhausted", "group", g.id, "clip", clip.Name())
	return nil, ErrNoFreeChannel
}

// Stop halts every channel in the group, clearing assignments and
// cancelling per-channel fades. A group-level volume fade, if any, keeps
// running. Idempotent.
func (g *Group) Stop() {
	for _, c := range g.channels {
		c.Stop()
	}
}

// StopClip halts every channel currently assigned the given clip.
// Idempotent.
func (g *Group) StopClip(clip Clip) {
	for _, c := range g.channels {
		if c.clip == clip {
			c.Stop()
		}
	}
}

// Unlock clears the lock on every channel in the group, making them
// eligible for reuse even mid-playback.
func (g *Group) Unlock() {
	for _, c := range g.channels {
		c.locked = false
	}
}

// UnlockClip clears the lock on channels assigned the given clip.
func (g *Group) UnlockClip(clip Clip) {
	for _, c := range g.channels {
		if c.clip == clip {
			c.locked = false
		}
	}
}

// FadeTo drives the group volume from its current value to target over
// duration. At most one group fade runs at a time: starting a new one
// cancels the previous handle, whose callbacks will never fire. When
// opts.StopOnComplete is set the whole group stops at the target, before
// opts.OnComplete.
func (g *Group) FadeTo(target float64, duration time.Duration, opts FadeOpts) error {
	if target < 0 {
		return ErrInvalidVolume
	}
	if g.fade != nil {
		g.fade.Cancel()
		g.fade = nil
	}
	h := g.mgr.timeline.Animate(
		func() float64 { return g.volume },
		func(v float64) { g.volume = v },
		target, duration, opts.IgnoreTimeScale,
	)
	h.OnComplete(func() {
		if g.fade == h {
			g.fade = nil
		}
		if opts.StopOnComplete {
			g.Stop()
		}
		if opts.OnComplete != nil {
			opts.OnComplete()
		}
	})
	g.fade = h
	return nil
}

// FadeOut fades the group to silence and stops it on completion.
func (g *Group) FadeOut(duration time.Duration) error {
	return g.FadeTo(0, duration, FadeOpts{StopOnComplete: true})
}

// FadeIn fades the group volume back up to 1.
func (g *Group) FadeIn(duration time.Duration) error {
	return g.FadeTo(1, duration, FadeOpts{})
}

// FadeSourcesTo fades the base volume of every playing channel toward
// target, leaving the group multiplier untouched — duck everything without
// changing the group level. Each channel gets its own handle; starting a
// new per-source fade replaces only that channel's previous one. opts apply
// to each channel independently, so OnComplete fires once per channel.
func (g *Group) FadeSourcesTo(target float64, duration time.Duration, opts FadeOpts) error {
	if target < 0 {
		return ErrInvalidVolume
	}
	for _, c := range g.channels {
		if c.IsPlaying() {
			c.FadeTo(target, duration, opts)
		}
	}
	return nil
}

// Crossfade fades every playing channel in the group to silence (each
// stopping on completion), then allocates a fresh channel for clip at
// volume zero and fades it up to volume over the same duration. Returns the
// incoming channel. If allocation fails the outgoing fades stay scheduled —
// the crossfade is not atomic across failure. opts.OnComplete fires when
// the incoming fade reaches its target.
func (g *Group) Crossfade(clip Clip, volume, pitch float64, loop bool, duration time.Duration, opts FadeOpts) (*Channel, error) {
	if volume < 0 {
		return nil, ErrInvalidVolume
	}
	for _, c := range g.channels {
		if c.IsPlaying() {
			c.FadeTo(0, duration, FadeOpts{
				IgnoreTimeScale: opts.IgnoreTimeScale,
				StopOnComplete:  true,
			})
		}
	}
	in, err := g.Play(clip, 0, pitch, loop)
	if err != nil {
		return nil, err
	}
	in.FadeTo(volume, duration, FadeOpts{
		IgnoreTimeScale: opts.IgnoreTimeScale,
		OnComplete:      opts.OnComplete,
	})
	return in, nil
}
