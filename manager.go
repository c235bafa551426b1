package audiomux

import (
	"errors"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/shaban/audiomux/fade"
)

// current guards the process against a second live manager. All access
// happens on the control goroutine, like every other piece of core state.
var current *Manager

// Manager owns the ordered set of groups (the implicit one last), the
// master volume, the fade timeline and the notification hub. It is created
// with New, driven with Tick and torn down with Close.
type Manager struct {
	logger       *log.Logger
	groups       []*Group
	masterVolume float64
	timeScale    float64
	timeline     *fade.Timeline
	masterFade   *fade.Handle
	hub          *Hub
	closed       bool
}

// Option customizes a Manager at construction.
type Option func(*Manager)

// WithLogger replaces the default stderr logger.
func WithLogger(l *log.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

func defaultLogger() *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "audiomux",
	})
}

// New builds the process manager from cfg, creating one Device per pooled
// channel via newDevice. The implicit catch-all group is synthesized and
// appended after the declared ones.
//
// At most one manager is live at a time. While one exists, New logs a
// warning, discards the newcomer and returns the original together with
// ErrManagerExists — the original stays authoritative.
func New(cfg *Config, newDevice DeviceFactory, opts ...Option) (*Manager, error) {
	if current != nil {
		current.logger.Warn("manager already live, discarding duplicate init")
		return current, ErrManagerExists
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if newDevice == nil {
		return nil, errors.New("audiomux: device factory is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &Manager{
		logger:       defaultLogger(),
		masterVolume: cfg.MasterVolume,
		timeScale:    1,
		timeline:     fade.NewTimeline(),
		hub:          newHub(),
	}
	if m.masterVolume == 0 {
		m.masterVolume = 1
	}
	for _, opt := range opts {
		opt(m)
	}

	for _, gc := range cfg.Groups {
		g, err := newGroup(m, gc, newDevice)
		if err != nil {
			return nil, err
		}
		m.groups = append(m.groups, g)
	}

	// The catch-all group goes last so declared ids win the linear scan.
	poolSize := cfg.DefaultPoolSize
	if poolSize == 0 {
		poolSize = defaultPoolSize
	}
	def, err := newGroup(m, GroupConfig{ID: GroupDefault, PoolSize: poolSize, Volume: 1}, newDevice)
	if err != nil {
		return nil, err
	}
	m.groups = append(m.groups, def)

	current = m
	m.logger.Debug("manager initialized", "groups", len(m.groups), "master_volume", m.masterVolume)
	return m, nil
}

// Close tears the manager down: every fade is cancelled first so no
// completion callback can fire into a released channel, then every group is
// stopped and the process guard cleared. Idempotent.
func (m *Manager) Close() error {
	if m.closed {
		return nil
	}
	m.masterFade = nil
	m.timeline.CancelAll()
	for _, g := range m.groups {
		g.fade = nil
		g.Stop()
	}
	m.closed = true
	if current == m {
		current = nil
	}
	m.logger.Debug("manager closed")
	return nil
}

// Tick advances every running fade and then pushes the recomputed effective
// volume to each playing device. dt is the wall-clock time since the
// previous tick; scale-respecting fades advance by dt multiplied by the
// manager's time scale, IgnoreTimeScale fades by dt itself.
func (m *Manager) Tick(dt time.Duration) {
	if m.closed {
		return
	}
	scaled := time.Duration(float64(dt) * m.timeScale)
	m.timeline.Tick(scaled, dt)
	for _, g := range m.groups {
		for _, c := range g.channels {
			if c.dev.IsPlaying() {
				c.apply()
			}
		}
	}
}

// SetTimeScale sets the multiplier applied to tick deltas for
// scale-respecting fades. Zero freezes them; IgnoreTimeScale fades keep
// moving. Negative values clamp to zero.
func (m *Manager) SetTimeScale(s float64) {
	if s < 0 {
		s = 0
	}
	m.timeScale = s
}

// TimeScale returns the current time scale.
func (m *Manager) TimeScale() float64 { return m.timeScale }

// MasterVolume returns the global volume multiplier.
func (m *Manager) MasterVolume() float64 { return m.masterVolume }

// Group returns the registered group with the given id. Linear scan in
// declaration order; the implicit group sits last.
func (m *Manager) Group(id GroupID) (*Group, bool) {
	for _, g := range m.groups {
		if g.id == id {
			return g, true
		}
	}
	return nil, false
}

// Groups returns the groups in routing order, the implicit one last.
func (m *Manager) Groups() []*Group {
	out := make([]*Group, len(m.groups))
	copy(out, m.groups)
	return out
}

func (m *Manager) defaultGroup() *Group {
	return m.groups[len(m.groups)-1]
}

// Play starts clip on the implicit group.
func (m *Manager) Play(clip Clip, volume, pitch float64, loop bool) (*Channel, error) {
	if m.closed {
		return nil, ErrManagerClosed
	}
	return m.defaultGroup().Play(clip, volume, pitch, loop)
}

// PlayIn starts clip on the named group. An unregistered id is logged and
// answered with ErrUnknownGroup; no channel state changes.
func (m *Manager) PlayIn(id GroupID, clip Clip, volume, pitch float64, loop bool) (*Channel, error) {
	if m.closed {
		return nil, ErrManagerClosed
	}
	g, ok := m.Group(id)
	if !ok {
		m.logger.Warn("play routed to unknown group", "group", id, "clip", clip.Name())
		return nil, ErrUnknownGroup
	}
	return g.Play(clip, volume, pitch, loop)
}

// StopAll stops every channel in every group.
func (m *Manager) StopAll() {
	for _, g := range m.groups {
		g.Stop()
	}
}

// StopGroup stops every channel in the named group.
func (m *Manager) StopGroup(id GroupID) error {
	g, ok := m.Group(id)
	if !ok {
		m.logger.Warn("stop routed to unknown group", "group", id)
		return ErrUnknownGroup
	}
	g.Stop()
	return nil
}

// StopClip stops every channel across all groups assigned the given clip.
// Idempotent.
func (m *Manager) StopClip(clip Clip) {
	for _, g := range m.groups {
		g.StopClip(clip)
	}
}

// UnlockAll clears the lock on every channel in every group.
func (m *Manager) UnlockAll() {
	for _, g := range m.groups {
		g.Unlock()
	}
}

// UnlockClip clears the lock on every channel assigned the given clip.
func (m *Manager) UnlockClip(clip Clip) {
	for _, g := range m.groups {
		g.UnlockClip(clip)
	}
}

// SetMasterVolume sets the global multiplier and publishes
// EventMasterVolumeChanged. Channels hear the change on the next tick.
func (m *Manager) SetMasterVolume(v float64) error {
	if v < 0 {
		return ErrInvalidVolume
	}
	m.masterVolume = v
	m.hub.publish(EventMasterVolumeChanged)
	return nil
}

// SetGroupVolume sets the named group's multiplier.
func (m *Manager) SetGroupVolume(id GroupID, v float64) error {
	g, ok := m.Group(id)
	if !ok {
		m.logger.Warn("volume routed to unknown group", "group", id)
		return ErrUnknownGroup
	}
	return g.SetVolume(v)
}

// SetClipVolume sets the base volume of every channel across all groups
// assigned the given clip.
func (m *Manager) SetClipVolume(clip Clip, v float64) error {
	if v < 0 {
		return ErrInvalidVolume
	}
	for _, g := range m.groups {
		for _, c := range g.channels {
			if c.clip == clip {
				c.volume = v
			}
		}
	}
	return nil
}

// FadeMasterTo drives the master volume toward target, exactly like a group
// fade drives its group volume. The manager holds at most one master fade;
// every call cancels and replaces the previous handle. Each step publishes
// EventMasterVolumeChanged. With opts.StopOnComplete every channel in every
// group stops at the target, before opts.OnComplete.
func (m *Manager) FadeMasterTo(target float64, duration time.Duration, opts FadeOpts) error {
	if m.closed {
		return ErrManagerClosed
	}
	if target < 0 {
		return ErrInvalidVolume
	}
	if m.masterFade != nil {
		m.masterFade.Cancel()
		m.masterFade = nil
	}
	h := m.timeline.Animate(
		func() float64 { return m.masterVolume },
		func(v float64) { m.masterVolume = v },
		target, duration, opts.IgnoreTimeScale,
	)
	h.OnStep(func(float64) {
		m.hub.publish(EventMasterVolumeChanged)
	})
	h.OnComplete(func() {
		if m.masterFade == h {
			m.masterFade = nil
		}
		if opts.StopOnComplete {
			m.StopAll()
		}
		if opts.OnComplete != nil {
			opts.OnComplete()
		}
	})
	m.masterFade = h
	return nil
}

// FadeMasterOut fades the master volume to silence and stops every channel
// on completion.
func (m *Manager) FadeMasterOut(duration time.Duration) error {
	return m.FadeMasterTo(0, duration, FadeOpts{StopOnComplete: true})
}

// FadeMasterIn fades the master volume back up to 1.
func (m *Manager) FadeMasterIn(duration time.Duration) error {
	return m.FadeMasterTo(1, duration, FadeOpts{})
}

// FadeGroupTo fades the named group's volume toward target.
func (m *Manager) FadeGroupTo(id GroupID, target float64, duration time.Duration, opts FadeOpts) error {
	if m.closed {
		return ErrManagerClosed
	}
	g, ok := m.Group(id)
	if !ok {
		m.logger.Warn("fade routed to unknown group", "group", id)
		return ErrUnknownGroup
	}
	return g.FadeTo(target, duration, opts)
}

// FadeSourcesTo fades the base volume of every playing channel in the named
// group, leaving the group multiplier alone.
func (m *Manager) FadeSourcesTo(id GroupID, target float64, duration time.Duration, opts FadeOpts) error {
	if m.closed {
		return ErrManagerClosed
	}
	g, ok := m.Group(id)
	if !ok {
		m.logger.Warn("fade routed to unknown group", "group", id)
		return ErrUnknownGroup
	}
	return g.FadeSourcesTo(target, duration, opts)
}

// FadeClipTo fades every channel across all groups assigned the given clip
// toward target. Each matching channel gets its own independent handle, so
// replacement couples nothing across channels and opts.OnComplete fires per
// channel.
func (m *Manager) FadeClipTo(clip Clip, target float64, duration time.Duration, opts FadeOpts) error {
	if m.closed {
		return ErrManagerClosed
	}
	if target < 0 {
		return ErrInvalidVolume
	}
	for _, g := range m.groups {
		for _, c := range g.channels {
			if c.clip == clip {
				c.FadeTo(target, duration, opts)
			}
		}
	}
	return nil
}

// Crossfade delegates to the named group's Crossfade.
func (m *Manager) Crossfade(id GroupID, clip Clip, volume, pitch float64, loop bool, duration time.Duration, opts FadeOpts) (*Channel, error) {
	if m.closed {
		return nil, ErrManagerClosed
	}
	g, ok := m.Group(id)
	if !ok {
		m.logger.Warn("crossfade routed to unknown group", "group", id, "clip", clip.Name())
		return nil, ErrUnknownGroup
	}
	return g.Crossfade(clip, volume, pitch, loop, duration, opts)
}

// Subscribe registers a listener for manager events and returns its token.
func (m *Manager) Subscribe(fn func(Event)) uuid.UUID {
	return m.hub.Subscribe(fn)
}

// Unsubscribe removes a listener. Unknown tokens are ignored.
func (m *Manager) Unsubscribe(id uuid.UUID) {
	m.hub.Unsubscribe(id)
}
