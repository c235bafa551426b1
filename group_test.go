package audiomux

import (
	"errors"
	"testing"
	"time"
)

func sfxConfig(poolSize int) *Config {
	return &Config{
		MasterVolume:    1,
		DefaultPoolSize: 2,
		Groups: []GroupConfig{
			{ID: "sfx", PoolSize: poolSize, Volume: 1},
		},
	}
}

func TestPoolExhaustion(t *testing.T) {
	const n = 3
	m, _ := newTestManager(t, sfxConfig(n))

	for i := 0; i < n; i++ {
		if _, err := m.PlayIn("sfx", testClip("hit"), 1, 1, false); err != nil {
			t.Fatalf("play %d failed: %v", i, err)
		}
	}
	if _, err := m.PlayIn("sfx", testClip("hit"), 1, 1, false); !errors.Is(err, ErrNoFreeChannel) {
		t.Fatalf("expected ErrNoFreeChannel on play %d, got %v", n+1, err)
	}
}

func TestStopClipIdempotent(t *testing.T) {
	m, devs := newTestManager(t, sfxConfig(2))

	if _, err := m.PlayIn("sfx", testClip("music"), 1, 1, true); err != nil {
		t.Fatalf("play failed: %v", err)
	}

	check := func() {
		t.Helper()
		for i, d := range *devs {
			if d.playing {
				t.Errorf("device %d still playing after StopClip", i)
			}
		}
		g, _ := m.Group("sfx")
		for i, c := range g.Channels() {
			if c.Clip() != nil {
				t.Errorf("channel %d still assigned after StopClip", i)
			}
		}
	}

	m.StopClip(testClip("music"))
	check()
	m.StopClip(testClip("music"))
	check()
}

func TestChannelReuseAfterStop(t *testing.T) {
	m, _ := newTestManager(t, sfxConfig(1))

	ch1, err := m.PlayIn("sfx", testClip("a"), 1, 1, false)
	if err != nil {
		t.Fatalf("play failed: %v", err)
	}
	ch1.Stop()

	ch2, err := m.PlayIn("sfx", testClip("b"), 1, 1, false)
	if err != nil {
		t.Fatalf("play after stop failed: %v", err)
	}
	if ch1 != ch2 {
		t.Error("pool of size 1 should reuse the same channel")
	}
	if ch2.Clip() != testClip("b") {
		t.Errorf("expected clip b, got %v", ch2.Clip())
	}
}

func TestLockPreventsReuse(t *testing.T) {
	m, _ := newTestManager(t, sfxConfig(1))

	ch, err := m.PlayIn("sfx", testClip("a"), 1, 1, false)
	if err != nil {
		t.Fatalf("play failed: %v", err)
	}
	ch.Lock()
	ch.Stop()

	if _, err := m.PlayIn("sfx", testClip("b"), 1, 1, false); !errors.Is(err, ErrNoFreeChannel) {
		t.Fatalf("locked channel was reused: %v", err)
	}

	g, _ := m.Group("sfx")
	g.Unlock()
	if _, err := m.PlayIn("sfx", testClip("b"), 1, 1, false); err != nil {
		t.Fatalf("play after unlock failed: %v", err)
	}
}

func TestUnlockClip(t *testing.T) {
	m, _ := newTestManager(t, sfxConfig(2))

	ch, err := m.PlayIn("sfx", testClip("a"), 1, 1, false)
	if err != nil {
		t.Fatalf("play failed: %v", err)
	}
	ch.Lock()
	m.UnlockClip(testClip("a"))
	if ch.Locked() {
		t.Error("UnlockClip left the channel locked")
	}
}

func TestGroupFadeReplacement(t *testing.T) {
	m, _ := newTestManager(t, sfxConfig(1))
	g, _ := m.Group("sfx")

	interrupted := false
	if err := g.FadeTo(0, time.Second, FadeOpts{OnComplete: func() { interrupted = true }}); err != nil {
		t.Fatalf("first fade failed: %v", err)
	}
	m.Tick(100 * time.Millisecond)

	if err := g.FadeTo(1, time.Second, FadeOpts{}); err != nil {
		t.Fatalf("second fade failed: %v", err)
	}
	for i := 0; i < 20; i++ {
		m.Tick(100 * time.Millisecond)
	}

	if g.Volume() != 1 {
		t.Errorf("group volume should converge to 1, got %f", g.Volume())
	}
	if interrupted {
		t.Error("interrupted fade's completion callback fired")
	}
}

func TestGroupFadeStopsBeforeCallback(t *testing.T) {
	m, devs := newTestManager(t, sfxConfig(2))
	g, _ := m.Group("sfx")

	if _, err := g.Play(testClip("a"), 1, 1, false); err != nil {
		t.Fatalf("play failed: %v", err)
	}

	calls := 0
	stoppedFirst := false
	err := g.FadeTo(0, time.Second, FadeOpts{
		StopOnComplete: true,
		OnComplete: func() {
			calls++
			stoppedFirst = !(*devs)[0].playing
		},
	})
	if err != nil {
		t.Fatalf("fade failed: %v", err)
	}

	for i := 0; i < 12; i++ {
		m.Tick(100 * time.Millisecond)
	}
	if calls != 1 {
		t.Fatalf("expected exactly one completion callback, got %d", calls)
	}
	if !stoppedFirst {
		t.Error("stop must happen before the completion callback")
	}
	if g.Volume() != 0 {
		t.Errorf("expected group volume 0, got %f", g.Volume())
	}
}

func TestFadeSourcesToLeavesGroupVolume(t *testing.T) {
	m, _ := newTestManager(t, sfxConfig(3))
	g, _ := m.Group("sfx")

	chA, _ := g.Play(testClip("a"), 1, 1, false)
	chB, _ := g.Play(testClip("b"), 0.8, 1, false)

	if err := g.FadeSourcesTo(0.2, time.Second, FadeOpts{}); err != nil {
		t.Fatalf("FadeSourcesTo failed: %v", err)
	}
	for i := 0; i < 12; i++ {
		m.Tick(100 * time.Millisecond)
	}

	if g.Volume() != 1 {
		t.Errorf("group volume must stay untouched, got %f", g.Volume())
	}
	if chA.Volume() != 0.2 || chB.Volume() != 0.2 {
		t.Errorf("channel volumes should converge to 0.2, got %f and %f", chA.Volume(), chB.Volume())
	}
	if !chA.IsPlaying() || !chB.IsPlaying() {
		t.Error("ducked channels must keep playing")
	}
}

func TestCrossfade(t *testing.T) {
	m, devs := newTestManager(t, sfxConfig(2))
	g, _ := m.Group("sfx")

	chA, err := g.Play(testClip("x"), 1, 1, false)
	if err != nil {
		t.Fatalf("play failed: %v", err)
	}

	chB, err := g.Crossfade(testClip("y"), 0.8, 1, false, time.Second, FadeOpts{})
	if err != nil {
		t.Fatalf("crossfade failed: %v", err)
	}
	if chB == chA {
		t.Fatal("crossfade must allocate a fresh channel")
	}
	if chB.Volume() != 0 {
		t.Errorf("incoming channel must start silent, got %f", chB.Volume())
	}

	m.Tick(500 * time.Millisecond)
	if v := chA.Volume(); v < 0.45 || v > 0.55 {
		t.Errorf("outgoing volume should be ~0.5 at midpoint, got %f", v)
	}
	if v := chB.Volume(); v < 0.35 || v > 0.45 {
		t.Errorf("incoming volume should be ~0.4 at midpoint, got %f", v)
	}

	for i := 0; i < 10; i++ {
		m.Tick(100 * time.Millisecond)
	}
	if (*devs)[0].playing {
		t.Error("outgoing channel must be stopped after the fade")
	}
	if chA.Clip() != nil {
		t.Error("outgoing channel must be unassigned after the fade")
	}
	if !chB.IsPlaying() {
		t.Error("incoming channel must keep playing")
	}
	if v := chB.Volume(); v != 0.8 {
		t.Errorf("incoming volume should settle at 0.8, got %f", v)
	}
}

func TestCrossfadePoolExhausted(t *testing.T) {
	m, _ := newTestManager(t, sfxConfig(1))
	g, _ := m.Group("sfx")

	chA, err := g.Play(testClip("x"), 1, 1, false)
	if err != nil {
		t.Fatalf("play failed: %v", err)
	}

	if _, err := g.Crossfade(testClip("y"), 1, 1, false, time.Second, FadeOpts{}); !errors.Is(err, ErrNoFreeChannel) {
		t.Fatalf("expected ErrNoFreeChannel, got %v", err)
	}

	// The outgoing fade stays scheduled even though allocation failed.
	for i := 0; i < 12; i++ {
		m.Tick(100 * time.Millisecond)
	}
	if chA.IsPlaying() {
		t.Error("outgoing channel should still fade out and stop")
	}
}

func TestNegativeVolumeRejected(t *testing.T) {
	m, _ := newTestManager(t, sfxConfig(1))
	g, _ := m.Group("sfx")

	if _, err := g.Play(testClip("a"), -0.1, 1, false); !errors.Is(err, ErrInvalidVolume) {
		t.Errorf("Play accepted a negative volume: %v", err)
	}
	if err := g.SetVolume(-1); !errors.Is(err, ErrInvalidVolume) {
		t.Errorf("SetVolume accepted a negative volume: %v", err)
	}
	if err := g.FadeTo(-1, time.Second, FadeOpts{}); !errors.Is(err, ErrInvalidVolume) {
		t.Errorf("FadeTo accepted a negative target: %v", err)
	}
}

func TestPerSourceFadeReplacementIsIndependent(t *testing.T) {
	m, _ := newTestManager(t, sfxConfig(2))
	g, _ := m.Group("sfx")

	chA, _ := g.Play(testClip("a"), 1, 1, false)
	chB, _ := g.Play(testClip("b"), 1, 1, false)

	chA.FadeTo(0, time.Second, FadeOpts{})
	chB.FadeTo(0, time.Second, FadeOpts{})
	// Replacing A's fade must not disturb B's.
	chA.FadeTo(1, time.Second, FadeOpts{})

	for i := 0; i < 12; i++ {
		m.Tick(100 * time.Millisecond)
	}
	if chA.Volume() != 1 {
		t.Errorf("channel A should converge to 1, got %f", chA.Volume())
	}
	if chB.Volume() != 0 {
		t.Errorf("channel B should converge to 0, got %f", chB.Volume())
	}
}
