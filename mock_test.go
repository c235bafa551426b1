package audiomux

import "testing"

// mockDevice implements Device for tests. Start marks it playing until
// Stop; volume records the last effective value pushed by the core.
type mockDevice struct {
	playing  bool
	clip     Clip
	volume   float64
	pitch    float64
	loop     bool
	starts   int
	stops    int
	startErr error
}

func (d *mockDevice) Start(clip Clip, volume, pitch float64, loop bool) error {
	if d.startErr != nil {
		return d.startErr
	}
	d.clip = clip
	d.volume = volume
	d.pitch = pitch
	d.loop = loop
	d.playing = true
	d.starts++
	return nil
}

func (d *mockDevice) Stop() {
	d.playing = false
	d.stops++
}

func (d *mockDevice) IsPlaying() bool     { return d.playing }
func (d *mockDevice) SetVolume(v float64) { d.volume = v }
func (d *mockDevice) SetPitch(p float64)  { d.pitch = p }

// testClip satisfies Clip; two equal strings are the same clip.
type testClip string

func (c testClip) Name() string { return string(c) }

// mockFactory appends every created device to devs so tests can inspect
// them in pool order.
func mockFactory(devs *[]*mockDevice) DeviceFactory {
	return func() (Device, error) {
		d := &mockDevice{}
		*devs = append(*devs, d)
		return d, nil
	}
}

// newTestManager builds a manager over mock devices and tears it down with
// the test, keeping the process guard clean between tests.
func newTestManager(t *testing.T, cfg *Config) (*Manager, *[]*mockDevice) {
	t.Helper()
	devs := &[]*mockDevice{}
	m, err := New(cfg, mockFactory(devs))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m, devs
}
