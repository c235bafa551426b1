// Package beepdev implements the audiomux playback Device on top of
// gopxl/beep's speaker. Every Device is one slot on the shared speaker
// mixer; clips are fully buffered in memory so a channel can replay them
// any number of times.
//
// Call Init once before creating devices. Device methods take the speaker
// lock where they touch the streamer graph, so the audiomux control
// goroutine and beep's mixing goroutine never race.
package beepdev

import (
	"fmt"
	"math"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"

	"github.com/shaban/audiomux"
)

// Clip is an in-memory buffered piece of audio playable by Device.
type Clip struct {
	name string
	buf  *beep.Buffer
}

// NewClip drains s into a buffer and returns a clip under the given name.
func NewClip(name string, format beep.Format, s beep.Streamer) *Clip {
	buf := beep.NewBuffer(format)
	buf.Append(s)
	return &Clip{name: name, buf: buf}
}

// Name implements audiomux.Clip.
func (c *Clip) Name() string { return c.name }

// Duration returns the clip length at its native rate.
func (c *Clip) Duration() time.Duration {
	return c.buf.Format().SampleRate.D(c.buf.Len())
}

// Init prepares the shared speaker at the given sample rate. Must be called
// once before any Device starts playback.
func Init(sr beep.SampleRate) error {
	if err := speaker.Init(sr, sr.N(time.Second/10)); err != nil {
		return fmt.Errorf("beepdev: speaker init: %w", err)
	}
	return nil
}

// Factory returns an audiomux.DeviceFactory producing speaker-backed
// devices mixing at the given output rate.
func Factory(sr beep.SampleRate) audiomux.DeviceFactory {
	return func() (audiomux.Device, error) {
		return &Device{out: sr}, nil
	}
}

// Device is one playback slot on the speaker mixer.
type Device struct {
	out beep.SampleRate

	ctrl     *beep.Ctrl
	resamp   *beep.Resampler
	gain     *effects.Volume
	clipRate beep.SampleRate
	playing  bool
	gen      int // invalidates completion callbacks from earlier playbacks
}

// Start begins playback of clip. Only *beepdev.Clip values are accepted;
// anything else is a wiring error reported to the caller.
func (d *Device) Start(clip audiomux.Clip, volume, pitch float64, loop bool) error {
	bc, ok := clip.(*Clip)
	if !ok {
		return fmt.Errorf("beepdev: unsupported clip type %T", clip)
	}
	d.Stop()

	seeker := bc.buf.Streamer(0, bc.buf.Len())
	var s beep.Streamer = seeker
	if loop {
		s = beep.Loop(-1, seeker)
	}

	speaker.Lock()
	d.clipRate = bc.buf.Format().SampleRate
	d.resamp = beep.ResampleRatio(4, ratioFor(pitch, d.clipRate, d.out), s)
	d.ctrl = &beep.Ctrl{Streamer: d.resamp}
	d.gain = &effects.Volume{Streamer: d.ctrl, Base: 2}
	applyGain(d.gain, volume)
	d.playing = true
	d.gen++
	gen := d.gen
	speaker.Unlock()

	speaker.Play(beep.Seq(d.gain, beep.Callback(func() {
		// The speaker holds its lock while streaming, so this write is
		// ordered against the locked reads below.
		if d.gen == gen {
			d.playing = false
		}
	})))
	return nil
}

// Stop detaches the current stream. The mixer drains it on its next pull;
// the slot is immediately reusable.
func (d *Device) Stop() {
	speaker.Lock()
	if d.ctrl != nil {
		d.ctrl.Streamer = nil
	}
	d.ctrl, d.resamp, d.gain = nil, nil, nil
	d.playing = false
	speaker.Unlock()
}

// IsPlaying reports whether the device is emitting audio.
func (d *Device) IsPlaying() bool {
	speaker.Lock()
	p := d.playing
	speaker.Unlock()
	return p
}

// SetVolume sets the emitted volume; v is the final effective value in
// [0, 1] computed by the audiomux core.
func (d *Device) SetVolume(v float64) {
	speaker.Lock()
	if d.gain != nil {
		applyGain(d.gain, v)
	}
	speaker.Unlock()
}

// SetPitch sets the playback rate multiplier.
func (d *Device) SetPitch(p float64) {
	speaker.Lock()
	if d.resamp != nil {
		d.resamp.SetRatio(ratioFor(p, d.clipRate, d.out))
	}
	speaker.Unlock()
}

// ratioFor combines sample-rate conversion with the pitch multiplier.
func ratioFor(pitch float64, clipRate, outRate beep.SampleRate) float64 {
	return pitch * float64(clipRate) / float64(outRate)
}

// gainFor maps a linear [0, 1] volume onto beep's base-2 exponential gain:
// 1 is unity, 0.5 is one doubling down, 0 is silent.
func gainFor(v float64) (silent bool, gain float64) {
	if v <= 0 {
		return true, 0
	}
	if v > 1 {
		v = 1
	}
	return false, math.Log2(v)
}

func applyGain(vol *effects.Volume, v float64) {
	silent, gain := gainFor(v)
	vol.Silent = silent
	vol.Volume = gain
}
