package audiomux

// Clip identifies a loaded piece of audio. Implementations carry whatever
// payload their Device understands; the core routes purely by identity, so
// two channels play "the same clip" when their Clip values compare equal.
type Clip interface {
	Name() string
}

// Device is the playback primitive a Channel drives. One Device backs one
// Channel for the lifetime of the manager. Volume passed to Start and
// SetVolume is the final effective value in [0, 1]; pitch is a playback
// rate multiplier where 1 is normal speed.
type Device interface {
	Start(clip Clip, volume, pitch float64, loop bool) error
	Stop()
	IsPlaying() bool
	SetVolume(v float64)
	SetPitch(p float64)
}

// DeviceFactory builds one Device per pooled channel at initialization.
type DeviceFactory func() (Device, error)
