// Package audiomux multiplexes a bounded pool of playback channels across
// named groups and orchestrates volume fades over them.
//
// The Manager owns an ordered set of Groups, each backed by a fixed pool of
// Channels. A Channel drives one external playback Device (see the Device
// interface; beepdev provides an implementation on top of gopxl/beep). The
// effective volume a device emits is always the product
//
//	channel volume × group volume × master volume
//
// recomputed on every tick and pushed to the device, so changing any of the
// three operands is visible within one tick.
//
// All state mutation happens on a single control goroutine: the caller
// invokes operations and drives time by calling Manager.Tick once per frame.
// Fades are scheduled on the manager's fade.Timeline and advance only inside
// Tick, which is why the core carries no locks — at most one fade runs per
// scope (channel, group, master), and starting a new one cancels the old
// handle before any further sample can be delivered.
package audiomux
