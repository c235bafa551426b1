package audiomux

import "errors"

var (
	// ErrUnknownGroup is returned when an operation names a group id that
	// was never declared in the configuration.
	ErrUnknownGroup = errors.New("audiomux: unknown group")

	// ErrNoFreeChannel is returned by Play when every channel in the pool
	// is either playing or locked. Allocation never steals a busy channel.
	ErrNoFreeChannel = errors.New("audiomux: no free channel in pool")

	// ErrManagerExists is returned by New while another Manager is live.
	// The original manager stays authoritative and is returned alongside
	// this error; the duplicate is never built.
	ErrManagerExists = errors.New("audiomux: a manager is already live")

	// ErrManagerClosed is returned by operations invoked after Close.
	ErrManagerClosed = errors.New("audiomux: manager is closed")

	// ErrInvalidVolume is returned when a volume or fade target is
	// negative. Values above 1 are accepted; the effective volume is
	// clamped at the device boundary instead.
	ErrInvalidVolume = errors.New("audiomux: volume must not be negative")
)
