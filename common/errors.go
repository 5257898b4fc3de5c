package common

import "errors"

// Error taxonomy for the animation runtime. All public entry points report
// failures by wrapping one of these sentinels with %w so callers can classify
// with errors.Is without parsing messages.
var (
	// ErrInvalidArgument indicates malformed caller input: a nil reference,
	// an out-of-range weight or layer, or a non-positive speed or duration.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound indicates a named clip, bone, or channel is absent, or an
	// index is out of range.
	ErrNotFound = errors.New("not found")

	// ErrNotInitialized indicates an operation on a zero-value or
	// never-successfully-constructed object.
	ErrNotInitialized = errors.New("not initialized")

	// ErrInvalidState indicates an operation that is illegal in the current
	// playback state, such as pausing a state that is not playing. These are
	// recoverable conditions; callers may ignore them.
	ErrInvalidState = errors.New("invalid state")

	// ErrAlreadyPlaying indicates a resume on a state that is already
	// playing. Informational, recoverable.
	ErrAlreadyPlaying = errors.New("already playing")
)
