package sprite

import "errors"

// Error kinds returned by the sprite packages. Callers test for them with
// errors.Is; call sites wrap them with context.
var (
	// ErrInvalidSequence reports a stroke protocol violation, such as
	// continuing a stroke that was never begun.
	ErrInvalidSequence = errors.New("invalid stroke sequence")

	// ErrOutOfRange reports a frame index, canvas size, width or frame
	// rate outside its valid range.
	ErrOutOfRange = errors.New("out of range")

	// ErrInvalidOperation reports an operation the current state does not
	// allow, such as removing the only frame.
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrCorruptFile reports a project document that could not be decoded.
	ErrCorruptFile = errors.New("corrupt file")

	// ErrIOFailure reports a read or write failure from the file system.
	ErrIOFailure = errors.New("io failure")
)
