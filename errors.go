package postfx

import "errors"

// Errors returned by postfx.
var (
	// ErrNilRenderer is returned when a composer or pass is given no renderer.
	ErrNilRenderer = errors.New("postfx: nil renderer")

	// ErrMissingProgram is reported when a program a pass depends on is not
	// available. The pass logs it once and renders nothing.
	ErrMissingProgram = errors.New("postfx: missing program")

	// ErrIndexOutOfRange is returned by InsertPass for an invalid index.
	ErrIndexOutOfRange = errors.New("postfx: pass index out of range")
)
