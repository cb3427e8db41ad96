package pevents

import "github.com/pkg/errors"

// ErrPrimitiveFailure indicates that an underlying synchronization primitive
// reported a failure. Go's sync.Mutex and sync.Cond cannot themselves fail,
// so no code path in this package returns it today -- it is intentionally
// unexercised, reserved for the pluggable-primitive extension point
// described in the design notes, so a future backend built on a real OS
// primitive can report failures without an incompatible API change.
var ErrPrimitiveFailure = errors.New("pevents: primitive failure")

// ErrInvalidArgument indicates a caller error such as an empty event vector
// or a nil Event in a wait vector.
var ErrInvalidArgument = errors.New("pevents: invalid argument")

// wrapf wraps err with a formatted message and a stack trace via pkg/errors,
// preserving errors.Is/errors.As compatibility with the sentinels above.
func wrapf(err error, format string, args ...any) error {
	return errors.Wrapf(err, format, args...)
}
