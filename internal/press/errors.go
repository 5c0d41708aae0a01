package press

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyRunning indicates Start on a session that is not Idle.
	ErrAlreadyRunning = errors.New("press: test already started")

	// ErrNotRunning indicates an operation that needs a running test.
	ErrNotRunning = errors.New("press: test not running")

	// ErrNotPaused indicates Resume on a session that is not paused.
	ErrNotPaused = fmt.Errorf("%w: not paused", ErrNotRunning)

	// ErrNoMaterial indicates Start or Calibrate without a specimen.
	ErrNoMaterial = errors.New("press: no material on the machine")

	// ErrUnknownKind indicates a test kind that is neither compression nor tensile.
	ErrUnknownKind = errors.New("press: unknown test kind")
)

// StateError wraps a contract violation with the operation and the status
// the session was in.
type StateError struct {
	Op      string
	Status  Status
	Wrapped error
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s while %s: %v", e.Op, e.Status, e.Wrapped)
}

func (e *StateError) Unwrap() error {
	return e.Wrapped
}
