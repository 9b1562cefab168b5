package billing

import "errors"

// Error kinds returned by the engine. Callers match them with errors.Is;
// the wrapped message carries the offending id or value.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	ErrValidation   = errors.New("validation error")

	// ErrPersistence is a warning: the operation it accompanies has
	// already been applied in memory.
	ErrPersistence = errors.New("persistence failure")
)

// IsWarning returns true if err only reports a failed save
func IsWarning(err error) bool {
	return err != nil && errors.Is(err, ErrPersistence)
}
