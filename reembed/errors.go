package reembed

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is not positive.
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be > 0")

	// ErrEmptyUserID is returned when Run is called without a user.
	ErrEmptyUserID = errors.New("user id cannot be empty")
)
