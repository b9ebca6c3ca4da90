package substrate

import "errors"

var (
	// ErrClosed indicates the substrate has been closed.
	ErrClosed = errors.New("substrate is closed")

	// ErrNilHandler indicates a registration without a handler.
	ErrNilHandler = errors.New("registration handler is nil")

	// ErrEmptyTrigger indicates a registration without a trigger event.
	ErrEmptyTrigger = errors.New("registration trigger is empty")

	// ErrInvalidPolicy indicates a policy outside the accepted bounds.
	ErrInvalidPolicy = errors.New("invalid delivery policy")

	// ErrAlreadyStarted indicates a registration after the first publish.
	ErrAlreadyStarted = errors.New("substrate already delivering")
)
