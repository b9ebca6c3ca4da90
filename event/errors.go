package event

import "errors"

var (
	// ErrUnknownEvent indicates an event name outside the registered set.
	// This is a configuration error, not a runtime-recoverable one.
	ErrUnknownEvent = errors.New("unknown event name")

	// ErrInvalidPayload indicates the payload does not match the shape
	// registered for the event name.
	ErrInvalidPayload = errors.New("invalid event payload")

	// ErrMissingDocumentID indicates a payload without a document id.
	ErrMissingDocumentID = errors.New("payload missing documentId")

	// ErrIncompletePayload indicates a payload missing required fields.
	ErrIncompletePayload = errors.New("payload missing required fields")

	// ErrDuplicateRegistration indicates an event name registered twice.
	ErrDuplicateRegistration = errors.New("event name already registered")
)
