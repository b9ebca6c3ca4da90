package providers

import "errors"

var (
	// ErrPageOutOfRange indicates a requested page number outside the
	// document's page range.
	ErrPageOutOfRange = errors.New("page number out of range")

	// ErrUnsupportedFormat indicates the provider cannot handle the
	// document's file format.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrEmptyText indicates text was required but none was provided.
	ErrEmptyText = errors.New("text is empty")

	// ErrProviderRequired indicates no service provider was supplied.
	ErrProviderRequired = errors.New("provider required")
)
