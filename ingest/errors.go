package ingest

import "errors"

var (
	// ErrDocumentRepositoryRequired is returned when a document repository is not provided.
	ErrDocumentRepositoryRequired = errors.New("document repository required")

	// ErrRegistryRequired is returned when an event registry is not provided.
	ErrRegistryRequired = errors.New("event registry required")

	// ErrPublisherRequired is returned when a publisher is not provided.
	ErrPublisherRequired = errors.New("publisher required")

	// ErrFileNotFound is returned when the upload path does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrNotAFile is returned when the upload path is a directory.
	ErrNotAFile = errors.New("path is not a regular file")
)
