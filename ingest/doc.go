// Package ingest registers uploaded files as pipeline documents.
//
// The ingestor is deliberately thin: it validates the file, stores the
// document record in the uploaded state, and publishes the upload
// event. Everything after that is driven by the pipeline coordinator
// reacting to events.
package ingest
