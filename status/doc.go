// Package status implements the per-document processing state machine:
// an ordered map of stage steps, the transitions between them, and the
// pure derivation of the document-level status from that map.
//
// A Manager tracks exactly one document and has a single writer by
// construction: within a document, stage N+1 only triggers on stage N's
// success event, so no two stages ever mutate the same manager
// concurrently.
package status
