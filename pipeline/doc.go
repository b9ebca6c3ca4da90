// Package pipeline orchestrates document processing as a chain of
// stages connected by events.
//
// A Stage binds a trigger event to a unit of work over one document.
// The Executor is the shared harness every stage runs under: it decodes
// the trigger, restores the document's status state machine, drives the
// stage item by item with checkpointing and sub-item failure isolation,
// persists the stage's artifact, and emits the success or failure
// event. The Coordinator wires stages onto a substrate under per-stage
// delivery policies and exposes the operator surface for manual retries
// and progress lookups.
//
// Error classification drives retry behavior. A *TransientError
// abandons the current attempt and asks the substrate for a redelivery
// with backoff. A *ValidationError fails the stage immediately. Any
// other item error fails only that sub-item; the stage completes
// partially as long as at least one item succeeded.
//
// Stages never call each other. Every transition travels through the
// substrate as an event, so a crashed or retried stage replays from its
// trigger without upstream work being redone.
package pipeline
