package pipeline

import (
	"context"

	"github.com/poiesic/docpipe/core"
	"github.com/poiesic/docpipe/event"
)

// StageInput is what the executor hands a stage when its trigger fires.
type StageInput struct {
	// Document is the stored document the event refers to.
	Document *core.Document

	// UserID is the owner carried on the trigger event.
	UserID string

	// InputRef is the upstream stage's artifact reference. Empty for
	// the first stage, whose trigger carries no artifact.
	InputRef core.ArtifactRef
}

// Execution is one prepared run of a stage over one document. The
// executor drives it item by item and collects the output at the end.
// Implementations are used by a single goroutine.
type Execution interface {
	// Items returns one label per sub-item, used for progress and
	// failure reporting. The executor processes indexes 0..len-1.
	Items() []string

	// ProcessItem handles the sub-item at index.
	//
	// Error classification decides what happens next:
	//   - *TransientError abandons the whole attempt for redelivery
	//   - any other error fails only this item; the run continues
	ProcessItem(ctx context.Context, index int) error

	// Output serializes the stage's collected output for artifact
	// storage and performs any stage-specific persistence. Called once,
	// after all items were processed and at least one succeeded.
	Output(ctx context.Context) ([]byte, error)
}

// Resumable is an Execution whose per-item results can survive a
// redelivery. The executor checkpoints MarshalState after every item
// and calls RestoreState on the next attempt, so items completed
// before a transient failure are not redone and their results are not
// lost. Executions that do not implement it restart from item zero on
// every attempt.
type Resumable interface {
	Execution

	// MarshalState serializes the results collected so far.
	MarshalState() ([]byte, error)

	// RestoreState reloads results saved by a previous attempt. It is
	// called after Prepare and before any ProcessItem call.
	RestoreState(data []byte) error
}

// Stage is one unit of pipeline work bound to a trigger event.
// Implementations must be thread-safe; Prepare may run concurrently for
// different documents.
type Stage interface {
	// Name identifies the stage in the status state machine.
	Name() core.StageName

	// Trigger is the event that starts the stage.
	Trigger() event.Name

	// SuccessEvent is emitted when the stage completes.
	SuccessEvent() event.Name

	// FailureEvent is emitted when the stage fails terminally.
	FailureEvent() event.Name

	// Prepare loads the stage's input and enumerates its sub-items.
	// Returning *ValidationError fails the stage without retries;
	// returning *TransientError requests redelivery.
	Prepare(ctx context.Context, in StageInput) (Execution, error)
}
