// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/docpipe/core"
	"github.com/poiesic/docpipe/event"
	"github.com/poiesic/docpipe/status"
	"github.com/poiesic/docpipe/storage"
	"github.com/poiesic/docpipe/substrate"
)

// artifactRefKey stores a stage's output reference in its step
// metadata, so retries can reconstruct downstream trigger events.
const artifactRefKey = "artifactRef"

// savedProgress is the checkpoint state payload: the outcome counters
// of the interrupted attempt plus the execution's own marshaled
// results. Restoring only a position would drop the results of items
// that already ran and count their failures as successes.
type savedProgress struct {
	Succeeded int                `json:"succeeded"`
	Failures  []core.ItemFailure `json:"failures,omitempty"`
	Exec      json.RawMessage    `json:"exec,omitempty"`
}

// Publisher emits events back onto the substrate.
type Publisher interface {
	Publish(ctx context.Context, evt *event.Event) error
}

// Executor runs stages against the status state machine and storage.
// It is the shared harness every stage executes under: it decodes the
// trigger, drives the item loop with sub-item isolation, persists
// progress and checkpoints, and emits the outcome event.
type Executor struct {
	docs        storage.DocumentRepository
	states      storage.StateRepository
	artifacts   storage.ArtifactRepository
	checkpoints storage.CheckpointRepository
	registry    *event.Registry
	order       []core.StageName
	logger      *slog.Logger
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) ExecutorOption {
	return func(x *Executor) error {
		if logger == nil {
			logger = slog.Default()
		}
		x.logger = logger.With("component", "executor")
		return nil
	}
}

// WithStageOrder overrides the stage order used for status derivation.
// Default is core.DefaultStageOrder().
func WithStageOrder(order []core.StageName) ExecutorOption {
	return func(x *Executor) error {
		if len(order) == 0 {
			return status.ErrEmptyStageOrder
		}
		x.order = order
		return nil
	}
}

// NewExecutor creates the stage execution harness.
func NewExecutor(
	docs storage.DocumentRepository,
	states storage.StateRepository,
	artifacts storage.ArtifactRepository,
	checkpoints storage.CheckpointRepository,
	registry *event.Registry,
	opts ...ExecutorOption,
) (*Executor, error) {
	if docs == nil || states == nil || artifacts == nil || checkpoints == nil {
		return nil, errors.New("executor: all repositories are required")
	}
	if registry == nil {
		return nil, errors.New("executor: event registry is required")
	}

	x := &Executor{
		docs:        docs,
		states:      states,
		artifacts:   artifacts,
		checkpoints: checkpoints,
		registry:    registry,
		order:       core.DefaultStageOrder(),
		logger:      slog.Default().With("component", "executor"),
	}
	for _, opt := range opts {
		if err := opt(x); err != nil {
			return nil, err
		}
	}
	return x, nil
}

// Handle runs one delivery of a stage's trigger event. The returned
// error requests a redelivery; terminal outcomes always return nil.
func (x *Executor) Handle(ctx context.Context, stage Stage, pub Publisher, delivery substrate.Delivery) error {
	evt := delivery.Event
	if evt.Name != stage.Trigger() {
		x.logger.Error("event routed to wrong stage",
			"stage", stage.Name(), "event", evt.Name)
		return nil
	}

	input, err := x.decodeInput(ctx, evt)
	if err != nil {
		// Malformed payloads and unknown documents are deterministic;
		// redelivery cannot help.
		x.logger.Error("dropping undeliverable event",
			"stage", stage.Name(), "event", evt.Name, "id", evt.ID, "err", err)
		return nil
	}

	logger := x.logger.With(
		"stage", stage.Name(),
		"document", input.Document.Id,
		"attempt", delivery.Attempt)

	manager, err := x.loadManager(ctx, input.Document.Id)
	if err != nil {
		return err
	}

	step, err := manager.Step(stage.Name())
	if err != nil {
		logger.Error("stage not in configured order", "err", err)
		return nil
	}

	switch step.Status {
	case core.StepCompleted:
		logger.Debug("stage already completed, skipping duplicate delivery")
		return nil
	case core.StepFailed:
		logger.Debug("stage already failed terminally, skipping delivery")
		return nil
	case core.StepPending:
		docStatus, err := manager.StartStage(stage.Name(), nil)
		if err != nil {
			logger.Error("cannot start stage", "err", err)
			return nil
		}
		if err := x.persist(ctx, manager, input.Document.Id, docStatus); err != nil {
			return err
		}
	case core.StepRunning:
		// Redelivery of an attempt in flight state: resume.
		logger.Debug("resuming running stage")
	}

	exec, err := stage.Prepare(ctx, input)
	if err != nil {
		return x.dispose(ctx, stage, pub, manager, input, delivery, err, logger)
	}

	items := exec.Items()
	if len(items) == 0 {
		// Nothing to process is an input defect, not a transient fault.
		return x.dispose(ctx, stage, pub, manager, input, delivery,
			NewValidationError(ErrNoItems), logger)
	}

	// Only executions that can carry their results across attempts are
	// checkpointed. Anything else restarts its item loop per attempt;
	// resuming by position alone would skip items whose results died
	// with the previous attempt.
	resumable, _ := exec.(Resumable)

	resumeFrom, outcome := x.restoreProgress(ctx, input.Document.Id, stage.Name(), resumable, logger)
	for i := resumeFrom; i < len(items); i++ {
		itemErr := exec.ProcessItem(ctx, i)
		switch {
		case itemErr == nil:
			outcome.SucceededCount++
		case IsRetryable(itemErr):
			// A transient item failure abandons the whole attempt.
			return x.dispose(ctx, stage, pub, manager, input, delivery, itemErr, logger)
		default:
			outcome.FailedCount++
			outcome.Failures = append(outcome.Failures, core.ItemFailure{
				Item:   items[i],
				Reason: itemErr.Error(),
			})
			logger.Warn("item failed", "item", items[i], "err", itemErr)
		}

		progress := (i + 1) * 100 / len(items)
		if err := manager.UpdateStageProgress(stage.Name(), progress, ""); err != nil {
			logger.Warn("cannot update progress", "err", err)
		}
		if resumable != nil {
			x.saveProgress(ctx, input.Document.Id, stage.Name(), i+1, outcome, resumable, logger)
		}
	}

	if outcome.SucceededCount == 0 {
		return x.dispose(ctx, stage, pub, manager, input, delivery,
			NewValidationError(ErrAllItemsFailed), logger)
	}

	payload, err := exec.Output(ctx)
	if err != nil {
		return x.dispose(ctx, stage, pub, manager, input, delivery, err, logger)
	}

	ref, err := x.artifacts.PutArtifact(ctx, payload)
	if err != nil {
		return err
	}

	metadata := map[string]string{artifactRefKey: string(ref)}
	for _, failure := range outcome.Failures {
		// Item failures survive in the step record; the document error
		// field stays clean on partial success.
		metadata["failed:"+failure.Item] = failure.Reason
	}

	docStatus, err := manager.CompleteStage(stage.Name(), metadata)
	if err != nil {
		logger.Error("cannot complete stage", "err", err)
		return nil
	}
	if err := x.persist(ctx, manager, input.Document.Id, docStatus); err != nil {
		return err
	}
	if err := x.checkpoints.DeleteCheckpoint(ctx, input.Document.Id, stage.Name()); err != nil {
		logger.Warn("cannot delete checkpoint", "err", err)
	}

	if outcome.Partial() {
		logger.Warn("stage completed with partial failures",
			"succeeded", outcome.SucceededCount,
			"failed", outcome.FailedCount)
	}

	successEvt, err := x.registry.NewEvent(event.NewSuccessPayload(
		stage.SuccessEvent(),
		input.Document.Id,
		input.UserID,
		outcome.SucceededCount,
		outcome.FailedCount,
		string(ref),
	))
	if err != nil {
		logger.Error("cannot build success event", "err", err)
		return nil
	}

	logger.Info("stage completed",
		"status", docStatus,
		"succeeded", outcome.SucceededCount,
		"failed", outcome.FailedCount,
		"artifact", ref)

	return pub.Publish(ctx, successEvt)
}

// dispose routes a stage-level error: transient errors with remaining
// attempts propagate for redelivery; everything else fails the stage
// terminally and emits the failure event.
func (x *Executor) dispose(
	ctx context.Context,
	stage Stage,
	pub Publisher,
	manager *status.Manager,
	input StageInput,
	delivery substrate.Delivery,
	cause error,
	logger *slog.Logger,
) error {
	if IsRetryable(cause) && delivery.Attempt < delivery.MaxAttempts {
		logger.Warn("transient stage failure, requesting redelivery", "err", cause)
		return cause
	}

	docStatus, err := manager.FailStage(stage.Name(), cause, nil)
	if err != nil {
		logger.Error("cannot fail stage", "err", err)
		return nil
	}
	if err := x.persist(ctx, manager, input.Document.Id, docStatus); err != nil {
		return err
	}
	// The stage is settled; a leftover checkpoint would let a later
	// retry resume into results that no longer exist.
	if err := x.checkpoints.DeleteCheckpoint(ctx, input.Document.Id, stage.Name()); err != nil {
		logger.Warn("cannot delete checkpoint", "err", err)
	}

	failureEvt, err := x.registry.NewEvent(event.NewFailurePayload(
		stage.FailureEvent(),
		input.Document.Id,
		input.UserID,
		cause.Error(),
		time.Now().UTC(),
		delivery.Attempt,
		IsRetryable(cause),
	))
	if err != nil {
		logger.Error("cannot build failure event", "err", err)
		return nil
	}

	logger.Error("stage failed terminally",
		"status", docStatus,
		"attempts", delivery.Attempt,
		"err", cause)

	if err := pub.Publish(ctx, failureEvt); err != nil {
		logger.Error("cannot publish failure event", "err", err)
	}
	return nil
}

// decodeInput extracts the document and upstream artifact from a
// trigger event.
func (x *Executor) decodeInput(ctx context.Context, evt *event.Event) (StageInput, error) {
	payload, err := x.registry.Decode(evt.Name, evt.Data)
	if err != nil {
		return StageInput{}, err
	}

	var in StageInput
	switch p := payload.(type) {
	case *event.UploadedPayload:
		in.UserID = p.UserID
		in.InputRef = ""
		in.Document, err = x.docs.GetDocument(ctx, p.DocumentID)
	case *event.SuccessPayload:
		in.UserID = p.UserID
		in.InputRef = core.ArtifactRef(p.ArtifactRef)
		in.Document, err = x.docs.GetDocument(ctx, p.DocumentID)
	default:
		return StageInput{}, fmt.Errorf("%w: %s", ErrStageMismatch, evt.Name)
	}

	if errors.Is(err, storage.ErrNotFound) {
		return StageInput{}, ErrUnknownDocument
	}
	if err != nil {
		return StageInput{}, err
	}
	return in, nil
}

// loadManager restores the document's status manager or creates a fresh
// one.
func (x *Executor) loadManager(ctx context.Context, documentID string) (*status.Manager, error) {
	snap, err := x.states.LoadState(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return status.NewManager(documentID, x.order, status.WithLogger(x.logger))
	}
	return status.Restore(snap, status.WithLogger(x.logger))
}

// persist saves the state snapshot and the document status together.
func (x *Executor) persist(ctx context.Context, manager *status.Manager, documentID string, docStatus core.DocumentStatus) error {
	if err := x.states.SaveState(ctx, manager.Snapshot()); err != nil {
		return err
	}
	return x.docs.UpdateDocumentStatus(ctx, documentID, docStatus)
}

// restoreProgress reloads a previous attempt's checkpoint into the
// execution and the outcome counters. Any checkpoint that cannot be
// restored, including one left by an execution that is no longer
// resumable, is discarded and the attempt restarts from item zero.
func (x *Executor) restoreProgress(
	ctx context.Context,
	documentID string,
	stage core.StageName,
	resumable Resumable,
	logger *slog.Logger,
) (int, core.StageOutcome) {
	checkpoint, err := x.checkpoints.LoadCheckpoint(ctx, documentID, stage)
	if err != nil {
		logger.Warn("cannot load checkpoint", "err", err)
		return 0, core.StageOutcome{}
	}
	if checkpoint == nil {
		return 0, core.StageOutcome{}
	}
	if resumable == nil {
		if err := x.checkpoints.DeleteCheckpoint(ctx, documentID, stage); err != nil {
			logger.Warn("cannot delete checkpoint", "err", err)
		}
		return 0, core.StageOutcome{}
	}

	var saved savedProgress
	if err := json.Unmarshal(checkpoint.State, &saved); err != nil {
		logger.Warn("discarding unreadable checkpoint", "err", err)
		return 0, core.StageOutcome{}
	}
	if err := resumable.RestoreState(saved.Exec); err != nil {
		logger.Warn("discarding unrestorable checkpoint", "err", err)
		return 0, core.StageOutcome{}
	}

	logger.Debug("resuming from checkpoint", "position", checkpoint.Position)
	return checkpoint.Position, core.StageOutcome{
		SucceededCount: saved.Succeeded,
		FailedCount:    len(saved.Failures),
		Failures:       saved.Failures,
	}
}

// saveProgress checkpoints the outcome so far together with the
// execution's marshaled results.
func (x *Executor) saveProgress(
	ctx context.Context,
	documentID string,
	stage core.StageName,
	position int,
	outcome core.StageOutcome,
	resumable Resumable,
	logger *slog.Logger,
) {
	execState, err := resumable.MarshalState()
	if err != nil {
		logger.Warn("cannot marshal execution state", "err", err)
		return
	}
	state, err := json.Marshal(savedProgress{
		Succeeded: outcome.SucceededCount,
		Failures:  outcome.Failures,
		Exec:      execState,
	})
	if err != nil {
		logger.Warn("cannot encode checkpoint state", "err", err)
		return
	}
	if err := x.checkpoints.SaveCheckpoint(ctx, &core.Checkpoint{
		DocumentId: documentID,
		Stage:      stage,
		Position:   position,
		State:      state,
	}); err != nil {
		logger.Warn("cannot save checkpoint", "err", err)
	}
}

// ClearCheckpoints removes the checkpoints of the given stage and every
// stage after it in the configured order. A retried document must not
// resume into results recorded before the retry.
func (x *Executor) ClearCheckpoints(ctx context.Context, documentID string, from core.StageName) error {
	clearing := false
	for _, stage := range x.order {
		if stage == from {
			clearing = true
		}
		if !clearing {
			continue
		}
		if err := x.checkpoints.DeleteCheckpoint(ctx, documentID, stage); err != nil {
			return fmt.Errorf("clear checkpoint for %s: %w", stage, err)
		}
	}
	return nil
}
