package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/docpipe/core"
	"github.com/poiesic/docpipe/event"
	"github.com/poiesic/docpipe/status"
	"github.com/poiesic/docpipe/storage"
	"github.com/poiesic/docpipe/substrate"
)

// Binding attaches a stage to the substrate under a delivery policy.
type Binding struct {
	Stage  Stage
	Policy substrate.Policy
}

// Coordinator wires stages onto the substrate and owns the operator
// surface: manual retries and document progress lookups. Event flow
// between stages happens entirely through the substrate; the
// coordinator never calls one stage from another.
type Coordinator struct {
	sub      substrate.Substrate
	executor *Executor
	docs     storage.DocumentRepository
	states   storage.StateRepository
	registry *event.Registry
	stages   map[event.Name]Stage
	logger   *slog.Logger
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator) error

// WithCoordinatorLogger sets a custom logger.
// Default is slog.Default().
func WithCoordinatorLogger(logger *slog.Logger) CoordinatorOption {
	return func(c *Coordinator) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger.With("component", "coordinator")
		return nil
	}
}

// NewCoordinator registers every stage binding on the substrate. Each
// trigger may be bound at most once; ErrDuplicateTrigger reports a
// conflict and ErrNoBindings an empty pipeline.
func NewCoordinator(
	sub substrate.Substrate,
	executor *Executor,
	docs storage.DocumentRepository,
	states storage.StateRepository,
	registry *event.Registry,
	bindings []Binding,
	opts ...CoordinatorOption,
) (*Coordinator, error) {
	if len(bindings) == 0 {
		return nil, ErrNoBindings
	}

	c := &Coordinator{
		sub:      sub,
		executor: executor,
		docs:     docs,
		states:   states,
		registry: registry,
		stages:   make(map[event.Name]Stage, len(bindings)),
		logger:   slog.Default().With("component", "coordinator"),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	for _, b := range bindings {
		stage := b.Stage
		if _, taken := c.stages[stage.Trigger()]; taken {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTrigger, stage.Trigger())
		}
		c.stages[stage.Trigger()] = stage

		err := sub.Register(substrate.Registration{
			Name:    string(stage.Name()),
			Trigger: stage.Trigger(),
			Policy:  b.Policy,
			Handler: func(ctx context.Context, delivery substrate.Delivery) error {
				return executor.Handle(ctx, stage, c, delivery)
			},
		})
		if err != nil {
			return nil, fmt.Errorf("registering stage %s: %w", stage.Name(), err)
		}
	}

	return c, nil
}

// Publish forwards an event onto the substrate.
func (c *Coordinator) Publish(ctx context.Context, evt *event.Event) error {
	return c.sub.Publish(ctx, evt)
}

// RetryDocument resets a failed stage back to pending and republishes
// its trigger event, so the document resumes from that stage with all
// upstream results intact.
func (c *Coordinator) RetryDocument(ctx context.Context, documentID string, stage core.StageName) error {
	doc, err := c.docs.GetDocument(ctx, documentID)
	if err != nil {
		return err
	}

	snap, err := c.states.LoadState(ctx, documentID)
	if err != nil {
		return err
	}
	if snap == nil {
		return fmt.Errorf("%w: %s", ErrUnknownDocument, documentID)
	}

	manager, err := status.Restore(snap, status.WithLogger(c.logger))
	if err != nil {
		return err
	}

	trigger, err := c.rebuildTrigger(manager, doc, stage)
	if err != nil {
		return err
	}

	docStatus, err := manager.RetryFromStage(stage)
	if err != nil {
		return err
	}
	if err := c.states.SaveState(ctx, manager.Snapshot()); err != nil {
		return err
	}
	if err := c.docs.UpdateDocumentStatus(ctx, documentID, docStatus); err != nil {
		return err
	}
	// Reset stages must start clean; a checkpoint left over from the
	// failed run would resume the retry into discarded results.
	if err := c.executor.ClearCheckpoints(ctx, documentID, stage); err != nil {
		return err
	}

	c.logger.Info("retrying document",
		"document", documentID,
		"stage", stage,
		"status", docStatus)

	return c.sub.Publish(ctx, trigger)
}

// Progress returns the processing summary for a document.
func (c *Coordinator) Progress(ctx context.Context, documentID string) (status.Summary, error) {
	snap, err := c.states.LoadState(ctx, documentID)
	if err != nil {
		return status.Summary{}, err
	}
	if snap == nil {
		return status.Summary{}, fmt.Errorf("%w: %s", ErrUnknownDocument, documentID)
	}
	manager, err := status.Restore(snap)
	if err != nil {
		return status.Summary{}, err
	}
	return manager.ProcessingSummary(), nil
}

// rebuildTrigger reconstructs the event that originally started a
// stage. The first stage replays the upload; later stages replay the
// upstream success event using the artifact reference recorded on the
// upstream step. Success counts are not replayed; downstream stages
// consume only the artifact.
func (c *Coordinator) rebuildTrigger(manager *status.Manager, doc *core.Document, stage core.StageName) (*event.Event, error) {
	target, ok := c.stageByName(stage)
	if !ok {
		return nil, fmt.Errorf("%w: no binding for stage %s", ErrStageMismatch, stage)
	}

	if target.Trigger() == event.DocumentUploaded {
		return c.registry.NewEvent(&event.UploadedPayload{
			DocumentID: doc.Id,
			UserID:     doc.UserId,
			FilePath:   doc.FilePath,
			MimeType:   doc.MimeType,
			FileSize:   doc.FileSize,
		})
	}

	upstream, ok := c.upstreamOf(target.Trigger())
	if !ok {
		return nil, fmt.Errorf("%w: no stage emits %s", ErrStageMismatch, target.Trigger())
	}

	step, err := manager.Step(upstream.Name())
	if err != nil {
		return nil, err
	}
	if step.Status != core.StepCompleted {
		return nil, fmt.Errorf("%w: upstream stage %s is %s",
			ErrStageMismatch, upstream.Name(), step.Status)
	}
	ref := step.Metadata[artifactRefKey]
	if ref == "" {
		return nil, fmt.Errorf("upstream stage %s recorded no artifact", upstream.Name())
	}

	return c.registry.NewEvent(event.NewSuccessPayload(
		target.Trigger(), doc.Id, doc.UserId, 0, 0, ref))
}

func (c *Coordinator) stageByName(name core.StageName) (Stage, bool) {
	for _, s := range c.stages {
		if s.Name() == name {
			return s, true
		}
	}
	return nil, false
}

func (c *Coordinator) upstreamOf(trigger event.Name) (Stage, bool) {
	for _, s := range c.stages {
		if s.SuccessEvent() == trigger {
			return s, true
		}
	}
	return nil, false
}
