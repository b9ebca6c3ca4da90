package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/docpipe/core"
	"github.com/poiesic/docpipe/event"
	badgerstore "github.com/poiesic/docpipe/storage/badger"
	"github.com/poiesic/docpipe/substrate"
	"github.com/poiesic/docpipe/substrate/memory"
)

type coordinatorFixture struct {
	sub      *memory.Substrate
	repos    *badgerstore.Repositories
	registry *event.Registry
	executor *Executor
	doc      *core.Document
}

func newCoordinatorFixture(t *testing.T) *coordinatorFixture {
	t.Helper()

	repos, backend, err := badgerstore.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })

	sub, err := memory.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sub.Close() })

	registry := event.NewRegistry()
	executor, err := NewExecutor(
		repos.Documents, repos.States, repos.Artifacts, repos.Checkpoints,
		registry)
	require.NoError(t, err)

	doc, err := repos.Documents.AddDocument(context.Background(), &core.Document{
		Id:       "doc-1",
		Status:   core.StatusUploaded,
		FilePath: "/tmp/report.pdf",
		MimeType: "application/pdf",
		FileSize: 2048,
		UserId:   "user-1",
	})
	require.NoError(t, err)

	return &coordinatorFixture{
		sub:      sub,
		repos:    repos,
		registry: registry,
		executor: executor,
		doc:      doc,
	}
}

func quickPolicy(retries int) substrate.Policy {
	return substrate.Policy{
		Retries:     retries,
		Concurrency: 1,
		BaseDelay:   time.Millisecond,
	}
}

func (f *coordinatorFixture) publishUploaded(t *testing.T, c *Coordinator) {
	t.Helper()
	evt, err := f.registry.NewEvent(&event.UploadedPayload{
		DocumentID: f.doc.Id,
		UserID:     f.doc.UserId,
		FilePath:   f.doc.FilePath,
		MimeType:   f.doc.MimeType,
		FileSize:   f.doc.FileSize,
	})
	require.NoError(t, err)
	require.NoError(t, c.Publish(context.Background(), evt))
}

func (f *coordinatorFixture) drain(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, f.sub.Drain(ctx))
}

func TestNewCoordinatorRejectsEmptyBindings(t *testing.T) {
	f := newCoordinatorFixture(t)

	_, err := NewCoordinator(f.sub, f.executor, f.repos.Documents, f.repos.States,
		f.registry, nil)
	assert.ErrorIs(t, err, ErrNoBindings)
}

func TestNewCoordinatorRejectsDuplicateTrigger(t *testing.T) {
	f := newCoordinatorFixture(t)

	first := newExtractionStub(func(StageInput) (Execution, error) { return nil, nil })
	second := newExtractionStub(func(StageInput) (Execution, error) { return nil, nil })

	_, err := NewCoordinator(f.sub, f.executor, f.repos.Documents, f.repos.States,
		f.registry, []Binding{
			{Stage: first, Policy: quickPolicy(0)},
			{Stage: second, Policy: quickPolicy(0)},
		})
	assert.ErrorIs(t, err, ErrDuplicateTrigger)
}

func TestCoordinatorRunsChainedStages(t *testing.T) {
	f := newCoordinatorFixture(t)
	ctx := context.Background()

	extraction := newExtractionStub(func(StageInput) (Execution, error) {
		return &stubExecution{
			items:  []string{"page-1", "page-2"},
			output: []byte("extracted text"),
		}, nil
	})

	var imagingInput StageInput
	imaging := &stubStage{
		name:    core.StageImageExtraction,
		trigger: event.DocumentTextExtracted,
		success: event.DocumentImagesExtracted,
		failure: event.DocumentImageExtractionFailed,
		prepare: func(in StageInput) (Execution, error) {
			imagingInput = in
			return &stubExecution{
				items:  []string{"page-1"},
				output: []byte("images"),
			}, nil
		},
	}

	c, err := NewCoordinator(f.sub, f.executor, f.repos.Documents, f.repos.States,
		f.registry, []Binding{
			{Stage: extraction, Policy: quickPolicy(0)},
			{Stage: imaging, Policy: quickPolicy(0)},
		})
	require.NoError(t, err)

	f.publishUploaded(t, c)
	f.drain(t)

	// The second stage received the first stage's artifact reference.
	require.NotNil(t, imagingInput.Document)
	assert.Equal(t, f.doc.Id, imagingInput.Document.Id)
	assert.NotEmpty(t, imagingInput.InputRef)

	data, err := f.repos.Artifacts.GetArtifact(ctx, imagingInput.InputRef)
	require.NoError(t, err)
	assert.Equal(t, []byte("extracted text"), data)

	snap, err := f.repos.States.LoadState(ctx, f.doc.Id)
	require.NoError(t, err)
	assert.Equal(t, core.StepCompleted, snap.Steps[core.StageTextExtraction].Status)
	assert.Equal(t, core.StepCompleted, snap.Steps[core.StageImageExtraction].Status)
}

func TestCoordinatorRetriesTransientFailures(t *testing.T) {
	f := newCoordinatorFixture(t)

	attempts := 0
	extraction := newExtractionStub(func(StageInput) (Execution, error) {
		attempts++
		if attempts < 3 {
			return nil, NewTransientError(errors.New("service warming up"))
		}
		return &stubExecution{
			items:  []string{"page-1"},
			output: []byte("ok"),
		}, nil
	})

	c, err := NewCoordinator(f.sub, f.executor, f.repos.Documents, f.repos.States,
		f.registry, []Binding{
			{Stage: extraction, Policy: quickPolicy(2)},
		})
	require.NoError(t, err)

	f.publishUploaded(t, c)
	f.drain(t)

	// retries=2 means three attempts total; the third succeeds.
	assert.Equal(t, 3, attempts)

	snap, err := f.repos.States.LoadState(context.Background(), f.doc.Id)
	require.NoError(t, err)
	assert.Equal(t, core.StepCompleted, snap.Steps[core.StageTextExtraction].Status)
}

func TestCoordinatorExhaustedRetriesFailTerminally(t *testing.T) {
	f := newCoordinatorFixture(t)

	attempts := 0
	extraction := newExtractionStub(func(StageInput) (Execution, error) {
		attempts++
		return nil, NewTransientError(errors.New("service down"))
	})

	c, err := NewCoordinator(f.sub, f.executor, f.repos.Documents, f.repos.States,
		f.registry, []Binding{
			{Stage: extraction, Policy: quickPolicy(2)},
		})
	require.NoError(t, err)

	f.publishUploaded(t, c)
	f.drain(t)

	assert.Equal(t, 3, attempts)

	doc, err := f.repos.Documents.GetDocument(context.Background(), f.doc.Id)
	require.NoError(t, err)
	assert.Equal(t, core.StatusErrorTextExtraction, doc.Status)
}

func TestCoordinatorRetryDocumentResumesFromFailedStage(t *testing.T) {
	f := newCoordinatorFixture(t)
	ctx := context.Background()

	extraction := newExtractionStub(func(StageInput) (Execution, error) {
		return &stubExecution{
			items:  []string{"page-1"},
			output: []byte("text"),
		}, nil
	})

	imagingRuns := 0
	imaging := &stubStage{
		name:    core.StageImageExtraction,
		trigger: event.DocumentTextExtracted,
		success: event.DocumentImagesExtracted,
		failure: event.DocumentImageExtractionFailed,
		prepare: func(in StageInput) (Execution, error) {
			imagingRuns++
			if imagingRuns == 1 {
				return nil, NewValidationError(errors.New("renderer missing"))
			}
			return &stubExecution{
				items:  []string{"page-1"},
				output: []byte("images"),
			}, nil
		},
	}

	c, err := NewCoordinator(f.sub, f.executor, f.repos.Documents, f.repos.States,
		f.registry, []Binding{
			{Stage: extraction, Policy: quickPolicy(0)},
			{Stage: imaging, Policy: quickPolicy(0)},
		})
	require.NoError(t, err)

	f.publishUploaded(t, c)
	f.drain(t)

	doc, err := f.repos.Documents.GetDocument(ctx, f.doc.Id)
	require.NoError(t, err)
	require.Equal(t, core.StatusErrorImageExtraction, doc.Status)

	// A checkpoint left over from the failed run must not leak into the
	// retry, or the rerun would resume into discarded results.
	require.NoError(t, f.repos.Checkpoints.SaveCheckpoint(ctx, &core.Checkpoint{
		DocumentId: f.doc.Id,
		Stage:      core.StageImageExtraction,
		Position:   1,
	}))

	// Operator retry: the failed stage reruns off the recorded upstream
	// artifact without redoing extraction.
	require.NoError(t, c.RetryDocument(ctx, f.doc.Id, core.StageImageExtraction))

	checkpoint, err := f.repos.Checkpoints.LoadCheckpoint(ctx, f.doc.Id, core.StageImageExtraction)
	require.NoError(t, err)
	assert.Nil(t, checkpoint)

	f.drain(t)

	assert.Equal(t, 2, imagingRuns)

	snap, err := f.repos.States.LoadState(ctx, f.doc.Id)
	require.NoError(t, err)
	assert.Equal(t, core.StepCompleted, snap.Steps[core.StageImageExtraction].Status)
}

func TestCoordinatorRetryDocumentUnknownState(t *testing.T) {
	f := newCoordinatorFixture(t)

	extraction := newExtractionStub(func(StageInput) (Execution, error) { return nil, nil })
	c, err := NewCoordinator(f.sub, f.executor, f.repos.Documents, f.repos.States,
		f.registry, []Binding{{Stage: extraction, Policy: quickPolicy(0)}})
	require.NoError(t, err)

	err = c.RetryDocument(context.Background(), f.doc.Id, core.StageTextExtraction)
	assert.ErrorIs(t, err, ErrUnknownDocument)
}

func TestCoordinatorProgress(t *testing.T) {
	f := newCoordinatorFixture(t)
	ctx := context.Background()

	extraction := newExtractionStub(func(StageInput) (Execution, error) {
		return &stubExecution{
			items:  []string{"page-1"},
			output: []byte("text"),
		}, nil
	})

	c, err := NewCoordinator(f.sub, f.executor, f.repos.Documents, f.repos.States,
		f.registry, []Binding{{Stage: extraction, Policy: quickPolicy(0)}})
	require.NoError(t, err)

	_, err = c.Progress(ctx, f.doc.Id)
	assert.ErrorIs(t, err, ErrUnknownDocument)

	f.publishUploaded(t, c)
	f.drain(t)

	summary, err := c.Progress(ctx, f.doc.Id)
	require.NoError(t, err)
	assert.NotZero(t, summary.OverallProgress)
}
