package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/poiesic/docpipe/event"
	"github.com/poiesic/docpipe/substrate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEvent(t *testing.T, registry *event.Registry, docID string) *event.Event {
	t.Helper()
	evt, err := registry.NewEvent(&event.UploadedPayload{
		DocumentID: docID,
		UserID:     "user-1",
		FilePath:   "/data/" + docID + ".pdf",
		MimeType:   "application/pdf",
		FileSize:   100,
	})
	require.NoError(t, err)
	return evt
}

func TestPublishDeliversToSubscriber(t *testing.T) {
	sub, err := New()
	require.NoError(t, err)
	defer sub.Close()

	var delivered atomic.Int32
	require.NoError(t, sub.Register(substrate.Registration{
		Name:    "counter",
		Trigger: event.DocumentUploaded,
		Policy:  substrate.Policy{BaseDelay: time.Millisecond},
		Handler: func(ctx context.Context, d substrate.Delivery) error {
			assert.Equal(t, 1, d.Attempt)
			delivered.Add(1)
			return nil
		},
	}))

	registry := event.NewRegistry()
	require.NoError(t, sub.Publish(context.Background(), newTestEvent(t, registry, "doc-1")))
	require.NoError(t, sub.Drain(context.Background()))

	assert.Equal(t, int32(1), delivered.Load())
}

func TestPublishNoSubscribersIsNoOp(t *testing.T) {
	sub, err := New()
	require.NoError(t, err)
	defer sub.Close()

	registry := event.NewRegistry()
	require.NoError(t, sub.Publish(context.Background(), newTestEvent(t, registry, "doc-1")))
	require.NoError(t, sub.Drain(context.Background()))
}

func TestRetriesWithAttemptNumbers(t *testing.T) {
	sub, err := New()
	require.NoError(t, err)
	defer sub.Close()

	var mu sync.Mutex
	var attempts []int

	require.NoError(t, sub.Register(substrate.Registration{
		Name:    "flaky",
		Trigger: event.DocumentUploaded,
		Policy:  substrate.Policy{Retries: 2, BaseDelay: time.Millisecond},
		Handler: func(ctx context.Context, d substrate.Delivery) error {
			mu.Lock()
			attempts = append(attempts, d.Attempt)
			mu.Unlock()
			assert.Equal(t, 3, d.MaxAttempts)
			if d.Attempt < 3 {
				return errors.New("transient")
			}
			return nil
		},
	}))

	registry := event.NewRegistry()
	require.NoError(t, sub.Publish(context.Background(), newTestEvent(t, registry, "doc-1")))
	require.NoError(t, sub.Drain(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{1, 2, 3}, attempts)
}

func TestRetriesStopAtMaxAttempts(t *testing.T) {
	sub, err := New()
	require.NoError(t, err)
	defer sub.Close()

	var calls atomic.Int32
	require.NoError(t, sub.Register(substrate.Registration{
		Name:    "always-failing",
		Trigger: event.DocumentUploaded,
		Policy:  substrate.Policy{Retries: 1, BaseDelay: time.Millisecond},
		Handler: func(ctx context.Context, d substrate.Delivery) error {
			calls.Add(1)
			return errors.New("boom")
		},
	}))

	registry := event.NewRegistry()
	require.NoError(t, sub.Publish(context.Background(), newTestEvent(t, registry, "doc-1")))
	require.NoError(t, sub.Drain(context.Background()))

	assert.Equal(t, int32(2), calls.Load())
}

func TestDuplicateEventSuppressed(t *testing.T) {
	sub, err := New()
	require.NoError(t, err)
	defer sub.Close()

	var calls atomic.Int32
	require.NoError(t, sub.Register(substrate.Registration{
		Name:    "dedup",
		Trigger: event.DocumentUploaded,
		Policy:  substrate.Policy{BaseDelay: time.Millisecond},
		Handler: func(ctx context.Context, d substrate.Delivery) error {
			calls.Add(1)
			return nil
		},
	}))

	registry := event.NewRegistry()
	evt := newTestEvent(t, registry, "doc-1")

	require.NoError(t, sub.Publish(context.Background(), evt))
	require.NoError(t, sub.Publish(context.Background(), evt))
	require.NoError(t, sub.Drain(context.Background()))

	assert.Equal(t, int32(1), calls.Load())
}

func TestMultipleSubscribersSameTrigger(t *testing.T) {
	sub, err := New()
	require.NoError(t, err)
	defer sub.Close()

	var first, second atomic.Int32
	for _, target := range []struct {
		name    string
		counter *atomic.Int32
	}{
		{"first", &first},
		{"second", &second},
	} {
		counter := target.counter
		require.NoError(t, sub.Register(substrate.Registration{
			Name:    target.name,
			Trigger: event.DocumentUploaded,
			Policy:  substrate.Policy{BaseDelay: time.Millisecond},
			Handler: func(ctx context.Context, d substrate.Delivery) error {
				counter.Add(1)
				return nil
			},
		}))
	}

	registry := event.NewRegistry()
	require.NoError(t, sub.Publish(context.Background(), newTestEvent(t, registry, "doc-1")))
	require.NoError(t, sub.Drain(context.Background()))

	assert.Equal(t, int32(1), first.Load())
	assert.Equal(t, int32(1), second.Load())
}

func TestRegisterAfterPublishRejected(t *testing.T) {
	sub, err := New()
	require.NoError(t, err)
	defer sub.Close()

	registry := event.NewRegistry()
	require.NoError(t, sub.Publish(context.Background(), newTestEvent(t, registry, "doc-1")))

	err = sub.Register(substrate.Registration{
		Name:    "late",
		Trigger: event.DocumentUploaded,
		Handler: func(ctx context.Context, d substrate.Delivery) error { return nil },
	})
	assert.ErrorIs(t, err, substrate.ErrAlreadyStarted)
}

func TestRegisterValidation(t *testing.T) {
	sub, err := New()
	require.NoError(t, err)
	defer sub.Close()

	err = sub.Register(substrate.Registration{
		Name:    "no-handler",
		Trigger: event.DocumentUploaded,
	})
	assert.ErrorIs(t, err, substrate.ErrNilHandler)

	err = sub.Register(substrate.Registration{
		Name:    "no-trigger",
		Handler: func(ctx context.Context, d substrate.Delivery) error { return nil },
	})
	assert.ErrorIs(t, err, substrate.ErrEmptyTrigger)

	err = sub.Register(substrate.Registration{
		Name:    "too-many-retries",
		Trigger: event.DocumentUploaded,
		Policy:  substrate.Policy{Retries: substrate.MaxRetries + 1},
		Handler: func(ctx context.Context, d substrate.Delivery) error { return nil },
	})
	assert.ErrorIs(t, err, substrate.ErrInvalidPolicy)
}

func TestPublishAfterCloseRejected(t *testing.T) {
	sub, err := New()
	require.NoError(t, err)
	require.NoError(t, sub.Close())

	registry := event.NewRegistry()
	err = sub.Publish(context.Background(), newTestEvent(t, registry, "doc-1"))
	assert.ErrorIs(t, err, substrate.ErrClosed)
}

func TestConcurrencyLimitRespected(t *testing.T) {
	sub, err := New()
	require.NoError(t, err)
	defer sub.Close()

	var current, peak atomic.Int32
	require.NoError(t, sub.Register(substrate.Registration{
		Name:    "bounded",
		Trigger: event.DocumentUploaded,
		Policy:  substrate.Policy{Concurrency: 2, BaseDelay: time.Millisecond},
		Handler: func(ctx context.Context, d substrate.Delivery) error {
			n := current.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			current.Add(-1)
			return nil
		},
	}))

	registry := event.NewRegistry()
	for i := 0; i < 6; i++ {
		require.NoError(t, sub.Publish(context.Background(), newTestEvent(t, registry, "doc-n")))
	}
	require.NoError(t, sub.Drain(context.Background()))

	assert.LessOrEqual(t, peak.Load(), int32(2))
}
