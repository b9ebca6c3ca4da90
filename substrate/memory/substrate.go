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


package memory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/docpipe/event"
	"github.com/poiesic/docpipe/substrate"
)

// Substrate is the in-process substrate.Substrate implementation.
// Each registration gets its own worker pool, rate limiter, and
// duplicate-suppression set.
type Substrate struct {
	logger *slog.Logger

	baseCtx context.Context
	cancel  context.CancelFunc

	mu      sync.Mutex
	subs    map[event.Name][]*subscription
	started bool
	closed  bool

	inFlight sync.WaitGroup
}

type subscription struct {
	name    string
	trigger event.Name
	policy  substrate.Policy
	handler substrate.Handler
	pool    *ants.Pool
	limiter *slidingWindow

	seenMu sync.Mutex
	seen   map[string]struct{}
}

var _ substrate.Substrate = (*Substrate)(nil)

// Option configures a Substrate.
type Option func(*Substrate) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Substrate) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger.With("component", "memory-substrate")
		return nil
	}
}

// New creates an in-process substrate.
func New(opts ...Option) (*Substrate, error) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Substrate{
		logger:  slog.Default().With("component", "memory-substrate"),
		baseCtx: ctx,
		cancel:  cancel,
		subs:    make(map[event.Name][]*subscription),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			cancel()
			return nil, err
		}
	}
	return s, nil
}

// Register subscribes a handler to its trigger event.
// Registrations are accepted only before the first Publish.
func (s *Substrate) Register(reg substrate.Registration) error {
	if reg.Handler == nil {
		return substrate.ErrNilHandler
	}
	if reg.Trigger == "" {
		return substrate.ErrEmptyTrigger
	}
	if err := reg.Policy.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return substrate.ErrClosed
	}
	if s.started {
		return substrate.ErrAlreadyStarted
	}

	pool, err := ants.NewPool(reg.Policy.Concurrency)
	if err != nil {
		return err
	}

	s.subs[reg.Trigger] = append(s.subs[reg.Trigger], &subscription{
		name:    reg.Name,
		trigger: reg.Trigger,
		policy:  reg.Policy,
		handler: reg.Handler,
		pool:    pool,
		limiter: newSlidingWindow(reg.Policy.RateLimit),
		seen:    make(map[string]struct{}),
	})

	s.logger.Debug("registered subscriber",
		"name", reg.Name,
		"trigger", reg.Trigger,
		"retries", reg.Policy.Retries,
		"concurrency", reg.Policy.Concurrency)

	return nil
}

// Publish routes an event to every subscriber of its name.
func (s *Substrate) Publish(ctx context.Context, evt *event.Event) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return substrate.ErrClosed
	}
	s.started = true
	subs := s.subs[evt.Name]
	s.mu.Unlock()

	if len(subs) == 0 {
		s.logger.Debug("no subscribers for event", "event", evt.Name, "id", evt.ID)
		return nil
	}

	for _, sub := range subs {
		if !sub.markSeen(evt.ID) {
			s.logger.Debug("suppressing duplicate delivery",
				"subscriber", sub.name,
				"event", evt.Name,
				"id", evt.ID)
			continue
		}

		sub := sub
		s.inFlight.Add(1)
		err := sub.pool.Submit(func() {
			defer s.inFlight.Done()
			s.deliver(sub, evt)
		})
		if err != nil {
			s.inFlight.Done()
			return err
		}
	}

	return nil
}

// markSeen records the event ID; returns false if it was already seen.
func (sub *subscription) markSeen(id string) bool {
	sub.seenMu.Lock()
	defer sub.seenMu.Unlock()
	if _, ok := sub.seen[id]; ok {
		return false
	}
	sub.seen[id] = struct{}{}
	return true
}

// deliver runs the attempt loop for one event and subscriber.
func (s *Substrate) deliver(sub *subscription, evt *event.Event) {
	maxAttempts := sub.policy.MaxAttempts()

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := sub.limiter.Wait(s.baseCtx); err != nil {
			s.logger.Debug("delivery abandoned while rate limited",
				"subscriber", sub.name, "event", evt.Name, "id", evt.ID)
			return
		}

		lastErr = s.attempt(sub, evt, attempt, maxAttempts)
		if lastErr == nil {
			if attempt > 1 {
				s.logger.Debug("delivery succeeded after retry",
					"subscriber", sub.name, "event", evt.Name, "attempt", attempt)
			}
			return
		}

		s.logger.Warn("delivery attempt failed",
			"subscriber", sub.name,
			"event", evt.Name,
			"id", evt.ID,
			"attempt", attempt,
			"maxAttempts", maxAttempts,
			"err", lastErr)

		// Don't sleep after the last attempt
		if attempt == maxAttempts {
			break
		}

		// Exponential backoff: baseDelay * 2^(attempt-1)
		delay := sub.policy.BaseDelay
		for i := 1; i < attempt; i++ {
			delay *= 2
		}

		timer := time.NewTimer(delay)
		select {
		case <-s.baseCtx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}

	s.logger.Error("delivery exhausted",
		"subscriber", sub.name,
		"event", evt.Name,
		"id", evt.ID,
		"attempts", maxAttempts,
		"err", lastErr)
}

// attempt invokes the handler once, applying the attempt timeout.
func (s *Substrate) attempt(sub *subscription, evt *event.Event, attempt, maxAttempts int) error {
	ctx := s.baseCtx
	if sub.policy.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, sub.policy.Timeout)
		defer cancel()
	}

	return sub.handler(ctx, substrate.Delivery{
		Event:       evt,
		Attempt:     attempt,
		MaxAttempts: maxAttempts,
	})
}

// Drain blocks until every in-flight delivery has finished.
func (s *Substrate) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inFlight.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// Close stops delivery and releases the worker pools.
// Pending retries are abandoned.
func (s *Substrate) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	subs := s.subs
	s.mu.Unlock()

	s.cancel()
	s.inFlight.Wait()

	for _, list := range subs {
		for _, sub := range list {
			sub.pool.Release()
		}
	}
	return nil
}
