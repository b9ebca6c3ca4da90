package memory

import (
	"context"
	"sync"
	"time"

	"github.com/poiesic/docpipe/substrate"
)

// slidingWindow is a sliding-window rate limiter: at most limit starts
// within any trailing period.
type slidingWindow struct {
	mu     sync.Mutex
	limit  int
	period time.Duration
	starts []time.Time
	now    func() time.Time
}

// newSlidingWindow creates a limiter for the rate limit.
// Returns nil for an unlimited rate limit.
func newSlidingWindow(rl substrate.RateLimit) *slidingWindow {
	if rl.Unlimited() {
		return nil
	}
	return &slidingWindow{
		limit:  rl.Limit,
		period: rl.Period,
		now:    time.Now,
	}
}

// Wait blocks until a slot is available or the context is cancelled.
// A nil limiter never blocks.
func (w *slidingWindow) Wait(ctx context.Context) error {
	if w == nil {
		return nil
	}

	for {
		w.mu.Lock()
		now := w.now()

		// Prune starts that left the window
		cutoff := now.Add(-w.period)
		kept := w.starts[:0]
		for _, ts := range w.starts {
			if ts.After(cutoff) {
				kept = append(kept, ts)
			}
		}
		w.starts = kept

		if len(w.starts) < w.limit {
			w.starts = append(w.starts, now)
			w.mu.Unlock()
			return nil
		}

		// Oldest start leaving the window frees the next slot
		wait := w.starts[0].Add(w.period).Sub(now)
		w.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
