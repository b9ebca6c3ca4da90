package reembed

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ProgressTracker reports how far a chunk rewrite has come, throttled
// to every reportInterval chunks so a large corpus does not flood the
// terminal. Safe for concurrent updates from worker goroutines.
type ProgressTracker struct {
	mu       sync.Mutex
	out      io.Writer
	total    int
	done     int
	every    int
	reported int
	began    time.Time
}

// NewProgressTracker tracks a run over total chunks, writing a status
// line to out every reportInterval chunks.
func NewProgressTracker(out io.Writer, total, reportInterval int) *ProgressTracker {
	return &ProgressTracker{
		out:   out,
		total: total,
		every: reportInterval,
	}
}

// Start resets the tracker and begins timing.
func (p *ProgressTracker) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.began = time.Now()
	p.done = 0
	p.reported = 0
}

// Update records that done chunks have been rewritten so far.
func (p *ProgressTracker) Update(done int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.began.IsZero() {
		return
	}
	if done > p.total {
		done = p.total
	}
	p.done = done
	if p.done-p.reported >= p.every {
		p.line()
		p.reported = p.done
	}
}

// Finish forces a final status line and ends it with a newline.
func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.began.IsZero() {
		return
	}
	p.done = p.total
	p.line()
	fmt.Fprintln(p.out)
}

// Elapsed returns how long the run has been going.
func (p *ProgressTracker) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.began.IsZero() {
		return 0
	}
	return time.Since(p.began)
}

// line writes the status line. Caller holds the lock.
func (p *ProgressTracker) line() {
	elapsed := time.Since(p.began)
	rate := float64(p.done) / elapsed.Seconds()
	pct := 0.0
	if p.total > 0 {
		pct = float64(p.done) / float64(p.total) * 100.0
	}
	fmt.Fprintf(p.out, "\rReembedded %d/%d chunks (%.1f%%) - %.1f chunks/s",
		p.done, p.total, pct, rate)
}
