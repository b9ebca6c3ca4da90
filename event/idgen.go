package event

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// idGenerator produces deduplication ids of the form
// "<name>-<counter>-<random suffix>". The counter is monotonic for the
// life of the process; the suffix keeps ids unique across restarts.
type idGenerator struct {
	counter atomic.Uint64
}

func newIDGenerator() *idGenerator {
	return &idGenerator{}
}

func (g *idGenerator) next(name Name) string {
	n := g.counter.Add(1)
	suffix := uuid.NewString()[:8]
	return fmt.Sprintf("%s-%d-%s", name, n, suffix)
}
