package status

import (
	"github.com/poiesic/docpipe/core"
)

// Snapshot is the persistable state of a Manager. A manager round-trips
// through its snapshot so pipeline progress survives process restarts.
type Snapshot struct {
	DocumentID string
	Order      []core.StageName
	Steps      map[core.StageName]core.ProcessingStep
}

// Snapshot captures the manager's current state.
func (m *Manager) Snapshot() *Snapshot {
	return &Snapshot{
		DocumentID: m.documentID,
		Order:      m.Order(),
		Steps:      m.snapshotSteps(),
	}
}

// Restore rebuilds a manager from a snapshot.
func Restore(snap *Snapshot, opts ...Option) (*Manager, error) {
	m, err := NewManager(snap.DocumentID, snap.Order, opts...)
	if err != nil {
		return nil, err
	}

	for name, step := range snap.Steps {
		existing, ok := m.steps[name]
		if !ok {
			return nil, ErrUnknownStage
		}
		*existing = step
		if step.Metadata != nil {
			existing.Metadata = cloneMetadata(step.Metadata)
		}
	}

	return m, nil
}
