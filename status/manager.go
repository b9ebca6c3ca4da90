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


package status

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/docpipe/core"
)

// Manager tracks per-stage progress for exactly one document and derives
// the document-level status from the step map. It has a single writer by
// construction: stages for one document never run concurrently, so no
// lock is held here.
type Manager struct {
	documentID string
	order      []core.StageName
	steps      map[core.StageName]*core.ProcessingStep
	logger     *slog.Logger
	now        func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// withClock overrides the time source (for testing).
func withClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a manager for a document over the given stage
// order. Every stage starts pending.
func NewManager(documentID string, order []core.StageName, opts ...Option) (*Manager, error) {
	if len(order) == 0 {
		return nil, ErrEmptyStageOrder
	}

	steps := make(map[core.StageName]*core.ProcessingStep, len(order))
	for _, stage := range order {
		if err := core.ValidateStageName(stage); err != nil {
			return nil, err
		}
		if _, seen := steps[stage]; seen {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateStage, stage)
		}
		steps[stage] = &core.ProcessingStep{Status: core.StepPending}
	}

	m := &Manager{
		documentID: documentID,
		order:      append([]core.StageName(nil), order...),
		steps:      steps,
		logger:     slog.Default().With("component", "status-manager"),
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m, nil
}

// DocumentID returns the document this manager tracks.
func (m *Manager) DocumentID() string {
	return m.documentID
}

// Order returns the configured stage order.
func (m *Manager) Order() []core.StageName {
	return append([]core.StageName(nil), m.order...)
}

// Step returns a copy of the named stage's step.
func (m *Manager) Step(stage core.StageName) (core.ProcessingStep, error) {
	step, ok := m.steps[stage]
	if !ok {
		return core.ProcessingStep{}, fmt.Errorf("%w: %s", ErrUnknownStage, stage)
	}
	return *step, nil
}

// StartStage moves a stage to running. The stage must be known and must
// not already be running; a completed or failed stage must be reset via
// RetryFromStage first.
func (m *Manager) StartStage(stage core.StageName, metadata map[string]string) (core.DocumentStatus, error) {
	step, ok := m.steps[stage]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownStage, stage)
	}
	if step.Status != core.StepPending {
		return "", fmt.Errorf("%w: cannot start %s from %s", ErrInvalidTransition, stage, step.Status)
	}

	start := m.now().UTC()
	step.Status = core.StepRunning
	step.Progress = 0
	step.StartTime = &start
	step.EndTime = nil
	step.Error = ""
	step.Metadata = cloneMetadata(metadata)

	m.logger.Info("stage started", "document", m.documentID, "stage", stage)
	return m.DeriveStatus(), nil
}

// UpdateStageProgress records incremental progress for a running stage.
// Progress is clamped to [0,100]; document-level status is unchanged.
func (m *Manager) UpdateStageProgress(stage core.StageName, progress int, message string) error {
	step, ok := m.steps[stage]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownStage, stage)
	}
	if step.Status != core.StepRunning {
		return fmt.Errorf("%w: cannot update %s in %s", ErrInvalidTransition, stage, step.Status)
	}

	step.Progress = core.ClampProgress(progress)
	if message != "" {
		if step.Metadata == nil {
			step.Metadata = make(map[string]string)
		}
		step.Metadata["message"] = message
	}

	m.logger.Debug("stage progress", "document", m.documentID, "stage", stage, "progress", step.Progress)
	return nil
}

// CompleteStage moves a running stage to completed and returns the
// recomputed document-level status: the farthest fully completed
// milestone, or processed when every stage is done.
func (m *Manager) CompleteStage(stage core.StageName, metadata map[string]string) (core.DocumentStatus, error) {
	step, ok := m.steps[stage]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownStage, stage)
	}
	if step.Status != core.StepRunning {
		return "", fmt.Errorf("%w: cannot complete %s from %s", ErrInvalidTransition, stage, step.Status)
	}

	end := m.now().UTC()
	step.Status = core.StepCompleted
	step.Progress = 100
	step.EndTime = &end
	mergeMetadata(step, metadata)

	derived := m.DeriveStatus()
	m.logger.Info("stage completed", "document", m.documentID, "stage", stage, "status", derived)
	return derived, nil
}

// FailStage moves a running stage to failed. The document-level status
// becomes the stage-specific error variant; the pipeline does not
// auto-advance.
func (m *Manager) FailStage(stage core.StageName, cause error, metadata map[string]string) (core.DocumentStatus, error) {
	step, ok := m.steps[stage]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownStage, stage)
	}
	if step.Status != core.StepRunning {
		return "", fmt.Errorf("%w: cannot fail %s from %s", ErrInvalidTransition, stage, step.Status)
	}

	end := m.now().UTC()
	step.Status = core.StepFailed
	step.EndTime = &end
	if cause != nil {
		step.Error = cause.Error()
	}
	mergeMetadata(step, metadata)

	derived := m.DeriveStatus()
	m.logger.Warn("stage failed", "document", m.documentID, "stage", stage, "err", cause)
	return derived, nil
}

// RetryFromStage resets the named stage and every stage ordered after it
// to pending; earlier stages are untouched. Idempotent on repeated
// calls. The document-level status becomes retrying.
func (m *Manager) RetryFromStage(stage core.StageName) (core.DocumentStatus, error) {
	idx := m.indexOf(stage)
	if idx < 0 {
		return "", fmt.Errorf("%w: %s", ErrUnknownStage, stage)
	}

	for _, name := range m.order[idx:] {
		step := m.steps[name]
		step.Status = core.StepPending
		step.Progress = 0
		step.StartTime = nil
		step.EndTime = nil
		step.Error = ""
		step.Metadata = nil
	}

	m.logger.Info("retry reset", "document", m.documentID, "from", stage)
	return core.StatusRetrying, nil
}

// DeriveStatus computes the document-level status from the step map.
func (m *Manager) DeriveStatus() core.DocumentStatus {
	return DeriveStatus(m.order, m.snapshotSteps())
}

func (m *Manager) indexOf(stage core.StageName) int {
	for i, name := range m.order {
		if name == stage {
			return i
		}
	}
	return -1
}

func (m *Manager) snapshotSteps() map[core.StageName]core.ProcessingStep {
	out := make(map[core.StageName]core.ProcessingStep, len(m.steps))
	for name, step := range m.steps {
		out[name] = *step
	}
	return out
}

func cloneMetadata(metadata map[string]string) map[string]string {
	if len(metadata) == 0 {
		return nil
	}
	out := make(map[string]string, len(metadata))
	for k, v := range metadata {
		out[k] = v
	}
	return out
}

func mergeMetadata(step *core.ProcessingStep, metadata map[string]string) {
	if len(metadata) == 0 {
		return
	}
	if step.Metadata == nil {
		step.Metadata = make(map[string]string, len(metadata))
	}
	for k, v := range metadata {
		step.Metadata[k] = v
	}
}
