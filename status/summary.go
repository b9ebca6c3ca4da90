package status

import (
	"time"

	"github.com/poiesic/docpipe/core"
)

// Summary reports overall pipeline progress for one document.
type Summary struct {
	// OverallProgress is the arithmetic mean of all steps' progress.
	OverallProgress int

	// CurrentStage is the running stage, empty when none is running.
	CurrentStage core.StageName

	// StageDurations holds elapsed time per started stage. Running
	// stages report time since start.
	StageDurations map[core.StageName]time.Duration

	// EstimatedTimeRemaining is the mean duration of completed stages
	// multiplied by the count of stages still pending or running. Nil
	// when no stage has completed yet.
	EstimatedTimeRemaining *time.Duration
}

// ProcessingSummary computes the current summary.
func (m *Manager) ProcessingSummary() Summary {
	summary := Summary{
		StageDurations: make(map[core.StageName]time.Duration),
	}

	now := m.now().UTC()
	totalProgress := 0
	var completedTotal time.Duration
	completedCount := 0
	remaining := 0

	for _, stage := range m.order {
		step := m.steps[stage]
		totalProgress += step.Progress

		switch step.Status {
		case core.StepRunning:
			summary.CurrentStage = stage
			remaining++
			if step.StartTime != nil {
				summary.StageDurations[stage] = now.Sub(*step.StartTime)
			}
		case core.StepCompleted:
			if step.StartTime != nil && step.EndTime != nil {
				d := step.EndTime.Sub(*step.StartTime)
				summary.StageDurations[stage] = d
				completedTotal += d
				completedCount++
			}
		case core.StepFailed:
			if step.StartTime != nil && step.EndTime != nil {
				summary.StageDurations[stage] = step.EndTime.Sub(*step.StartTime)
			}
		default:
			remaining++
		}
	}

	summary.OverallProgress = totalProgress / len(m.order)

	if completedCount > 0 {
		eta := time.Duration(int64(completedTotal) / int64(completedCount) * int64(remaining))
		summary.EstimatedTimeRemaining = &eta
	}

	return summary
}
