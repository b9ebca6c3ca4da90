package status

import (
	"github.com/poiesic/docpipe/core"
)

// DeriveStatus maps a step map onto the document-level status. It is a
// pure function over the configured order so it can be tested without a
// manager or a database.
//
// Rules, in priority order:
//  1. any failed step -> that stage's error variant
//  2. all steps completed -> processed
//  3. a running step -> its active status (ade_processing for ADE,
//     otherwise the farthest completed milestone, or processing when
//     nothing has completed yet)
//  4. nothing started -> uploaded
//  5. otherwise -> the milestone of the last completed stage
func DeriveStatus(order []core.StageName, steps map[core.StageName]core.ProcessingStep) core.DocumentStatus {
	for _, stage := range order {
		if steps[stage].Status == core.StepFailed {
			return stage.ErrorStatus()
		}
	}

	lastCompleted := core.StageName("")
	allCompleted := true
	anyStarted := false
	for _, stage := range order {
		step := steps[stage]
		switch step.Status {
		case core.StepCompleted:
			anyStarted = true
			if allCompleted {
				lastCompleted = stage
			}
		case core.StepRunning:
			anyStarted = true
			allCompleted = false
			if active := stage.ActiveStatus(); active != core.StatusProcessing {
				return active
			}
		default:
			allCompleted = false
		}
	}

	if allCompleted {
		return core.StatusProcessed
	}
	if !anyStarted {
		return core.StatusUploaded
	}
	if lastCompleted == "" {
		return core.StatusProcessing
	}
	return lastCompleted.MilestoneStatus()
}
