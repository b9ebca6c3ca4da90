package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRefFromContent_Deterministic(t *testing.T) {
	ref1 := RefFromContent([]byte("page one text"))
	ref2 := RefFromContent([]byte("page one text"))
	assert.Equal(t, ref1, ref2, "identical content should produce identical refs")
	assert.NotEmpty(t, ref1)
}

func TestRefFromContent_DifferentContent(t *testing.T) {
	ref1 := RefFromContent([]byte("alpha"))
	ref2 := RefFromContent([]byte("beta"))
	assert.NotEqual(t, ref1, ref2)
}

func TestStageName_MilestoneStatus(t *testing.T) {
	assert.Equal(t, StatusTextExtracted, StageTextExtraction.MilestoneStatus())
	assert.Equal(t, StatusImagesExtracted, StageImageExtraction.MilestoneStatus())
	assert.Equal(t, StatusADEProcessed, StageADEProcessing.MilestoneStatus())
	assert.Equal(t, StatusChunked, StageChunking.MilestoneStatus())
	assert.Equal(t, StatusEmbedded, StageEmbedding.MilestoneStatus())
	assert.Equal(t, StatusProcessed, StageIndexing.MilestoneStatus())
}

func TestStageName_ErrorStatus(t *testing.T) {
	assert.Equal(t, StatusErrorImageExtraction, StageImageExtraction.ErrorStatus())
	assert.Equal(t, StatusErrorADEProcessing, StageADEProcessing.ErrorStatus())
	assert.Equal(t, StatusError, StageName("bogus").ErrorStatus())
}

func TestStageName_ActiveStatus(t *testing.T) {
	assert.Equal(t, StatusADEProcessing, StageADEProcessing.ActiveStatus())
	assert.Equal(t, StatusProcessing, StageChunking.ActiveStatus())
}

func TestStageOutcome_Partial(t *testing.T) {
	partial := &StageOutcome{SucceededCount: 9, FailedCount: 1}
	assert.True(t, partial.Partial())

	success := &StageOutcome{SucceededCount: 10}
	assert.False(t, success.Partial())

	failure := &StageOutcome{FailedCount: 10}
	assert.False(t, failure.Partial())
}
