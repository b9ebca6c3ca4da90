package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDocument() *Document {
	return &Document{
		Id:       "0b2e55c1-9d0a-4c45-91a6-4f6a28f2a111",
		Status:   StatusUploaded,
		FilePath: "/uploads/report.pdf",
		MimeType: "application/pdf",
		FileSize: 1024,
		UserId:   "user-1",
	}
}

func TestValidateDocument_Valid(t *testing.T) {
	require.NoError(t, ValidateDocument(validDocument()))
}

func TestValidateDocument_Nil(t *testing.T) {
	err := ValidateDocument(nil)
	assert.ErrorIs(t, err, ErrInvalidDocument)
}

func TestValidateDocument_EmptyFields(t *testing.T) {
	doc := validDocument()
	doc.Id = ""
	assert.ErrorIs(t, ValidateDocument(doc), ErrEmptyDocumentId)

	doc = validDocument()
	doc.FilePath = ""
	assert.ErrorIs(t, ValidateDocument(doc), ErrEmptyFilePath)

	doc = validDocument()
	doc.MimeType = ""
	assert.ErrorIs(t, ValidateDocument(doc), ErrEmptyMimeType)
}

func TestValidateDocument_UnknownStatus(t *testing.T) {
	doc := validDocument()
	doc.Status = "half_done"
	assert.ErrorIs(t, ValidateDocument(doc), ErrUnknownStatus)
}

func TestValidateStageName(t *testing.T) {
	for _, stage := range DefaultStageOrder() {
		assert.NoError(t, ValidateStageName(stage))
	}
	assert.NoError(t, ValidateStageName(StageQualityAssessment))
	assert.ErrorIs(t, ValidateStageName("ocr"), ErrUnknownStage)
}

func TestClampProgress(t *testing.T) {
	assert.Equal(t, 0, ClampProgress(-10))
	assert.Equal(t, 0, ClampProgress(0))
	assert.Equal(t, 42, ClampProgress(42))
	assert.Equal(t, 100, ClampProgress(100))
	assert.Equal(t, 100, ClampProgress(250))
}

func TestIsValidTimestamp(t *testing.T) {
	assert.True(t, IsValidTimestamp(time.Now()))
	assert.True(t, IsValidTimestamp(time.Now().Add(-time.Hour)))
	assert.False(t, IsValidTimestamp(time.Now().Add(time.Hour)))
}
