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


package core

import (
	"fmt"
	"time"
)

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - Id must not be empty
//   - FilePath must not be empty
//   - MimeType must not be empty
//   - Status must be a known DocumentStatus
//
// NOT validated (populated elsewhere):
//   - FileSize (0 is valid for an empty upload; stages reject it later)
//   - UserId (anonymous uploads are allowed at this layer)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.Id == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyDocumentId)
	}

	if doc.FilePath == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyFilePath)
	}

	if doc.MimeType == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyMimeType)
	}

	if err := ValidateStatus(doc.Status); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	return nil
}

// ValidateStatus validates that a DocumentStatus belongs to the closed set.
func ValidateStatus(status DocumentStatus) error {
	switch status {
	case StatusUploaded, StatusProcessing, StatusTextExtracted,
		StatusImagesExtracted, StatusADEProcessing, StatusADEProcessed,
		StatusChunked, StatusEmbedded, StatusProcessed, StatusRetrying,
		StatusError, StatusErrorTextExtraction, StatusErrorImageExtraction,
		StatusErrorADEProcessing, StatusErrorChunking, StatusErrorEmbedding,
		StatusErrorIndexing:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownStatus, status)
}

// ValidateStageName validates that a StageName belongs to the closed set.
func ValidateStageName(stage StageName) error {
	switch stage {
	case StageTextExtraction, StageImageExtraction, StageADEProcessing,
		StageChunking, StageEmbedding, StageIndexing, StageQualityAssessment:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownStage, stage)
}

// ClampProgress clamps a progress value to [0,100].
func ClampProgress(progress int) int {
	if progress < 0 {
		return 0
	}
	if progress > 100 {
		return 100
	}
	return progress
}

// IsValidTimestamp returns true if the timestamp is not in the future.
// A small clock-skew allowance of 1 minute is permitted.
func IsValidTimestamp(t time.Time) bool {
	return !t.After(time.Now().Add(1 * time.Minute))
}
