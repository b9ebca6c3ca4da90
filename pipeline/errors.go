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


package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateTrigger indicates two stages bound to the same trigger event.
	ErrDuplicateTrigger = errors.New("trigger already bound to a stage")

	// ErrNoBindings indicates a coordinator built without stages.
	ErrNoBindings = errors.New("no stage bindings")

	// ErrStageMismatch indicates an event routed to a stage that doesn't
	// handle it.
	ErrStageMismatch = errors.New("event does not match stage trigger")

	// ErrNoItems indicates a stage prepared zero sub-items.
	ErrNoItems = errors.New("stage produced no items to process")

	// ErrAllItemsFailed indicates every sub-item of a stage failed.
	ErrAllItemsFailed = errors.New("all stage items failed")

	// ErrUnknownDocument indicates an event referencing a document that
	// is not stored.
	ErrUnknownDocument = errors.New("document not found for event")
)

// ValidationError marks a failure as terminal: the input is invalid and
// retrying cannot help. The executor fails the stage immediately without
// consuming the retry budget.
type ValidationError struct {
	Err error
}

// NewValidationError wraps err as terminal.
func NewValidationError(err error) *ValidationError {
	return &ValidationError{Err: err}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %v", e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// TransientError marks a failure as retryable: the whole stage attempt
// is abandoned and redelivered with backoff until the retry budget runs
// out.
type TransientError struct {
	Err error
}

// NewTransientError wraps err as retryable.
func NewTransientError(err error) *TransientError {
	return &TransientError{Err: err}
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient: %v", e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether err is marked transient.
func IsRetryable(err error) bool {
	var t *TransientError
	return errors.As(err, &t)
}

// IsValidation reports whether err is marked as terminal validation.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
