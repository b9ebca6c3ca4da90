package status

import "errors"

var (
	// ErrUnknownStage is returned when a method names a stage outside the
	// manager's configured order.
	ErrUnknownStage = errors.New("stage not in configured order")

	// ErrInvalidTransition is returned when a method is called in a state
	// it cannot legally act on. These are sequencing bugs in the caller;
	// the manager enforces them, it does not self-correct them.
	ErrInvalidTransition = errors.New("invalid stage transition")

	// ErrEmptyStageOrder is returned when a manager is built without stages.
	ErrEmptyStageOrder = errors.New("stage order cannot be empty")

	// ErrDuplicateStage is returned when a stage appears twice in an order.
	ErrDuplicateStage = errors.New("duplicate stage in order")
)
