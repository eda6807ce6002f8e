package experiment

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig marks configuration problems found before any trial runs.
var ErrInvalidConfig = errors.New("invalid experiment config")

// TrialError provides structured context for a failure inside a run.
type TrialError struct {
	Scenario  int    // 1-based scenario index
	Repeat    int    // 1-based repeat index, 0 when the failure is scenario-wide
	Algorithm string // algorithm label, empty when not algorithm-specific
	Op        string // "generate", "route" or "write"
	Cause     error
}

// Error implements the error interface.
func (e *TrialError) Error() string {
	switch {
	case e.Algorithm != "":
		return fmt.Sprintf("%s scenario %d repeat %d %s: %v", e.Op, e.Scenario, e.Repeat, e.Algorithm, e.Cause)
	case e.Repeat != 0:
		return fmt.Sprintf("%s scenario %d repeat %d: %v", e.Op, e.Scenario, e.Repeat, e.Cause)
	default:
		return fmt.Sprintf("%s scenario %d: %v", e.Op, e.Scenario, e.Cause)
	}
}

// Unwrap returns the underlying cause for error chain support.
func (e *TrialError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target error matches this error's cause.
func (e *TrialError) Is(target error) bool {
	if target == nil {
		return false
	}
	return errors.Is(e.Cause, target)
}
