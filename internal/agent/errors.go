package agent

import (
	"errors"
	"fmt"
)

// ErrRetryBudgetExhausted is returned when the model kept producing
// answers that fail the result contract past the configured retry
// budget. The wrapped message carries the last rejection reason.
var ErrRetryBudgetExhausted = errors.New("retry budget exhausted")

// ValidationError reports a terminal model answer that violates the
// result contract. It is recoverable: the loop feeds Reason back to
// the model and retries, consuming one unit of retry budget.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid support result: %s", e.Reason)
}
