package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/shalom-dev/support-agent/internal/repository"
)

// userNotFound is the literal fragment substituted wherever an account
// lookup comes up empty. A missing account must never block the agent
// from answering generically.
const userNotFound = "User not found"

// assembleAccountContext builds the dynamic system-prompt fragment
// from the account row. Absence of the account is absorbed into the
// sentinel; only transport failures surface as errors.
func assembleAccountContext(ctx context.Context, deps *Dependencies) (string, error) {
	user, err := deps.Accounts.GetByID(ctx, deps.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Sprintf("User name is %q.", userNotFound), nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load account context: %w", err)
	}

	return fmt.Sprintf("User name is %q.", user.Name), nil
}
