package auth

import (
	"context"

	"github.com/linkuphq/linkup/internal/models"
)

// Authenticator defines the interface for authentication implementations.
// This abstraction allows swapping between different auth methods (password, passkeys, OAuth, etc.)
// without changing the handler layer code.
type Authenticator interface {
	// Register creates a new user account with the given username, email and
	// credential. The credential format depends on the implementation.
	// Returns the created user or an error if registration fails.
	Register(ctx context.Context, username, email, credential string) (*models.User, error)

	// Authenticate verifies the user's credentials and returns the user if successful.
	// Returns an error if authentication fails.
	Authenticate(ctx context.Context, login, credential string) (*models.User, error)

	// ChangePassword swaps the user's credential after verifying the
	// current one.
	ChangePassword(ctx context.Context, userID, current, updated string) error
}

var _ Authenticator = (*PasswordAuthenticator)(nil)
