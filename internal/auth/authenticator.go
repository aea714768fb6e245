package auth

import (
	"context"

	"github.com/mmynk/splitchat/internal/models"
)

// Authenticator abstracts how accounts are created and verified so the
// HTTP layer does not care whether credentials are passwords, OAuth
// tokens or something else.
type Authenticator interface {
	// Register creates a new account. The credential format depends on
	// the implementation.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate verifies the credential and returns the user on success.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)
}
