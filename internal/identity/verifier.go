package identity

import (
	"context"

	"clouddrive/internal/models"
)

// Verifier turns a bearer token into the identity of the caller.
type Verifier interface {
	Verify(ctx context.Context, token string) (*models.Identity, error)
}

// VerifierFunc adapts a function to Verifier.
type VerifierFunc func(ctx context.Context, token string) (*models.Identity, error)

func (f VerifierFunc) Verify(ctx context.Context, token string) (*models.Identity, error) {
	return f(ctx, token)
}
