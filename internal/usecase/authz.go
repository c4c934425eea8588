package usecase

import (
	"context"

	"github.com/flowdash/flowdash/internal/domain"
)

// authorize resolves the acting user from context and checks the operation
// against the user's role. Every mutating usecase entry point goes through
// this single gate.
func authorize(ctx context.Context, op domain.Operation) (*domain.User, error) {
	user, ok := domain.UserFromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := user.Authorize(op); err != nil {
		return nil, err
	}

	return user, nil
}
