package ports

import (
	"context"

	"github.com/lyvo/session-gateway/internal/core/domain"
)

// RegisterInput carries a signup request.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
}

// AuthService is the backend the session gateway logs users in against.
// Every method that returns a user returns the full, current account.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (string, *domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	Profile(ctx context.Context, userID string) (*domain.User, error)
	CompleteOnboarding(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, fields domain.ProfileFields) (*domain.User, error)
}
