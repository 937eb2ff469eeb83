package ports

import (
	"context"

	"github.com/lyvo/session-gateway/internal/core/domain"
)

// AuthRepository defines the interface for user account persistence.
type AuthRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// Update replaces the mutable account fields of user.ID.
	Update(ctx context.Context, user *domain.User) error
}
