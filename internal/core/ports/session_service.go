package ports

import (
	"context"

	"github.com/lyvo/session-gateway/internal/core/domain"
)

// Origin identifies the device and tab behind a session mutation.
type Origin struct {
	DeviceID string
	TabID    string
}

// LoginResult is returned after a session is written.
type LoginResult struct {
	Token       string
	User        *domain.UserProfile
	Destination string
	// FirstVisit is true the first time this user logs in on the device.
	FirstVisit bool
}

// LogoutResult tells the caller where to go once the session is gone.
type LogoutResult struct {
	Destination string
	Reload      bool
}

// SessionService owns every write-then-emit sequence.
type SessionService interface {
	Login(ctx context.Context, o Origin, email, password string) (*LoginResult, error)
	Register(ctx context.Context, o Origin, in RegisterInput) (*LoginResult, error)
	Logout(ctx context.Context, o Origin) (*LogoutResult, error)
	Refresh(ctx context.Context, o Origin) (domain.SessionRecord, error)
	CompleteOnboarding(ctx context.Context, o Origin) (domain.SessionRecord, error)
	UpdateProfile(ctx context.Context, o Origin, fields domain.ProfileFields) (domain.SessionRecord, error)
	Current(ctx context.Context, deviceID string) domain.SessionRecord
}
