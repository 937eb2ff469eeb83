package ports

import (
	"context"
	"time"

	"github.com/lyvo/session-gateway/internal/core/domain"
)

// KeyValueStore is device-scoped client storage. Every mutation names the tab
// that performed it so change notifications can skip the writer.
type KeyValueStore interface {
	Get(ctx context.Context, deviceID, key string) (string, bool, error)
	// SetMany writes all pairs atomically.
	SetMany(ctx context.Context, deviceID, originTab string, pairs map[string]string) error
	Delete(ctx context.Context, deviceID, originTab string, keys ...string) error
}

// SessionReader is the read side every guard depends on.
type SessionReader interface {
	// Read never fails: unreadable or corrupt records read as logged out.
	Read(ctx context.Context, deviceID string) domain.SessionRecord
}

// SessionStore is the only component allowed to touch the session keys.
type SessionStore interface {
	SessionReader
	Write(ctx context.Context, deviceID, originTab, token string, user *domain.UserProfile) error
	Clear(ctx context.Context, deviceID, originTab string) error
	// TouchLastSeen records a visit and reports whether it was the first
	// one for userID on this device.
	TouchLastSeen(ctx context.Context, deviceID, originTab, userID string, at time.Time) (bool, error)
}
