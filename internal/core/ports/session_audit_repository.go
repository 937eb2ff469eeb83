package ports

import (
	"context"

	"github.com/lyvo/session-gateway/internal/core/domain"
)

// SessionAuditRepository persists login/logout history.
type SessionAuditRepository interface {
	// InsertSessionEvent appends an entry to the session_events collection.
	InsertSessionEvent(ctx context.Context, entry domain.SessionAuditEntry) error
}
