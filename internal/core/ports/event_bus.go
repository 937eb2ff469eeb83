package ports

import (
	"context"

	"github.com/lyvo/session-gateway/internal/core/domain"
)

// EventSink accepts session events for delivery.
type EventSink interface {
	Emit(ctx context.Context, event domain.SessionEvent) error
}

// EventBus is the session synchronization channel. Subscribers receive
// invalidation signals only and must re-read the SessionStore on receipt.
type EventBus interface {
	EventSink
	// Subscribe registers tabID on deviceID. The returned func unsubscribes
	// and closes the channel.
	Subscribe(deviceID, tabID string) (func(), <-chan domain.SessionEvent)
}
