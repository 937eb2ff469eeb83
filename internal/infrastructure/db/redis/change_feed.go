package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/lyvo/session-gateway/internal/core/domain"
)

// Enqueuer accepts events for ordered delivery.
type Enqueuer interface {
	EnqueueBatch(ctx context.Context, events []domain.SessionEvent) error
}

// ChangeFeed turns change notices published by any KVStore, on any process,
// into storage events.
type ChangeFeed struct {
	client  redis.UniversalClient
	channel string
	queue   Enqueuer
	log     zerolog.Logger
}

func NewChangeFeed(client redis.UniversalClient, prefix string, queue Enqueuer, log zerolog.Logger) *ChangeFeed {
	return &ChangeFeed{
		client:  client,
		channel: StorageChannel(prefix),
		queue:   queue,
		log:     log,
	}
}

// Run subscribes and blocks until ctx is cancelled. One storage event is
// enqueued per changed key.
func (f *ChangeFeed) Run(ctx context.Context) error {
	sub := f.client.Subscribe(ctx, f.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("subscribe %s: %w", f.channel, err)
	}
	f.log.Info().Str("channel", f.channel).Msg("change feed subscribed")

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			if err := f.handle(ctx, msg.Payload); err != nil {
				return nil
			}
		}
	}
}

// handle only fails when ctx is done and the events could not be queued.
func (f *ChangeFeed) handle(ctx context.Context, payload string) error {
	var notice ChangeNotice
	if err := json.Unmarshal([]byte(payload), &notice); err != nil {
		f.log.Warn().Err(err).Msg("malformed change notice skipped")
		return nil
	}
	if notice.DeviceID == "" {
		return nil
	}

	events := make([]domain.SessionEvent, 0, len(notice.Keys))
	for _, k := range notice.Keys {
		events = append(events, domain.SessionEvent{
			Kind:     domain.EventStorageChanged,
			DeviceID: notice.DeviceID,
			TabID:    notice.TabID,
			Key:      k,
			At:       notice.At,
		})
	}
	return f.queue.EnqueueBatch(ctx, events)
}
