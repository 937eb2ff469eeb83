package service

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/lyvo/session-gateway/internal/core/domain"
	"github.com/lyvo/session-gateway/internal/core/ports"
	"github.com/lyvo/session-gateway/internal/pkg/metrics"
)

// ErrBusClosed is returned by Emit after Close.
var ErrBusClosed = errors.New("event bus closed")

const subscriberBuffer = 8

type subscriber struct {
	tabID string
	ch    chan domain.SessionEvent
}

// EventBus fans session events out to the tabs subscribed on a device.
//
// Delivery rules:
//   - session_logged_in / session_logged_out reach the tab that emitted them,
//     or every tab of the device when the event has no tab.
//   - storage reaches every tab of the device except the writer.
//
// Fan-out never blocks. A subscriber whose buffer is full already has a
// pending invalidation, so the new event is dropped.
type EventBus struct {
	log zerolog.Logger

	mu     sync.Mutex
	subs   map[string]map[*subscriber]struct{}
	closed bool
}

// NewEventBus returns an empty bus.
func NewEventBus(log zerolog.Logger) *EventBus {
	return &EventBus{
		log:  log,
		subs: make(map[string]map[*subscriber]struct{}),
	}
}

func (b *EventBus) Subscribe(deviceID, tabID string) (func(), <-chan domain.SessionEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := &subscriber{tabID: tabID, ch: make(chan domain.SessionEvent, subscriberBuffer)}
	if b.closed {
		close(sub.ch)
		return func() {}, sub.ch
	}
	if b.subs[deviceID] == nil {
		b.subs[deviceID] = make(map[*subscriber]struct{})
	}
	b.subs[deviceID][sub] = struct{}{}

	unsub := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subscribers := b.subs[deviceID]
		if subscribers == nil {
			return
		}
		if _, ok := subscribers[sub]; !ok {
			return
		}
		delete(subscribers, sub)
		drainAndClose(sub.ch)
		if len(subscribers) == 0 {
			delete(b.subs, deviceID)
		}
	}
	return unsub, sub.ch
}

// Emit delivers event to the matching subscribers of event.DeviceID.
func (b *EventBus) Emit(ctx context.Context, event domain.SessionEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrBusClosed
	}

	metrics.SessionEventsTotal.WithLabelValues(string(event.Kind)).Inc()

	for sub := range b.subs[event.DeviceID] {
		if !delivers(event, sub.tabID) {
			continue
		}
		select {
		case sub.ch <- event:
		default:
			b.log.Debug().
				Str("device_id", event.DeviceID).
				Str("tab_id", sub.tabID).
				Str("kind", string(event.Kind)).
				Msg("subscriber busy, event coalesced")
		}
	}
	return nil
}

// Close closes every subscription. Later Emits fail with ErrBusClosed.
func (b *EventBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for deviceID, subscribers := range b.subs {
		for sub := range subscribers {
			drainAndClose(sub.ch)
		}
		delete(b.subs, deviceID)
	}
}

// Subscribers returns the number of live subscriptions on deviceID.
func (b *EventBus) Subscribers(deviceID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[deviceID])
}

func delivers(event domain.SessionEvent, tabID string) bool {
	if event.Kind == domain.EventStorageChanged {
		return event.TabID == "" || event.TabID != tabID
	}
	return event.TabID == "" || event.TabID == tabID
}

// drainAndClose removes buffered events before closing so receivers observe
// the close immediately.
func drainAndClose(ch chan domain.SessionEvent) {
	for {
		select {
		case <-ch:
		default:
			close(ch)
			return
		}
	}
}

var _ ports.EventBus = (*EventBus)(nil)
