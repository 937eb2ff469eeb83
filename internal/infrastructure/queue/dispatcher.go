package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/lyvo/session-gateway/internal/core/domain"
	"github.com/lyvo/session-gateway/internal/core/ports"
	"github.com/lyvo/session-gateway/internal/pkg/metrics"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// Dispatcher routes session events to a fixed set of workers using consistent
// hashing on the device id, guaranteeing per-device event ordering.
type Dispatcher struct {
	workers []chan domain.SessionEvent
	sink    ports.EventSink
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, sink ports.EventSink, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.SessionEvent, numWorkers),
		sink:    sink,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.SessionEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue sends an event to the worker responsible for its device.
// The call is non-blocking up to channelBuffer capacity; past that it waits
// until the worker catches up or ctx is done, in which case the event is
// dropped and ctx.Err() returned.
func (d *Dispatcher) Enqueue(ctx context.Context, event domain.SessionEvent) error {
	i := d.shardIndex(event.DeviceID)
	select {
	case d.workers[i] <- event:
		d.reportDepth(i)
		return nil
	case <-ctx.Done():
		d.log.Warn().
			Str("device_id", event.DeviceID).
			Str("key", event.Key).
			Int("worker_id", i).
			Msg("dispatcher stopped, event dropped")
		return ctx.Err()
	}
}

// EnqueueBatch enqueues multiple events preserving per-device ordering. It
// stops at the first event that cannot be enqueued.
func (d *Dispatcher) EnqueueBatch(ctx context.Context, events []domain.SessionEvent) error {
	for _, e := range events {
		if err := d.Enqueue(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

// shardIndex maps a device id deterministically to a worker index.
func (d *Dispatcher) shardIndex(deviceID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(deviceID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) reportDepth(i int) {
	metrics.EventQueueDepth.WithLabelValues(strconv.Itoa(i)).Set(float64(len(d.workers[i])))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.SessionEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			d.reportDepth(id)
			if err := d.sink.Emit(ctx, event); err != nil {
				d.log.Error().Err(err).
					Str("device_id", event.DeviceID).
					Str("key", event.Key).
					Int("worker_id", id).
					Msg("event delivery failed")
			}
		}
	}
}
