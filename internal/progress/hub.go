package progress

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Config controls buffering and batching for the Hub. Zero values take the
// defaults below, sized for a batch CLI rather than a long-running service.
type Config struct {
	BufferSize     int
	MaxBatchEvents int
	MaxBatchWait   time.Duration
	SinkTimeout    time.Duration
	Logger         *zap.Logger
}

const (
	defaultBufferSize     = 1024
	defaultMaxBatchEvents = 256
	defaultMaxBatchWait   = 500 * time.Millisecond
	defaultSinkTimeout    = 10 * time.Second
)

func (c Config) withDefaults() Config {
	if c.BufferSize <= 0 {
		c.BufferSize = defaultBufferSize
	}
	if c.MaxBatchEvents <= 0 {
		c.MaxBatchEvents = defaultMaxBatchEvents
	}
	if c.MaxBatchWait <= 0 {
		c.MaxBatchWait = defaultMaxBatchWait
	}
	if c.SinkTimeout <= 0 {
		c.SinkTimeout = defaultSinkTimeout
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return c
}

// Hub collects events from pipeline workers and hands them to sinks in
// batches. Emit never blocks; a full buffer drops the event and counts it.
type Hub struct {
	cfg    Config
	sinks  []Sink
	events chan Event
	stop   chan struct{}
	done   chan struct{}

	dropped atomic.Int64
	closed  atomic.Bool
	once    sync.Once
}

// NewHub starts the dispatch goroutine; the hub accepts events immediately.
func NewHub(cfg Config, sinks ...Sink) *Hub {
	h := &Hub{
		cfg:   cfg.withDefaults(),
		sinks: append([]Sink(nil), sinks...),
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	h.events = make(chan Event, h.cfg.BufferSize)
	go h.dispatch()
	return h
}

// Emit enqueues one event. Invalid events are discarded with a debug log so
// a bad emitter cannot poison the sinks.
func (h *Hub) Emit(evt Event) {
	if h == nil || h.closed.Load() {
		return
	}
	if err := evt.Validate(); err != nil {
		h.cfg.Logger.Debug("discarding invalid progress event", zap.Error(err))
		return
	}
	select {
	case h.events <- evt:
	default:
		h.dropped.Add(1)
	}
}

// Close stops the dispatcher, flushes everything still buffered, closes the
// sinks, and waits for all of that bounded by ctx. Safe to call repeatedly.
func (h *Hub) Close(ctx context.Context) error {
	if h == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	h.once.Do(func() {
		h.closed.Store(true)
		close(h.stop)
	})
	select {
	case <-h.done:
	case <-ctx.Done():
		return fmt.Errorf("progress hub close wait: %w", ctx.Err())
	}
	if n := h.dropped.Load(); n > 0 {
		h.cfg.Logger.Warn("progress events dropped due to backpressure", zap.Int64("dropped", n))
	}
	for _, sink := range h.sinks {
		if err := sink.Close(ctx); err != nil {
			h.cfg.Logger.Warn("progress sink close failed", zap.Error(err))
		}
	}
	return nil
}

// dispatch owns the pending batch. A ticker bounds how long a small batch
// can sit; a full batch flushes immediately.
func (h *Hub) dispatch() {
	defer close(h.done)

	pending := make([]Event, 0, h.cfg.MaxBatchEvents)
	ticker := time.NewTicker(h.cfg.MaxBatchWait)
	defer ticker.Stop()

	for {
		select {
		case evt := <-h.events:
			pending = append(pending, evt)
			if len(pending) >= h.cfg.MaxBatchEvents {
				pending = h.deliver(pending)
			}
		case <-ticker.C:
			pending = h.deliver(pending)
		case <-h.stop:
			// Whatever workers managed to emit before stop is still in
			// the channel; take it all before the final flush.
			for {
				select {
				case evt := <-h.events:
					pending = append(pending, evt)
				default:
					h.deliver(pending)
					return
				}
			}
		}
	}
}

// deliver hands one batch to every sink, each under its own timeout, and
// returns the reusable empty batch.
func (h *Hub) deliver(pending []Event) []Event {
	if len(pending) == 0 {
		return pending
	}
	batch := append([]Event(nil), pending...)
	for _, sink := range h.sinks {
		ctx, cancel := context.WithTimeout(context.Background(), h.cfg.SinkTimeout)
		err := sink.Consume(ctx, batch)
		cancel()
		if err != nil {
			h.cfg.Logger.Warn("progress sink consume failed", zap.Error(err))
		}
	}
	return pending[:0]
}
