package events

import (
	"context"
	"log/slog"
	"time"

	"caregate/internal/lifecycle/metrics"
	"caregate/internal/lifecycle/ports"
	"caregate/pkg/platform/audit"
)

const (
	defaultFlushInterval = 500 * time.Millisecond
	defaultMaxAttempts   = 3
	drainTimeout         = 5 * time.Second
)

// BufferedSink accepts events without blocking and delivers them to the next
// sink from a background worker, in order. A failing sink opens the circuit
// breaker; events wait in the ring buffer, and the oldest are dropped once it
// is full. An event that fails maxAttempts times in a row is dropped.
type BufferedSink struct {
	next        ports.EventSink
	name        string
	buffer      *RingBuffer
	breaker     *CircuitBreaker
	interval    time.Duration
	maxAttempts int
	attempts    int
	attemptSeq  uint64
	wake        chan struct{}
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

type BufferedOption func(*BufferedSink)

func WithBufferSize(size int) BufferedOption {
	return func(s *BufferedSink) {
		s.buffer = NewRingBuffer(size)
	}
}

func WithFlushInterval(interval time.Duration) BufferedOption {
	return func(s *BufferedSink) {
		if interval > 0 {
			s.interval = interval
		}
	}
}

func WithCircuitBreaker(cb *CircuitBreaker) BufferedOption {
	return func(s *BufferedSink) {
		s.breaker = cb
	}
}

func WithMaxAttempts(n int) BufferedOption {
	return func(s *BufferedSink) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

func WithBufferedLogger(logger *slog.Logger) BufferedOption {
	return func(s *BufferedSink) {
		s.logger = logger
	}
}

func WithBufferedMetrics(m *metrics.Metrics) BufferedOption {
	return func(s *BufferedSink) {
		s.metrics = m
	}
}

// NewBufferedSink wraps next. name labels delivery metrics.
func NewBufferedSink(next ports.EventSink, name string, opts ...BufferedOption) *BufferedSink {
	s := &BufferedSink{
		next:        next,
		name:        name,
		buffer:      NewRingBuffer(0),
		breaker:     NewCircuitBreaker(0, 0),
		interval:    defaultFlushInterval,
		maxAttempts: defaultMaxAttempts,
		wake:        make(chan struct{}, 1),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Emit buffers the event and nudges the worker. It never fails.
func (s *BufferedSink) Emit(_ context.Context, eventType audit.EventType, payload audit.Event) error {
	payload.Type = eventType
	if !s.buffer.Enqueue(payload) {
		s.metrics.IncrementEventsDropped()
	}
	select {
	case s.wake <- struct{}{}:
	default:
	}
	return nil
}

// Run delivers buffered events until ctx is cancelled, then makes one last
// bounded attempt to drain the buffer.
func (s *BufferedSink) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Flush(ctx)
		case <-s.wake:
			s.Flush(ctx)
		case <-ctx.Done():
			drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), drainTimeout)
			s.Flush(drainCtx)
			cancel()
			if n := s.buffer.Len(); n > 0 {
				s.logger.Warn("event buffer not drained at shutdown", "pending", n)
			}
			return ctx.Err()
		}
	}
}

// Flush delivers buffered events in order until the buffer is empty, the
// breaker opens, or ctx ends. Returns how many were delivered.
func (s *BufferedSink) Flush(ctx context.Context) int {
	delivered := 0
	for ctx.Err() == nil {
		if !s.breaker.Allow() {
			return delivered
		}
		s.metrics.SetSinkCircuitState(false)

		event, seq, ok := s.buffer.Peek()
		if !ok {
			return delivered
		}
		if seq != s.attemptSeq {
			s.attemptSeq = seq
			s.attempts = 0
		}

		err := s.next.Emit(ctx, event.Type, event)
		s.metrics.RecordEventDelivery(s.name, err)
		if err == nil {
			s.breaker.RecordSuccess()
			// Overflow during Emit may already have evicted this event.
			s.buffer.Pop(seq)
			s.attempts = 0
			delivered++
			continue
		}

		s.attempts++
		open := s.breaker.RecordFailure()
		s.metrics.SetSinkCircuitState(open)
		s.logger.WarnContext(ctx, "event delivery failed",
			"sink", s.name,
			"event", string(event.Type),
			"attempt", s.attempts,
			"error", err,
		)
		if s.attempts >= s.maxAttempts {
			if s.buffer.Drop(seq) {
				s.metrics.IncrementEventsDropped()
			}
			s.attempts = 0
			s.logger.ErrorContext(ctx, "dropping undeliverable event", "sink", s.name, "event", string(event.Type))
		}
		if open {
			return delivered
		}
	}
	return delivered
}

// Pending returns how many events wait for delivery.
func (s *BufferedSink) Pending() int {
	return s.buffer.Len()
}

// Dropped returns how many events were lost.
func (s *BufferedSink) Dropped() int64 {
	return s.buffer.Dropped()
}
