package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"caregate/internal/lifecycle/metrics"
	"caregate/pkg/platform/audit"
)

type BufferedSinkSuite struct {
	suite.Suite
	downstream *MemorySink
	metrics    *metrics.Metrics
}

func TestBufferedSinkSuite(t *testing.T) {
	suite.Run(t, new(BufferedSinkSuite))
}

func (s *BufferedSinkSuite) SetupTest() {
	s.downstream = NewMemorySink()
	s.metrics = metrics.NewWith(prometheus.NewRegistry())
}

func (s *BufferedSinkSuite) newSink(opts ...BufferedOption) *BufferedSink {
	opts = append([]BufferedOption{WithBufferedMetrics(s.metrics), WithFlushInterval(time.Hour)}, opts...)
	return NewBufferedSink(s.downstream, "test", opts...)
}

func event(id string) audit.Event {
	return audit.Event{EntityType: "provider", EntityID: id}
}

func (s *BufferedSinkSuite) TestEmitDoesNotDeliverInline() {
	sink := s.newSink()
	s.Require().NoError(sink.Emit(context.Background(), audit.EventProviderSuspended, event("p-1")))

	s.Empty(s.downstream.Events())
	s.Equal(1, sink.Pending())
}

func (s *BufferedSinkSuite) TestFlushDeliversInOrder() {
	ctx := context.Background()
	sink := s.newSink()
	s.Require().NoError(sink.Emit(ctx, audit.EventProviderSuspended, event("p-1")))
	s.Require().NoError(sink.Emit(ctx, audit.EventProviderBlacklisted, event("p-1")))

	s.Equal(2, sink.Flush(ctx))
	s.Equal([]audit.EventType{audit.EventProviderSuspended, audit.EventProviderBlacklisted}, s.downstream.Types())
	s.Equal(0, sink.Pending())
	s.InDelta(2, promtest.ToFloat64(s.metrics.EventDeliveries.WithLabelValues("test", "ok")), 0)
}

func (s *BufferedSinkSuite) TestOverflowDropsOldest() {
	ctx := context.Background()
	sink := s.newSink(WithBufferSize(2))
	for _, id := range []string{"p-1", "p-2", "p-3"} {
		s.Require().NoError(sink.Emit(ctx, audit.EventProviderSuspended, event(id)))
	}

	sink.Flush(ctx)
	events := s.downstream.Events()
	s.Require().Len(events, 2)
	s.Equal("p-2", events[0].EntityID)
	s.Equal("p-3", events[1].EntityID)
	s.InDelta(1, promtest.ToFloat64(s.metrics.EventsDropped), 0)
}

func (s *BufferedSinkSuite) TestFailingSinkKeepsEventsUntilRecovery() {
	ctx := context.Background()
	sink := s.newSink(
		WithCircuitBreaker(NewCircuitBreaker(1, time.Millisecond)),
		WithMaxAttempts(10),
	)
	s.downstream.FailWith(errors.New("broker down"))
	s.Require().NoError(sink.Emit(ctx, audit.EventProviderSuspended, event("p-1")))

	s.Equal(0, sink.Flush(ctx))
	s.Equal(1, sink.Pending())
	s.InDelta(1, promtest.ToFloat64(s.metrics.SinkCircuitOpen), 0)

	s.downstream.FailWith(nil)
	time.Sleep(5 * time.Millisecond)
	s.Equal(1, sink.Flush(ctx))
	s.Equal(0, sink.Pending())
	s.InDelta(0, promtest.ToFloat64(s.metrics.SinkCircuitOpen), 0)
}

func (s *BufferedSinkSuite) TestPoisonEventDroppedAfterMaxAttempts() {
	ctx := context.Background()
	sink := s.newSink(
		WithCircuitBreaker(NewCircuitBreaker(100, time.Minute)),
		WithMaxAttempts(2),
	)
	s.downstream.FailWith(errors.New("rejected"))
	s.Require().NoError(sink.Emit(ctx, audit.EventProviderSuspended, event("p-1")))

	sink.Flush(ctx)
	s.Equal(0, sink.Pending())
	s.Equal(int64(1), sink.Dropped())
	s.InDelta(2, promtest.ToFloat64(s.metrics.EventDeliveries.WithLabelValues("test", "error")), 0)
}

// echoSink records deliveries and, on the first one, emits a follow-up event
// back into the buffered sink while delivery is still in flight.
type echoSink struct {
	delivered []string
	into      *BufferedSink
	once      sync.Once
}

func (e *echoSink) Emit(ctx context.Context, eventType audit.EventType, payload audit.Event) error {
	e.delivered = append(e.delivered, payload.EntityID)
	e.once.Do(func() {
		_ = e.into.Emit(ctx, audit.EventProviderBlacklisted, event("p-2"))
	})
	return nil
}

func (s *BufferedSinkSuite) TestEventEnqueuedDuringDeliveryIsNotLost() {
	ctx := context.Background()
	echo := &echoSink{}
	sink := NewBufferedSink(echo, "test", WithBufferSize(1), WithFlushInterval(time.Hour), WithBufferedMetrics(s.metrics))
	echo.into = sink
	s.Require().NoError(sink.Emit(ctx, audit.EventProviderSuspended, event("p-1")))

	sink.Flush(ctx)
	s.Equal([]string{"p-1", "p-2"}, echo.delivered)
	s.Equal(0, sink.Pending())
}

func TestBufferedSinkRunDrainsOnShutdown(t *testing.T) {
	downstream := NewMemorySink()
	sink := NewBufferedSink(downstream, "test", WithFlushInterval(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	var runErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		runErr = sink.Run(ctx)
	}()

	require.NoError(t, sink.Emit(ctx, audit.EventCandidateRegistered, event("c-1")))
	require.Eventually(t, func() bool { return len(downstream.Events()) == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	wg.Wait()
	assert.ErrorIs(t, runErr, context.Canceled)
}
