package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"caregate/pkg/platform/audit"
)

type fakeProducer struct {
	records []*kgo.Record
	err     error
}

func (p *fakeProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	out := make(kgo.ProduceResults, 0, len(rs))
	for _, r := range rs {
		if p.err == nil {
			p.records = append(p.records, r)
		}
		out = append(out, kgo.ProduceResult{Record: r, Err: p.err})
	}
	return out
}

func TestKafkaSink(t *testing.T) {
	ctx := context.Background()
	payload := audit.Event{
		EntityType: "provider",
		EntityID:   "p-1",
		Severity:   audit.SeverityCritical,
		Category:   audit.CategorySecurity,
		Reason:     "suspension threshold",
	}

	t.Run("publishes keyed json record with headers", func(t *testing.T) {
		producer := &fakeProducer{}
		sink := NewKafkaSink(producer, "caregate.lifecycle")

		require.NoError(t, sink.Emit(ctx, audit.EventProviderBlacklisted, payload))
		require.Len(t, producer.records, 1)

		record := producer.records[0]
		assert.Equal(t, "caregate.lifecycle", record.Topic)
		assert.Equal(t, []byte("p-1"), record.Key)

		var decoded audit.Event
		require.NoError(t, json.Unmarshal(record.Value, &decoded))
		assert.Equal(t, audit.EventProviderBlacklisted, decoded.Type)
		assert.Equal(t, "suspension threshold", decoded.Reason)

		headers := map[string]string{}
		for _, h := range record.Headers {
			headers[h.Key] = string(h.Value)
		}
		assert.Equal(t, "provider_blacklisted", headers["event_type"])
		assert.Equal(t, "critical", headers["severity"])
	})

	t.Run("surfaces broker errors", func(t *testing.T) {
		producer := &fakeProducer{err: kerr.LeaderNotAvailable}
		sink := NewKafkaSink(producer, "caregate.lifecycle")

		err := sink.Emit(ctx, audit.EventProviderBlacklisted, payload)
		require.Error(t, err)
		assert.ErrorIs(t, err, kerr.LeaderNotAvailable)
	})
}

func TestLogSinkLevelsBySeverity(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	sink := NewLogSink(logger)

	require.NoError(t, sink.Emit(context.Background(), audit.EventProviderBlacklisted, audit.Event{
		EntityType: "provider",
		EntityID:   "p-1",
		Severity:   audit.SeverityCritical,
	}))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "ERROR", line["level"])
	assert.Equal(t, "provider_blacklisted", line["event_type"])
	assert.Equal(t, "p-1", line["entity_id"])
}

func TestFanoutSinkJoinsErrors(t *testing.T) {
	ok := NewMemorySink()
	failing := NewMemorySink()
	failing.FailWith(errors.New("down"))

	err := FanoutSink{failing, ok}.Emit(context.Background(), audit.EventProviderDeleted, audit.Event{EntityID: "p-1"})
	require.Error(t, err)
	assert.Len(t, ok.Events(), 1, "a failing sink must not starve the others")
}
