package events

import (
	"context"
	"log/slog"

	"caregate/pkg/platform/audit"
)

// LogSink writes events to a structured logger. It is the fallback when no
// broker is configured.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Emit(ctx context.Context, eventType audit.EventType, payload audit.Event) error {
	level := slog.LevelInfo
	switch payload.Severity {
	case audit.SeverityWarning:
		level = slog.LevelWarn
	case audit.SeverityCritical:
		level = slog.LevelError
	}
	s.logger.Log(ctx, level, "lifecycle event",
		"event_type", string(eventType),
		"category", string(payload.Category),
		"entity_type", payload.EntityType,
		"entity_id", payload.EntityID,
		"actor_id", payload.ActorID,
		"request_id", payload.RequestID,
		"details", payload.Details,
	)
	return nil
}
