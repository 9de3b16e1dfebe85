package service

import (
	"context"

	"caregate/pkg/attrs"
	"caregate/pkg/platform/audit"
	"caregate/pkg/requestcontext"
)

type pendingEvent struct {
	eventType audit.EventType
	severity  audit.Severity
	attrs     []any
	details   map[string]string
}

// queue holds an event until the cascade's transaction commits. attributes is
// a key/value list; entity_type, entity_id, display_name, email and reason are
// lifted into the event, everything is logged.
func (c *cascade) queue(eventType audit.EventType, severity audit.Severity, details map[string]string, attributes ...any) {
	c.pending = append(c.pending, pendingEvent{
		eventType: eventType,
		severity:  severity,
		attrs:     attributes,
		details:   details,
	})
}

func (s *Service) flush(ctx context.Context, c *cascade) {
	for _, p := range c.pending {
		s.logAudit(ctx, p)
		c.outcome.Queue(p.eventType)
	}
	c.pending = nil
}

// logAudit writes the audit log line and hands the event to the sink. Sink
// failures are logged and swallowed.
func (s *Service) logAudit(ctx context.Context, p pendingEvent) {
	requestID := requestcontext.RequestID(ctx)
	actorID := requestcontext.ActorID(ctx)

	attributes := append([]any{}, p.attrs...)
	if requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	args := append(attributes, "actor_id", actorID, "severity", string(p.severity), "event", string(p.eventType), "log_type", "audit")
	if s.logger != nil {
		s.logger.InfoContext(ctx, string(p.eventType), args...)
	}

	if s.sink == nil {
		return
	}
	lifted := attrs.Lift(p.attrs, "entity_type", "entity_id", "display_name", "email", "reason")
	event := audit.Event{
		Severity:    p.severity,
		EntityType:  lifted["entity_type"],
		EntityID:    lifted["entity_id"],
		DisplayName: lifted["display_name"],
		Email:       lifted["email"],
		Reason:      lifted["reason"],
		ActorID:     actorID,
		RequestID:   requestID,
		Details:     p.details,
	}.Normalize(p.eventType, requestcontext.Now(ctx))

	if err := s.sink.Emit(ctx, p.eventType, event); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to emit lifecycle event",
			"event", string(p.eventType),
			"error", err,
		)
	}
}
