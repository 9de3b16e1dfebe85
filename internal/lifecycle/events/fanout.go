package events

import (
	"context"
	"errors"

	"caregate/internal/lifecycle/ports"
	"caregate/pkg/platform/audit"
)

// FanoutSink emits to every sink and joins their errors.
type FanoutSink []ports.EventSink

func (f FanoutSink) Emit(ctx context.Context, eventType audit.EventType, payload audit.Event) error {
	var errs []error
	for _, sink := range f {
		if err := sink.Emit(ctx, eventType, payload); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
