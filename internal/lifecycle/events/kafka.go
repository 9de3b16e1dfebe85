package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"

	"caregate/pkg/platform/audit"
)

// Producer is the subset of *kgo.Client the Kafka sink needs.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// KafkaSink publishes each event as one JSON record keyed by entity id, so all
// events about one provider land on one partition in order.
type KafkaSink struct {
	producer Producer
	topic    string
}

// NewKafkaSink builds a sink. An empty topic uses the client's default topic.
func NewKafkaSink(producer Producer, topic string) *KafkaSink {
	return &KafkaSink{producer: producer, topic: topic}
}

func (s *KafkaSink) Emit(ctx context.Context, eventType audit.EventType, payload audit.Event) error {
	payload.Type = eventType
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", eventType, err)
	}
	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(payload.EntityID),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "event_type", Value: []byte(eventType)},
			{Key: "category", Value: []byte(payload.Category)},
			{Key: "severity", Value: []byte(payload.Severity)},
		},
	}
	if err := s.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce %s event: %w", eventType, err)
	}
	return nil
}
