// Package kafka builds the franz-go client used for outbound lifecycle events.
package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"caregate/internal/platform/config"
)

// New connects a producer client to the configured brokers and makes sure the
// lifecycle topic exists. Returns nil when no brokers are configured.
func New(ctx context.Context, cfg config.KafkaConfig, logger *slog.Logger) (*kgo.Client, error) {
	if len(cfg.Brokers) == 0 {
		return nil, nil
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.Topic),
		kgo.ProducerLinger(20*time.Millisecond),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.RecordRetries(5),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("kafka ping failed: %w", err)
	}

	if err := EnsureTopic(ctx, client, cfg.Topic, cfg.Partitions, cfg.ReplicationFactor); err != nil {
		client.Close()
		return nil, err
	}

	if logger != nil {
		logger.InfoContext(ctx, "kafka client ready", "brokers", cfg.Brokers, "topic", cfg.Topic)
	}
	return client, nil
}

// EnsureTopic creates topic if it does not already exist.
func EnsureTopic(ctx context.Context, client *kgo.Client, topic string, partitions int32, replicationFactor int16) error {
	adm := kadm.NewClient(client)
	resp, err := adm.CreateTopics(ctx, partitions, replicationFactor, nil, topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}
	for _, r := range resp.Sorted() {
		if r.Err != nil && !errors.Is(r.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", r.Topic, r.Err)
		}
	}
	return nil
}
