package rejection

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"caregate/internal/lifecycle/models"
)

var incrementDurationMs = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "caregate_rejection_increment_duration_ms",
	Help:    "Latency of rejection counter increments in milliseconds",
	Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
})

const rejectionKeyPrefix = "caregate:rejections:"

// decrementScript lowers a counter by one without going below zero.
var decrementScript = redis.NewScript(`
local n = tonumber(redis.call('GET', KEYS[1]) or '0')
if n > 0 then
	return redis.call('DECR', KEYS[1])
end
return 0
`)

// RedisStore keeps counters in Redis so every instance sees the same totals.
// INCR is atomic, so concurrent rejections never lose an increment.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

type RedisOption func(*RedisStore)

// WithTTL expires a counter after a quiet period. Zero keeps counters forever.
func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) {
		s.ttl = ttl
	}
}

func NewRedis(client *redis.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *RedisStore) Increment(ctx context.Context, email string) (int, error) {
	start := time.Now()
	defer func() {
		incrementDurationMs.Observe(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	key := rejectionKeyPrefix + models.NormalizeEmail(email)
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("increment rejections: %w", err)
	}
	return int(incr.Val()), nil
}

func (s *RedisStore) Decrement(ctx context.Context, email string) error {
	key := rejectionKeyPrefix + models.NormalizeEmail(email)
	if err := decrementScript.Run(ctx, s.client, []string{key}).Err(); err != nil {
		return fmt.Errorf("decrement rejections: %w", err)
	}
	return nil
}

func (s *RedisStore) Count(ctx context.Context, email string) (int, error) {
	n, err := s.client.Get(ctx, rejectionKeyPrefix+models.NormalizeEmail(email)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read rejections: %w", err)
	}
	return n, nil
}
