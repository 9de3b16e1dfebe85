package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"caregate/internal/lifecycle/blacklist"
	"caregate/internal/lifecycle/conflict"
	"caregate/internal/lifecycle/events"
	"caregate/internal/lifecycle/ledger"
	lifecyclemetrics "caregate/internal/lifecycle/metrics"
	"caregate/internal/lifecycle/ports"
	"caregate/internal/lifecycle/service"
	blackliststore "caregate/internal/lifecycle/store/blacklist"
	"caregate/internal/lifecycle/store/directory"
	"caregate/internal/lifecycle/store/rejection"
	"caregate/internal/lifecycle/store/suspension"
	"caregate/internal/platform/config"
	"caregate/internal/platform/kafka"
	"caregate/internal/platform/mongo"
	"caregate/internal/platform/postgres"
	"caregate/internal/platform/redis"
	txcontext "caregate/pkg/platform/tx"
)

// app holds the wired lifecycle service and the connections it owns.
type app struct {
	service   *service.Service
	blacklist *blacklist.Service
	buffered  *events.BufferedSink

	db    *sql.DB
	redis *redis.Client
	mongo *mongo.Client
	kafka *kgo.Client

	directoryBackend string
	blacklistBackend string
	rejectionBackend string
	sinkName         string
}

// buildApp connects every configured backend and falls back to in-memory
// stores and a log sink for the ones left unset.
func buildApp(ctx context.Context, cfg *config.Config, log *slog.Logger) (_ *app, err error) {
	a := &app{directoryBackend: "memory", blacklistBackend: "memory", sinkName: "log"}
	defer func() {
		if err != nil {
			a.close(log)
		}
	}()

	if a.db, err = postgres.Open(ctx, cfg.Database, log); err != nil {
		return nil, err
	}
	if a.db != nil {
		if err = postgres.Migrate(ctx, a.db); err != nil {
			return nil, err
		}
	}
	if a.redis, err = redis.New(ctx, cfg.Redis); err != nil {
		return nil, err
	}
	if a.mongo, err = mongo.New(ctx, cfg.Mongo); err != nil {
		return nil, err
	}
	if a.kafka, err = kafka.New(ctx, cfg.Kafka, log); err != nil {
		return nil, err
	}

	m := lifecyclemetrics.New()

	var (
		dirStore        ports.Directory       = directory.NewInMemoryStore()
		suspensionStore ports.SuspensionStore = suspension.NewInMemoryStore()
		blacklistStore  ports.BlacklistStore  = blackliststore.NewInMemoryStore()
		storeTx         ports.StoreTx         = txcontext.NewShardedTx(0)
	)
	if a.db != nil {
		dirStore = directory.NewPostgres(a.db)
		suspensionStore = suspension.NewPostgres(a.db)
		blacklistStore = blackliststore.NewPostgres(a.db)
		storeTx = txcontext.NewPostgresTx(a.db)
		a.directoryBackend, a.blacklistBackend = "postgres", "postgres"
	}
	if a.mongo != nil {
		mongoStore, mErr := blackliststore.NewMongo(ctx, a.mongo.Database(), cfg.Mongo.Collection)
		if mErr != nil {
			return nil, mErr
		}
		blacklistStore = mongoStore
		a.blacklistBackend = "mongo"
	}
	rejections, rejectionBackend := rejectionCounter(a.db, a.redis, cfg.Redis.RejectionTTL)
	a.rejectionBackend = rejectionBackend

	var sink ports.EventSink = events.NewLogSink(log)
	if a.kafka != nil {
		a.buffered = events.NewBufferedSink(
			events.NewKafkaSink(a.kafka, cfg.Kafka.Topic), "kafka",
			events.WithBufferSize(cfg.Lifecycle.EventBufferSize),
			events.WithFlushInterval(cfg.Lifecycle.EventFlushInterval),
			events.WithBufferedLogger(log),
			events.WithBufferedMetrics(m),
		)
		sink = events.FanoutSink{a.buffered, events.NewLogSink(log)}
		a.sinkName = "kafka"
	}

	ledgerSvc, err := ledger.New(suspensionStore, ledger.WithLogger(log), ledger.WithMetrics(m))
	if err != nil {
		return nil, err
	}
	if a.blacklist, err = blacklist.New(blacklistStore, blacklist.WithLogger(log), blacklist.WithMetrics(m)); err != nil {
		return nil, err
	}
	resolver, err := conflict.New(dirStore, conflict.WithLogger(log))
	if err != nil {
		return nil, err
	}
	a.service, err = service.New(dirStore, ledgerSvc, a.blacklist, resolver, rejections,
		service.WithLogger(log),
		service.WithMetrics(m),
		service.WithEventSink(sink),
		service.WithStoreTx(storeTx),
		service.WithConfig(service.Config{
			SuspensionTerminationThreshold: cfg.Lifecycle.SuspensionTerminationThreshold,
			RejectionBlacklistThreshold:    cfg.Lifecycle.RejectionBlacklistThreshold,
		}),
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// rejectionCounter prefers Postgres so counts join the operation's
// transaction. Redis only replaces the in-memory counter.
func rejectionCounter(db *sql.DB, rc *redis.Client, ttl time.Duration) (ports.RejectionCounter, string) {
	switch {
	case db != nil:
		return rejection.NewPostgres(db), "postgres"
	case rc != nil:
		return rejection.NewRedis(rc.Client, rejection.WithTTL(ttl)), "redis"
	default:
		return rejection.NewInMemoryStore(), "memory"
	}
}

// health pings every connected backend.
func (a *app) health(ctx context.Context) error {
	var errs []error
	if a.db != nil {
		if err := a.db.PingContext(ctx); err != nil {
			errs = append(errs, fmt.Errorf("postgres: %w", err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Health(ctx); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
	}
	if a.mongo != nil {
		if err := a.mongo.Health(ctx); err != nil {
			errs = append(errs, fmt.Errorf("mongo: %w", err))
		}
	}
	if a.kafka != nil {
		if err := a.kafka.Ping(ctx); err != nil {
			errs = append(errs, fmt.Errorf("kafka: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (a *app) close(log *slog.Logger) {
	if a.kafka != nil {
		a.kafka.Close()
	}
	if a.mongo != nil {
		if err := a.mongo.Disconnect(context.Background()); err != nil {
			log.Warn("mongo disconnect failed", "error", err)
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			log.Warn("redis close failed", "error", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			log.Warn("postgres close failed", "error", err)
		}
	}
}
