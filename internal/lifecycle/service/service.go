// Package service is the lifecycle policy engine. It approves and rejects
// candidates, suspends and unsuspends providers, terminates providers that
// reach the suspension threshold, and keeps the blacklist in step.
//
// Every operation returns a *models.Outcome listing the side effects it
// performed. Events go to the sink only after the governing transaction
// commits, and a failed emission never fails the operation.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"

	"caregate/internal/lifecycle/blacklist"
	"caregate/internal/lifecycle/conflict"
	"caregate/internal/lifecycle/ledger"
	"caregate/internal/lifecycle/metrics"
	"caregate/internal/lifecycle/models"
	"caregate/internal/lifecycle/ports"
	id "caregate/pkg/domain"
	txcontext "caregate/pkg/platform/tx"
)

const tracerName = "caregate/internal/lifecycle/service"

// Config holds the policy thresholds.
type Config struct {
	// SuspensionTerminationThreshold is the suspension sequence number that
	// terminates a provider.
	SuspensionTerminationThreshold int
	// RejectionBlacklistThreshold is the per-email rejection count that
	// blacklists a repeat applicant.
	RejectionBlacklistThreshold int
}

func DefaultConfig() Config {
	return Config{
		SuspensionTerminationThreshold: 6,
		RejectionBlacklistThreshold:    3,
	}
}

type Service struct {
	directory  ports.Directory
	ledger     *ledger.Service
	blacklist  *blacklist.Service
	resolver   *conflict.Resolver
	rejections ports.RejectionCounter
	tx         ports.StoreTx
	sink       ports.EventSink
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer
	config     Config
	bcryptCost int
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithEventSink sets where lifecycle events go. Without one, events are only logged.
func WithEventSink(sink ports.EventSink) Option {
	return func(s *Service) {
		s.sink = sink
	}
}

// WithStoreTx replaces the default in-process keyed lock.
func WithStoreTx(tx ports.StoreTx) Option {
	return func(s *Service) {
		s.tx = tx
	}
}

func WithConfig(cfg Config) Option {
	return func(s *Service) {
		if cfg.SuspensionTerminationThreshold > 0 {
			s.config.SuspensionTerminationThreshold = cfg.SuspensionTerminationThreshold
		}
		if cfg.RejectionBlacklistThreshold > 0 {
			s.config.RejectionBlacklistThreshold = cfg.RejectionBlacklistThreshold
		}
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

// WithBcryptCost lowers the hashing cost, for tests.
func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		s.bcryptCost = cost
	}
}

func New(
	directory ports.Directory,
	ledgerSvc *ledger.Service,
	blacklistSvc *blacklist.Service,
	resolver *conflict.Resolver,
	rejections ports.RejectionCounter,
	opts ...Option,
) (*Service, error) {
	if directory == nil {
		return nil, errors.New("directory is required")
	}
	if ledgerSvc == nil {
		return nil, errors.New("suspension ledger is required")
	}
	if blacklistSvc == nil {
		return nil, errors.New("blacklist registry is required")
	}
	if resolver == nil {
		return nil, errors.New("conflict resolver is required")
	}
	if rejections == nil {
		return nil, errors.New("rejection counter is required")
	}

	svc := &Service{
		directory:  directory,
		ledger:     ledgerSvc,
		blacklist:  blacklistSvc,
		resolver:   resolver,
		rejections: rejections,
		tx:         txcontext.NewShardedTx(0),
		logger:     slog.Default(),
		tracer:     otel.Tracer(tracerName),
		config:     DefaultConfig(),
		bcryptCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Config returns the thresholds in effect.
func (s *Service) Config() Config {
	return s.config
}

// cascade collects the outcome and the events of one operation. Events are
// held until the transaction commits. undo holds the reversals of writes the
// transaction cannot roll back on its own, run newest first if fn fails.
type cascade struct {
	outcome *models.Outcome
	pending []pendingEvent
	undo    []func(ctx context.Context) error
}

func newCascade() *cascade {
	return &cascade{outcome: models.NewOutcome()}
}

func (c *cascade) record(effects ...models.Effect) {
	for _, e := range effects {
		c.outcome.Record(e)
	}
}

// onFailure registers the reversal of a write just made.
func (c *cascade) onFailure(step func(ctx context.Context) error) {
	c.undo = append(c.undo, step)
}

// inTx runs fn under the keyed transaction boundary. Events queued by fn are
// published only if it commits. When fn fails its registered reversals run
// inside the same boundary, so a retry starts from the state before fn.
func (s *Service) inTx(ctx context.Context, key string, c *cascade, fn func(ctx context.Context) error) error {
	err := s.tx.RunInTx(ctx, key, func(ctx context.Context) error {
		if err := fn(ctx); err != nil {
			s.reverse(ctx, c)
			return err
		}
		return nil
	})
	c.undo = nil
	if err != nil {
		c.pending = nil
		return err
	}
	s.flush(ctx, c)
	return nil
}

// reverse runs the registered reversals newest first. A failed reversal is
// logged; inside a SQL transaction it is expected, since the rollback that
// follows covers the same write.
func (s *Service) reverse(ctx context.Context, c *cascade) {
	ctx = context.WithoutCancel(ctx)
	_, inSQLTx := txcontext.From(ctx)
	for i := len(c.undo) - 1; i >= 0; i-- {
		err := c.undo[i](ctx)
		if err == nil {
			continue
		}
		if inSQLTx {
			s.logger.DebugContext(ctx, "reversal left to transaction rollback", "error", err)
			continue
		}
		s.logger.ErrorContext(ctx, "failed to reverse partial write", "error", err)
	}
	c.undo = nil
}

// startSpan opens a span and a latency timer for operation. The returned
// func ends both and records err on the span.
func (s *Service) startSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, func(*error)) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "lifecycle."+operation, trace.WithAttributes(attrs...))
	return ctx, func(errp *error) {
		if errp != nil && *errp != nil {
			span.RecordError(*errp)
			span.SetStatus(codes.Error, (*errp).Error())
		}
		span.End()
		s.metrics.ObserveOperation(operation, start)
	}
}

func providerKey(providerID id.ProviderID) string {
	return "provider:" + providerID.String()
}

func candidateKey(candidateID id.CandidateID) string {
	return "candidate:" + candidateID.String()
}
