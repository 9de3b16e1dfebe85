// Package tx carries SQL transactions through context and provides the keyed
// transaction boundaries used by services: a sharded mutex for in-memory stores
// and a Postgres transaction guarded by an advisory lock.
package tx

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/spaolacci/murmur3"

	dErrors "caregate/pkg/domain-errors"
)

type ctxKey struct{}

var txKey = ctxKey{}

type heldKey struct{}

// heldShards records which shards of which ShardedTx the current call chain
// already holds.
type heldShards struct {
	owner  *ShardedTx
	shard  uint64
	parent *heldShards
}

func (h *heldShards) holds(owner *ShardedTx, shard uint64) bool {
	for ; h != nil; h = h.parent {
		if h.owner == owner && h.shard == shard {
			return true
		}
	}
	return false
}

// WithTx stores a SQL transaction in context for downstream store usage.
func WithTx(ctx context.Context, tx *sql.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, txKey, tx)
}

// From extracts a SQL transaction from context if present.
func From(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey).(*sql.Tx)
	return tx, ok
}

// Executor is the subset of *sql.DB and *sql.Tx that stores use.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Querier returns the transaction in ctx, or db when there is none.
func Querier(ctx context.Context, db *sql.DB) Executor {
	if tx, ok := From(ctx); ok {
		return tx
	}
	return db
}

// LockKey hashes a string key to the int64 used for advisory locks and shard selection.
func LockKey(key string) int64 {
	return int64(murmur3.Sum64([]byte(key)))
}

const (
	numShards      = 128
	defaultTimeout = 5 * time.Second
)

// ShardedTx serializes work per key with a fixed set of mutexes. Keys are
// spread across shards by murmur3 hash, so unrelated keys rarely contend.
// A nested call whose key maps to a shard the caller already holds runs
// inside the outer lock; any other nested key takes its own shard, so nested
// calls must take keys in a consistent order.
type ShardedTx struct {
	shards  [numShards]sync.Mutex
	timeout time.Duration
}

// NewShardedTx creates an in-memory keyed transaction boundary.
func NewShardedTx(timeout time.Duration) *ShardedTx {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &ShardedTx{timeout: timeout}
}

func (t *ShardedTx) RunInTx(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	idx := uint64(LockKey(key)) % numShards
	held, _ := ctx.Value(heldKey{}).(*heldShards)
	if held.holds(t, idx) {
		return fn(ctx)
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	shard := &t.shards[idx]
	shard.Lock()
	defer shard.Unlock()

	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	return fn(context.WithValue(ctx, heldKey{}, &heldShards{owner: t, shard: idx, parent: held}))
}

// PostgresTx runs fn in a database transaction holding a transaction-scoped
// advisory lock on key. Stores pick the transaction up through Querier.
// A call made with a transaction already in ctx joins it.
type PostgresTx struct {
	db *sql.DB
}

// NewPostgresTx creates a Postgres-backed keyed transaction boundary.
func NewPostgresTx(db *sql.DB) *PostgresTx {
	return &PostgresTx{db: db}
}

func (t *PostgresTx) RunInTx(ctx context.Context, key string, fn func(ctx context.Context) error) (err error) {
	if existing, ok := From(ctx); ok {
		if _, err := existing.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, LockKey(key)); err != nil {
			return fmt.Errorf("acquire advisory lock: %w", err)
		}
		return fn(ctx)
	}

	sqlTx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = sqlTx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = sqlTx.Rollback()
		}
	}()

	if _, err = sqlTx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, LockKey(key)); err != nil {
		return fmt.Errorf("acquire advisory lock: %w", err)
	}

	if err = fn(WithTx(ctx, sqlTx)); err != nil {
		return err
	}

	if err = sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
