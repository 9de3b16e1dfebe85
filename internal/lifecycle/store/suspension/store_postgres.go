package suspension

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"caregate/internal/lifecycle/models"
	"caregate/internal/platform/postgres"
	id "caregate/pkg/domain"
	"caregate/pkg/platform/sentinel"
	txcontext "caregate/pkg/platform/tx"
)

// PostgresStore persists the ledger in PostgreSQL. The per-provider sequence
// lives in suspension_counters and is advanced with an atomic upsert in the same
// transaction as the record insert; UNIQUE (provider_id, sequence) backs it up.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed suspension ledger store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, record *models.SuspensionRecord) (*models.SuspensionRecord, error) {
	if record == nil {
		return nil, fmt.Errorf("suspension record is required")
	}
	stored := *record
	err := s.inTx(ctx, func(exec txcontext.Executor) error {
		err := exec.QueryRowContext(ctx, `
			INSERT INTO suspension_counters (provider_id, last_seq)
			VALUES ($1, 1)
			ON CONFLICT (provider_id) DO UPDATE SET last_seq = suspension_counters.last_seq + 1
			RETURNING last_seq
		`, uuid.UUID(record.ProviderID)).Scan(&stored.Sequence)
		if err != nil {
			return fmt.Errorf("advance suspension sequence: %w", err)
		}

		_, err = exec.ExecContext(ctx, `
			INSERT INTO suspension_records (
				id, provider_id, sequence, kind, state, severity, reasons,
				period_start, period_end, duration_us,
				impact_patient, impact_scheduling, impact_prescribing, impact_system,
				issued_by, created_at, revoked_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		`,
			uuid.UUID(stored.ID),
			uuid.UUID(stored.ProviderID),
			stored.Sequence,
			string(stored.Kind),
			string(stored.State),
			string(stored.Severity),
			pq.Array(stored.Reasons),
			stored.Period.Start,
			nullTime(stored.Period.End),
			nullDurationMicros(stored.Period.Duration),
			stored.Impact.PatientAccess,
			stored.Impact.Scheduling,
			stored.Impact.Prescribing,
			stored.Impact.SystemAccess,
			stored.IssuedBy,
			stored.CreatedAt,
			nullTime(stored.RevokedAt),
		)
		if err != nil {
			if postgres.IsUniqueViolation(err) {
				return fmt.Errorf("insert suspension record: %w", sentinel.ErrConflict)
			}
			return fmt.Errorf("insert suspension record: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

func (s *PostgresStore) Count(ctx context.Context, providerID id.ProviderID) (int, error) {
	var count int
	err := txcontext.Querier(ctx, s.db).QueryRowContext(ctx,
		`SELECT COALESCE((SELECT last_seq FROM suspension_counters WHERE provider_id = $1), 0)`,
		uuid.UUID(providerID),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count suspensions: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) RevokeActive(ctx context.Context, providerID id.ProviderID, now time.Time) (int, error) {
	res, err := txcontext.Querier(ctx, s.db).ExecContext(ctx, `
		UPDATE suspension_records
		SET state = $2, revoked_at = $3
		WHERE provider_id = $1 AND state = $4
	`, uuid.UUID(providerID), string(models.SuspensionRevoked), now, string(models.SuspensionActive))
	if err != nil {
		return 0, fmt.Errorf("revoke active suspensions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("revoke active suspensions: %w", err)
	}
	return int(n), nil
}

func (s *PostgresStore) List(ctx context.Context, providerID id.ProviderID) ([]*models.SuspensionRecord, error) {
	rows, err := txcontext.Querier(ctx, s.db).QueryContext(ctx, `
		SELECT id, provider_id, sequence, kind, state, severity, reasons,
			period_start, period_end, duration_us,
			impact_patient, impact_scheduling, impact_prescribing, impact_system,
			issued_by, created_at, revoked_at
		FROM suspension_records
		WHERE provider_id = $1
		ORDER BY sequence
	`, uuid.UUID(providerID))
	if err != nil {
		return nil, fmt.Errorf("list suspensions: %w", err)
	}
	defer rows.Close()

	var out []*models.SuspensionRecord
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list suspensions: %w", err)
	}
	return out, nil
}

// Retract deletes record and rolls the counter back, provided record is
// still the provider's latest. Otherwise it returns sentinel.ErrNotFound.
func (s *PostgresStore) Retract(ctx context.Context, record *models.SuspensionRecord) error {
	return s.inTx(ctx, func(exec txcontext.Executor) error {
		res, err := exec.ExecContext(ctx, `
			UPDATE suspension_counters SET last_seq = last_seq - 1
			WHERE provider_id = $1 AND last_seq = $2
		`, uuid.UUID(record.ProviderID), record.Sequence)
		if err != nil {
			return fmt.Errorf("roll back suspension sequence: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("roll back suspension sequence: %w", err)
		} else if n == 0 {
			return sentinel.ErrNotFound
		}
		res, err = exec.ExecContext(ctx,
			`DELETE FROM suspension_records WHERE id = $1 AND provider_id = $2`,
			uuid.UUID(record.ID), uuid.UUID(record.ProviderID))
		if err != nil {
			return fmt.Errorf("delete suspension record: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("delete suspension record: %w", err)
		} else if n == 0 {
			return sentinel.ErrNotFound
		}
		return nil
	})
}

func (s *PostgresStore) Purge(ctx context.Context, providerID id.ProviderID) (int, error) {
	var purged int
	err := s.inTx(ctx, func(exec txcontext.Executor) error {
		res, err := exec.ExecContext(ctx, `DELETE FROM suspension_records WHERE provider_id = $1`, uuid.UUID(providerID))
		if err != nil {
			return fmt.Errorf("purge suspension records: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("purge suspension records: %w", err)
		}
		purged = int(n)
		if _, err := exec.ExecContext(ctx, `DELETE FROM suspension_counters WHERE provider_id = $1`, uuid.UUID(providerID)); err != nil {
			return fmt.Errorf("purge suspension counter: %w", err)
		}
		return nil
	})
	return purged, err
}

func (s *PostgresStore) ProvidersAtOrAbove(ctx context.Context, threshold int) ([]id.ProviderID, error) {
	rows, err := txcontext.Querier(ctx, s.db).QueryContext(ctx,
		`SELECT provider_id FROM suspension_counters WHERE last_seq >= $1 ORDER BY provider_id`, threshold)
	if err != nil {
		return nil, fmt.Errorf("list providers over threshold: %w", err)
	}
	defer rows.Close()

	var out []id.ProviderID
	for rows.Next() {
		var pid uuid.UUID
		if err := rows.Scan(&pid); err != nil {
			return nil, fmt.Errorf("scan provider id: %w", err)
		}
		out = append(out, id.ProviderID(pid))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list providers over threshold: %w", err)
	}
	return out, nil
}

// inTx joins the transaction in ctx or opens a short one for multi-statement writes.
func (s *PostgresStore) inTx(ctx context.Context, fn func(exec txcontext.Executor) error) error {
	if existing, ok := txcontext.From(ctx); ok {
		return fn(existing)
	}
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(sqlTx); err != nil {
		_ = sqlTx.Rollback()
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*models.SuspensionRecord, error) {
	var (
		r                     models.SuspensionRecord
		rid, pid              uuid.UUID
		kind, state, severity string
		reasons               []string
		periodEnd, revokedAt  sql.NullTime
		durationMicros        sql.NullInt64
	)
	err := row.Scan(&rid, &pid, &r.Sequence, &kind, &state, &severity, pq.Array(&reasons),
		&r.Period.Start, &periodEnd, &durationMicros,
		&r.Impact.PatientAccess, &r.Impact.Scheduling, &r.Impact.Prescribing, &r.Impact.SystemAccess,
		&r.IssuedBy, &r.CreatedAt, &revokedAt)
	if err != nil {
		return nil, fmt.Errorf("scan suspension record: %w", err)
	}
	r.ID = id.SuspensionID(rid)
	r.ProviderID = id.ProviderID(pid)
	r.Kind = models.SuspensionKind(kind)
	r.State = models.SuspensionState(state)
	r.Severity = models.Severity(severity)
	r.Reasons = reasons
	if periodEnd.Valid {
		r.Period.End = &periodEnd.Time
	}
	if durationMicros.Valid {
		d := time.Duration(durationMicros.Int64) * time.Microsecond
		r.Period.Duration = &d
	}
	if revokedAt.Valid {
		r.RevokedAt = &revokedAt.Time
	}
	return &r, nil
}

func nullTime(value *time.Time) sql.NullTime {
	if value == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *value, Valid: true}
}

// nullDurationMicros stores durations at the precision of TIMESTAMPTZ, so a
// period end derived from start plus duration stays exact.
func nullDurationMicros(value *time.Duration) sql.NullInt64 {
	if value == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: value.Microseconds(), Valid: true}
}
