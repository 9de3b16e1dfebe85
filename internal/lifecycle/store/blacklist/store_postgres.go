package blacklist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"caregate/internal/lifecycle/models"
	id "caregate/pkg/domain"
	"caregate/pkg/platform/sentinel"
	txcontext "caregate/pkg/platform/tx"
)

// PostgresStore persists blacklist entries in PostgreSQL. Matching candidates are
// pre-filtered with indexed equality on email/phone and array overlap on licenses.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed blacklist store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const entryColumns = `id, email, phone, licenses, reason, origin_type, origin_id, origin_name, active, expires_at, created_at, created_by`

func (s *PostgresStore) Add(ctx context.Context, entry *models.BlacklistEntry) error {
	if entry == nil {
		return fmt.Errorf("blacklist entry is required")
	}
	_, err := txcontext.Querier(ctx, s.db).ExecContext(ctx, `
		INSERT INTO blacklist_entries (`+entryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		uuid.UUID(entry.ID),
		entry.Fingerprint.Email,
		entry.Fingerprint.Phone,
		pq.Array(nonNil(entry.Fingerprint.Licenses)),
		string(entry.Reason),
		string(entry.Origin.EntityType),
		entry.Origin.EntityID,
		entry.Origin.DisplayName,
		entry.Active,
		nullTime(entry.ExpiresAt),
		entry.CreatedAt,
		entry.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("add blacklist entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, entryID id.BlacklistEntryID) (*models.BlacklistEntry, error) {
	row := txcontext.Querier(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM blacklist_entries WHERE id = $1`, uuid.UUID(entryID))
	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get blacklist entry: %w", err)
	}
	return entry, nil
}

func (s *PostgresStore) List(ctx context.Context, includeInactive bool) ([]*models.BlacklistEntry, error) {
	return s.query(ctx, "list blacklist entries",
		`SELECT `+entryColumns+` FROM blacklist_entries WHERE active OR $1 ORDER BY created_at, id`, includeInactive)
}

func (s *PostgresStore) FindCandidates(ctx context.Context, creds models.CredentialSet) ([]*models.BlacklistEntry, error) {
	if creds.IsEmpty() {
		return nil, nil
	}
	return s.query(ctx, "find blacklist entries", `
		SELECT `+entryColumns+`
		FROM blacklist_entries
		WHERE active
		  AND (
			($1 <> '' AND email = $1)
			OR ($2 <> '' AND phone = $2)
			OR licenses && $3::text[]
		  )
		ORDER BY created_at, id
	`, creds.Email, creds.Phone, pq.Array(nonNil(creds.Licenses)))
}

func (s *PostgresStore) Deactivate(ctx context.Context, entryID id.BlacklistEntryID) (bool, error) {
	var wasActive bool
	err := txcontext.Querier(ctx, s.db).QueryRowContext(ctx, `
		WITH prev AS (SELECT active FROM blacklist_entries WHERE id = $1 FOR UPDATE)
		UPDATE blacklist_entries b SET active = FALSE
		FROM prev
		WHERE b.id = $1
		RETURNING prev.active
	`, uuid.UUID(entryID)).Scan(&wasActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, sentinel.ErrNotFound
		}
		return false, fmt.Errorf("deactivate blacklist entry: %w", err)
	}
	return wasActive, nil
}

func (s *PostgresStore) Delete(ctx context.Context, entryID id.BlacklistEntryID) error {
	res, err := txcontext.Querier(ctx, s.db).ExecContext(ctx, `DELETE FROM blacklist_entries WHERE id = $1`, uuid.UUID(entryID))
	if err != nil {
		return fmt.Errorf("delete blacklist entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete blacklist entry: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeactivateExpired(ctx context.Context, now time.Time) (int, error) {
	res, err := txcontext.Querier(ctx, s.db).ExecContext(ctx, `
		UPDATE blacklist_entries SET active = FALSE
		WHERE active AND expires_at IS NOT NULL AND expires_at <= $1
	`, now)
	if err != nil {
		return 0, fmt.Errorf("deactivate expired blacklist entries: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("deactivate expired blacklist entries: %w", err)
	}
	return int(n), nil
}

func (s *PostgresStore) query(ctx context.Context, op, query string, args ...any) ([]*models.BlacklistEntry, error) {
	rows, err := txcontext.Querier(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []*models.BlacklistEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*models.BlacklistEntry, error) {
	var (
		e          models.BlacklistEntry
		eid        uuid.UUID
		licenses   []string
		reason     string
		originType string
		expiresAt  sql.NullTime
	)
	err := row.Scan(&eid, &e.Fingerprint.Email, &e.Fingerprint.Phone, pq.Array(&licenses),
		&reason, &originType, &e.Origin.EntityID, &e.Origin.DisplayName,
		&e.Active, &expiresAt, &e.CreatedAt, &e.CreatedBy)
	if err != nil {
		return nil, err
	}
	e.ID = id.BlacklistEntryID(eid)
	e.Fingerprint.Licenses = licenses
	e.Reason = models.BlacklistReason(reason)
	e.Origin.EntityType = models.EntityType(originType)
	if expiresAt.Valid {
		e.ExpiresAt = &expiresAt.Time
	}
	return &e, nil
}

func nullTime(value *time.Time) sql.NullTime {
	if value == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *value, Valid: true}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
