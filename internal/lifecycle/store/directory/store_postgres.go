package directory

import (
	"context"
	"database/sql"
	"errors"
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

// PostgresStore persists providers and candidates in PostgreSQL. Unique indexes
// on email (and non-empty provider phone) are the final arbiter for racing inserts.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed directory.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const providerColumns = `id, name, email, phone, licenses, password_hash, state, created_at, updated_at`

const candidateColumns = `id, name, email, phone, licenses, password_hash, specialization, submitted_at`

func (s *PostgresStore) FindProviderByID(ctx context.Context, providerID id.ProviderID) (*models.Provider, error) {
	return s.findProvider(ctx, `id = $1`, uuid.UUID(providerID))
}

func (s *PostgresStore) FindProviderByEmail(ctx context.Context, email string) (*models.Provider, error) {
	email = models.NormalizeEmail(email)
	if email == "" {
		return nil, sentinel.ErrNotFound
	}
	return s.findProvider(ctx, `email = $1`, email)
}

func (s *PostgresStore) FindProviderByPhone(ctx context.Context, phone string) (*models.Provider, error) {
	if phone == "" {
		return nil, sentinel.ErrNotFound
	}
	return s.findProvider(ctx, `phone = $1`, phone)
}

func (s *PostgresStore) FindProviderByLicense(ctx context.Context, license string) (*models.Provider, error) {
	if license == "" {
		return nil, sentinel.ErrNotFound
	}
	return s.findProvider(ctx, `licenses @> ARRAY[$1]::text[]`, license)
}

func (s *PostgresStore) FindCandidateByID(ctx context.Context, candidateID id.CandidateID) (*models.Candidate, error) {
	return s.findCandidate(ctx, `id = $1`, uuid.UUID(candidateID))
}

func (s *PostgresStore) FindCandidateByEmail(ctx context.Context, email string) (*models.Candidate, error) {
	email = models.NormalizeEmail(email)
	if email == "" {
		return nil, sentinel.ErrNotFound
	}
	return s.findCandidate(ctx, `email = $1`, email)
}

func (s *PostgresStore) FindCandidateByPhone(ctx context.Context, phone string) (*models.Candidate, error) {
	if phone == "" {
		return nil, sentinel.ErrNotFound
	}
	return s.findCandidate(ctx, `phone = $1`, phone)
}

func (s *PostgresStore) FindCandidateByLicense(ctx context.Context, license string) (*models.Candidate, error) {
	if license == "" {
		return nil, sentinel.ErrNotFound
	}
	return s.findCandidate(ctx, `licenses @> ARRAY[$1]::text[]`, license)
}

func (s *PostgresStore) InsertProvider(ctx context.Context, provider *models.Provider) error {
	if provider == nil {
		return fmt.Errorf("provider is required")
	}
	query := `
		INSERT INTO providers (` + providerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := txcontext.Querier(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(provider.ID),
		provider.Name,
		provider.Credentials.Email,
		provider.Credentials.Phone,
		pq.Array(nonNil(provider.Credentials.Licenses)),
		provider.PasswordHash,
		string(provider.State),
		provider.CreatedAt,
		provider.UpdatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return fmt.Errorf("insert provider (%s): %w", postgres.ConstraintName(err), sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("insert provider: %w", err)
	}
	return nil
}

func (s *PostgresStore) InsertCandidate(ctx context.Context, candidate *models.Candidate) error {
	if candidate == nil {
		return fmt.Errorf("candidate is required")
	}
	query := `
		INSERT INTO candidates (` + candidateColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := txcontext.Querier(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(candidate.ID),
		candidate.Name,
		candidate.Credentials.Email,
		candidate.Credentials.Phone,
		pq.Array(nonNil(candidate.Credentials.Licenses)),
		candidate.PasswordHash,
		candidate.Specialization,
		candidate.SubmittedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return fmt.Errorf("insert candidate (%s): %w", postgres.ConstraintName(err), sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("insert candidate: %w", err)
	}
	return nil
}

func (s *PostgresStore) RemoveProvider(ctx context.Context, providerID id.ProviderID) error {
	return s.deleteOne(ctx, `DELETE FROM providers WHERE id = $1`, uuid.UUID(providerID), "provider")
}

func (s *PostgresStore) RemoveCandidate(ctx context.Context, candidateID id.CandidateID) error {
	return s.deleteOne(ctx, `DELETE FROM candidates WHERE id = $1`, uuid.UUID(candidateID), "candidate")
}

func (s *PostgresStore) UpdateProviderState(ctx context.Context, providerID id.ProviderID, state models.ProviderState, now time.Time) error {
	res, err := txcontext.Querier(ctx, s.db).ExecContext(ctx,
		`UPDATE providers SET state = $2, updated_at = $3 WHERE id = $1`,
		uuid.UUID(providerID), string(state), now,
	)
	if err != nil {
		return fmt.Errorf("update provider state: %w", err)
	}
	return requireRow(res, "update provider state")
}

func (s *PostgresStore) deleteOne(ctx context.Context, query string, key uuid.UUID, kind string) error {
	res, err := txcontext.Querier(ctx, s.db).ExecContext(ctx, query, key)
	if err != nil {
		return fmt.Errorf("remove %s: %w", kind, err)
	}
	return requireRow(res, "remove "+kind)
}

func (s *PostgresStore) findProvider(ctx context.Context, where string, arg any) (*models.Provider, error) {
	query := `SELECT ` + providerColumns + ` FROM providers WHERE ` + where + ` ORDER BY created_at LIMIT 1`
	row := txcontext.Querier(ctx, s.db).QueryRowContext(ctx, query, arg)

	var (
		pid      uuid.UUID
		licenses []string
		state    string
		p        models.Provider
	)
	err := row.Scan(&pid, &p.Name, &p.Credentials.Email, &p.Credentials.Phone, pq.Array(&licenses),
		&p.PasswordHash, &state, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find provider: %w", err)
	}
	p.ID = id.ProviderID(pid)
	p.Credentials.Licenses = licenses
	p.State = models.ProviderState(state)
	return &p, nil
}

func (s *PostgresStore) findCandidate(ctx context.Context, where string, arg any) (*models.Candidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM candidates WHERE ` + where + ` ORDER BY submitted_at LIMIT 1`
	row := txcontext.Querier(ctx, s.db).QueryRowContext(ctx, query, arg)

	var (
		cid      uuid.UUID
		licenses []string
		c        models.Candidate
	)
	err := row.Scan(&cid, &c.Name, &c.Credentials.Email, &c.Credentials.Phone, pq.Array(&licenses),
		&c.PasswordHash, &c.Specialization, &c.SubmittedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find candidate: %w", err)
	}
	c.ID = id.CandidateID(cid)
	c.Credentials.Licenses = licenses
	return &c, nil
}

func requireRow(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
