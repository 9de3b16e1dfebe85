package rejection

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"caregate/internal/lifecycle/models"
	txcontext "caregate/pkg/platform/tx"
)

// PostgresStore keeps counters in a single upserted row per email.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Increment(ctx context.Context, email string) (int, error) {
	query := `
		INSERT INTO rejection_counters (email, rejections, updated_at)
		VALUES ($1, 1, NOW())
		ON CONFLICT (email) DO UPDATE SET
			rejections = rejection_counters.rejections + 1,
			updated_at = NOW()
		RETURNING rejections
	`
	var n int
	if err := txcontext.Querier(ctx, s.db).QueryRowContext(ctx, query, models.NormalizeEmail(email)).Scan(&n); err != nil {
		return 0, fmt.Errorf("increment rejections: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) Decrement(ctx context.Context, email string) error {
	_, err := txcontext.Querier(ctx, s.db).ExecContext(ctx, `
		UPDATE rejection_counters
		SET rejections = GREATEST(rejections - 1, 0), updated_at = NOW()
		WHERE email = $1
	`, models.NormalizeEmail(email))
	if err != nil {
		return fmt.Errorf("decrement rejections: %w", err)
	}
	return nil
}

func (s *PostgresStore) Count(ctx context.Context, email string) (int, error) {
	var n int
	err := txcontext.Querier(ctx, s.db).QueryRowContext(ctx,
		`SELECT rejections FROM rejection_counters WHERE email = $1`, models.NormalizeEmail(email)).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read rejections: %w", err)
	}
	return n, nil
}
