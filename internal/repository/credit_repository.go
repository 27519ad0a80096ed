package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"qb_bulkdelete/internal/entities"
)

type CreditRepository struct {
	db *pgxpool.Pool
}

func NewCreditRepository(db *pgxpool.Pool) *CreditRepository {
	return &CreditRepository{db: db}
}

// Get returns the user's balance, creating it with the default allotment
// on first access.
func (r *CreditRepository) Get(ctx context.Context, userID string) (*entities.DeleteCredits, error) {
	var dc entities.DeleteCredits
	err := r.db.QueryRow(ctx, `
		INSERT INTO delete_credits (user_id, credits, last_reset)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING user_id, credits, last_reset
	`, userID, entities.DefaultCredits).Scan(&dc.UserID, &dc.Credits, &dc.LastReset)
	if err != nil {
		return nil, err
	}
	return &dc, nil
}

// TryDebit decrements the balance only if it covers the amount. The
// conditional UPDATE makes the read-check-write one atomic statement, so
// two concurrent debits against a single remaining credit cannot both
// succeed.
func (r *CreditRepository) TryDebit(ctx context.Context, userID string, amount int) (bool, error) {
	// Make sure the row exists first (lazy init with default allotment)
	if _, err := r.Get(ctx, userID); err != nil {
		return false, err
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE delete_credits
		SET credits = credits - $2
		WHERE user_id = $1 AND credits >= $2
	`, userID, amount)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// Refund returns credits after a definite upstream failure.
func (r *CreditRepository) Refund(ctx context.Context, userID string, amount int) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE delete_credits
		SET credits = credits + $2
		WHERE user_id = $1
	`, userID, amount)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
