package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"qb_bulkdelete/internal/entities"
)

type SubscriptionRepository struct {
	db *pgxpool.Pool
}

func NewSubscriptionRepository(db *pgxpool.Pool) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// GetActive returns the user's subscription row only when its status is
// active; nil otherwise.
func (r *SubscriptionRepository) GetActive(ctx context.Context, userID string) (*entities.Subscription, error) {
	var sub entities.Subscription
	err := r.db.QueryRow(ctx, `
		SELECT user_id, COALESCE(stripe_customer_id, ''), COALESCE(stripe_subscription_id, ''), COALESCE(plan_type, ''), status
		FROM subscriptions
		WHERE user_id = $1 AND status = 'active'
	`, userID).Scan(&sub.UserID, &sub.StripeCustomerID, &sub.StripeSubscriptionID, &sub.PlanType, &sub.Status)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// Upsert writes the subscription row the payment webhook reports.
func (r *SubscriptionRepository) Upsert(ctx context.Context, sub *entities.Subscription) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO subscriptions (user_id, stripe_customer_id, stripe_subscription_id, plan_type, status, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			stripe_customer_id = EXCLUDED.stripe_customer_id,
			stripe_subscription_id = EXCLUDED.stripe_subscription_id,
			plan_type = EXCLUDED.plan_type,
			status = EXCLUDED.status,
			updated_at = NOW()
	`, sub.UserID, sub.StripeCustomerID, sub.StripeSubscriptionID, sub.PlanType, sub.Status)
	return err
}
