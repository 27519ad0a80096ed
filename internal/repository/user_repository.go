package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"qb_bulkdelete/internal/entities"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// Upsert creates the user row on first OAuth callback, keeping any
// existing email/stripe linkage on later logins.
func (r *UserRepository) Upsert(ctx context.Context, user *entities.User) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO users (id, email, stripe_customer_id)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''))
		ON CONFLICT (id) DO UPDATE SET
			email = COALESCE(users.email, EXCLUDED.email),
			stripe_customer_id = COALESCE(users.stripe_customer_id, EXCLUDED.stripe_customer_id)
	`, user.ID, user.Email, user.StripeCustomerID)
	return err
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entities.User, error) {
	var user entities.User
	var email, customerID *string
	err := r.db.QueryRow(ctx,
		"SELECT id, email, stripe_customer_id FROM users WHERE id = $1",
		id).Scan(&user.ID, &email, &customerID)

	if err == pgx.ErrNoRows {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, err
	}
	if email != nil {
		user.Email = *email
	}
	if customerID != nil {
		user.StripeCustomerID = *customerID
	}
	return &user, nil
}

func (r *UserRepository) GetByStripeCustomer(ctx context.Context, customerID string) (*entities.User, error) {
	var user entities.User
	var email *string
	err := r.db.QueryRow(ctx,
		"SELECT id, email FROM users WHERE stripe_customer_id = $1",
		customerID).Scan(&user.ID, &email)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if email != nil {
		user.Email = *email
	}
	user.StripeCustomerID = customerID
	return &user, nil
}

func (r *UserRepository) SetStripeCustomer(ctx context.Context, userID, customerID string) error {
	_, err := r.db.Exec(ctx,
		"UPDATE users SET stripe_customer_id = $2 WHERE id = $1",
		userID, customerID)
	return err
}
