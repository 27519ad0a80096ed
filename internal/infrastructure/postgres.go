package infrastructure

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresClient struct {
	Pool *pgxpool.Pool
}

func NewPostgresClient(connString string) (*PostgresClient, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	// Pool configuration
	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	client := &PostgresClient{Pool: pool}

	// Auto-migrate schema
	if err := client.Migrate(); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return client, nil
}

func (p *PostgresClient) Migrate() error {
	ctx := context.Background()

	// Users Table — id is the QuickBooks realm id
	_, err := p.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id VARCHAR(64) PRIMARY KEY,
			email VARCHAR(255),
			stripe_customer_id VARCHAR(64),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("create users table: %w", err)
	}

	// Delete Credits Table
	_, err = p.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS delete_credits (
			user_id VARCHAR(64) PRIMARY KEY REFERENCES users(id),
			credits INT NOT NULL DEFAULT 0 CHECK (credits >= 0),
			last_reset TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("create delete_credits table: %w", err)
	}

	// Subscriptions Table
	_, err = p.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS subscriptions (
			user_id VARCHAR(64) PRIMARY KEY REFERENCES users(id),
			stripe_customer_id VARCHAR(64),
			stripe_subscription_id VARCHAR(64),
			plan_type VARCHAR(20),
			status VARCHAR(20) NOT NULL DEFAULT 'inactive',
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("create subscriptions table: %w", err)
	}

	_, err = p.Pool.Exec(ctx, `
		CREATE INDEX IF NOT EXISTS idx_users_stripe_customer ON users (stripe_customer_id);
	`)
	if err != nil {
		return fmt.Errorf("create stripe customer index: %w", err)
	}

	return nil
}

func (p *PostgresClient) Close() {
	p.Pool.Close()
}
