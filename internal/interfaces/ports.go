package interfaces

import (
	"context"

	"qb_bulkdelete/internal/entities"
)

type UserStore interface {
	Upsert(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id string) (*entities.User, error)
	GetByStripeCustomer(ctx context.Context, customerID string) (*entities.User, error)
	SetStripeCustomer(ctx context.Context, userID, customerID string) error
}

// CreditStore owns the delete_credits rows. TryDebit must be atomic:
// two concurrent debits against a single remaining credit may not both
// succeed.
type CreditStore interface {
	Get(ctx context.Context, userID string) (*entities.DeleteCredits, error)
	TryDebit(ctx context.Context, userID string, amount int) (bool, error)
	Refund(ctx context.Context, userID string, amount int) error
}

type SubscriptionStore interface {
	GetActive(ctx context.Context, userID string) (*entities.Subscription, error)
	Upsert(ctx context.Context, sub *entities.Subscription) error
}

// SessionStore looks up, replaces, and destroys the per-session OAuth
// credential. Replace must swap the whole pair at once.
type SessionStore interface {
	Get(id string) *entities.Credential
	Replace(id string, cred *entities.Credential)
	Destroy(id string)
}

// Dispatcher sends a translated wire request to QuickBooks.
// Transport errors come back raw; classification happens downstream.
type Dispatcher interface {
	Do(ctx context.Context, req *entities.WireRequest) (*entities.WireResponse, error)
}

// PaymentProvider is the thin Stripe boundary the billing flow calls.
type PaymentProvider interface {
	CreateCheckoutSession(ctx context.Context, priceID, customerID, userID, successURL, cancelURL string) (string, error)
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error)
	GetCheckoutSession(ctx context.Context, sessionID string) (*entities.CheckoutSession, error)
	VerifyWebhook(payload []byte, sigHeader string) (*entities.WebhookEvent, error)
}

// Notifier pushes ops messages (new subscription, credits exhausted).
type Notifier interface {
	Notify(text string)
}
