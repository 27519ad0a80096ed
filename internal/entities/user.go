package entities

import "time"

// User is keyed by the QuickBooks realm id — one company file, one user.
type User struct {
	ID               string `json:"id"`
	Email            string `json:"email,omitempty"`
	StripeCustomerID string `json:"stripe_customer_id,omitempty"`
}

// DeleteCredits is the prepaid balance consumed by delete/void operations.
type DeleteCredits struct {
	UserID    string    `json:"user_id"`
	Credits   int       `json:"credits"`
	LastReset time.Time `json:"last_reset"`
}

// DefaultCredits is the allotment granted to a user on first contact.
const DefaultCredits = 20

// Subscription mirrors a Stripe subscription row. status == "active"
// grants unlimited metered operations.
type Subscription struct {
	UserID               string `json:"user_id"`
	StripeCustomerID     string `json:"stripe_customer_id,omitempty"`
	StripeSubscriptionID string `json:"stripe_subscription_id"`
	PlanType             string `json:"plan_type"`
	Status               string `json:"status"`
}

func (s *Subscription) IsActive() bool {
	return s != nil && s.Status == "active"
}
