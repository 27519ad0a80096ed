package usecases

import (
	"context"
	"fmt"

	"qb_bulkdelete/internal/entities"
	"qb_bulkdelete/internal/interfaces"
)

// DenyReason says why a metered operation was refused.
type DenyReason string

const DenyInsufficientCredits DenyReason = "insufficient_credits"

// Decision is the outcome of an entitlement check. Debited reports
// whether a credit was actually consumed, so the gateway knows whether a
// refund is owed on failure.
type Decision struct {
	Allowed bool
	Debited bool
	Reason  DenyReason
}

// EntitlementGate enforces the metering policy: delete/void consume one
// credit unless the user holds an active subscription; everything else
// passes untouched.
type EntitlementGate struct {
	credits       interfaces.CreditStore
	subscriptions interfaces.SubscriptionStore
	notifier      interfaces.Notifier
}

func NewEntitlementGate(credits interfaces.CreditStore, subscriptions interfaces.SubscriptionStore, notifier interfaces.Notifier) *EntitlementGate {
	return &EntitlementGate{
		credits:       credits,
		subscriptions: subscriptions,
		notifier:      notifier,
	}
}

// Authorize decides whether the action may proceed for the user,
// debiting one credit when it is metered and unsubsidized. The debit is
// a single conditional update in the store, so concurrent requests for
// the same user serialize there.
func (g *EntitlementGate) Authorize(ctx context.Context, userID string, action entities.Action) (Decision, error) {
	if !action.Metered() {
		return Decision{Allowed: true}, nil
	}

	sub, err := g.subscriptions.GetActive(ctx, userID)
	if err != nil {
		return Decision{}, fmt.Errorf("subscription lookup: %w", err)
	}
	if sub.IsActive() {
		return Decision{Allowed: true}, nil
	}

	ok, err := g.credits.TryDebit(ctx, userID, 1)
	if err != nil {
		return Decision{}, fmt.Errorf("credit debit: %w", err)
	}
	if !ok {
		if g.notifier != nil {
			g.notifier.Notify(fmt.Sprintf("User %s out of delete credits", userID))
		}
		return Decision{Allowed: false, Reason: DenyInsufficientCredits}, nil
	}

	return Decision{Allowed: true, Debited: true}, nil
}

// Refund gives a consumed credit back after a definite upstream failure.
func (g *EntitlementGate) Refund(ctx context.Context, userID string) error {
	return g.credits.Refund(ctx, userID, 1)
}
