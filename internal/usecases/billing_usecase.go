package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"qb_bulkdelete/internal/config"
	"qb_bulkdelete/internal/entities"
	"qb_bulkdelete/internal/interfaces"
)

// BillingUsecase wraps the Stripe pass-through calls and the one state
// transition the gateway owns on the payment side: turning a completed
// checkout into an active subscription row.
type BillingUsecase struct {
	payments      interfaces.PaymentProvider
	users         interfaces.UserStore
	subscriptions interfaces.SubscriptionStore
	notifier      interfaces.Notifier
	baseURL       string
}

func NewBillingUsecase(payments interfaces.PaymentProvider, users interfaces.UserStore, subscriptions interfaces.SubscriptionStore, notifier interfaces.Notifier, cfg *config.Config) *BillingUsecase {
	return &BillingUsecase{
		payments:      payments,
		users:         users,
		subscriptions: subscriptions,
		notifier:      notifier,
		baseURL:       cfg.BaseURL,
	}
}

// CreateCheckout starts a subscription checkout for the user and returns
// the hosted payment URL.
func (uc *BillingUsecase) CreateCheckout(ctx context.Context, userID, priceID string) (string, error) {
	var customerID string
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("user lookup: %w", err)
	}
	if user != nil {
		customerID = user.StripeCustomerID
	}

	successURL := uc.baseURL + "/success?session_id={CHECKOUT_SESSION_ID}"
	cancelURL := uc.baseURL + "/pricing"
	return uc.payments.CreateCheckoutSession(ctx, priceID, customerID, userID, successURL, cancelURL)
}

// CreatePortal starts a customer portal session. The user must already
// be a Stripe customer.
func (uc *BillingUsecase) CreatePortal(ctx context.Context, userID string) (string, error) {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("user lookup: %w", err)
	}
	if user == nil || user.StripeCustomerID == "" {
		return "", fmt.Errorf("no Stripe customer for user %s", userID)
	}
	return uc.payments.CreatePortalSession(ctx, user.StripeCustomerID, uc.baseURL+"/")
}

// HandleSuccessfulPayment resolves a completed checkout session to a
// user and upserts the active subscription row.
func (uc *BillingUsecase) HandleSuccessfulPayment(ctx context.Context, sessionID string) error {
	session, err := uc.payments.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("retrieve checkout session: %w", err)
	}

	userID, err := uc.resolveUser(ctx, session)
	if err != nil {
		return err
	}

	if session.Subscription == "" {
		log.Printf("checkout session %s completed without a subscription", sessionID)
		return nil
	}

	sub := &entities.Subscription{
		UserID:               userID,
		StripeCustomerID:     session.Customer,
		StripeSubscriptionID: session.Subscription,
		// TODO: derive plan_type from the subscription's price id once
		// the annual plan goes live.
		PlanType: "monthly",
		Status:   "active",
	}
	if err := uc.subscriptions.Upsert(ctx, sub); err != nil {
		return fmt.Errorf("subscription upsert: %w", err)
	}

	if uc.notifier != nil {
		uc.notifier.Notify(fmt.Sprintf("New subscription for user %s (%s)", userID, session.Subscription))
	}
	return nil
}

func (uc *BillingUsecase) resolveUser(ctx context.Context, session *entities.CheckoutSession) (string, error) {
	if session.Customer != "" {
		user, err := uc.users.GetByStripeCustomer(ctx, session.Customer)
		if err != nil {
			return "", fmt.Errorf("user lookup by customer: %w", err)
		}
		if user != nil {
			return user.ID, nil
		}
	}

	// First purchase: link the new Stripe customer to the user the
	// checkout was started for.
	if session.ClientReferenceID == "" {
		return "", fmt.Errorf("checkout session %s has no resolvable user", session.ID)
	}
	if session.Customer != "" {
		if err := uc.users.SetStripeCustomer(ctx, session.ClientReferenceID, session.Customer); err != nil {
			return "", fmt.Errorf("link stripe customer: %w", err)
		}
	}
	return session.ClientReferenceID, nil
}

// VerifyWebhook checks the Stripe signature and parses the event.
func (uc *BillingUsecase) VerifyWebhook(payload []byte, sigHeader string) (*entities.WebhookEvent, error) {
	return uc.payments.VerifyWebhook(payload, sigHeader)
}

// HandleWebhookEvent reacts to the one event type the gateway cares
// about: checkout.session.completed.
func (uc *BillingUsecase) HandleWebhookEvent(ctx context.Context, event *entities.WebhookEvent) error {
	if event.Type != "checkout.session.completed" {
		return nil
	}

	var object struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(event.Data.Object, &object); err != nil {
		return fmt.Errorf("decode event object: %w", err)
	}
	return uc.HandleSuccessfulPayment(ctx, object.ID)
}
