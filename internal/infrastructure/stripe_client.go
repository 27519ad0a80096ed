package infrastructure

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"qb_bulkdelete/internal/entities"
)

const stripeAPIBase = "https://api.stripe.com"

// signatureTolerance rejects webhook timestamps older than this,
// limiting replay of captured payloads.
const signatureTolerance = 5 * time.Minute

// StripeClient is a thin client over the handful of Stripe endpoints the
// billing flow needs: checkout sessions, the customer portal, and webhook
// signature verification.
type StripeClient struct {
	secretKey     string
	webhookSecret string
	apiBase       string
	httpClient    *http.Client
}

func NewStripeClient(secretKey, webhookSecret string) *StripeClient {
	return &StripeClient{
		secretKey:     secretKey,
		webhookSecret: webhookSecret,
		apiBase:       stripeAPIBase,
		httpClient:    &http.Client{Timeout: 15 * time.Second},
	}
}

// CreateCheckoutSession starts a subscription checkout and returns the
// hosted payment page URL. customerID may be empty for first-time buyers;
// userID travels as client_reference_id so the webhook can find the user.
func (s *StripeClient) CreateCheckoutSession(ctx context.Context, priceID, customerID, userID, successURL, cancelURL string) (string, error) {
	form := url.Values{}
	form.Set("payment_method_types[0]", "card")
	form.Set("line_items[0][price]", priceID)
	form.Set("line_items[0][quantity]", "1")
	form.Set("mode", "subscription")
	form.Set("success_url", successURL)
	form.Set("cancel_url", cancelURL)
	form.Set("client_reference_id", userID)
	if customerID != "" {
		form.Set("customer", customerID)
	}

	var session entities.CheckoutSession
	if err := s.post(ctx, "/v1/checkout/sessions", form, &session); err != nil {
		return "", err
	}
	return session.URL, nil
}

// CreatePortalSession starts a customer portal session for managing an
// existing subscription.
func (s *StripeClient) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	form := url.Values{}
	form.Set("customer", customerID)
	form.Set("return_url", returnURL)

	var out struct {
		URL string `json:"url"`
	}
	if err := s.post(ctx, "/v1/billing_portal/sessions", form, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

// GetCheckoutSession fetches a completed checkout session by id.
func (s *StripeClient) GetCheckoutSession(ctx context.Context, sessionID string) (*entities.CheckoutSession, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.apiBase+"/v1/checkout/sessions/"+url.PathEscape(sessionID), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.secretKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stripe session retrieve failed: %d - %s", resp.StatusCode, string(body))
	}

	var session entities.CheckoutSession
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("stripe session decode: %w", err)
	}
	return &session, nil
}

// VerifyWebhook checks the Stripe-Signature header against the raw payload
// and returns the parsed event. The signed string is "<timestamp>.<payload>"
// with an HMAC-SHA256 over the webhook secret.
func (s *StripeClient) VerifyWebhook(payload []byte, sigHeader string) (*entities.WebhookEvent, error) {
	var timestamp int64
	var signatures []string

	for _, part := range strings.Split(sigHeader, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			ts, err := strconv.ParseInt(kv[1], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid signature timestamp")
			}
			timestamp = ts
		case "v1":
			signatures = append(signatures, kv[1])
		}
	}

	if timestamp == 0 || len(signatures) == 0 {
		return nil, fmt.Errorf("malformed signature header")
	}
	if time.Since(time.Unix(timestamp, 0)) > signatureTolerance {
		return nil, fmt.Errorf("signature timestamp too old")
	}

	mac := hmac.New(sha256.New, []byte(s.webhookSecret))
	fmt.Fprintf(mac, "%d.%s", timestamp, payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	valid := false
	for _, sig := range signatures {
		if hmac.Equal([]byte(expected), []byte(sig)) {
			valid = true
			break
		}
	}
	if !valid {
		return nil, fmt.Errorf("signature mismatch")
	}

	var event entities.WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("invalid payload: %w", err)
	}
	return &event, nil
}

func (s *StripeClient) post(ctx context.Context, path string, form url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiBase+path, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("stripe %s failed: %d - %s", path, resp.StatusCode, string(body))
	}
	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("stripe %s decode: %w", path, err)
		}
	}
	return nil
}
