package infrastructure

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const testWebhookSecret = "whsec_test"

func newTestStripeClient(server *httptest.Server) *StripeClient {
	c := NewStripeClient("sk_test_123", testWebhookSecret)
	if server != nil {
		c.apiBase = server.URL
		c.httpClient = server.Client()
	}
	return c
}

// sign produces a Stripe-Signature header for a payload at a given time.
func sign(secret string, payload []byte, at time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", at.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", at.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func TestVerifyWebhook_ValidSignature(t *testing.T) {
	c := newTestStripeClient(nil)
	payload := []byte(`{"type":"checkout.session.completed","data":{"object":{"id":"cs_1"}}}`)

	event, err := c.VerifyWebhook(payload, sign(testWebhookSecret, payload, time.Now()))
	if err != nil {
		t.Fatalf("VerifyWebhook() error = %v", err)
	}
	if event.Type != "checkout.session.completed" {
		t.Errorf("event.Type = %q", event.Type)
	}
}

func TestVerifyWebhook_Rejections(t *testing.T) {
	c := newTestStripeClient(nil)
	payload := []byte(`{"type":"checkout.session.completed"}`)

	tests := []struct {
		name   string
		header string
	}{
		{"wrong secret", sign("whsec_other", payload, time.Now())},
		{"stale timestamp", sign(testWebhookSecret, payload, time.Now().Add(-10*time.Minute))},
		{"tampered payload", sign(testWebhookSecret, []byte(`{"type":"other"}`), time.Now())},
		{"missing v1", fmt.Sprintf("t=%d", time.Now().Unix())},
		{"missing timestamp", "v1=deadbeef"},
		{"empty header", ""},
		{"garbage", "not a signature header"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := c.VerifyWebhook(payload, tt.header); err == nil {
				t.Error("VerifyWebhook() accepted a bad signature")
			}
		})
	}
}

func TestVerifyWebhook_MultipleSignatures(t *testing.T) {
	c := newTestStripeClient(nil)
	payload := []byte(`{"type":"ping"}`)
	now := time.Now()

	// Stripe sends multiple v1 entries during secret rotation; one valid
	// entry is enough.
	valid := sign(testWebhookSecret, payload, now)
	header := strings.Replace(valid, "v1=", "v1=0000,v1=", 1)
	if _, err := c.VerifyWebhook(payload, header); err != nil {
		t.Fatalf("VerifyWebhook() error = %v", err)
	}
}

func TestCreateCheckoutSession(t *testing.T) {
	var gotPath, gotAuth string
	var gotForm map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		r.ParseForm()
		gotForm = r.PostForm
		json.NewEncoder(w).Encode(map[string]string{"id": "cs_1", "url": "https://checkout.stripe.com/pay/cs_1"})
	}))
	defer server.Close()

	c := newTestStripeClient(server)
	url, err := c.CreateCheckoutSession(context.Background(), "price_monthly", "cus_9", "realm-1",
		"http://localhost:5001/success?session_id={CHECKOUT_SESSION_ID}", "http://localhost:5001/pricing")
	if err != nil {
		t.Fatalf("CreateCheckoutSession() error = %v", err)
	}
	if url != "https://checkout.stripe.com/pay/cs_1" {
		t.Errorf("url = %q", url)
	}
	if gotPath != "/v1/checkout/sessions" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "Bearer sk_test_123" {
		t.Errorf("auth = %q", gotAuth)
	}
	for key, want := range map[string]string{
		"mode":                 "subscription",
		"line_items[0][price]": "price_monthly",
		"customer":             "cus_9",
		"client_reference_id":  "realm-1",
	} {
		if got := gotForm[key]; len(got) != 1 || got[0] != want {
			t.Errorf("form[%q] = %v, want %q", key, got, want)
		}
	}
}

func TestCreateCheckoutSession_OmitsEmptyCustomer(t *testing.T) {
	var gotForm map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		gotForm = r.PostForm
		json.NewEncoder(w).Encode(map[string]string{"url": "https://checkout.stripe.com/pay/cs_2"})
	}))
	defer server.Close()

	c := newTestStripeClient(server)
	if _, err := c.CreateCheckoutSession(context.Background(), "price_monthly", "", "realm-1", "s", "c"); err != nil {
		t.Fatalf("CreateCheckoutSession() error = %v", err)
	}
	if _, present := gotForm["customer"]; present {
		t.Error("customer field sent for a first-time buyer")
	}
}

func TestCreatePortalSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/billing_portal/sessions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]string{"url": "https://billing.stripe.com/p/abc"})
	}))
	defer server.Close()

	c := newTestStripeClient(server)
	url, err := c.CreatePortalSession(context.Background(), "cus_9", "http://localhost:5001/")
	if err != nil {
		t.Fatalf("CreatePortalSession() error = %v", err)
	}
	if url != "https://billing.stripe.com/p/abc" {
		t.Errorf("url = %q", url)
	}
}

func TestGetCheckoutSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/checkout/sessions/cs_1" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]string{
			"id": "cs_1", "customer": "cus_9", "subscription": "sub_3", "client_reference_id": "realm-1",
		})
	}))
	defer server.Close()

	c := newTestStripeClient(server)
	session, err := c.GetCheckoutSession(context.Background(), "cs_1")
	if err != nil {
		t.Fatalf("GetCheckoutSession() error = %v", err)
	}
	if session.Customer != "cus_9" || session.Subscription != "sub_3" || session.ClientReferenceID != "realm-1" {
		t.Errorf("session = %+v", session)
	}
}

func TestStripeErrorPassthrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error":{"message":"Your card was declined."}}`))
	}))
	defer server.Close()

	c := newTestStripeClient(server)
	_, err := c.CreateCheckoutSession(context.Background(), "price_monthly", "", "realm-1", "s", "c")
	if err == nil {
		t.Fatal("CreateCheckoutSession() error = nil, want upstream failure")
	}
	if !strings.Contains(err.Error(), "402") {
		t.Errorf("error = %v, want the upstream status included", err)
	}
}
