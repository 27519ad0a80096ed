package entities

import "encoding/json"

// CheckoutSession is the subset of Stripe's checkout session object the
// billing flow reads.
type CheckoutSession struct {
	ID                string `json:"id"`
	URL               string `json:"url"`
	Customer          string `json:"customer"`
	Subscription      string `json:"subscription"`
	ClientReferenceID string `json:"client_reference_id"`
}

// WebhookEvent is the envelope of a Stripe webhook payload.
type WebhookEvent struct {
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}
