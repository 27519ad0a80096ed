package entities

import "time"

// Credential is the OAuth token pair for one connected QuickBooks session.
// It is replaced wholesale on refresh — never mutated field by field — so
// readers always see a matching access/refresh pair.
type Credential struct {
	AccessToken  string
	RefreshToken string
	RealmID      string
	UserID       string
	ObtainedAt   time.Time
}
