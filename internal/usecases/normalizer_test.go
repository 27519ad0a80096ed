package usecases

import (
	"context"
	"errors"
	"testing"

	"qb_bulkdelete/internal/entities"
)

func faultBody(code, message, detail string) []byte {
	return []byte(`{"Fault":{"Error":[{"code":"` + code + `","Message":"` + message + `","Detail":"` + detail + `"}]}}`)
}

func TestNormalize_Success(t *testing.T) {
	body, apiErr := Normalize(entities.EntityInvoice, &entities.WireResponse{StatusCode: 200, Body: []byte(`{"Invoice":{"Id":"42"}}`)})
	if apiErr != nil {
		t.Fatalf("unexpected error: %v", apiErr)
	}
	if string(body) != `{"Invoice":{"Id":"42"}}` {
		t.Errorf("body not passed through: %s", body)
	}
}

func TestNormalize_ErrorRules(t *testing.T) {
	tests := []struct {
		name        string
		entity      entities.EntityType
		resp        entities.WireResponse
		wantKind    entities.ErrorKind
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "code 610 means linked transactions",
			entity:      entities.EntityInvoice,
			resp:        entities.WireResponse{StatusCode: 400, Body: faultBody("610", "", "")},
			wantKind:    entities.ErrConflict,
			wantStatus:  400,
			wantMessage: "Invoice cannot be deleted due to linked transactions",
		},
		{
			name:        "object not found",
			entity:      entities.EntityBill,
			resp:        entities.WireResponse{StatusCode: 400, Body: faultBody("2500", "Object Not Found", "")},
			wantKind:    entities.ErrNotFound,
			wantStatus:  404,
			wantMessage: "Bill not found",
		},
		{
			name:        "detail mentions used",
			entity:      entities.EntityPayment,
			resp:        entities.WireResponse{StatusCode: 400, Body: faultBody("6000", "Business Validation Error", "This transaction is Used elsewhere")},
			wantKind:    entities.ErrConflict,
			wantStatus:  400,
			wantMessage: "Payment cannot be modified because it is used in other transactions",
		},
		{
			name:        "detail mentions reconciled",
			entity:      entities.EntityPurchase,
			resp:        entities.WireResponse{StatusCode: 400, Body: faultBody("6000", "Business Validation Error", "Transaction already Reconciled")},
			wantKind:    entities.ErrConflict,
			wantStatus:  400,
			wantMessage: "Purchase cannot be modified because it is reconciled",
		},
		{
			name:       "401 surfaces auth expired",
			entity:     entities.EntityInvoice,
			resp:       entities.WireResponse{StatusCode: 401, Body: []byte(`{}`)},
			wantKind:   entities.ErrAuthExpired,
			wantStatus: 401,
		},
		{
			name:       "anything else passes the upstream status through",
			entity:     entities.EntityInvoice,
			resp:       entities.WireResponse{StatusCode: 429, Body: faultBody("3001", "ThrottleExceeded", "rate limited")},
			wantKind:   entities.ErrUpstream,
			wantStatus: 429,
		},
		{
			name:       "unparseable body still maps by status",
			entity:     entities.EntityInvoice,
			resp:       entities.WireResponse{StatusCode: 500, Body: []byte("<html>oops</html>")},
			wantKind:   entities.ErrUpstream,
			wantStatus: 500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, apiErr := Normalize(tt.entity, &tt.resp)
			if apiErr == nil {
				t.Fatal("expected an error")
			}
			if apiErr.Kind != tt.wantKind {
				t.Errorf("kind = %q, want %q", apiErr.Kind, tt.wantKind)
			}
			if apiErr.Status != tt.wantStatus {
				t.Errorf("status = %d, want %d", apiErr.Status, tt.wantStatus)
			}
			if tt.wantMessage != "" && apiErr.Message != tt.wantMessage {
				t.Errorf("message = %q, want %q", apiErr.Message, tt.wantMessage)
			}
		})
	}
}

func TestNormalize_RuleOrder(t *testing.T) {
	// A 610 fault on a 401 response must hit the 610 rule first.
	resp := entities.WireResponse{StatusCode: 401, Body: faultBody("610", "", "")}
	_, apiErr := Normalize(entities.EntityInvoice, &resp)
	if apiErr == nil || apiErr.Kind != entities.ErrConflict {
		t.Fatalf("got %v, want conflict from the 610 rule", apiErr)
	}
}

type timeoutNetError struct{}

func (timeoutNetError) Error() string   { return "i/o timeout" }
func (timeoutNetError) Timeout() bool   { return true }
func (timeoutNetError) Temporary() bool { return true }

func TestClassifyTransportError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want entities.ErrorKind
	}{
		{"deadline exceeded is a timeout", context.DeadlineExceeded, entities.ErrTimeout},
		{"net timeout is a timeout", timeoutNetError{}, entities.ErrTimeout},
		{"anything else is a connection failure", errors.New("connection refused"), entities.ErrConnection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := ClassifyTransportError(tt.err)
			if apiErr.Kind != tt.want {
				t.Errorf("kind = %q, want %q", apiErr.Kind, tt.want)
			}
		})
	}
}
