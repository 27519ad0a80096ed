package usecases

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"qb_bulkdelete/internal/entities"
)

// userAgent identifies the application to the QuickBooks API.
const userAgent = "BulkDeleteTransactions/1.0"

// Translator maps validated operation requests onto the QuickBooks v3
// wire protocol. It assumes shape validation already happened; anything
// that slips through is a programming error, not a user error.
type Translator struct {
	environment string // "sandbox" or "production"
}

func NewTranslator(environment string) *Translator {
	return &Translator{environment: environment}
}

func (t *Translator) baseURL(realmID string) string {
	return fmt.Sprintf("https://%s.quickbooks.api.intuit.com/v3/company/%s", t.environment, realmID)
}

// Translate builds the method/URL/body triple plus standard headers for
// one operation. QuickBooks uses POST for updates (sparse update) and
// for delete/void via an operation query parameter.
func (t *Translator) Translate(cred *entities.Credential, op *entities.OperationRequest) (*entities.WireRequest, error) {
	base := t.baseURL(cred.RealmID)

	var method, apiURL string
	var body []byte

	switch op.Action {
	case entities.ActionQuery:
		method = http.MethodPost
		apiURL = base + "/query"
		b, err := json.Marshal(map[string]string{"query": op.Query})
		if err != nil {
			return nil, err
		}
		body = b

	case entities.ActionRead:
		method = http.MethodGet
		apiURL = fmt.Sprintf("%s/%s/%s", base, strings.ToLower(string(op.EntityType)), op.EntityID)

	case entities.ActionCreate:
		method = http.MethodPost
		apiURL = fmt.Sprintf("%s/%s", base, strings.ToLower(string(op.EntityType)))
		b, err := marshalPayload(op.Payload)
		if err != nil {
			return nil, err
		}
		body = b

	case entities.ActionUpdate:
		method = http.MethodPost
		apiURL = fmt.Sprintf("%s/%s/%s", base, strings.ToLower(string(op.EntityType)), op.EntityID)
		b, err := marshalPayload(op.Payload)
		if err != nil {
			return nil, err
		}
		body = b

	case entities.ActionDelete, entities.ActionVoid:
		method = http.MethodPost
		apiURL = fmt.Sprintf("%s/%s/%s?operation=%s", base, strings.ToLower(string(op.EntityType)), op.EntityID, op.Action)
		b, err := marshalPayload(op.Payload)
		if err != nil {
			return nil, err
		}
		body = b

	default:
		return nil, fmt.Errorf("unknown action %q", op.Action)
	}

	return &entities.WireRequest{
		Method: method,
		URL:    apiURL,
		Body:   body,
		Headers: map[string]string{
			"Authorization": "Bearer " + cred.AccessToken,
			"Accept":        "application/json",
			"Content-Type":  "application/json",
			"User-Agent":    userAgent,
		},
	}, nil
}

func marshalPayload(payload map[string]interface{}) ([]byte, error) {
	if payload == nil {
		payload = map[string]interface{}{}
	}
	return json.Marshal(payload)
}
