package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"qb_bulkdelete/internal/entities"
)

// qbFault is QuickBooks' nested error envelope. Any missing field
// defaults to the empty string.
type qbFault struct {
	Fault struct {
		Error []struct {
			Message string `json:"Message"`
			Detail  string `json:"Detail"`
			Code    string `json:"code"`
		} `json:"Error"`
	} `json:"Fault"`
}

// Normalize turns an upstream response into either the raw success body
// or a typed error. The substring rules are deliberately kept literal —
// they match QuickBooks' documented wording — and live only here so a
// wording change upstream is a one-place fix.
func Normalize(entityType entities.EntityType, resp *entities.WireResponse) ([]byte, *entities.APIError) {
	if resp.IsSuccess() {
		return resp.Body, nil
	}

	code, message, detail := parseFault(resp.Body)

	switch {
	case code == "610":
		return nil, entities.NewConflictError(fmt.Sprintf("%s cannot be deleted due to linked transactions", entityType))
	case strings.Contains(message, "Object Not Found"):
		return nil, entities.NewNotFoundError(entityType)
	case strings.Contains(strings.ToLower(detail), "used"):
		return nil, entities.NewConflictError(fmt.Sprintf("%s cannot be modified because it is used in other transactions", entityType))
	case strings.Contains(strings.ToLower(detail), "reconciled"):
		return nil, entities.NewConflictError(fmt.Sprintf("%s cannot be modified because it is reconciled", entityType))
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, entities.NewAuthExpiredError()
	}

	return nil, entities.NewUpstreamError(message, detail, code, resp.StatusCode)
}

func parseFault(body []byte) (code, message, detail string) {
	var fault qbFault
	if err := json.Unmarshal(body, &fault); err != nil {
		return "", "", ""
	}
	if len(fault.Fault.Error) == 0 {
		return "", "", ""
	}
	first := fault.Fault.Error[0]
	return first.Code, first.Message, first.Detail
}

// ClassifyTransportError maps a failed dispatch (no HTTP response at
// all) onto the timeout/connection kinds. Never conflated with upstream
// business errors.
func ClassifyTransportError(err error) *entities.APIError {
	if errors.Is(err, context.DeadlineExceeded) {
		return entities.NewTimeoutError()
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return entities.NewTimeoutError()
	}
	return entities.NewConnectionError()
}
