package usecases

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"qb_bulkdelete/internal/entities"
	"qb_bulkdelete/internal/infrastructure"
	"qb_bulkdelete/internal/interfaces"
)

// upstreamCallTimeout bounds one QuickBooks API round trip.
const upstreamCallTimeout = 30 * time.Second

// QuickBooksService is the request gateway: it walks every inbound
// operation through validate → authorize → translate → dispatch →
// normalize and owns the failure contracts along the way (credit
// refunds, reactive token refresh, session invalidation).
type QuickBooksService struct {
	auth       *AuthUsecase
	gate       *EntitlementGate
	translator *Translator
	dispatcher interfaces.Dispatcher
	sessions   interfaces.SessionStore
	metrics    *infrastructure.Metrics
}

func NewQuickBooksService(auth *AuthUsecase, gate *EntitlementGate, translator *Translator, dispatcher interfaces.Dispatcher, sessions interfaces.SessionStore, metrics *infrastructure.Metrics) *QuickBooksService {
	return &QuickBooksService{
		auth:       auth,
		gate:       gate,
		translator: translator,
		dispatcher: dispatcher,
		sessions:   sessions,
		metrics:    metrics,
	}
}

// ValidateOperation checks the request shape before any side effect.
func ValidateOperation(op *entities.OperationRequest) *entities.APIError {
	var missing []string
	if op.Action == "" {
		missing = append(missing, "action")
	}
	if op.EntityType == "" {
		missing = append(missing, "entity_type")
	}
	if len(missing) > 0 {
		return entities.NewValidationError("Missing required fields: " + strings.Join(missing, ", "))
	}

	if !op.Action.Valid() {
		return entities.NewValidationError(fmt.Sprintf("Invalid action. Must be one of: %s", joinActions()))
	}
	if !op.EntityType.Valid() {
		return entities.NewValidationError(fmt.Sprintf("Invalid entity_type. Must be one of: %s", joinEntities()))
	}
	if op.Action.RequiresEntityID() && op.EntityID == "" {
		return entities.NewValidationError(fmt.Sprintf("%s action requires an entity_id", op.Action))
	}
	if op.Action == entities.ActionQuery && strings.TrimSpace(op.Query) == "" {
		return entities.NewValidationError("Query action requires a query parameter")
	}
	return nil
}

func joinActions() string {
	parts := make([]string, len(entities.ValidActions))
	for i, a := range entities.ValidActions {
		parts[i] = string(a)
	}
	return strings.Join(parts, ", ")
}

func joinEntities() string {
	parts := make([]string, len(entities.ValidEntityTypes))
	for i, e := range entities.ValidEntityTypes {
		parts[i] = string(e)
	}
	return strings.Join(parts, ", ")
}

// Execute runs one operation for an authenticated session and returns
// the upstream body on success or a typed error.
func (s *QuickBooksService) Execute(ctx context.Context, sessionID string, op *entities.OperationRequest) ([]byte, *entities.APIError) {
	if apiErr := ValidateOperation(op); apiErr != nil {
		s.count(op.Action, "rejected")
		return nil, apiErr
	}

	cred := s.sessions.Get(sessionID)
	if cred == nil {
		s.count(op.Action, "unauthenticated")
		return nil, entities.NewAuthRequiredError()
	}

	decision, err := s.gate.Authorize(ctx, cred.UserID, op.Action)
	if err != nil {
		log.Printf("entitlement check failed for user %s: %v", cred.UserID, err)
		s.count(op.Action, "error")
		return nil, entities.NewInternalError()
	}
	if !decision.Allowed {
		s.count(op.Action, "denied")
		return nil, entities.NewInsufficientCreditsError()
	}
	if decision.Debited && s.metrics != nil {
		s.metrics.CreditsDebited.Inc()
	}

	body, apiErr := s.dispatch(ctx, sessionID, cred, op)
	if apiErr != nil {
		// Refund the debited credit when the upstream outcome is
		// definite (an error response, or the connection never went
		// through). A timeout is ambiguous — the delete may have
		// landed — so the credit stays spent.
		if decision.Debited && apiErr.Kind != entities.ErrTimeout {
			if refundErr := s.gate.Refund(ctx, cred.UserID); refundErr != nil {
				log.Printf("credit refund failed for user %s: %v", cred.UserID, refundErr)
			} else if s.metrics != nil {
				s.metrics.CreditsRefunded.Inc()
			}
		}
		s.countUpstream(apiErr)
		s.count(op.Action, "error")
		return nil, apiErr
	}

	log.Printf("Successfully performed %s on %s %s", op.Action, op.EntityType, op.EntityID)
	s.count(op.Action, "success")
	return body, nil
}

func (s *QuickBooksService) dispatch(ctx context.Context, sessionID string, cred *entities.Credential, op *entities.OperationRequest) ([]byte, *entities.APIError) {
	resp, apiErr := s.roundTrip(ctx, cred, op)
	if apiErr != nil {
		return nil, apiErr
	}

	// Reactive refresh: one transparent retry on a rejected bearer.
	if resp.StatusCode == http.StatusUnauthorized {
		fresh, err := s.auth.Refresh(ctx, cred)
		if err != nil {
			log.Printf("token refresh failed for session: %v", err)
			s.sessions.Destroy(sessionID)
			return nil, entities.NewAuthExpiredError()
		}
		s.sessions.Replace(sessionID, fresh)

		resp, apiErr = s.roundTrip(ctx, fresh, op)
		if apiErr != nil {
			return nil, apiErr
		}
	}

	body, normErr := Normalize(op.EntityType, resp)
	if normErr != nil {
		if normErr.Kind == entities.ErrAuthExpired {
			// Invalidate before returning so the next request from
			// this session is forced through re-authentication.
			s.sessions.Destroy(sessionID)
		}
		return nil, normErr
	}
	return body, nil
}

func (s *QuickBooksService) roundTrip(ctx context.Context, cred *entities.Credential, op *entities.OperationRequest) (*entities.WireResponse, *entities.APIError) {
	wireReq, err := s.translator.Translate(cred, op)
	if err != nil {
		log.Printf("translate failed: %v", err)
		return nil, entities.NewInternalError()
	}

	callCtx, cancel := context.WithTimeout(ctx, upstreamCallTimeout)
	defer cancel()

	resp, err := s.dispatcher.Do(callCtx, wireReq)
	if err != nil {
		return nil, ClassifyTransportError(err)
	}
	return resp, nil
}

func (s *QuickBooksService) count(action entities.Action, outcome string) {
	if s.metrics != nil {
		s.metrics.Operations.WithLabelValues(string(action), outcome).Inc()
	}
}

func (s *QuickBooksService) countUpstream(apiErr *entities.APIError) {
	if s.metrics != nil {
		s.metrics.UpstreamErrors.WithLabelValues(string(apiErr.Kind)).Inc()
	}
}
