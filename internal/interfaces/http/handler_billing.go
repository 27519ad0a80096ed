package http

import (
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"qb_bulkdelete/internal/infrastructure"
	"qb_bulkdelete/internal/usecases"
)

// BillingHandler exposes the Stripe pass-through endpoints. All the
// business logic lives in the billing usecase; this is glue.
type BillingHandler struct {
	billing  *usecases.BillingUsecase
	sessions *infrastructure.SessionManager
	baseURL  string
}

func NewBillingHandler(billing *usecases.BillingUsecase, sessions *infrastructure.SessionManager, baseURL string) *BillingHandler {
	return &BillingHandler{billing: billing, sessions: sessions, baseURL: baseURL}
}

// userID resolves the authenticated session to its user, or writes a 401.
func (h *BillingHandler) userID(c *gin.Context) (string, bool) {
	cred := h.sessions.Get(c.GetString("session_id"))
	if cred == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return "", false
	}
	return cred.UserID, true
}

func (h *BillingHandler) CreateCheckout(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	var req struct {
		PriceID string `json:"price_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.PriceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No price ID provided"})
		return
	}

	url, err := h.billing.CreateCheckout(c.Request.Context(), userID, req.PriceID)
	if err != nil {
		log.Printf("checkout creation failed for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create checkout session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

func (h *BillingHandler) CreatePortal(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	url, err := h.billing.CreatePortal(c.Request.Context(), userID)
	if err != nil {
		log.Printf("portal creation failed for user %s: %v", userID, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "No Stripe customer found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// HandleSuccess is the checkout return URL. The webhook is the source of
// truth; this just gives the browser a confirmation hook.
func (h *BillingHandler) HandleSuccess(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		c.Redirect(http.StatusFound, h.baseURL+"/")
		return
	}

	if err := h.billing.HandleSuccessfulPayment(c.Request.Context(), sessionID); err != nil {
		log.Printf("success handling failed for checkout %s: %v", sessionID, err)
		c.Redirect(http.StatusFound, h.baseURL+"/")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "subscribed"})
}

// HandleWebhook verifies the Stripe signature and applies the event.
func (h *BillingHandler) HandleWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.String(http.StatusBadRequest, "Invalid payload")
		return
	}

	event, err := h.billing.VerifyWebhook(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		c.String(http.StatusBadRequest, "Invalid signature")
		return
	}

	if err := h.billing.HandleWebhookEvent(c.Request.Context(), event); err != nil {
		log.Printf("webhook handling failed: %v", err)
		c.String(http.StatusInternalServerError, "Webhook handling failed")
		return
	}
	c.Status(http.StatusOK)
}
