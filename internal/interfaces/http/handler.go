package http

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"qb_bulkdelete/internal/entities"
	"qb_bulkdelete/internal/infrastructure"
	"qb_bulkdelete/internal/interfaces"
	"qb_bulkdelete/internal/usecases"
)

const sessionCookieMaxAge = 24 * 60 * 60 // matches the JWT expiry

type Handler struct {
	auth          *usecases.AuthUsecase
	qb            *usecases.QuickBooksService
	sessions      *infrastructure.SessionManager
	users         interfaces.UserStore
	credits       interfaces.CreditStore
	subscriptions interfaces.SubscriptionStore
	baseURL       string
}

func NewHandler(auth *usecases.AuthUsecase, qb *usecases.QuickBooksService, sessions *infrastructure.SessionManager, users interfaces.UserStore, credits interfaces.CreditStore, subscriptions interfaces.SubscriptionStore, baseURL string) *Handler {
	return &Handler{
		auth:          auth,
		qb:            qb,
		sessions:      sessions,
		users:         users,
		credits:       credits,
		subscriptions: subscriptions,
		baseURL:       baseURL,
	}
}

func SetupRoutes(r *gin.Engine, h *Handler, billing *BillingHandler, middleware *Middleware) {
	// Apply Security Middleware
	r.Use(SecurityHeaders())
	r.Use(RequestSizeLimiter(10 << 20)) // 10MB max request size
	r.Use(middleware.CORSMiddleware())

	// OAuth flow
	r.GET("/auth", h.StartAuth)
	r.GET("/callback", h.OAuthCallback)
	r.GET("/check-auth", middleware.AuthRequired(), h.CheckAuth)
	r.POST("/logout", middleware.AuthRequired(), h.Logout)

	// Billing (webhook is unauthenticated; Stripe signs it instead)
	r.POST("/webhook", billing.HandleWebhook)
	r.GET("/success", billing.HandleSuccess)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Authenticated API
	api := r.Group("/api")
	api.Use(middleware.AuthRequired())
	api.Use(middleware.RateLimitPerUser(5, 10))
	{
		api.POST("/qb", h.HandleOperation)
		api.GET("/me", h.GetAccount)
	}

	authed := r.Group("/")
	authed.Use(middleware.AuthRequired())
	{
		authed.POST("/create-checkout-session", billing.CreateCheckout)
		authed.POST("/create-portal-session", billing.CreatePortal)
	}
}

// StartAuth redirects the caller to Intuit's consent page with a fresh
// state parameter.
func (h *Handler) StartAuth(c *gin.Context) {
	state := h.sessions.NewState()
	c.Redirect(http.StatusFound, h.auth.AuthorizeURL(state))
}

// OAuthCallback finishes the OAuth dance: state check, code exchange,
// user + credit bootstrap, session creation, cookie issue.
func (h *Handler) OAuthCallback(c *gin.Context) {
	code := c.Query("code")
	realmID := c.Query("realmId")
	state := c.Query("state")

	if state == "" || !h.sessions.ConsumeState(state) {
		c.String(http.StatusForbidden, "Invalid state parameter. Please try again.")
		return
	}
	if code == "" {
		c.String(http.StatusBadRequest, "No authorization code received")
		return
	}
	if realmID == "" {
		c.String(http.StatusBadRequest, "No realm id received")
		return
	}

	cred, err := h.auth.ExchangeCode(c.Request.Context(), code, realmID)
	if err != nil {
		log.Printf("token exchange failed: %v", err)
		c.String(http.StatusInternalServerError, "Token exchange failed")
		return
	}

	if err := h.users.Upsert(c.Request.Context(), &entities.User{ID: realmID}); err != nil {
		log.Printf("user upsert failed for realm %s: %v", realmID, err)
		c.String(http.StatusInternalServerError, "Authentication failed due to an unexpected error")
		return
	}
	// Lazy credit init happens inside Get
	if _, err := h.credits.Get(c.Request.Context(), realmID); err != nil {
		log.Printf("credit init failed for realm %s: %v", realmID, err)
	}

	sessionID := h.sessions.Create(cred)
	token, err := h.auth.IssueSessionToken(sessionID, realmID)
	if err != nil {
		log.Printf("session token issue failed: %v", err)
		c.String(http.StatusInternalServerError, "Authentication failed due to an unexpected error")
		return
	}

	c.SetCookie(SessionCookieName, token, sessionCookieMaxAge, "/", "", false, true)
	c.Redirect(http.StatusFound, h.baseURL+"/")
}

// CheckAuth reports whether the session still holds a live credential.
func (h *Handler) CheckAuth(c *gin.Context) {
	cred := h.sessions.Get(c.GetString("session_id"))
	if cred == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"authenticated": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"authenticated": true})
}

// Logout destroys the session credential.
func (h *Handler) Logout(c *gin.Context) {
	h.sessions.Destroy(c.GetString("session_id"))
	c.SetCookie(SessionCookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"status": "logged_out"})
}

// HandleOperation is the operation endpoint: one QuickBooks action per
// call, gated by the entitlement policy.
func (h *Handler) HandleOperation(c *gin.Context) {
	var op entities.OperationRequest
	if err := c.ShouldBindJSON(&op); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing request data"})
		return
	}

	body, apiErr := h.qb.Execute(c.Request.Context(), c.GetString("session_id"), &op)
	if apiErr != nil {
		writeAPIError(c, apiErr)
		return
	}
	c.Data(http.StatusOK, "application/json", body)
}

// GetAccount returns the caller's credit balance and subscription flag.
func (h *Handler) GetAccount(c *gin.Context) {
	cred := h.sessions.Get(c.GetString("session_id"))
	if cred == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	credits, err := h.credits.Get(c.Request.Context(), cred.UserID)
	if err != nil {
		log.Printf("credit lookup failed for user %s: %v", cred.UserID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An unexpected error occurred"})
		return
	}
	sub, err := h.subscriptions.GetActive(c.Request.Context(), cred.UserID)
	if err != nil {
		log.Printf("subscription lookup failed for user %s: %v", cred.UserID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An unexpected error occurred"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"credits":          credits.Credits,
		"has_subscription": sub.IsActive(),
	})
}

// writeAPIError maps the typed error onto the caller-facing JSON
// contract: {error, detail?, code?} plus the mapped status.
func writeAPIError(c *gin.Context, apiErr *entities.APIError) {
	resp := gin.H{"error": apiErr.Message}
	if apiErr.Detail != "" {
		resp["detail"] = apiErr.Detail
	}
	if apiErr.Code != "" {
		resp["code"] = apiErr.Code
	}
	c.JSON(apiErr.Status, resp)
}
