package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"qb_bulkdelete/internal/config"
	"qb_bulkdelete/internal/entities"
)

const (
	intuitTokenEndpoint = "https://oauth.platform.intuit.com/oauth2/v1/tokens/bearer"
	intuitAuthEndpoint  = "https://appcenter.intuit.com/connect/oauth2"
	oauthScope          = "com.intuit.quickbooks.accounting"
)

// AuthUsecase owns the OAuth token lifecycle against Intuit: the one-time
// code exchange, refresh-token exchanges, and the signed session tokens
// handed to the browser.
type AuthUsecase struct {
	clientID      string
	clientSecret  string
	redirectURI   string
	tokenEndpoint string
	jwtSecret     []byte
	httpClient    *http.Client
}

func NewAuthUsecase(cfg *config.Config) *AuthUsecase {
	return &AuthUsecase{
		clientID:      cfg.QBClientID,
		clientSecret:  cfg.QBClientSecret,
		redirectURI:   cfg.QBRedirectURI,
		tokenEndpoint: intuitTokenEndpoint,
		jwtSecret:     []byte(cfg.JWTSecret),
		httpClient:    &http.Client{Timeout: 15 * time.Second},
	}
}

// AuthorizeURL builds the Intuit consent URL the caller is redirected to.
func (uc *AuthUsecase) AuthorizeURL(state string) string {
	q := url.Values{}
	q.Set("client_id", uc.clientID)
	q.Set("response_type", "code")
	q.Set("scope", oauthScope)
	q.Set("redirect_uri", uc.redirectURI)
	q.Set("state", state)
	return intuitAuthEndpoint + "?" + q.Encode()
}

// ExchangeCode trades an authorization code for a token pair.
func (uc *AuthUsecase) ExchangeCode(ctx context.Context, code, realmID string) (*entities.Credential, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", uc.redirectURI)

	cred, err := uc.tokenCall(ctx, "exchange", form)
	if err != nil {
		return nil, err
	}
	cred.RealmID = realmID
	cred.UserID = realmID
	return cred, nil
}

// Refresh trades the refresh token for a fresh pair. The caller replaces
// the stored credential with the result in one step.
func (uc *AuthUsecase) Refresh(ctx context.Context, current *entities.Credential) (*entities.Credential, error) {
	if current == nil || current.RefreshToken == "" {
		return nil, &entities.AuthError{Op: "refresh", Err: fmt.Errorf("no refresh token in session")}
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", current.RefreshToken)

	cred, err := uc.tokenCall(ctx, "refresh", form)
	if err != nil {
		return nil, err
	}
	cred.RealmID = current.RealmID
	cred.UserID = current.UserID
	return cred, nil
}

func (uc *AuthUsecase) tokenCall(ctx context.Context, op string, form url.Values) (*entities.Credential, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uc.tokenEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &entities.AuthError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(uc.clientID, uc.clientSecret)

	resp, err := uc.httpClient.Do(req)
	if err != nil {
		return nil, &entities.AuthError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, &entities.AuthError{Op: op, Status: resp.StatusCode, Body: string(body)}
	}

	var tokens struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.Unmarshal(body, &tokens); err != nil {
		return nil, &entities.AuthError{Op: op, Err: fmt.Errorf("invalid token response: %w", err)}
	}
	if tokens.AccessToken == "" {
		return nil, &entities.AuthError{Op: op, Status: resp.StatusCode, Body: string(body)}
	}

	return &entities.Credential{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ObtainedAt:   time.Now(),
	}, nil
}

// IssueSessionToken signs the JWT that links the browser to its
// server-side session.
func (uc *AuthUsecase) IssueSessionToken(sessionID, realmID string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"session_id": sessionID,
		"realm_id":   realmID,
		"exp":        time.Now().Add(time.Hour * 24).Unix(),
	})

	tokenString, err := token.SignedString(uc.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %v", err)
	}
	return tokenString, nil
}
