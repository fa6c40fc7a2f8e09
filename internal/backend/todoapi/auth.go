package todoapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"

	"todopro/internal/service"
)

// AuthClient implements service.Auth. Only User is authenticated.
type AuthClient struct {
	requester
}

// NewAuthClient creates an account client for the API at baseURL.
func NewAuthClient(baseURL string, httpClient *http.Client, log *zap.Logger) (*AuthClient, error) {
	r, err := newRequester(baseURL, httpClient, log)
	if err != nil {
		return nil, err
	}
	return &AuthClient{requester: r}, nil
}

// Login exchanges username and password for a token.
func (a *AuthClient) Login(ctx context.Context, username, password string) (service.Credentials, error) {
	body := map[string]string{"username": username, "password": password}
	return a.credentials(ctx, "login", body)
}

// Register creates an account.
func (a *AuthClient) Register(ctx context.Context, username, email, password string) (service.Credentials, error) {
	body := map[string]string{"username": username, "email": email, "password": password}
	return a.credentials(ctx, "register", body)
}

// Verify confirms an emailed verification code.
func (a *AuthClient) Verify(ctx context.Context, email, code string) (service.Credentials, error) {
	body := map[string]string{"email": email, "code": code}
	return a.credentials(ctx, "verify", body)
}

// ResendVerification asks the server to mail a new code.
func (a *AuthClient) ResendVerification(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	if _, err := a.send(ctx, http.MethodPost, a.endpoint("auth", "resend-verification"), body, nil); err != nil {
		return fmt.Errorf("%w: %w", service.ErrAuth, wrapAuthError(err))
	}
	return nil
}

// User returns the profile of the token's owner.
func (a *AuthClient) User(ctx context.Context, token string) (service.Profile, error) {
	if token == "" {
		return service.Profile{}, service.ErrNoToken
	}
	bearer := &oauth2.Token{AccessToken: token, TokenType: "Bearer"}

	data, err := a.send(ctx, http.MethodGet, a.endpoint("auth", "user"), nil, bearer.SetAuthHeader)
	if err != nil {
		return service.Profile{}, fmt.Errorf("%w: %w", service.ErrAuth, wrapError(err))
	}

	var p service.Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return service.Profile{}, fmt.Errorf("%w: invalid profile: %w", service.ErrAuth, err)
	}
	return p, nil
}

func (a *AuthClient) credentials(ctx context.Context, action string, body any) (service.Credentials, error) {
	data, err := a.send(ctx, http.MethodPost, a.endpoint("auth", action), body, nil)
	if err != nil {
		return service.Credentials{}, fmt.Errorf("%w: %w", service.ErrAuth, wrapAuthError(err))
	}

	var creds service.Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return service.Credentials{}, fmt.Errorf("%w: invalid response: %w", service.ErrAuth, err)
	}
	if creds.Token == "" {
		return service.Credentials{}, fmt.Errorf("%w: response carried no token", service.ErrAuth)
	}
	return creds, nil
}

// wrapAuthError is wrapError for unauthenticated calls, where 401 means
// the submitted credentials were rejected.
func wrapAuthError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("invalid credentials")
		case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
			return fmt.Errorf("rejected by server (%d)", apiErr.Code)
		}
	}
	return wrapError(err)
}
