package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrProviderRejected   = errors.New("auth: identity provider rejected the request")
)

// ProviderUser is the provider's view of an identity: the opaque id we
// mirror as our user primary key plus the cached email.
type ProviderUser struct {
	ID    uuid.UUID
	Email string
}

// Provider is the external identity collaborator. It owns credential
// storage, password resets and verification email delivery; this
// service only mirrors the resulting identities as profile rows.
type Provider interface {
	SignUp(ctx context.Context, email, password string) (*ProviderUser, error)
	SignIn(ctx context.Context, email, password string) (*ProviderUser, error)
	SendPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	UpdatePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error
	AdminCreateUser(ctx context.Context, email, password string) (*ProviderUser, error)
}

// HTTPProvider talks to a GoTrue-style identity endpoint.
type HTTPProvider struct {
	baseURL    string
	apiKey     string
	serviceKey string
	client     *http.Client
}

// NewHTTPProvider creates a provider client for the given endpoint.
// serviceKey may be empty when admin operations are not needed.
func NewHTTPProvider(baseURL, apiKey, serviceKey string, timeout time.Duration) *HTTPProvider {
	return &HTTPProvider{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		serviceKey: serviceKey,
		client:     &http.Client{Timeout: timeout},
	}
}

type providerUserPayload struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type providerAuthResponse struct {
	User *providerUserPayload `json:"user"`
	// Token endpoints return the user at the top level instead.
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (p *HTTPProvider) SignUp(ctx context.Context, email, password string) (*ProviderUser, error) {
	body := map[string]string{"email": email, "password": password}
	return p.authCall(ctx, http.MethodPost, "/signup", p.apiKey, body)
}

func (p *HTTPProvider) SignIn(ctx context.Context, email, password string) (*ProviderUser, error) {
	body := map[string]string{"email": email, "password": password}
	user, err := p.authCall(ctx, http.MethodPost, "/token?grant_type=password", p.apiKey, body)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (p *HTTPProvider) SendPasswordReset(ctx context.Context, email string) error {
	_, err := p.authCall(ctx, http.MethodPost, "/recover", p.apiKey, map[string]string{"email": email})
	if errors.Is(err, errEmptyUser) {
		// Recover returns no user payload on success.
		return nil
	}
	return err
}

func (p *HTTPProvider) ResetPassword(ctx context.Context, token, newPassword string) error {
	body := map[string]string{"token": token, "password": newPassword}
	_, err := p.authCall(ctx, http.MethodPost, "/verify?type=recovery", p.apiKey, body)
	if errors.Is(err, errEmptyUser) {
		return nil
	}
	return err
}

func (p *HTTPProvider) UpdatePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	body := map[string]string{"password": newPassword, "current_password": currentPassword}
	path := "/admin/users/" + userID.String()
	_, err := p.authCall(ctx, http.MethodPut, path, p.adminKey(), body)
	if errors.Is(err, errEmptyUser) {
		return nil
	}
	return err
}

func (p *HTTPProvider) AdminCreateUser(ctx context.Context, email, password string) (*ProviderUser, error) {
	body := map[string]interface{}{"email": email, "password": password, "email_confirm": true}
	return p.authCall(ctx, http.MethodPost, "/admin/users", p.adminKey(), body)
}

func (p *HTTPProvider) adminKey() string {
	if p.serviceKey != "" {
		return p.serviceKey
	}
	return p.apiKey
}

var errEmptyUser = errors.New("auth: provider response carried no user")

func (p *HTTPProvider) authCall(ctx context.Context, method, path, key string, body interface{}) (*ProviderUser, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("auth: encoding provider request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("auth: building provider request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", key)
	req.Header.Set("Authorization", "Bearer "+key)

	res, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth: calling identity provider: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("auth: reading provider response: %w", err)
	}

	switch {
	case res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusBadRequest:
		return nil, ErrInvalidCredentials
	case res.StatusCode >= 400:
		return nil, fmt.Errorf("%w: status %d", ErrProviderRejected, res.StatusCode)
	}

	var decoded providerAuthResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("auth: decoding provider response: %w", err)
	}

	payloadUser := decoded.User
	if payloadUser == nil && decoded.ID != "" {
		payloadUser = &providerUserPayload{ID: decoded.ID, Email: decoded.Email}
	}
	if payloadUser == nil {
		return nil, errEmptyUser
	}

	id, err := uuid.Parse(payloadUser.ID)
	if err != nil {
		return nil, fmt.Errorf("auth: provider returned malformed user id %q", payloadUser.ID)
	}
	return &ProviderUser{ID: id, Email: payloadUser.Email}, nil
}
