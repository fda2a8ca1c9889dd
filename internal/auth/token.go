package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("auth: invalid or expired token")
	ErrWrongUse     = errors.New("auth: token used for wrong purpose")
)

// TokenPair is the access/refresh pair handed to clients after a
// successful signup, login or refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// Claims are the verified contents of a bearer token. Subject is the
// canonical user id (the identity provider's subject).
type Claims struct {
	Subject uuid.UUID
	Email   string
}

// TokenManager issues and verifies bearer tokens. It is an interface
// so the HMAC implementation can be swapped for provider-side
// verification without touching the middleware.
type TokenManager interface {
	Issue(userID uuid.UUID, email string) (*TokenPair, error)
	VerifyAccess(token string) (*Claims, error)
	VerifyRefresh(token string) (*Claims, error)
}

type jwtClaims struct {
	Email string `json:"email,omitempty"`
	Use   string `json:"use"`
	jwt.RegisteredClaims
}

// JWTManager signs HS256 tokens with a shared secret. Access and
// refresh tokens are distinguished by the "use" claim so a refresh
// token can never authenticate a request.
type JWTManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewJWTManager creates a JWTManager with the given signing secret and
// token lifetimes.
func NewJWTManager(secret string, accessTTL, refreshTTL time.Duration) *JWTManager {
	return &JWTManager{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// Issue creates a fresh access/refresh pair for the user.
func (m *JWTManager) Issue(userID uuid.UUID, email string) (*TokenPair, error) {
	access, err := m.sign(userID, email, "access", m.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("auth: signing access token: %w", err)
	}
	refresh, err := m.sign(userID, "", "refresh", m.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("auth: signing refresh token: %w", err)
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    int(m.accessTTL.Seconds()),
	}, nil
}

func (m *JWTManager) sign(userID uuid.UUID, email, use string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwtClaims{
		Email: email,
		Use:   use,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// VerifyAccess validates an access token and returns its claims.
func (m *JWTManager) VerifyAccess(token string) (*Claims, error) {
	return m.verify(token, "access")
}

// VerifyRefresh validates a refresh token and returns its claims.
func (m *JWTManager) VerifyRefresh(token string) (*Claims, error) {
	return m.verify(token, "refresh")
}

func (m *JWTManager) verify(token, use string) (*Claims, error) {
	var claims jwtClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Use != use {
		return nil, ErrWrongUse
	}
	subject, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return &Claims{Subject: subject, Email: claims.Email}, nil
}
