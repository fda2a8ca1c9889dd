package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_IssueAndVerify(t *testing.T) {
	manager := NewJWTManager("test-secret", 30*time.Minute, 7*24*time.Hour)
	userID := uuid.New()

	pair, err := manager.Issue(userID, "jordan@example.com")
	require.NoError(t, err)
	require.NotNil(t, pair)
	assert.Equal(t, "bearer", pair.TokenType)
	assert.Equal(t, int((30 * time.Minute).Seconds()), pair.ExpiresIn)

	claims, err := manager.VerifyAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.Subject)
	assert.Equal(t, "jordan@example.com", claims.Email)

	refreshClaims, err := manager.VerifyRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, userID, refreshClaims.Subject)
}

func TestJWTManager_RefreshTokenRejectedAsAccess(t *testing.T) {
	manager := NewJWTManager("test-secret", 30*time.Minute, 7*24*time.Hour)

	pair, err := manager.Issue(uuid.New(), "jordan@example.com")
	require.NoError(t, err)

	_, err = manager.VerifyAccess(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrWrongUse)

	_, err = manager.VerifyRefresh(pair.AccessToken)
	assert.ErrorIs(t, err, ErrWrongUse)
}

func TestJWTManager_WrongSecret(t *testing.T) {
	issuer := NewJWTManager("secret-a", 30*time.Minute, time.Hour)
	verifier := NewJWTManager("secret-b", 30*time.Minute, time.Hour)

	pair, err := issuer.Issue(uuid.New(), "jordan@example.com")
	require.NoError(t, err)

	_, err = verifier.VerifyAccess(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTManager_ExpiredToken(t *testing.T) {
	manager := NewJWTManager("test-secret", -time.Minute, time.Hour)

	pair, err := manager.Issue(uuid.New(), "jordan@example.com")
	require.NoError(t, err)

	_, err = manager.VerifyAccess(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTManager_Garbage(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Minute, time.Hour)

	_, err := manager.VerifyAccess("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
