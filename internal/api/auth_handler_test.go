package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"medipro-api/internal/auth"
	"medipro-api/internal/domain"
	"medipro-api/internal/store"
)

func TestLogin_Success(t *testing.T) {
	mockUsers := new(MockUserStorer)
	mockProvider := new(MockProvider)
	server := setupTestServer(t, Deps{Users: mockUsers, Provider: mockProvider})

	identityID := uuid.New()
	mockProvider.On("SignIn", mock.Anything, "jordan@example.com", "hunter22").
		Return(&auth.ProviderUser{ID: identityID, Email: "jordan@example.com"}, nil).Once()
	mockUsers.On("GetUserByID", mock.Anything, identityID).
		Return(&domain.User{ID: identityID, Email: "jordan@example.com", IsActive: true}, nil).Once()

	body, _ := json.Marshal(LoginInput{Email: "jordan@example.com", Password: "hunter22"})
	res, err := http.Post(server.URL+"/api/v1/auth/login", "application/json", bytes.NewBuffer(body))
	require.NoError(t, err)
	defer res.Body.Close()

	require.Equal(t, http.StatusOK, res.StatusCode)

	var payload AuthResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&payload))
	require.NotNil(t, payload.User)
	assert.Equal(t, identityID, payload.User.ID)
	require.NotNil(t, payload.Tokens)
	assert.NotEmpty(t, payload.Tokens.AccessToken)
	assert.Equal(t, "bearer", payload.Tokens.TokenType)

	claims, err := testTokens.VerifyAccess(payload.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, identityID, claims.Subject)

	mockProvider.AssertExpectations(t)
	mockUsers.AssertExpectations(t)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	mockUsers := new(MockUserStorer)
	mockProvider := new(MockProvider)
	server := setupTestServer(t, Deps{Users: mockUsers, Provider: mockProvider})

	mockProvider.On("SignIn", mock.Anything, "jordan@example.com", "wrong").
		Return(nil, auth.ErrInvalidCredentials).Once()

	body, _ := json.Marshal(LoginInput{Email: "jordan@example.com", Password: "wrong"})
	res, err := http.Post(server.URL+"/api/v1/auth/login", "application/json", bytes.NewBuffer(body))
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	mockUsers.AssertNotCalled(t, "GetUserByID", mock.Anything, mock.Anything)
}

func TestLogin_DeactivatedAccount(t *testing.T) {
	mockUsers := new(MockUserStorer)
	mockProvider := new(MockProvider)
	server := setupTestServer(t, Deps{Users: mockUsers, Provider: mockProvider})

	identityID := uuid.New()
	mockProvider.On("SignIn", mock.Anything, "gone@example.com", "hunter22").
		Return(&auth.ProviderUser{ID: identityID, Email: "gone@example.com"}, nil).Once()
	mockUsers.On("GetUserByID", mock.Anything, identityID).
		Return(&domain.User{ID: identityID, Email: "gone@example.com", IsActive: false}, nil).Once()

	body, _ := json.Marshal(LoginInput{Email: "gone@example.com", Password: "hunter22"})
	res, err := http.Post(server.URL+"/api/v1/auth/login", "application/json", bytes.NewBuffer(body))
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusForbidden, res.StatusCode)
}

func TestSignUp_Success(t *testing.T) {
	mockUsers := new(MockUserStorer)
	mockProvider := new(MockProvider)
	server := setupTestServer(t, Deps{Users: mockUsers, Provider: mockProvider})

	identityID := uuid.New()
	mockProvider.On("SignUp", mock.Anything, "new@example.com", "hunter2222").
		Return(&auth.ProviderUser{ID: identityID, Email: "new@example.com"}, nil).Once()
	mockUsers.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.ID == identityID && u.Email == "new@example.com" && u.IsActive && !u.IsAdmin
	})).Return(&domain.User{ID: identityID, Email: "new@example.com", IsActive: true}, nil).Once()

	body, _ := json.Marshal(SignUpInput{Email: "new@example.com", Password: "hunter2222", FullName: PtrTo("New User")})
	res, err := http.Post(server.URL+"/api/v1/auth/signup", "application/json", bytes.NewBuffer(body))
	require.NoError(t, err)
	defer res.Body.Close()

	require.Equal(t, http.StatusCreated, res.StatusCode)

	var payload AuthResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&payload))
	assert.NotEmpty(t, payload.Tokens.RefreshToken)

	mockProvider.AssertExpectations(t)
	mockUsers.AssertExpectations(t)
}

func TestSignUp_ShortPassword(t *testing.T) {
	mockProvider := new(MockProvider)
	server := setupTestServer(t, Deps{Provider: mockProvider})

	body, _ := json.Marshal(SignUpInput{Email: "new@example.com", Password: "short"})
	res, err := http.Post(server.URL+"/api/v1/auth/signup", "application/json", bytes.NewBuffer(body))
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	mockProvider.AssertNotCalled(t, "SignUp", mock.Anything, mock.Anything, mock.Anything)
}

func TestSignUp_EmailConflict(t *testing.T) {
	mockUsers := new(MockUserStorer)
	mockProvider := new(MockProvider)
	server := setupTestServer(t, Deps{Users: mockUsers, Provider: mockProvider})

	identityID := uuid.New()
	mockProvider.On("SignUp", mock.Anything, "taken@example.com", "hunter2222").
		Return(&auth.ProviderUser{ID: identityID, Email: "taken@example.com"}, nil).Once()
	mockUsers.On("CreateUser", mock.Anything, mock.Anything).
		Return(nil, store.ErrUserEmailExists).Once()

	body, _ := json.Marshal(SignUpInput{Email: "taken@example.com", Password: "hunter2222"})
	res, err := http.Post(server.URL+"/api/v1/auth/signup", "application/json", bytes.NewBuffer(body))
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusConflict, res.StatusCode)
}

func TestRefresh_InvalidToken(t *testing.T) {
	server := setupTestServer(t, Deps{})

	body, _ := json.Marshal(RefreshInput{RefreshToken: "garbage"})
	res, err := http.Post(server.URL+"/api/v1/auth/refresh", "application/json", bytes.NewBuffer(body))
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestMe(t *testing.T) {
	mockUsers := new(MockUserStorer)
	server := setupTestServer(t, Deps{Users: mockUsers})

	user := regularUser()
	token := bearerFor(t, mockUsers, user)

	req, _ := http.NewRequest(http.MethodGet, server.URL+"/api/v1/auth/me", nil)
	req.Header.Set("Authorization", token)

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	require.Equal(t, http.StatusOK, res.StatusCode)

	var payload domain.User
	require.NoError(t, json.NewDecoder(res.Body).Decode(&payload))
	assert.Equal(t, user.ID, payload.ID)
}

func TestMe_NoToken(t *testing.T) {
	server := setupTestServer(t, Deps{})

	res, err := http.Get(server.URL + "/api/v1/auth/me")
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}
