package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"medipro-api/internal/auth"
	"medipro-api/internal/domain"
	"medipro-api/internal/store"
)

// SignUpInput defines the expected input for registration.
type SignUpInput struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8"`
	FullName *string `json:"full_name" validate:"omitempty,max=255"`
	Phone    *string `json:"phone" validate:"omitempty,max=32"`
}

// AuthResponse pairs the issued tokens with the profile they belong to.
type AuthResponse struct {
	User   *domain.User    `json:"user"`
	Tokens *auth.TokenPair `json:"tokens"`
}

func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var input SignUpInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	identity, err := h.provider.SignUp(r.Context(), input.Email, input.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			respondWithError(w, http.StatusBadRequest, "Registration rejected by identity provider")
			return
		}
		h.log.WithError(err).Error("SignUp: identity provider call failed")
		respondWithError(w, http.StatusBadGateway, "Identity provider unavailable")
		return
	}

	user := &domain.User{
		ID:       identity.ID,
		Email:    identity.Email,
		FullName: input.FullName,
		Phone:    input.Phone,
		IsActive: true,
	}
	created, err := h.users.CreateUser(r.Context(), user)
	if err != nil {
		if errors.Is(err, store.ErrUserEmailExists) {
			respondWithError(w, http.StatusConflict, "Email is already registered")
			return
		}
		h.log.WithError(err).Error("SignUp: failed to create profile")
		respondWithError(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	tokens, err := h.tokens.Issue(created.ID, created.Email)
	if err != nil {
		h.log.WithError(err).Error("SignUp: failed to issue tokens")
		respondWithError(w, http.StatusInternalServerError, "Failed to issue tokens")
		return
	}

	respondWithJSON(w, http.StatusCreated, AuthResponse{User: created, Tokens: tokens})
}

// LoginInput defines the expected input for login.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var input LoginInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	identity, err := h.provider.SignIn(r.Context(), input.Email, input.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			respondWithError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		h.log.WithError(err).Error("Login: identity provider call failed")
		respondWithError(w, http.StatusBadGateway, "Identity provider unavailable")
		return
	}

	user, err := h.users.GetUserByID(r.Context(), identity.ID)
	if errors.Is(err, store.ErrUserNotFound) {
		// An identity the provider knows but we have no profile for;
		// mirror it so the account is usable.
		user, err = h.users.CreateUser(r.Context(), &domain.User{
			ID:       identity.ID,
			Email:    identity.Email,
			IsActive: true,
		})
	}
	if err != nil {
		h.log.WithError(err).Error("Login: failed to load profile")
		respondWithError(w, http.StatusInternalServerError, "Failed to log in")
		return
	}
	if !user.IsActive {
		respondWithError(w, http.StatusForbidden, "Account is deactivated")
		return
	}

	tokens, err := h.tokens.Issue(user.ID, user.Email)
	if err != nil {
		h.log.WithError(err).Error("Login: failed to issue tokens")
		respondWithError(w, http.StatusInternalServerError, "Failed to issue tokens")
		return
	}

	respondWithJSON(w, http.StatusOK, AuthResponse{User: user, Tokens: tokens})
}

// RefreshInput carries a refresh token.
type RefreshInput struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var input RefreshInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	claims, err := h.tokens.VerifyRefresh(input.RefreshToken)
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, "Invalid or expired refresh token")
		return
	}

	user, err := h.users.GetUserByID(r.Context(), claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			respondWithError(w, http.StatusUnauthorized, "Unknown user")
			return
		}
		h.log.WithError(err).Error("Refresh: failed to load profile")
		respondWithError(w, http.StatusInternalServerError, "Failed to refresh session")
		return
	}
	if !user.IsActive {
		respondWithError(w, http.StatusForbidden, "Account is deactivated")
		return
	}

	tokens, err := h.tokens.Issue(user.ID, user.Email)
	if err != nil {
		h.log.WithError(err).Error("Refresh: failed to issue tokens")
		respondWithError(w, http.StatusInternalServerError, "Failed to issue tokens")
		return
	}

	respondWithJSON(w, http.StatusOK, tokens)
}

// ForgotPasswordInput carries the account email for a reset request.
type ForgotPasswordInput struct {
	Email string `json:"email" validate:"required,email"`
}

// ForgotPassword asks the identity provider to send a reset email. The
// response never reveals whether the account exists.
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var input ForgotPasswordInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	if err := h.provider.SendPasswordReset(r.Context(), input.Email); err != nil && !errors.Is(err, auth.ErrInvalidCredentials) {
		h.log.WithError(err).Error("ForgotPassword: identity provider call failed")
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"message": "If the account exists, a reset email has been sent",
	})
}

// ResetPasswordInput carries the emailed reset token and new password.
type ResetPasswordInput struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var input ResetPasswordInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	if err := h.provider.ResetPassword(r.Context(), input.Token, input.NewPassword); err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			respondWithError(w, http.StatusBadRequest, "Invalid or expired reset token")
			return
		}
		h.log.WithError(err).Error("ResetPassword: identity provider call failed")
		respondWithError(w, http.StatusBadGateway, "Identity provider unavailable")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Password has been reset"})
}

// ChangePasswordInput carries the current and new password of the
// authenticated user.
type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	var input ChangePasswordInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	if err := h.provider.UpdatePassword(r.Context(), user.ID, input.CurrentPassword, input.NewPassword); err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			respondWithError(w, http.StatusBadRequest, "Current password is incorrect")
			return
		}
		h.log.WithError(err).Error("ChangePassword: identity provider call failed")
		respondWithError(w, http.StatusBadGateway, "Identity provider unavailable")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Password has been updated"})
}

// Logout acknowledges the sign-out. Tokens are stateless, so the
// server keeps no session to invalidate; the client discards its pair.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// Me returns the authenticated user's profile.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, currentUser(r))
}
