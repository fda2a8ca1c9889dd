package api

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"

	"medipro-api/internal/domain"
	"medipro-api/internal/store"
)

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.DashboardStats(r.Context())
	if err != nil {
		h.log.WithError(err).Error("Dashboard: store operation failed")
		respondWithError(w, http.StatusInternalServerError, "Failed to retrieve dashboard stats")
		return
	}

	respondWithJSON(w, http.StatusOK, stats)
}

func (h *Handler) AdminListUsers(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	params := store.ListUsersParams{
		Limit:    pageSize,
		Offset:   (page - 1) * pageSize,
		IsActive: parseBoolQuery(r, "is_active"),
		IsAdmin:  parseBoolQuery(r, "is_admin"),
	}
	if q := r.URL.Query().Get("q"); q != "" {
		params.SearchQuery = &q
	}

	users, total, err := h.users.ListUsers(r.Context(), params)
	if err != nil {
		h.log.WithError(err).Error("AdminListUsers: store operation failed")
		respondWithError(w, http.StatusInternalServerError, "Failed to retrieve users")
		return
	}

	respondWithJSON(w, http.StatusOK, domain.NewPage(users, total, page, pageSize))
}

// SetAdminInput toggles a user's admin flag.
type SetAdminInput struct {
	IsAdmin bool `json:"is_admin"`
}

func (h *Handler) AdminSetUserAdmin(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUUIDParam(r, "userID")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid user ID format")
		return
	}

	var input SetAdminInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	caller := currentUser(r)
	if caller.ID == userID && !input.IsAdmin {
		respondWithError(w, http.StatusBadRequest, "Cannot revoke your own admin access")
		return
	}

	updated, err := h.users.SetAdmin(r.Context(), userID, input.IsAdmin)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			respondWithError(w, http.StatusNotFound, "User not found")
			return
		}
		h.log.WithError(err).Error("AdminSetUserAdmin: store operation failed")
		respondWithError(w, http.StatusInternalServerError, "Failed to update user")
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}

func (h *Handler) AdminDeactivateUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUUIDParam(r, "userID")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid user ID format")
		return
	}

	caller := currentUser(r)
	if caller.ID == userID {
		respondWithError(w, http.StatusBadRequest, "Cannot deactivate your own account here")
		return
	}

	if err := h.users.DeactivateUser(r.Context(), userID); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			respondWithError(w, http.StatusNotFound, "User not found")
			return
		}
		h.log.WithError(err).Error("AdminDeactivateUser: store operation failed")
		respondWithError(w, http.StatusInternalServerError, "Failed to deactivate user")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "User deactivated"})
}

// AdminSetupInput gates the one-time admin bootstrap.
type AdminSetupInput struct {
	Secret string `json:"secret" validate:"required"`
}

// AdminSetup creates the configured bootstrap admin account. The
// endpoint is disabled when no setup secret or admin credentials are
// configured, and the secret must match exactly.
func (h *Handler) AdminSetup(w http.ResponseWriter, r *http.Request) {
	if h.admin.SetupSecret == "" || h.admin.Email == "" || h.admin.Password == "" {
		respondWithError(w, http.StatusNotFound, "Not found")
		return
	}

	var input AdminSetupInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if subtle.ConstantTimeCompare([]byte(input.Secret), []byte(h.admin.SetupSecret)) != 1 {
		respondWithError(w, http.StatusForbidden, "Invalid setup secret")
		return
	}

	// Already bootstrapped: just make sure the account is an admin.
	if existing, err := h.users.GetUserByEmail(r.Context(), h.admin.Email); err == nil {
		updated, err := h.users.SetAdmin(r.Context(), existing.ID, true)
		if err != nil {
			h.log.WithError(err).Error("AdminSetup: failed to promote existing user")
			respondWithError(w, http.StatusInternalServerError, "Failed to set up admin")
			return
		}
		respondWithJSON(w, http.StatusOK, updated)
		return
	}

	identity, err := h.provider.AdminCreateUser(r.Context(), h.admin.Email, h.admin.Password)
	if err != nil {
		h.log.WithError(err).Error("AdminSetup: identity provider call failed")
		respondWithError(w, http.StatusBadGateway, "Identity provider unavailable")
		return
	}

	fullName := h.admin.FullName
	created, err := h.users.CreateUser(r.Context(), &domain.User{
		ID:         identity.ID,
		Email:      identity.Email,
		FullName:   &fullName,
		IsActive:   true,
		IsVerified: true,
		IsAdmin:    true,
	})
	if err != nil {
		h.log.WithError(err).Error("AdminSetup: failed to create admin profile")
		respondWithError(w, http.StatusInternalServerError, "Failed to set up admin")
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}
