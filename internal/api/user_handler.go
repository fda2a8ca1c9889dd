package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"medipro-api/internal/store"
)

// UpdateProfileInput defines the editable profile fields. Email and
// the account flags are not user-editable.
type UpdateProfileInput struct {
	FullName *string `json:"full_name" validate:"omitempty,max=255"`
	Phone    *string `json:"phone" validate:"omitempty,max=32"`
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	var input UpdateProfileInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	updated := *user
	if input.FullName != nil {
		updated.FullName = input.FullName
	}
	if input.Phone != nil {
		updated.Phone = input.Phone
	}

	result, err := h.users.UpdateUser(r.Context(), &updated)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			respondWithError(w, http.StatusNotFound, "User not found")
			return
		}
		h.log.WithError(err).Error("UpdateProfile: store operation failed")
		respondWithError(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// DeactivateAccount soft-deletes the caller's own account. Existing
// orders and reviews are kept.
func (h *Handler) DeactivateAccount(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	if err := h.users.DeactivateUser(r.Context(), user.ID); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			respondWithError(w, http.StatusNotFound, "User not found")
			return
		}
		h.log.WithError(err).Error("DeactivateAccount: store operation failed")
		respondWithError(w, http.StatusInternalServerError, "Failed to deactivate account")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Account deactivated"})
}
