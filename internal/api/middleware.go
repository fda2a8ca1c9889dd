package api

import (
	"context"
	"net/http"
	"strings"

	"medipro-api/internal/domain"
	"medipro-api/internal/store"
)

type contextKey string

const userContextKey contextKey = "currentUser"

// currentUser returns the authenticated user stored by Authenticate.
func currentUser(r *http.Request) *domain.User {
	user, _ := r.Context().Value(userContextKey).(*domain.User)
	return user
}

// Authenticate verifies the bearer token and loads the caller's
// profile into the request context. Deactivated accounts are rejected
// even when their token is still valid.
func (h *Handler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			respondWithError(w, http.StatusUnauthorized, "Missing authorization header")
			return
		}
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			respondWithError(w, http.StatusUnauthorized, "Invalid authorization header")
			return
		}

		claims, err := h.tokens.VerifyAccess(token)
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		user, err := h.users.GetUserByID(r.Context(), claims.Subject)
		if err != nil {
			if err == store.ErrUserNotFound {
				respondWithError(w, http.StatusUnauthorized, "Unknown user")
				return
			}
			h.log.WithError(err).Error("Authenticate: failed to load user")
			respondWithError(w, http.StatusInternalServerError, "Failed to authenticate request")
			return
		}
		if !user.IsActive {
			respondWithError(w, http.StatusForbidden, "Account is deactivated")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin gates a route to admin users. Must run after
// Authenticate.
func (h *Handler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(r)
		if user == nil {
			respondWithError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		if !user.IsAdmin {
			respondWithError(w, http.StatusForbidden, "Admin privileges required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
