package handlers

import (
	"net/http"

	"modecoach-backend/internal/middleware"
	"modecoach-backend/internal/repository"
	"modecoach-backend/internal/services"
)

type UserHandler struct {
	authService *services.AuthService
	userRepo    *repository.UserRepo
}

func NewUserHandler(authService *services.AuthService, userRepo *repository.UserRepo) *UserHandler {
	return &UserHandler{authService: authService, userRepo: userRepo}
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	user, err := h.userRepo.GetByID(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResp("UNAUTHORIZED", "User not found", r))
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// DeleteMe erases the account and all associated data. Requires a recently
// issued access token; a stale token gets REAUTH_REQUIRED.
func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	issuedAt := middleware.GetTokenIssuedAt(r.Context())

	if err := h.authService.DeleteAccount(r.Context(), userID, issuedAt); err != nil {
		if _, ok := err.(*services.UnauthorizedError); ok {
			writeJSON(w, http.StatusUnauthorized, errorResp("REAUTH_REQUIRED", err.Error(), r))
			return
		}
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Account and all associated data deleted"})
}
