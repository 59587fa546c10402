package handlers

import (
	"net/http"

	"modecoach-backend/internal/middleware"
	"modecoach-backend/internal/models"
	"modecoach-backend/internal/repository"
	"modecoach-backend/internal/services"
)

// BillingHandler surfaces subscription state. The store transaction itself
// happens on-device; these endpoints re-read entitlement from the provider
// and report the plan now in effect.
type BillingHandler struct {
	billing  *services.BillingService
	userRepo *repository.UserRepo
}

func NewBillingHandler(billing *services.BillingService, userRepo *repository.UserRepo) *BillingHandler {
	return &BillingHandler{billing: billing, userRepo: userRepo}
}

func (h *BillingHandler) loadUser(w http.ResponseWriter, r *http.Request) *models.User {
	user, err := h.userRepo.GetByID(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResp("UNAUTHORIZED", "User not found", r))
		return nil
	}
	return user
}

// Status syncs entitlement with the provider and returns the current plan.
// Called on app start and after an on-device purchase or restore completes.
func (h *BillingHandler) Status(w http.ResponseWriter, r *http.Request) {
	user := h.loadUser(w, r)
	if user == nil {
		return
	}

	plan, err := h.billing.Sync(r.Context(), user)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, errorResp("ENTITLEMENT_UNAVAILABLE", "Could not verify subscription status", r))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"plan":   plan,
		"is_pro": plan == models.PlanPro,
	})
}

func (h *BillingHandler) Offerings(w http.ResponseWriter, r *http.Request) {
	user := h.loadUser(w, r)
	if user == nil {
		return
	}

	offerings, err := h.billing.Offerings(r.Context(), user)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, errorResp("ENTITLEMENT_UNAVAILABLE", "Could not load offerings", r))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"offerings": offerings})
}
