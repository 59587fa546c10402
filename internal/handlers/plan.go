package handlers

import (
	"net/http"

	"modecoach-backend/internal/middleware"
	"modecoach-backend/internal/repository"
)

type PlanHandler struct {
	planRepo *repository.PlanRepo
}

func NewPlanHandler(planRepo *repository.PlanRepo) *PlanHandler {
	return &PlanHandler{planRepo: planRepo}
}

func (h *PlanHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	plans, err := h.planRepo.ListByUser(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load plans", r))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"plans": plans})
}
