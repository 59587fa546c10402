package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"modecoach-backend/internal/catalog"
	"modecoach-backend/internal/middleware"
	"modecoach-backend/internal/models"
	"modecoach-backend/internal/repository"
	"modecoach-backend/internal/services"
)

type CoachHandler struct {
	coachRepo *repository.CoachRepo
	userRepo  *repository.UserRepo
}

func NewCoachHandler(coachRepo *repository.CoachRepo, userRepo *repository.UserRepo) *CoachHandler {
	return &CoachHandler{coachRepo: coachRepo, userRepo: userRepo}
}

// List returns the merged catalog: built-ins, community coaches, and the
// caller's own, deduplicated by ID.
func (h *CoachHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	public, err := h.coachRepo.ListPublic(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load coaches", r))
		return
	}
	mine, err := h.coachRepo.ListByCreator(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load coaches", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"coaches": catalog.Merge(catalog.Builtins(), public, mine),
	})
}

func (h *CoachHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	user, err := h.userRepo.GetByID(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResp("UNAUTHORIZED", "User not found", r))
		return
	}

	if !services.CanCreateCoach(user.Plan) {
		handleServiceError(w, r, &services.PaywallError{Message: "Creating custom coaches requires an active subscription."})
		return
	}

	var req models.CreateCoachRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	fieldErrors := make(map[string]string)
	if strings.TrimSpace(req.Name) == "" {
		fieldErrors["name"] = "Name is required"
	}
	if strings.TrimSpace(req.SystemInstruction) == "" {
		fieldErrors["system_instruction"] = "System instruction is required"
	}
	if len(fieldErrors) > 0 {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed", fieldErrors, r))
		return
	}

	createdBy := userID.String()
	coach := &models.Coach{
		Name:              req.Name,
		Description:       req.Description,
		Category:          req.Category,
		Personality:       req.Personality,
		SystemInstruction: req.SystemInstruction,
		AvatarInitials:    req.AvatarInitials,
		Icon:              req.Icon,
		Greeting:          req.Greeting,
		CreatedBy:         &createdBy,
		CreatorName:       &user.FullName,
		IsPublic:          req.IsPublic,
	}
	if coach.AvatarInitials == "" {
		coach.AvatarInitials = initialsFor(req.Name)
	}

	if err := h.coachRepo.Create(r.Context(), coach); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to create coach", r))
		return
	}

	writeJSON(w, http.StatusCreated, coach)
}

func initialsFor(name string) string {
	initials := make([]rune, 0, 2)
	for _, p := range strings.Fields(name) {
		r := []rune(p)[0]
		initials = append(initials, r)
		if len(initials) == 2 {
			break
		}
	}
	if len(initials) == 0 {
		return "C"
	}
	return strings.ToUpper(string(initials))
}
