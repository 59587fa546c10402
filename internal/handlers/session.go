package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"modecoach-backend/internal/middleware"
	"modecoach-backend/internal/models"
	"modecoach-backend/internal/repository"
	"modecoach-backend/internal/services"
)

// SessionHandler exposes the coaching session surface: loading and resetting
// transcripts, chat turns, roadmap task updates, and plan activation.
type SessionHandler struct {
	chatService *services.ChatService
	userRepo    *repository.UserRepo
}

func NewSessionHandler(chatService *services.ChatService, userRepo *repository.UserRepo) *SessionHandler {
	return &SessionHandler{chatService: chatService, userRepo: userRepo}
}

// currentUser loads the authenticated user; the plan column drives gating so
// the stored row wins over anything baked into the token.
func (h *SessionHandler) currentUser(w http.ResponseWriter, r *http.Request) *models.User {
	userID := middleware.GetUserID(r.Context())
	user, err := h.userRepo.GetByID(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResp("UNAUTHORIZED", "User not found", r))
		return nil
	}
	return user
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	coachID := chi.URLParam(r, "coachId")

	session, err := h.chatService.LoadSession(r.Context(), userID, coachID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *SessionHandler) Reset(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	coachID := chi.URLParam(r, "coachId")

	if err := h.chatService.ResetSession(r.Context(), userID, coachID); err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Session reset"})
}

func (h *SessionHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	user := h.currentUser(w, r)
	if user == nil {
		return
	}
	coachID := chi.URLParam(r, "coachId")

	var req models.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	resp, err := h.chatService.SendMessage(r.Context(), user, coachID, req.Text)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *SessionHandler) ToggleTask(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	coachID := chi.URLParam(r, "coachId")
	milestoneID := chi.URLParam(r, "milestoneId")
	taskID := chi.URLParam(r, "taskId")

	session, err := h.chatService.ToggleTask(r.Context(), userID, coachID, milestoneID, taskID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"milestones": session.Milestones})
}

func (h *SessionHandler) UpdateMilestone(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	coachID := chi.URLParam(r, "coachId")
	milestoneID := chi.URLParam(r, "milestoneId")

	var req models.UpdateMilestoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	session, err := h.chatService.UpdateMilestoneNotes(r.Context(), userID, coachID, milestoneID, req.Notes)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"milestones": session.Milestones})
}

func (h *SessionHandler) Activate(w http.ResponseWriter, r *http.Request) {
	user := h.currentUser(w, r)
	if user == nil {
		return
	}
	coachID := chi.URLParam(r, "coachId")

	var req models.ActivatePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	resp, err := h.chatService.Activate(r.Context(), user, coachID, req.Email)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
