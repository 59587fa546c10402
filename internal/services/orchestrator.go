package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"modecoach-backend/internal/catalog"
	"modecoach-backend/internal/models"
)

// Fallback replies substituted when a model turn cannot produce a usable
// contract object. Both are recoverable: the turn ends with a coach message
// and the draft roadmap is left untouched.
const (
	fallbackMalformed = "I'm having trouble structuring the plan right now. Could you try rephrasing?"
	fallbackOffline   = "I seem to be offline. Please check your connection."
)

const sendLockTTL = 2 * time.Minute

type conversationModel interface {
	Converse(ctx context.Context, history []models.Message, personaInstruction, newMessage string) (string, error)
}

type sessionStore interface {
	Get(ctx context.Context, userID uuid.UUID, coachID string) (*models.Session, error)
	Save(ctx context.Context, s *models.Session) error
	Delete(ctx context.Context, userID uuid.UUID, coachID string) error
}

type coachSource interface {
	GetByID(ctx context.Context, id string) (*models.Coach, error)
}

type planStore interface {
	Create(ctx context.Context, p *models.ActivePlan) error
}

type planNotifier interface {
	EnqueuePlanActivation(ctx context.Context, plan *models.ActivePlan) error
}

// ChatService orchestrates coach conversations: gating, interception,
// model turns, roadmap state, and plan activation.
type ChatService struct {
	model     conversationModel
	sessions  sessionStore
	coaches   coachSource
	plans     planStore
	webhooks  planNotifier
	intent    IntentClassifier
	redis     *redis.Client
	freeLimit int
}

func NewChatService(
	model conversationModel,
	sessions sessionStore,
	coaches coachSource,
	plans planStore,
	webhooks planNotifier,
	intent IntentClassifier,
	redisClient *redis.Client,
	freeLimit int,
) *ChatService {
	return &ChatService{
		model:     model,
		sessions:  sessions,
		coaches:   coaches,
		plans:     plans,
		webhooks:  webhooks,
		intent:    intent,
		redis:     redisClient,
		freeLimit: freeLimit,
	}
}

// resolveCoach looks a coach up in the built-in catalog first, then in the
// custom coach store.
func (s *ChatService) resolveCoach(ctx context.Context, coachID string) (*models.Coach, error) {
	for _, c := range catalog.Builtins() {
		if c.ID == coachID {
			coach := c
			return &coach, nil
		}
	}
	coach, err := s.coaches.GetByID(ctx, coachID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &NotFoundError{Message: "Coach not found"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load coach: %w", err)
	}
	return coach, nil
}

// LoadSession returns the stored session for the pair, or a fresh one opened
// with the coach greeting when none exists. The fresh session is not
// persisted until the first send.
func (s *ChatService) LoadSession(ctx context.Context, userID uuid.UUID, coachID string) (*models.Session, error) {
	coach, err := s.resolveCoach(ctx, coachID)
	if err != nil {
		return nil, err
	}

	session, err := s.sessions.Get(ctx, userID, coachID)
	if errors.Is(err, pgx.ErrNoRows) {
		return &models.Session{
			UserID:  userID,
			CoachID: coachID,
			Messages: []models.Message{
				newModelMessage(coach.GreetingText()),
			},
			Milestones:  []models.Milestone{},
			LastUpdated: time.Now(),
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return session, nil
}

// ResetSession discards the transcript and draft roadmap for the pair.
func (s *ChatService) ResetSession(ctx context.Context, userID uuid.UUID, coachID string) error {
	if _, err := s.resolveCoach(ctx, coachID); err != nil {
		return err
	}
	return s.sessions.Delete(ctx, userID, coachID)
}

// SendMessage runs one chat turn. Exactly one of three paths is taken:
// the paywall gate, the activation interception (no model call), or a
// model turn. Model failures degrade to a fallback coach message and the
// draft roadmap is never cleared by a failed turn.
func (s *ChatService) SendMessage(ctx context.Context, user *models.User, coachID, text string) (*models.SendMessageResponse, error) {
	if text == "" {
		return nil, &ValidationError{Fields: map[string]string{"text": "Message text is required"}}
	}

	coach, err := s.resolveCoach(ctx, coachID)
	if err != nil {
		return nil, err
	}

	lockKey := "send_lock:" + models.SessionKey(user.ID, coachID)
	locked, err := s.redis.SetNX(ctx, lockKey, "1", sendLockTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire send lock: %w", err)
	}
	if !locked {
		return nil, &InFlightError{Message: "A message for this session is already being processed"}
	}
	defer s.redis.Del(context.Background(), lockKey)

	session, err := s.LoadSession(ctx, user.ID, coachID)
	if err != nil {
		return nil, err
	}

	if !CanSend(user.Plan, models.CountUserMessages(session.Messages), s.freeLimit) {
		return nil, &PaywallError{Message: "Free message limit reached. Upgrade to keep talking to your coach."}
	}

	history := session.Messages

	// The activation question must be the message the user is answering.
	// A keyword inside ordinary conversation is not consent.
	awaitingConsent := false
	if n := len(history); n > 0 {
		last := history[n-1]
		awaitingConsent = last.Role == models.RoleModel && last.IsEmailPrompt
	}

	userMsg := models.Message{
		ID:        uuid.NewString(),
		Role:      models.RoleUser,
		Text:      text,
		Timestamp: time.Now(),
	}
	session.Messages = append(session.Messages, userMsg)
	resp := &models.SendMessageResponse{Messages: []models.Message{userMsg}}

	// Interception: a confirmation answering the email prompt while a draft
	// roadmap is on the table requests activation directly, without spending
	// a model turn.
	if awaitingConsent && len(session.Milestones) > 0 && s.intent.IsConfirmation(text) {
		resp.ActivationRequested = true
		resp.Milestones = session.Milestones
		if err := s.sessions.Save(ctx, session); err != nil {
			return nil, err
		}
		s.publishEvent(ctx, user.ID, models.WSMessage{
			Type:    models.EventActivationRequest,
			Payload: models.SessionEvent{CoachID: coachID, MilestoneCount: len(session.Milestones)},
		})
		return resp, nil
	}

	raw, convErr := s.model.Converse(ctx, history, coach.SystemInstruction, text)
	if convErr != nil {
		log.Printf("Model turn failed for %s: %v", models.SessionKey(user.ID, coachID), convErr)
		return s.finishWithFallback(ctx, session, resp, fallbackOffline)
	}

	reply, parseErr := ParseCoachReply(raw)
	if parseErr != nil {
		log.Printf("Unparseable model reply for %s: %v", models.SessionKey(user.ID, coachID), parseErr)
		return s.finishWithFallback(ctx, session, resp, fallbackMalformed)
	}

	coachMsg := newModelMessage(reply.ChatResponse)
	session.Messages = append(session.Messages, coachMsg)
	resp.Messages = append(resp.Messages, coachMsg)

	if reply.Generated {
		// A new roadmap replaces the previous draft wholesale.
		session.Milestones = BuildMilestones(reply.Roadmap, time.Now())
		resp.RoadmapGenerated = true

		if reply.EmailPrompt != "" {
			promptMsg := newModelMessage(reply.EmailPrompt)
			promptMsg.IsEmailPrompt = true
			session.Messages = append(session.Messages, promptMsg)
			resp.Messages = append(resp.Messages, promptMsg)
		}
	}
	resp.Milestones = session.Milestones

	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	if reply.Generated {
		s.publishEvent(ctx, user.ID, models.WSMessage{
			Type:    models.EventRoadmapGenerated,
			Payload: models.SessionEvent{CoachID: coachID, MilestoneCount: len(session.Milestones)},
		})
	}

	return resp, nil
}

func (s *ChatService) finishWithFallback(ctx context.Context, session *models.Session, resp *models.SendMessageResponse, text string) (*models.SendMessageResponse, error) {
	msg := newModelMessage(text)
	session.Messages = append(session.Messages, msg)
	resp.Messages = append(resp.Messages, msg)
	resp.Milestones = session.Milestones
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return resp, nil
}

// ToggleTask flips one task's completion and re-derives the milestone state.
func (s *ChatService) ToggleTask(ctx context.Context, userID uuid.UUID, coachID, milestoneID, taskID string) (*models.Session, error) {
	session, err := s.sessions.Get(ctx, userID, coachID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &NotFoundError{Message: "Session not found"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	for i := range session.Milestones {
		if session.Milestones[i].ID != milestoneID {
			continue
		}
		for j := range session.Milestones[i].Tasks {
			if session.Milestones[i].Tasks[j].ID != taskID {
				continue
			}
			session.Milestones[i].Tasks[j].IsCompleted = !session.Milestones[i].Tasks[j].IsCompleted
			session.Milestones[i].RecomputeCompletion()
			if err := s.sessions.Save(ctx, session); err != nil {
				return nil, err
			}
			return session, nil
		}
		return nil, &NotFoundError{Message: "Task not found"}
	}
	return nil, &NotFoundError{Message: "Milestone not found"}
}

// UpdateMilestoneNotes sets or clears the free-form notes on one milestone.
func (s *ChatService) UpdateMilestoneNotes(ctx context.Context, userID uuid.UUID, coachID, milestoneID string, notes *string) (*models.Session, error) {
	session, err := s.sessions.Get(ctx, userID, coachID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &NotFoundError{Message: "Session not found"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	for i := range session.Milestones {
		if session.Milestones[i].ID == milestoneID {
			session.Milestones[i].Notes = notes
			if err := s.sessions.Save(ctx, session); err != nil {
				return nil, err
			}
			return session, nil
		}
	}
	return nil, &NotFoundError{Message: "Milestone not found"}
}

// Activate turns the current draft roadmap into an active plan: persists the
// plan record, queues the automation webhook, and closes the loop with a
// confirmation message in the transcript. Nothing is mutated when the plan
// record cannot be created.
func (s *ChatService) Activate(ctx context.Context, user *models.User, coachID, email string) (*models.SendMessageResponse, error) {
	if email == "" {
		return nil, &ValidationError{Fields: map[string]string{"email": "Email is required"}}
	}
	if user.Plan != models.PlanPro {
		return nil, &PaywallError{Message: "Plan activation requires an active subscription."}
	}

	coach, err := s.resolveCoach(ctx, coachID)
	if err != nil {
		return nil, err
	}

	session, err := s.sessions.Get(ctx, user.ID, coachID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &NotFoundError{Message: "Session not found"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if len(session.Milestones) == 0 {
		return nil, &ConflictError{Message: "No draft plan to activate"}
	}

	plan := &models.ActivePlan{
		UserID:       user.ID,
		Email:        email,
		Name:         user.FullName,
		CoachPersona: coach.Name,
		Goal:         DeriveGoal(session.Milestones),
		Status:       models.PlanStatusActive,
		SystemHabit:  DeriveSystemHabit(session.Milestones),
		Roadmap:      session.Milestones,
		EmailOptIn:   true,
	}
	if err := s.plans.Create(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to create active plan: %w", err)
	}

	// Delivery is best effort; the activation already succeeded.
	if err := s.webhooks.EnqueuePlanActivation(ctx, plan); err != nil {
		log.Printf("Failed to enqueue plan webhook for %s: %v", plan.ID, err)
	}

	confirmMsg := newModelMessage(fmt.Sprintf("Done. Your roadmap is on its way to %s. Now get to work.", email))
	session.Messages = append(session.Messages, confirmMsg)
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, user.ID, models.WSMessage{
		Type:    models.EventPlanActivated,
		Payload: models.SessionEvent{CoachID: coachID, Goal: plan.Goal},
	})

	return &models.SendMessageResponse{
		Messages:   []models.Message{confirmMsg},
		Milestones: session.Milestones,
	}, nil
}

// publishEvent pushes a session event onto the user's redis channel; the
// websocket hub relays it to connected clients. Publish failures only log.
func (s *ChatService) publishEvent(ctx context.Context, userID uuid.UUID, msg models.WSMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Failed to marshal session event: %v", err)
		return
	}
	if err := s.redis.Publish(ctx, "session_events:"+userID.String(), payload).Err(); err != nil {
		log.Printf("Failed to publish session event for %s: %v", userID, err)
	}
}

func newModelMessage(text string) models.Message {
	return models.Message{
		ID:        uuid.NewString(),
		Role:      models.RoleModel,
		Text:      text,
		Timestamp: time.Now(),
	}
}
