package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"modecoach-backend/internal/models"
)

const (
	WebhookQueue = "queue:webhooks"

	sourcePlan    = "MODE_APP_PLAN"
	sourceWelcome = "MODE_APP"
)

// WebhookJob is one queued outbound delivery. Payload carries the full
// request body so the worker never has to re-read application state.
type WebhookJob struct {
	ID      uuid.UUID       `json:"id"`
	URL     string          `json:"url"`
	Payload json.RawMessage `json:"payload"`
}

// WebhookService enqueues and delivers outbound automation webhooks.
// Deliveries are best effort: a failed POST is logged and dropped, never
// retried, and never surfaces to the user flow that triggered it.
type WebhookService struct {
	redis             *redis.Client
	httpClient        *http.Client
	planWebhookURL    string
	welcomeWebhookURL string
}

func NewWebhookService(redisClient *redis.Client, planURL, welcomeURL string) *WebhookService {
	return &WebhookService{
		redis:             redisClient,
		httpClient:        &http.Client{Timeout: 15 * time.Second},
		planWebhookURL:    planURL,
		welcomeWebhookURL: welcomeURL,
	}
}

type planWebhookPayload struct {
	Email        string             `json:"email"`
	Name         string             `json:"name"`
	CoachPersona string             `json:"coach_persona"`
	Goal         string             `json:"goal"`
	SystemHabit  string             `json:"system_habit"`
	Roadmap      []models.Milestone `json:"roadmap"`
	EmailOptIn   bool               `json:"email_opt_in"`
	Timestamp    string             `json:"timestamp"`
	Source       string             `json:"source"`
}

type welcomeWebhookPayload struct {
	Event     string `json:"event"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Timestamp string `json:"timestamp"`
	Source    string `json:"source"`
}

// EnqueuePlanActivation queues the plan-activation webhook for a newly
// activated plan.
func (s *WebhookService) EnqueuePlanActivation(ctx context.Context, plan *models.ActivePlan) error {
	if s.planWebhookURL == "" {
		return nil
	}
	payload, err := json.Marshal(planWebhookPayload{
		Email:        plan.Email,
		Name:         plan.Name,
		CoachPersona: plan.CoachPersona,
		Goal:         plan.Goal,
		SystemHabit:  plan.SystemHabit,
		Roadmap:      plan.Roadmap,
		EmailOptIn:   plan.EmailOptIn,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		Source:       sourcePlan,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal plan webhook payload: %w", err)
	}
	return s.enqueue(ctx, s.planWebhookURL, payload)
}

// EnqueueWelcome queues the new-signup webhook.
func (s *WebhookService) EnqueueWelcome(ctx context.Context, email, name string) error {
	if s.welcomeWebhookURL == "" {
		return nil
	}
	payload, err := json.Marshal(welcomeWebhookPayload{
		Event:     "new_user_signup",
		Email:     email,
		Name:      name,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Source:    sourceWelcome,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal welcome webhook payload: %w", err)
	}
	return s.enqueue(ctx, s.welcomeWebhookURL, payload)
}

func (s *WebhookService) enqueue(ctx context.Context, url string, payload json.RawMessage) error {
	job := WebhookJob{ID: uuid.New(), URL: url, Payload: payload}
	jobBytes, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook job: %w", err)
	}
	if err := s.redis.LPush(ctx, WebhookQueue, string(jobBytes)).Err(); err != nil {
		return fmt.Errorf("failed to enqueue webhook: %w", err)
	}
	return nil
}

// Deliver POSTs one queued job. Called from the worker pool.
func (s *WebhookService) Deliver(ctx context.Context, job *WebhookJob) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, job.URL, bytes.NewReader(job.Payload))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook delivery failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook endpoint returned status %d", resp.StatusCode)
	}
	log.Printf("Delivered webhook %s to %s", job.ID, job.URL)
	return nil
}
