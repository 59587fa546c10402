package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"modecoach-backend/internal/models"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestEnqueuePlanActivationPayload(t *testing.T) {
	rdb := newTestRedis(t)
	svc := NewWebhookService(rdb, "https://hooks.example.com/plan", "")

	plan := &models.ActivePlan{
		ID:           uuid.New(),
		Email:        "ana@example.com",
		Name:         "Ana",
		CoachPersona: "Marcus",
		Goal:         "Run a marathon",
		SystemHabit:  "Morning run",
		Roadmap: []models.Milestone{
			{ID: "milestone-1-0", Title: "Base fitness"},
		},
		EmailOptIn: true,
	}

	if err := svc.EnqueuePlanActivation(context.Background(), plan); err != nil {
		t.Fatalf("EnqueuePlanActivation returned error: %v", err)
	}

	raw, err := rdb.LPop(context.Background(), WebhookQueue).Result()
	if err != nil {
		t.Fatalf("queue read failed: %v", err)
	}

	var job WebhookJob
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		t.Fatalf("job unmarshal failed: %v", err)
	}
	if job.URL != "https://hooks.example.com/plan" {
		t.Errorf("job URL = %q", job.URL)
	}

	var payload map[string]any
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		t.Fatalf("payload unmarshal failed: %v", err)
	}
	if payload["source"] != "MODE_APP_PLAN" {
		t.Errorf("source = %v, want MODE_APP_PLAN", payload["source"])
	}
	if payload["email"] != "ana@example.com" {
		t.Errorf("email = %v", payload["email"])
	}
	if payload["system_habit"] != "Morning run" {
		t.Errorf("system_habit = %v", payload["system_habit"])
	}
	if _, ok := payload["timestamp"].(string); !ok {
		t.Error("payload missing timestamp")
	}
}

func TestEnqueueWelcomePayload(t *testing.T) {
	rdb := newTestRedis(t)
	svc := NewWebhookService(rdb, "", "https://hooks.example.com/welcome")

	if err := svc.EnqueueWelcome(context.Background(), "bob@example.com", "Bob"); err != nil {
		t.Fatalf("EnqueueWelcome returned error: %v", err)
	}

	raw, err := rdb.LPop(context.Background(), WebhookQueue).Result()
	if err != nil {
		t.Fatalf("queue read failed: %v", err)
	}

	var job WebhookJob
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		t.Fatalf("job unmarshal failed: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		t.Fatalf("payload unmarshal failed: %v", err)
	}
	if payload["event"] != "new_user_signup" {
		t.Errorf("event = %v", payload["event"])
	}
	if payload["source"] != "MODE_APP" {
		t.Errorf("source = %v, want MODE_APP", payload["source"])
	}
}

func TestEnqueueSkipsWhenURLUnset(t *testing.T) {
	rdb := newTestRedis(t)
	svc := NewWebhookService(rdb, "", "")

	if err := svc.EnqueueWelcome(context.Background(), "x@example.com", "X"); err != nil {
		t.Fatalf("EnqueueWelcome returned error: %v", err)
	}
	if n, _ := rdb.LLen(context.Background(), WebhookQueue).Result(); n != 0 {
		t.Errorf("queue length = %d, want 0", n)
	}
}

func TestDeliverPostsPayload(t *testing.T) {
	var gotBody []byte
	var gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		gotBody = buf
	}))
	defer server.Close()

	svc := NewWebhookService(newTestRedis(t), "", "")
	job := &WebhookJob{ID: uuid.New(), URL: server.URL, Payload: json.RawMessage(`{"event":"test"}`)}

	if err := svc.Deliver(context.Background(), job); err != nil {
		t.Fatalf("Deliver returned error: %v", err)
	}
	if gotContentType != "application/json" {
		t.Errorf("content type = %q", gotContentType)
	}
	if string(gotBody) != `{"event":"test"}` {
		t.Errorf("body = %q", gotBody)
	}
}

func TestDeliverErrorOnNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	svc := NewWebhookService(newTestRedis(t), "", "")
	job := &WebhookJob{ID: uuid.New(), URL: server.URL, Payload: json.RawMessage(`{}`)}

	if err := svc.Deliver(context.Background(), job); err == nil {
		t.Error("expected error on 502 response")
	}
}
