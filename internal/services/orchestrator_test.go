package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"modecoach-backend/internal/models"
)

type fakeModel struct {
	reply string
	err   error
	calls int
}

func (f *fakeModel) Converse(_ context.Context, _ []models.Message, _, _ string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type fakeSessions struct {
	store map[string]*models.Session
	saves int
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{store: make(map[string]*models.Session)}
}

func (f *fakeSessions) Get(_ context.Context, userID uuid.UUID, coachID string) (*models.Session, error) {
	s, ok := f.store[models.SessionKey(userID, coachID)]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *s
	return &copied, nil
}

func (f *fakeSessions) Save(_ context.Context, s *models.Session) error {
	f.saves++
	copied := *s
	f.store[models.SessionKey(s.UserID, s.CoachID)] = &copied
	return nil
}

func (f *fakeSessions) Delete(_ context.Context, userID uuid.UUID, coachID string) error {
	delete(f.store, models.SessionKey(userID, coachID))
	return nil
}

type fakeCoaches struct{}

func (fakeCoaches) GetByID(_ context.Context, _ string) (*models.Coach, error) {
	return nil, pgx.ErrNoRows
}

type fakePlans struct {
	created []*models.ActivePlan
	err     error
}

func (f *fakePlans) Create(_ context.Context, p *models.ActivePlan) error {
	if f.err != nil {
		return f.err
	}
	p.ID = uuid.New()
	f.created = append(f.created, p)
	return nil
}

type fakeNotifier struct {
	plans []*models.ActivePlan
}

func (f *fakeNotifier) EnqueuePlanActivation(_ context.Context, plan *models.ActivePlan) error {
	f.plans = append(f.plans, plan)
	return nil
}

type chatFixture struct {
	svc      *ChatService
	model    *fakeModel
	sessions *fakeSessions
	plans    *fakePlans
	notifier *fakeNotifier
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()
	f := &chatFixture{
		model:    &fakeModel{},
		sessions: newFakeSessions(),
		plans:    &fakePlans{},
		notifier: &fakeNotifier{},
	}
	f.svc = NewChatService(
		f.model, f.sessions, fakeCoaches{}, f.plans, f.notifier,
		NewKeywordIntentClassifier(nil), newTestRedis(t), 3,
	)
	return f
}

func freeUser() *models.User {
	return &models.User{ID: uuid.New(), Plan: models.PlanFree, FullName: "Ana", Email: "ana@example.com"}
}

func proUser() *models.User {
	u := freeUser()
	u.Plan = models.PlanPro
	return u
}

func TestSendMessageFirstTurn(t *testing.T) {
	f := newChatFixture(t)
	f.model.reply = `{"chat_response": "Tell me more about that goal."}`

	resp, err := f.svc.SendMessage(context.Background(), freeUser(), "marcus", "I want to run a marathon")
	if err != nil {
		t.Fatalf("SendMessage returned error: %v", err)
	}
	if len(resp.Messages) != 2 {
		t.Fatalf("expected user+coach delta, got %d messages", len(resp.Messages))
	}
	if resp.Messages[0].Role != models.RoleUser || resp.Messages[1].Role != models.RoleModel {
		t.Errorf("unexpected delta roles %q/%q", resp.Messages[0].Role, resp.Messages[1].Role)
	}
	if resp.RoadmapGenerated || resp.ActivationRequested {
		t.Error("plain chat turn should raise no signals")
	}
	if f.sessions.saves != 1 {
		t.Errorf("saves = %d, want 1", f.sessions.saves)
	}
}

func TestSendMessageUnknownCoach(t *testing.T) {
	f := newChatFixture(t)
	var notFound *NotFoundError
	if _, err := f.svc.SendMessage(context.Background(), freeUser(), "nobody", "hi"); !errors.As(err, &notFound) {
		t.Errorf("error = %v, want NotFoundError", err)
	}
}

func TestSendMessageFreeGate(t *testing.T) {
	f := newChatFixture(t)
	user := freeUser()

	session := &models.Session{UserID: user.ID, CoachID: "marcus"}
	for i := 0; i < 3; i++ {
		session.Messages = append(session.Messages,
			models.Message{ID: fmt.Sprint(i), Role: models.RoleUser, Text: "hi"},
			models.Message{ID: fmt.Sprint(i) + "r", Role: models.RoleModel, Text: "hello"},
		)
	}
	f.sessions.Save(context.Background(), session)

	var paywall *PaywallError
	if _, err := f.svc.SendMessage(context.Background(), user, "marcus", "one more"); !errors.As(err, &paywall) {
		t.Fatalf("error = %v, want PaywallError", err)
	}
	if f.model.calls != 0 {
		t.Error("gated send must not reach the model")
	}

	// The same transcript is fine for a pro user.
	pro := proUser()
	session.UserID = pro.ID
	f.sessions.Save(context.Background(), session)
	f.model.reply = `{"chat_response": "Keep going."}`
	if _, err := f.svc.SendMessage(context.Background(), pro, "marcus", "one more"); err != nil {
		t.Errorf("pro send returned error: %v", err)
	}
}

func TestSendMessageInterception(t *testing.T) {
	f := newChatFixture(t)
	user := freeUser()

	f.sessions.Save(context.Background(), &models.Session{
		UserID:  user.ID,
		CoachID: "marcus",
		Messages: []models.Message{
			{ID: "1", Role: models.RoleUser, Text: "plan please"},
			{ID: "2", Role: models.RoleModel, Text: "Here is your plan."},
			{ID: "3", Role: models.RoleModel, Text: "Want this sent to your email?", IsEmailPrompt: true},
		},
		Milestones: []models.Milestone{{ID: "m1", Title: "Phase 1"}},
	})

	resp, err := f.svc.SendMessage(context.Background(), user, "marcus", "Sí, dale!")
	if err != nil {
		t.Fatalf("SendMessage returned error: %v", err)
	}
	if !resp.ActivationRequested {
		t.Error("confirmation answering the email prompt should request activation")
	}
	if f.model.calls != 0 {
		t.Error("interception must not spend a model turn")
	}
}

func TestSendMessageConfirmationWordingWithoutEmailPrompt(t *testing.T) {
	f := newChatFixture(t)
	user := freeUser()
	f.model.reply = `{"chat_response": "Phase 2 is about building momentum."}`

	// Draft present, but the last coach message is a plain reply, not the
	// email prompt. A keyword-bearing question is normal conversation.
	f.sessions.Save(context.Background(), &models.Session{
		UserID:  user.ID,
		CoachID: "marcus",
		Messages: []models.Message{
			{ID: "1", Role: models.RoleUser, Text: "plan please"},
			{ID: "2", Role: models.RoleModel, Text: "Here is your plan."},
		},
		Milestones: []models.Milestone{{ID: "m1", Title: "Phase 1"}},
	})

	resp, err := f.svc.SendMessage(context.Background(), user, "marcus", "ok, please explain phase 2")
	if err != nil {
		t.Fatalf("SendMessage returned error: %v", err)
	}
	if resp.ActivationRequested {
		t.Error("message over a plain coach reply must not request activation")
	}
	if f.model.calls != 1 {
		t.Errorf("model calls = %d, want 1", f.model.calls)
	}
}

func TestSendMessageNegationNotIntercepted(t *testing.T) {
	f := newChatFixture(t)
	user := freeUser()
	f.model.reply = `{"chat_response": "No rush. What feels uncertain?"}`

	f.sessions.Save(context.Background(), &models.Session{
		UserID:  user.ID,
		CoachID: "marcus",
		Messages: []models.Message{
			{ID: "1", Role: models.RoleUser, Text: "plan please"},
			{ID: "2", Role: models.RoleModel, Text: "Want this sent to your email?", IsEmailPrompt: true},
		},
		Milestones: []models.Milestone{{ID: "m1", Title: "Phase 1"}},
	})

	resp, err := f.svc.SendMessage(context.Background(), user, "marcus", "not sure")
	if err != nil {
		t.Fatalf("SendMessage returned error: %v", err)
	}
	if resp.ActivationRequested {
		t.Error("'not sure' must not be read as consent")
	}
	if f.model.calls != 1 {
		t.Errorf("model calls = %d, want 1", f.model.calls)
	}
}

func TestSendMessageMalformedReplyKeepsRoadmap(t *testing.T) {
	f := newChatFixture(t)
	user := freeUser()
	f.model.reply = "this is not JSON at all"

	existing := []models.Milestone{{ID: "m1", Title: "Phase 1", Tasks: []models.Task{{ID: "t1", Text: "run"}}}}
	f.sessions.Save(context.Background(), &models.Session{
		UserID:     user.ID,
		CoachID:    "marcus",
		Messages:   []models.Message{{ID: "1", Role: models.RoleModel, Text: "hi"}},
		Milestones: existing,
	})

	resp, err := f.svc.SendMessage(context.Background(), user, "marcus", "update my plan")
	if err != nil {
		t.Fatalf("SendMessage returned error: %v", err)
	}
	last := resp.Messages[len(resp.Messages)-1]
	if last.Text != fallbackMalformed {
		t.Errorf("fallback text = %q", last.Text)
	}
	if len(resp.Milestones) != 1 || resp.Milestones[0].ID != "m1" {
		t.Error("failed turn must leave the draft roadmap untouched")
	}
}

func TestSendMessageTransportError(t *testing.T) {
	f := newChatFixture(t)
	f.model.err = errors.New("connection reset")

	resp, err := f.svc.SendMessage(context.Background(), freeUser(), "marcus", "hello")
	if err != nil {
		t.Fatalf("SendMessage returned error: %v", err)
	}
	last := resp.Messages[len(resp.Messages)-1]
	if last.Text != fallbackOffline {
		t.Errorf("fallback text = %q", last.Text)
	}
}

func TestSendMessageRoadmapReplace(t *testing.T) {
	f := newChatFixture(t)
	user := freeUser()
	f.model.reply = `{
		"chat_response": "Here is the system.",
		"email_prompt": "Want this in your inbox?",
		"roadmap": {
			"generated": true,
			"milestones": [
				{"timeframe": "Phase 1", "title": "Foundation", "tasks": [
					{"text": "Run daily", "type": "habit"},
					{"text": "Buy shoes", "type": "action"}
				]}
			]
		}
	}`

	f.sessions.Save(context.Background(), &models.Session{
		UserID:     user.ID,
		CoachID:    "marcus",
		Messages:   []models.Message{{ID: "1", Role: models.RoleModel, Text: "hi"}},
		Milestones: []models.Milestone{{ID: "old", Title: "Old plan"}},
	})

	resp, err := f.svc.SendMessage(context.Background(), user, "marcus", "build me a plan")
	if err != nil {
		t.Fatalf("SendMessage returned error: %v", err)
	}
	if !resp.RoadmapGenerated {
		t.Fatal("expected RoadmapGenerated")
	}
	if len(resp.Milestones) != 1 || resp.Milestones[0].Title != "Foundation" {
		t.Fatalf("roadmap not replaced: %+v", resp.Milestones)
	}
	last := resp.Messages[len(resp.Messages)-1]
	if !last.IsEmailPrompt || last.Text != "Want this in your inbox?" {
		t.Errorf("expected trailing email prompt, got %+v", last)
	}
	for _, m := range resp.Milestones {
		if strings.HasPrefix(m.ID, "old") {
			t.Error("old milestone IDs survived the replace")
		}
	}
}

func TestSendMessageEmptyGeneratedRoadmapKeepsDraft(t *testing.T) {
	f := newChatFixture(t)
	user := freeUser()
	f.model.reply = `{"chat_response": "Let me think.", "roadmap": {"generated": true, "milestones": []}}`

	f.sessions.Save(context.Background(), &models.Session{
		UserID:     user.ID,
		CoachID:    "marcus",
		Messages:   []models.Message{{ID: "1", Role: models.RoleModel, Text: "hi"}},
		Milestones: []models.Milestone{{ID: "m1", Title: "Phase 1"}},
	})

	resp, err := f.svc.SendMessage(context.Background(), user, "marcus", "update my plan")
	if err != nil {
		t.Fatalf("SendMessage returned error: %v", err)
	}
	if resp.RoadmapGenerated {
		t.Error("empty generated roadmap must not raise the generated signal")
	}
	if len(resp.Milestones) != 1 || resp.Milestones[0].ID != "m1" {
		t.Errorf("draft should survive an empty generated roadmap, got %+v", resp.Milestones)
	}
}

func TestSendMessageInFlightLock(t *testing.T) {
	f := newChatFixture(t)
	user := freeUser()

	lockKey := "send_lock:" + models.SessionKey(user.ID, "marcus")
	f.svc.redis.SetNX(context.Background(), lockKey, "1", sendLockTTL)

	var inFlight *InFlightError
	if _, err := f.svc.SendMessage(context.Background(), user, "marcus", "hi"); !errors.As(err, &inFlight) {
		t.Errorf("error = %v, want InFlightError", err)
	}
}

func TestLoadSessionGreeting(t *testing.T) {
	f := newChatFixture(t)
	session, err := f.svc.LoadSession(context.Background(), uuid.New(), "marcus")
	if err != nil {
		t.Fatalf("LoadSession returned error: %v", err)
	}
	if len(session.Messages) != 1 || session.Messages[0].Role != models.RoleModel {
		t.Fatalf("fresh session should open with one coach greeting, got %+v", session.Messages)
	}
	if f.sessions.saves != 0 {
		t.Error("loading must not persist a fresh session")
	}
}

func TestToggleTaskRecomputesMilestone(t *testing.T) {
	f := newChatFixture(t)
	user := freeUser()

	f.sessions.Save(context.Background(), &models.Session{
		UserID:  user.ID,
		CoachID: "marcus",
		Milestones: []models.Milestone{{
			ID: "m1",
			Tasks: []models.Task{
				{ID: "t1", IsCompleted: true},
				{ID: "t2"},
			},
		}},
	})

	session, err := f.svc.ToggleTask(context.Background(), user.ID, "marcus", "m1", "t2")
	if err != nil {
		t.Fatalf("ToggleTask returned error: %v", err)
	}
	if !session.Milestones[0].Tasks[1].IsCompleted {
		t.Error("task not toggled on")
	}
	if !session.Milestones[0].IsCompleted {
		t.Error("milestone should derive completed when all tasks are done")
	}

	session, err = f.svc.ToggleTask(context.Background(), user.ID, "marcus", "m1", "t2")
	if err != nil {
		t.Fatalf("ToggleTask returned error: %v", err)
	}
	if session.Milestones[0].IsCompleted {
		t.Error("milestone should derive incomplete after toggling back off")
	}

	var notFound *NotFoundError
	if _, err := f.svc.ToggleTask(context.Background(), user.ID, "marcus", "m1", "missing"); !errors.As(err, &notFound) {
		t.Errorf("error = %v, want NotFoundError", err)
	}
}

func TestActivatePlan(t *testing.T) {
	f := newChatFixture(t)
	user := proUser()

	f.sessions.Save(context.Background(), &models.Session{
		UserID:  user.ID,
		CoachID: "marcus",
		Milestones: []models.Milestone{
			{ID: "m1", Title: "Foundation", Tasks: []models.Task{{ID: "t1", Text: "Run daily", Type: models.TaskTypeHabit}}},
			{ID: "m2", Title: "Race day", Tasks: []models.Task{{ID: "t2", Text: "Register", Type: models.TaskTypeAction}}},
		},
	})

	resp, err := f.svc.Activate(context.Background(), user, "marcus", "ana@example.com")
	if err != nil {
		t.Fatalf("Activate returned error: %v", err)
	}
	if len(f.plans.created) != 1 {
		t.Fatalf("plans created = %d, want 1", len(f.plans.created))
	}
	plan := f.plans.created[0]
	if plan.Goal != "Race day" {
		t.Errorf("goal = %q, want last milestone title", plan.Goal)
	}
	if plan.SystemHabit != "Run daily" {
		t.Errorf("system habit = %q", plan.SystemHabit)
	}
	if plan.CoachPersona != "Marcus" {
		t.Errorf("coach persona = %q", plan.CoachPersona)
	}
	if len(f.notifier.plans) != 1 {
		t.Error("webhook not enqueued")
	}
	if len(resp.Messages) != 1 || !strings.Contains(resp.Messages[0].Text, "ana@example.com") {
		t.Errorf("confirmation message should name the email, got %+v", resp.Messages)
	}
}

func TestActivateRequiresPro(t *testing.T) {
	f := newChatFixture(t)
	user := freeUser()
	f.sessions.Save(context.Background(), &models.Session{
		UserID:     user.ID,
		CoachID:    "marcus",
		Milestones: []models.Milestone{{ID: "m1", Title: "Phase 1"}},
	})

	var paywall *PaywallError
	if _, err := f.svc.Activate(context.Background(), user, "marcus", "ana@example.com"); !errors.As(err, &paywall) {
		t.Errorf("error = %v, want PaywallError", err)
	}
	if len(f.plans.created) != 0 {
		t.Error("gated activation must not create a plan")
	}
}

func TestActivateWithoutDraftPlan(t *testing.T) {
	f := newChatFixture(t)
	user := proUser()
	f.sessions.Save(context.Background(), &models.Session{UserID: user.ID, CoachID: "marcus"})

	var conflict *ConflictError
	if _, err := f.svc.Activate(context.Background(), user, "marcus", "ana@example.com"); !errors.As(err, &conflict) {
		t.Errorf("error = %v, want ConflictError", err)
	}
}

func TestActivateFailureLeavesSessionUntouched(t *testing.T) {
	f := newChatFixture(t)
	f.plans.err = errors.New("db down")
	user := proUser()

	f.sessions.Save(context.Background(), &models.Session{
		UserID:     user.ID,
		CoachID:    "marcus",
		Milestones: []models.Milestone{{ID: "m1", Title: "Phase 1", Tasks: []models.Task{{ID: "t1", Text: "x"}}}},
	})
	savesBefore := f.sessions.saves

	if _, err := f.svc.Activate(context.Background(), user, "marcus", "ana@example.com"); err == nil {
		t.Fatal("expected error when plan creation fails")
	}
	if f.sessions.saves != savesBefore {
		t.Error("failed activation must not write the session")
	}
	if len(f.notifier.plans) != 0 {
		t.Error("failed activation must not enqueue a webhook")
	}
}
