package services

import (
	"errors"
	"strings"
	"testing"
	"time"

	"modecoach-backend/internal/models"
)

const sampleReply = `{
  "chat_response": "Here is your plan.",
  "roadmap": {
    "generated": true,
    "milestones": [
      {
        "timeframe": "Week 1",
        "title": "Foundation",
        "tasks": [
          {"text": "Morning run", "type": "habit"},
          {"text": "Buy running shoes", "type": "action", "resource": {"title": "Find shoes", "url": "https://www.google.com/search?q=running+shoes"}}
        ]
      }
    ]
  }
}`

func TestParseCoachReplyGeneratedPlan(t *testing.T) {
	reply, err := ParseCoachReply(sampleReply)
	if err != nil {
		t.Fatalf("ParseCoachReply returned error: %v", err)
	}
	if !reply.Generated {
		t.Fatal("expected Generated=true")
	}
	if reply.ChatResponse != "Here is your plan." {
		t.Errorf("unexpected chat response %q", reply.ChatResponse)
	}

	milestones := BuildMilestones(reply.Roadmap, time.Now())
	if len(milestones) != 1 {
		t.Fatalf("expected 1 milestone, got %d", len(milestones))
	}
	m := milestones[0]
	if len(m.Tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(m.Tasks))
	}
	if m.Tasks[0].Type != models.TaskTypeHabit {
		t.Errorf("first task type = %q, want habit", m.Tasks[0].Type)
	}
	if m.Tasks[1].Type != models.TaskTypeAction {
		t.Errorf("second task type = %q, want action", m.Tasks[1].Type)
	}
	for i, task := range m.Tasks {
		if task.IsCompleted {
			t.Errorf("task %d starts completed", i)
		}
	}
	if m.Tasks[1].Resource == nil || m.Tasks[1].Resource.URL == "" {
		t.Error("second task should keep its resource link")
	}
}

func TestParseCoachReplyStripsCodeFence(t *testing.T) {
	fenced := "```json\n" + sampleReply + "\n```"
	reply, err := ParseCoachReply(fenced)
	if err != nil {
		t.Fatalf("ParseCoachReply returned error: %v", err)
	}
	if !reply.Generated {
		t.Error("expected Generated=true after fence strip")
	}
}

func TestParseCoachReplySalvagesSurroundingProse(t *testing.T) {
	noisy := "Sure thing!\n" + sampleReply + "\nLet me know."
	reply, err := ParseCoachReply(noisy)
	if err != nil {
		t.Fatalf("ParseCoachReply returned error: %v", err)
	}
	if reply.ChatResponse == "" {
		t.Error("expected chat response after salvage")
	}
}

func TestParseCoachReplyMalformed(t *testing.T) {
	cases := []string{
		"",
		"just some prose with no JSON at all",
		`{"roadmap": {"generated": true}}`,
		`{"chat_response": `,
	}
	for _, raw := range cases {
		if _, err := ParseCoachReply(raw); !errors.Is(err, ErrMalformedReply) {
			t.Errorf("ParseCoachReply(%q) error = %v, want ErrMalformedReply", raw, err)
		}
	}
}

func TestParseCoachReplyGeneratedWithoutMilestones(t *testing.T) {
	reply, err := ParseCoachReply(`{"chat_response": "Working on it.", "roadmap": {"generated": true, "milestones": []}}`)
	if err != nil {
		t.Fatalf("ParseCoachReply returned error: %v", err)
	}
	if reply.Generated {
		t.Error("a generated flag with no milestones must not count as a plan")
	}
	if len(reply.Roadmap) != 0 {
		t.Errorf("roadmap = %+v, want empty", reply.Roadmap)
	}
}

func TestBuildMilestonesTypeDefault(t *testing.T) {
	roadmap := []ReplyMilestone{{
		Timeframe: "Week 1",
		Title:     "Start",
		Tasks:     []ReplyTask{{Text: "Do the thing"}},
	}}
	milestones := BuildMilestones(roadmap, time.Now())
	if got := milestones[0].Tasks[0].Type; got != models.TaskTypeAction {
		t.Errorf("task type = %q, want action", got)
	}
}

func TestBuildMilestonesIDFormat(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	roadmap := []ReplyMilestone{
		{Title: "A", Tasks: []ReplyTask{{Text: "t1"}, {Text: "t2"}}},
		{Title: "B", Tasks: []ReplyTask{{Text: "t3"}}},
	}
	milestones := BuildMilestones(roadmap, now)
	if milestones[0].ID != "milestone-1700000000000-0" {
		t.Errorf("milestone ID = %q", milestones[0].ID)
	}
	if milestones[1].Tasks[0].ID != "task-1700000000000-1-0" {
		t.Errorf("task ID = %q", milestones[1].Tasks[0].ID)
	}
	if !strings.HasPrefix(milestones[0].Tasks[1].ID, "task-1700000000000-0-") {
		t.Errorf("task ID = %q", milestones[0].Tasks[1].ID)
	}
}

func TestDeriveGoalAndHabit(t *testing.T) {
	if got := DeriveGoal(nil); got != "Goal Achievement" {
		t.Errorf("DeriveGoal(nil) = %q", got)
	}
	if got := DeriveSystemHabit(nil); got != "Daily execution session" {
		t.Errorf("DeriveSystemHabit(nil) = %q", got)
	}

	milestones := []models.Milestone{
		{Title: "First", Tasks: []models.Task{{Text: "read", Type: models.TaskTypeAction}}},
		{Title: "Summit", Tasks: []models.Task{{Text: "run daily", Type: models.TaskTypeHabit}}},
	}
	if got := DeriveGoal(milestones); got != "Summit" {
		t.Errorf("DeriveGoal = %q, want Summit", got)
	}
	if got := DeriveSystemHabit(milestones); got != "run daily" {
		t.Errorf("DeriveSystemHabit = %q, want run daily", got)
	}
}
