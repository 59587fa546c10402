package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"modecoach-backend/internal/models"
)

// ErrMalformedReply marks a model reply that could not be parsed against the
// JSON contract. Recoverable: the orchestrator substitutes a fixed fallback
// message and leaves milestone state untouched.
var ErrMalformedReply = errors.New("model reply is not valid contract JSON")

// CoachReply is the validated shape of one model turn.
type CoachReply struct {
	ChatResponse string
	EmailPrompt  string
	Roadmap      []ReplyMilestone
	// Generated reports whether the model proposed a full plan this turn.
	// True only when the reply carries at least one milestone.
	Generated bool
}

type ReplyMilestone struct {
	Timeframe string
	Title     string
	Tasks     []ReplyTask
}

type ReplyTask struct {
	Text     string
	Type     string
	Resource *models.TaskResource
}

// contract wire types; every field beyond chat_response is optional.
type replyJSON struct {
	ChatResponse string       `json:"chat_response"`
	EmailPrompt  string       `json:"email_prompt"`
	Roadmap      *roadmapJSON `json:"roadmap"`
}

type roadmapJSON struct {
	Generated  bool `json:"generated"`
	Milestones []struct {
		Timeframe string `json:"timeframe"`
		Title     string `json:"title"`
		Tasks     []struct {
			Text     string               `json:"text"`
			Type     string               `json:"type"`
			Resource *models.TaskResource `json:"resource"`
		} `json:"tasks"`
	} `json:"milestones"`
}

// ParseCoachReply validates a raw model reply against the contract. Code
// fences are stripped and, when the reply carries prose around the object,
// the outermost JSON object is salvaged before giving up.
func ParseCoachReply(raw string) (*CoachReply, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var wire replyJSON
	if err := json.Unmarshal([]byte(cleaned), &wire); err != nil {
		start := strings.Index(cleaned, "{")
		end := strings.LastIndex(cleaned, "}")
		if start < 0 || end <= start {
			return nil, fmt.Errorf("%w: %v", ErrMalformedReply, err)
		}
		if err := json.Unmarshal([]byte(cleaned[start:end+1]), &wire); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedReply, err)
		}
	}

	if wire.ChatResponse == "" {
		return nil, fmt.Errorf("%w: missing chat_response", ErrMalformedReply)
	}

	reply := &CoachReply{
		ChatResponse: wire.ChatResponse,
		EmailPrompt:  wire.EmailPrompt,
	}

	// A "generated" flag with no milestones is not a plan; treating it as one
	// would wipe the existing draft with nothing to show for it.
	if wire.Roadmap != nil && wire.Roadmap.Generated && len(wire.Roadmap.Milestones) > 0 {
		reply.Generated = true
		for _, m := range wire.Roadmap.Milestones {
			rm := ReplyMilestone{Timeframe: m.Timeframe, Title: m.Title}
			for _, t := range m.Tasks {
				rm.Tasks = append(rm.Tasks, ReplyTask{Text: t.Text, Type: t.Type, Resource: t.Resource})
			}
			reply.Roadmap = append(reply.Roadmap, rm)
		}
	}

	return reply, nil
}

// BuildMilestones materializes a generated roadmap into session milestones.
// IDs are time-seeded plus index (unique enough within one session), task
// type defaults to action when the model omits it, and completion always
// starts false regardless of any prior plan.
func BuildMilestones(roadmap []ReplyMilestone, now time.Time) []models.Milestone {
	seed := now.UnixMilli()
	milestones := make([]models.Milestone, 0, len(roadmap))

	for i, m := range roadmap {
		milestone := models.Milestone{
			ID:        fmt.Sprintf("milestone-%d-%d", seed, i),
			Title:     m.Title,
			Timeframe: m.Timeframe,
		}
		for j, t := range m.Tasks {
			taskType := t.Type
			if taskType != models.TaskTypeHabit {
				taskType = models.TaskTypeAction
			}
			milestone.Tasks = append(milestone.Tasks, models.Task{
				ID:       fmt.Sprintf("task-%d-%d-%d", seed, i, j),
				Text:     t.Text,
				Type:     taskType,
				Resource: t.Resource,
			})
		}
		milestones = append(milestones, milestone)
	}

	return milestones
}

// DeriveGoal returns the title of the chronologically last milestone, or
// a fixed fallback when the roadmap is empty.
func DeriveGoal(milestones []models.Milestone) string {
	if len(milestones) == 0 {
		return "Goal Achievement"
	}
	return milestones[len(milestones)-1].Title
}

// DeriveSystemHabit returns the first habit-type task text in roadmap order,
// or a fixed fallback when the plan has no habit.
func DeriveSystemHabit(milestones []models.Milestone) string {
	for _, m := range milestones {
		for _, t := range m.Tasks {
			if t.Type == models.TaskTypeHabit {
				return t.Text
			}
		}
	}
	return "Daily execution session"
}
