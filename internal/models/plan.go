package models

import (
	"time"

	"github.com/google/uuid"
)

// Task types. An action is a one-off; a habit is a recurring ritual.
const (
	TaskTypeAction = "action"
	TaskTypeHabit  = "habit"
)

type TaskResource struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

type Task struct {
	ID          string        `json:"id"`
	Text        string        `json:"text"`
	IsCompleted bool          `json:"is_completed"`
	Type        string        `json:"type"`
	Resource    *TaskResource `json:"resource,omitempty"`
}

// Milestone is one macro phase of a generated roadmap. IsCompleted is
// derived: true iff every task is completed. It is recomputed on every task
// mutation and never set independently.
type Milestone struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Timeframe   string  `json:"timeframe"`
	Description *string `json:"description,omitempty"`
	Notes       *string `json:"notes,omitempty"`
	Tasks       []Task  `json:"tasks"`
	IsCompleted bool    `json:"is_completed"`
}

// RecomputeCompletion re-derives IsCompleted from the task list. An empty
// list derives complete (vacuously: there is nothing left to do).
func (m *Milestone) RecomputeCompletion() {
	done := true
	for _, t := range m.Tasks {
		if !t.IsCompleted {
			done = false
			break
		}
	}
	m.IsCompleted = done
}

// ActivePlan statuses.
const (
	PlanStatusActive    = "active"
	PlanStatusCompleted = "completed"
	PlanStatusArchived  = "archived"
)

// ActivePlan is the persisted record created by plan activation and shipped
// to the automation webhook.
type ActivePlan struct {
	ID           uuid.UUID   `json:"id"`
	UserID       uuid.UUID   `json:"user_id"`
	Email        string      `json:"email"`
	Name         string      `json:"name"`
	CoachPersona string      `json:"coach_persona"`
	Goal         string      `json:"goal"`
	Status       string      `json:"status"`
	SystemHabit  string      `json:"system_habit"`
	Roadmap      []Milestone `json:"roadmap"`
	EmailOptIn   bool        `json:"email_opt_in"`
	StartDate    time.Time   `json:"start_date"`
}
