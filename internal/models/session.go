package models

import (
	"time"

	"github.com/google/uuid"
)

// Message roles. The transcript is append-only; insertion order is
// conversation order.
const (
	RoleUser   = "user"
	RoleModel  = "model"
	RoleSystem = "system"
)

type Message struct {
	ID            string    `json:"id"`
	Role          string    `json:"role"`
	Text          string    `json:"text"`
	Timestamp     time.Time `json:"timestamp"`
	IsEmailPrompt bool      `json:"is_email_prompt,omitempty"`
}

// Session is the chat state for one (user, coach) pair. Exactly one session
// exists per pair; the storage key is deterministic, not a collection.
type Session struct {
	UserID      uuid.UUID   `json:"user_id"`
	CoachID     string      `json:"coach_id"`
	Messages    []Message   `json:"messages"`
	Milestones  []Milestone `json:"milestones"`
	LastUpdated time.Time   `json:"last_updated"`
}

// SessionKey is the deterministic document key for a (user, coach) pair.
func SessionKey(userID uuid.UUID, coachID string) string {
	return userID.String() + "_" + coachID
}

// CountUserMessages returns the number of user-authored turns in the
// transcript. The free-tier gate is evaluated against this count.
func CountUserMessages(messages []Message) int {
	n := 0
	for _, m := range messages {
		if m.Role == RoleUser {
			n++
		}
	}
	return n
}
