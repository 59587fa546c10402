package models

import "time"

// Coach is a persona definition driving the model's system prompt.
// Built-in coaches ship with the binary; user-created ones live in Postgres.
type Coach struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Description       string     `json:"description"`
	Category          string     `json:"category"`
	Personality       *string    `json:"personality,omitempty"`
	SystemInstruction string     `json:"system_instruction"`
	AvatarInitials    string     `json:"avatar_initials"`
	Icon              *string    `json:"icon,omitempty"`
	Greeting          *string    `json:"greeting,omitempty"`
	CreatedBy         *string    `json:"created_by,omitempty"`
	CreatorName       *string    `json:"creator_name,omitempty"`
	IsPublic          bool       `json:"is_public"`
	CreatedAt         *time.Time `json:"created_at,omitempty"`
}

type CreateCoachRequest struct {
	Name              string  `json:"name"`
	Description       string  `json:"description"`
	Category          string  `json:"category"`
	Personality       *string `json:"personality"`
	SystemInstruction string  `json:"system_instruction"`
	AvatarInitials    string  `json:"avatar_initials"`
	Icon              *string `json:"icon"`
	Greeting          *string `json:"greeting"`
	IsPublic          bool    `json:"is_public"`
}

// GreetingText returns the coach greeting, falling back to a neutral opener.
func (c *Coach) GreetingText() string {
	if c.Greeting != nil && *c.Greeting != "" {
		return *c.Greeting
	}
	return "Hello. What is your goal for this session?"
}
