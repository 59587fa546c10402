package models

// WSMessage is the envelope pushed to a connected client over the
// session-event socket.
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// Session event types emitted by the orchestrator.
const (
	EventRoadmapGenerated  = "plan_generated"
	EventActivationRequest = "activation_request"
	EventPlanActivated     = "plan_activated"
)

// SessionEvent is the payload for all session event types.
type SessionEvent struct {
	CoachID        string `json:"coach_id"`
	MilestoneCount int    `json:"milestone_count,omitempty"`
	Goal           string `json:"goal,omitempty"`
}
