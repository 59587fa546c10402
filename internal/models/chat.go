package models

// SendMessageRequest is the payload for a chat turn.
type SendMessageRequest struct {
	Text string `json:"text"`
}

// SendMessageResponse carries the transcript delta produced by one send plus
// the UI-facing signals the orchestrator raised while handling it.
type SendMessageResponse struct {
	Messages            []Message   `json:"messages"`
	Milestones          []Milestone `json:"milestones"`
	RoadmapGenerated    bool        `json:"roadmap_generated"`
	ActivationRequested bool        `json:"activation_requested"`
}

// ToggleTaskRequest addresses one task inside one milestone.
type ToggleTaskRequest struct {
	MilestoneID string `json:"milestone_id"`
	TaskID      string `json:"task_id"`
}

type UpdateMilestoneRequest struct {
	Notes *string `json:"notes"`
}

type ActivatePlanRequest struct {
	Email string `json:"email"`
}
