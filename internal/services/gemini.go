package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"modecoach-backend/internal/models"
)

// roadmapDirective is prepended to every coach persona. It forces the model
// into the structured JSON contract the orchestrator parses: a conversational
// reply plus an optional three-phase roadmap with habit and action tasks.
const roadmapDirective = `
[GLOBAL ARCHITECTURE PROTOCOL]
MISSION: You are an expert Productivity Architect. Your goal is NOT just to list tasks. It is to install a SYSTEM.
The user needs clarity on WHERE they are going (Roadmap) and HOW to get there daily (System).

[OUTPUT FORMAT INSTRUCTION]
You must ALWAYS reply with a valid JSON object. Do not output raw markdown text outside the JSON.
Structure:
{
  "chat_response": "Your conversational reply here (brief, punchy, validating the vision).",
  "email_prompt": "A short, ONE-SENTENCE question strictly in your persona/tone asking if the user wants this roadmap sent to their email for accountability. ONLY include this if 'roadmap.generated' is true. If false, leave empty.",
  "roadmap": {
    "generated": boolean,
    "milestones": [
      {
        "timeframe": "e.g. Phase 1 (Foundation)",
        "title": "The name of this phase",
        "tasks": [
            {
                "text": "Specific actionable task",
                "type": "action",
                "resource": { "title": "Search: Topic", "url": "https://..." }
            }
        ]
      }
    ]
  }
}

[ROADMAP DESIGN RULES - THE "SYSTEM" APPROACH]
1. **THE ROADMAP (MACRO):** Break the journey into 3 distinct Phases (e.g., Phase 1: Foundation, Phase 2: Content Engine, Phase 3: Launch).
2. **THE SYSTEM (MICRO):** In Phase 1, you MUST include at least one "Recurring Habit".
   - This is the engine. It is not something you check off once. It is a ritual.
   - Set "type": "habit".
   - Example: "Write for 45 mins every morning at 8 AM."
3. **IMMEDIATE ACTION:** Phase 1 must also include 2-3 "Setup Actions" (One-off) to unblock the user immediately.
4. **RESOURCES:**
   - ALWAYS generate SEARCH QUERY URLs.
   - For YouTube: "https://www.youtube.com/results?search_query=[Insert+Topic+Here]"
   - For Google: "https://www.google.com/search?q=[Insert+Topic+Here]"

[COMPLEXITY LOGIC]
- **Goal:** "Write a book"
  -> **Bad Plan:** "Chapter 1, Chapter 2..."
  -> **Good System:**
     - Habit: "Write 500 words daily at 7 AM" (Type: habit)
     - Action: "Create Outline" (Type: action)
     - Action: "Setup Scrivener" (Type: action)

If the user is just chatting, set "roadmap.generated" to false.
`

type GeminiService struct {
	client   *genai.Client
	apiModel string
	rateChan chan struct{} // Token bucket
}

func NewGeminiService(apiKey string, concurrentReqs int) (*GeminiService, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	// Token bucket for rate limiting
	rateChan := make(chan struct{}, concurrentReqs)
	for i := 0; i < concurrentReqs; i++ {
		rateChan <- struct{}{}
	}

	return &GeminiService{
		client:   client,
		apiModel: "gemini-2.5-flash",
		rateChan: rateChan,
	}, nil
}

func (s *GeminiService) Close() {
	s.client.Close()
}

// acquireRate blocks until a rate slot is available
func (s *GeminiService) acquireRate(ctx context.Context) error {
	select {
	case <-s.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(2 * time.Minute):
		return fmt.Errorf("timeout waiting for Gemini rate slot")
	}
}

func (s *GeminiService) releaseRate() {
	s.rateChan <- struct{}{}
}

// Converse sends one chat turn in JSON mode: the persona instruction is
// combined with the roadmap directive, the transcript becomes chat history,
// and the raw reply text is returned for the orchestrator to parse.
func (s *GeminiService) Converse(ctx context.Context, history []models.Message, personaInstruction, newMessage string) (string, error) {
	if err := s.acquireRate(ctx); err != nil {
		return "", err
	}
	defer s.releaseRate()

	model := s.client.GenerativeModel(s.apiModel)
	model.SetTemperature(0.7)
	model.ResponseMIMEType = "application/json"
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(roadmapDirective + "\n\n[SPECIFIC COACH PERSONA]\n" + personaInstruction)},
	}

	cs := model.StartChat()
	for _, msg := range history {
		if msg.Role != models.RoleUser && msg.Role != models.RoleModel {
			continue
		}
		cs.History = append(cs.History, &genai.Content{
			Role:  msg.Role,
			Parts: []genai.Part{genai.Text(msg.Text)},
		})
	}

	resp, err := cs.SendMessage(ctx, genai.Text(newMessage))
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	return extractText(resp), nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text string
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text += string(t)
				}
			}
		}
	}
	return text
}
