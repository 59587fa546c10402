package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"modecoach-backend/internal/models"
)

// SessionRepo persists chat transcripts and draft roadmaps. Per the product
// model there is exactly one session per (user, coach) pair; both tables are
// keyed by that pair and writes are last-write-wins.
type SessionRepo struct {
	pool *pgxpool.Pool
}

func NewSessionRepo(pool *pgxpool.Pool) *SessionRepo {
	return &SessionRepo{pool: pool}
}

// Get loads the stored session for a (user, coach) pair, joining the
// transcript with its draft roadmap. Returns pgx.ErrNoRows when the user has
// no session with this coach yet.
func (r *SessionRepo) Get(ctx context.Context, userID uuid.UUID, coachID string) (*models.Session, error) {
	s := &models.Session{UserID: userID, CoachID: coachID}

	var messagesJSON []byte
	err := r.pool.QueryRow(ctx,
		`SELECT messages, last_updated FROM sessions WHERE user_id = $1 AND coach_id = $2`,
		userID, coachID,
	).Scan(&messagesJSON, &s.LastUpdated)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(messagesJSON, &s.Messages); err != nil {
		return nil, fmt.Errorf("corrupt session transcript for %s: %w", models.SessionKey(userID, coachID), err)
	}

	var milestonesJSON []byte
	err = r.pool.QueryRow(ctx,
		`SELECT milestones FROM draft_plans WHERE user_id = $1 AND coach_id = $2`,
		userID, coachID,
	).Scan(&milestonesJSON)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		s.Milestones = []models.Milestone{}
	case err != nil:
		return nil, err
	default:
		if err := json.Unmarshal(milestonesJSON, &s.Milestones); err != nil {
			return nil, fmt.Errorf("corrupt draft plan for %s: %w", models.SessionKey(userID, coachID), err)
		}
	}

	return s, nil
}

// Save upserts the transcript and the draft roadmap. A stored non-empty
// transcript is never replaced by an empty one; the SQL guard backstops the
// service-level check so a loading race cannot wipe a restored session.
func (r *SessionRepo) Save(ctx context.Context, s *models.Session) error {
	messagesJSON, err := json.Marshal(s.Messages)
	if err != nil {
		return fmt.Errorf("failed to encode transcript: %w", err)
	}
	milestonesJSON, err := json.Marshal(s.Milestones)
	if err != nil {
		return fmt.Errorf("failed to encode milestones: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO sessions (user_id, coach_id, messages, last_updated)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, coach_id) DO UPDATE
		SET messages = EXCLUDED.messages, last_updated = NOW()
		WHERE jsonb_array_length(EXCLUDED.messages) > 0
		   OR jsonb_array_length(sessions.messages) = 0
	`, s.UserID, s.CoachID, messagesJSON)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO draft_plans (user_id, coach_id, milestones, last_updated)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, coach_id) DO UPDATE
		SET milestones = EXCLUDED.milestones, last_updated = NOW()
	`, s.UserID, s.CoachID, milestonesJSON)
	if err != nil {
		return fmt.Errorf("failed to save draft plan: %w", err)
	}

	return nil
}

// Delete removes the session and its draft plan (explicit reset).
func (r *SessionRepo) Delete(ctx context.Context, userID uuid.UUID, coachID string) error {
	if _, err := r.pool.Exec(ctx,
		"DELETE FROM sessions WHERE user_id = $1 AND coach_id = $2", userID, coachID); err != nil {
		return err
	}
	_, err := r.pool.Exec(ctx,
		"DELETE FROM draft_plans WHERE user_id = $1 AND coach_id = $2", userID, coachID)
	return err
}

func (r *SessionRepo) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, "DELETE FROM sessions WHERE user_id = $1", userID); err != nil {
		return err
	}
	_, err := r.pool.Exec(ctx, "DELETE FROM draft_plans WHERE user_id = $1", userID)
	return err
}
