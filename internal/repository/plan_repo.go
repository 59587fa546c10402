package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"modecoach-backend/internal/models"
)

type PlanRepo struct {
	pool *pgxpool.Pool
}

func NewPlanRepo(pool *pgxpool.Pool) *PlanRepo {
	return &PlanRepo{pool: pool}
}

func (r *PlanRepo) Create(ctx context.Context, p *models.ActivePlan) error {
	p.ID = uuid.New()
	roadmapJSON, err := json.Marshal(p.Roadmap)
	if err != nil {
		return fmt.Errorf("failed to encode roadmap: %w", err)
	}

	query := `INSERT INTO active_plans (id, user_id, email, name, coach_persona, goal, status, system_habit, roadmap, email_opt_in)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING start_date`

	return r.pool.QueryRow(ctx, query,
		p.ID, p.UserID, p.Email, p.Name, p.CoachPersona, p.Goal, p.Status,
		p.SystemHabit, roadmapJSON, p.EmailOptIn,
	).Scan(&p.StartDate)
}

// ListByUser returns the user's activated plans, newest first.
func (r *PlanRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.ActivePlan, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, email, name, coach_persona, goal, status, system_habit, roadmap, email_opt_in, start_date
		FROM active_plans WHERE user_id = $1 ORDER BY start_date DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	plans := make([]models.ActivePlan, 0)
	for rows.Next() {
		p := models.ActivePlan{}
		var roadmapJSON []byte
		err := rows.Scan(
			&p.ID, &p.UserID, &p.Email, &p.Name, &p.CoachPersona, &p.Goal, &p.Status,
			&p.SystemHabit, &roadmapJSON, &p.EmailOptIn, &p.StartDate,
		)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(roadmapJSON, &p.Roadmap); err != nil {
			return nil, fmt.Errorf("corrupt roadmap for plan %s: %w", p.ID, err)
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

func (r *PlanRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := r.pool.Exec(ctx, "UPDATE active_plans SET status = $1 WHERE id = $2", status, id)
	return err
}

func (r *PlanRepo) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM active_plans WHERE user_id = $1", userID)
	return err
}
