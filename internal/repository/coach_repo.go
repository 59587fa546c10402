package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"modecoach-backend/internal/models"
)

type CoachRepo struct {
	pool *pgxpool.Pool
}

func NewCoachRepo(pool *pgxpool.Pool) *CoachRepo {
	return &CoachRepo{pool: pool}
}

const coachColumns = `id, name, description, category, personality, system_instruction,
	avatar_initials, icon, greeting, created_by, creator_name, is_public, created_at`

func (r *CoachRepo) Create(ctx context.Context, c *models.Coach) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	query := `INSERT INTO coaches (id, name, description, category, personality, system_instruction,
		avatar_initials, icon, greeting, created_by, creator_name, is_public)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING created_at`

	return r.pool.QueryRow(ctx, query,
		c.ID, c.Name, c.Description, c.Category, c.Personality, c.SystemInstruction,
		c.AvatarInitials, c.Icon, c.Greeting, c.CreatedBy, c.CreatorName, c.IsPublic,
	).Scan(&c.CreatedAt)
}

func (r *CoachRepo) GetByID(ctx context.Context, id string) (*models.Coach, error) {
	c := &models.Coach{}
	query := `SELECT ` + coachColumns + ` FROM coaches WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.Description, &c.Category, &c.Personality, &c.SystemInstruction,
		&c.AvatarInitials, &c.Icon, &c.Greeting, &c.CreatedBy, &c.CreatorName, &c.IsPublic, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListPublic returns community coaches, newest first.
func (r *CoachRepo) ListPublic(ctx context.Context) ([]models.Coach, error) {
	query := `SELECT ` + coachColumns + ` FROM coaches WHERE is_public = TRUE ORDER BY created_at DESC`
	return r.list(ctx, query)
}

// ListByCreator returns the coaches a user created, newest first.
func (r *CoachRepo) ListByCreator(ctx context.Context, userID uuid.UUID) ([]models.Coach, error) {
	query := `SELECT ` + coachColumns + ` FROM coaches WHERE created_by = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, userID.String())
}

func (r *CoachRepo) list(ctx context.Context, query string, args ...interface{}) ([]models.Coach, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	coaches := make([]models.Coach, 0)
	for rows.Next() {
		c := models.Coach{}
		err := rows.Scan(
			&c.ID, &c.Name, &c.Description, &c.Category, &c.Personality, &c.SystemInstruction,
			&c.AvatarInitials, &c.Icon, &c.Greeting, &c.CreatedBy, &c.CreatorName, &c.IsPublic, &c.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		coaches = append(coaches, c)
	}
	return coaches, rows.Err()
}

func (r *CoachRepo) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM coaches WHERE created_by = $1", userID.String())
	return err
}
