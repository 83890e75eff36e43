package profiles

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when no profile exists for the requested executive.
var ErrNotFound = errors.New("profile not found")

// Repository defines profile persistence operations.
type Repository interface {
	GetByName(ctx context.Context, name string) (*Profile, error)
	Upsert(ctx context.Context, p *Profile) error
	List(ctx context.Context) ([]Profile, error)
}

// PostgresRepository implements Repository using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new profile repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) GetByName(ctx context.Context, name string) (*Profile, error) {
	var p Profile
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, title, company, communication_style, tone,
		        talking_points, expertise, created_at, updated_at
		 FROM executive_profiles
		 WHERE name = $1`,
		name,
	).Scan(&p.ID, &p.Name, &p.Title, &p.Company, &p.CommunicationStyle, &p.Tone,
		&p.TalkingPoints, &p.Expertise, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting profile %q: %w", name, err)
	}
	return &p, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, p *Profile) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO executive_profiles
		   (id, name, title, company, communication_style, tone, talking_points, expertise)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (name) DO UPDATE SET
		   title = EXCLUDED.title,
		   company = EXCLUDED.company,
		   communication_style = EXCLUDED.communication_style,
		   tone = EXCLUDED.tone,
		   talking_points = EXCLUDED.talking_points,
		   expertise = EXCLUDED.expertise,
		   updated_at = now()`,
		p.ID, p.Name, p.Title, p.Company, p.CommunicationStyle, p.Tone,
		p.TalkingPoints, p.Expertise,
	)
	if err != nil {
		return fmt.Errorf("upserting profile %q: %w", p.Name, err)
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]Profile, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, title, company, communication_style, tone,
		        talking_points, expertise, created_at, updated_at
		 FROM executive_profiles
		 ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing profiles: %w", err)
	}
	defer rows.Close()

	var profiles []Profile
	for rows.Next() {
		var p Profile
		if err := rows.Scan(&p.ID, &p.Name, &p.Title, &p.Company, &p.CommunicationStyle,
			&p.Tone, &p.TalkingPoints, &p.Expertise, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}
