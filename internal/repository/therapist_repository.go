package repository

import (
	"context"
	"errors"

	"neuromatch/internal/database"
	"neuromatch/internal/domain/therapist"

	"github.com/jackc/pgx/v5"
)

type TherapistRepository interface {
	Create(ctx context.Context, t therapist.Therapist, passwordHash string) error
	FindByID(ctx context.Context, id string) (therapist.Therapist, error)
	FindByEmail(ctx context.Context, email string) (therapist.Therapist, string, error)
}

type PostgresTherapistRepository struct {
	db database.DB
}

func NewPostgresTherapistRepository(db database.DB) *PostgresTherapistRepository {
	return &PostgresTherapistRepository{db: db}
}

func (r *PostgresTherapistRepository) Create(ctx context.Context, t therapist.Therapist, passwordHash string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO therapists (id, email, password_hash, name, created_at) VALUES ($1,$2,$3,$4,$5)`,
		t.ID, t.Email, passwordHash, t.Name, t.CreatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *PostgresTherapistRepository) FindByID(ctx context.Context, id string) (therapist.Therapist, error) {
	row := r.db.QueryRow(ctx, `SELECT id, email, name, created_at FROM therapists WHERE id = $1`, id)

	var t therapist.Therapist
	if err := row.Scan(&t.ID, &t.Email, &t.Name, &t.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return therapist.Therapist{}, ErrNotFound
		}
		return therapist.Therapist{}, err
	}
	return t, nil
}

func (r *PostgresTherapistRepository) FindByEmail(ctx context.Context, email string) (therapist.Therapist, string, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, email, name, created_at, password_hash FROM therapists WHERE email = $1`, email)

	var t therapist.Therapist
	var hash string
	if err := row.Scan(&t.ID, &t.Email, &t.Name, &t.CreatedAt, &hash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return therapist.Therapist{}, "", ErrNotFound
		}
		return therapist.Therapist{}, "", err
	}
	return t, hash, nil
}
