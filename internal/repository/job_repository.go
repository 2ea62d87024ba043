package repository

import (
	"context"
	"encoding/json"
	"errors"

	"neuromatch/internal/database"
	"neuromatch/internal/domain/job"

	"github.com/jackc/pgx/v5"
)

type JobRepository interface {
	Create(ctx context.Context, j job.Job) error
	FindByID(ctx context.Context, id string) (job.Job, error)
	Update(ctx context.Context, j job.Job) error
	Close(ctx context.Context, id string) error
	ListActive(ctx context.Context) ([]job.Job, error)
}

type PostgresJobRepository struct {
	db database.DB
}

func NewPostgresJobRepository(db database.DB) *PostgresJobRepository {
	return &PostgresJobRepository{db: db}
}

const jobColumns = `id, company_id, title, description, required_skills, accommodations_offered,
	location, work_mode, attributes, status, created_at, updated_at`

func (r *PostgresJobRepository) Create(ctx context.Context, j job.Job) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO jobs (id, company_id, title, description, required_skills, accommodations_offered,
			location, work_mode, attributes, status, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		j.ID, j.CompanyID, j.Title, j.Description,
		mustJSON(j.RequiredSkills), mustJSON(j.AccommodationsOffered),
		j.Location, string(j.WorkMode), mustJSON(j.Attributes), string(j.Status),
		j.CreatedAt, j.UpdatedAt,
	)
	return err
}

func (r *PostgresJobRepository) FindByID(ctx context.Context, id string) (job.Job, error) {
	row := r.db.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
	return scanJob(row)
}

func (r *PostgresJobRepository) Update(ctx context.Context, j job.Job) error {
	n, err := r.db.Exec(ctx,
		`UPDATE jobs SET title=$2, description=$3, required_skills=$4, accommodations_offered=$5,
			location=$6, work_mode=$7, attributes=$8, updated_at=now()
		 WHERE id = $1`,
		j.ID, j.Title, j.Description,
		mustJSON(j.RequiredSkills), mustJSON(j.AccommodationsOffered),
		j.Location, string(j.WorkMode), mustJSON(j.Attributes),
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Close marks a job closed. Jobs are never deleted so existing matches and
// connections keep a valid reference.
func (r *PostgresJobRepository) Close(ctx context.Context, id string) error {
	n, err := r.db.Exec(ctx, `UPDATE jobs SET status='closed', updated_at=now() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresJobRepository) ListActive(ctx context.Context) ([]job.Job, error) {
	rows, err := r.db.Query(ctx, `SELECT `+jobColumns+` FROM jobs WHERE status = 'active'`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]job.Job, 0)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanJob(row database.Row) (job.Job, error) {
	var (
		j                   job.Job
		skillsRaw, accomRaw []byte
		attrsRaw            []byte
		workMode, status    string
	)

	err := row.Scan(&j.ID, &j.CompanyID, &j.Title, &j.Description, &skillsRaw, &accomRaw,
		&j.Location, &workMode, &attrsRaw, &status, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return job.Job{}, ErrNotFound
		}
		return job.Job{}, err
	}

	j.WorkMode = job.WorkMode(workMode)
	j.Status = job.Status(status)
	if err := json.Unmarshal(skillsRaw, &j.RequiredSkills); err != nil {
		return job.Job{}, err
	}
	if err := json.Unmarshal(accomRaw, &j.AccommodationsOffered); err != nil {
		return job.Job{}, err
	}
	if err := json.Unmarshal(attrsRaw, &j.Attributes); err != nil {
		return job.Job{}, err
	}

	return j, nil
}
