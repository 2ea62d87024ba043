package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"neuromatch/internal/database"
	"neuromatch/internal/domain/connection"
	"neuromatch/internal/domain/privacy"

	"github.com/jackc/pgx/v5"
)

type ConnectionRepository interface {
	Create(ctx context.Context, c connection.Connection) error
	FindByID(ctx context.Context, id string) (connection.Connection, error)
	FindActiveBetween(ctx context.Context, individualID, companyID string) (connection.Connection, error)
	ListByIndividual(ctx context.Context, individualID string) ([]connection.Connection, error)
	ListActiveByIndividual(ctx context.Context, individualID string) ([]connection.Connection, error)
	ListActiveByCompany(ctx context.Context, companyID string) ([]connection.Connection, error)

	// RevokeIfRevocable succeeds only while the connection is active and not
	// yet hired. Returns false when the row already left that window.
	RevokeIfRevocable(ctx context.Context, id string, at time.Time, reason string) (bool, error)
	RevokeAllByIndividual(ctx context.Context, individualID string, at time.Time, reason string) (int64, error)

	UpdateSharedData(ctx context.Context, id string, shared []string, overrides privacy.Overrides) error
	UpdateStage(ctx context.Context, id string, stage connection.Stage) error
	ExistsRevokedForPair(ctx context.Context, individualID, companyID string, since time.Time) (bool, error)
	ExistsActiveForMatch(ctx context.Context, individualID, jobID string) (bool, error)
}

type PostgresConnectionRepository struct {
	db database.DB
}

func NewPostgresConnectionRepository(db database.DB) *PostgresConnectionRepository {
	return &PostgresConnectionRepository{db: db}
}

const connectionColumns = `id, individual_id, company_id, job_id, type, status,
	shared_data, custom_privacy, pipeline_stage, opening_message,
	consent_given_at, revoked_at, revoked_reason, updated_at`

func (r *PostgresConnectionRepository) Create(ctx context.Context, c connection.Connection) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO connections (`+connectionColumns+`)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		c.ID, c.IndividualID, c.CompanyID, c.JobID, c.Type, string(c.Status),
		mustJSON(c.SharedData), mustJSON(c.CustomPrivacy), string(c.PipelineStage), c.OpeningMessage,
		c.ConsentGivenAt, c.RevokedAt, c.RevokedReason, c.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *PostgresConnectionRepository) FindByID(ctx context.Context, id string) (connection.Connection, error) {
	row := r.db.QueryRow(ctx, `SELECT `+connectionColumns+` FROM connections WHERE id = $1`, id)
	return scanConnection(row)
}

func (r *PostgresConnectionRepository) FindActiveBetween(ctx context.Context, individualID, companyID string) (connection.Connection, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+connectionColumns+` FROM connections
		 WHERE individual_id = $1 AND company_id = $2 AND status = 'active'
		 ORDER BY consent_given_at DESC LIMIT 1`,
		individualID, companyID)
	return scanConnection(row)
}

func (r *PostgresConnectionRepository) ListByIndividual(ctx context.Context, individualID string) ([]connection.Connection, error) {
	return r.list(ctx,
		`SELECT `+connectionColumns+` FROM connections WHERE individual_id = $1 ORDER BY consent_given_at DESC`,
		individualID)
}

func (r *PostgresConnectionRepository) ListActiveByIndividual(ctx context.Context, individualID string) ([]connection.Connection, error) {
	return r.list(ctx,
		`SELECT `+connectionColumns+` FROM connections
		 WHERE individual_id = $1 AND status = 'active' ORDER BY consent_given_at DESC`,
		individualID)
}

// ListActiveByCompany returns only active connections. Revoked consent cuts
// company read access immediately, so revoked rows never surface here.
func (r *PostgresConnectionRepository) ListActiveByCompany(ctx context.Context, companyID string) ([]connection.Connection, error) {
	return r.list(ctx,
		`SELECT `+connectionColumns+` FROM connections
		 WHERE company_id = $1 AND status = 'active' ORDER BY consent_given_at DESC`,
		companyID)
}

func (r *PostgresConnectionRepository) RevokeIfRevocable(ctx context.Context, id string, at time.Time, reason string) (bool, error) {
	n, err := r.db.Exec(ctx,
		`UPDATE connections SET status='revoked', revoked_at=$2, revoked_reason=$3, updated_at=$2
		 WHERE id = $1 AND status = 'active' AND pipeline_stage <> 'hired'`,
		id, at, reason)
	return n > 0, err
}

func (r *PostgresConnectionRepository) RevokeAllByIndividual(ctx context.Context, individualID string, at time.Time, reason string) (int64, error) {
	return r.db.Exec(ctx,
		`UPDATE connections SET status='revoked', revoked_at=$2, revoked_reason=$3, updated_at=$2
		 WHERE individual_id = $1 AND status = 'active' AND pipeline_stage <> 'hired'`,
		individualID, at, reason)
}

func (r *PostgresConnectionRepository) UpdateSharedData(ctx context.Context, id string, shared []string, overrides privacy.Overrides) error {
	n, err := r.db.Exec(ctx,
		`UPDATE connections SET shared_data=$2, custom_privacy=$3, updated_at=now()
		 WHERE id = $1 AND status = 'active'`,
		id, mustJSON(shared), mustJSON(overrides))
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresConnectionRepository) UpdateStage(ctx context.Context, id string, stage connection.Stage) error {
	n, err := r.db.Exec(ctx,
		`UPDATE connections SET pipeline_stage=$2, updated_at=now()
		 WHERE id = $1 AND status = 'active'`,
		id, string(stage))
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ExistsRevokedForPair reports whether the individual withdrew a connection
// with this company at or after the given instant.
func (r *PostgresConnectionRepository) ExistsRevokedForPair(ctx context.Context, individualID, companyID string, since time.Time) (bool, error) {
	row := r.db.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM connections
			WHERE individual_id = $1 AND company_id = $2 AND status = 'revoked' AND revoked_at >= $3
		)`,
		individualID, companyID, since)

	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// ExistsActiveForMatch reports whether the individual still holds an active
// connection for this job. Company-facing match reads check it so a revoked
// consent cuts access immediately.
func (r *PostgresConnectionRepository) ExistsActiveForMatch(ctx context.Context, individualID, jobID string) (bool, error) {
	row := r.db.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM connections
			WHERE individual_id = $1 AND job_id = $2 AND status = 'active'
		)`,
		individualID, jobID)

	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PostgresConnectionRepository) list(ctx context.Context, query string, args ...any) ([]connection.Connection, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]connection.Connection, 0)
	for rows.Next() {
		c, err := scanConnection(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanConnection(row database.Row) (connection.Connection, error) {
	var (
		c                    connection.Connection
		sharedRaw, customRaw []byte
		status, stage        string
	)

	err := row.Scan(&c.ID, &c.IndividualID, &c.CompanyID, &c.JobID, &c.Type, &status,
		&sharedRaw, &customRaw, &stage, &c.OpeningMessage,
		&c.ConsentGivenAt, &c.RevokedAt, &c.RevokedReason, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return connection.Connection{}, ErrNotFound
		}
		return connection.Connection{}, err
	}

	c.Status = connection.Status(status)
	c.PipelineStage = connection.Stage(stage)
	if err := json.Unmarshal(sharedRaw, &c.SharedData); err != nil {
		return connection.Connection{}, err
	}
	if err := json.Unmarshal(customRaw, &c.CustomPrivacy); err != nil {
		return connection.Connection{}, err
	}

	return c, nil
}
