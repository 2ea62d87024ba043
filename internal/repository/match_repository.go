package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"neuromatch/internal/database"
	"neuromatch/internal/domain/match"

	"github.com/jackc/pgx/v5"
)

type MatchRepository interface {
	Create(ctx context.Context, m match.Match) error
	FindByID(ctx context.Context, id string) (match.Match, error)
	ListByCandidate(ctx context.Context, candidateID string) ([]match.Match, error)
	ListByJob(ctx context.Context, jobID string) ([]match.Match, error)
	HasPendingForPair(ctx context.Context, candidateID, jobID string) (bool, error)

	// Conditional transitions. Each succeeds only while the row is still
	// pending, so concurrent accept/reject/expire resolve to at most one
	// terminal state.
	AcceptIfPending(ctx context.Context, id string, at time.Time) (bool, error)
	RejectIfPending(ctx context.Context, id string, at time.Time, reason string) (bool, error)
	ExpireIfPending(ctx context.Context, id string, at time.Time) (bool, error)
	ExpireAllPendingBefore(ctx context.Context, cutoff time.Time) ([]string, error)

	MarkCandidateNotified(ctx context.Context, id string) error
	ListNeedingRecalculation(ctx context.Context, limit int) ([]match.Match, error)
	UpdateScore(ctx context.Context, id string, score float64, breakdown match.ScoreBreakdown, method, justification string) error

	WithdrawPendingByCandidate(ctx context.Context, candidateID string, at time.Time) (int64, error)
	ScrubCandidateData(ctx context.Context, candidateID string) error
}

type PostgresMatchRepository struct {
	db database.DB
}

func NewPostgresMatchRepository(db database.DB) *PostgresMatchRepository {
	return &PostgresMatchRepository{db: db}
}

const matchColumns = `id, candidate_id, job_id, company_id, score, breakdown, ai_justification,
	candidate_data, status, matching_method, needs_recalculation, warnings,
	candidate_notified, company_can_view, rejection_reason, created_at, expires_at, accepted_at, rejected_at`

func (r *PostgresMatchRepository) Create(ctx context.Context, m match.Match) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO matches (`+matchColumns+`)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)`,
		m.ID, m.CandidateID, m.JobID, m.CompanyID, m.Score,
		mustJSON(m.Breakdown), m.AIJustification, mustJSON(m.CandidateData),
		string(m.Status), m.MatchingMethod, m.NeedsRecalculation, mustJSON(m.Warnings),
		m.CandidateNotified, m.CompanyCanView, m.RejectionReason,
		m.CreatedAt, m.ExpiresAt, m.AcceptedAt, m.RejectedAt,
	)
	return err
}

func (r *PostgresMatchRepository) FindByID(ctx context.Context, id string) (match.Match, error) {
	row := r.db.QueryRow(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = $1`, id)
	return scanMatch(row)
}

func (r *PostgresMatchRepository) ListByCandidate(ctx context.Context, candidateID string) ([]match.Match, error) {
	return r.list(ctx,
		`SELECT `+matchColumns+` FROM matches WHERE candidate_id = $1 ORDER BY created_at DESC`, candidateID)
}

func (r *PostgresMatchRepository) ListByJob(ctx context.Context, jobID string) ([]match.Match, error) {
	return r.list(ctx,
		`SELECT `+matchColumns+` FROM matches WHERE job_id = $1 ORDER BY score DESC`, jobID)
}

func (r *PostgresMatchRepository) HasPendingForPair(ctx context.Context, candidateID, jobID string) (bool, error) {
	row := r.db.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM matches WHERE candidate_id = $1 AND job_id = $2 AND status = 'pending'
		)`,
		candidateID, jobID)

	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PostgresMatchRepository) AcceptIfPending(ctx context.Context, id string, at time.Time) (bool, error) {
	n, err := r.db.Exec(ctx,
		`UPDATE matches SET status='accepted', accepted_at=$2, company_can_view=TRUE
		 WHERE id = $1 AND status = 'pending'`,
		id, at)
	return n > 0, err
}

func (r *PostgresMatchRepository) RejectIfPending(ctx context.Context, id string, at time.Time, reason string) (bool, error) {
	n, err := r.db.Exec(ctx,
		`UPDATE matches SET status='rejected', rejected_at=$2, rejection_reason=$3
		 WHERE id = $1 AND status = 'pending'`,
		id, at, reason)
	return n > 0, err
}

func (r *PostgresMatchRepository) ExpireIfPending(ctx context.Context, id string, at time.Time) (bool, error) {
	n, err := r.db.Exec(ctx,
		`UPDATE matches SET status='expired'
		 WHERE id = $1 AND status = 'pending' AND expires_at < $2`,
		id, at)
	return n > 0, err
}

// ExpireAllPendingBefore flips every overdue pending match and returns the
// affected ids. Safe to run concurrently with accept/reject: rows that
// transitioned in the meantime are skipped by the status predicate.
func (r *PostgresMatchRepository) ExpireAllPendingBefore(ctx context.Context, cutoff time.Time) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`UPDATE matches SET status='expired'
		 WHERE status = 'pending' AND expires_at < $1
		 RETURNING id`,
		cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *PostgresMatchRepository) MarkCandidateNotified(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `UPDATE matches SET candidate_notified=TRUE WHERE id = $1`, id)
	return err
}

func (r *PostgresMatchRepository) ListNeedingRecalculation(ctx context.Context, limit int) ([]match.Match, error) {
	if limit <= 0 {
		limit = 100
	}
	return r.list(ctx,
		`SELECT `+matchColumns+` FROM matches
		 WHERE needs_recalculation = TRUE AND status = 'pending'
		 ORDER BY created_at LIMIT $1`,
		limit)
}

func (r *PostgresMatchRepository) UpdateScore(ctx context.Context, id string, score float64, breakdown match.ScoreBreakdown, method, justification string) error {
	n, err := r.db.Exec(ctx,
		`UPDATE matches SET score=$2, breakdown=$3, matching_method=$4, ai_justification=$5, needs_recalculation=FALSE
		 WHERE id = $1 AND status = 'pending'`,
		id, score, mustJSON(breakdown), method, justification)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresMatchRepository) WithdrawPendingByCandidate(ctx context.Context, candidateID string, at time.Time) (int64, error) {
	return r.db.Exec(ctx,
		`UPDATE matches SET status='rejected', rejected_at=$2
		 WHERE candidate_id = $1 AND status = 'pending'`,
		candidateID, at)
}

// ScrubCandidateData blanks the redacted profile snapshots for GDPR erasure
// while keeping score history for platform statistics.
func (r *PostgresMatchRepository) ScrubCandidateData(ctx context.Context, candidateID string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE matches SET candidate_data='{}' WHERE candidate_id = $1`, candidateID)
	return err
}

func (r *PostgresMatchRepository) list(ctx context.Context, query string, args ...any) ([]match.Match, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]match.Match, 0)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanMatch(row database.Row) (match.Match, error) {
	var (
		m                                 match.Match
		breakdownRaw, dataRaw, warningsRaw []byte
		status                            string
	)

	err := row.Scan(&m.ID, &m.CandidateID, &m.JobID, &m.CompanyID, &m.Score,
		&breakdownRaw, &m.AIJustification, &dataRaw, &status, &m.MatchingMethod,
		&m.NeedsRecalculation, &warningsRaw, &m.CandidateNotified, &m.CompanyCanView,
		&m.RejectionReason, &m.CreatedAt, &m.ExpiresAt, &m.AcceptedAt, &m.RejectedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return match.Match{}, ErrNotFound
		}
		return match.Match{}, err
	}

	m.Status = match.Status(status)
	if err := json.Unmarshal(breakdownRaw, &m.Breakdown); err != nil {
		return match.Match{}, err
	}
	if err := json.Unmarshal(dataRaw, &m.CandidateData); err != nil {
		return match.Match{}, err
	}
	if err := json.Unmarshal(warningsRaw, &m.Warnings); err != nil {
		return match.Match{}, err
	}

	return m, nil
}
