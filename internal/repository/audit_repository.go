package repository

import (
	"context"
	"encoding/json"

	"neuromatch/internal/database"
	"neuromatch/internal/domain/audit"
)

// AuditRepository is append-only. Entries are never updated or deleted;
// retention is enforced by operational policy, not by application code.
type AuditRepository interface {
	Append(ctx context.Context, e audit.Entry) error
	ListByTarget(ctx context.Context, targetUser string, limit int) ([]audit.Entry, error)
	ListByAccessor(ctx context.Context, accessedBy string, limit int) ([]audit.Entry, error)
}

type PostgresAuditRepository struct {
	db database.DB
}

func NewPostgresAuditRepository(db database.DB) *PostgresAuditRepository {
	return &PostgresAuditRepository{db: db}
}

func (r *PostgresAuditRepository) Append(ctx context.Context, e audit.Entry) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO audit_log (id, event_type, accessed_by, target_user, data_accessed,
			data_type, sensitivity_level, reason, ip_address, ts)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		e.ID, string(e.EventType), e.AccessedBy, e.TargetUser, mustJSON(e.DataAccessed),
		string(e.DataType), string(e.SensitivityLevel), e.Reason, e.IPAddress, e.Timestamp,
	)
	return err
}

func (r *PostgresAuditRepository) ListByTarget(ctx context.Context, targetUser string, limit int) ([]audit.Entry, error) {
	return r.list(ctx,
		`SELECT id, event_type, accessed_by, target_user, data_accessed, data_type, sensitivity_level, reason, ip_address, ts
		 FROM audit_log WHERE target_user = $1 ORDER BY ts DESC LIMIT $2`,
		targetUser, normalizeLimit(limit))
}

func (r *PostgresAuditRepository) ListByAccessor(ctx context.Context, accessedBy string, limit int) ([]audit.Entry, error) {
	return r.list(ctx,
		`SELECT id, event_type, accessed_by, target_user, data_accessed, data_type, sensitivity_level, reason, ip_address, ts
		 FROM audit_log WHERE accessed_by = $1 ORDER BY ts DESC LIMIT $2`,
		accessedBy, normalizeLimit(limit))
}

func (r *PostgresAuditRepository) list(ctx context.Context, query string, args ...any) ([]audit.Entry, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]audit.Entry, 0)
	for rows.Next() {
		var (
			e                          audit.Entry
			dataRaw                    []byte
			eventType, dataType, level string
		)
		err := rows.Scan(&e.ID, &eventType, &e.AccessedBy, &e.TargetUser, &dataRaw,
			&dataType, &level, &e.Reason, &e.IPAddress, &e.Timestamp)
		if err != nil {
			return nil, err
		}
		e.EventType = audit.EventType(eventType)
		e.DataType = audit.DataType(dataType)
		e.SensitivityLevel = audit.Sensitivity(level)
		if err := json.Unmarshal(dataRaw, &e.DataAccessed); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 500 {
		return 100
	}
	return limit
}
