package connection

import (
	"time"

	"neuromatch/internal/domain/privacy"
)

type Status string

const (
	StatusActive  Status = "active"
	StatusRevoked Status = "revoked"
)

// Stage is the company-side recruiting funnel position of a Connection.
type Stage string

const (
	StageNewMatches   Stage = "newMatches"
	StageUnderReview  Stage = "underReview"
	StageInterviewing Stage = "interviewing"
	StageOffered      Stage = "offered"
	StageHired        Stage = "hired"
	StageRejected     Stage = "rejected"
)

func ValidStage(s Stage) bool {
	switch s {
	case StageNewMatches, StageUnderReview, StageInterviewing, StageOffered, StageHired, StageRejected:
		return true
	}
	return false
}

const TypeJobMatch = "job_match"

// Connection is the durable consent record created when a candidate accepts
// a match. RevokedReason is private to the candidate and never surfaced to
// the company. Connections are never hard-deleted; GDPR erasure anonymizes
// linked PII but retains the row.
type Connection struct {
	ID             string
	IndividualID   string
	CompanyID      string
	JobID          string
	Type           string
	Status         Status
	SharedData     []string
	CustomPrivacy  privacy.Overrides
	PipelineStage  Stage
	OpeningMessage string
	ConsentGivenAt time.Time
	RevokedAt      *time.Time
	RevokedReason  string
	UpdatedAt      time.Time
}

func (c Connection) Active() bool {
	return c.Status == StatusActive
}

// Revocable reports whether consent may still be withdrawn. Hiring
// forecloses revocation permanently.
func (c Connection) Revocable() bool {
	return c.Status == StatusActive && c.PipelineStage != StageHired
}
