package match

import "time"

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
	StatusExpired  Status = "expired"
)

// Scoring methods. Keyword fallback marks the match for recalculation once
// the semantic oracle is reachable again.
const (
	MethodSemantic        = "semantic"
	MethodKeywordFallback = "keyword_fallback"
)

// Warnings attached to a match result or a matching run.
const (
	WarningNoEligibleCandidates = "no_eligible_candidates"
	WarningGenericRequirements  = "generic_requirements"
	WarningPreviousWithdrawal   = "previous_withdrawal"
)

// MatchTTL bounds how long a pending match stays actionable.
const MatchTTL = 7 * 24 * time.Hour

type ScoreBreakdown struct {
	Skills         float64
	Accommodations float64
	Preferences    float64
	Location       float64
}

// CandidateData is the redacted snapshot shown to a company while the match
// is pending: no diagnoses, no email, anonymized name unless the candidate
// opted into real-name display.
type CandidateData struct {
	DisplayName    string
	Skills         []string
	Experience     string
	Education      string
	Accommodations []string
	Location       string
}

// Match is an ephemeral, scored compatibility proposal between a candidate
// and a job. It is only materialized for scores >= the threshold and for
// visible, assessed candidates, and transitions exactly once out of pending.
type Match struct {
	ID                 string
	CandidateID        string
	JobID              string
	CompanyID          string
	Score              float64
	Breakdown          ScoreBreakdown
	AIJustification    string
	CandidateData      CandidateData
	Status             Status
	MatchingMethod     string
	NeedsRecalculation bool
	Warnings           []string
	CandidateNotified  bool
	CompanyCanView     bool
	RejectionReason    string
	CreatedAt          time.Time
	ExpiresAt          time.Time
	AcceptedAt         *time.Time
	RejectedAt         *time.Time
}

func (m Match) Terminal() bool {
	return m.Status != StatusPending
}

func (m Match) ExpiredAt(now time.Time) bool {
	return now.After(m.ExpiresAt)
}
