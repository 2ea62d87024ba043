package dto

import (
	"time"

	"neuromatch/internal/domain/match"
)

type ScoreBreakdownResponse struct {
	Skills         float64 `json:"skills"`
	Accommodations float64 `json:"accommodations"`
	Preferences    float64 `json:"preferences"`
	Location       float64 `json:"location"`
}

type CandidateDataResponse struct {
	DisplayName    string   `json:"displayName"`
	Skills         []string `json:"skills"`
	Experience     string   `json:"experience,omitempty"`
	Education      string   `json:"education,omitempty"`
	Accommodations []string `json:"accommodations,omitempty"`
	Location       string   `json:"location,omitempty"`
}

type MatchResponse struct {
	ID                 string                 `json:"id"`
	CandidateID        string                 `json:"candidateId,omitempty"`
	JobID              string                 `json:"jobId"`
	CompanyID          string                 `json:"companyId"`
	Score              float64                `json:"score"`
	Breakdown          ScoreBreakdownResponse `json:"breakdown"`
	AIJustification    string                 `json:"aiJustification"`
	CandidateData      CandidateDataResponse  `json:"candidateData"`
	Status             string                 `json:"status"`
	MatchingMethod     string                 `json:"matchingMethod"`
	NeedsRecalculation bool                   `json:"needsRecalculation,omitempty"`
	Warnings           []string               `json:"warnings,omitempty"`
	CreatedAt          time.Time              `json:"createdAt"`
	ExpiresAt          time.Time              `json:"expiresAt"`
	AcceptedAt         *time.Time             `json:"acceptedAt,omitempty"`
	RejectedAt         *time.Time             `json:"rejectedAt,omitempty"`
}

func FromMatch(m match.Match) MatchResponse {
	return MatchResponse{
		ID:                 m.ID,
		CandidateID:        m.CandidateID,
		JobID:              m.JobID,
		CompanyID:          m.CompanyID,
		Score:              m.Score,
		Breakdown:          ScoreBreakdownResponse(m.Breakdown),
		AIJustification:    m.AIJustification,
		CandidateData:      CandidateDataResponse(m.CandidateData),
		Status:             string(m.Status),
		MatchingMethod:     m.MatchingMethod,
		NeedsRecalculation: m.NeedsRecalculation,
		Warnings:           m.Warnings,
		CreatedAt:          m.CreatedAt,
		ExpiresAt:          m.ExpiresAt,
		AcceptedAt:         m.AcceptedAt,
		RejectedAt:         m.RejectedAt,
	}
}

// FromMatchForCompany hides the raw candidate id on pending matches; the
// redacted snapshot is the only identity a company gets.
func FromMatchForCompany(m match.Match) MatchResponse {
	out := FromMatch(m)
	if m.Status == match.StatusPending {
		out.CandidateID = ""
	}
	return out
}

func FromMatches(ms []match.Match) []MatchResponse {
	out := make([]MatchResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, FromMatch(m))
	}
	return out
}

func FromMatchesForCompany(ms []match.Match) []MatchResponse {
	out := make([]MatchResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, FromMatchForCompany(m))
	}
	return out
}
