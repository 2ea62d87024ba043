package dto

import (
	"time"

	"neuromatch/internal/domain/connection"
)

type ConnectionResponse struct {
	ID             string     `json:"id"`
	IndividualID   string     `json:"individualId"`
	CompanyID      string     `json:"companyId"`
	JobID          string     `json:"jobId"`
	Type           string     `json:"type"`
	Status         string     `json:"status"`
	SharedData     []string   `json:"sharedData"`
	PipelineStage  string     `json:"pipelineStage"`
	OpeningMessage string     `json:"openingMessage,omitempty"`
	ConsentGivenAt time.Time  `json:"consentGivenAt"`
	RevokedAt      *time.Time `json:"revokedAt,omitempty"`
	RevokedReason  string     `json:"revokedReason,omitempty"`
}

// FromConnection renders the candidate-side view, including the private
// revocation reason.
func FromConnection(c connection.Connection) ConnectionResponse {
	return ConnectionResponse{
		ID:             c.ID,
		IndividualID:   c.IndividualID,
		CompanyID:      c.CompanyID,
		JobID:          c.JobID,
		Type:           c.Type,
		Status:         string(c.Status),
		SharedData:     c.SharedData,
		PipelineStage:  string(c.PipelineStage),
		OpeningMessage: c.OpeningMessage,
		ConsentGivenAt: c.ConsentGivenAt,
		RevokedAt:      c.RevokedAt,
		RevokedReason:  c.RevokedReason,
	}
}

// FromConnectionForCompany strips the candidate's private revocation reason.
func FromConnectionForCompany(c connection.Connection) ConnectionResponse {
	out := FromConnection(c)
	out.RevokedReason = ""
	return out
}

func FromConnections(cs []connection.Connection) []ConnectionResponse {
	out := make([]ConnectionResponse, 0, len(cs))
	for _, c := range cs {
		out = append(out, FromConnection(c))
	}
	return out
}

func FromConnectionsForCompany(cs []connection.Connection) []ConnectionResponse {
	out := make([]ConnectionResponse, 0, len(cs))
	for _, c := range cs {
		out = append(out, FromConnectionForCompany(c))
	}
	return out
}
