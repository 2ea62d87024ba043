package dto

import (
	"time"

	"neuromatch/internal/domain/audit"
)

type AuditEntryResponse struct {
	ID               string    `json:"id"`
	EventType        string    `json:"eventType"`
	AccessedBy       string    `json:"accessedBy"`
	TargetUser       string    `json:"targetUser"`
	DataAccessed     []string  `json:"dataAccessed"`
	DataType         string    `json:"dataType"`
	SensitivityLevel string    `json:"sensitivityLevel"`
	Reason           string    `json:"reason"`
	Timestamp        time.Time `json:"timestamp"`
}

func FromAuditEntries(entries []audit.Entry) []AuditEntryResponse {
	out := make([]AuditEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, AuditEntryResponse{
			ID:               e.ID,
			EventType:        string(e.EventType),
			AccessedBy:       e.AccessedBy,
			TargetUser:       e.TargetUser,
			DataAccessed:     e.DataAccessed,
			DataType:         string(e.DataType),
			SensitivityLevel: string(e.SensitivityLevel),
			Reason:           e.Reason,
			Timestamp:        e.Timestamp,
		})
	}
	return out
}
