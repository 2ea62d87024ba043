package dto

import (
	"time"

	"neuromatch/internal/domain/job"
)

type JobResponse struct {
	ID                    string            `json:"id"`
	CompanyID             string            `json:"companyId"`
	Title                 string            `json:"title"`
	Description           string            `json:"description,omitempty"`
	RequiredSkills        []string          `json:"requiredSkills,omitempty"`
	AccommodationsOffered []string          `json:"accommodationsOffered,omitempty"`
	Location              string            `json:"location,omitempty"`
	WorkMode              string            `json:"workMode,omitempty"`
	Attributes            map[string]string `json:"attributes,omitempty"`
	Status                string            `json:"status"`
	CreatedAt             time.Time         `json:"createdAt"`
}

func FromJob(j job.Job) JobResponse {
	return JobResponse{
		ID:                    j.ID,
		CompanyID:             j.CompanyID,
		Title:                 j.Title,
		Description:           j.Description,
		RequiredSkills:        j.RequiredSkills,
		AccommodationsOffered: j.AccommodationsOffered,
		Location:              j.Location,
		WorkMode:              string(j.WorkMode),
		Attributes:            j.Attributes,
		Status:                string(j.Status),
		CreatedAt:             j.CreatedAt,
	}
}
