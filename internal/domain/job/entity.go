package job

import "time"

type Status string

const (
	StatusActive Status = "active"
	StatusClosed Status = "closed"
)

type WorkMode string

const (
	WorkModeRemote WorkMode = "remote"
	WorkModeHybrid WorkMode = "hybrid"
	WorkModeOnsite WorkMode = "onsite"
)

// Job is owned by exactly one company. Jobs are closed, never hard-deleted.
type Job struct {
	ID                    string
	CompanyID             string
	Title                 string
	Description           string
	RequiredSkills        []string
	AccommodationsOffered []string
	Location              string
	WorkMode              WorkMode
	Attributes            map[string]string
	Status                Status
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func (j Job) Active() bool {
	return j.Status == StatusActive
}
