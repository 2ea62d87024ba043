package candidate

import (
	"time"

	"neuromatch/internal/domain/privacy"
)

type Status string

const (
	StatusActive      Status = "active"
	StatusDeactivated Status = "deactivated"
	StatusDeleted     Status = "deleted"
)

// Preference keys recognised by the scoring engine.
const (
	PrefWorkMode = "work_mode"
	PrefHours    = "hours"
	PrefTeamSize = "team_size"
)

type Assessment struct {
	Completed       bool
	Strengths       []string
	TechnicalSkills []string
	SoftSkills      []string
	Score           int
}

// Profile holds candidate profile data. Diagnoses, MedicalHistory,
// AccommodationsNeeded and TherapistID are encrypted at rest by the
// repository layer and never leave the system without an explicit consent
// grant covering them.
type Profile struct {
	Name                 string
	Location             string
	Bio                  string
	Skills               []string
	Experience           string
	Education            string
	AccommodationsNeeded []string
	Preferences          map[string]string
	Diagnoses            []string
	MedicalHistory       string
	TherapistID          string
}

type Candidate struct {
	ID         string
	Email      string
	Profile    Profile
	Privacy    privacy.Settings
	Assessment Assessment
	Status     Status
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (c Candidate) HasTherapist() bool {
	return c.Profile.TherapistID != ""
}

// Matchable reports whether the candidate may appear in scoring runs:
// active, visible in search and assessed.
func (c Candidate) Matchable() bool {
	return c.Status == StatusActive && c.Privacy.VisibleInSearch && c.Assessment.Completed
}

// AllSkills merges profile skills with assessment-derived skills for scoring.
func (c Candidate) AllSkills() []string {
	seen := make(map[string]bool)
	out := make([]string, 0, len(c.Profile.Skills)+len(c.Assessment.TechnicalSkills)+len(c.Assessment.SoftSkills))
	for _, group := range [][]string{c.Profile.Skills, c.Assessment.TechnicalSkills, c.Assessment.SoftSkills} {
		for _, s := range group {
			if s == "" || seen[s] {
				continue
			}
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
