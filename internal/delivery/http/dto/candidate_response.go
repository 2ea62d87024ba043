package dto

import (
	"time"

	"neuromatch/internal/domain/candidate"
	"neuromatch/internal/usecase"
)

type AssessmentResponse struct {
	Completed       bool     `json:"completed"`
	Strengths       []string `json:"strengths,omitempty"`
	TechnicalSkills []string `json:"technicalSkills,omitempty"`
	SoftSkills      []string `json:"softSkills,omitempty"`
	Score           int      `json:"score,omitempty"`
}

type PrivacySettingsResponse struct {
	VisibleInSearch        bool `json:"visibleInSearch"`
	ShowRealName           bool `json:"showRealName"`
	ShareDiagnosis         bool `json:"shareDiagnosis"`
	ShareTherapistContact  bool `json:"shareTherapistContact"`
	ShareAssessmentDetails bool `json:"shareAssessmentDetails"`
}

// CandidateResponse is the self view: the full profile including the
// sensitive fields only the owner may see.
type CandidateResponse struct {
	ID                   string                  `json:"id"`
	Email                string                  `json:"email"`
	Name                 string                  `json:"name"`
	Location             string                  `json:"location,omitempty"`
	Bio                  string                  `json:"bio,omitempty"`
	Skills               []string                `json:"skills,omitempty"`
	Experience           string                  `json:"experience,omitempty"`
	Education            string                  `json:"education,omitempty"`
	AccommodationsNeeded []string                `json:"accommodationsNeeded,omitempty"`
	Preferences          map[string]string       `json:"preferences,omitempty"`
	Diagnoses            []string                `json:"diagnoses,omitempty"`
	MedicalHistory       string                  `json:"medicalHistory,omitempty"`
	TherapistID          string                  `json:"therapistId,omitempty"`
	Privacy              PrivacySettingsResponse `json:"privacy"`
	Assessment           AssessmentResponse      `json:"assessment"`
	Status               string                  `json:"status"`
	CreatedAt            time.Time               `json:"createdAt"`
}

func FromCandidate(c candidate.Candidate) CandidateResponse {
	return CandidateResponse{
		ID:                   c.ID,
		Email:                c.Email,
		Name:                 c.Profile.Name,
		Location:             c.Profile.Location,
		Bio:                  c.Profile.Bio,
		Skills:               c.Profile.Skills,
		Experience:           c.Profile.Experience,
		Education:            c.Profile.Education,
		AccommodationsNeeded: c.Profile.AccommodationsNeeded,
		Preferences:          c.Profile.Preferences,
		Diagnoses:            c.Profile.Diagnoses,
		MedicalHistory:       c.Profile.MedicalHistory,
		TherapistID:          c.Profile.TherapistID,
		Privacy:              PrivacySettingsResponse(c.Privacy),
		Assessment: AssessmentResponse{
			Completed:       c.Assessment.Completed,
			Strengths:       c.Assessment.Strengths,
			TechnicalSkills: c.Assessment.TechnicalSkills,
			SoftSkills:      c.Assessment.SoftSkills,
			Score:           c.Assessment.Score,
		},
		Status:    string(c.Status),
		CreatedAt: c.CreatedAt,
	}
}

// CandidateViewResponse is the gated projection released through the access
// gateway. Omitted fields were simply not on the allow-list.
type CandidateViewResponse struct {
	ID             string              `json:"id"`
	DisplayName    string              `json:"displayName"`
	Email          string              `json:"email,omitempty"`
	Skills         []string            `json:"skills,omitempty"`
	Assessment     *AssessmentResponse `json:"assessment,omitempty"`
	Diagnoses      []string            `json:"diagnoses,omitempty"`
	TherapistID    string              `json:"therapistId,omitempty"`
	Accommodations []string            `json:"accommodations,omitempty"`
	Experience     string              `json:"experience,omitempty"`
	Education      string              `json:"education,omitempty"`
	Location       string              `json:"location,omitempty"`
	Bio            string              `json:"bio,omitempty"`
}

func FromCandidateView(v usecase.CandidateView) CandidateViewResponse {
	out := CandidateViewResponse{
		ID:             v.ID,
		DisplayName:    v.DisplayName,
		Email:          v.Email,
		Skills:         v.Skills,
		Diagnoses:      v.Diagnoses,
		TherapistID:    v.TherapistID,
		Accommodations: v.Accommodations,
		Experience:     v.Experience,
		Education:      v.Education,
		Location:       v.Location,
		Bio:            v.Bio,
	}
	if v.Assessment != nil {
		out.Assessment = &AssessmentResponse{
			Completed:       v.Assessment.Completed,
			Strengths:       v.Assessment.Strengths,
			TechnicalSkills: v.Assessment.TechnicalSkills,
			SoftSkills:      v.Assessment.SoftSkills,
			Score:           v.Assessment.Score,
		}
	}
	return out
}
