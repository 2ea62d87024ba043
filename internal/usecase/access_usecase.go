package usecase

import (
	"context"
	"errors"

	"neuromatch/internal/audit"
	domaudit "neuromatch/internal/domain/audit"
	"neuromatch/internal/domain/candidate"
	"neuromatch/internal/domain/privacy"
	"neuromatch/internal/pkg/jwt"
	"neuromatch/internal/repository"
)

// Viewer identifies who is asking for candidate data.
type Viewer struct {
	ID        string
	Role      string
	IPAddress string
}

// CandidateView is the filtered projection released to a viewer. Fields
// absent from the governing allow-list stay zero-valued.
type CandidateView struct {
	ID             string
	DisplayName    string
	Email          string
	Skills         []string
	Assessment     *candidate.Assessment
	Diagnoses      []string
	MedicalHistory string
	TherapistID    string
	Accommodations []string
	Experience     string
	Education      string
	Location       string
	Bio            string
}

type AccessUsecase interface {
	ViewCandidate(ctx context.Context, viewer Viewer, candidateID string) (CandidateView, error)
	AccessHistory(ctx context.Context, viewer Viewer, candidateID string, limit int) ([]domaudit.Entry, error)
}

type Access struct {
	candidates  repository.CandidateRepository
	connections repository.ConnectionRepository
	recorder    *audit.Recorder
}

func NewAccessUsecase(
	candidates repository.CandidateRepository,
	connections repository.ConnectionRepository,
	recorder *audit.Recorder,
) *Access {
	return &Access{candidates: candidates, connections: connections, recorder: recorder}
}

// ViewCandidate is the single gate through which candidate data leaves the
// system. Every successful read lands in the audit log with the viewer's
// identity, the released fields and an access reason.
func (u *Access) ViewCandidate(ctx context.Context, viewer Viewer, candidateID string) (CandidateView, error) {
	c, err := u.candidates.FindByID(ctx, candidateID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return CandidateView{}, ErrCandidateNotFound
		}
		return CandidateView{}, ErrInternal
	}

	switch {
	case viewer.Role == jwt.RoleIndividual && viewer.ID == candidateID:
		return u.selfView(ctx, viewer, c), nil

	case viewer.Role == jwt.RoleTherapist:
		return u.therapistView(ctx, viewer, c)

	case viewer.Role == jwt.RoleCompany:
		return u.companyView(ctx, viewer, c)

	default:
		return CandidateView{}, ErrForbidden
	}
}

// AccessHistory lets a candidate inspect who accessed their data. Only the
// data subject may read their own trail.
func (u *Access) AccessHistory(ctx context.Context, viewer Viewer, candidateID string, limit int) ([]domaudit.Entry, error) {
	if viewer.Role != jwt.RoleIndividual || viewer.ID != candidateID {
		return nil, ErrForbidden
	}
	entries, err := u.recorder.History(ctx, candidateID, limit)
	if err != nil {
		return nil, ErrInternal
	}
	return entries, nil
}

func (u *Access) selfView(ctx context.Context, viewer Viewer, c candidate.Candidate) CandidateView {
	u.recorder.DataAccess(ctx, audit.AccessRecord{
		AccessedBy:   viewer.ID,
		TargetUser:   c.ID,
		DataAccessed: []string{"full_profile"},
		DataType:     domaudit.DataTypeProfile,
		Sensitivity:  domaudit.SensitivityLow,
		Reason:       domaudit.ReasonSelfAccess,
		IPAddress:    viewer.IPAddress,
	})

	return fullView(c)
}

// therapistView grants the full profile including the decrypted medical
// fields, but only to the therapist the candidate has linked on their own
// profile.
func (u *Access) therapistView(ctx context.Context, viewer Viewer, c candidate.Candidate) (CandidateView, error) {
	if c.Profile.TherapistID == "" || c.Profile.TherapistID != viewer.ID {
		return CandidateView{}, ErrForbidden
	}

	u.recorder.DataAccess(ctx, audit.AccessRecord{
		AccessedBy:   viewer.ID,
		TargetUser:   c.ID,
		DataAccessed: []string{"full_profile", privacy.FieldDiagnosis, "medical_history"},
		DataType:     domaudit.DataTypeMedical,
		Sensitivity:  domaudit.SensitivityHigh,
		Reason:       domaudit.ReasonTherapistPatientCare,
		IPAddress:    viewer.IPAddress,
	})

	return fullView(c), nil
}

func fullView(c candidate.Candidate) CandidateView {
	assessment := c.Assessment
	return CandidateView{
		ID:             c.ID,
		DisplayName:    c.Profile.Name,
		Email:          c.Email,
		Skills:         c.Profile.Skills,
		Assessment:     &assessment,
		Diagnoses:      c.Profile.Diagnoses,
		MedicalHistory: c.Profile.MedicalHistory,
		TherapistID:    c.Profile.TherapistID,
		Accommodations: c.Profile.AccommodationsNeeded,
		Experience:     c.Profile.Experience,
		Education:      c.Profile.Education,
		Location:       c.Profile.Location,
		Bio:            c.Profile.Bio,
	}
}

// companyView releases exactly the fields on the connection's sharedData
// allow-list. No active connection means no access at all.
func (u *Access) companyView(ctx context.Context, viewer Viewer, c candidate.Candidate) (CandidateView, error) {
	conn, err := u.connections.FindActiveBetween(ctx, c.ID, viewer.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return CandidateView{}, ErrForbidden
		}
		return CandidateView{}, ErrInternal
	}

	eff := privacy.Effective(conn.CustomPrivacy, c.Privacy)
	view := CandidateView{
		ID:          c.ID,
		DisplayName: privacy.DisplayName(eff.ShowRealName && privacy.Contains(conn.SharedData, privacy.FieldName), c.Profile.Name, c.ID),
	}

	released := []string{privacy.FieldName}
	sensitivity := domaudit.SensitivityMedium

	for _, field := range conn.SharedData {
		switch field {
		case privacy.FieldEmail:
			view.Email = c.Email
		case privacy.FieldSkills:
			view.Skills = c.Profile.Skills
		case privacy.FieldAssessment:
			if eff.ShareAssessmentDetails {
				assessment := c.Assessment
				view.Assessment = &assessment
			}
		case privacy.FieldDiagnosis:
			view.Diagnoses = c.Profile.Diagnoses
			sensitivity = domaudit.SensitivityHigh
		case privacy.FieldTherapist:
			view.TherapistID = c.Profile.TherapistID
			sensitivity = domaudit.SensitivityHigh
		case privacy.FieldAccommodations:
			view.Accommodations = c.Profile.AccommodationsNeeded
		case privacy.FieldExperience:
			view.Experience = c.Profile.Experience
		case privacy.FieldEducation:
			view.Education = c.Profile.Education
		default:
			continue
		}
		released = append(released, field)
	}

	u.recorder.DataAccess(ctx, audit.AccessRecord{
		AccessedBy:   viewer.ID,
		TargetUser:   c.ID,
		DataAccessed: released,
		DataType:     domaudit.DataTypeProfile,
		Sensitivity:  sensitivity,
		Reason:       domaudit.ReasonPipelineReview,
		IPAddress:    viewer.IPAddress,
	})

	return view, nil
}
