package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"neuromatch/internal/domain/candidate"
	"neuromatch/internal/domain/privacy"
	"neuromatch/internal/infrastructure/cache"
	"neuromatch/internal/repository"
)

type UpdateProfileInput struct {
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

type SubmitAssessmentInput struct {
	Strengths       []string
	TechnicalSkills []string
	SoftSkills      []string
	Score           int
}

type CandidateUsecase interface {
	Get(ctx context.Context, candidateID string) (candidate.Candidate, error)
	UpdateProfile(ctx context.Context, candidateID string, in UpdateProfileInput) (candidate.Candidate, error)
	UpdatePrivacy(ctx context.Context, candidateID string, s privacy.Settings) (candidate.Candidate, error)
	SubmitAssessment(ctx context.Context, candidateID string, in SubmitAssessmentInput) (candidate.Candidate, error)
}

type Candidates struct {
	candidates repository.CandidateRepository
	cache      *cache.Redis
	now        func() time.Time

	// afterAssessment fires once a completed assessment is stored; the
	// container wires it to a matching run over all active jobs.
	afterAssessment func(candidateID string)
}

func NewCandidateUsecase(candidates repository.CandidateRepository, c *cache.Redis, afterAssessment func(candidateID string)) *Candidates {
	return &Candidates{candidates: candidates, cache: c, now: time.Now, afterAssessment: afterAssessment}
}

func (u *Candidates) Get(ctx context.Context, candidateID string) (candidate.Candidate, error) {
	c, err := u.candidates.FindByID(ctx, candidateID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return candidate.Candidate{}, ErrCandidateNotFound
		}
		return candidate.Candidate{}, ErrInternal
	}
	return c, nil
}

func (u *Candidates) UpdateProfile(ctx context.Context, candidateID string, in UpdateProfileInput) (candidate.Candidate, error) {
	c, err := u.Get(ctx, candidateID)
	if err != nil {
		return candidate.Candidate{}, err
	}

	c.Profile = candidate.Profile{
		Name:                 strings.TrimSpace(in.Name),
		Location:             strings.TrimSpace(in.Location),
		Bio:                  strings.TrimSpace(in.Bio),
		Skills:               in.Skills,
		Experience:           in.Experience,
		Education:            in.Education,
		AccommodationsNeeded: in.AccommodationsNeeded,
		Preferences:          in.Preferences,
		Diagnoses:            in.Diagnoses,
		MedicalHistory:       in.MedicalHistory,
		TherapistID:          strings.TrimSpace(in.TherapistID),
	}
	c.UpdatedAt = u.now().UTC()

	if err := u.candidates.UpdateProfile(ctx, c); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return candidate.Candidate{}, ErrCandidateNotFound
		}
		return candidate.Candidate{}, ErrInternal
	}

	u.cache.Delete(ctx, cache.PrivacyPreviewKey(candidateID))
	return c, nil
}

// UpdatePrivacy swaps the candidate's global sharing settings. Existing
// connections keep their recorded sharedData; only future consent grants and
// per-connection customizations see the new defaults.
func (u *Candidates) UpdatePrivacy(ctx context.Context, candidateID string, s privacy.Settings) (candidate.Candidate, error) {
	c, err := u.Get(ctx, candidateID)
	if err != nil {
		return candidate.Candidate{}, err
	}

	if err := u.candidates.UpdatePrivacy(ctx, candidateID, s); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return candidate.Candidate{}, ErrCandidateNotFound
		}
		return candidate.Candidate{}, ErrInternal
	}

	c.Privacy = s
	u.cache.Delete(ctx, cache.PrivacyPreviewKey(candidateID))
	return c, nil
}

func (u *Candidates) SubmitAssessment(ctx context.Context, candidateID string, in SubmitAssessmentInput) (candidate.Candidate, error) {
	c, err := u.Get(ctx, candidateID)
	if err != nil {
		return candidate.Candidate{}, err
	}

	a := candidate.Assessment{
		Completed:       true,
		Strengths:       in.Strengths,
		TechnicalSkills: in.TechnicalSkills,
		SoftSkills:      in.SoftSkills,
		Score:           in.Score,
	}

	if err := u.candidates.UpdateAssessment(ctx, candidateID, a); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return candidate.Candidate{}, ErrCandidateNotFound
		}
		return candidate.Candidate{}, ErrInternal
	}

	c.Assessment = a

	if u.afterAssessment != nil {
		u.afterAssessment(candidateID)
	}
	return c, nil
}
