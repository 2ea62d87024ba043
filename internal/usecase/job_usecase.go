package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"neuromatch/internal/domain/id"
	"neuromatch/internal/domain/job"
	"neuromatch/internal/repository"
)

type JobInput struct {
	Title                 string
	Description           string
	RequiredSkills        []string
	AccommodationsOffered []string
	Location              string
	WorkMode              string
	Attributes            map[string]string
}

type JobUsecase interface {
	Create(ctx context.Context, companyID string, in JobInput) (job.Job, error)
	Get(ctx context.Context, jobID string) (job.Job, error)
	Update(ctx context.Context, companyID, jobID string, in JobInput) (job.Job, error)
	Close(ctx context.Context, companyID, jobID string) error
}

type Jobs struct {
	jobs repository.JobRepository
	now  func() time.Time

	// afterCreate fires once a posting is persisted; the container wires it
	// to a matching run so new jobs get scored without an explicit trigger.
	afterCreate func(jobID string)
}

func NewJobUsecase(jobs repository.JobRepository, afterCreate func(jobID string)) *Jobs {
	return &Jobs{jobs: jobs, now: time.Now, afterCreate: afterCreate}
}

func (u *Jobs) Create(ctx context.Context, companyID string, in JobInput) (job.Job, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return job.Job{}, ErrInvalidInput
	}
	mode := job.WorkMode(strings.ToLower(strings.TrimSpace(in.WorkMode)))
	switch mode {
	case job.WorkModeRemote, job.WorkModeHybrid, job.WorkModeOnsite, "":
	default:
		return job.Job{}, ErrInvalidInput
	}

	now := u.now().UTC()
	j := job.Job{
		ID:                    id.New(id.PrefixJob),
		CompanyID:             companyID,
		Title:                 title,
		Description:           strings.TrimSpace(in.Description),
		RequiredSkills:        in.RequiredSkills,
		AccommodationsOffered: in.AccommodationsOffered,
		Location:              strings.TrimSpace(in.Location),
		WorkMode:              mode,
		Attributes:            in.Attributes,
		Status:                job.StatusActive,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	if err := u.jobs.Create(ctx, j); err != nil {
		return job.Job{}, ErrInternal
	}

	if u.afterCreate != nil {
		u.afterCreate(j.ID)
	}
	return j, nil
}

func (u *Jobs) Get(ctx context.Context, jobID string) (job.Job, error) {
	j, err := u.jobs.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return job.Job{}, ErrJobNotFound
		}
		return job.Job{}, ErrInternal
	}
	return j, nil
}

func (u *Jobs) Update(ctx context.Context, companyID, jobID string, in JobInput) (job.Job, error) {
	j, err := u.ownedJob(ctx, companyID, jobID)
	if err != nil {
		return job.Job{}, err
	}

	j.Title = strings.TrimSpace(in.Title)
	j.Description = strings.TrimSpace(in.Description)
	j.RequiredSkills = in.RequiredSkills
	j.AccommodationsOffered = in.AccommodationsOffered
	j.Location = strings.TrimSpace(in.Location)
	j.WorkMode = job.WorkMode(strings.ToLower(strings.TrimSpace(in.WorkMode)))
	j.Attributes = in.Attributes
	j.UpdatedAt = u.now().UTC()

	if err := u.jobs.Update(ctx, j); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return job.Job{}, ErrJobNotFound
		}
		return job.Job{}, ErrInternal
	}
	return j, nil
}

func (u *Jobs) Close(ctx context.Context, companyID, jobID string) error {
	if _, err := u.ownedJob(ctx, companyID, jobID); err != nil {
		return err
	}
	if err := u.jobs.Close(ctx, jobID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrJobNotFound
		}
		return ErrInternal
	}
	return nil
}

func (u *Jobs) ownedJob(ctx context.Context, companyID, jobID string) (job.Job, error) {
	j, err := u.jobs.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return job.Job{}, ErrJobNotFound
		}
		return job.Job{}, ErrInternal
	}
	if j.CompanyID != companyID {
		return job.Job{}, ErrForbidden
	}
	return j, nil
}
