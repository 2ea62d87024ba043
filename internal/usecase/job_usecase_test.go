package usecase

import (
	"context"
	"errors"
	"testing"

	"neuromatch/internal/domain/job"
)

func TestCreateJob_TriggersMatchingRun(t *testing.T) {
	var triggered []string
	uc := NewJobUsecase(newMockJobRepo(), func(jobID string) {
		triggered = append(triggered, jobID)
	})

	j, err := uc.Create(context.Background(), "comp_1", JobInput{
		Title:          "Backend Engineer",
		RequiredSkills: []string{"Go"},
		WorkMode:       "remote",
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if j.Status != job.StatusActive {
		t.Fatalf("new posting must be active, got %q", j.Status)
	}
	if len(triggered) != 1 || triggered[0] != j.ID {
		t.Fatalf("job creation must trigger a matching run for the new posting, got %v", triggered)
	}
}

func TestCreateJob_InvalidInputDoesNotTrigger(t *testing.T) {
	var triggered []string
	uc := NewJobUsecase(newMockJobRepo(), func(jobID string) {
		triggered = append(triggered, jobID)
	})

	if _, err := uc.Create(context.Background(), "comp_1", JobInput{Title: "   "}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := uc.Create(context.Background(), "comp_1", JobInput{Title: "Ok", WorkMode: "teleport"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown work mode, got %v", err)
	}
	if len(triggered) != 0 {
		t.Fatalf("rejected postings must not trigger matching, got %v", triggered)
	}
}

func TestUpdateJob_OwnershipEnforced(t *testing.T) {
	jobs := newMockJobRepo(activeJob("job_1", "comp_1", "Go"))
	uc := NewJobUsecase(jobs, nil)

	if _, err := uc.Update(context.Background(), "comp_2", "job_1", JobInput{Title: "Stolen"}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := uc.Close(context.Background(), "comp_1", "job_1"); err != nil {
		t.Fatalf("owner must close their posting: %v", err)
	}
}
