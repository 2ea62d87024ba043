package usecase

import (
	"context"
	"errors"
	"testing"
)

func TestSubmitAssessment_TriggersMatchingRun(t *testing.T) {
	c := testCandidate("ind_1")
	c.Assessment.Completed = false
	cands := newMockCandidateRepo(c)

	var triggered []string
	uc := NewCandidateUsecase(cands, nil, func(candidateID string) {
		triggered = append(triggered, candidateID)
	})

	got, err := uc.SubmitAssessment(context.Background(), "ind_1", SubmitAssessmentInput{
		TechnicalSkills: []string{"Go", "SQL"},
		Score:           84,
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !got.Assessment.Completed {
		t.Fatalf("submitted assessment must be marked complete")
	}
	if len(triggered) != 1 || triggered[0] != "ind_1" {
		t.Fatalf("completed assessment must trigger a matching run, got %v", triggered)
	}
}

func TestSubmitAssessment_UnknownCandidate(t *testing.T) {
	var triggered []string
	uc := NewCandidateUsecase(newMockCandidateRepo(), nil, func(candidateID string) {
		triggered = append(triggered, candidateID)
	})

	if _, err := uc.SubmitAssessment(context.Background(), "ghost", SubmitAssessmentInput{}); !errors.Is(err, ErrCandidateNotFound) {
		t.Fatalf("expected ErrCandidateNotFound, got %v", err)
	}
	if len(triggered) != 0 {
		t.Fatalf("failed submissions must not trigger matching, got %v", triggered)
	}
}
