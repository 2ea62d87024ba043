package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"neuromatch/internal/config"
	"neuromatch/internal/domain/job"
	"neuromatch/internal/domain/match"
	"neuromatch/internal/domain/scoring"

	"go.uber.org/zap"
)

type stubOracle struct {
	mu    sync.Mutex
	score float64
	err   error
	calls int
}

func (s *stubOracle) ScoreSkillSimilarity(_ context.Context, _, _ []string) (scoring.OracleResult, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.err != nil {
		return scoring.OracleResult{}, s.err
	}
	return scoring.OracleResult{Score: s.score, Method: match.MethodSemantic}, nil
}

func (s *stubOracle) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func activeJob(id, companyID string, skills ...string) job.Job {
	return job.Job{
		ID:             id,
		CompanyID:      companyID,
		Title:          "Backend Engineer",
		RequiredSkills: skills,
		Status:         job.StatusActive,
	}
}

type matchingFixture struct {
	uc       *Matching
	cands    *mockCandidateRepo
	jobs     *mockJobRepo
	matches  *mockMatchRepo
	conns    *mockConnectionRepo
	oracle   *stubOracle
	notifier *mockNotifier
}

func newMatchingFixture(t *testing.T, oracle *stubOracle, cands *mockCandidateRepo, jobs *mockJobRepo, matches *mockMatchRepo, conns *mockConnectionRepo) *matchingFixture {
	t.Helper()
	notifier := &mockNotifier{}
	uc := NewMatchingUsecase(
		cands, jobs, matches, conns,
		oracle, nil, notifier, zap.NewNop(), config.MatchingConfig{},
	)
	return &matchingFixture{uc: uc, cands: cands, jobs: jobs, matches: matches, conns: conns, oracle: oracle, notifier: notifier}
}

func TestRunMatchingForJob_SemanticMatch(t *testing.T) {
	f := newMatchingFixture(t,
		&stubOracle{score: 90},
		newMockCandidateRepo(testCandidate("ind_1")),
		newMockJobRepo(activeJob("job_1", "comp_1", "Go")),
		newMockMatchRepo(),
		newMockConnectionRepo(),
	)

	report, err := f.uc.RunMatchingForJob(context.Background(), "job_1")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(report.Created) != 1 {
		t.Fatalf("expected 1 match, got %d", len(report.Created))
	}

	m := report.Created[0]
	if m.MatchingMethod != match.MethodSemantic || m.NeedsRecalculation {
		t.Fatalf("semantic scoring expected: %+v", m)
	}
	if m.Status != match.StatusPending {
		t.Fatalf("new match must be pending, got %q", m.Status)
	}
	if m.CandidateData.DisplayName == "" || m.CandidateData.DisplayName == "Test Candidate" {
		t.Fatalf("snapshot must carry an anonymized name, got %q", m.CandidateData.DisplayName)
	}
	if !m.ExpiresAt.After(m.CreatedAt) {
		t.Fatalf("match must carry an expiry deadline")
	}

	if len(f.notifier.newMatches) != 1 || f.notifier.newMatches[0].candidateID != "ind_1" {
		t.Fatalf("candidate must be notified of the new match")
	}
	if !m.CandidateNotified {
		t.Fatalf("notification must be recorded on the match")
	}
}

func TestRunMatchingForJob_OracleDownFallsBack(t *testing.T) {
	f := newMatchingFixture(t,
		&stubOracle{err: errors.New("deadline exceeded")},
		newMockCandidateRepo(testCandidate("ind_1")),
		newMockJobRepo(activeJob("job_1", "comp_1", "Go")),
		newMockMatchRepo(),
		newMockConnectionRepo(),
	)

	report, err := f.uc.RunMatchingForJob(context.Background(), "job_1")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(report.Created) != 1 {
		t.Fatalf("fallback must still create the match, got %d", len(report.Created))
	}

	m := report.Created[0]
	if m.MatchingMethod != match.MethodKeywordFallback {
		t.Fatalf("expected keyword fallback, got %q", m.MatchingMethod)
	}
	if !m.NeedsRecalculation {
		t.Fatalf("fallback match must be flagged for recalculation")
	}
}

func TestRunMatchingForJob_SubThresholdLeavesNoTrace(t *testing.T) {
	c := testCandidate("ind_1")
	c.Profile.Skills = []string{"Painting"}
	f := newMatchingFixture(t,
		&stubOracle{score: 5},
		newMockCandidateRepo(c),
		newMockJobRepo(activeJob("job_1", "comp_1", "Rust", "C++")),
		newMockMatchRepo(),
		newMockConnectionRepo(),
	)

	report, err := f.uc.RunMatchingForJob(context.Background(), "job_1")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(report.Created) != 0 {
		t.Fatalf("sub-threshold pair must not materialize, got %+v", report.Created)
	}
	if all, _ := f.matches.ListByJob(context.Background(), "job_1"); len(all) != 0 {
		t.Fatalf("no trace may persist for sub-threshold pairs")
	}
	if !containsString(report.Warnings, match.WarningNoEligibleCandidates) {
		t.Fatalf("expected no_eligible_candidates warning, got %v", report.Warnings)
	}
}

func TestRunMatchingForJob_Warnings(t *testing.T) {
	f := newMatchingFixture(t,
		&stubOracle{score: 90},
		newMockCandidateRepo(),
		newMockJobRepo(activeJob("job_1", "comp_1", "Communication", "Teamwork")),
		newMockMatchRepo(),
		newMockConnectionRepo(),
	)

	report, err := f.uc.RunMatchingForJob(context.Background(), "job_1")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !containsString(report.Warnings, match.WarningGenericRequirements) {
		t.Fatalf("expected generic_requirements warning, got %v", report.Warnings)
	}
	if !containsString(report.Warnings, match.WarningNoEligibleCandidates) {
		t.Fatalf("expected no_eligible_candidates warning, got %v", report.Warnings)
	}
}

func TestRunMatchingForJob_PreviousWithdrawalWarning(t *testing.T) {
	conns := newMockConnectionRepo()
	conns.revokedPairs["ind_1|comp_1"] = true
	f := newMatchingFixture(t,
		&stubOracle{score: 90},
		newMockCandidateRepo(testCandidate("ind_1")),
		newMockJobRepo(activeJob("job_1", "comp_1", "Go")),
		newMockMatchRepo(),
		conns,
	)

	report, err := f.uc.RunMatchingForJob(context.Background(), "job_1")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(report.Created) != 1 {
		t.Fatalf("withdrawal history must not block the match")
	}
	if !containsString(report.Created[0].Warnings, match.WarningPreviousWithdrawal) {
		t.Fatalf("expected previous_withdrawal warning on the match, got %v", report.Created[0].Warnings)
	}
}

func TestRunMatchingForJob_SkipsExistingPending(t *testing.T) {
	existing := pendingMatch("match_0", "ind_1", "job_1", "comp_1", time.Now().UTC().Add(time.Hour))
	f := newMatchingFixture(t,
		&stubOracle{score: 90},
		newMockCandidateRepo(testCandidate("ind_1")),
		newMockJobRepo(activeJob("job_1", "comp_1", "Go")),
		newMockMatchRepo(existing),
		newMockConnectionRepo(),
	)

	report, err := f.uc.RunMatchingForJob(context.Background(), "job_1")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(report.Created) != 0 {
		t.Fatalf("existing pending pair must not be duplicated")
	}
}

func TestRunMatchingForJob_ClosedJob(t *testing.T) {
	j := activeJob("job_1", "comp_1", "Go")
	j.Status = job.StatusClosed
	f := newMatchingFixture(t, &stubOracle{score: 90}, newMockCandidateRepo(), newMockJobRepo(j), newMockMatchRepo(), newMockConnectionRepo())

	if _, err := f.uc.RunMatchingForJob(context.Background(), "job_1"); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound for a closed job, got %v", err)
	}
}

func TestRunMatchingForCandidate_RequiresAssessment(t *testing.T) {
	c := testCandidate("ind_1")
	c.Assessment.Completed = false
	f := newMatchingFixture(t, &stubOracle{score: 90}, newMockCandidateRepo(c), newMockJobRepo(), newMockMatchRepo(), newMockConnectionRepo())

	if _, err := f.uc.RunMatchingForCandidate(context.Background(), "ind_1"); !errors.Is(err, ErrAssessmentIncomplete) {
		t.Fatalf("expected ErrAssessmentIncomplete, got %v", err)
	}
}

func TestRunMatchingForCandidate(t *testing.T) {
	f := newMatchingFixture(t,
		&stubOracle{score: 90},
		newMockCandidateRepo(testCandidate("ind_1")),
		newMockJobRepo(activeJob("job_1", "comp_1", "Go"), activeJob("job_2", "comp_2", "Go")),
		newMockMatchRepo(),
		newMockConnectionRepo(),
	)

	report, err := f.uc.RunMatchingForCandidate(context.Background(), "ind_1")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(report.Created) != 2 {
		t.Fatalf("expected matches against both jobs, got %d", len(report.Created))
	}
}

func TestRecalculateFallbackMatches(t *testing.T) {
	stale := pendingMatch("match_1", "ind_1", "job_1", "comp_1", time.Now().UTC().Add(time.Hour))
	stale.MatchingMethod = match.MethodKeywordFallback
	stale.NeedsRecalculation = true

	oracle := &stubOracle{score: 90}
	f := newMatchingFixture(t,
		oracle,
		newMockCandidateRepo(testCandidate("ind_1")),
		newMockJobRepo(activeJob("job_1", "comp_1", "Go")),
		newMockMatchRepo(stale),
		newMockConnectionRepo(),
	)

	updated, err := f.uc.RecalculateFallbackMatches(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if updated != 1 {
		t.Fatalf("expected 1 rescored match, got %d", updated)
	}

	m, _ := f.matches.FindByID(context.Background(), "match_1")
	if m.MatchingMethod != match.MethodSemantic || m.NeedsRecalculation {
		t.Fatalf("match must be rescored semantically: %+v", m)
	}
}

func TestRecalculateFallbackMatches_OracleStillDown(t *testing.T) {
	stale := pendingMatch("match_1", "ind_1", "job_1", "comp_1", time.Now().UTC().Add(time.Hour))
	stale.NeedsRecalculation = true

	f := newMatchingFixture(t,
		&stubOracle{err: errors.New("still down")},
		newMockCandidateRepo(testCandidate("ind_1")),
		newMockJobRepo(activeJob("job_1", "comp_1", "Go")),
		newMockMatchRepo(stale),
		newMockConnectionRepo(),
	)

	updated, err := f.uc.RecalculateFallbackMatches(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if updated != 0 {
		t.Fatalf("no updates while the oracle is down, got %d", updated)
	}

	m, _ := f.matches.FindByID(context.Background(), "match_1")
	if !m.NeedsRecalculation {
		t.Fatalf("match must stay flagged until rescored")
	}
}

func containsString(xs []string, want string) bool {
	for _, x := range xs {
		if x == want {
			return true
		}
	}
	return false
}

func TestRunMatchingForJob_GroupsOracleCallsPerSkillSet(t *testing.T) {
	c1 := testCandidate("ind_1")
	c2 := testCandidate("ind_2")
	c3 := testCandidate("ind_3")
	c3.Profile.Skills = []string{"Rust"}

	f := newMatchingFixture(t,
		&stubOracle{score: 90},
		newMockCandidateRepo(c1, c2, c3),
		newMockJobRepo(activeJob("job_1", "comp_1", "Go")),
		newMockMatchRepo(),
		newMockConnectionRepo(),
	)

	report, err := f.uc.RunMatchingForJob(context.Background(), "job_1")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(report.Created) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(report.Created))
	}

	// ind_1 and ind_2 share a skill set; only the distinct sets hit the
	// oracle.
	if got := f.oracle.callCount(); got != 2 {
		t.Fatalf("expected 2 grouped oracle calls, got %d", got)
	}
}
