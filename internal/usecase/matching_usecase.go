package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"neuromatch/internal/config"
	"neuromatch/internal/domain/candidate"
	"neuromatch/internal/domain/id"
	"neuromatch/internal/domain/job"
	"neuromatch/internal/domain/match"
	"neuromatch/internal/domain/privacy"
	"neuromatch/internal/domain/scoring"
	"neuromatch/internal/infrastructure/cache"
	"neuromatch/internal/notification"
	"neuromatch/internal/repository"

	"go.uber.org/zap"
)

// MatchRunReport summarizes a matching run over one job or one candidate.
type MatchRunReport struct {
	Created  []match.Match
	Warnings []string
}

type MatchingUsecase interface {
	ScorePair(ctx context.Context, candidateID, jobID string) (scoring.Result, error)
	RunMatchingForJob(ctx context.Context, jobID string) (MatchRunReport, error)
	RunMatchingForCandidate(ctx context.Context, candidateID string) (MatchRunReport, error)
	RecalculateFallbackMatches(ctx context.Context, limit int) (int, error)
}

type Matching struct {
	candidates  repository.CandidateRepository
	jobs        repository.JobRepository
	matches     repository.MatchRepository
	connections repository.ConnectionRepository
	oracle      scoring.SkillOracle
	cache       *cache.Redis
	notifier    notification.Notifier
	logger      *zap.Logger
	cfg         config.MatchingConfig
	now         func() time.Time
}

func NewMatchingUsecase(
	candidates repository.CandidateRepository,
	jobs repository.JobRepository,
	matches repository.MatchRepository,
	connections repository.ConnectionRepository,
	oracle scoring.SkillOracle,
	c *cache.Redis,
	notifier notification.Notifier,
	logger *zap.Logger,
	cfg config.MatchingConfig,
) *Matching {
	return &Matching{
		candidates:  candidates,
		jobs:        jobs,
		matches:     matches,
		connections: connections,
		oracle:      oracle,
		cache:       c,
		notifier:    notifier,
		logger:      logger,
		cfg:         cfg,
		now:         time.Now,
	}
}

// ScorePair computes the compatibility of one candidate/job pair without
// persisting anything.
func (u *Matching) ScorePair(ctx context.Context, candidateID, jobID string) (scoring.Result, error) {
	c, err := u.candidates.FindByID(ctx, candidateID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return scoring.Result{}, ErrCandidateNotFound
		}
		return scoring.Result{}, ErrInternal
	}
	j, err := u.jobs.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return scoring.Result{}, ErrJobNotFound
		}
		return scoring.Result{}, ErrInternal
	}

	return u.score(ctx, u.oracle, c, j), nil
}

// RunMatchingForJob scores every matchable candidate against the job and
// materializes matches at or above the threshold. Sub-threshold pairs leave
// no trace.
func (u *Matching) RunMatchingForJob(ctx context.Context, jobID string) (MatchRunReport, error) {
	j, err := u.jobs.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return MatchRunReport{}, ErrJobNotFound
		}
		return MatchRunReport{}, ErrInternal
	}
	if !j.Active() {
		return MatchRunReport{}, ErrJobNotFound
	}

	candidates, err := u.candidates.ListMatchable(ctx)
	if err != nil {
		return MatchRunReport{}, ErrInternal
	}

	report := MatchRunReport{Created: make([]match.Match, 0)}
	if scoring.HasGenericRequirements(j.RequiredSkills) {
		report.Warnings = append(report.Warnings, match.WarningGenericRequirements)
	}
	if len(candidates) == 0 {
		report.Warnings = append(report.Warnings, match.WarningNoEligibleCandidates)
		return report, nil
	}

	created := u.scoreBatch(ctx, candidates, j, report.Warnings)
	if len(created) == 0 && len(candidates) > 0 {
		report.Warnings = append(report.Warnings, match.WarningNoEligibleCandidates)
	}
	report.Created = created

	u.cache.Delete(ctx, cache.JobMatchesKey(j.ID))
	return report, nil
}

// RunMatchingForCandidate scores one candidate against every active job,
// typically after an assessment completes or a profile changes materially.
func (u *Matching) RunMatchingForCandidate(ctx context.Context, candidateID string) (MatchRunReport, error) {
	c, err := u.candidates.FindByID(ctx, candidateID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return MatchRunReport{}, ErrCandidateNotFound
		}
		return MatchRunReport{}, ErrInternal
	}
	if !c.Matchable() {
		return MatchRunReport{}, ErrAssessmentIncomplete
	}

	jobs, err := u.jobs.ListActive(ctx)
	if err != nil {
		return MatchRunReport{}, ErrInternal
	}

	report := MatchRunReport{Created: make([]match.Match, 0)}
	oracle := newMemoOracle(u.oracle)
	for _, j := range jobs {
		m, ok := u.materialize(ctx, oracle, c, j, nil)
		if !ok {
			continue
		}
		report.Created = append(report.Created, m)
		u.cache.Delete(ctx, cache.JobMatchesKey(j.ID))
	}
	return report, nil
}

// RecalculateFallbackMatches retries the semantic oracle for pending matches
// scored with the keyword fallback. Matches stay flagged while the oracle
// remains unreachable.
func (u *Matching) RecalculateFallbackMatches(ctx context.Context, limit int) (int, error) {
	stale, err := u.matches.ListNeedingRecalculation(ctx, limit)
	if err != nil {
		return 0, ErrInternal
	}

	updated := 0
	for _, m := range stale {
		c, err := u.candidates.FindByID(ctx, m.CandidateID)
		if err != nil {
			continue
		}
		j, err := u.jobs.FindByID(ctx, m.JobID)
		if err != nil {
			continue
		}

		res, err := u.oracle.ScoreSkillSimilarity(ctx, c.AllSkills(), j.RequiredSkills)
		if err != nil {
			u.logger.Debug("oracle still unavailable", zap.String("match_id", m.ID), zap.Error(err))
			continue
		}

		full := scoring.Compute(scoringCandidate(c), scoringJob(j), res.Score, res.Method, false, scoring.DefaultWeights())
		err = u.matches.UpdateScore(ctx, m.ID, full.Score, match.ScoreBreakdown(full.Breakdown), full.Method, full.Justification)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return updated, ErrInternal
		}
		updated++
		u.cache.Delete(ctx, cache.JobMatchesKey(m.JobID))
	}
	return updated, nil
}

// scoreBatch fans candidate scoring out over a bounded worker pool. Matches
// are materialized independently; one failed candidate never aborts the run.
// Oracle calls are deduplicated per skill set, so candidates with identical
// skills share one remote call instead of one each.
func (u *Matching) scoreBatch(ctx context.Context, candidates []candidate.Candidate, j job.Job, runWarnings []string) []match.Match {
	pool := NewWorkerPool(4, len(candidates))
	oracle := newMemoOracle(u.oracle)

	var mu sync.Mutex
	created := make([]match.Match, 0)

	go func() {
		for i := range candidates {
			c := candidates[i]
			pool.Submit(func(ctx context.Context) error {
				m, ok := u.materialize(ctx, oracle, c, j, runWarnings)
				if !ok {
					return nil
				}
				mu.Lock()
				created = append(created, m)
				mu.Unlock()
				return nil
			})
		}
		pool.Close()
	}()

	for res := range pool.Run(ctx) {
		if res.Err != nil {
			u.logger.Warn("candidate scoring failed", zap.String("job_id", j.ID), zap.Error(res.Err))
		}
	}

	return created
}

// materialize scores one pair and persists a match when it clears the
// threshold. Returns false when no match was created.
func (u *Matching) materialize(ctx context.Context, oracle scoring.SkillOracle, c candidate.Candidate, j job.Job, runWarnings []string) (match.Match, bool) {
	if !c.Matchable() || !j.Active() {
		return match.Match{}, false
	}

	if exists, err := u.matches.HasPendingForPair(ctx, c.ID, j.ID); err != nil || exists {
		return match.Match{}, false
	}

	res := u.score(ctx, oracle, c, j)
	if res.Score < u.threshold() {
		return match.Match{}, false
	}

	warnings := append([]string(nil), runWarnings...)
	if withdrew, err := u.previouslyWithdrew(ctx, c.ID, j.CompanyID); err == nil && withdrew {
		warnings = append(warnings, match.WarningPreviousWithdrawal)
	}

	now := u.now().UTC()
	m := match.Match{
		ID:                 id.New(id.PrefixMatch),
		CandidateID:        c.ID,
		JobID:              j.ID,
		CompanyID:          j.CompanyID,
		Score:              res.Score,
		Breakdown:          match.ScoreBreakdown(res.Breakdown),
		AIJustification:    res.Justification,
		CandidateData:      snapshotCandidate(c),
		Status:             match.StatusPending,
		MatchingMethod:     res.Method,
		NeedsRecalculation: res.NeedsRecalculation,
		Warnings:           warnings,
		CreatedAt:          now,
		ExpiresAt:          now.Add(u.ttl()),
	}

	if err := u.matches.Create(ctx, m); err != nil {
		u.logger.Warn("match create failed",
			zap.String("candidate_id", c.ID), zap.String("job_id", j.ID), zap.Error(err))
		return match.Match{}, false
	}

	u.notifier.NewMatch(c.ID, m)
	if err := u.matches.MarkCandidateNotified(ctx, m.ID); err == nil {
		m.CandidateNotified = true
	}

	return m, true
}

// score runs the semantic oracle with keyword fallback. Fallback results are
// flagged for recalculation once the oracle recovers.
func (u *Matching) score(ctx context.Context, oracle scoring.SkillOracle, c candidate.Candidate, j job.Job) scoring.Result {
	skills := c.AllSkills()

	res, err := oracle.ScoreSkillSimilarity(ctx, skills, j.RequiredSkills)
	if err != nil {
		u.logger.Warn("semantic oracle unavailable, using keyword fallback",
			zap.String("job_id", j.ID), zap.Error(err))
		fallback := scoring.KeywordSkillScore(skills, j.RequiredSkills)
		return scoring.Compute(scoringCandidate(c), scoringJob(j), fallback, match.MethodKeywordFallback, true, scoring.DefaultWeights())
	}

	return scoring.Compute(scoringCandidate(c), scoringJob(j), res.Score, res.Method, false, scoring.DefaultWeights())
}

// memoOracle groups oracle work within one matching run: the first caller
// for a given skill-set pair performs the remote call, everyone else waits
// on that result. Amortizes the cost of scoring many candidates who share
// a skill profile against the same job.
type memoOracle struct {
	inner scoring.SkillOracle
	mu    sync.Mutex
	calls map[string]*oracleCall
}

type oracleCall struct {
	done chan struct{}
	res  scoring.OracleResult
	err  error
}

func newMemoOracle(inner scoring.SkillOracle) *memoOracle {
	return &memoOracle{inner: inner, calls: make(map[string]*oracleCall)}
}

func (m *memoOracle) ScoreSkillSimilarity(ctx context.Context, candidateSkills, jobSkills []string) (scoring.OracleResult, error) {
	key := strings.Join(candidateSkills, "\x1f") + "\x1e" + strings.Join(jobSkills, "\x1f")

	m.mu.Lock()
	call, ok := m.calls[key]
	if !ok {
		call = &oracleCall{done: make(chan struct{})}
		m.calls[key] = call
		m.mu.Unlock()

		call.res, call.err = m.inner.ScoreSkillSimilarity(ctx, candidateSkills, jobSkills)
		close(call.done)
		return call.res, call.err
	}
	m.mu.Unlock()

	select {
	case <-call.done:
		return call.res, call.err
	case <-ctx.Done():
		return scoring.OracleResult{}, ctx.Err()
	}
}

func (u *Matching) previouslyWithdrew(ctx context.Context, candidateID, companyID string) (bool, error) {
	since := time.Time{}
	if u.cfg.WithdrawalRetention > 0 {
		since = u.now().UTC().Add(-u.cfg.WithdrawalRetention)
	}
	return u.connections.ExistsRevokedForPair(ctx, candidateID, companyID, since)
}

func (u *Matching) threshold() float64 {
	if u.cfg.ScoreThreshold > 0 {
		return u.cfg.ScoreThreshold
	}
	return scoring.DefaultThreshold
}

func (u *Matching) ttl() time.Duration {
	if u.cfg.MatchTTL > 0 {
		return u.cfg.MatchTTL
	}
	return match.MatchTTL
}

// snapshotCandidate builds the redacted view a company sees while the match
// is pending: no contact data, no medical data, anonymized name unless the
// candidate opted into real-name display.
func snapshotCandidate(c candidate.Candidate) match.CandidateData {
	return match.CandidateData{
		DisplayName:    privacy.DisplayName(c.Privacy.ShowRealName, c.Profile.Name, c.ID),
		Skills:         c.AllSkills(),
		Experience:     c.Profile.Experience,
		Education:      c.Profile.Education,
		Accommodations: c.Profile.AccommodationsNeeded,
		Location:       c.Profile.Location,
	}
}

func scoringCandidate(c candidate.Candidate) scoring.Candidate {
	return scoring.Candidate{
		Skills:               c.AllSkills(),
		AccommodationsNeeded: c.Profile.AccommodationsNeeded,
		Preferences:          c.Profile.Preferences,
		Location:             c.Profile.Location,
	}
}

func scoringJob(j job.Job) scoring.Job {
	return scoring.Job{
		RequiredSkills:        j.RequiredSkills,
		AccommodationsOffered: j.AccommodationsOffered,
		Location:              j.Location,
		WorkMode:              string(j.WorkMode),
		Attributes:            j.Attributes,
	}
}
