package usecase

import (
	"context"
	"errors"
	"time"

	"neuromatch/internal/audit"
	domaudit "neuromatch/internal/domain/audit"
	"neuromatch/internal/domain/connection"
	"neuromatch/internal/domain/id"
	"neuromatch/internal/domain/match"
	"neuromatch/internal/domain/privacy"
	"neuromatch/internal/infrastructure/cache"
	"neuromatch/internal/notification"
	"neuromatch/internal/repository"

	"go.uber.org/zap"
)

// AcceptOptions carries the optional parts of a consent grant: an opening
// message for the company and per-connection privacy overrides applied at
// acceptance time.
type AcceptOptions struct {
	OpeningMessage string
	CustomPrivacy  *privacy.Overrides
}

type LifecycleUsecase interface {
	GetMatch(ctx context.Context, callerID, role, matchID string) (match.Match, error)
	ListCandidateMatches(ctx context.Context, candidateID string) ([]match.Match, error)
	ListJobMatches(ctx context.Context, companyID, jobID string) ([]match.Match, error)
	AcceptMatch(ctx context.Context, candidateID, matchID string, opts AcceptOptions) (connection.Connection, error)
	RejectMatch(ctx context.Context, candidateID, matchID, reason string) error
	ProcessExpiredMatches(ctx context.Context) (int, error)
}

type Lifecycle struct {
	matches     repository.MatchRepository
	connections repository.ConnectionRepository
	candidates  repository.CandidateRepository
	jobs        repository.JobRepository
	recorder    *audit.Recorder
	cache       *cache.Redis
	notifier    notification.Notifier
	logger      *zap.Logger
	now         func() time.Time
}

func NewLifecycleUsecase(
	matches repository.MatchRepository,
	connections repository.ConnectionRepository,
	candidates repository.CandidateRepository,
	jobs repository.JobRepository,
	recorder *audit.Recorder,
	c *cache.Redis,
	notifier notification.Notifier,
	logger *zap.Logger,
) *Lifecycle {
	return &Lifecycle{
		matches:     matches,
		connections: connections,
		candidates:  candidates,
		jobs:        jobs,
		recorder:    recorder,
		cache:       c,
		notifier:    notifier,
		logger:      logger,
		now:         time.Now,
	}
}

// GetMatch applies lazy expiration: a pending match past its deadline is
// expired on read, so callers never act on an overdue proposal even between
// sweeps.
func (u *Lifecycle) GetMatch(ctx context.Context, callerID, role, matchID string) (match.Match, error) {
	m, err := u.matches.FindByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return match.Match{}, ErrMatchNotFound
		}
		return match.Match{}, ErrInternal
	}

	m = u.expireIfOverdue(ctx, m)

	switch {
	case m.CandidateID == callerID:
		return m, nil
	case m.CompanyID == callerID && u.companyMayView(ctx, m):
		return m, nil
	default:
		// Companies never learn that a pending match exists.
		return match.Match{}, ErrMatchNotFound
	}
}

// companyMayView enforces consent at read time: an accepted match is visible
// only while the candidate's connection for the job is still active, so a
// revocation cuts access immediately even if a cached or stale row says
// otherwise.
func (u *Lifecycle) companyMayView(ctx context.Context, m match.Match) bool {
	if !m.CompanyCanView {
		return false
	}
	active, err := u.connections.ExistsActiveForMatch(ctx, m.CandidateID, m.JobID)
	if err != nil {
		u.logger.Warn("consent check failed, denying access",
			zap.String("match_id", m.ID), zap.Error(err))
		return false
	}
	return active
}

func (u *Lifecycle) ListCandidateMatches(ctx context.Context, candidateID string) ([]match.Match, error) {
	matches, err := u.matches.ListByCandidate(ctx, candidateID)
	if err != nil {
		return nil, ErrInternal
	}
	for i := range matches {
		matches[i] = u.expireIfOverdue(ctx, matches[i])
	}
	return matches, nil
}

// ListJobMatches is the company view over a job's matches: only accepted
// matches, where the candidate consented to visibility. The consent check
// runs after the cache read so stale cache entries cannot resurrect access
// a candidate already revoked.
func (u *Lifecycle) ListJobMatches(ctx context.Context, companyID, jobID string) ([]match.Match, error) {
	j, err := u.jobs.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, ErrInternal
	}
	if j.CompanyID != companyID {
		return nil, ErrForbidden
	}

	key := cache.JobMatchesKey(jobID)
	var cached []match.Match
	if ok, _ := u.cache.GetJSON(ctx, key, &cached); ok {
		return u.filterConsented(ctx, cached), nil
	}

	all, err := u.matches.ListByJob(ctx, jobID)
	if err != nil {
		return nil, ErrInternal
	}

	visible := make([]match.Match, 0, len(all))
	for _, m := range all {
		if m.CompanyCanView {
			visible = append(visible, m)
		}
	}

	if err := u.cache.SetJSON(ctx, key, visible, 0); err != nil {
		u.logger.Debug("job matches cache write failed", zap.String("job_id", jobID), zap.Error(err))
	}
	return u.filterConsented(ctx, visible), nil
}

func (u *Lifecycle) filterConsented(ctx context.Context, matches []match.Match) []match.Match {
	out := make([]match.Match, 0, len(matches))
	for _, m := range matches {
		if u.companyMayView(ctx, m) {
			out = append(out, m)
		}
	}
	return out
}

// AcceptMatch is the consent grant: it transitions the match exactly once
// and opens a Connection whose sharedData allow-list is derived from the
// candidate's privacy settings at acceptance time, with any per-connection
// overrides applied before the first disclosure happens.
func (u *Lifecycle) AcceptMatch(ctx context.Context, candidateID, matchID string, opts AcceptOptions) (connection.Connection, error) {
	m, err := u.matches.FindByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return connection.Connection{}, ErrMatchNotFound
		}
		return connection.Connection{}, ErrInternal
	}
	if m.CandidateID != candidateID {
		return connection.Connection{}, ErrForbidden
	}

	now := u.now().UTC()
	if m.Status == match.StatusPending && m.ExpiredAt(now) {
		_, _ = u.matches.ExpireIfPending(ctx, matchID, now)
		return connection.Connection{}, ErrMatchExpired
	}

	ok, err := u.matches.AcceptIfPending(ctx, matchID, now)
	if err != nil {
		return connection.Connection{}, ErrInternal
	}
	if !ok {
		return connection.Connection{}, u.transitionConflict(ctx, matchID)
	}

	c, err := u.candidates.FindByID(ctx, candidateID)
	if err != nil {
		return connection.Connection{}, ErrInternal
	}

	eff := c.Privacy
	var overrides privacy.Overrides
	if opts.CustomPrivacy != nil {
		overrides = *opts.CustomPrivacy
		eff = privacy.Effective(overrides, c.Privacy)
	}

	conn := connection.Connection{
		ID:             id.New(id.PrefixConnection),
		IndividualID:   candidateID,
		CompanyID:      m.CompanyID,
		JobID:          m.JobID,
		Type:           connection.TypeJobMatch,
		Status:         connection.StatusActive,
		SharedData:     privacy.SharedData(eff, c.HasTherapist()),
		CustomPrivacy:  overrides,
		PipelineStage:  connection.StageNewMatches,
		OpeningMessage: opts.OpeningMessage,
		ConsentGivenAt: now,
		UpdatedAt:      now,
	}

	if err := u.connections.Create(ctx, conn); err != nil {
		return connection.Connection{}, ErrInternal
	}

	u.recorder.ConsentGranted(ctx, audit.AccessRecord{
		AccessedBy:   candidateID,
		TargetUser:   candidateID,
		DataAccessed: conn.SharedData,
		DataType:     domaudit.DataTypeProfile,
		Sensitivity:  consentSensitivity(conn.SharedData),
		Reason:       domaudit.ReasonConsentLifecycle,
	})

	m.Status = match.StatusAccepted
	m.AcceptedAt = &now
	m.CompanyCanView = true
	u.notifier.MatchAccepted(m.CompanyID, m)

	u.cache.Delete(ctx, cache.JobMatchesKey(m.JobID))
	return conn, nil
}

func (u *Lifecycle) RejectMatch(ctx context.Context, candidateID, matchID, reason string) error {
	m, err := u.matches.FindByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrMatchNotFound
		}
		return ErrInternal
	}
	if m.CandidateID != candidateID {
		return ErrForbidden
	}

	ok, err := u.matches.RejectIfPending(ctx, matchID, u.now().UTC(), reason)
	if err != nil {
		return ErrInternal
	}
	if !ok {
		return u.transitionConflict(ctx, matchID)
	}
	return nil
}

// ProcessExpiredMatches is the periodic sweep. The redis lock keeps replicas
// from duplicating the work; the conditional UPDATE keeps correctness even
// without it.
func (u *Lifecycle) ProcessExpiredMatches(ctx context.Context) (int, error) {
	lockKey := cache.SweepLockKey()
	ok, err := u.cache.AcquireLock(ctx, lockKey, 30*time.Second)
	if err != nil || !ok {
		return 0, nil
	}
	defer u.cache.ReleaseLock(ctx, lockKey)

	now := u.now().UTC()
	ids, err := u.matches.ExpireAllPendingBefore(ctx, now)
	if err != nil {
		return 0, ErrInternal
	}

	for _, matchID := range ids {
		m, err := u.matches.FindByID(ctx, matchID)
		if err != nil {
			continue
		}
		u.notifier.MatchExpired(m.CandidateID, m.ID)
		u.cache.Delete(ctx, cache.JobMatchesKey(m.JobID))
	}

	if len(ids) > 0 {
		u.logger.Info("expired pending matches", zap.Int("count", len(ids)))
	}
	return len(ids), nil
}

func (u *Lifecycle) expireIfOverdue(ctx context.Context, m match.Match) match.Match {
	if m.Status != match.StatusPending || !m.ExpiredAt(u.now().UTC()) {
		return m
	}
	if ok, err := u.matches.ExpireIfPending(ctx, m.ID, u.now().UTC()); err == nil && ok {
		m.Status = match.StatusExpired
	} else if fresh, err := u.matches.FindByID(ctx, m.ID); err == nil {
		m = fresh
	}
	return m
}

// transitionConflict reloads the match to report why a conditional
// transition did not fire.
func (u *Lifecycle) transitionConflict(ctx context.Context, matchID string) error {
	m, err := u.matches.FindByID(ctx, matchID)
	if err != nil {
		return ErrMatchNotPending
	}
	if m.Status == match.StatusExpired {
		return ErrMatchExpired
	}
	return ErrMatchNotPending
}

func consentSensitivity(sharedData []string) domaudit.Sensitivity {
	if privacy.Contains(sharedData, privacy.FieldDiagnosis) || privacy.Contains(sharedData, privacy.FieldTherapist) {
		return domaudit.SensitivityHigh
	}
	return domaudit.SensitivityMedium
}
