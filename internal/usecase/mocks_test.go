package usecase

import (
	"context"
	"sync"
	"time"

	domaudit "neuromatch/internal/domain/audit"
	"neuromatch/internal/domain/candidate"
	"neuromatch/internal/domain/connection"
	"neuromatch/internal/domain/job"
	"neuromatch/internal/domain/match"
	"neuromatch/internal/domain/privacy"
	"neuromatch/internal/repository"
)

type mockCandidateRepo struct {
	byID       map[string]candidate.Candidate
	err        error
	anonymized []string
}

func newMockCandidateRepo(cs ...candidate.Candidate) *mockCandidateRepo {
	m := &mockCandidateRepo{byID: make(map[string]candidate.Candidate)}
	for _, c := range cs {
		m.byID[c.ID] = c
	}
	return m
}

func (m *mockCandidateRepo) Create(_ context.Context, c candidate.Candidate, _ string) error {
	m.byID[c.ID] = c
	return m.err
}

func (m *mockCandidateRepo) FindByID(_ context.Context, id string) (candidate.Candidate, error) {
	if m.err != nil {
		return candidate.Candidate{}, m.err
	}
	c, ok := m.byID[id]
	if !ok {
		return candidate.Candidate{}, repository.ErrNotFound
	}
	return c, nil
}

func (m *mockCandidateRepo) FindByEmail(_ context.Context, email string) (candidate.Candidate, string, error) {
	for _, c := range m.byID {
		if c.Email == email {
			return c, "", nil
		}
	}
	return candidate.Candidate{}, "", repository.ErrNotFound
}

func (m *mockCandidateRepo) ListMatchable(_ context.Context) ([]candidate.Candidate, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]candidate.Candidate, 0, len(m.byID))
	for _, c := range m.byID {
		if c.Matchable() {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockCandidateRepo) UpdateProfile(_ context.Context, c candidate.Candidate) error {
	m.byID[c.ID] = c
	return m.err
}

func (m *mockCandidateRepo) UpdatePrivacy(_ context.Context, id string, s privacy.Settings) error {
	c := m.byID[id]
	c.Privacy = s
	m.byID[id] = c
	return m.err
}

func (m *mockCandidateRepo) UpdateAssessment(_ context.Context, id string, a candidate.Assessment) error {
	c := m.byID[id]
	c.Assessment = a
	m.byID[id] = c
	return m.err
}

func (m *mockCandidateRepo) Anonymize(_ context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	c := m.byID[id]
	c.Status = candidate.StatusDeleted
	c.Email = ""
	c.Profile = candidate.Profile{}
	m.byID[id] = c
	m.anonymized = append(m.anonymized, id)
	return nil
}

type mockJobRepo struct {
	byID map[string]job.Job
	err  error
}

func newMockJobRepo(js ...job.Job) *mockJobRepo {
	m := &mockJobRepo{byID: make(map[string]job.Job)}
	for _, j := range js {
		m.byID[j.ID] = j
	}
	return m
}

func (m *mockJobRepo) Create(_ context.Context, j job.Job) error {
	m.byID[j.ID] = j
	return m.err
}

func (m *mockJobRepo) FindByID(_ context.Context, id string) (job.Job, error) {
	if m.err != nil {
		return job.Job{}, m.err
	}
	j, ok := m.byID[id]
	if !ok {
		return job.Job{}, repository.ErrNotFound
	}
	return j, nil
}

func (m *mockJobRepo) Update(_ context.Context, j job.Job) error {
	m.byID[j.ID] = j
	return m.err
}

func (m *mockJobRepo) Close(_ context.Context, id string) error {
	j := m.byID[id]
	j.Status = job.StatusClosed
	m.byID[id] = j
	return m.err
}

func (m *mockJobRepo) ListActive(_ context.Context) ([]job.Job, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]job.Job, 0, len(m.byID))
	for _, j := range m.byID {
		if j.Active() {
			out = append(out, j)
		}
	}
	return out, nil
}

type mockMatchRepo struct {
	mu        sync.Mutex
	byID      map[string]match.Match
	scrubbed  []string
	withdrawn []string
	err       error
}

func newMockMatchRepo(ms ...match.Match) *mockMatchRepo {
	m := &mockMatchRepo{byID: make(map[string]match.Match)}
	for _, mm := range ms {
		m.byID[mm.ID] = mm
	}
	return m
}

func (m *mockMatchRepo) Create(_ context.Context, mm match.Match) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[mm.ID] = mm
	return nil
}

func (m *mockMatchRepo) FindByID(_ context.Context, id string) (match.Match, error) {
	if m.err != nil {
		return match.Match{}, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	mm, ok := m.byID[id]
	if !ok {
		return match.Match{}, repository.ErrNotFound
	}
	return mm, nil
}

func (m *mockMatchRepo) ListByCandidate(_ context.Context, candidateID string) ([]match.Match, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]match.Match, 0)
	for _, mm := range m.byID {
		if mm.CandidateID == candidateID {
			out = append(out, mm)
		}
	}
	return out, nil
}

func (m *mockMatchRepo) ListByJob(_ context.Context, jobID string) ([]match.Match, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]match.Match, 0)
	for _, mm := range m.byID {
		if mm.JobID == jobID {
			out = append(out, mm)
		}
	}
	return out, nil
}

func (m *mockMatchRepo) HasPendingForPair(_ context.Context, candidateID, jobID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, mm := range m.byID {
		if mm.CandidateID == candidateID && mm.JobID == jobID && mm.Status == match.StatusPending {
			return true, nil
		}
	}
	return false, m.err
}

func (m *mockMatchRepo) AcceptIfPending(_ context.Context, id string, at time.Time) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	mm, ok := m.byID[id]
	if !ok || mm.Status != match.StatusPending {
		return false, nil
	}
	mm.Status = match.StatusAccepted
	mm.AcceptedAt = &at
	mm.CompanyCanView = true
	m.byID[id] = mm
	return true, nil
}

func (m *mockMatchRepo) RejectIfPending(_ context.Context, id string, at time.Time, reason string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	mm, ok := m.byID[id]
	if !ok || mm.Status != match.StatusPending {
		return false, nil
	}
	mm.Status = match.StatusRejected
	mm.RejectedAt = &at
	mm.RejectionReason = reason
	m.byID[id] = mm
	return true, nil
}

func (m *mockMatchRepo) ExpireIfPending(_ context.Context, id string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mm, ok := m.byID[id]
	if !ok || mm.Status != match.StatusPending || !at.After(mm.ExpiresAt) {
		return false, nil
	}
	mm.Status = match.StatusExpired
	m.byID[id] = mm
	return true, nil
}

func (m *mockMatchRepo) ExpireAllPendingBefore(_ context.Context, cutoff time.Time) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for id, mm := range m.byID {
		if mm.Status == match.StatusPending && cutoff.After(mm.ExpiresAt) {
			mm.Status = match.StatusExpired
			m.byID[id] = mm
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *mockMatchRepo) MarkCandidateNotified(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	mm, ok := m.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	mm.CandidateNotified = true
	m.byID[id] = mm
	return nil
}

func (m *mockMatchRepo) ListNeedingRecalculation(_ context.Context, limit int) ([]match.Match, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]match.Match, 0)
	for _, mm := range m.byID {
		if mm.Status == match.StatusPending && mm.NeedsRecalculation {
			out = append(out, mm)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *mockMatchRepo) UpdateScore(_ context.Context, id string, score float64, breakdown match.ScoreBreakdown, method, justification string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	mm, ok := m.byID[id]
	if !ok || mm.Status != match.StatusPending {
		return repository.ErrNotFound
	}
	mm.Score = score
	mm.Breakdown = breakdown
	mm.MatchingMethod = method
	mm.AIJustification = justification
	mm.NeedsRecalculation = false
	m.byID[id] = mm
	return nil
}

func (m *mockMatchRepo) WithdrawPendingByCandidate(_ context.Context, candidateID string, at time.Time) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, mm := range m.byID {
		if mm.CandidateID == candidateID && mm.Status == match.StatusPending {
			mm.Status = match.StatusExpired
			m.byID[id] = mm
			m.withdrawn = append(m.withdrawn, id)
			n++
		}
	}
	return n, nil
}

func (m *mockMatchRepo) ScrubCandidateData(_ context.Context, candidateID string) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, mm := range m.byID {
		if mm.CandidateID == candidateID {
			mm.CandidateData = match.CandidateData{}
			m.byID[id] = mm
		}
	}
	m.scrubbed = append(m.scrubbed, candidateID)
	return nil
}

type mockConnectionRepo struct {
	byID         map[string]connection.Connection
	revokedPairs map[string]bool // individualID + "|" + companyID
	err          error
}

func newMockConnectionRepo(cs ...connection.Connection) *mockConnectionRepo {
	m := &mockConnectionRepo{
		byID:         make(map[string]connection.Connection),
		revokedPairs: make(map[string]bool),
	}
	for _, c := range cs {
		m.byID[c.ID] = c
	}
	return m
}

func (m *mockConnectionRepo) Create(_ context.Context, c connection.Connection) error {
	if m.err != nil {
		return m.err
	}
	m.byID[c.ID] = c
	return nil
}

func (m *mockConnectionRepo) FindByID(_ context.Context, id string) (connection.Connection, error) {
	if m.err != nil {
		return connection.Connection{}, m.err
	}
	c, ok := m.byID[id]
	if !ok {
		return connection.Connection{}, repository.ErrNotFound
	}
	return c, nil
}

func (m *mockConnectionRepo) FindActiveBetween(_ context.Context, individualID, companyID string) (connection.Connection, error) {
	if m.err != nil {
		return connection.Connection{}, m.err
	}
	for _, c := range m.byID {
		if c.IndividualID == individualID && c.CompanyID == companyID && c.Active() {
			return c, nil
		}
	}
	return connection.Connection{}, repository.ErrNotFound
}

func (m *mockConnectionRepo) ListByIndividual(_ context.Context, individualID string) ([]connection.Connection, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]connection.Connection, 0)
	for _, c := range m.byID {
		if c.IndividualID == individualID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockConnectionRepo) ListActiveByIndividual(_ context.Context, individualID string) ([]connection.Connection, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]connection.Connection, 0)
	for _, c := range m.byID {
		if c.IndividualID == individualID && c.Active() {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockConnectionRepo) ListActiveByCompany(_ context.Context, companyID string) ([]connection.Connection, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]connection.Connection, 0)
	for _, c := range m.byID {
		if c.CompanyID == companyID && c.Active() {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockConnectionRepo) RevokeIfRevocable(_ context.Context, id string, at time.Time, reason string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	c, ok := m.byID[id]
	if !ok || !c.Revocable() {
		return false, nil
	}
	c.Status = connection.StatusRevoked
	c.RevokedAt = &at
	c.RevokedReason = reason
	m.byID[id] = c
	return true, nil
}

func (m *mockConnectionRepo) RevokeAllByIndividual(_ context.Context, individualID string, at time.Time, reason string) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	var n int64
	for id, c := range m.byID {
		if c.IndividualID == individualID && c.Revocable() {
			c.Status = connection.StatusRevoked
			c.RevokedAt = &at
			c.RevokedReason = reason
			m.byID[id] = c
			n++
		}
	}
	return n, nil
}

func (m *mockConnectionRepo) UpdateSharedData(_ context.Context, id string, shared []string, overrides privacy.Overrides) error {
	if m.err != nil {
		return m.err
	}
	c, ok := m.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.SharedData = shared
	c.CustomPrivacy = overrides
	m.byID[id] = c
	return nil
}

func (m *mockConnectionRepo) UpdateStage(_ context.Context, id string, stage connection.Stage) error {
	if m.err != nil {
		return m.err
	}
	c, ok := m.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.PipelineStage = stage
	m.byID[id] = c
	return nil
}

func (m *mockConnectionRepo) ExistsRevokedForPair(_ context.Context, individualID, companyID string, _ time.Time) (bool, error) {
	return m.revokedPairs[individualID+"|"+companyID], m.err
}

func (m *mockConnectionRepo) ExistsActiveForMatch(_ context.Context, individualID, jobID string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	for _, c := range m.byID {
		if c.IndividualID == individualID && c.JobID == jobID && c.Active() {
			return true, nil
		}
	}
	return false, nil
}

type mockAuditRepo struct {
	mu      sync.Mutex
	entries []domaudit.Entry
	err     error
}

func (m *mockAuditRepo) Append(_ context.Context, e domaudit.Entry) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return nil
}

func (m *mockAuditRepo) ListByTarget(_ context.Context, targetUser string, _ int) ([]domaudit.Entry, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domaudit.Entry, 0)
	for _, e := range m.entries {
		if e.TargetUser == targetUser {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockAuditRepo) ListByAccessor(_ context.Context, accessedBy string, _ int) ([]domaudit.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domaudit.Entry, 0)
	for _, e := range m.entries {
		if e.AccessedBy == accessedBy {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockAuditRepo) lastEvent() (domaudit.Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.entries) == 0 {
		return domaudit.Entry{}, false
	}
	return m.entries[len(m.entries)-1], true
}

type notifiedMatch struct {
	candidateID string
	matchID     string
}

type mockNotifier struct {
	mu         sync.Mutex
	newMatches []notifiedMatch
	accepted   []string // companyID
	withdrawn  []string // companyID
	expired    []string // matchID
}

func (m *mockNotifier) NewMatch(candidateID string, mm match.Match) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.newMatches = append(m.newMatches, notifiedMatch{candidateID: candidateID, matchID: mm.ID})
}

func (m *mockNotifier) MatchAccepted(companyID string, _ match.Match) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accepted = append(m.accepted, companyID)
}

func (m *mockNotifier) CandidateWithdrew(companyID, _ string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.withdrawn = append(m.withdrawn, companyID)
}

func (m *mockNotifier) MatchExpired(_, matchID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expired = append(m.expired, matchID)
}
