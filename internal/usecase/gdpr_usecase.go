package usecase

import (
	"context"
	"errors"
	"time"

	"neuromatch/internal/audit"
	domaudit "neuromatch/internal/domain/audit"
	"neuromatch/internal/domain/candidate"
	"neuromatch/internal/domain/connection"
	"neuromatch/internal/domain/match"
	"neuromatch/internal/infrastructure/cache"
	"neuromatch/internal/notification"
	"neuromatch/internal/repository"

	"go.uber.org/zap"
)

// DataExport is the complete machine-readable record released on an access
// request. Audit entries are included read-only.
type DataExport struct {
	GeneratedAt time.Time               `json:"generatedAt"`
	Candidate   candidate.Candidate     `json:"candidate"`
	Matches     []match.Match           `json:"matches"`
	Connections []connection.Connection `json:"connections"`
	AuditTrail  []domaudit.Entry        `json:"auditTrail"`
}

type GDPRUsecase interface {
	ExportAllData(ctx context.Context, candidateID, ip string) (DataExport, error)
	EraseAccount(ctx context.Context, candidateID, ip string) error
}

type GDPR struct {
	candidates  repository.CandidateRepository
	matches     repository.MatchRepository
	connections repository.ConnectionRepository
	auditRepo   repository.AuditRepository
	recorder    *audit.Recorder
	cache       *cache.Redis
	notifier    notification.Notifier
	logger      *zap.Logger
	now         func() time.Time
}

func NewGDPRUsecase(
	candidates repository.CandidateRepository,
	matches repository.MatchRepository,
	connections repository.ConnectionRepository,
	auditRepo repository.AuditRepository,
	recorder *audit.Recorder,
	c *cache.Redis,
	notifier notification.Notifier,
	logger *zap.Logger,
) *GDPR {
	return &GDPR{
		candidates:  candidates,
		matches:     matches,
		connections: connections,
		auditRepo:   auditRepo,
		recorder:    recorder,
		cache:       c,
		notifier:    notifier,
		logger:      logger,
		now:         time.Now,
	}
}

// ExportAllData assembles everything the platform holds about a candidate.
func (u *GDPR) ExportAllData(ctx context.Context, candidateID, ip string) (DataExport, error) {
	c, err := u.candidates.FindByID(ctx, candidateID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return DataExport{}, ErrCandidateNotFound
		}
		return DataExport{}, ErrInternal
	}

	matches, err := u.matches.ListByCandidate(ctx, candidateID)
	if err != nil {
		return DataExport{}, ErrInternal
	}
	conns, err := u.connections.ListByIndividual(ctx, candidateID)
	if err != nil {
		return DataExport{}, ErrInternal
	}
	trail, err := u.auditRepo.ListByTarget(ctx, candidateID, 500)
	if err != nil {
		return DataExport{}, ErrInternal
	}

	u.recorder.DataAccess(ctx, audit.AccessRecord{
		AccessedBy:   candidateID,
		TargetUser:   candidateID,
		DataAccessed: []string{"full_export"},
		DataType:     domaudit.DataTypeGDPRExport,
		Sensitivity:  domaudit.SensitivityHigh,
		Reason:       domaudit.ReasonGDPRRequest,
		IPAddress:    ip,
	})

	return DataExport{
		GeneratedAt: u.now().UTC(),
		Candidate:   c,
		Matches:     matches,
		Connections: conns,
		AuditTrail:  trail,
	}, nil
}

// EraseAccount executes the right-to-erasure cascade: pending matches are
// withdrawn, active consents revoked, profile snapshots scrubbed and the
// candidate row anonymized in place. Audit entries survive for the full
// retention period with the erased user's id intact.
func (u *GDPR) EraseAccount(ctx context.Context, candidateID, ip string) error {
	c, err := u.candidates.FindByID(ctx, candidateID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCandidateNotFound
		}
		return ErrInternal
	}
	if c.Status == candidate.StatusDeleted {
		return nil
	}

	now := u.now().UTC()

	if _, err := u.matches.WithdrawPendingByCandidate(ctx, candidateID, now); err != nil {
		return ErrInternal
	}
	if err := u.matches.ScrubCandidateData(ctx, candidateID); err != nil {
		return ErrInternal
	}

	active, err := u.connections.ListActiveByIndividual(ctx, candidateID)
	if err != nil {
		return ErrInternal
	}
	if _, err := u.connections.RevokeAllByIndividual(ctx, candidateID, now, "account_erased"); err != nil {
		return ErrInternal
	}
	for _, conn := range active {
		u.notifier.CandidateWithdrew(conn.CompanyID, conn.ID)
		u.cache.Delete(ctx, cache.JobMatchesKey(conn.JobID))
	}

	if err := u.candidates.Anonymize(ctx, candidateID); err != nil {
		return ErrInternal
	}

	u.recorder.DataDeletion(ctx, audit.AccessRecord{
		AccessedBy:   candidateID,
		TargetUser:   candidateID,
		DataAccessed: []string{"full_profile"},
		DataType:     domaudit.DataTypeGDPRErasure,
		Sensitivity:  domaudit.SensitivityHigh,
		Reason:       domaudit.ReasonGDPRRequest,
		IPAddress:    ip,
	})

	u.cache.Delete(ctx, cache.PrivacyPreviewKey(candidateID))
	u.logger.Info("account erased", zap.String("candidate_id", candidateID))
	return nil
}
