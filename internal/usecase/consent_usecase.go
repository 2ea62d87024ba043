package usecase

import (
	"context"
	"errors"
	"time"

	"neuromatch/internal/audit"
	domaudit "neuromatch/internal/domain/audit"
	"neuromatch/internal/domain/connection"
	"neuromatch/internal/domain/privacy"
	"neuromatch/internal/infrastructure/cache"
	"neuromatch/internal/notification"
	"neuromatch/internal/repository"

	"go.uber.org/zap"
)

type ConsentUsecase interface {
	PreviewSharing(ctx context.Context, candidateID string) (privacy.Preview, error)
	ListConnections(ctx context.Context, individualID string) ([]connection.Connection, error)
	ListCompanyConnections(ctx context.Context, companyID string) ([]connection.Connection, error)
	RevokeConnection(ctx context.Context, candidateID, connectionID, reason string) error
	RevokeDataPermission(ctx context.Context, candidateID, connectionID string, fields []string) (connection.Connection, error)
	CustomizePrivacy(ctx context.Context, candidateID, connectionID string, overrides privacy.Overrides) (connection.Connection, error)
	UpdatePipelineStage(ctx context.Context, companyID, connectionID string, stage connection.Stage) error
}

type Consent struct {
	connections repository.ConnectionRepository
	candidates  repository.CandidateRepository
	recorder    *audit.Recorder
	cache       *cache.Redis
	notifier    notification.Notifier
	logger      *zap.Logger
	now         func() time.Time
}

func NewConsentUsecase(
	connections repository.ConnectionRepository,
	candidates repository.CandidateRepository,
	recorder *audit.Recorder,
	c *cache.Redis,
	notifier notification.Notifier,
	logger *zap.Logger,
) *Consent {
	return &Consent{
		connections: connections,
		candidates:  candidates,
		recorder:    recorder,
		cache:       c,
		notifier:    notifier,
		logger:      logger,
		now:         time.Now,
	}
}

// PreviewSharing shows a candidate exactly which fields a company would see
// under their current privacy settings, before any consent is granted.
func (u *Consent) PreviewSharing(ctx context.Context, candidateID string) (privacy.Preview, error) {
	key := cache.PrivacyPreviewKey(candidateID)
	var cached privacy.Preview
	if ok, _ := u.cache.GetJSON(ctx, key, &cached); ok {
		return cached, nil
	}

	c, err := u.candidates.FindByID(ctx, candidateID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return privacy.Preview{}, ErrCandidateNotFound
		}
		return privacy.Preview{}, ErrInternal
	}

	preview := privacy.BuildPreview(c.Privacy, c.HasTherapist())
	if err := u.cache.SetJSON(ctx, key, preview, 0); err != nil {
		u.logger.Debug("preview cache write failed", zap.String("candidate_id", candidateID), zap.Error(err))
	}
	return preview, nil
}

func (u *Consent) ListConnections(ctx context.Context, individualID string) ([]connection.Connection, error) {
	conns, err := u.connections.ListByIndividual(ctx, individualID)
	if err != nil {
		return nil, ErrInternal
	}
	return conns, nil
}

func (u *Consent) ListCompanyConnections(ctx context.Context, companyID string) ([]connection.Connection, error) {
	conns, err := u.connections.ListActiveByCompany(ctx, companyID)
	if err != nil {
		return nil, ErrInternal
	}
	// The revocation reason is private to the candidate.
	for i := range conns {
		conns[i].RevokedReason = ""
	}
	return conns, nil
}

// RevokeConnection withdraws consent entirely. The company loses access
// immediately and is notified without the candidate's reason. A hired
// connection can no longer be revoked.
func (u *Consent) RevokeConnection(ctx context.Context, candidateID, connectionID, reason string) error {
	conn, err := u.ownedConnection(ctx, candidateID, connectionID)
	if err != nil {
		return err
	}

	ok, err := u.connections.RevokeIfRevocable(ctx, connectionID, u.now().UTC(), reason)
	if err != nil {
		return ErrInternal
	}
	if !ok {
		if conn.PipelineStage == connection.StageHired {
			return ErrConsentLocked
		}
		return ErrConnectionNotActive
	}

	u.recorder.ConsentRevoked(ctx, audit.AccessRecord{
		AccessedBy:   candidateID,
		TargetUser:   candidateID,
		DataAccessed: conn.SharedData,
		DataType:     domaudit.DataTypeProfile,
		Sensitivity:  consentSensitivity(conn.SharedData),
		Reason:       domaudit.ReasonConsentLifecycle,
	})

	u.notifier.CandidateWithdrew(conn.CompanyID, conn.ID)
	u.cache.Delete(ctx, cache.PrivacyPreviewKey(candidateID))
	u.cache.Delete(ctx, cache.JobMatchesKey(conn.JobID))
	return nil
}

// RevokeDataPermission withdraws individual fields from an active connection
// without tearing the connection down.
func (u *Consent) RevokeDataPermission(ctx context.Context, candidateID, connectionID string, fields []string) (connection.Connection, error) {
	conn, err := u.ownedConnection(ctx, candidateID, connectionID)
	if err != nil {
		return connection.Connection{}, err
	}
	if !conn.Active() {
		return connection.Connection{}, ErrConnectionNotActive
	}
	if len(fields) == 0 {
		return connection.Connection{}, ErrInvalidInput
	}

	// Name stays on the allow-list unconditionally; revoking it only pins
	// the anonymized display name.
	removable := make([]string, 0, len(fields))
	for _, f := range fields {
		off := false
		switch f {
		case privacy.FieldName:
			conn.CustomPrivacy.ShowRealName = &off
			continue
		case privacy.FieldDiagnosis:
			conn.CustomPrivacy.ShareDiagnosis = &off
		case privacy.FieldTherapist:
			conn.CustomPrivacy.ShareTherapistContact = &off
		case privacy.FieldAssessment:
			conn.CustomPrivacy.ShareAssessmentDetails = &off
		}
		removable = append(removable, f)
	}
	conn.SharedData = privacy.Remove(conn.SharedData, removable)

	if err := u.connections.UpdateSharedData(ctx, connectionID, conn.SharedData, conn.CustomPrivacy); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return connection.Connection{}, ErrConnectionNotActive
		}
		return connection.Connection{}, ErrInternal
	}

	u.recorder.ConsentRevoked(ctx, audit.AccessRecord{
		AccessedBy:   candidateID,
		TargetUser:   candidateID,
		DataAccessed: fields,
		DataType:     domaudit.DataTypeProfile,
		Sensitivity:  consentSensitivity(fields),
		Reason:       domaudit.ReasonConsentLifecycle,
	})

	return conn, nil
}

// CustomizePrivacy applies per-connection overrides on top of the candidate's
// global settings and rebuilds the sharedData allow-list from the effective
// result.
func (u *Consent) CustomizePrivacy(ctx context.Context, candidateID, connectionID string, overrides privacy.Overrides) (connection.Connection, error) {
	conn, err := u.ownedConnection(ctx, candidateID, connectionID)
	if err != nil {
		return connection.Connection{}, err
	}
	if !conn.Active() {
		return connection.Connection{}, ErrConnectionNotActive
	}

	c, err := u.candidates.FindByID(ctx, candidateID)
	if err != nil {
		return connection.Connection{}, ErrInternal
	}

	// Name always stays on the allow-list; a ShowRealName=false override
	// anonymizes the display name without removing the field.
	eff := privacy.Effective(overrides, c.Privacy)
	conn.CustomPrivacy = overrides
	conn.SharedData = privacy.SharedData(eff, c.HasTherapist())

	if err := u.connections.UpdateSharedData(ctx, connectionID, conn.SharedData, conn.CustomPrivacy); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return connection.Connection{}, ErrConnectionNotActive
		}
		return connection.Connection{}, ErrInternal
	}

	return conn, nil
}

// UpdatePipelineStage moves a candidate through the company's recruiting
// funnel. Reaching hired permanently forecloses revocation.
func (u *Consent) UpdatePipelineStage(ctx context.Context, companyID, connectionID string, stage connection.Stage) error {
	if !connection.ValidStage(stage) {
		return ErrInvalidStage
	}

	conn, err := u.connections.FindByID(ctx, connectionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrConnectionNotFound
		}
		return ErrInternal
	}
	if conn.CompanyID != companyID {
		return ErrForbidden
	}

	if err := u.connections.UpdateStage(ctx, connectionID, stage); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrConnectionNotActive
		}
		return ErrInternal
	}
	return nil
}

func (u *Consent) ownedConnection(ctx context.Context, candidateID, connectionID string) (connection.Connection, error) {
	conn, err := u.connections.FindByID(ctx, connectionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return connection.Connection{}, ErrConnectionNotFound
		}
		return connection.Connection{}, ErrInternal
	}
	if conn.IndividualID != candidateID {
		return connection.Connection{}, ErrForbidden
	}
	return conn, nil
}
