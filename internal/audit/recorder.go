package audit

import (
	"context"
	"time"

	domain "neuromatch/internal/domain/audit"
	"neuromatch/internal/domain/id"
	"neuromatch/internal/repository"

	"go.uber.org/zap"
)

// Recorder writes audit entries around primary operations. Audit failures
// are logged and swallowed: an unavailable audit store must never block a
// data access or a GDPR request.
type Recorder struct {
	repo   repository.AuditRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewRecorder(repo repository.AuditRepository, logger *zap.Logger) *Recorder {
	return &Recorder{repo: repo, logger: logger, now: time.Now}
}

type AccessRecord struct {
	AccessedBy   string
	TargetUser   string
	DataAccessed []string
	DataType     domain.DataType
	Sensitivity  domain.Sensitivity
	Reason       string
	IPAddress    string
}

func (r *Recorder) DataAccess(ctx context.Context, rec AccessRecord) {
	r.append(ctx, domain.EventDataAccess, rec)
}

func (r *Recorder) DataMutation(ctx context.Context, rec AccessRecord) {
	r.append(ctx, domain.EventDataMutation, rec)
}

func (r *Recorder) DataDeletion(ctx context.Context, rec AccessRecord) {
	r.append(ctx, domain.EventDataDeletion, rec)
}

func (r *Recorder) ConsentGranted(ctx context.Context, rec AccessRecord) {
	r.append(ctx, domain.EventConsentGranted, rec)
}

func (r *Recorder) ConsentRevoked(ctx context.Context, rec AccessRecord) {
	r.append(ctx, domain.EventConsentRevoked, rec)
}

func (r *Recorder) History(ctx context.Context, targetUser string, limit int) ([]domain.Entry, error) {
	return r.repo.ListByTarget(ctx, targetUser, limit)
}

func (r *Recorder) append(ctx context.Context, event domain.EventType, rec AccessRecord) {
	entry := domain.Entry{
		ID:               id.New(id.PrefixAudit),
		EventType:        event,
		AccessedBy:       rec.AccessedBy,
		TargetUser:       rec.TargetUser,
		DataAccessed:     rec.DataAccessed,
		DataType:         rec.DataType,
		SensitivityLevel: rec.Sensitivity,
		Reason:           rec.Reason,
		IPAddress:        rec.IPAddress,
		Timestamp:        r.now().UTC(),
	}
	if err := r.repo.Append(ctx, entry); err != nil {
		r.logger.Error("audit append failed",
			zap.String("event_type", string(event)),
			zap.String("target_user", rec.TargetUser),
			zap.Error(err))
	}
}
