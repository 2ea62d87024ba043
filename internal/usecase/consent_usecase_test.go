package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"neuromatch/internal/audit"
	domaudit "neuromatch/internal/domain/audit"
	"neuromatch/internal/domain/connection"
	"neuromatch/internal/domain/privacy"

	"go.uber.org/zap"
)

func activeConnection(id, individualID, companyID string) connection.Connection {
	return connection.Connection{
		ID:             id,
		IndividualID:   individualID,
		CompanyID:      companyID,
		JobID:          "job_1",
		Type:           connection.TypeJobMatch,
		Status:         connection.StatusActive,
		SharedData:     privacy.SharedData(privacy.Defaults(), false),
		PipelineStage:  connection.StageUnderReview,
		ConsentGivenAt: time.Now().UTC(),
	}
}

type consentFixture struct {
	uc       *Consent
	conns    *mockConnectionRepo
	cands    *mockCandidateRepo
	auditLog *mockAuditRepo
	notifier *mockNotifier
}

func newConsentFixture(t *testing.T, conns *mockConnectionRepo, cands *mockCandidateRepo) *consentFixture {
	t.Helper()
	auditLog := &mockAuditRepo{}
	notifier := &mockNotifier{}
	uc := NewConsentUsecase(
		conns, cands,
		audit.NewRecorder(auditLog, zap.NewNop()),
		nil, notifier, zap.NewNop(),
	)
	return &consentFixture{uc: uc, conns: conns, cands: cands, auditLog: auditLog, notifier: notifier}
}

func TestRevokeConnection(t *testing.T) {
	f := newConsentFixture(t, newMockConnectionRepo(activeConnection("conn_1", "ind_1", "comp_1")), newMockCandidateRepo())

	if err := f.uc.RevokeConnection(context.Background(), "ind_1", "conn_1", "changed my mind"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	conn, _ := f.conns.FindByID(context.Background(), "conn_1")
	if conn.Status != connection.StatusRevoked {
		t.Fatalf("connection not revoked: %+v", conn)
	}
	if conn.RevokedReason != "changed my mind" {
		t.Fatalf("reason not stored")
	}

	if len(f.notifier.withdrawn) != 1 || f.notifier.withdrawn[0] != "comp_1" {
		t.Fatalf("company must be notified of the withdrawal")
	}
	e, ok := f.auditLog.lastEvent()
	if !ok || e.EventType != domaudit.EventConsentRevoked {
		t.Fatalf("expected consent_revoked audit entry, got %+v", e)
	}
}

func TestRevokeConnection_HiredForecloses(t *testing.T) {
	conn := activeConnection("conn_1", "ind_1", "comp_1")
	conn.PipelineStage = connection.StageHired
	f := newConsentFixture(t, newMockConnectionRepo(conn), newMockCandidateRepo())

	if err := f.uc.RevokeConnection(context.Background(), "ind_1", "conn_1", ""); !errors.Is(err, ErrConsentLocked) {
		t.Fatalf("expected ErrConsentLocked, got %v", err)
	}
}

func TestRevokeConnection_AlreadyRevoked(t *testing.T) {
	conn := activeConnection("conn_1", "ind_1", "comp_1")
	conn.Status = connection.StatusRevoked
	f := newConsentFixture(t, newMockConnectionRepo(conn), newMockCandidateRepo())

	if err := f.uc.RevokeConnection(context.Background(), "ind_1", "conn_1", ""); !errors.Is(err, ErrConnectionNotActive) {
		t.Fatalf("expected ErrConnectionNotActive, got %v", err)
	}
}

func TestRevokeConnection_NotOwner(t *testing.T) {
	f := newConsentFixture(t, newMockConnectionRepo(activeConnection("conn_1", "ind_1", "comp_1")), newMockCandidateRepo())

	if err := f.uc.RevokeConnection(context.Background(), "ind_2", "conn_1", ""); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestRevokeDataPermission(t *testing.T) {
	f := newConsentFixture(t, newMockConnectionRepo(activeConnection("conn_1", "ind_1", "comp_1")), newMockCandidateRepo())

	conn, err := f.uc.RevokeDataPermission(context.Background(), "ind_1", "conn_1", []string{privacy.FieldAssessment})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if privacy.Contains(conn.SharedData, privacy.FieldAssessment) {
		t.Fatalf("revoked field still shared: %v", conn.SharedData)
	}
	if conn.CustomPrivacy.ShareAssessmentDetails == nil || *conn.CustomPrivacy.ShareAssessmentDetails {
		t.Fatalf("override must pin the field off")
	}

	stored, _ := f.conns.FindByID(context.Background(), "conn_1")
	if privacy.Contains(stored.SharedData, privacy.FieldAssessment) {
		t.Fatalf("revocation not persisted")
	}
}

func TestRevokeDataPermission_NoFields(t *testing.T) {
	f := newConsentFixture(t, newMockConnectionRepo(activeConnection("conn_1", "ind_1", "comp_1")), newMockCandidateRepo())

	if _, err := f.uc.RevokeDataPermission(context.Background(), "ind_1", "conn_1", nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCustomizePrivacy_OptInDiagnosis(t *testing.T) {
	c := testCandidate("ind_1")
	f := newConsentFixture(t, newMockConnectionRepo(activeConnection("conn_1", "ind_1", "comp_1")), newMockCandidateRepo(c))

	share := true
	conn, err := f.uc.CustomizePrivacy(context.Background(), "ind_1", "conn_1", privacy.Overrides{ShareDiagnosis: &share})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !privacy.Contains(conn.SharedData, privacy.FieldDiagnosis) {
		t.Fatalf("per-connection opt-in must expose diagnosis: %v", conn.SharedData)
	}
}

func TestCustomizePrivacy_NameStaysOnAllowList(t *testing.T) {
	f := newConsentFixture(t, newMockConnectionRepo(activeConnection("conn_1", "ind_1", "comp_1")), newMockCandidateRepo(testCandidate("ind_1")))

	hide := false
	conn, err := f.uc.CustomizePrivacy(context.Background(), "ind_1", "conn_1", privacy.Overrides{ShowRealName: &hide})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	// Anonymity is a display-name concern; the name field itself is always
	// part of the base disclosure set.
	if !privacy.Contains(conn.SharedData, privacy.FieldName) {
		t.Fatalf("name must stay on the allow-list: %v", conn.SharedData)
	}
}

func TestRevokeDataPermission_NamePinsAnonymity(t *testing.T) {
	f := newConsentFixture(t, newMockConnectionRepo(activeConnection("conn_1", "ind_1", "comp_1")), newMockCandidateRepo(testCandidate("ind_1")))

	conn, err := f.uc.RevokeDataPermission(context.Background(), "ind_1", "conn_1", []string{privacy.FieldName})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !privacy.Contains(conn.SharedData, privacy.FieldName) {
		t.Fatalf("name must stay on the allow-list: %v", conn.SharedData)
	}
	if conn.CustomPrivacy.ShowRealName == nil || *conn.CustomPrivacy.ShowRealName {
		t.Fatalf("revoking name must pin the anonymized display name: %+v", conn.CustomPrivacy)
	}
}

func TestCustomizePrivacy_InactiveConnection(t *testing.T) {
	conn := activeConnection("conn_1", "ind_1", "comp_1")
	conn.Status = connection.StatusRevoked
	f := newConsentFixture(t, newMockConnectionRepo(conn), newMockCandidateRepo(testCandidate("ind_1")))

	if _, err := f.uc.CustomizePrivacy(context.Background(), "ind_1", "conn_1", privacy.Overrides{}); !errors.Is(err, ErrConnectionNotActive) {
		t.Fatalf("expected ErrConnectionNotActive, got %v", err)
	}
}

func TestUpdatePipelineStage(t *testing.T) {
	f := newConsentFixture(t, newMockConnectionRepo(activeConnection("conn_1", "ind_1", "comp_1")), newMockCandidateRepo())

	if err := f.uc.UpdatePipelineStage(context.Background(), "comp_1", "conn_1", connection.StageInterviewing); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	conn, _ := f.conns.FindByID(context.Background(), "conn_1")
	if conn.PipelineStage != connection.StageInterviewing {
		t.Fatalf("stage not updated: %q", conn.PipelineStage)
	}

	if err := f.uc.UpdatePipelineStage(context.Background(), "comp_1", "conn_1", "daydreaming"); !errors.Is(err, ErrInvalidStage) {
		t.Fatalf("expected ErrInvalidStage, got %v", err)
	}
	if err := f.uc.UpdatePipelineStage(context.Background(), "comp_2", "conn_1", connection.StageOffered); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for foreign company, got %v", err)
	}
}

func TestListCompanyConnections_HidesRevokedReason(t *testing.T) {
	conn := activeConnection("conn_1", "ind_1", "comp_1")
	conn.RevokedReason = "private"
	f := newConsentFixture(t, newMockConnectionRepo(conn), newMockCandidateRepo())

	got, err := f.uc.ListCompanyConnections(context.Background(), "comp_1")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 1 || got[0].RevokedReason != "" {
		t.Fatalf("revocation reason must never reach the company: %+v", got)
	}
}

func TestPreviewSharing_UnknownCandidate(t *testing.T) {
	f := newConsentFixture(t, newMockConnectionRepo(), newMockCandidateRepo())

	if _, err := f.uc.PreviewSharing(context.Background(), "ind_missing"); !errors.Is(err, ErrCandidateNotFound) {
		t.Fatalf("expected ErrCandidateNotFound, got %v", err)
	}
}

func TestPreviewSharing_ReflectsSettings(t *testing.T) {
	c := testCandidate("ind_1")
	c.Privacy.ShareDiagnosis = true
	f := newConsentFixture(t, newMockConnectionRepo(), newMockCandidateRepo(c))

	p, err := f.uc.PreviewSharing(context.Background(), "ind_1")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !privacy.Contains(p.CompanyWillSee, privacy.FieldDiagnosis) {
		t.Fatalf("opted-in diagnosis missing from preview: %+v", p)
	}
	if !privacy.Contains(p.CompanyWillNotSee, privacy.FieldTherapist) {
		t.Fatalf("therapist contact should be listed as hidden: %+v", p)
	}
}
