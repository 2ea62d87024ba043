package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"neuromatch/internal/audit"
	domaudit "neuromatch/internal/domain/audit"
	"neuromatch/internal/domain/privacy"
	"neuromatch/internal/pkg/jwt"

	"go.uber.org/zap"
)

type accessFixture struct {
	uc       *Access
	conns    *mockConnectionRepo
	auditLog *mockAuditRepo
}

func newAccessFixture(t *testing.T, cands *mockCandidateRepo, conns *mockConnectionRepo) *accessFixture {
	t.Helper()
	auditLog := &mockAuditRepo{}
	uc := NewAccessUsecase(cands, conns, audit.NewRecorder(auditLog, zap.NewNop()))
	return &accessFixture{uc: uc, conns: conns, auditLog: auditLog}
}

func sensitiveCandidate(id string) *mockCandidateRepo {
	c := testCandidate(id)
	c.Profile.Diagnoses = []string{"ADHD"}
	c.Profile.MedicalHistory = "diagnosed 2019, ongoing therapy"
	c.Profile.TherapistID = "ther_1"
	c.Profile.AccommodationsNeeded = []string{"quiet workspace"}
	return newMockCandidateRepo(c)
}

func TestViewCandidate_Self(t *testing.T) {
	f := newAccessFixture(t, sensitiveCandidate("ind_1"), newMockConnectionRepo())

	v, err := f.uc.ViewCandidate(context.Background(), Viewer{ID: "ind_1", Role: jwt.RoleIndividual}, "ind_1")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(v.Diagnoses) == 0 || v.Email == "" {
		t.Fatalf("self view must be unfiltered: %+v", v)
	}

	e, ok := f.auditLog.lastEvent()
	if !ok || e.Reason != domaudit.ReasonSelfAccess || e.SensitivityLevel != domaudit.SensitivityLow {
		t.Fatalf("self access must be audited low sensitivity, got %+v", e)
	}
}

func TestViewCandidate_AssignedTherapist(t *testing.T) {
	f := newAccessFixture(t, sensitiveCandidate("ind_1"), newMockConnectionRepo())

	v, err := f.uc.ViewCandidate(context.Background(), Viewer{ID: "ther_1", Role: jwt.RoleTherapist}, "ind_1")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(v.Diagnoses) == 0 || v.MedicalHistory == "" {
		t.Fatalf("assigned therapist must see the full medical record: %+v", v)
	}
	if v.Email == "" || len(v.Skills) == 0 {
		t.Fatalf("therapist access covers the full profile: %+v", v)
	}

	e, ok := f.auditLog.lastEvent()
	if !ok || e.Reason != domaudit.ReasonTherapistPatientCare || e.SensitivityLevel != domaudit.SensitivityHigh {
		t.Fatalf("therapist access must be audited high sensitivity, got %+v", e)
	}
}

func TestViewCandidate_UnassignedTherapist(t *testing.T) {
	f := newAccessFixture(t, sensitiveCandidate("ind_1"), newMockConnectionRepo())

	if _, err := f.uc.ViewCandidate(context.Background(), Viewer{ID: "ther_2", Role: jwt.RoleTherapist}, "ind_1"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, ok := f.auditLog.lastEvent(); ok {
		t.Fatalf("denied access must not produce a data access entry")
	}
}

func TestViewCandidate_CompanyWithoutConnection(t *testing.T) {
	f := newAccessFixture(t, sensitiveCandidate("ind_1"), newMockConnectionRepo())

	if _, err := f.uc.ViewCandidate(context.Background(), Viewer{ID: "comp_1", Role: jwt.RoleCompany}, "ind_1"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestViewCandidate_CompanyFilteredByAllowList(t *testing.T) {
	f := newAccessFixture(t, sensitiveCandidate("ind_1"), newMockConnectionRepo(activeConnection("conn_1", "ind_1", "comp_1")))

	v, err := f.uc.ViewCandidate(context.Background(), Viewer{ID: "comp_1", Role: jwt.RoleCompany}, "ind_1")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(v.Diagnoses) != 0 || v.MedicalHistory != "" || v.TherapistID != "" {
		t.Fatalf("gated fields leaked to company: %+v", v)
	}
	if len(v.Skills) == 0 || v.Email == "" {
		t.Fatalf("allow-listed fields missing: %+v", v)
	}
	if !strings.HasPrefix(v.DisplayName, "Anonymous Candidate ") {
		t.Fatalf("name must be anonymized by default, got %q", v.DisplayName)
	}

	e, ok := f.auditLog.lastEvent()
	if !ok || e.Reason != domaudit.ReasonPipelineReview || e.SensitivityLevel != domaudit.SensitivityMedium {
		t.Fatalf("company access must be audited medium sensitivity, got %+v", e)
	}
}

func TestViewCandidate_CompanySeesDiagnosisWhenShared(t *testing.T) {
	conn := activeConnection("conn_1", "ind_1", "comp_1")
	share := true
	conn.CustomPrivacy.ShareDiagnosis = &share
	conn.SharedData = append(conn.SharedData, privacy.FieldDiagnosis)
	f := newAccessFixture(t, sensitiveCandidate("ind_1"), newMockConnectionRepo(conn))

	v, err := f.uc.ViewCandidate(context.Background(), Viewer{ID: "comp_1", Role: jwt.RoleCompany}, "ind_1")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(v.Diagnoses) == 0 {
		t.Fatalf("shared diagnosis missing from view")
	}

	e, ok := f.auditLog.lastEvent()
	if !ok || e.SensitivityLevel != domaudit.SensitivityHigh {
		t.Fatalf("medical disclosure must escalate sensitivity, got %+v", e)
	}
}

func TestViewCandidate_Unknown(t *testing.T) {
	f := newAccessFixture(t, newMockCandidateRepo(), newMockConnectionRepo())

	if _, err := f.uc.ViewCandidate(context.Background(), Viewer{ID: "ind_1", Role: jwt.RoleIndividual}, "ind_1"); !errors.Is(err, ErrCandidateNotFound) {
		t.Fatalf("expected ErrCandidateNotFound, got %v", err)
	}
}

func TestAccessHistory_SelfOnly(t *testing.T) {
	f := newAccessFixture(t, sensitiveCandidate("ind_1"), newMockConnectionRepo())
	f.auditLog.entries = []domaudit.Entry{{ID: "adt_1", TargetUser: "ind_1"}}

	entries, err := f.uc.AccessHistory(context.Background(), Viewer{ID: "ind_1", Role: jwt.RoleIndividual}, "ind_1", 100)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	if _, err := f.uc.AccessHistory(context.Background(), Viewer{ID: "comp_1", Role: jwt.RoleCompany}, "ind_1", 100); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := f.uc.AccessHistory(context.Background(), Viewer{ID: "ind_2", Role: jwt.RoleIndividual}, "ind_1", 100); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for foreign individual, got %v", err)
	}
}
