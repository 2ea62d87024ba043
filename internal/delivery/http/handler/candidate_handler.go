package handler

import (
	"strconv"

	"neuromatch/internal/delivery/http/dto"
	"neuromatch/internal/delivery/http/middleware"
	"neuromatch/internal/domain/privacy"
	"neuromatch/internal/pkg/response"
	"neuromatch/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

// CandidateHandler serves the candidate's own profile, privacy settings and
// assessment. All routes require the individual role.
type CandidateHandler struct {
	candidates usecase.CandidateUsecase
	consent    usecase.ConsentUsecase
	matching   usecase.MatchingUsecase
	lifecycle  usecase.LifecycleUsecase
	access     usecase.AccessUsecase
}

func NewCandidateHandler(
	candidates usecase.CandidateUsecase,
	consent usecase.ConsentUsecase,
	matching usecase.MatchingUsecase,
	lifecycle usecase.LifecycleUsecase,
	access usecase.AccessUsecase,
) *CandidateHandler {
	return &CandidateHandler{
		candidates: candidates,
		consent:    consent,
		matching:   matching,
		lifecycle:  lifecycle,
		access:     access,
	}
}

func (h *CandidateHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/profile", h.GetProfile)
	r.Put("/profile", h.UpdateProfile)
	r.Put("/privacy", h.UpdatePrivacy)
	r.Get("/privacy/preview", h.PreviewSharing)
	r.Post("/assessment", h.SubmitAssessment)
	r.Post("/matching/run", h.RunMatching)
	r.Get("/matches", h.ListMatches)
	r.Get("/access-history", h.AccessHistory)
}

type updateProfileRequest struct {
	Name                 string            `json:"name"`
	Location             string            `json:"location"`
	Bio                  string            `json:"bio"`
	Skills               []string          `json:"skills"`
	Experience           string            `json:"experience"`
	Education            string            `json:"education"`
	AccommodationsNeeded []string          `json:"accommodationsNeeded"`
	Preferences          map[string]string `json:"preferences"`
	Diagnoses            []string          `json:"diagnoses"`
	MedicalHistory       string            `json:"medicalHistory"`
	TherapistID          string            `json:"therapistId"`
}

type updatePrivacyRequest struct {
	VisibleInSearch        bool `json:"visibleInSearch"`
	ShowRealName           bool `json:"showRealName"`
	ShareDiagnosis         bool `json:"shareDiagnosis"`
	ShareTherapistContact  bool `json:"shareTherapistContact"`
	ShareAssessmentDetails bool `json:"shareAssessmentDetails"`
}

type submitAssessmentRequest struct {
	Strengths       []string `json:"strengths"`
	TechnicalSkills []string `json:"technicalSkills"`
	SoftSkills      []string `json:"softSkills"`
	Score           int      `json:"score"`
}

func (h *CandidateHandler) GetProfile(c fiber.Ctx) error {
	cand, err := h.candidates.Get(c.Context(), middleware.CallerID(c))
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.FromCandidate(cand))
}

func (h *CandidateHandler) UpdateProfile(c fiber.Ctx) error {
	var req updateProfileRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	cand, err := h.candidates.UpdateProfile(c.Context(), middleware.CallerID(c), usecase.UpdateProfileInput(req))
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.FromCandidate(cand))
}

func (h *CandidateHandler) UpdatePrivacy(c fiber.Ctx) error {
	var req updatePrivacyRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	cand, err := h.candidates.UpdatePrivacy(c.Context(), middleware.CallerID(c), privacy.Settings(req))
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.FromCandidate(cand))
}

func (h *CandidateHandler) PreviewSharing(c fiber.Ctx) error {
	preview, err := h.consent.PreviewSharing(c.Context(), middleware.CallerID(c))
	if err != nil {
		return mapUsecaseError(err)
	}

	data := map[string]any{
		"companyWillSee":    preview.CompanyWillSee,
		"companyWillNotSee": preview.CompanyWillNotSee,
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, data)
}

func (h *CandidateHandler) SubmitAssessment(c fiber.Ctx) error {
	var req submitAssessmentRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	cand, err := h.candidates.SubmitAssessment(c.Context(), middleware.CallerID(c), usecase.SubmitAssessmentInput(req))
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.FromCandidate(cand))
}

// RunMatching scores the caller against all active jobs, typically after an
// assessment completes.
func (h *CandidateHandler) RunMatching(c fiber.Ctx) error {
	report, err := h.matching.RunMatchingForCandidate(c.Context(), middleware.CallerID(c))
	if err != nil {
		return mapUsecaseError(err)
	}

	data := map[string]any{
		"matches":  dto.FromMatches(report.Created),
		"warnings": report.Warnings,
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, data)
}

func (h *CandidateHandler) ListMatches(c fiber.Ctx) error {
	matches, err := h.lifecycle.ListCandidateMatches(c.Context(), middleware.CallerID(c))
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.FromMatches(matches))
}

func (h *CandidateHandler) AccessHistory(c fiber.Ctx) error {
	viewer := usecase.Viewer{
		ID:        middleware.CallerID(c),
		Role:      middleware.CallerRole(c),
		IPAddress: c.IP(),
	}
	entries, err := h.access.AccessHistory(c.Context(), viewer, viewer.ID, parseQueryInt(c, "limit", 100))
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.FromAuditEntries(entries))
}

func parseQueryInt(c fiber.Ctx, key string, defaultVal int) int {
	s := c.Query(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return defaultVal
	}
	return v
}
