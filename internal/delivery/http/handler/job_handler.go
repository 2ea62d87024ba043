package handler

import (
	"neuromatch/internal/delivery/http/dto"
	"neuromatch/internal/delivery/http/middleware"
	"neuromatch/internal/pkg/response"
	"neuromatch/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

// JobHandler serves company job management and job-scoped matching.
type JobHandler struct {
	jobs      usecase.JobUsecase
	matching  usecase.MatchingUsecase
	lifecycle usecase.LifecycleUsecase
}

func NewJobHandler(jobs usecase.JobUsecase, matching usecase.MatchingUsecase, lifecycle usecase.LifecycleUsecase) *JobHandler {
	return &JobHandler{jobs: jobs, matching: matching, lifecycle: lifecycle}
}

func (h *JobHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Post("/", h.Create)
	r.Get("/:job_id", h.Get)
	r.Put("/:job_id", h.Update)
	r.Post("/:job_id/close", h.Close)
	r.Post("/:job_id/matching/run", h.RunMatching)
	r.Get("/:job_id/matches", h.ListMatches)
}

type jobRequest struct {
	Title                 string            `json:"title"`
	Description           string            `json:"description"`
	RequiredSkills        []string          `json:"requiredSkills"`
	AccommodationsOffered []string          `json:"accommodationsOffered"`
	Location              string            `json:"location"`
	WorkMode              string            `json:"workMode"`
	Attributes            map[string]string `json:"attributes"`
}

func (h *JobHandler) Create(c fiber.Ctx) error {
	var req jobRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	j, err := h.jobs.Create(c.Context(), middleware.CallerID(c), usecase.JobInput(req))
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.FromJob(j))
}

func (h *JobHandler) Get(c fiber.Ctx) error {
	j, err := h.jobs.Get(c.Context(), c.Params("job_id"))
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.FromJob(j))
}

func (h *JobHandler) Update(c fiber.Ctx) error {
	var req jobRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	j, err := h.jobs.Update(c.Context(), middleware.CallerID(c), c.Params("job_id"), usecase.JobInput(req))
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.FromJob(j))
}

func (h *JobHandler) Close(c fiber.Ctx) error {
	if err := h.jobs.Close(c.Context(), middleware.CallerID(c), c.Params("job_id")); err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

// RunMatching triggers a scoring run over all matchable candidates. The
// response reveals only run-level warnings, never the pending matches
// themselves.
func (h *JobHandler) RunMatching(c fiber.Ctx) error {
	j, err := h.jobs.Get(c.Context(), c.Params("job_id"))
	if err != nil {
		return mapUsecaseError(err)
	}
	if j.CompanyID != middleware.CallerID(c) {
		return mapUsecaseError(usecase.ErrForbidden)
	}

	report, err := h.matching.RunMatchingForJob(c.Context(), j.ID)
	if err != nil {
		return mapUsecaseError(err)
	}

	data := map[string]any{
		"matchesCreated": len(report.Created),
		"warnings":       report.Warnings,
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, data)
}

func (h *JobHandler) ListMatches(c fiber.Ctx) error {
	matches, err := h.lifecycle.ListJobMatches(c.Context(), middleware.CallerID(c), c.Params("job_id"))
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.FromMatchesForCompany(matches))
}
