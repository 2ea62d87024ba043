package handler

import (
	"neuromatch/internal/delivery/http/dto"
	"neuromatch/internal/delivery/http/middleware"
	"neuromatch/internal/pkg/response"
	"neuromatch/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

// AccessHandler is the single HTTP surface through which candidate profiles
// are read by anyone, including the candidate.
type AccessHandler struct {
	access usecase.AccessUsecase
}

func NewAccessHandler(access usecase.AccessUsecase) *AccessHandler {
	return &AccessHandler{access: access}
}

func (h *AccessHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/:candidate_id", h.ViewCandidate)
}

func (h *AccessHandler) ViewCandidate(c fiber.Ctx) error {
	viewer := usecase.Viewer{
		ID:        middleware.CallerID(c),
		Role:      middleware.CallerRole(c),
		IPAddress: c.IP(),
	}

	view, err := h.access.ViewCandidate(c.Context(), viewer, c.Params("candidate_id"))
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.FromCandidateView(view))
}
