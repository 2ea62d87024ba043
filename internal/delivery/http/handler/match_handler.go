package handler

import (
	"neuromatch/internal/delivery/http/dto"
	"neuromatch/internal/delivery/http/middleware"
	"neuromatch/internal/domain/privacy"
	"neuromatch/internal/pkg/response"
	"neuromatch/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

// MatchHandler serves match reads and the candidate-side accept/reject
// decisions.
type MatchHandler struct {
	lifecycle usecase.LifecycleUsecase
}

func NewMatchHandler(lifecycle usecase.LifecycleUsecase) *MatchHandler {
	return &MatchHandler{lifecycle: lifecycle}
}

func (h *MatchHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/:match_id", h.Get)
	r.Post("/:match_id/accept", h.Accept)
	r.Post("/:match_id/reject", h.Reject)
}

type acceptMatchRequest struct {
	OpeningMessage string                   `json:"openingMessage"`
	CustomPrivacy  *customizePrivacyRequest `json:"customPrivacy"`
}

type rejectMatchRequest struct {
	Reason string `json:"reason"`
}

func (h *MatchHandler) Get(c fiber.Ctx) error {
	m, err := h.lifecycle.GetMatch(c.Context(), middleware.CallerID(c), middleware.CallerRole(c), c.Params("match_id"))
	if err != nil {
		return mapUsecaseError(err)
	}

	if middleware.CallerID(c) == m.CompanyID {
		return response.Success(c, fiber.StatusOK, response.MessageOK, dto.FromMatchForCompany(m))
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.FromMatch(m))
}

func (h *MatchHandler) Accept(c fiber.Ctx) error {
	var req acceptMatchRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	opts := usecase.AcceptOptions{OpeningMessage: req.OpeningMessage}
	if req.CustomPrivacy != nil {
		opts.CustomPrivacy = &privacy.Overrides{
			ShowRealName:           req.CustomPrivacy.ShowRealName,
			ShareDiagnosis:         req.CustomPrivacy.ShareDiagnosis,
			ShareTherapistContact:  req.CustomPrivacy.ShareTherapistContact,
			ShareAssessmentDetails: req.CustomPrivacy.ShareAssessmentDetails,
		}
	}

	conn, err := h.lifecycle.AcceptMatch(c.Context(), middleware.CallerID(c), c.Params("match_id"), opts)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.FromConnection(conn))
}

func (h *MatchHandler) Reject(c fiber.Ctx) error {
	var req rejectMatchRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	if err := h.lifecycle.RejectMatch(c.Context(), middleware.CallerID(c), c.Params("match_id"), req.Reason); err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}
