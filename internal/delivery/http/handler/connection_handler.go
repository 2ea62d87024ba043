package handler

import (
	"neuromatch/internal/delivery/http/dto"
	"neuromatch/internal/delivery/http/middleware"
	"neuromatch/internal/domain/connection"
	"neuromatch/internal/domain/privacy"
	"neuromatch/internal/pkg/jwt"
	"neuromatch/internal/pkg/response"
	"neuromatch/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

// ConnectionHandler serves the consent ledger: listing, revocation, field
// withdrawal, per-connection privacy and pipeline stage moves.
type ConnectionHandler struct {
	consent usecase.ConsentUsecase
}

func NewConnectionHandler(consent usecase.ConsentUsecase) *ConnectionHandler {
	return &ConnectionHandler{consent: consent}
}

func (h *ConnectionHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/", h.List)
	r.Post("/:connection_id/revoke", h.Revoke)
	r.Post("/:connection_id/revoke-fields", h.RevokeFields)
	r.Put("/:connection_id/privacy", h.CustomizePrivacy)
	r.Put("/:connection_id/stage", h.UpdateStage)
}

type revokeRequest struct {
	Reason string `json:"reason"`
}

type revokeFieldsRequest struct {
	Fields []string `json:"fields"`
}

type customizePrivacyRequest struct {
	ShowRealName           *bool `json:"showRealName"`
	ShareDiagnosis         *bool `json:"shareDiagnosis"`
	ShareTherapistContact  *bool `json:"shareTherapistContact"`
	ShareAssessmentDetails *bool `json:"shareAssessmentDetails"`
}

type updateStageRequest struct {
	Stage string `json:"stage"`
}

// List returns the caller's side of the ledger: individuals see their full
// history including revoked entries, companies see only active consents.
func (h *ConnectionHandler) List(c fiber.Ctx) error {
	switch middleware.CallerRole(c) {
	case jwt.RoleIndividual:
		conns, err := h.consent.ListConnections(c.Context(), middleware.CallerID(c))
		if err != nil {
			return mapUsecaseError(err)
		}
		return response.Success(c, fiber.StatusOK, response.MessageOK, dto.FromConnections(conns))

	case jwt.RoleCompany:
		conns, err := h.consent.ListCompanyConnections(c.Context(), middleware.CallerID(c))
		if err != nil {
			return mapUsecaseError(err)
		}
		return response.Success(c, fiber.StatusOK, response.MessageOK, dto.FromConnectionsForCompany(conns))

	default:
		return mapUsecaseError(usecase.ErrForbidden)
	}
}

func (h *ConnectionHandler) Revoke(c fiber.Ctx) error {
	var req revokeRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	err := h.consent.RevokeConnection(c.Context(), middleware.CallerID(c), c.Params("connection_id"), req.Reason)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

func (h *ConnectionHandler) RevokeFields(c fiber.Ctx) error {
	var req revokeFieldsRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	conn, err := h.consent.RevokeDataPermission(c.Context(), middleware.CallerID(c), c.Params("connection_id"), req.Fields)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.FromConnection(conn))
}

func (h *ConnectionHandler) CustomizePrivacy(c fiber.Ctx) error {
	var req customizePrivacyRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	overrides := privacy.Overrides{
		ShowRealName:           req.ShowRealName,
		ShareDiagnosis:         req.ShareDiagnosis,
		ShareTherapistContact:  req.ShareTherapistContact,
		ShareAssessmentDetails: req.ShareAssessmentDetails,
	}

	conn, err := h.consent.CustomizePrivacy(c.Context(), middleware.CallerID(c), c.Params("connection_id"), overrides)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.FromConnection(conn))
}

func (h *ConnectionHandler) UpdateStage(c fiber.Ctx) error {
	var req updateStageRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	err := h.consent.UpdatePipelineStage(c.Context(), middleware.CallerID(c), c.Params("connection_id"), connection.Stage(req.Stage))
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}
