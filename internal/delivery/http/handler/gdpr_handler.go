package handler

import (
	"neuromatch/internal/delivery/http/middleware"
	"neuromatch/internal/pkg/response"
	"neuromatch/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

// GDPRHandler serves the data subject rights endpoints. Individual role only.
type GDPRHandler struct {
	gdpr usecase.GDPRUsecase
}

func NewGDPRHandler(gdpr usecase.GDPRUsecase) *GDPRHandler {
	return &GDPRHandler{gdpr: gdpr}
}

func (h *GDPRHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/export", h.Export)
	r.Delete("/account", h.EraseAccount)
}

func (h *GDPRHandler) Export(c fiber.Ctx) error {
	export, err := h.gdpr.ExportAllData(c.Context(), middleware.CallerID(c), c.IP())
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, export)
}

func (h *GDPRHandler) EraseAccount(c fiber.Ctx) error {
	if err := h.gdpr.EraseAccount(c.Context(), middleware.CallerID(c), c.IP()); err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}
