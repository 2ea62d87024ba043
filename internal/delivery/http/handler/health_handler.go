package handler

import (
	"context"
	"time"

	"neuromatch/internal/database"
	"neuromatch/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

type HealthHandler struct {
	db database.DB
}

func NewHealthHandler(db database.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) RegisterRoutes(app *fiber.App) {
	if app == nil {
		return
	}
	app.Get("/health", h.Health)
}

func (h *HealthHandler) Health(c fiber.Ctx) error {
	status := map[string]string{"database": "ok"}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			status["database"] = "unreachable"
			return response.Error(c, fiber.StatusServiceUnavailable, response.MessageError, status)
		}
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, status)
}
