package routes

import (
	"neuromatch/internal/delivery/http/handler"
	"neuromatch/internal/delivery/http/middleware"
	v1 "neuromatch/internal/delivery/http/routes/v1"

	"github.com/gofiber/fiber/v3"
)

type Registry struct {
	health   *handler.HealthHandler
	authMw   *middleware.AuthMiddleware
	handlers v1.Handlers
}

func NewRegistry(health *handler.HealthHandler, authMw *middleware.AuthMiddleware, handlers v1.Handlers) *Registry {
	return &Registry{health: health, authMw: authMw, handlers: handlers}
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	r.health.RegisterRoutes(app)

	api := app.Group("/api")
	v1.Register(api.Group("/v1"), r.authMw, r.handlers)
}
