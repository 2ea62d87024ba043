package v1

import (
	"neuromatch/internal/delivery/http/handler"
	"neuromatch/internal/delivery/http/middleware"
	"neuromatch/internal/pkg/jwt"
	"neuromatch/internal/ws"

	"github.com/gofiber/fiber/v3"
)

// Handlers bundles every v1 handler for route registration.
type Handlers struct {
	Auth       *handler.AuthHandler
	Candidate  *handler.CandidateHandler
	Job        *handler.JobHandler
	Match      *handler.MatchHandler
	Connection *handler.ConnectionHandler
	Access     *handler.AccessHandler
	GDPR       *handler.GDPRHandler
	WS         *ws.Handler
}

func Register(r fiber.Router, authMw *middleware.AuthMiddleware, h Handlers) {
	if r == nil {
		return
	}

	authGroup := r.Group("/auth")
	h.Auth.RegisterRoutes(authGroup)

	protected := r.Group("", authMw.Middleware())

	meGroup := protected.Group("/me", authMw.RequireRoles(jwt.RoleIndividual))
	h.Candidate.RegisterRoutes(meGroup)

	gdprGroup := protected.Group("/gdpr", authMw.RequireRoles(jwt.RoleIndividual))
	h.GDPR.RegisterRoutes(gdprGroup)

	jobsGroup := protected.Group("/jobs", authMw.RequireRoles(jwt.RoleCompany))
	h.Job.RegisterRoutes(jobsGroup)

	matchesGroup := protected.Group("/matches")
	h.Match.RegisterRoutes(matchesGroup)

	connectionsGroup := protected.Group("/connections")
	h.Connection.RegisterRoutes(connectionsGroup)

	candidatesGroup := protected.Group("/candidates")
	h.Access.RegisterRoutes(candidatesGroup)

	if h.WS != nil {
		protected.Get("/notifications/ws", h.WS.HandleNotifications)
	}
}
