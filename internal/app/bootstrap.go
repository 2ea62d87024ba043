package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"neuromatch/internal/config"
	"neuromatch/internal/delivery/http/handler"
	"neuromatch/internal/delivery/http/middleware"
	"neuromatch/internal/delivery/http/routes"
	v1 "neuromatch/internal/delivery/http/routes/v1"
	"neuromatch/internal/ws"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// recalcBatchSize bounds how many fallback-scored matches each retry
// pass re-submits to the semantic oracle.
const recalcBatchSize = 50

type App struct {
	Fiber     *fiber.App
	Container *Container
}

// Bootstrap builds the container, mounts middleware and routes, and starts
// the background workers. The returned cleanup stops the workers and closes
// every connection; call it on shutdown.
func Bootstrap(cfg config.Config, log *zap.Logger) (*App, func() error, error) {
	c, err := NewContainer(cfg, log)
	if err != nil {
		return nil, nil, err
	}

	f := fiber.New(fiber.Config{
		AppName: cfg.App.AppName,
	})

	registerGlobalMiddleware(f, c)
	registerRoutes(f, c)

	go c.Hub.Run()
	stopWorkers := startBackgroundWorkers(c)

	cleanup := func() error {
		stopWorkers()
		return c.Close()
	}

	return &App{Fiber: f, Container: c}, cleanup, nil
}

func registerGlobalMiddleware(app *fiber.App, c *Container) {
	if app == nil {
		return
	}

	app.Use(middleware.NewErrorMiddleware(c.Logger).Middleware())
	app.Use(middleware.NewAccessLogMiddleware(c.Logger).Middleware())
}

func registerRoutes(app *fiber.App, c *Container) {
	if app == nil {
		return
	}

	authMw := middleware.NewAuthMiddleware(c.JWT)

	handlers := v1.Handlers{
		Auth: handler.NewAuthHandler(c.AuthUC),
		Candidate: handler.NewCandidateHandler(
			c.CandidateUC, c.ConsentUC, c.MatchingUC, c.LifecycleUC, c.AccessUC,
		),
		Job:        handler.NewJobHandler(c.JobUC, c.MatchingUC, c.LifecycleUC),
		Match:      handler.NewMatchHandler(c.LifecycleUC),
		Connection: handler.NewConnectionHandler(c.ConsentUC),
		Access:     handler.NewAccessHandler(c.AccessUC),
		GDPR:       handler.NewGDPRHandler(c.GDPRUC),
		WS:         ws.NewHandler(c.Hub, c.Logger),
	}

	registry := routes.NewRegistry(handler.NewHealthHandler(c.DB), authMw, handlers)
	registry.Register(app)
}

// startBackgroundWorkers runs the match expiry sweep and the oracle retry
// loop. Both are best-effort; failures are logged and retried next tick.
func startBackgroundWorkers(c *Container) func() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	interval := c.Config.Matching.SweepInterval
	if interval <= 0 {
		interval = time.Hour
	}

	go func() {
		defer close(done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				expired, err := c.LifecycleUC.ProcessExpiredMatches(ctx)
				if err != nil {
					c.Logger.Error("expired match sweep failed", zap.Error(err))
				} else if expired > 0 {
					c.Logger.Info("expired matches swept", zap.Int("count", expired))
				}

				updated, err := c.MatchingUC.RecalculateFallbackMatches(ctx, recalcBatchSize)
				if err != nil {
					c.Logger.Error("fallback recalculation failed", zap.Error(err))
				} else if updated > 0 {
					c.Logger.Info("fallback matches rescored", zap.Int("count", updated))
				}
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
