package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/ledgerline/identity/pkg/asyncx"
	"github.com/ledgerline/identity/pkg/config"
	"github.com/ledgerline/identity/pkg/errx"
	"github.com/ledgerline/identity/pkg/logx"
)

func main() {
	cfg := config.Load()

	logx.Info("Starting Ledgerline Identity API...")

	container := NewContainer(cfg)
	defer container.Cleanup()

	app := fiber.New(fiber.Config{
		AppName:               "Ledgerline Identity API",
		DisableStartupMessage: true,
		ErrorHandler:          globalErrorHandler(cfg),
		IdleTimeout:           120 * time.Second,
	})

	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))

	app.Use(requestid.New(requestid.Config{
		Header: "X-Request-ID",
		Generator: func() string {
			return uuid.NewString()
		},
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.Server.CORSOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		AllowMethods:  "GET, POST, PUT, DELETE, PATCH, HEAD, OPTIONS",
		ExposeHeaders: "X-Request-ID",
	}))

	app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${method} ${path} | ${ip} | ${reqHeader:X-Request-ID}\n",
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "Local",
	}))

	app.Get("/health", healthCheckHandler(container))

	container.Identity.AccountHandlers.RegisterRoutes(app, container.Identity.AuthMiddleware)
	logx.Info("Account routes registered")

	container.Identity.InvitationHandlers.RegisterRoutes(app, container.Identity.AuthMiddleware)
	logx.Info("Invitation routes registered")

	app.Use(notFoundHandler)

	jobCtx, stopJobs := context.WithCancel(context.Background())
	go container.Jobs.Start(jobCtx)
	if err := container.Identity.Sweeper.Schedule(jobCtx); err != nil {
		logx.WithError(err).Warn("Failed to schedule secret sweep")
	}

	startServer(app, cfg)
	stopJobs()
}

func healthCheckHandler(container *Container) fiber.Handler {
	return func(c *fiber.Ctx) error {
		health := fiber.Map{
			"status":  "healthy",
			"service": "ledgerline-identity",
		}

		checks := asyncx.AllSettled(c.Context(),
			func(context.Context) (string, error) {
				return "db", container.DB.Ping()
			},
			func(ctx context.Context) (string, error) {
				return "redis", container.Redis.Ping(ctx).Err()
			},
		)

		for _, check := range checks {
			if check.OK() {
				health[check.Value] = "healthy"
			} else {
				health[check.Value] = "unhealthy"
				health["status"] = "degraded"
			}
		}

		status := fiber.StatusOK
		if health["status"] == "degraded" {
			status = fiber.StatusServiceUnavailable
		}

		return c.Status(status).JSON(health)
	}
}

func notFoundHandler(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error":      "Route not found",
		"code":       "NOT_FOUND",
		"path":       c.Path(),
		"method":     c.Method(),
		"request_id": c.Get("X-Request-ID"),
	})
}

// globalErrorHandler converts internal errors to standard HTTP responses.
func globalErrorHandler(cfg *config.Config) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		logx.WithFields(logx.Fields{
			"path":       c.Path(),
			"method":     c.Method(),
			"ip":         c.IP(),
			"request_id": c.Get("X-Request-ID"),
		}).Errorf("Request error: %v", err)

		if e, ok := err.(*fiber.Error); ok {
			return c.Status(e.Code).JSON(fiber.Map{
				"error":      e.Message,
				"code":       "FIBER_ERROR",
				"status":     e.Code,
				"request_id": c.Get("X-Request-ID"),
			})
		}

		var e *errx.Error
		if errx.As(err, &e) {
			response := fiber.Map{
				"error":      e.Message,
				"code":       e.Code,
				"type":       string(e.Type),
				"status":     e.HTTPStatus,
				"request_id": c.Get("X-Request-ID"),
			}
			if len(e.Details) > 0 {
				response["details"] = e.Details
			}
			if cfg.Server.Debug && e.Err != nil {
				response["underlying_error"] = e.Err.Error()
			}
			return c.Status(e.HTTPStatus).JSON(response)
		}

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":      "Internal server error",
			"code":       "INTERNAL",
			"status":     fiber.StatusInternalServerError,
			"request_id": c.Get("X-Request-ID"),
		})
	}
}

func startServer(app *fiber.App, cfg *config.Config) {
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		addr := ":" + cfg.Server.Port
		logx.WithField("addr", addr).Info("HTTP server listening")
		if err := app.Listen(addr); err != nil {
			logx.Fatalf("Server failed: %v", err)
		}
	}()

	<-shutdown
	logx.Info("Shutting down...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logx.WithError(err).Error("Graceful shutdown failed")
	}

	logx.Info("Server stopped")
}
