package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/talentbridge/talentbridge-api/app/controllers"
)

type Router interface {
	InstallRouter(app *fiber.App)
}

// Config carries the handlers and settings the routers need.
type Config struct {
	Billing         controllers.BillingService
	JWTSecret       string
	Registry        *prometheus.Registry
	MetricsUser     string
	MetricsPassword string
	// LimiterStorage is optional; nil keeps fiber's in-memory limiter store.
	LimiterStorage fiber.Storage
}

func InstallRouter(app *fiber.App, cfg Config) {
	// Metrics first so /metrics is never behind the API rate limiter.
	setup(app, NewMetricsRouter(cfg), NewApiRouter(cfg))
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
