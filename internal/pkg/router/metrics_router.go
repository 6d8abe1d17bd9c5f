package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/talentbridge/talentbridge-api/internal/pkg/constants"
)

type MetricsRouter struct {
	registry *prometheus.Registry
	user     string
	password string
}

func (h MetricsRouter) InstallRouter(app *fiber.App) {
	if h.registry == nil || h.user == "" || h.password == "" {
		return
	}
	app.Get(constants.MetricsRoute, basicauth.New(basicauth.Config{
		Users: map[string]string{
			h.user: h.password,
		},
	}), adaptor.HTTPHandler(promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{})))
}

func NewMetricsRouter(cfg Config) *MetricsRouter {
	return &MetricsRouter{
		registry: cfg.Registry,
		user:     cfg.MetricsUser,
		password: cfg.MetricsPassword,
	}
}
