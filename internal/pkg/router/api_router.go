package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/talentbridge/talentbridge-api/app/controllers"
	"github.com/talentbridge/talentbridge-api/internal/pkg/constants"
	"github.com/talentbridge/talentbridge-api/internal/pkg/middleware"
)

type ApiRouter struct {
	subscriptions  *controllers.SubscriptionController
	jwtSecret      string
	limiterStorage fiber.Storage
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	app.Get(constants.HealthRoute, func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})

	// Gateway callbacks must never be throttled or authenticated.
	app.Post(constants.PaymentWebhookRoute, h.subscriptions.HandlePaymentWebhook)

	rateLimit := limiter.New(limiter.Config{
		Max:        60,
		Expiration: time.Minute,
		Storage:    h.limiterStorage,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":   "too_many_requests",
				"message": "rate limit exceeded",
			})
		},
	})
	auth := middleware.JWTUserContext(h.jwtSecret)

	app.Get(constants.PlansRoute, rateLimit, h.subscriptions.HandlePlans)

	subs := app.Group(constants.SubscriptionsRoute, rateLimit, auth)
	subs.Get(constants.PlansRoute, h.subscriptions.HandlePlans)
	subs.Post("/create", middleware.RequireAPIAuth, h.subscriptions.HandleCreate)
	subs.Post("/verify", middleware.RequireAPIAuth, h.subscriptions.HandleVerify)
	subs.Get("/my-billing", middleware.RequireAPIAuth, h.subscriptions.HandleMyBilling)
}

func NewApiRouter(cfg Config) *ApiRouter {
	return &ApiRouter{
		subscriptions:  controllers.NewSubscriptionController(cfg.Billing),
		jwtSecret:      cfg.JWTSecret,
		limiterStorage: cfg.LimiterStorage,
	}
}
