package controllers

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/talentbridge/talentbridge-api/app/models"
	"github.com/talentbridge/talentbridge-api/internal/pkg/billing"
	"github.com/talentbridge/talentbridge-api/internal/pkg/usercontext"
)

// requestTimeout covers a token fetch and one gateway call, each bounded by
// the gateway timeout, plus the activation transaction.
const requestTimeout = 2*billing.DefaultNombaHTTPTimeout + 5*time.Second

// BillingService is the part of billing.Service used by HTTP handlers.
type BillingService interface {
	Catalog() *billing.Catalog
	InitiateSubscription(ctx context.Context, userEmail, planID string) (*billing.InitiationResult, error)
	Reconcile(ctx context.Context, orderReference, userEmail string) (*models.Subscription, error)
	GetBilling(ctx context.Context, userID uint) (*billing.Billing, error)
	HandleWebhook(ctx context.Context, in billing.WebhookInput) billing.WebhookResult
}

// SubscriptionController handles plan, checkout and billing requests
type SubscriptionController struct {
	billing  BillingService
	validate *validator.Validate
}

// NewSubscriptionController creates a new subscription controller with the billing service
func NewSubscriptionController(svc BillingService) *SubscriptionController {
	return &SubscriptionController{
		billing:  svc,
		validate: validator.New(),
	}
}

type CreateSubscriptionRequest struct {
	PlanID string `json:"planId" validate:"required,max=64"`
}

type VerifyPaymentRequest struct {
	OrderReference string `json:"orderReference" validate:"required,max=191"`
}

// HandlePlans returns the static plan catalog grouped by audience.
// GET /plans and GET /subscriptions/plans?audience=TALENT|EMPLOYER
func (sc *SubscriptionController) HandlePlans(c *fiber.Ctx) error {
	catalog := sc.billing.Catalog()
	data := catalog.Grouped()
	if raw := c.Query("audience"); raw != "" {
		audience := billing.NormalizeAudience(raw)
		if audience == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":   "bad_request",
				"message": "audience must be TALENT or EMPLOYER",
			})
		}
		data = map[string][]billing.Plan{audience: catalog.ListPlans(audience)}
	}
	return c.JSON(fiber.Map{
		"message": "Plans retrieved successfully",
		"data":    data,
	})
}

// HandleCreate starts a checkout for the authenticated user.
// POST /subscriptions/create
func (sc *SubscriptionController) HandleCreate(c *fiber.Ctx) error {
	var req CreateSubscriptionRequest
	if problem := sc.bind(c, &req); problem != nil {
		return c.Status(fiber.StatusBadRequest).JSON(problem)
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	res, err := sc.billing.InitiateSubscription(ctx, usercontext.GetEmail(c), req.PlanID)
	if err != nil {
		return billingErrorResponse(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(res)
}

// HandleVerify reconciles the order the user returned from the hosted checkout with.
// POST /subscriptions/verify
func (sc *SubscriptionController) HandleVerify(c *fiber.Ctx) error {
	var req VerifyPaymentRequest
	if problem := sc.bind(c, &req); problem != nil {
		return c.Status(fiber.StatusBadRequest).JSON(problem)
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	sub, err := sc.billing.Reconcile(ctx, req.OrderReference, usercontext.GetEmail(c))
	if err != nil {
		return billingErrorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"success":      true,
		"message":      "Subscription activated successfully",
		"subscription": sub,
	})
}

// HandleMyBilling returns the current subscription and recent payments.
// GET /subscriptions/my-billing
func (sc *SubscriptionController) HandleMyBilling(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	res, err := sc.billing.GetBilling(ctx, usercontext.GetUserID(c))
	if err != nil {
		return billingErrorResponse(c, err)
	}
	return c.JSON(res)
}

// bind parses and validates a JSON body, returning the 400 payload on failure.
func (sc *SubscriptionController) bind(c *fiber.Ctx, out interface{}) fiber.Map {
	if err := c.BodyParser(out); err != nil {
		return fiber.Map{
			"error":   "invalid_body",
			"message": "request body must be JSON",
		}
	}
	if err := sc.validate.Struct(out); err != nil {
		return fiber.Map{
			"error":   "validation_failed",
			"message": validationMessage(err),
		}
	}
	return nil
}
