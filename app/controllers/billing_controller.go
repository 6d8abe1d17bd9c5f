package controllers

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/talentbridge/talentbridge-api/internal/pkg/billing"
)

const nombaSignatureHeader = "nomba-signature"

// HandlePaymentWebhook ingests a Nomba delivery. It always answers 200 so
// the gateway does not retry business failures; the body carries the outcome.
// POST /payments/webhook
func (sc *SubscriptionController) HandlePaymentWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	signature := strings.TrimSpace(c.Get(nombaSignatureHeader))

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	res := sc.billing.HandleWebhook(ctx, billing.WebhookInput{
		Payload:   rawBody,
		Signature: signature,
	})
	return c.Status(fiber.StatusOK).JSON(res)
}
