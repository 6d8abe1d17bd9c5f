package constants

// Static route constants
const (
	HealthRoute         = "/healthz"
	MetricsRoute        = "/metrics"
	PlansRoute          = "/plans"
	PaymentWebhookRoute = "/payments/webhook"
	SubscriptionsRoute  = "/subscriptions"
	DocsRoute           = "/docs/api/"
	OpenAPIDocumentPath = "public/docs/v1/openapi.yml"

	// Frontend page the gateway redirects to after checkout
	PaymentCallbackRoute = "/dashboard?payment_verify=true"
)
