package http

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/stripe/stripe-go/v82"

	"dropvoxsite/internal/license"
	"dropvoxsite/internal/metrics"
	"dropvoxsite/internal/payments"
)

// maxWebhookBodyBytes caps the webhook payload we are willing to read.
const maxWebhookBodyBytes = 1 << 20

// WebhookHandler receives payment-processor events and converts confirmed
// purchases into licenses.
type WebhookHandler struct {
	verifier WebhookVerifier
	service  LicenseService
	logger   *slog.Logger
}

// NewWebhookHandler creates a webhook handler.
func NewWebhookHandler(verifier WebhookVerifier, service LicenseService, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		verifier: verifier,
		service:  service,
		logger:   logger.With(slog.String("handler", "webhook")),
	}
}

// Routes returns a chi router for webhook endpoints.
func (h *WebhookHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/stripe", h.HandleStripe)
	return r
}

// webhookAck is the success acknowledgment the processor expects.
type webhookAck struct {
	Received bool `json:"received"`
}

// webhookError is the failure payload for webhook processing.
type webhookError struct {
	Error string `json:"error"`
}

// HandleStripe handles POST /api/webhooks/stripe.
//
// Signature failures are fatal to the request (400); the processor does not
// retry those. Persistence failures return 500 so the processor's own
// redelivery recovers them. Every other event type is acknowledged and
// ignored to avoid retry storms.
func (h *WebhookHandler) HandleStripe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes))
	if err != nil {
		h.logger.WarnContext(ctx, "failed to read webhook body",
			slog.String("error", err.Error()))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, webhookError{Error: "Invalid payload"})
		return
	}

	event, err := h.verifier.VerifyEvent(body, r.Header.Get("Stripe-Signature"))
	if err != nil {
		h.logger.WarnContext(ctx, "webhook signature verification failed",
			slog.String("error", err.Error()))
		metrics.WebhookEvents.WithLabelValues("unknown", "bad_signature").Inc()
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, webhookError{Error: "Invalid signature"})
		return
	}

	if event.Type != "checkout.session.completed" {
		metrics.WebhookEvents.WithLabelValues(string(event.Type), "ignored").Inc()
		render.JSON(w, r, webhookAck{Received: true})
		return
	}

	session, err := payments.CheckoutSessionFromEvent(event)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to decode checkout session",
			slog.String("event_id", event.ID),
			slog.String("error", err.Error()))
		metrics.WebhookEvents.WithLabelValues(string(event.Type), "failed").Inc()
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, webhookError{Error: "Failed to create license"})
		return
	}

	if session.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		h.logger.InfoContext(ctx, "ignoring unpaid checkout session",
			slog.String("event_id", event.ID),
			slog.String("payment_status", string(session.PaymentStatus)))
		metrics.WebhookEvents.WithLabelValues(string(event.Type), "ignored").Inc()
		render.JSON(w, r, webhookAck{Received: true})
		return
	}

	params := license.IssueParams{
		Email:        payments.PurchaserEmail(session),
		MajorVersion: 1,
	}
	if session.PaymentIntent != nil {
		params.StripePaymentIntentID = session.PaymentIntent.ID
	}
	if session.Customer != nil {
		params.StripeCustomerID = session.Customer.ID
	}

	if params.Email == "" {
		// Without an email we cannot deliver the key; fail the request so the
		// processor redelivers and support can investigate the session.
		h.logger.ErrorContext(ctx, "checkout session has no purchaser email",
			slog.String("event_id", event.ID))
		metrics.WebhookEvents.WithLabelValues(string(event.Type), "failed").Inc()
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, webhookError{Error: "Failed to create license"})
		return
	}

	lic, err := h.service.IssueLicense(ctx, params)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to create license",
			slog.String("event_id", event.ID),
			slog.String("email", params.Email),
			slog.String("error", err.Error()))
		metrics.WebhookEvents.WithLabelValues(string(event.Type), "failed").Inc()
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, webhookError{Error: "Failed to create license"})
		return
	}

	h.logger.InfoContext(ctx, "license created",
		slog.String("event_id", event.ID),
		slog.String("email", lic.Email))
	metrics.WebhookEvents.WithLabelValues(string(event.Type), "processed").Inc()

	render.JSON(w, r, webhookAck{Received: true})
}
