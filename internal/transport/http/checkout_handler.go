package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"dropvoxsite/internal/metrics"
)

// CheckoutHandler starts hosted checkout sessions.
type CheckoutHandler struct {
	service CheckoutService
	logger  *slog.Logger
}

// NewCheckoutHandler creates a checkout handler.
func NewCheckoutHandler(service CheckoutService, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "checkout")),
	}
}

// Routes returns a chi router for checkout endpoints.
func (h *CheckoutHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Create)
	return r
}

// CheckoutRequest optionally prefills the purchaser's email.
type CheckoutRequest struct {
	Email string `json:"email,omitempty"`
}

type checkoutResponse struct {
	URL string `json:"url"`
}

type checkoutError struct {
	Error string `json:"error"`
}

// Create handles POST /api/checkout.
func (h *CheckoutHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// The email is optional and an empty body is fine.
	var req CheckoutRequest
	_ = render.DecodeJSON(r.Body, &req)

	url, err := h.service.CreateCheckoutSession(ctx, req.Email)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to create checkout session",
			slog.String("error", err.Error()))
		metrics.CheckoutSessions.WithLabelValues("failed").Inc()
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, checkoutError{Error: "Failed to create checkout session"})
		return
	}

	metrics.CheckoutSessions.WithLabelValues("created").Inc()
	render.JSON(w, r, checkoutResponse{URL: url})
}
