// Package payments wraps the Stripe SDK behind the two narrow operations the
// rest of the app needs: starting a checkout session and verifying webhook
// event signatures.
package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"

	"dropvoxsite/internal/config"
)

// productMetadataTag marks checkout sessions as belonging to this product line.
const productMetadataTag = "dropvox-pro"

// Client talks to Stripe for the single fixed one-time-purchase product.
type Client struct {
	api    *client.API
	stripe config.StripeConfig
	site   config.SiteConfig
	logger *slog.Logger
}

// NewClient creates a Stripe client from configuration.
func NewClient(stripeCfg config.StripeConfig, siteCfg config.SiteConfig, logger *slog.Logger) *Client {
	return &Client{
		api:    client.New(stripeCfg.SecretKey, nil),
		stripe: stripeCfg,
		site:   siteCfg,
		logger: logger.With(slog.String("component", "payments")),
	}
}

// CreateCheckoutSession starts a hosted checkout flow for the fixed price and
// returns the processor-provided redirect URL. email is optional; when set it
// prefills the payment form.
func (c *Client) CreateCheckoutSession(ctx context.Context, email string) (string, error) {
	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(c.stripe.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(c.site.BaseURL + "/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(c.site.BaseURL + "/pricing"),
	}
	params.Context = ctx
	params.AddMetadata("product", productMetadataTag)
	if email != "" {
		params.CustomerEmail = stripe.String(email)
	}

	session, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("creating checkout session: %w", err)
	}

	c.logger.InfoContext(ctx, "checkout session created",
		slog.String("session_id", session.ID))
	return session.URL, nil
}

// VerifyEvent authenticates a webhook payload against the shared endpoint
// secret. API version mismatches are tolerated: the webhook endpoint's
// pinned version may lag the SDK's and the fields we read are stable.
func (c *Client) VerifyEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	return webhook.ConstructEventWithOptions(payload, sigHeader, c.stripe.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
}

// CheckoutSessionFromEvent decodes the checkout session object carried by a
// checkout.session.completed event.
func CheckoutSessionFromEvent(event stripe.Event) (*stripe.CheckoutSession, error) {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return nil, fmt.Errorf("decoding checkout session: %w", err)
	}
	return &session, nil
}

// PurchaserEmail extracts the purchaser's email from a checkout session,
// preferring the explicit customer_email and falling back to the collected
// customer details.
func PurchaserEmail(session *stripe.CheckoutSession) string {
	if session.CustomerEmail != "" {
		return session.CustomerEmail
	}
	if session.CustomerDetails != nil {
		return session.CustomerDetails.Email
	}
	return ""
}
