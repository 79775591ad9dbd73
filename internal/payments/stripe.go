// Package payments wraps the Stripe checkout API. Only "create checkout
// session" and webhook verification are consumed; everything else stays on
// Stripe's side.
package payments

import (
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/webhook"
)

// Gateway is the payment-provider surface the billing service depends on.
type Gateway interface {
	CreateCheckoutSession(referenceID, description, currency string, amount float64, customerEmail string) (sessionID, url string, err error)
	VerifyWebhook(payload []byte, sigHeader string) (CheckoutEvent, error)
}

// CheckoutEvent is the subset of a webhook event the billing flow reacts to.
type CheckoutEvent struct {
	Type        string // e.g. "checkout.session.completed"
	SessionID   string
	ReferenceID string
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
}

type StripeGateway struct {
	cfg StripeConfig
}

func NewStripeGateway(cfg StripeConfig) *StripeGateway {
	stripe.Key = cfg.SecretKey
	return &StripeGateway{cfg: cfg}
}

// CreateCheckoutSession opens a one-off payment session for a listing
// subscription. Amount is in major currency units.
func (g *StripeGateway) CreateCheckoutSession(referenceID, description, currency string, amount float64, customerEmail string) (string, string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(g.cfg.SuccessURL),
		CancelURL:         stripe.String(g.cfg.CancelURL),
		ClientReferenceID: stripe.String(referenceID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(currency),
					UnitAmount: stripe.Int64(int64(amount * 100)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(description),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	if customerEmail != "" {
		params.CustomerEmail = stripe.String(customerEmail)
	}

	s, err := session.New(params)
	if err != nil {
		return "", "", fmt.Errorf("stripe checkout session: %w", err)
	}
	return s.ID, s.URL, nil
}

// VerifyWebhook checks the signature and extracts the checkout session.
func (g *StripeGateway) VerifyWebhook(payload []byte, sigHeader string) (CheckoutEvent, error) {
	event, err := webhook.ConstructEvent(payload, sigHeader, g.cfg.WebhookSecret)
	if err != nil {
		return CheckoutEvent{}, fmt.Errorf("stripe webhook verification: %w", err)
	}

	out := CheckoutEvent{Type: string(event.Type)}
	if event.Type == "checkout.session.completed" {
		var s stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
			return CheckoutEvent{}, fmt.Errorf("stripe webhook payload: %w", err)
		}
		out.SessionID = s.ID
		out.ReferenceID = s.ClientReferenceID
	}
	return out, nil
}
