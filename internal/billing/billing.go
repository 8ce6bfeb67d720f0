// Package billing connects tier upgrades to Stripe subscriptions. It is
// optional: without a Stripe key the /upgrade endpoint still applies tier
// changes directly, and this package's routes return 501.
package billing

import (
	"context"
	"errors"
	"strings"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/checkout/session"
	"github.com/stripe/stripe-go/v81/customer"

	"github.com/replypilot/replypilot/internal/account"
)

// ErrNotConfigured means no Stripe secret key was provided.
var ErrNotConfigured = errors.New("billing: stripe not configured")

// Config carries the Stripe settings for paid tier upgrades.
type Config struct {
	SecretKey     string
	WebhookSecret string
	PriceIDPro    string
	PriceIDEnt    string
	ReturnURL     string
}

// Configured reports whether checkout can be offered at all.
func (c Config) Configured() bool {
	return c.SecretKey != ""
}

// Service creates checkout sessions and applies webhook-driven tier
// changes to merchant profiles.
type Service struct {
	cfg   Config
	store account.Store
}

// NewService wires the Stripe client key and returns a billing service.
func NewService(cfg Config, store account.Store) *Service {
	if cfg.Configured() {
		stripe.Key = cfg.SecretKey
	}
	return &Service{cfg: cfg, store: store}
}

// priceFor maps a paid tier to its Stripe price. Free has no price.
func (s *Service) priceFor(tier account.Tier) (string, bool) {
	switch tier {
	case account.TierPro:
		return s.cfg.PriceIDPro, s.cfg.PriceIDPro != ""
	case account.TierEnterprise:
		return s.cfg.PriceIDEnt, s.cfg.PriceIDEnt != ""
	default:
		return "", false
	}
}

// ensureCustomer finds or creates the Stripe customer for a merchant and
// stores the ID on the profile.
func (s *Service) ensureCustomer(ctx context.Context, profile *account.Profile) (string, error) {
	if profile.StripeCustomerID != "" {
		return profile.StripeCustomerID, nil
	}

	params := &stripe.CustomerParams{
		Name: stripe.String(profile.BusinessName),
		Metadata: map[string]string{
			"merchant_id": profile.ID,
		},
	}
	cust, err := customer.New(params)
	if err != nil {
		return "", err
	}

	profile.StripeCustomerID = cust.ID
	if err := s.store.Update(ctx, profile); err != nil {
		return "", err
	}

	return cust.ID, nil
}

// CreateCheckout starts a subscription checkout for the given tier and
// returns the hosted payment URL.
func (s *Service) CreateCheckout(ctx context.Context, merchantID string, tier account.Tier) (string, error) {
	if !s.cfg.Configured() {
		return "", ErrNotConfigured
	}

	priceID, ok := s.priceFor(tier)
	if !ok {
		return "", account.ErrUnknownTier
	}

	profile, err := s.store.Get(ctx, merchantID)
	if err != nil {
		return "", err
	}

	customerID, err := s.ensureCustomer(ctx, profile)
	if err != nil {
		return "", err
	}

	returnURL := strings.TrimRight(s.cfg.ReturnURL, "/")
	params := &stripe.CheckoutSessionParams{
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Customer: stripe.String(customerID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(returnURL + "/billing/success"),
		CancelURL:  stripe.String(returnURL + "/billing/cancel"),
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{
				"merchant_id": profile.ID,
				"tier":        string(tier),
			},
		},
	}

	sess, err := session.New(params)
	if err != nil {
		return "", err
	}

	return sess.URL, nil
}

// applyTierByCustomer looks up the merchant behind a Stripe customer and
// moves them to the given tier. Usage counters carry across the change.
func (s *Service) applyTierByCustomer(ctx context.Context, customerID, merchantID string, tier account.Tier) error {
	if merchantID == "" {
		return errors.New("billing: event missing merchant_id metadata")
	}

	profile, err := s.store.Get(ctx, merchantID)
	if err != nil {
		return err
	}
	if profile.StripeCustomerID == "" {
		profile.StripeCustomerID = customerID
	}

	if err := profile.ChangeTier(tier); err != nil {
		return err
	}

	return s.store.Update(ctx, profile)
}
