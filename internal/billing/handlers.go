package billing

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/webhook"

	"github.com/replypilot/replypilot/internal/account"
	"github.com/replypilot/replypilot/internal/auth"
	"github.com/replypilot/replypilot/internal/logging"
	"github.com/replypilot/replypilot/internal/metrics"
)

const maxWebhookBody = int64(65536)

// Handler exposes checkout and the Stripe webhook.
type Handler struct {
	svc *Service
}

// NewHandler creates a billing handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the authenticated checkout endpoint.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/billing/checkout", h.CreateCheckout)
}

// RegisterWebhook mounts the unauthenticated Stripe callback. Stripe
// signs the payload; that signature is the auth.
func (h *Handler) RegisterWebhook(r *gin.RouterGroup) {
	r.POST("/billing/webhook", h.Webhook)
}

// CreateCheckout handles POST /v1/billing/checkout.
func (h *Handler) CreateCheckout(c *gin.Context) {
	merchantID := auth.MerchantID(c)
	if merchantID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req struct {
		Tier account.Tier `json:"tier" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "tier is required",
		})
		return
	}

	url, err := h.svc.CreateCheckout(c.Request.Context(), merchantID, req.Tier)
	switch {
	case errors.Is(err, ErrNotConfigured):
		c.JSON(http.StatusNotImplemented, gin.H{
			"error":   "billing_not_configured",
			"message": "Billing is not configured. Use POST /v1/upgrade instead.",
		})
	case errors.Is(err, account.ErrUnknownTier):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "unknown_tier",
			"message": "tier must be pro or enterprise",
		})
	case errors.Is(err, account.ErrProfileNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "User not found"})
	case err != nil:
		logging.L(c.Request.Context()).Error("checkout session failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to create checkout session",
		})
	default:
		c.JSON(http.StatusOK, gin.H{"url": url})
	}
}

// Webhook handles POST /v1/billing/webhook.
func (h *Handler) Webhook(c *gin.Context) {
	ctx := c.Request.Context()

	if h.svc.cfg.WebhookSecret == "" {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "billing_not_configured"})
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_payload"})
		return
	}

	event, err := webhook.ConstructEventWithOptions(
		body,
		c.GetHeader("Stripe-Signature"),
		h.svc.cfg.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		logging.L(ctx).Warn("stripe webhook signature failed", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "signature_verification_failed"})
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_session_payload"})
			return
		}
		if err := h.handleCheckoutCompleted(c, &sess); err != nil {
			return
		}

	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_subscription_payload"})
			return
		}
		if err := h.handleSubscriptionDeleted(c, &sub); err != nil {
			return
		}

	default:
		// Unhandled event types are acknowledged and dropped.
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "received_at": time.Now().UTC()})
}

func (h *Handler) handleCheckoutCompleted(c *gin.Context, sess *stripe.CheckoutSession) error {
	ctx := c.Request.Context()

	customerID := ""
	if sess.Customer != nil {
		customerID = sess.Customer.ID
	}
	merchantID := sess.Metadata["merchant_id"]
	tier := account.Tier(sess.Metadata["tier"])
	if merchantID == "" && sess.Subscription != nil {
		merchantID = sess.Subscription.Metadata["merchant_id"]
		tier = account.Tier(sess.Subscription.Metadata["tier"])
	}
	if tier == "" {
		tier = account.TierPro
	}

	if err := h.svc.applyTierByCustomer(ctx, customerID, merchantID, tier); err != nil {
		logging.L(ctx).Error("stripe upgrade failed",
			"customer", customerID, "merchant_id", merchantID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_update_merchant"})
		return err
	}

	metrics.TierUpgradesTotal.WithLabelValues(string(tier)).Inc()
	logging.L(ctx).Info("merchant upgraded via stripe",
		"merchant_id", merchantID, "tier", tier)
	return nil
}

func (h *Handler) handleSubscriptionDeleted(c *gin.Context, sub *stripe.Subscription) error {
	ctx := c.Request.Context()

	customerID := ""
	if sub.Customer != nil {
		customerID = sub.Customer.ID
	}
	merchantID := sub.Metadata["merchant_id"]

	if err := h.svc.applyTierByCustomer(ctx, customerID, merchantID, account.TierFree); err != nil {
		logging.L(ctx).Error("stripe downgrade failed",
			"customer", customerID, "merchant_id", merchantID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_update_merchant"})
		return err
	}

	logging.L(ctx).Info("merchant downgraded to free after subscription end",
		"merchant_id", merchantID)
	return nil
}
