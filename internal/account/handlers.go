package account

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/replypilot/replypilot/internal/auth"
	"github.com/replypilot/replypilot/internal/idgen"
	"github.com/replypilot/replypilot/internal/logging"
	"github.com/replypilot/replypilot/internal/metrics"
	"github.com/replypilot/replypilot/internal/validation"
)

// Handler provides HTTP endpoints for account management.
type Handler struct {
	store   Store
	authMgr *auth.Manager
}

// NewHandler creates a new account handler.
func NewHandler(store Store, authMgr *auth.Manager) *Handler {
	return &Handler{store: store, authMgr: authMgr}
}

// RegisterPublicRoutes sets up registration (returns the API key).
func (h *Handler) RegisterPublicRoutes(r *gin.RouterGroup) {
	r.POST("/accounts", h.Register)
}

// RegisterProtectedRoutes sets up routes that require API key auth.
func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	r.GET("/profile", h.GetProfile)
	r.PATCH("/profile", h.UpdateProfile)
	r.GET("/usage", h.GetUsage)
	r.POST("/upgrade", h.Upgrade)
}

// Register handles POST /v1/accounts.
// Creates the merchant profile and issues its first API key.
func (h *Handler) Register(c *gin.Context) {
	ctx := c.Request.Context()

	var req struct {
		BusinessName string `json:"businessName" binding:"required"`
		BusinessType string `json:"businessType" binding:"required"`
		Tone         string `json:"tone"`
		BrandVoice   string `json:"brandVoice"`
		Signature    string `json:"signature"`
		Tier         Tier   `json:"subscriptionTier"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "businessName and businessType are required",
		})
		return
	}

	if req.Tier != "" && !ValidTier(req.Tier) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "unknown_tier",
			"message": "subscriptionTier must be one of: free, pro, enterprise",
		})
		return
	}

	now := time.Now()
	profile := &Profile{
		ID:           idgen.WithPrefix("mer_"),
		BusinessName: validation.SanitizeString(req.BusinessName, 200),
		BusinessType: validation.SanitizeString(req.BusinessType, 200),
		Tone:         validation.SanitizeString(req.Tone, 100),
		BrandVoice:   validation.SanitizeString(req.BrandVoice, validation.MaxStringLength),
		Signature:    validation.SanitizeString(req.Signature, 500),
		Tier:         req.Tier,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	profile.ApplyDefaults()

	if err := h.store.Create(ctx, profile); err != nil {
		logging.L(ctx).Error("failed to create profile", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to register account",
		})
		return
	}

	rawKey, keyInfo, err := h.authMgr.GenerateKey(ctx, profile.ID, "Primary key")
	if err != nil {
		logging.L(ctx).Error("failed to generate API key", "error", err)
		c.JSON(http.StatusCreated, gin.H{
			"profile": profile,
			"warning": "Account registered but API key generation failed. Contact support.",
		})
		return
	}

	logging.L(ctx).Info("merchant registered",
		"merchant_id", profile.ID,
		"business", profile.BusinessName,
		"tier", profile.Tier,
		"key_id", keyInfo.ID,
	)

	c.JSON(http.StatusCreated, gin.H{
		"profile": profile,
		"apiKey":  rawKey,
		"keyId":   keyInfo.ID,
		"warning": "Store this API key securely. It will not be shown again.",
		"usage":   "Include 'Authorization: Bearer <apiKey>' header in requests.",
	})
}

// GetProfile handles GET /v1/profile.
func (h *Handler) GetProfile(c *gin.Context) {
	profile, ok := h.loadProfile(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, profile)
}

// updatableFields mirrors the profile settings a merchant may change
// directly. Tier changes go through /upgrade or billing.
type updateProfileRequest struct {
	BusinessName *string `json:"businessName"`
	BusinessType *string `json:"businessType"`
	Tone         *string `json:"tone"`
	BrandVoice   *string `json:"brandVoice"`
	Signature    *string `json:"signature"`
}

// UpdateProfile handles PATCH /v1/profile.
func (h *Handler) UpdateProfile(c *gin.Context) {
	profile, ok := h.loadProfile(c)
	if !ok {
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid request body",
		})
		return
	}

	if req.BusinessName != nil {
		profile.BusinessName = validation.SanitizeString(*req.BusinessName, 200)
	}
	if req.BusinessType != nil {
		profile.BusinessType = validation.SanitizeString(*req.BusinessType, 200)
	}
	if req.Tone != nil {
		profile.Tone = validation.SanitizeString(*req.Tone, 100)
	}
	if req.BrandVoice != nil {
		profile.BrandVoice = validation.SanitizeString(*req.BrandVoice, validation.MaxStringLength)
	}
	if req.Signature != nil {
		profile.Signature = validation.SanitizeString(*req.Signature, 500)
	}
	profile.ApplyDefaults()
	profile.UpdatedAt = time.Now()

	if err := h.store.Update(c.Request.Context(), profile); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to update profile",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile updated", "profile": profile})
}

// GetUsage handles GET /v1/usage.
func (h *Handler) GetUsage(c *gin.Context) {
	profile, ok := h.loadProfile(c)
	if !ok {
		return
	}

	policy, err := PolicyFor(profile.Tier)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "unknown_tier",
			"message": "Profile has an unrecognised subscription tier",
		})
		return
	}

	resp := gin.H{
		"tier":       profile.Tier,
		"usageCount": profile.UsageCount,
		"resetDate":  profile.UsageResetAt,
	}
	if policy.MonthlyQuota == UnlimitedQuota {
		resp["monthlyLimit"] = "unlimited"
	} else {
		resp["monthlyLimit"] = policy.MonthlyQuota
	}

	c.JSON(http.StatusOK, resp)
}

// Upgrade handles POST /v1/upgrade.
// Applies the tier change directly; the billing package offers the paid
// checkout path when Stripe is configured.
func (h *Handler) Upgrade(c *gin.Context) {
	profile, ok := h.loadProfile(c)
	if !ok {
		return
	}

	var req struct {
		Tier Tier `json:"tier" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "tier is required",
		})
		return
	}

	if err := profile.ChangeTier(req.Tier); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "unknown_tier",
			"message": "tier must be one of: free, pro, enterprise",
		})
		return
	}
	profile.UpdatedAt = time.Now()

	if err := h.store.Update(c.Request.Context(), profile); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to upgrade subscription",
		})
		return
	}

	metrics.TierUpgradesTotal.WithLabelValues(string(req.Tier)).Inc()

	policy, _ := PolicyFor(req.Tier)
	resp := gin.H{"message": "Upgraded to " + string(req.Tier), "tier": req.Tier}
	if policy.MonthlyQuota == UnlimitedQuota {
		resp["newLimit"] = "unlimited"
	} else {
		resp["newLimit"] = policy.MonthlyQuota
	}
	c.JSON(http.StatusOK, resp)
}

// loadProfile resolves the authenticated merchant's profile, writing the
// error response itself when it cannot.
func (h *Handler) loadProfile(c *gin.Context) (*Profile, bool) {
	merchantID := auth.MerchantID(c)
	if merchantID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil, false
	}

	profile, err := h.store.Get(c.Request.Context(), merchantID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "User not found",
			})
			return nil, false
		}
		logging.L(c.Request.Context()).Error("failed to load profile", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to load profile",
		})
		return nil, false
	}

	return profile, true
}
