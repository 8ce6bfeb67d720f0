package respond

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/replypilot/replypilot/internal/account"
	"github.com/replypilot/replypilot/internal/auth"
	"github.com/replypilot/replypilot/internal/logging"
	"github.com/replypilot/replypilot/internal/validation"
)

// Handler exposes reply generation over HTTP.
type Handler struct {
	svc *Service
}

// NewHandler creates a respond handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes sets up the generation endpoint. The group must already
// carry the auth middleware.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/responses", h.Generate)
}

// Generate handles POST /v1/responses.
func (h *Handler) Generate(c *gin.Context) {
	merchantID := auth.MerchantID(c)
	if merchantID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var review Review
	if err := c.ShouldBindJSON(&review); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid request body",
		})
		return
	}

	review.ReviewText = validation.SanitizeString(review.ReviewText, validation.MaxStringLength)
	review.ReviewerName = validation.SanitizeString(review.ReviewerName, 200)
	review.Platform = validation.SanitizeString(review.Platform, 100)
	review.Context = validation.SanitizeString(review.Context, validation.MaxStringLength)

	if review.ReviewText == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "reviewText is required",
		})
		return
	}
	if !validation.ValidRating(review.Rating) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_rating",
			"message": "rating must be between 1 and 5",
		})
		return
	}

	result, err := h.svc.Respond(c.Request.Context(), merchantID, review)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, account.ErrProfileNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "not_found",
			"message": "User not found",
		})
	case errors.Is(err, account.ErrQuotaExceeded):
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":   "quota_exceeded",
			"message": "Monthly limit reached. Upgrade to Pro for 500 responses/month",
		})
	case errors.Is(err, account.ErrUnknownTier):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "unknown_tier",
			"message": "Profile has an unrecognised subscription tier",
		})
	case errors.Is(err, ErrGenerationFailed):
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "generation_failed",
			"message": "AI generation failed",
		})
	default:
		logging.L(c.Request.Context()).Error("unexpected respond error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Something went wrong",
		})
	}
}
