package respond

import (
	"context"
	"time"

	"github.com/replypilot/replypilot/internal/account"
	"github.com/replypilot/replypilot/internal/logging"
	"github.com/replypilot/replypilot/internal/metrics"
	"github.com/replypilot/replypilot/internal/syncutil"
	"github.com/replypilot/replypilot/internal/traces"
)

// Service orchestrates one review-to-replies request: quota check,
// generation, and usage accounting against the merchant's profile.
type Service struct {
	store     account.Store
	generator *Generator
	locks     syncutil.ShardedMutex
	now       func() time.Time
}

// NewService creates a respond service.
func NewService(store account.Store, generator *Generator) *Service {
	return &Service{
		store:     store,
		generator: generator,
		now:       time.Now,
	}
}

// Respond drafts reply variants for one review on the merchant's behalf.
//
// The check-then-increment sequence is serialized per merchant, so
// concurrent requests cannot spend the same quota slot twice. Usage is
// charged per review, never per variant, and a fallback draft charges
// the same as a parsed one. A provider failure charges nothing.
func (s *Service) Respond(ctx context.Context, merchantID string, review Review) (*Result, error) {
	ctx, span := traces.StartSpan(ctx, "respond.request", traces.MerchantID(merchantID))
	defer span.End()

	review.ApplyDefaults()

	unlock := s.locks.Lock(merchantID)
	defer unlock()

	profile, err := s.store.Get(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(traces.Tier(string(profile.Tier)))

	remaining, quotaErr := account.CheckAndReserve(profile, s.now())
	// The rollover (or first-use window) mutates the profile and must
	// survive even a rejected request.
	if err := s.store.Update(ctx, profile); err != nil {
		return nil, err
	}
	if quotaErr != nil {
		if quotaErr == account.ErrQuotaExceeded {
			metrics.QuotaRejectionsTotal.WithLabelValues(string(profile.Tier)).Inc()
		}
		return nil, quotaErr
	}

	policy, err := account.PolicyFor(profile.Tier)
	if err != nil {
		return nil, err
	}

	responses, err := s.generator.Generate(ctx, review, profile, policy.VariantCount)
	if err != nil {
		// Nothing was delivered, so nothing is charged.
		return nil, err
	}

	profile.UsageCount++
	profile.UpdatedAt = s.now()
	if err := s.store.Update(ctx, profile); err != nil {
		// The merchant already has their drafts; log the accounting
		// miss rather than failing the request.
		logging.L(ctx).Error("failed to record usage after generation",
			"merchant_id", merchantID, "error", err)
	}

	usageRemaining := account.UnlimitedRemaining
	if remaining != account.UnlimitedRemaining {
		usageRemaining = remaining - 1
	}

	return &Result{Responses: responses, UsageRemaining: usageRemaining}, nil
}
