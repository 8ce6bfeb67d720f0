// Package account provides merchant profiles, the subscription tier
// catalogue, and monthly usage accounting for ReplyPilot.
package account

import (
	"errors"
	"time"
)

// Errors
var (
	ErrProfileNotFound = errors.New("account: profile not found")
	ErrProfileExists   = errors.New("account: profile already exists")
	ErrUnknownTier     = errors.New("account: unknown subscription tier")
	ErrQuotaExceeded   = errors.New("account: monthly quota exceeded")
)

// Tier identifies the subscription level.
type Tier string

const (
	TierFree       Tier = "free"
	TierPro        Tier = "pro"
	TierEnterprise Tier = "enterprise"
)

// DefaultTone is applied when a profile doesn't specify one.
const DefaultTone = "professional"

// Profile represents a merchant using the extension.
type Profile struct {
	ID               string     `json:"id"`
	BusinessName     string     `json:"businessName"`
	BusinessType     string     `json:"businessType"`
	Tone             string     `json:"tone"`
	BrandVoice       string     `json:"brandVoice,omitempty"`
	Signature        string     `json:"signature,omitempty"`
	Tier             Tier       `json:"subscriptionTier"`
	UsageCount       int        `json:"usageCount"`
	UsageResetAt     *time.Time `json:"usageResetAt,omitempty"`
	StripeCustomerID string     `json:"-"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// ApplyDefaults fills in optional fields at construction time so that
// read sites never have to.
func (p *Profile) ApplyDefaults() {
	if p.Tone == "" {
		p.Tone = DefaultTone
	}
	if p.Tier == "" {
		p.Tier = TierFree
	}
}

// ChangeTier moves the profile to a new tier.
// The usage counter and reset date deliberately survive the change: an
// upgrade mid-period keeps the usage already consumed.
func (p *Profile) ChangeTier(t Tier) error {
	if !ValidTier(t) {
		return ErrUnknownTier
	}
	p.Tier = t
	return nil
}
