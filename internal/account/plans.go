package account

// UnlimitedQuota marks a tier with no monthly cap.
const UnlimitedQuota = -1

// Policy defines the limits for a subscription tier.
type Policy struct {
	Tier         Tier
	MonthlyQuota int // UnlimitedQuota (-1) = no cap
	VariantCount int // reply options generated per review
}

// Policies is the hardcoded tier catalogue.
var Policies = map[Tier]Policy{
	TierFree: {
		Tier:         TierFree,
		MonthlyQuota: 10,
		VariantCount: 3,
	},
	TierPro: {
		Tier:         TierPro,
		MonthlyQuota: 500,
		VariantCount: 3,
	},
	TierEnterprise: {
		Tier:         TierEnterprise,
		MonthlyQuota: UnlimitedQuota,
		VariantCount: 5,
	},
}

// PolicyFor returns the policy for a tier.
// An unknown tier is a data-integrity error, not a default.
func PolicyFor(t Tier) (Policy, error) {
	p, ok := Policies[t]
	if !ok {
		return Policy{}, ErrUnknownTier
	}
	return p, nil
}

// ValidTier returns true if the tier name is recognised.
func ValidTier(t Tier) bool {
	_, ok := Policies[t]
	return ok
}
