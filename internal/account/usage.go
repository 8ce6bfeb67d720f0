package account

import "time"

// UsagePeriod is the rolling billing window for the monthly quota.
const UsagePeriod = 30 * 24 * time.Hour

// UnlimitedRemaining is the remaining-quota sentinel for unlimited tiers.
const UnlimitedRemaining = -1

// CheckAndReserve decides whether the profile may run one more generation
// and returns the remaining quota before this request is counted.
//
// It mutates the profile's rollover state as a documented side effect:
// a missing reset date is initialised to now+30d, and an elapsed period
// zeroes the counter and starts a new one. Callers must persist the
// profile even when the quota check fails, so the rollover survives.
// Incrementing the counter after a successful generation is the caller's
// responsibility, not this function's.
func CheckAndReserve(p *Profile, now time.Time) (int, error) {
	if p.UsageResetAt == nil {
		// First use: start the window without touching the counter.
		reset := now.Add(UsagePeriod)
		p.UsageResetAt = &reset
	} else if now.After(*p.UsageResetAt) {
		p.UsageCount = 0
		reset := now.Add(UsagePeriod)
		p.UsageResetAt = &reset
	}

	policy, err := PolicyFor(p.Tier)
	if err != nil {
		return 0, err
	}

	if policy.MonthlyQuota == UnlimitedQuota {
		return UnlimitedRemaining, nil
	}

	if p.UsageCount >= policy.MonthlyQuota {
		return 0, ErrQuotaExceeded
	}

	return policy.MonthlyQuota - p.UsageCount, nil
}
