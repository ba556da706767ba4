package billing

import (
	"strings"
	"time"

	"github.com/subiehq/subie/profile"
)

// Entitlement is one active purchasable right held by a subject in the
// billing ledger, e.g. "premium_monthly". Expiry is nil for non-expiring
// entitlements (lifetime purchases).
type Entitlement struct {
	Identifier string     `json:"identifier"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

// tierOf maps an entitlement identifier to a plan tier. Identifiers are
// named "<tier>_<period>" in the ledger ("premium_annual",
// "standard_monthly"); anything else carries no tier.
func tierOf(identifier string) profile.PlanTier {
	switch {
	case strings.HasPrefix(identifier, "premium"):
		return profile.PlanPremium
	case strings.HasPrefix(identifier, "standard"):
		return profile.PlanStandard
	}
	return ""
}

// DerivePlan computes the effective plan tier and expiry from a set of
// active entitlements. The highest tier among the set wins
// (premium > standard > free); the expiry is the latest among entitlements
// that carry one, nil when none do. The derivation is pure: the same set,
// in any order, always yields the same result.
func DerivePlan(active []Entitlement) (profile.PlanTier, *time.Time) {
	tier := profile.PlanFree
	var expiry *time.Time
	for _, e := range active {
		if t := tierOf(e.Identifier); t.Above(tier) {
			tier = t
		}
		if e.ExpiresAt != nil && (expiry == nil || e.ExpiresAt.After(*expiry)) {
			exp := *e.ExpiresAt
			expiry = &exp
		}
	}
	return tier, expiry
}
