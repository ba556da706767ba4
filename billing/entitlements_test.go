package billing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/subiehq/subie/billing"
	"github.com/subiehq/subie/profile"
)

func ts(year, month, day int) *time.Time {
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestDerivePlan(t *testing.T) {
	tests := []struct {
		name       string
		active     []billing.Entitlement
		wantTier   profile.PlanTier
		wantExpiry *time.Time
	}{
		{
			name:       "empty set derives free with no expiry",
			active:     nil,
			wantTier:   profile.PlanFree,
			wantExpiry: nil,
		},
		{
			name: "highest tier wins",
			active: []billing.Entitlement{
				{Identifier: "premium_annual", ExpiresAt: ts(2026, 1, 1)},
				{Identifier: "standard_monthly", ExpiresAt: ts(2025, 6, 1)},
			},
			wantTier:   profile.PlanPremium,
			wantExpiry: ts(2026, 1, 1),
		},
		{
			name: "standard only",
			active: []billing.Entitlement{
				{Identifier: "standard_monthly", ExpiresAt: ts(2025, 6, 1)},
			},
			wantTier:   profile.PlanStandard,
			wantExpiry: ts(2025, 6, 1),
		},
		{
			name: "lifetime entitlement carries no expiry",
			active: []billing.Entitlement{
				{Identifier: "premium_lifetime"},
			},
			wantTier:   profile.PlanPremium,
			wantExpiry: nil,
		},
		{
			name: "unknown identifiers carry no tier",
			active: []billing.Entitlement{
				{Identifier: "messaging_pack_10", ExpiresAt: ts(2025, 3, 1)},
			},
			wantTier:   profile.PlanFree,
			wantExpiry: ts(2025, 3, 1),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tier, expiry := billing.DerivePlan(tc.active)
			require.Equal(t, tc.wantTier, tier)
			if tc.wantExpiry == nil {
				require.Nil(t, expiry)
			} else {
				require.NotNil(t, expiry)
				require.True(t, tc.wantExpiry.Equal(*expiry))
			}
		})
	}
}

func TestDerivePlanIsIdempotentAndOrderInsensitive(t *testing.T) {
	active := []billing.Entitlement{
		{Identifier: "standard_monthly", ExpiresAt: ts(2025, 6, 1)},
		{Identifier: "premium_annual", ExpiresAt: ts(2026, 1, 1)},
		{Identifier: "premium_lifetime"},
	}
	reversed := []billing.Entitlement{active[2], active[1], active[0]}

	tier1, expiry1 := billing.DerivePlan(active)
	tier2, expiry2 := billing.DerivePlan(active)
	tier3, expiry3 := billing.DerivePlan(reversed)

	require.Equal(t, tier1, tier2)
	require.Equal(t, tier1, tier3)
	require.True(t, expiry1.Equal(*expiry2))
	require.True(t, expiry1.Equal(*expiry3))
	require.Equal(t, profile.PlanPremium, tier1)
}
