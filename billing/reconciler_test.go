package billing_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/subiehq/subie/billing"
	billingmemory "github.com/subiehq/subie/billing/memory"
	"github.com/subiehq/subie/profile"
	"github.com/subiehq/subie/profile/storefakes"
)

type failingLedger struct{}

func (failingLedger) ActiveEntitlements(context.Context, string) ([]billing.Entitlement, error) {
	return nil, errors.New("ledger unavailable")
}

func (failingLedger) Purchase(context.Context, string, string) (*billing.PurchaseResult, error) {
	return nil, errors.New("ledger unavailable")
}

func (failingLedger) RestorePurchases(context.Context, string) (*billing.PurchaseResult, error) {
	return nil, errors.New("ledger unavailable")
}

func seedProfile(store *storefakes.FakeStore, subjectID string) {
	store.Put(&profile.Profile{SubjectID: subjectID, PlanTier: profile.PlanFree, Role: profile.RoleUser})
}

func TestReconcilerValidatesDependencies(t *testing.T) {
	_, err := billing.NewReconciler(nil, storefakes.NewFakeStore(), zerolog.Nop())
	require.Error(t, err)
	_, err = billing.NewReconciler(billingmemory.NewLedger(), nil, zerolog.Nop())
	require.Error(t, err)
}

func TestReconcileWritesDerivedPlanThrough(t *testing.T) {
	ledger := billingmemory.NewLedger()
	store := storefakes.NewFakeStore()
	seedProfile(store, "subject-1")

	expiry := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	ledger.Seed("subject-1", []billing.Entitlement{
		{Identifier: "premium_annual", ExpiresAt: &expiry},
	})

	r, err := billing.NewReconciler(ledger, store, zerolog.Nop())
	require.NoError(t, err)

	tier, got, err := r.Reconcile(context.Background(), "subject-1")
	require.NoError(t, err)
	require.Equal(t, profile.PlanPremium, tier)
	require.True(t, expiry.Equal(*got))

	stored, err := store.Get(context.Background(), "subject-1")
	require.NoError(t, err)
	require.Equal(t, profile.PlanPremium, stored.PlanTier)
	require.True(t, expiry.Equal(*stored.PlanExpiresAt))
}

func TestReconcileEmptyLedgerDowngradesToFree(t *testing.T) {
	ledger := billingmemory.NewLedger()
	store := storefakes.NewFakeStore()
	store.Put(&profile.Profile{SubjectID: "subject-1", PlanTier: profile.PlanPremium, Role: profile.RoleUser})

	r, err := billing.NewReconciler(ledger, store, zerolog.Nop())
	require.NoError(t, err)

	tier, expiry, err := r.Reconcile(context.Background(), "subject-1")
	require.NoError(t, err)
	require.Equal(t, profile.PlanFree, tier)
	require.Nil(t, expiry)

	stored, err := store.Get(context.Background(), "subject-1")
	require.NoError(t, err)
	require.Equal(t, profile.PlanFree, stored.PlanTier)
	require.Nil(t, stored.PlanExpiresAt)
}

func TestReconcileSurfacesLedgerFailureWithoutWriting(t *testing.T) {
	store := storefakes.NewFakeStore()
	store.Put(&profile.Profile{SubjectID: "subject-1", PlanTier: profile.PlanPremium, Role: profile.RoleUser})

	r, err := billing.NewReconciler(failingLedger{}, store, zerolog.Nop())
	require.NoError(t, err)

	_, _, err = r.Reconcile(context.Background(), "subject-1")
	require.Error(t, err)

	stored, err := store.Get(context.Background(), "subject-1")
	require.NoError(t, err)
	require.Equal(t, profile.PlanPremium, stored.PlanTier)
}

func TestReconcileAfterUsesPurchaseResult(t *testing.T) {
	ledger := billingmemory.NewLedger()
	store := storefakes.NewFakeStore()
	seedProfile(store, "subject-1")

	r, err := billing.NewReconciler(ledger, store, zerolog.Nop())
	require.NoError(t, err)

	result, err := ledger.Purchase(context.Background(), "subject-1", "standard_monthly")
	require.NoError(t, err)

	tier, expiry, err := r.ReconcileAfter(context.Background(), "subject-1", result)
	require.NoError(t, err)
	require.Equal(t, profile.PlanStandard, tier)
	require.Nil(t, expiry)
}
