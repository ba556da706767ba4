package billing

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/subiehq/subie/profile"
)

// Reconciler synchronizes the ledger's entitlement state into the profile
// store's plan fields. Each call performs exactly one plan write; tier and
// expiry always land together.
type Reconciler struct {
	ledger Ledger
	store  profile.Store
	logger zerolog.Logger
}

func NewReconciler(ledger Ledger, store profile.Store, logger zerolog.Logger) (*Reconciler, error) {
	if ledger == nil {
		return nil, errors.New("[NewReconciler] ledger is required")
	}
	if store == nil {
		return nil, errors.New("[NewReconciler] store is required")
	}
	return &Reconciler{ledger: ledger, store: store, logger: logger}, nil
}

// Reconcile fetches the subject's active entitlements, derives the effective
// plan and writes it through. Recomputing from the same entitlement set is
// idempotent, so callers may run it after every purchase, restore or login
// without coordination.
func (r *Reconciler) Reconcile(ctx context.Context, subjectID string) (profile.PlanTier, *time.Time, error) {
	active, err := r.ledger.ActiveEntitlements(ctx, subjectID)
	if err != nil {
		return "", nil, errors.Wrap(err, "[Reconciler.Reconcile] ActiveEntitlements")
	}

	tier, expiry := DerivePlan(active)
	if err := r.store.UpdatePlan(ctx, subjectID, tier, expiry); err != nil {
		return "", nil, errors.Wrap(err, "[Reconciler.Reconcile] UpdatePlan")
	}

	r.logger.Debug().
		Str("subject_id", subjectID).
		Str("plan_tier", string(tier)).
		Int("entitlements", len(active)).
		Msg("billing reconciled")
	return tier, expiry, nil
}

// ReconcileAfter applies a purchase result without a second ledger
// round-trip, deriving from the entitlements the ledger just returned.
func (r *Reconciler) ReconcileAfter(ctx context.Context, subjectID string, result *PurchaseResult) (profile.PlanTier, *time.Time, error) {
	if result == nil {
		return r.Reconcile(ctx, subjectID)
	}
	tier, expiry := DerivePlan(result.ActiveEntitlements)
	if err := r.store.UpdatePlan(ctx, subjectID, tier, expiry); err != nil {
		return "", nil, errors.Wrap(err, "[Reconciler.ReconcileAfter] UpdatePlan")
	}
	return tier, expiry, nil
}
