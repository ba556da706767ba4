// Package memory is an in-process billing ledger. It stands in for the
// hosted purchase ledger in development and tests; entitlement state is
// seeded through the Seed method rather than real purchases.
package memory

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/subiehq/subie/billing"
)

var _ billing.Ledger = (*Ledger)(nil)

type Ledger struct {
	entitlements map[string][]billing.Entitlement
	lock         sync.RWMutex
}

func NewLedger() *Ledger {
	return &Ledger{entitlements: make(map[string][]billing.Entitlement)}
}

func (l *Ledger) ActiveEntitlements(ctx context.Context, subjectID string) ([]billing.Entitlement, error) {
	l.lock.RLock()
	defer l.lock.RUnlock()
	return append([]billing.Entitlement(nil), l.entitlements[subjectID]...), nil
}

// Purchase grants the entitlement named by packageRef. The in-process
// ledger performs no payment; it records the grant and returns the updated
// active set the way the hosted ledger would.
func (l *Ledger) Purchase(ctx context.Context, subjectID, packageRef string) (*billing.PurchaseResult, error) {
	if packageRef == "" {
		return nil, errors.New("[Ledger.Purchase] unknown package")
	}
	l.lock.Lock()
	defer l.lock.Unlock()
	l.entitlements[subjectID] = append(l.entitlements[subjectID], billing.Entitlement{Identifier: packageRef})
	return &billing.PurchaseResult{
		ActiveEntitlements: append([]billing.Entitlement(nil), l.entitlements[subjectID]...),
	}, nil
}

func (l *Ledger) RestorePurchases(ctx context.Context, subjectID string) (*billing.PurchaseResult, error) {
	l.lock.RLock()
	defer l.lock.RUnlock()
	return &billing.PurchaseResult{
		ActiveEntitlements: append([]billing.Entitlement(nil), l.entitlements[subjectID]...),
	}, nil
}

// Seed replaces a subject's active entitlement set.
func (l *Ledger) Seed(subjectID string, active []billing.Entitlement) {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.entitlements[subjectID] = append([]billing.Entitlement(nil), active...)
}
