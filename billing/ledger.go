package billing

import "context"

// PurchaseResult reports the ledger's view after a purchase or restore.
type PurchaseResult struct {
	ActiveEntitlements []Entitlement
}

// Ledger is the third-party purchase ledger. It identifies actors by the
// same subject id the identity provider issues; keeping the two logged in
// and out together is the caller's job.
type Ledger interface {
	ActiveEntitlements(ctx context.Context, subjectID string) ([]Entitlement, error)
	Purchase(ctx context.Context, subjectID, packageRef string) (*PurchaseResult, error)
	RestorePurchases(ctx context.Context, subjectID string) (*PurchaseResult, error)
}
