package profile

import (
	"context"
	"time"
)

// Patch is a partial profile update. Nil fields are left untouched.
type Patch struct {
	FirstName *string
	LastName  *string
	AvatarURL *string
	Currency  *string
	Timezone  *string
}

// Empty reports whether the patch carries no changes.
func (p Patch) Empty() bool {
	return p.FirstName == nil && p.LastName == nil && p.AvatarURL == nil &&
		p.Currency == nil && p.Timezone == nil
}

// Store is the authoritative profile store, keyed by subject identifier.
type Store interface {
	Get(ctx context.Context, subjectID string) (*Profile, error)
	Create(ctx context.Context, p *Profile) error
	Update(ctx context.Context, subjectID string, patch Patch) (*Profile, error)

	// UpdatePlan writes the plan tier and expiry together. Billing
	// reconciliation is the only caller; tier and expiry are never
	// written separately.
	UpdatePlan(ctx context.Context, subjectID string, tier PlanTier, expiresAt *time.Time) error
}
