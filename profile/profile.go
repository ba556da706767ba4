package profile

import (
	"time"

	"github.com/subiehq/subie/identity"
)

// PlanTier enumerates the subscription plan levels.
type PlanTier string

const (
	PlanFree     PlanTier = "free"
	PlanStandard PlanTier = "standard"
	PlanPremium  PlanTier = "premium"
)

// rank orders tiers for highest-tier-wins derivation. Unknown tiers rank
// below free.
func (t PlanTier) rank() int {
	switch t {
	case PlanPremium:
		return 3
	case PlanStandard:
		return 2
	case PlanFree:
		return 1
	}
	return 0
}

// Above reports whether t outranks other.
func (t PlanTier) Above(other PlanTier) bool {
	return t.rank() > other.rank()
}

// Valid reports whether t is one of the three enumerated tiers.
func (t PlanTier) Valid() bool {
	return t == PlanFree || t == PlanStandard || t == PlanPremium
}

// Role enumerates user roles.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is one of the enumerated roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleModerator || r == RoleAdmin
}

// Profile holds the durable business attributes for one subject. Exactly one
// Profile exists per subject identifier; the profile store is the
// authoritative source.
type Profile struct {
	SubjectID     string     `json:"subject_id"`
	Email         string     `json:"email"`
	EmailVerified bool       `json:"email_verified"`
	FirstName     string     `json:"first_name,omitempty"`
	LastName      string     `json:"last_name,omitempty"`
	AvatarURL     string     `json:"avatar_url,omitempty"`
	PlanTier      PlanTier   `json:"plan_tier"`
	PlanExpiresAt *time.Time `json:"plan_expires_at,omitempty"`
	Credits       int        `json:"credits"`
	Currency      string     `json:"currency,omitempty"`
	Timezone      string     `json:"timezone,omitempty"`
	Role          Role       `json:"role"`
}

// PlanActive reports whether the profile's plan tier is in force at the
// given time. A plan with an expiry in the past falls back to inactive.
func (p *Profile) PlanActive(now time.Time) bool {
	if p.PlanTier == PlanFree || p.PlanTier == "" {
		return false
	}
	if p.PlanExpiresAt == nil {
		return true
	}
	return p.PlanExpiresAt.After(now)
}

// Equal compares two profiles field by field. The comparison is explicit
// rather than serialization-based so key ordering can never produce a false
// negative. The flow uses it to skip republishing when the authoritative
// profile matches the fallback.
func (p *Profile) Equal(other *Profile) bool {
	if p == nil || other == nil {
		return p == other
	}
	if p.SubjectID != other.SubjectID ||
		p.Email != other.Email ||
		p.EmailVerified != other.EmailVerified ||
		p.FirstName != other.FirstName ||
		p.LastName != other.LastName ||
		p.AvatarURL != other.AvatarURL ||
		p.PlanTier != other.PlanTier ||
		p.Credits != other.Credits ||
		p.Currency != other.Currency ||
		p.Timezone != other.Timezone ||
		p.Role != other.Role {
		return false
	}
	if (p.PlanExpiresAt == nil) != (other.PlanExpiresAt == nil) {
		return false
	}
	if p.PlanExpiresAt != nil && !p.PlanExpiresAt.Equal(*other.PlanExpiresAt) {
		return false
	}
	return true
}

// FallbackFromSession synthesizes a non-authoritative stand-in profile from
// session metadata alone. It is structurally identical to a stored profile
// so consumers never special-case it: plan defaults to free, credits to
// zero, role to user unless the session carries an explicit role hint.
func FallbackFromSession(sess *identity.Session) *Profile {
	if sess == nil {
		return nil
	}
	role := RoleUser
	if hint := Role(sess.Metadata.RoleHint); hint.Valid() {
		role = hint
	}
	return &Profile{
		SubjectID:     sess.SubjectID,
		Email:         sess.Metadata.Email,
		EmailVerified: sess.Metadata.EmailVerified,
		FirstName:     sess.Metadata.FirstName,
		LastName:      sess.Metadata.LastName,
		AvatarURL:     sess.Metadata.AvatarURL,
		PlanTier:      PlanFree,
		Credits:       0,
		Role:          role,
	}
}
