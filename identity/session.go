package identity

import "time"

// Metadata is the free-form bag of attributes the identity provider attaches
// to a session: name parts, avatar, contact-verification flags and an
// optional role hint. It is the only material available for synthesizing a
// fallback profile before the profile store has answered.
type Metadata struct {
	Email         string `json:"email,omitempty"`
	EmailVerified bool   `json:"email_verified,omitempty"`
	FirstName     string `json:"first_name,omitempty"`
	LastName      string `json:"last_name,omitempty"`
	AvatarURL     string `json:"avatar_url,omitempty"`
	RoleHint      string `json:"role_hint,omitempty"`
}

// Session represents one authenticated browser/device context. It is owned
// by the identity provider; consumers hold a read-only, possibly stale copy.
type Session struct {
	SubjectID string    `json:"subject_id"`         // Opaque unique id correlating session, profile and entitlements
	Token     string    `json:"-"`                  // Bearer session token - never serialize
	IssuedAt  time.Time `json:"issued_at"`          // When the session was created
	ExpiresAt time.Time `json:"expires_at"`         // When the session expires
	Metadata  Metadata  `json:"metadata,omitempty"` // Provider-owned attribute bag
}

// Expired reports whether the session has passed its expiry at the given time.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
