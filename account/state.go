package account

import (
	"github.com/subiehq/subie/identity"
	"github.com/subiehq/subie/profile"
)

// Phase names the flow's position in its session lifecycle.
type Phase string

const (
	PhaseUninitialized           Phase = "uninitialized"
	PhaseResolving               Phase = "resolving"
	PhaseAuthenticatedFallback   Phase = "authenticated_fallback"
	PhaseAuthenticatedReconciled Phase = "authenticated_reconciled"
	PhaseAnonymous               Phase = "anonymous"
)

// State is the flow's externally observable output: the current session, the
// current profile (fallback or authoritative, structurally identical either
// way) and a loading flag that is true only before the first resolution.
type State struct {
	Phase   Phase
	Session *identity.Session
	Profile *profile.Profile
	Loading bool
}

// The derived accessors are pure functions of the state, recomputed on every
// read rather than cached, so they can never go stale independently.

func (s State) IsAuthenticated() bool {
	return s.Session != nil
}

func (s State) IsAdmin() bool {
	return s.Profile != nil && s.Profile.Role == profile.RoleAdmin
}

func (s State) IsModerator() bool {
	return s.Profile != nil && s.Profile.Role == profile.RoleModerator
}

func (s State) HasAdminAccess() bool {
	return s.IsAdmin() || s.IsModerator()
}

// equal reports whether two states are observably identical. The flow skips
// notifying subscribers when a transition lands on an equal state, so a
// profile fetch that merely confirms the fallback fires no change event.
func (s State) equal(other State) bool {
	if s.Phase != other.Phase || s.Loading != other.Loading {
		return false
	}
	if (s.Session == nil) != (other.Session == nil) {
		return false
	}
	if s.Session != nil && s.Session.SubjectID != other.Session.SubjectID {
		return false
	}
	return s.Profile.Equal(other.Profile)
}
