package server

import (
	"encoding/json"
	"net/http"

	"github.com/subiehq/subie/profile"
)

type meResponse struct {
	Session    sessionResponse  `json:"session"`
	Profile    *profile.Profile `json:"profile"`
	Reconciled bool             `json:"reconciled"`
}

// MeHandler returns the caller's current-user view with the flow's fail-soft
// semantics: when the profile store cannot answer, the response carries the
// fallback profile derived from session metadata and reconciled=false
// instead of an error.
func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFromContext(r.Context())

		resp := meResponse{Session: toSessionResponse(sess)}
		p, err := s.profiles.Get(r.Context(), sess.SubjectID)
		if err != nil {
			s.collector.RecordFetchFailure()
			s.logger.Warn().Err(err).Str("subject_id", sess.SubjectID).Msg("profile fetch failed, serving fallback")
			resp.Profile = profile.FallbackFromSession(sess)
		} else {
			resp.Profile = p
			resp.Reconciled = true
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

type meUpdateRequest struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
	Currency  *string `json:"currency,omitempty"`
	Timezone  *string `json:"timezone,omitempty"`
}

func (s *Server) MeUpdateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req meUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		patch := profile.Patch{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			AvatarURL: req.AvatarURL,
			Currency:  req.Currency,
			Timezone:  req.Timezone,
		}
		if patch.Empty() {
			writeError(w, http.StatusBadRequest, "no fields to update")
			return
		}

		sess := sessionFromContext(r.Context())
		merged, err := s.profiles.Update(r.Context(), sess.SubjectID, patch)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, merged)
	}
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
