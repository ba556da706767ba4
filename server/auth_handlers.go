package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/subiehq/subie/identity"
	"github.com/subiehq/subie/profile"
)

type signUpRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

type sessionResponse struct {
	Token     string            `json:"token"`
	SubjectID string            `json:"subject_id"`
	ExpiresAt time.Time         `json:"expires_at"`
	Metadata  identity.Metadata `json:"metadata"`
}

func toSessionResponse(sess *identity.Session) sessionResponse {
	return sessionResponse{
		Token:     sess.Token,
		SubjectID: sess.SubjectID,
		ExpiresAt: sess.ExpiresAt,
		Metadata:  sess.Metadata,
	}
}

// SignUpHandler creates a credential and the matching profile row. A profile
// row failure after the credential exists is reported to the caller and the
// credential is kept; the subject serves fallback data until the row exists.
func (s *Server) SignUpHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req signUpRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		sess, err := s.identity.Register(r.Context(), req.Email, req.Password, identity.ProfileSeed{
			FirstName: req.FirstName,
			LastName:  req.LastName,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		if err := s.profiles.Create(r.Context(), profile.FallbackFromSession(sess)); err != nil {
			s.logger.Error().Err(err).Str("subject_id", sess.SubjectID).Msg("profile row creation failed after sign-up")
			writeError(w, http.StatusInternalServerError, "account created but profile provisioning failed")
			return
		}

		writeJSON(w, http.StatusCreated, toSessionResponse(sess))
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		sess, err := s.identity.Authenticate(r.Context(), req.Email, req.Password)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toSessionResponse(sess))
	}
}

func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFromContext(r.Context())
		if err := s.identity.Revoke(r.Context(), sess.Token); err != nil {
			s.logger.Warn().Err(err).Str("subject_id", sess.SubjectID).Msg("session revocation failed")
		}
		// The session is gone from the caller's perspective either way.
		w.WriteHeader(http.StatusNoContent)
	}
}

type passwordResetRequest struct {
	Email string `json:"email"`
}

func (s *Server) PasswordResetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req passwordResetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if err := s.identity.StartReset(r.Context(), req.Email); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}
}

type passwordUpdateRequest struct {
	Password string `json:"password"`
}

func (s *Server) PasswordUpdateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req passwordUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		sess := sessionFromContext(r.Context())
		if err := s.identity.SetPassword(r.Context(), sess.SubjectID, req.Password); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// OAuthBeginHandler starts the federated handoff by redirecting to the
// provider's authorization URL.
func (s *Server) OAuthBeginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		provider := identity.OAuthProvider(r.PathValue("provider"))

		client := s.identity.NewClient()
		url, err := client.SignInWithOAuth(r.Context(), provider)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		http.Redirect(w, r, url, http.StatusFound)
	}
}
