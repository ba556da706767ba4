package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/subiehq/subie/profile"
)

type planResponse struct {
	PlanTier      profile.PlanTier `json:"plan_tier"`
	PlanExpiresAt *time.Time       `json:"plan_expires_at,omitempty"`
}

// BillingReconcileHandler recomputes the caller's plan from the ledger's
// active entitlements and writes it through. Safe to call repeatedly; the
// derivation is idempotent.
func (s *Server) BillingReconcileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFromContext(r.Context())

		tier, expiry, err := s.reconciler.Reconcile(r.Context(), sess.SubjectID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		s.collector.RecordBillingReconcile()
		writeJSON(w, http.StatusOK, planResponse{PlanTier: tier, PlanExpiresAt: expiry})
	}
}

type purchaseRequest struct {
	PackageRef string `json:"package_ref"`
}

func (s *Server) PurchaseHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req purchaseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.PackageRef == "" {
			writeError(w, http.StatusBadRequest, "package_ref is required")
			return
		}

		sess := sessionFromContext(r.Context())
		result, err := s.ledger.Purchase(r.Context(), sess.SubjectID, req.PackageRef)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		tier, expiry, err := s.reconciler.ReconcileAfter(r.Context(), sess.SubjectID, result)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		s.collector.RecordBillingReconcile()
		writeJSON(w, http.StatusOK, planResponse{PlanTier: tier, PlanExpiresAt: expiry})
	}
}

func (s *Server) RestoreHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFromContext(r.Context())

		result, err := s.ledger.RestorePurchases(r.Context(), sess.SubjectID)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		tier, expiry, err := s.reconciler.ReconcileAfter(r.Context(), sess.SubjectID, result)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		s.collector.RecordBillingReconcile()
		writeJSON(w, http.StatusOK, planResponse{PlanTier: tier, PlanExpiresAt: expiry})
	}
}
