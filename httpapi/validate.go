package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/agentbackplane/abp/contract"
	"github.com/agentbackplane/abp/internal/apierr"
)

type validateRequest struct {
	Backend   string             `json:"backend"`
	WorkOrder contract.WorkOrder `json:"work_order"`
}

// handleValidate checks that a WorkOrder satisfies contract invariants and
// that the named backend is registered, without dispatching anything.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorf(w, apierr.KindValidation, "httpapi: decode request body: %v", err)
		return
	}

	if err := contract.ValidateWorkOrder(req.WorkOrder); err != nil {
		writeErrorf(w, apierr.KindValidation, "%v", err)
		return
	}

	if req.Backend != "" {
		if _, err := s.rt.BackendCapabilities(req.Backend); err != nil {
			writeErrorf(w, apierr.KindValidation, "httpapi: unknown backend %q", req.Backend)
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"valid": true})
}
