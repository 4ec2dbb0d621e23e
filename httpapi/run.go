package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/agentbackplane/abp/contract"
	"github.com/agentbackplane/abp/internal/apierr"
)

type runRequest struct {
	Backend   string             `json:"backend"`
	WorkOrder contract.WorkOrder `json:"work_order"`
}

type runResponse struct {
	RunID   contract.RunID        `json:"run_id"`
	Backend string                `json:"backend"`
	Events  []contract.AgentEvent `json:"events"`
	Receipt contract.Receipt      `json:"receipt"`
}

// handleRun dispatches a WorkOrder against the named backend, draining the
// full event stream into a buffer before responding, so HTTP callers that
// do not want to open a separate streaming channel get the complete trace
// in one response.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorf(w, apierr.KindValidation, "httpapi: decode request body: %v", err)
		return
	}
	if err := contract.ValidateWorkOrder(req.WorkOrder); err != nil {
		writeErrorf(w, apierr.KindValidation, "%v", err)
		return
	}

	dispatched, err := s.rt.RunStreaming(r.Context(), req.Backend, req.WorkOrder)
	if err != nil {
		writeError(w, err)
		return
	}

	events := make([]contract.AgentEvent, 0, 16)
	for e := range dispatched.Events {
		events = append(events, e)
	}

	result := <-dispatched.Receipt
	if result.Err != nil {
		writeError(w, result.Err)
		return
	}

	writeJSON(w, http.StatusOK, runResponse{
		RunID:   dispatched.ID,
		Backend: req.Backend,
		Events:  events,
		Receipt: result.Receipt,
	})
}
