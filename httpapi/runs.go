package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/agentbackplane/abp/contract"
	"github.com/agentbackplane/abp/internal/apierr"
	"github.com/agentbackplane/abp/runtime"
)

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	ids := s.rt.ListRuns()
	if ids == nil {
		ids = []contract.RunID{}
	}
	writeJSON(w, http.StatusOK, ids)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := contract.RunID(chi.URLParam(r, "id"))
	status, err := s.rt.GetRunStatus(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, runStatusView(status))
}

func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	id := contract.RunID(chi.URLParam(r, "id"))
	if err := s.rt.RemoveRun(id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetRunReceipt(w http.ResponseWriter, r *http.Request) {
	id := contract.RunID(chi.URLParam(r, "id"))
	status, err := s.rt.GetRunStatus(id)
	if err != nil {
		writeError(w, err)
		return
	}
	if status.Kind != runtime.RunCompleted {
		writeErrorf(w, apierr.KindNotFound, "httpapi: run %q has no receipt yet", id)
		return
	}
	writeJSON(w, http.StatusOK, status.Receipt)
}

func runStatusView(status runtime.RunStatus) map[string]any {
	view := map[string]any{"status": string(status.Kind)}
	if status.Kind == runtime.RunCompleted {
		view["receipt"] = status.Receipt
	}
	if status.Kind == runtime.RunFailed {
		view["error"] = status.Error
	}
	return view
}
