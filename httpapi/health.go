package httpapi

import (
	"net/http"
	"time"

	"github.com/agentbackplane/abp/contract"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":           "ok",
		"contract_version": contract.ContractVersion,
		"time":             time.Now().UTC(),
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	total, running, completed, failed := s.rt.Metrics()
	writeJSON(w, http.StatusOK, map[string]any{
		"total_runs": total,
		"running":    running,
		"completed":  completed,
		"failed":     failed,
	})
}

func (s *Server) handleBackends(w http.ResponseWriter, r *http.Request) {
	names := s.rt.Backends()
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, names)
}

func (s *Server) handleCapabilities(w http.ResponseWriter, r *http.Request) {
	if name := r.URL.Query().Get("backend"); name != "" {
		caps, err := s.rt.BackendCapabilities(name)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, caps)
		return
	}
	writeJSON(w, http.StatusOK, s.rt.Capabilities())
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	backends := s.rt.Backends()
	if backends == nil {
		backends = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"backends":         backends,
		"contract_version": contract.ContractVersion,
		"receipts_dir":     s.rt.ReceiptsDir(),
	})
}
