package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/agentbackplane/abp/contract"
)

func (s *Server) handleListReceipts(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}
	receipts := s.rt.ListReceipts(limit)
	if receipts == nil {
		receipts = []contract.Receipt{}
	}
	writeJSON(w, http.StatusOK, receipts)
}

func (s *Server) handleGetReceipt(w http.ResponseWriter, r *http.Request) {
	id := contract.RunID(chi.URLParam(r, "id"))
	receipt, err := s.rt.GetReceiptOrDisk(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}
