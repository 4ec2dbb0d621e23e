package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/agentbackplane/abp/internal/apierr"
	"github.com/agentbackplane/abp/schema"
)

// handleSchema serves the committed JSON Schema document for {type}
// byte-identical to the file on disk.
func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	typ := chi.URLParam(r, "type")
	doc, ok := schema.Document(schema.Name(typ))
	if !ok {
		writeError(w, apierr.Newf(apierr.KindNotFound, "httpapi: unknown schema type %q", typ))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}
