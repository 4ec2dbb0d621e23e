package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/agentbackplane/abp/internal/apierr"
)

// writeJSON encodes v as the response body with the given status, mirroring
// the specification's blanket "all endpoints use JSON" rule.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError translates err into an HTTP status via apierr.KindOf and
// writes {"error": message}, the shape every error response in this
// package shares.
func writeError(w http.ResponseWriter, err error) {
	status := apierr.KindOf(err).HTTPStatus()
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeErrorf(w http.ResponseWriter, kind apierr.Kind, format string, args ...any) {
	writeError(w, apierr.Newf(kind, format, args...))
}
