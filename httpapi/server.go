// Package httpapi exposes the runtime's backend registry, run tracker, and
// receipt store over HTTP and a single-connection WebSocket echo channel,
// routed with github.com/go-chi/chi/v5 the way the teacher's generated
// transport layer would have, had this module's HTTP surface been hand
// wired instead of code-generated from a design.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/agentbackplane/abp/internal/logging"
	"github.com/agentbackplane/abp/runtime"
)

// Options configures a Server.
type Options struct {
	Runtime *runtime.Runtime
	Logger  logging.Logger
}

// Server wires the runtime into a chi.Router implementing the full route
// table this module exposes over HTTP.
type Server struct {
	rt     *runtime.Runtime
	logger logging.Logger
	router chi.Router
}

// New builds a Server and registers every route.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = logging.New()
	}

	s := &Server{rt: opts.Runtime, logger: logger}
	s.router = s.newRouter()
	return s
}

// ServeHTTP implements http.Handler, delegating to the underlying router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) newRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Get("/metrics", s.handleMetrics)
	r.Get("/backends", s.handleBackends)
	r.Get("/capabilities", s.handleCapabilities)
	r.Get("/config", s.handleConfig)
	r.Post("/validate", s.handleValidate)
	r.Get("/schema/{type}", s.handleSchema)
	r.Post("/run", s.handleRun)
	r.Get("/runs", s.handleListRuns)
	r.Get("/runs/{id}", s.handleGetRun)
	r.Delete("/runs/{id}", s.handleDeleteRun)
	r.Get("/runs/{id}/receipt", s.handleGetRunReceipt)
	r.Get("/receipts", s.handleListReceipts)
	r.Get("/receipts/{id}", s.handleGetReceipt)
	r.Get("/ws", s.handleWS)

	return r
}
