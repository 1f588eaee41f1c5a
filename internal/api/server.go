// Package api exposes the catalog and matching operations over a local
// HTTP API.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/halfmoss/reelmatch/internal/catalog"
	"github.com/halfmoss/reelmatch/internal/config"
	"github.com/halfmoss/reelmatch/internal/database"
	"github.com/halfmoss/reelmatch/internal/logging"
	"github.com/halfmoss/reelmatch/internal/matcher"
)

// Server implements the HTTP API.
type Server struct {
	db      *database.CatalogDB
	cfg     *config.Config
	matcher *matcher.Matcher
	manager *catalog.Manager
	logger  *logging.Logger
}

// NewServer creates an API server over the given database and config.
func NewServer(db *database.CatalogDB, cfg *config.Config, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Server{
		db:      db,
		cfg:     cfg,
		matcher: matcher.New(logger),
		manager: catalog.NewManager(db),
		logger:  logger,
	}
}

// Router builds the chi router with all API routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute))
	r.Use(s.logRequests)

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/items", s.handleListItems)
		r.Post("/items", s.handleCreateItem)
		r.Post("/batch-match", s.handleBatchMatch)

		r.Route("/items/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetItem)
			r.Delete("/", s.handleDeleteItem)
			r.Post("/match", s.handleMatch)
			r.Post("/materials", s.handleAssociate)
			r.Delete("/materials/{materialID}", s.handleRemoveMaterial)
			r.Post("/rename", s.handleRename)
		})
	})

	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("api", "request",
			logging.F("method", r.Method),
			logging.F("path", r.URL.Path),
			logging.F("duration", time.Since(start).Round(time.Millisecond)))
	})
}

// ListenAndServe runs the API on the configured address.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Minute,
	}
	s.logger.Info("api", "listening", logging.F("addr", addr))
	return srv.ListenAndServe()
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
