// Package rest serves harvested games, season leaders, and the harvest
// job queue over HTTP.
package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fortuna/ceres/internal/cache"
	"github.com/fortuna/ceres/internal/harvest"
	"github.com/fortuna/ceres/internal/ingest/wiaa"
	"github.com/fortuna/ceres/internal/logging"
	"github.com/fortuna/ceres/internal/store"
	"github.com/gorilla/mux"
)

// Server is the REST API server.
type Server struct {
	port    string
	server  *http.Server
	handler http.Handler
}

// NewServer wires routes, middleware, and handlers.
func NewServer(port string, db *store.Database, client *wiaa.Client, harvestSvc *harvest.Service, leadersCache *cache.RedisCache, log *logging.Logger) *Server {
	if log == nil {
		log = logging.Default()
	}
	log = log.Named("rest")

	handler := NewHandler(db, client, leadersCache, log)
	harvestHandler := NewHarvestHandler(harvestSvc)

	router := mux.NewRouter()

	router.Use(RecoveryMiddleware(log))
	router.Use(LoggingMiddleware(log))

	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/games", handler.GetGames).Methods("GET")
	api.HandleFunc("/games/{gameID}", handler.GetGame).Methods("GET")

	api.HandleFunc("/leaders/{category}", handler.GetLeaders).Methods("GET")

	api.HandleFunc("/harvest", harvestHandler.HandleHarvestRequest).Methods("POST")
	api.HandleFunc("/harvest/status", harvestHandler.HandleHarvestStatus).Methods("GET")

	api.HandleFunc("/fetch/health", handler.GetFetchHealth).Methods("GET")

	// CORS wraps the router itself so preflights are answered before
	// method matching.
	wrapped := CORSMiddleware()(router)

	return &Server{
		port:    port,
		handler: wrapped,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%s", port),
			Handler: wrapped,
		},
	}
}

// Router exposes the request handler for tests.
func (s *Server) Router() http.Handler {
	return s.handler
}

// Start starts the REST API server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
