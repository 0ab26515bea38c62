package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Server represents the REST API server
type Server struct {
	port   int
	server *http.Server
	router *mux.Router
}

// NewServer creates a new REST API server. events, when non-nil, serves the
// websocket progress feed at /ws/events.
func NewServer(port int, handler *Handler, events http.Handler, logger *zap.Logger) *Server {
	router := mux.NewRouter()

	// Apply middleware
	router.Use(RecoveryMiddleware(logger))
	router.Use(LoggingMiddleware(logger))
	router.Use(CORSMiddleware)

	// Health check
	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// API v1 routes
	api := router.PathPrefix("/api/v1").Subrouter()

	// Players
	api.HandleFunc("/players", handler.ListPlayers).Methods("GET")
	api.HandleFunc("/players/export.csv", handler.ExportPlayers).Methods("GET")

	// Schedule and box scores
	api.HandleFunc("/gamelogs", handler.ListGameLogs).Methods("GET")
	api.HandleFunc("/boxscores", handler.ListBoxScores).Methods("GET")
	api.HandleFunc("/boxscores/advanced", handler.ListAdvancedBoxScores).Methods("GET")

	// Run history
	api.HandleFunc("/runs", handler.ListRuns).Methods("GET")
	api.HandleFunc("/runs/{runID}", handler.GetRun).Methods("GET")

	if events != nil {
		router.Handle("/ws/events", events)
	}

	return &Server{
		port:   port,
		router: router,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the REST API server
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
