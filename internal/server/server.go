// Package server exposes the standard tables over HTTP. Every request runs
// with the actor named in its headers bound on the request context, so
// records written through the API are stamped without shared state.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/userstamp/internal/stamping"
	"github.com/mesh-intelligence/userstamp/pkg/types"
)

// Request headers naming the acting actor.
const (
	HeaderActorID   = "X-Actor-ID"
	HeaderActorType = "X-Actor-Type"
)

// Config is the HTTP server configuration.
type Config struct {
	Addr             string
	DefaultActorType string
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
}

// Server serves the table API.
type Server struct {
	cupboard types.Cupboard
	stamper  *stamping.Stamper
	log      logrus.FieldLogger
	cfg      Config
	router   *mux.Router
	server   *http.Server
}

// New creates a server over an attached cupboard.
func New(cfg Config, cupboard types.Cupboard, stamper *stamping.Stamper, log logrus.FieldLogger) *Server {
	if cfg.DefaultActorType == "" {
		cfg.DefaultActorType = types.DefaultActorType
	}
	s := &Server{
		cupboard: cupboard,
		stamper:  stamper,
		log:      log,
		cfg:      cfg,
		router:   mux.NewRouter(),
	}
	s.routes()
	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

func (s *Server) routes() {
	r := s.router
	r.Use(s.recoveryMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.actorMiddleware)

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	}).Methods(http.MethodGet)

	r.HandleFunc("/{table}", s.handleFetch).Methods(http.MethodGet)
	r.HandleFunc("/{table}", s.handleCreate).Methods(http.MethodPost)
	r.HandleFunc("/{table}/{id}", s.handleGet).Methods(http.MethodGet)
	r.HandleFunc("/{table}/{id}", s.handleUpdate).Methods(http.MethodPut)
	r.HandleFunc("/{table}/{id}", s.handleDelete).Methods(http.MethodDelete)
	r.HandleFunc("/{table}/{id}/{role:creator|modifier|deleter}", s.handleActor).Methods(http.MethodGet)
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler { return s.router }

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.log.WithField("addr", s.cfg.Addr).Info("starting HTTP server")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
