package server

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/userstamp/internal/stamping"
	"github.com/mesh-intelligence/userstamp/pkg/types"
)

// actorMiddleware binds the actor named by X-Actor-ID on the request
// context. The actor type comes from X-Actor-Type, then from the stamping
// configuration of the addressed table, then from the default actor type.
// Requests without an actor run unbound and are not stamped.
func (s *Server) actorMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(HeaderActorID)
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}
		id := types.ParseActorID(raw)
		if id.IsZero() {
			writeError(w, http.StatusBadRequest, "invalid_actor", "X-Actor-ID is not a valid identifier")
			return
		}
		actorType := r.Header.Get(HeaderActorType)
		if actorType != "" {
			if _, ok := s.stamper.Registry().ActorTypeName(actorType); !ok {
				writeError(w, http.StatusBadRequest, "unknown_actor_type", "X-Actor-Type "+actorType+" is not registered")
				return
			}
		} else {
			actorType = s.tableActorType(mux.Vars(r)["table"])
		}
		ctx := stamping.WithActor(r.Context(), actorType, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// stampConfigs is implemented by hosts that expose per-table stamping
// configuration.
type stampConfigs interface {
	StampConfig(name string) (types.TypeConfig, error)
}

// tableActorType returns the actor type stamping table, or the configured
// default when the table is unknown or unstamped.
func (s *Server) tableActorType(table string) string {
	if sc, ok := s.cupboard.(stampConfigs); ok && table != "" {
		if cfg, err := sc.StampConfig(table); err == nil && cfg.ActorType != "" {
			return cfg.ActorType
		}
	}
	return s.cfg.DefaultActorType
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"actor":    r.Header.Get(HeaderActorID),
			"duration": time.Since(start),
		}).Debug("request")
	})
}

func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				s.log.WithField("panic", err).Error("panic recovered")
				writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
