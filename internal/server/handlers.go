package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mesh-intelligence/userstamp/pkg/types"
)

func (s *Server) table(w http.ResponseWriter, r *http.Request) (types.Table, bool) {
	tbl, err := s.cupboard.GetTable(mux.Vars(r)["table"])
	if err != nil {
		s.writeErr(w, err)
		return nil, false
	}
	return tbl, true
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	tbl, ok := s.table(w, r)
	if !ok {
		return
	}
	rec := tbl.New()
	if err := json.NewDecoder(r.Body).Decode(rec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}
	id, err := tbl.Set(r.Context(), "", rec)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.respondRecord(w, r, tbl, id, http.StatusCreated)
}

// handleUpdate decodes the body over the stored record, so omitted fields
// keep their values.
func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	tbl, ok := s.table(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]
	rec, err := tbl.Get(r.Context(), id)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	if err := json.NewDecoder(r.Body).Decode(rec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}
	if _, err := tbl.Set(r.Context(), id, rec); err != nil {
		s.writeErr(w, err)
		return
	}
	s.respondRecord(w, r, tbl, id, http.StatusOK)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	tbl, ok := s.table(w, r)
	if !ok {
		return
	}
	s.respondRecord(w, r, tbl, mux.Vars(r)["id"], http.StatusOK)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	tbl, ok := s.table(w, r)
	if !ok {
		return
	}
	if err := tbl.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		s.writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleFetch lists a table. Query parameters are column filters, plus
// limit and with_deleted.
func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	tbl, ok := s.table(w, r)
	if !ok {
		return
	}
	filter := types.Filter{}
	for key, values := range r.URL.Query() {
		if len(values) == 0 {
			continue
		}
		switch key {
		case types.FilterWithDeleted:
			b, err := strconv.ParseBool(values[0])
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_filter", "with_deleted must be a boolean")
				return
			}
			filter[key] = b
		default:
			filter[key] = values[0]
		}
	}
	recs, err := tbl.Fetch(r.Context(), filter)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope(recs))
}

// handleActor returns the actor entity recorded in one stamp role.
func (s *Server) handleActor(w http.ResponseWriter, r *http.Request) {
	tbl, ok := s.table(w, r)
	if !ok {
		return
	}
	vars := mux.Vars(r)
	role, ok := types.ParseRole(vars["role"])
	if !ok {
		s.writeErr(w, types.ErrInvalidRole)
		return
	}
	rec, err := tbl.Get(r.Context(), vars["id"])
	if err != nil {
		s.writeErr(w, err)
		return
	}
	actor, ok := s.stamper.Associated(r.Context(), rec, role)
	if !ok {
		writeError(w, http.StatusNotFound, "actor_not_found", "no "+string(role)+" recorded")
		return
	}
	writeJSON(w, http.StatusOK, envelope(actor))
}

func (s *Server) respondRecord(w http.ResponseWriter, r *http.Request, tbl types.Table, id string, status int) {
	rec, err := tbl.Get(r.Context(), id)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, status, envelope(rec))
}

// writeErr maps sentinel errors to HTTP statuses.
func (s *Server) writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, types.ErrTableNotFound):
		writeError(w, http.StatusNotFound, "table_not_found", err.Error())
	case errors.Is(err, types.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, types.ErrInvalidID),
		errors.Is(err, types.ErrInvalidData),
		errors.Is(err, types.ErrInvalidFilter),
		errors.Is(err, types.ErrInvalidRole):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, types.ErrCupboardDetached):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err.Error())
	default:
		s.log.WithError(err).Error("request failed")
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func envelope(data any) map[string]any {
	return map[string]any{"status": true, "data": data}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"status":  false,
		"code":    code,
		"message": message,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
