package api

import (
	"encoding/json/v2"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/StrangePerch/laravel-trello-server/internal/http/response"
)

// idParam parses a numeric path parameter. A non-numeric value reads as a
// resource that cannot exist.
func (s *Server) idParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		response.NotFound(w, "Not found", s.logger)
		return 0, false
	}
	return id, true
}

// decodeBody unmarshals the JSON request body into dst. Malformed JSON is
// reported as a validation failure, matching the envelope contract.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.UnmarshalRead(r.Body, dst); err != nil {
		response.Error(w, http.StatusInternalServerError, "Wrong input", nil, s.logger)
		return false
	}
	return true
}
