package api

import (
	"net/http"

	"github.com/StrangePerch/laravel-trello-server/internal/http/response"
	"github.com/StrangePerch/laravel-trello-server/internal/service"
)

// handleColumnStore adds a column to a board.
func (s *Server) handleColumnStore(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())

	var req service.CreateColumnRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	column, err := s.columnService.Create(r.Context(), user.ID, req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.JSON(w, http.StatusCreated, "Column created", response.Payload{"column": column}, s.logger)
}

// handleColumnEdit renames a column.
func (s *Server) handleColumnEdit(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	columnID, ok := s.idParam(w, r, "id")
	if !ok {
		return
	}

	var req service.UpdateColumnRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	column, err := s.columnService.Update(r.Context(), columnID, user.ID, req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, "Column updated", response.Payload{"column": column}, s.logger)
}

// handleColumnDelete removes a column and its cards.
func (s *Server) handleColumnDelete(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	columnID, ok := s.idParam(w, r, "id")
	if !ok {
		return
	}

	if err := s.columnService.Delete(r.Context(), columnID, user.ID); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, "Column deleted", nil, s.logger)
}
