package api

import (
	"net/http"

	"github.com/StrangePerch/laravel-trello-server/internal/http/response"
	"github.com/StrangePerch/laravel-trello-server/internal/service"
)

// handleBoardStore creates a board owned by the caller.
func (s *Server) handleBoardStore(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())

	var req service.CreateBoardRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	board, err := s.boardService.Create(r.Context(), user.ID, req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.JSON(w, http.StatusCreated, "Board created", response.Payload{"board": board}, s.logger)
}

// handleBoardList returns every board the caller belongs to, with columns
// and cards nested.
func (s *Server) handleBoardList(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())

	boards, err := s.boardService.List(r.Context(), user.ID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, "OK", response.Payload{"boards": boards}, s.logger)
}

// handleBoardEdit renames a board.
func (s *Server) handleBoardEdit(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	boardID, ok := s.idParam(w, r, "id")
	if !ok {
		return
	}

	var req service.UpdateBoardRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	board, err := s.boardService.Update(r.Context(), boardID, user.ID, req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, "Board updated", response.Payload{"board": board}, s.logger)
}

// handleBoardDelete removes a board and everything under it.
func (s *Server) handleBoardDelete(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	boardID, ok := s.idParam(w, r, "id")
	if !ok {
		return
	}

	if err := s.boardService.Delete(r.Context(), boardID, user.ID); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, "Board deleted", nil, s.logger)
}

// handleBoardUpdated returns the latest change time across the caller's
// boards, for cheap client polling.
func (s *Server) handleBoardUpdated(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())

	latest, err := s.boardService.LastUpdated(r.Context(), user.ID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	var updatedAt any
	if !latest.IsZero() {
		updatedAt = latest
	}
	response.Success(w, "OK", response.Payload{"updated_at": updatedAt}, s.logger)
}

// handleBoardAccess returns the caller's own access level on a board.
func (s *Server) handleBoardAccess(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	boardID, ok := s.idParam(w, r, "id")
	if !ok {
		return
	}

	level, err := s.boardService.AccessLevel(r.Context(), boardID, user.ID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.JSON(w, http.StatusCreated, "OK", response.Payload{"access_level": level}, s.logger)
}

// handleBoardUserAdd grants another user access to a board.
func (s *Server) handleBoardUserAdd(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	boardID, ok := s.idParam(w, r, "id")
	if !ok {
		return
	}

	var req service.AddMemberRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	member, err := s.boardService.AddMember(r.Context(), boardID, user.ID, req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.JSON(w, http.StatusCreated, "User added", response.Payload{"user": member}, s.logger)
}

// handleBoardUserList returns the members of a board with access levels.
func (s *Server) handleBoardUserList(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	boardID, ok := s.idParam(w, r, "id")
	if !ok {
		return
	}

	members, err := s.boardService.ListMembers(r.Context(), boardID, user.ID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.JSON(w, http.StatusCreated, "OK", response.Payload{"users": members}, s.logger)
}

// handleBoardUserEdit changes a member's access level.
func (s *Server) handleBoardUserEdit(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	boardID, ok := s.idParam(w, r, "id")
	if !ok {
		return
	}
	targetID, ok := s.idParam(w, r, "userID")
	if !ok {
		return
	}

	var req service.UpdateAccessRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	if err := s.boardService.UpdateMemberAccess(r.Context(), boardID, user.ID, targetID, req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.JSON(w, http.StatusCreated, "Access updated", nil, s.logger)
}

// handleBoardUserDelete revokes a member's access.
func (s *Server) handleBoardUserDelete(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	boardID, ok := s.idParam(w, r, "id")
	if !ok {
		return
	}
	targetID, ok := s.idParam(w, r, "userID")
	if !ok {
		return
	}

	if err := s.boardService.RemoveMember(r.Context(), boardID, user.ID, targetID); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.JSON(w, http.StatusCreated, "User removed", nil, s.logger)
}
