package api

import (
	"net/http"

	"github.com/StrangePerch/laravel-trello-server/internal/http/response"
	"github.com/StrangePerch/laravel-trello-server/internal/service"
)

// handleCardStore adds a card to a column.
func (s *Server) handleCardStore(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())

	var req service.CreateCardRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	card, err := s.cardService.Create(r.Context(), user.ID, req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.JSON(w, http.StatusCreated, "Card created", response.Payload{"card": card}, s.logger)
}

// handleCardGet fetches a single card.
func (s *Server) handleCardGet(w http.ResponseWriter, r *http.Request) {
	cardID, ok := s.idParam(w, r, "id")
	if !ok {
		return
	}

	card, err := s.cardService.Get(r.Context(), cardID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, "OK", response.Payload{"card": card}, s.logger)
}

// handleCardEdit replaces a card's title and text.
func (s *Server) handleCardEdit(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	cardID, ok := s.idParam(w, r, "id")
	if !ok {
		return
	}

	var req service.UpdateCardRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	card, err := s.cardService.Update(r.Context(), cardID, user.ID, req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, "Card updated", response.Payload{"card": card}, s.logger)
}

// handleCardMove reassigns a card to another column.
func (s *Server) handleCardMove(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	cardID, ok := s.idParam(w, r, "id")
	if !ok {
		return
	}
	toColumnID, ok := s.idParam(w, r, "to")
	if !ok {
		return
	}

	card, err := s.cardService.Move(r.Context(), cardID, toColumnID, user.ID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, "Card moved", response.Payload{"card": card}, s.logger)
}

// handleCardDelete removes a card.
func (s *Server) handleCardDelete(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	cardID, ok := s.idParam(w, r, "id")
	if !ok {
		return
	}

	if err := s.cardService.Delete(r.Context(), cardID, user.ID); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, "Card deleted", nil, s.logger)
}

// handleCardUserList returns the users subscribed to a card.
func (s *Server) handleCardUserList(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	cardID, ok := s.idParam(w, r, "id")
	if !ok {
		return
	}

	subs, err := s.cardService.ListSubscribers(r.Context(), cardID, user.ID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.JSON(w, http.StatusCreated, "OK", response.Payload{"users": subs}, s.logger)
}

// handleCardUserAdd subscribes a user to a card. The target must be the
// caller themselves.
func (s *Server) handleCardUserAdd(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	cardID, ok := s.idParam(w, r, "id")
	if !ok {
		return
	}
	targetID, ok := s.idParam(w, r, "userID")
	if !ok {
		return
	}

	if err := s.cardService.Subscribe(r.Context(), cardID, user.ID, targetID); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.JSON(w, http.StatusCreated, "Subscribed", nil, s.logger)
}

// handleCardUserDelete unsubscribes a user from a card. The target must be
// the caller themselves.
func (s *Server) handleCardUserDelete(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	cardID, ok := s.idParam(w, r, "id")
	if !ok {
		return
	}
	targetID, ok := s.idParam(w, r, "userID")
	if !ok {
		return
	}

	if err := s.cardService.Unsubscribe(r.Context(), cardID, user.ID, targetID); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.JSON(w, http.StatusCreated, "Unsubscribed", nil, s.logger)
}
