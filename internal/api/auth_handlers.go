package api

import (
	"net/http"

	"github.com/StrangePerch/laravel-trello-server/internal/http/response"
	"github.com/StrangePerch/laravel-trello-server/internal/service"
)

// handleRegister creates a new account and returns a bearer token.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	resp, err := s.authService.Register(r.Context(), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.JSON(w, http.StatusCreated, "Successfully registered", response.Payload{
		"user":  resp.User,
		"token": resp.Token,
	}, s.logger)
}

// handleLogin verifies credentials and returns a bearer token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	resp, err := s.authService.Login(r.Context(), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, "Successfully logged in", response.Payload{
		"user":  resp.User,
		"token": resp.Token,
	}, s.logger)
}

// handleLogout revokes every token the user holds.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())

	if err := s.authService.Logout(r.Context(), user.ID); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, "Successfully logged out", nil, s.logger)
}

// handleCurrentUser returns the authenticated user.
func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	user.PasswordHash = ""

	response.Success(w, "OK", response.Payload{"user": user}, s.logger)
}
