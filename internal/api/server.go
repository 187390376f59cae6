// Package api provides the HTTP API server and handlers for the Trello-style board service.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/StrangePerch/laravel-trello-server/internal/http/response"
	"github.com/StrangePerch/laravel-trello-server/internal/ratelimit"
	"github.com/StrangePerch/laravel-trello-server/internal/service"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	authService   *service.AuthService
	boardService  *service.BoardService
	columnService *service.ColumnService
	cardService   *service.CardService
	loginLimiter  *ratelimit.KeyedRateLimiter
	router        *chi.Mux
	logger        *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(
	authService *service.AuthService,
	boardService *service.BoardService,
	columnService *service.ColumnService,
	cardService *service.CardService,
	loginLimiter *ratelimit.KeyedRateLimiter,
	logger *slog.Logger,
) *Server {
	s := &Server{
		authService:   authService,
		boardService:  boardService,
		columnService: columnService,
		cardService:   cardService,
		loginLimiter:  loginLimiter,
		router:        chi.NewRouter(),
		logger:        logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))
}

// setupRoutes configures all HTTP routes. Paths follow the original client
// contract, verb-style segments included.
func (s *Server) setupRoutes() {
	s.router.Get("/ping", s.handlePing)

	// Public auth endpoints, rate limited by client IP.
	s.router.Group(func(r chi.Router) {
		r.Use(s.rateLimitByIP(s.loginLimiter))
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)
	})

	// Everything else needs a bearer token.
	s.router.Group(func(r chi.Router) {
		r.Use(s.requireAuth)

		r.Post("/auth/logout", s.handleLogout)
		r.Get("/auth/user", s.handleCurrentUser)
		r.Get("/authenticated", s.handleAuthenticated)

		r.Route("/board", func(r chi.Router) {
			r.Post("/store", s.handleBoardStore)
			r.Get("/get", s.handleBoardList)
			r.Put("/edit/{id}", s.handleBoardEdit)
			r.Delete("/delete/{id}", s.handleBoardDelete)
			r.Get("/updated", s.handleBoardUpdated)
			r.Get("/access/{id}", s.handleBoardAccess)

			r.Route("/{id}/users", func(r chi.Router) {
				r.Post("/add", s.handleBoardUserAdd)
				r.Get("/get", s.handleBoardUserList)
				r.Put("/edit/{userID}", s.handleBoardUserEdit)
				r.Delete("/delete/{userID}", s.handleBoardUserDelete)
			})
		})

		r.Route("/column", func(r chi.Router) {
			r.Post("/store", s.handleColumnStore)
			r.Put("/edit/{id}", s.handleColumnEdit)
			r.Delete("/delete/{id}", s.handleColumnDelete)
		})

		r.Route("/card", func(r chi.Router) {
			r.Post("/store", s.handleCardStore)
			r.Get("/get/{id}", s.handleCardGet)
			r.Put("/edit/{id}", s.handleCardEdit)
			r.Put("/move/{id}/{to}", s.handleCardMove)
			r.Delete("/delete/{id}", s.handleCardDelete)

			r.Route("/{id}/users", func(r chi.Router) {
				r.Get("/get", s.handleCardUserList)
				r.Post("/add/{userID}", s.handleCardUserAdd)
				r.Delete("/delete/{userID}", s.handleCardUserDelete)
			})
		})
	})
}

// handlePing is a liveness probe.
func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	response.Success(w, "pong", nil, s.logger)
}

// handleAuthenticated reports that the bearer token resolved to a user.
// Reaching it at all means requireAuth passed.
func (s *Server) handleAuthenticated(w http.ResponseWriter, r *http.Request) {
	response.Success(w, "Authenticated", nil, s.logger)
}
