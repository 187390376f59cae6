package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/StrangePerch/laravel-trello-server/internal/auth"
	"github.com/StrangePerch/laravel-trello-server/internal/domain"
	domainerrors "github.com/StrangePerch/laravel-trello-server/internal/errors"
	"github.com/StrangePerch/laravel-trello-server/internal/id"
	"github.com/StrangePerch/laravel-trello-server/internal/store"
	"github.com/StrangePerch/laravel-trello-server/internal/validation"
)

// AuthService handles registration, login, and token verification.
type AuthService struct {
	store        *store.Store
	tokenService *auth.TokenService
	validator    *validation.Validator
	logger       *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	store *store.Store,
	tokenService *auth.TokenService,
	validator *validation.Validator,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		store:        store,
		tokenService: tokenService,
		validator:    validator,
		logger:       logger,
	}
}

// RegisterRequest contains user registration data. The account name travels
// as "username" on the wire but is stored as the user's name.
type RegisterRequest struct {
	Name                 string `json:"username" validate:"required,max=255"`
	Email                string `json:"email" validate:"required,email"`
	Password             string `json:"password" validate:"required,min=8,max=1024"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required"`
}

// LoginRequest contains user credentials. Username accepts either the
// account name or the email.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse contains the authenticated user and a bearer token.
type AuthResponse struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

// Register creates a new user account and logs it in.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if req.Password != req.PasswordConfirmation {
		return nil, domainerrors.ValidationWithDetails("Wrong input", map[string]string{
			"password_confirmation": "must match password",
		})
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: passwordHash,
	}
	user.InitTimestamps()

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.ValidationWithDetails("Wrong input", map[string]string{
				"email": "is already registered",
			})
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.issueToken(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User registered", "user_id", user.ID, "email", user.Email)
	user.PasswordHash = ""
	return &AuthResponse{User: user, Token: token}, nil
}

// Login verifies credentials and issues a bearer token.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByNameOrEmail(ctx, req.Username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.InvalidCredentials("Bad credentials")
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	ok, err := auth.VerifyPassword(user.PasswordHash, req.Password)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, domainerrors.InvalidCredentials("Bad credentials")
	}

	token, err := s.issueToken(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User logged in", "user_id", user.ID)
	user.PasswordHash = ""
	return &AuthResponse{User: user, Token: token}, nil
}

// Logout deletes every session the user has, revoking all issued tokens.
func (s *AuthService) Logout(ctx context.Context, userID int64) error {
	if err := s.store.DeleteSessionsForUser(ctx, userID); err != nil {
		return fmt.Errorf("delete sessions: %w", err)
	}
	s.logger.Info("User logged out", "user_id", userID)
	return nil
}

// VerifyToken validates a bearer token and resolves it to a live user.
// The embedded session must still exist: logout invalidates outstanding
// tokens even before they expire.
func (s *AuthService) VerifyToken(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.tokenService.VerifyAccessToken(token)
	if err != nil {
		return nil, domainerrors.Unauthenticated("Unauthenticated")
	}

	session, err := s.store.GetSession(ctx, claims.SessionID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.Unauthenticated("Unauthenticated")
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if session.Expired() || session.UserID != claims.UserID {
		return nil, domainerrors.Unauthenticated("Unauthenticated")
	}

	user, err := s.store.GetUser(ctx, claims.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.Unauthenticated("Unauthenticated")
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// issueToken creates a session row and a PASETO token bound to it.
func (s *AuthService) issueToken(ctx context.Context, user *domain.User) (string, error) {
	sessionID, err := id.Generate("sess")
	if err != nil {
		return "", fmt.Errorf("generate session ID: %w", err)
	}

	now := time.Now().UTC()
	session := &domain.Session{
		ID:        sessionID,
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.tokenService.AccessTokenDuration()),
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}

	token, err := s.tokenService.GenerateAccessToken(user, sessionID)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return token, nil
}
