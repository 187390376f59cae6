package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/StrangePerch/laravel-trello-server/internal/domain"
	domainerrors "github.com/StrangePerch/laravel-trello-server/internal/errors"
	"github.com/StrangePerch/laravel-trello-server/internal/store"
	"github.com/StrangePerch/laravel-trello-server/internal/validation"
)

// BoardService manages boards and their memberships.
type BoardService struct {
	store     *store.Store
	gate      *Gate
	validator *validation.Validator
	logger    *slog.Logger
}

// NewBoardService creates a new board service.
func NewBoardService(store *store.Store, gate *Gate, validator *validation.Validator, logger *slog.Logger) *BoardService {
	return &BoardService{
		store:     store,
		gate:      gate,
		validator: validator,
		logger:    logger,
	}
}

// CreateBoardRequest contains the new board's title.
type CreateBoardRequest struct {
	Title string `json:"title" validate:"required,max=255"`
}

// UpdateBoardRequest contains the replacement title.
type UpdateBoardRequest struct {
	Title string `json:"title" validate:"required,max=255"`
}

// AddMemberRequest identifies the user to add by name or email and the
// access level to grant.
type AddMemberRequest struct {
	Username    string `json:"username" validate:"required"`
	AccessLevel int    `json:"access_level" validate:"required,gte=1,lte=5"`
}

// UpdateAccessRequest carries the replacement access level for a member.
type UpdateAccessRequest struct {
	AccessLevel int `json:"access_level" validate:"required,gte=1,lte=5"`
}

// Create makes a new board with the caller as its owner.
func (s *BoardService) Create(ctx context.Context, ownerID int64, req CreateBoardRequest) (*domain.Board, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	board := &domain.Board{Title: req.Title, Columns: []*domain.Column{}}
	board.InitTimestamps()

	if err := s.store.CreateBoardWithOwner(ctx, board, ownerID); err != nil {
		return nil, fmt.Errorf("create board: %w", err)
	}

	s.logger.Info("Board created", "board_id", board.ID, "owner_id", ownerID)
	return board, nil
}

// List returns every board the user belongs to, with columns and cards
// nested.
func (s *BoardService) List(ctx context.Context, userID int64) ([]*domain.Board, error) {
	boards, err := s.store.ListBoardsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}
	return boards, nil
}

// LastUpdated returns the most recent change time across the user's boards.
// Clients poll it to decide whether to refetch.
func (s *BoardService) LastUpdated(ctx context.Context, userID int64) (time.Time, error) {
	latest, err := s.store.LastUpdatedForUser(ctx, userID)
	if err != nil {
		return time.Time{}, fmt.Errorf("last updated: %w", err)
	}
	return latest, nil
}

// Update renames a board. Requires structural access.
func (s *BoardService) Update(ctx context.Context, boardID, callerID int64, req UpdateBoardRequest) (*domain.Board, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	board, err := s.gate.Authorize(ctx, boardID, callerID, domain.AccessEditStructure)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.store.UpdateBoardTitle(ctx, boardID, req.Title, now); err != nil {
		return nil, fmt.Errorf("update board: %w", err)
	}

	board.Title = req.Title
	board.UpdatedAt = now
	return board, nil
}

// Delete removes a board and everything under it. Owner only.
func (s *BoardService) Delete(ctx context.Context, boardID, callerID int64) error {
	if _, err := s.gate.Authorize(ctx, boardID, callerID, domain.AccessOwner); err != nil {
		return err
	}

	if err := s.store.DeleteBoard(ctx, boardID); err != nil {
		return fmt.Errorf("delete board: %w", err)
	}

	s.logger.Info("Board deleted", "board_id", boardID, "user_id", callerID)
	return nil
}

// AddMember grants a user access to a board. The target is found by name or
// email. Owner only.
func (s *BoardService) AddMember(ctx context.Context, boardID, callerID int64, req AddMemberRequest) (*domain.Member, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.gate.Authorize(ctx, boardID, callerID, domain.AccessOwner); err != nil {
		return nil, err
	}

	target, err := s.store.GetUserByNameOrEmail(ctx, req.Username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.NotFound("User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	err = s.store.AddMembership(ctx, boardID, target.ID, req.AccessLevel, time.Now().UTC())
	if errors.Is(err, store.ErrAlreadyExists) {
		return nil, domainerrors.Conflict("User is already a member of that board")
	}
	if err != nil {
		return nil, fmt.Errorf("add membership: %w", err)
	}

	return &domain.Member{
		ID:          target.ID,
		Name:        target.Name,
		Email:       target.Email,
		AccessLevel: req.AccessLevel,
	}, nil
}

// UpdateMemberAccess changes a member's access level by detaching and
// re-attaching the membership. Owner only.
func (s *BoardService) UpdateMemberAccess(ctx context.Context, boardID, callerID, targetID int64, req UpdateAccessRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	if _, err := s.gate.Authorize(ctx, boardID, callerID, domain.AccessOwner); err != nil {
		return err
	}

	err := s.store.RemoveMembership(ctx, boardID, targetID)
	if errors.Is(err, store.ErrNotFound) {
		return domainerrors.NotFound("User is not a member of that board")
	}
	if err != nil {
		return fmt.Errorf("remove membership: %w", err)
	}

	if err := s.store.AddMembership(ctx, boardID, targetID, req.AccessLevel, time.Now().UTC()); err != nil {
		return fmt.Errorf("re-add membership: %w", err)
	}
	return nil
}

// RemoveMember revokes a user's access to a board. Owner only.
// Owners can remove themselves; the board may end up ownerless.
func (s *BoardService) RemoveMember(ctx context.Context, boardID, callerID, targetID int64) error {
	if _, err := s.gate.Authorize(ctx, boardID, callerID, domain.AccessOwner); err != nil {
		return err
	}

	err := s.store.RemoveMembership(ctx, boardID, targetID)
	if errors.Is(err, store.ErrNotFound) {
		return domainerrors.NotFound("User is not a member of that board")
	}
	if err != nil {
		return fmt.Errorf("remove membership: %w", err)
	}
	return nil
}

// ListMembers returns the members of a board with their access levels.
func (s *BoardService) ListMembers(ctx context.Context, boardID, callerID int64) ([]*domain.Member, error) {
	board, err := s.gate.Authorize(ctx, boardID, callerID, domain.AccessRead)
	if err != nil {
		return nil, err
	}
	return board.Members, nil
}

// AccessLevel returns the caller's own access level on a board. Unlike the
// gate, a non-member gets the membership error even for level lookups.
func (s *BoardService) AccessLevel(ctx context.Context, boardID, callerID int64) (int, error) {
	if _, err := s.store.GetBoard(ctx, boardID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return 0, domainerrors.NotFound("Board not found")
		}
		return 0, fmt.Errorf("get board: %w", err)
	}

	m, err := s.store.GetMembership(ctx, boardID, callerID)
	if errors.Is(err, store.ErrNotFound) {
		return 0, domainerrors.Forbidden("You are not a member of that board")
	}
	if err != nil {
		return 0, fmt.Errorf("get membership: %w", err)
	}
	return m.AccessLevel, nil
}
