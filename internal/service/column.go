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

// ColumnService manages the columns of a board.
type ColumnService struct {
	store     *store.Store
	gate      *Gate
	validator *validation.Validator
	logger    *slog.Logger
}

// NewColumnService creates a new column service.
func NewColumnService(store *store.Store, gate *Gate, validator *validation.Validator, logger *slog.Logger) *ColumnService {
	return &ColumnService{
		store:     store,
		gate:      gate,
		validator: validator,
		logger:    logger,
	}
}

// CreateColumnRequest contains the new column's title and owning board.
type CreateColumnRequest struct {
	Title   string `json:"title" validate:"required,max=255"`
	BoardID int64  `json:"board_id" validate:"required"`
}

// UpdateColumnRequest contains the replacement title.
type UpdateColumnRequest struct {
	Title string `json:"title" validate:"required,max=255"`
}

// Create adds a column to a board. Requires structural access.
func (s *ColumnService) Create(ctx context.Context, callerID int64, req CreateColumnRequest) (*domain.Column, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.gate.Authorize(ctx, req.BoardID, callerID, domain.AccessEditStructure); err != nil {
		return nil, err
	}

	column := &domain.Column{
		Title:   req.Title,
		BoardID: req.BoardID,
		Cards:   []*domain.Card{},
	}
	column.InitTimestamps()

	if err := s.store.CreateColumn(ctx, column); err != nil {
		return nil, fmt.Errorf("create column: %w", err)
	}
	return column, nil
}

// Update renames a column. Requires card-edit access on the owning board.
func (s *ColumnService) Update(ctx context.Context, columnID, callerID int64, req UpdateColumnRequest) (*domain.Column, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	column, err := s.getColumn(ctx, columnID)
	if err != nil {
		return nil, err
	}

	if _, err := s.gate.Authorize(ctx, column.BoardID, callerID, domain.AccessEditCard); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.store.UpdateColumnTitle(ctx, columnID, req.Title, now); err != nil {
		return nil, fmt.Errorf("update column: %w", err)
	}

	column.Title = req.Title
	column.UpdatedAt = now
	return column, nil
}

// Delete removes a column and its cards. Requires structural access on the
// owning board.
func (s *ColumnService) Delete(ctx context.Context, columnID, callerID int64) error {
	column, err := s.getColumn(ctx, columnID)
	if err != nil {
		return err
	}

	if _, err := s.gate.Authorize(ctx, column.BoardID, callerID, domain.AccessEditStructure); err != nil {
		return err
	}

	if err := s.store.DeleteColumn(ctx, columnID, time.Now().UTC()); err != nil {
		return fmt.Errorf("delete column: %w", err)
	}

	s.logger.Info("Column deleted", "column_id", columnID, "board_id", column.BoardID, "user_id", callerID)
	return nil
}

// getColumn resolves a column before any access check, so a missing column
// reads as not-found rather than a membership failure.
func (s *ColumnService) getColumn(ctx context.Context, columnID int64) (*domain.Column, error) {
	column, err := s.store.GetColumn(ctx, columnID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.NotFound("Column not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get column: %w", err)
	}
	return column, nil
}
