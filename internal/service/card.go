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

// CardService manages cards and their subscribers.
type CardService struct {
	store     *store.Store
	gate      *Gate
	validator *validation.Validator
	logger    *slog.Logger
}

// NewCardService creates a new card service.
func NewCardService(store *store.Store, gate *Gate, validator *validation.Validator, logger *slog.Logger) *CardService {
	return &CardService{
		store:     store,
		gate:      gate,
		validator: validator,
		logger:    logger,
	}
}

// CreateCardRequest contains the new card's content and destination column.
type CreateCardRequest struct {
	Title    string `json:"title" validate:"required,max=255"`
	Text     string `json:"text" validate:"required,max=65535"`
	ColumnID int64  `json:"column_id" validate:"required"`
}

// UpdateCardRequest contains the replacement title and text.
type UpdateCardRequest struct {
	Title string `json:"title" validate:"required,max=255"`
	Text  string `json:"text" validate:"required,max=65535"`
}

// Create adds a card to a column. Requires card-edit access on the board
// the column belongs to.
func (s *CardService) Create(ctx context.Context, callerID int64, req CreateCardRequest) (*domain.Card, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	column, err := s.store.GetColumn(ctx, req.ColumnID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.NotFound("Column not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get column: %w", err)
	}

	if _, err := s.gate.Authorize(ctx, column.BoardID, callerID, domain.AccessEditCard); err != nil {
		return nil, err
	}

	card := &domain.Card{
		Title:    req.Title,
		Text:     req.Text,
		ColumnID: req.ColumnID,
	}
	card.InitTimestamps()

	if err := s.store.CreateCard(ctx, card); err != nil {
		return nil, fmt.Errorf("create card: %w", err)
	}
	return card, nil
}

// Get fetches a single card.
func (s *CardService) Get(ctx context.Context, cardID int64) (*domain.Card, error) {
	card, err := s.store.GetCard(ctx, cardID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.NotFound("Card not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get card: %w", err)
	}
	return card, nil
}

// Update replaces a card's title and text. Requires card-edit access.
func (s *CardService) Update(ctx context.Context, cardID, callerID int64, req UpdateCardRequest) (*domain.Card, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	card, boardID, err := s.resolveCard(ctx, cardID)
	if err != nil {
		return nil, err
	}

	if _, err := s.gate.Authorize(ctx, boardID, callerID, domain.AccessEditCard); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.store.UpdateCard(ctx, cardID, req.Title, req.Text, now); err != nil {
		return nil, fmt.Errorf("update card: %w", err)
	}

	card.Title = req.Title
	card.Text = req.Text
	card.UpdatedAt = now
	return card, nil
}

// Move reassigns a card to another column. Requires card-move access
// checked against the board the card currently sits on. The destination is
// resolved before the card, so a bad destination reads as a column error
// rather than a card error.
func (s *CardService) Move(ctx context.Context, cardID, destColumnID, callerID int64) (*domain.Card, error) {
	if _, err := s.store.GetColumn(ctx, destColumnID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("Column not found")
		}
		return nil, fmt.Errorf("get destination column: %w", err)
	}

	card, boardID, err := s.resolveCard(ctx, cardID)
	if err != nil {
		return nil, err
	}

	if _, err := s.gate.Authorize(ctx, boardID, callerID, domain.AccessMoveCard); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.store.MoveCard(ctx, cardID, destColumnID, now); err != nil {
		return nil, fmt.Errorf("move card: %w", err)
	}

	card.ColumnID = destColumnID
	card.UpdatedAt = now
	return card, nil
}

// Delete removes a card. Requires card-move access.
func (s *CardService) Delete(ctx context.Context, cardID, callerID int64) error {
	_, boardID, err := s.resolveCard(ctx, cardID)
	if err != nil {
		return err
	}

	if _, err := s.gate.Authorize(ctx, boardID, callerID, domain.AccessMoveCard); err != nil {
		return err
	}

	if err := s.store.DeleteCard(ctx, cardID, time.Now().UTC()); err != nil {
		return fmt.Errorf("delete card: %w", err)
	}
	return nil
}

// ListSubscribers returns the users attached to a card. Requires read
// access on the card's board.
func (s *CardService) ListSubscribers(ctx context.Context, cardID, callerID int64) ([]*domain.Subscriber, error) {
	_, boardID, err := s.resolveCard(ctx, cardID)
	if err != nil {
		return nil, err
	}

	if _, err := s.gate.Authorize(ctx, boardID, callerID, domain.AccessRead); err != nil {
		return nil, err
	}

	subs, err := s.store.ListSubscribers(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}
	return subs, nil
}

// Subscribe attaches a user to a card. The card must exist; beyond that no
// board access check runs, but callers may only subscribe themselves.
func (s *CardService) Subscribe(ctx context.Context, cardID, callerID, targetID int64) error {
	if _, _, err := s.resolveCard(ctx, cardID); err != nil {
		return err
	}

	if targetID != callerID {
		return domainerrors.Forbidden("You can only subscribe yourself")
	}

	err := s.store.AddSubscriber(ctx, cardID, callerID, time.Now().UTC())
	if errors.Is(err, store.ErrAlreadyExists) {
		return domainerrors.Conflict("You are already subscribed to that card")
	}
	if err != nil {
		return fmt.Errorf("add subscriber: %w", err)
	}
	return nil
}

// Unsubscribe detaches a user from a card. Callers may only unsubscribe
// themselves; detaching when not subscribed is a no-op.
func (s *CardService) Unsubscribe(ctx context.Context, cardID, callerID, targetID int64) error {
	if _, _, err := s.resolveCard(ctx, cardID); err != nil {
		return err
	}

	if targetID != callerID {
		return domainerrors.Forbidden("You can only unsubscribe yourself")
	}

	if err := s.store.RemoveSubscriber(ctx, cardID, callerID); err != nil {
		return fmt.Errorf("remove subscriber: %w", err)
	}
	return nil
}

// resolveCard fetches a card and the board it belongs to through its
// column. Runs before access checks so a missing card reads as not-found.
func (s *CardService) resolveCard(ctx context.Context, cardID int64) (*domain.Card, int64, error) {
	card, err := s.store.GetCard(ctx, cardID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, 0, domainerrors.NotFound("Card not found")
	}
	if err != nil {
		return nil, 0, fmt.Errorf("get card: %w", err)
	}

	boardID, err := s.store.BoardIDForCard(ctx, cardID)
	if err != nil {
		return nil, 0, fmt.Errorf("resolve board for card: %w", err)
	}
	return card, boardID, nil
}
