package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/StrangePerch/laravel-trello-server/internal/domain"
	domainerrors "github.com/StrangePerch/laravel-trello-server/internal/errors"
	"github.com/StrangePerch/laravel-trello-server/internal/store"
)

// Gate checks a caller's access to a board. Every board-scoped operation
// runs through it before touching data.
type Gate struct {
	store *store.Store
}

// NewGate creates a new access gate.
func NewGate(store *store.Store) *Gate {
	return &Gate{store: store}
}

// Authorize verifies that the board exists, the caller is a member, and the
// caller's access level meets the requirement. Checks run in that order, so
// a missing board reads as not-found even to non-members, while an existing
// board reads as a membership failure before an access-level failure.
// On success the board is returned with its member list loaded.
func (g *Gate) Authorize(ctx context.Context, boardID, userID int64, requiredLevel int) (*domain.Board, error) {
	board, err := g.store.GetBoard(ctx, boardID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.NotFound("Board not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get board: %w", err)
	}

	members, err := g.store.ListMembers(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	board.Members = members

	member := board.Member(userID)
	if member == nil {
		return nil, domainerrors.Forbidden("You are not a member of that board")
	}
	if !member.Allows(requiredLevel) {
		return nil, domainerrors.Forbidden("Not enough access")
	}

	return board, nil
}
