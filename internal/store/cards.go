package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/StrangePerch/laravel-trello-server/internal/domain"
)

const cardColumns = `id, title, text, column_id, created_at, updated_at`

func scanCard(scanner interface{ Scan(dest ...any) error }) (*domain.Card, error) {
	var c domain.Card
	var createdAt, updatedAt string

	err := scanner.Scan(&c.ID, &c.Title, &c.Text, &c.ColumnID, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	c.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	c.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &c, nil
}

// CreateCard inserts a card and propagates the touch through its column to
// the owning board.
func (s *Store) CreateCard(ctx context.Context, card *domain.Card) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO cards (title, text, column_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		card.Title,
		card.Text,
		card.ColumnID,
		formatTime(card.CreatedAt),
		formatTime(card.UpdatedAt),
	)
	if err != nil {
		return err
	}

	card.ID, err = res.LastInsertId()
	if err != nil {
		return err
	}

	if err := touchColumnAndBoardTx(ctx, tx, card.ColumnID, card.UpdatedAt); err != nil {
		return err
	}

	return tx.Commit()
}

// GetCard retrieves a card by ID.
// Returns ErrNotFound if the card does not exist.
func (s *Store) GetCard(ctx context.Context, id int64) (*domain.Card, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE id = ?`, id)

	c, err := scanCard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateCard sets a card's title and text, propagating the touch to its
// column and board. Returns ErrNotFound if the card does not exist.
func (s *Store) UpdateCard(ctx context.Context, id int64, title, text string, now time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE cards SET title = ?, text = ?, updated_at = ? WHERE id = ?`,
		title, text, formatTime(now), id)
	if err != nil {
		return err
	}
	if err := requireAffected(res); err != nil {
		return err
	}

	if err := touchColumnAndBoardOfCardTx(ctx, tx, id, now); err != nil {
		return err
	}

	return tx.Commit()
}

// MoveCard reassigns a card to another column, which may belong to a
// different board. The touch propagates through the card's previous column
// chain only; the destination chain is left untouched.
// Returns ErrNotFound if the card does not exist.
func (s *Store) MoveCard(ctx context.Context, id, toColumnID int64, now time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := touchColumnAndBoardOfCardTx(ctx, tx, id, now); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE cards SET column_id = ?, updated_at = ? WHERE id = ?`,
		toColumnID, formatTime(now), id)
	if err != nil {
		return err
	}
	if err := requireAffected(res); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteCard removes a card, propagating the touch to its column and board.
// Returns ErrNotFound if the card does not exist.
func (s *Store) DeleteCard(ctx context.Context, id int64, now time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := touchColumnAndBoardOfCardTx(ctx, tx, id, now); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM cards WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if err := requireAffected(res); err != nil {
		return err
	}

	return tx.Commit()
}

// BoardIDForCard resolves the board a card belongs to through its column.
// Returns ErrNotFound if the card does not exist.
func (s *Store) BoardIDForCard(ctx context.Context, cardID int64) (int64, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT col.board_id
		FROM cards c
		JOIN columns col ON col.id = c.column_id
		WHERE c.id = ?`, cardID)

	var boardID int64
	err := row.Scan(&boardID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return boardID, nil
}

// touchColumnAndBoardTx bumps a column and its board inside a transaction.
func touchColumnAndBoardTx(ctx context.Context, tx *sql.Tx, columnID int64, now time.Time) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE columns SET updated_at = ? WHERE id = ?`,
		formatTime(now), columnID)
	if err != nil {
		return err
	}
	return touchBoardOfColumnTx(ctx, tx, columnID, now)
}

// touchColumnAndBoardOfCardTx bumps the column and board that currently own
// the given card.
func touchColumnAndBoardOfCardTx(ctx context.Context, tx *sql.Tx, cardID int64, now time.Time) error {
	row := tx.QueryRowContext(ctx, `SELECT column_id FROM cards WHERE id = ?`, cardID)

	var columnID int64
	err := row.Scan(&columnID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return touchColumnAndBoardTx(ctx, tx, columnID, now)
}
