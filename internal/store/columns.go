package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/StrangePerch/laravel-trello-server/internal/domain"
)

const columnColumns = `id, title, board_id, created_at, updated_at`

func scanColumn(scanner interface{ Scan(dest ...any) error }) (*domain.Column, error) {
	var c domain.Column
	var createdAt, updatedAt string

	err := scanner.Scan(&c.ID, &c.Title, &c.BoardID, &createdAt, &updatedAt)
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

// CreateColumn inserts a column and bumps the owning board's updated
// timestamp in one transaction.
func (s *Store) CreateColumn(ctx context.Context, column *domain.Column) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO columns (title, board_id, created_at, updated_at)
		VALUES (?, ?, ?, ?)`,
		column.Title,
		column.BoardID,
		formatTime(column.CreatedAt),
		formatTime(column.UpdatedAt),
	)
	if err != nil {
		return err
	}

	column.ID, err = res.LastInsertId()
	if err != nil {
		return err
	}

	if err := touchBoardTx(ctx, tx, column.BoardID, column.UpdatedAt); err != nil {
		return err
	}

	return tx.Commit()
}

// GetColumn retrieves a column by ID.
// Returns ErrNotFound if the column does not exist.
func (s *Store) GetColumn(ctx context.Context, id int64) (*domain.Column, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+columnColumns+` FROM columns WHERE id = ?`, id)

	c, err := scanColumn(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateColumnTitle renames a column and propagates the touch to its board.
// Returns ErrNotFound if the column does not exist.
func (s *Store) UpdateColumnTitle(ctx context.Context, id int64, title string, now time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE columns SET title = ?, updated_at = ? WHERE id = ?`,
		title, formatTime(now), id)
	if err != nil {
		return err
	}
	if err := requireAffected(res); err != nil {
		return err
	}

	if err := touchBoardOfColumnTx(ctx, tx, id, now); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteColumn removes a column and its cards, propagating the touch to the
// owning board. Returns ErrNotFound if the column does not exist.
func (s *Store) DeleteColumn(ctx context.Context, id int64, now time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := touchBoardOfColumnTx(ctx, tx, id, now); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM columns WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if err := requireAffected(res); err != nil {
		return err
	}

	return tx.Commit()
}

// touchBoardTx bumps a board's updated timestamp inside a transaction.
func touchBoardTx(ctx context.Context, tx *sql.Tx, boardID int64, now time.Time) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE boards SET updated_at = ? WHERE id = ?`,
		formatTime(now), boardID)
	return err
}

// touchBoardOfColumnTx bumps the board owning the given column.
func touchBoardOfColumnTx(ctx context.Context, tx *sql.Tx, columnID int64, now time.Time) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE boards SET updated_at = ?
		WHERE id = (SELECT board_id FROM columns WHERE id = ?)`,
		formatTime(now), columnID)
	return err
}
