package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/StrangePerch/laravel-trello-server/internal/domain"
)

const boardColumns = `id, title, created_at, updated_at`

func scanBoard(scanner interface{ Scan(dest ...any) error }) (*domain.Board, error) {
	var b domain.Board
	var createdAt, updatedAt string

	err := scanner.Scan(&b.ID, &b.Title, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	b.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	b.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &b, nil
}

// CreateBoardWithOwner inserts a board and grants the creator owner access
// in a single transaction.
func (s *Store) CreateBoardWithOwner(ctx context.Context, board *domain.Board, ownerID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO boards (title, created_at, updated_at)
		VALUES (?, ?, ?)`,
		board.Title,
		formatTime(board.CreatedAt),
		formatTime(board.UpdatedAt),
	)
	if err != nil {
		return err
	}

	board.ID, err = res.LastInsertId()
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO board_users (board_id, user_id, access_level, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		board.ID,
		ownerID,
		domain.AccessOwner,
		formatTime(board.CreatedAt),
		formatTime(board.CreatedAt),
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// GetBoard retrieves a board by ID without its columns.
// Returns ErrNotFound if the board does not exist.
func (s *Store) GetBoard(ctx context.Context, id int64) (*domain.Board, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+boardColumns+` FROM boards WHERE id = ?`, id)

	b, err := scanBoard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// ListBoardsForUser returns every board the user is a member of, each with
// its columns and cards loaded.
func (s *Store) ListBoardsForUser(ctx context.Context, userID int64) ([]*domain.Board, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT b.id, b.title, b.created_at, b.updated_at
		FROM boards b
		JOIN board_users bu ON bu.board_id = b.id
		WHERE bu.user_id = ?
		ORDER BY b.id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var boards []*domain.Board
	for rows.Next() {
		b, err := scanBoard(rows)
		if err != nil {
			return nil, err
		}
		boards = append(boards, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.loadBoardContents(ctx, boards); err != nil {
		return nil, err
	}

	return boards, nil
}

// loadBoardContents attaches columns and cards to the given boards.
func (s *Store) loadBoardContents(ctx context.Context, boards []*domain.Board) error {
	if len(boards) == 0 {
		return nil
	}

	byID := make(map[int64]*domain.Board, len(boards))
	ids := make([]any, 0, len(boards))
	for _, b := range boards {
		b.Columns = []*domain.Column{}
		byID[b.ID] = b
		ids = append(ids, b.ID)
	}
	marks := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, board_id, created_at, updated_at
		FROM columns WHERE board_id IN (`+marks+`) ORDER BY id`, ids...)
	if err != nil {
		return err
	}
	defer rows.Close()

	colsByID := make(map[int64]*domain.Column)
	for rows.Next() {
		c, err := scanColumn(rows)
		if err != nil {
			return err
		}
		c.Cards = []*domain.Card{}
		byID[c.BoardID].Columns = append(byID[c.BoardID].Columns, c)
		colsByID[c.ID] = c
	}
	if err := rows.Err(); err != nil {
		return err
	}

	cardRows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.title, c.text, c.column_id, c.created_at, c.updated_at
		FROM cards c
		JOIN columns col ON col.id = c.column_id
		WHERE col.board_id IN (`+marks+`) ORDER BY c.id`, ids...)
	if err != nil {
		return err
	}
	defer cardRows.Close()

	for cardRows.Next() {
		card, err := scanCard(cardRows)
		if err != nil {
			return err
		}
		c, ok := colsByID[card.ColumnID]
		if !ok {
			continue
		}
		c.Cards = append(c.Cards, card)
	}
	return cardRows.Err()
}

// UpdateBoardTitle sets a board's title and bumps its updated timestamp.
// Returns ErrNotFound if the board does not exist.
func (s *Store) UpdateBoardTitle(ctx context.Context, id int64, title string, now time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE boards SET title = ?, updated_at = ? WHERE id = ?`,
		title, formatTime(now), id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// TouchBoard bumps a board's updated timestamp. Changes to columns and
// cards propagate to the owning board so clients can poll for staleness.
func (s *Store) TouchBoard(ctx context.Context, id int64, now time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE boards SET updated_at = ? WHERE id = ?`,
		formatTime(now), id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// DeleteBoard removes a board. Columns, cards, memberships, and card
// subscriptions go with it via foreign key cascades.
// Returns ErrNotFound if the board does not exist.
func (s *Store) DeleteBoard(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM boards WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// LastUpdatedForUser returns the most recent updated timestamp across the
// boards the user belongs to, or the zero time when the user has none.
// Timestamps are stored as RFC 3339 strings with variable fraction lengths,
// so the max is computed here rather than with SQL MAX.
func (s *Store) LastUpdatedForUser(ctx context.Context, userID int64) (time.Time, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT b.updated_at
		FROM boards b
		JOIN board_users bu ON bu.board_id = b.id
		WHERE bu.user_id = ?`, userID)
	if err != nil {
		return time.Time{}, err
	}
	defer rows.Close()

	var latest time.Time
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return time.Time{}, err
		}
		t, err := parseTime(raw)
		if err != nil {
			return time.Time{}, err
		}
		if t.After(latest) {
			latest = t
		}
	}
	return latest, rows.Err()
}

// requireAffected converts a no-op write into ErrNotFound.
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
