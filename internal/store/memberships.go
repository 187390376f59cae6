package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/StrangePerch/laravel-trello-server/internal/domain"
)

// GetMembership retrieves a user's membership on a board.
// Returns ErrNotFound if the user is not a member.
func (s *Store) GetMembership(ctx context.Context, boardID, userID int64) (*domain.Membership, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT board_id, user_id, access_level, created_at, updated_at
		FROM board_users WHERE board_id = ? AND user_id = ?`, boardID, userID)

	var m domain.Membership
	var createdAt, updatedAt string

	err := row.Scan(&m.BoardID, &m.UserID, &m.AccessLevel, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	m.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	m.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &m, nil
}

// AddMembership grants a user access to a board.
// Returns ErrAlreadyExists if the user is already a member.
func (s *Store) AddMembership(ctx context.Context, boardID, userID int64, accessLevel int, now time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO board_users (board_id, user_id, access_level, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		boardID, userID, accessLevel, formatTime(now), formatTime(now))
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return ErrAlreadyExists
	}
	return err
}

// RemoveMembership revokes a user's access to a board.
// Returns ErrNotFound if the user was not a member.
func (s *Store) RemoveMembership(ctx context.Context, boardID, userID int64) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM board_users WHERE board_id = ? AND user_id = ?`, boardID, userID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// ListMembers returns the members of a board with their access levels,
// ordered by user ID.
func (s *Store) ListMembers(ctx context.Context, boardID int64) ([]*domain.Member, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT u.id, u.name, u.email, bu.access_level
		FROM board_users bu
		JOIN users u ON u.id = bu.user_id
		WHERE bu.board_id = ?
		ORDER BY u.id`, boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := []*domain.Member{}
	for rows.Next() {
		var m domain.Member
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.AccessLevel); err != nil {
			return nil, err
		}
		members = append(members, &m)
	}
	return members, rows.Err()
}
