package store

import (
	"context"
	"strings"
	"time"

	"github.com/StrangePerch/laravel-trello-server/internal/domain"
)

// AddSubscriber attaches a user to a card.
// Returns ErrAlreadyExists if the user is already subscribed.
func (s *Store) AddSubscriber(ctx context.Context, cardID, userID int64, now time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO card_users (card_id, user_id, created_at)
		VALUES (?, ?, ?)`,
		cardID, userID, formatTime(now))
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return ErrAlreadyExists
	}
	return err
}

// RemoveSubscriber detaches a user from a card. Removing a user who is not
// subscribed is a no-op.
func (s *Store) RemoveSubscriber(ctx context.Context, cardID, userID int64) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM card_users WHERE card_id = ? AND user_id = ?`, cardID, userID)
	return err
}

// ListSubscribers returns the users attached to a card, ordered by user ID.
func (s *Store) ListSubscribers(ctx context.Context, cardID int64) ([]*domain.Subscriber, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT u.id, u.name, u.email
		FROM card_users cu
		JOIN users u ON u.id = cu.user_id
		WHERE cu.card_id = ?
		ORDER BY u.id`, cardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subscribers := []*domain.Subscriber{}
	for rows.Next() {
		var sub domain.Subscriber
		if err := rows.Scan(&sub.ID, &sub.Name, &sub.Email); err != nil {
			return nil, err
		}
		subscribers = append(subscribers, &sub)
	}
	return subscribers, rows.Err()
}
