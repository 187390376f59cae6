// Package domain defines the core entities of the board API: users, boards,
// columns, cards, and the join records binding them.
package domain

import "time"

// Timestamps provides the created_at/updated_at pair carried by every entity.
// UpdatedAt doubles as the change-polling signal: mutating a card or column
// also touches the owning board, so clients can poll a single board timestamp.
type Timestamps struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InitTimestamps sets both CreatedAt and UpdatedAt to now.
// Call this when creating a new entity.
func (t *Timestamps) InitTimestamps() {
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now
}
