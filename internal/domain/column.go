package domain

// Column is an ordered list of cards scoped to a single board.
// Deleting a column cascades to its cards.
type Column struct {
	ID      int64   `json:"id"`
	Title   string  `json:"title"`
	BoardID int64   `json:"board_id"`
	Cards   []*Card `json:"cards"`
	Timestamps
}
