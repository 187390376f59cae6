package domain

// Card is a titled text note living in exactly one column at a time.
// The column is reassignable via move. Users can subscribe themselves to a
// card; subscription carries no access level.
type Card struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Text     string `json:"text"`
	ColumnID int64  `json:"column_id"`
	Timestamps
}

// Subscriber is a user attached to a card via the card_users join.
type Subscriber struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
