package domain

// Access levels on a board membership. Higher levels grant a superset of the
// privileges of lower ones.
const (
	// AccessRead allows listing the board and its members.
	AccessRead = 1
	// AccessMoveCard allows moving and deleting cards.
	AccessMoveCard = 2
	// AccessEditCard allows creating and editing cards, and renaming columns.
	AccessEditCard = 3
	// AccessEditStructure allows creating and deleting columns, and renaming the board.
	AccessEditStructure = 4
	// AccessOwner allows deleting the board and managing its members.
	AccessOwner = 5
)

// MinAccessLevel and MaxAccessLevel bound valid membership levels.
const (
	MinAccessLevel = AccessRead
	MaxAccessLevel = AccessOwner
)

// Board is the top of the resource hierarchy. It owns columns (which own
// cards) and has members via Membership rows.
type Board struct {
	ID      int64     `json:"id"`
	Title   string    `json:"title"`
	Columns []*Column `json:"columns"`
	Members []*Member `json:"-"`
	Timestamps
}

// Member returns the board member with the given user ID, or nil.
// Members must have been loaded.
func (b *Board) Member(userID int64) *Member {
	for _, m := range b.Members {
		if m.ID == userID {
			return m
		}
	}
	return nil
}

// Member is a user's view within a board: identity plus their access level
// from the membership join row.
type Member struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	AccessLevel int    `json:"access_level"`
}

// Allows reports whether this member's level satisfies the requirement.
func (m *Member) Allows(requiredLevel int) bool {
	return m.AccessLevel >= requiredLevel
}

// Membership is the board-user join row gating every privileged operation.
// Unique per (board, user); changing a level detaches and re-attaches.
type Membership struct {
	BoardID     int64 `json:"board_id"`
	UserID      int64 `json:"user_id"`
	AccessLevel int   `json:"access_level"`
	Timestamps
}
