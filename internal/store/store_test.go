package store

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/StrangePerch/laravel-trello-server/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen(t *testing.T) {
	s := newTestStore(t)

	// Verify WAL mode is set.
	var journalMode string
	err := s.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode)
	if err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("expected wal, got %s", journalMode)
	}

	// Verify foreign keys are enabled.
	var fk int
	err = s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk)
	if err != nil {
		t.Fatalf("query foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Errorf("expected foreign_keys=1, got %d", fk)
	}

	// Verify tables exist.
	tables := []string{
		"users", "sessions", "boards", "board_users", "columns", "cards", "card_users",
	}
	for _, table := range tables {
		var name string
		err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}
}

func TestTimeRoundTrip(t *testing.T) {
	now := time.Now().UTC()
	parsed, err := parseTime(formatTime(now))
	if err != nil {
		t.Fatalf("parseTime: %v", err)
	}
	if !parsed.Equal(now) {
		t.Errorf("round trip mismatch: got %v, want %v", parsed, now)
	}
}

// newTestUser inserts a user and returns it with the assigned ID.
func newTestUser(t *testing.T, s *Store, name, email string) *domain.User {
	t.Helper()
	u := &domain.User{Name: name, Email: email, PasswordHash: "x"}
	u.InitTimestamps()
	if err := s.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u
}

// newTestBoard inserts a board owned by the given user.
func newTestBoard(t *testing.T, s *Store, title string, ownerID int64) *domain.Board {
	t.Helper()
	b := &domain.Board{Title: title}
	b.InitTimestamps()
	if err := s.CreateBoardWithOwner(context.Background(), b, ownerID); err != nil {
		t.Fatalf("create board %s: %v", title, err)
	}
	return b
}

// newTestColumn inserts a column on the given board.
func newTestColumn(t *testing.T, s *Store, title string, boardID int64) *domain.Column {
	t.Helper()
	c := &domain.Column{Title: title, BoardID: boardID}
	c.InitTimestamps()
	if err := s.CreateColumn(context.Background(), c); err != nil {
		t.Fatalf("create column %s: %v", title, err)
	}
	return c
}

// newTestCard inserts a card into the given column.
func newTestCard(t *testing.T, s *Store, title string, columnID int64) *domain.Card {
	t.Helper()
	c := &domain.Card{Title: title, Text: "text for " + title, ColumnID: columnID}
	c.InitTimestamps()
	if err := s.CreateCard(context.Background(), c); err != nil {
		t.Fatalf("create card %s: %v", title, err)
	}
	return c
}
