package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/StrangePerch/laravel-trello-server/internal/domain"
)

func TestCreateBoardWithOwner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := newTestUser(t, s, "alice", "alice@example.com")
	b := newTestBoard(t, s, "Project", u.ID)

	if b.ID == 0 {
		t.Fatal("expected assigned ID")
	}

	m, err := s.GetMembership(ctx, b.ID, u.ID)
	if err != nil {
		t.Fatalf("GetMembership: %v", err)
	}
	if m.AccessLevel != domain.AccessOwner {
		t.Errorf("creator access level: got %d, want %d", m.AccessLevel, domain.AccessOwner)
	}
}

func TestListBoardsForUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := newTestUser(t, s, "alice", "alice@example.com")
	bob := newTestUser(t, s, "bob", "bob@example.com")

	b1 := newTestBoard(t, s, "Alice One", alice.ID)
	newTestBoard(t, s, "Bob Only", bob.ID)

	col := newTestColumn(t, s, "Todo", b1.ID)
	newTestCard(t, s, "Task", col.ID)

	boards, err := s.ListBoardsForUser(ctx, alice.ID)
	if err != nil {
		t.Fatalf("ListBoardsForUser: %v", err)
	}
	if len(boards) != 1 {
		t.Fatalf("expected 1 board, got %d", len(boards))
	}
	if boards[0].Title != "Alice One" {
		t.Errorf("got %q, want Alice One", boards[0].Title)
	}
	if len(boards[0].Columns) != 1 {
		t.Fatalf("expected 1 column, got %d", len(boards[0].Columns))
	}
	if len(boards[0].Columns[0].Cards) != 1 {
		t.Fatalf("expected 1 card, got %d", len(boards[0].Columns[0].Cards))
	}
	if boards[0].Columns[0].Cards[0].Title != "Task" {
		t.Errorf("card title: got %q, want Task", boards[0].Columns[0].Cards[0].Title)
	}
}

func TestListBoardsForUserEmpty(t *testing.T) {
	s := newTestStore(t)

	u := newTestUser(t, s, "alice", "alice@example.com")
	boards, err := s.ListBoardsForUser(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("ListBoardsForUser: %v", err)
	}
	if len(boards) != 0 {
		t.Errorf("expected no boards, got %d", len(boards))
	}
}

func TestUpdateBoardTitle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := newTestUser(t, s, "alice", "alice@example.com")
	b := newTestBoard(t, s, "Old", u.ID)

	if err := s.UpdateBoardTitle(ctx, b.ID, "New", time.Now().UTC()); err != nil {
		t.Fatalf("UpdateBoardTitle: %v", err)
	}

	got, err := s.GetBoard(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetBoard: %v", err)
	}
	if got.Title != "New" {
		t.Errorf("title: got %q, want New", got.Title)
	}

	err = s.UpdateBoardTitle(ctx, 9999, "x", time.Now().UTC())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteBoardCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := newTestUser(t, s, "alice", "alice@example.com")
	bob := newTestUser(t, s, "bob", "bob@example.com")

	b := newTestBoard(t, s, "Doomed", alice.ID)
	col := newTestColumn(t, s, "Todo", b.ID)
	card := newTestCard(t, s, "Task", col.ID)

	if err := s.AddMembership(ctx, b.ID, bob.ID, domain.AccessRead, time.Now().UTC()); err != nil {
		t.Fatalf("AddMembership: %v", err)
	}
	if err := s.AddSubscriber(ctx, card.ID, bob.ID, time.Now().UTC()); err != nil {
		t.Fatalf("AddSubscriber: %v", err)
	}

	if err := s.DeleteBoard(ctx, b.ID); err != nil {
		t.Fatalf("DeleteBoard: %v", err)
	}

	// Every dependent row must be gone.
	counts := map[string]string{
		"columns":     "SELECT COUNT(*) FROM columns",
		"cards":       "SELECT COUNT(*) FROM cards",
		"board_users": "SELECT COUNT(*) FROM board_users",
		"card_users":  "SELECT COUNT(*) FROM card_users",
	}
	for table, query := range counts {
		var n int
		if err := s.db.QueryRow(query).Scan(&n); err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if n != 0 {
			t.Errorf("%s: expected 0 rows after board delete, got %d", table, n)
		}
	}

	// Users survive.
	var users int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM users").Scan(&users); err != nil {
		t.Fatalf("count users: %v", err)
	}
	if users != 2 {
		t.Errorf("users: expected 2, got %d", users)
	}
}

func TestLastUpdatedForUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := newTestUser(t, s, "alice", "alice@example.com")

	latest, err := s.LastUpdatedForUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("LastUpdatedForUser: %v", err)
	}
	if !latest.IsZero() {
		t.Errorf("expected zero time with no boards, got %v", latest)
	}

	b1 := newTestBoard(t, s, "One", u.ID)
	b2 := newTestBoard(t, s, "Two", u.ID)

	// Bump board one well past board two.
	bump := time.Now().UTC().Add(time.Hour)
	if err := s.TouchBoard(ctx, b1.ID, bump); err != nil {
		t.Fatalf("TouchBoard: %v", err)
	}
	_ = b2

	latest, err = s.LastUpdatedForUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("LastUpdatedForUser: %v", err)
	}
	if !latest.Equal(bump) {
		t.Errorf("got %v, want %v", latest, bump)
	}
}

func TestMembershipRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := newTestUser(t, s, "alice", "alice@example.com")
	bob := newTestUser(t, s, "bob", "bob@example.com")
	b := newTestBoard(t, s, "Shared", alice.ID)

	now := time.Now().UTC()
	for level := domain.MinAccessLevel; level <= domain.MaxAccessLevel; level++ {
		if err := s.AddMembership(ctx, b.ID, bob.ID, level, now); err != nil {
			t.Fatalf("AddMembership(%d): %v", level, err)
		}
		m, err := s.GetMembership(ctx, b.ID, bob.ID)
		if err != nil {
			t.Fatalf("GetMembership: %v", err)
		}
		if m.AccessLevel != level {
			t.Errorf("access level: got %d, want %d", m.AccessLevel, level)
		}
		if err := s.RemoveMembership(ctx, b.ID, bob.ID); err != nil {
			t.Fatalf("RemoveMembership: %v", err)
		}
	}

	if err := s.AddMembership(ctx, b.ID, bob.ID, domain.AccessRead, now); err != nil {
		t.Fatalf("AddMembership: %v", err)
	}
	if err := s.AddMembership(ctx, b.ID, bob.ID, domain.AccessRead, now); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists on duplicate membership, got %v", err)
	}

	members, err := s.ListMembers(ctx, b.ID)
	if err != nil {
		t.Fatalf("ListMembers: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(members))
	}

	if err := s.RemoveMembership(ctx, b.ID, bob.ID); err != nil {
		t.Fatalf("RemoveMembership: %v", err)
	}
	_, err = s.GetMembership(ctx, b.ID, bob.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after removal, got %v", err)
	}

	err = s.RemoveMembership(ctx, b.ID, bob.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on double removal, got %v", err)
	}
}
