package service

import (
	"context"
	"encoding/hex"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/StrangePerch/laravel-trello-server/internal/auth"
	"github.com/StrangePerch/laravel-trello-server/internal/domain"
	"github.com/StrangePerch/laravel-trello-server/internal/store"
	"github.com/StrangePerch/laravel-trello-server/internal/validation"
)

// testServices bundles the full service layer over a temporary store.
type testServices struct {
	store  *store.Store
	auth   *AuthService
	boards *BoardService
	cols   *ColumnService
	cards  *CardService
	gate   *Gate
}

func setupServices(t *testing.T) *testServices {
	t.Helper()

	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s, err := store.Open(filepath.Join(dir, "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	key, err := auth.LoadOrGenerateKey(dir)
	require.NoError(t, err)

	tokenService, err := auth.NewTokenService(hex.EncodeToString(key), 15*time.Minute)
	require.NoError(t, err)

	v := validation.New()
	gate := NewGate(s)

	return &testServices{
		store:  s,
		auth:   NewAuthService(s, tokenService, v, logger),
		boards: NewBoardService(s, gate, v, logger),
		cols:   NewColumnService(s, gate, v, logger),
		cards:  NewCardService(s, gate, v, logger),
		gate:   gate,
	}
}

// registerUser creates an account through the auth service and returns the
// logged-in user.
func registerUser(t *testing.T, ts *testServices, name, email string) *domain.User {
	t.Helper()
	resp, err := ts.auth.Register(context.Background(), RegisterRequest{
		Name:                 name,
		Email:                email,
		Password:             "password123",
		PasswordConfirmation: "password123",
	})
	require.NoError(t, err)
	return resp.User
}

// createBoard makes a board owned by the given user.
func createBoard(t *testing.T, ts *testServices, ownerID int64, title string) *domain.Board {
	t.Helper()
	board, err := ts.boards.Create(context.Background(), ownerID, CreateBoardRequest{Title: title})
	require.NoError(t, err)
	return board
}
