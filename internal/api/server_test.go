package api

import (
	"bytes"
	"encoding/json/v2"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StrangePerch/laravel-trello-server/internal/auth"
	"github.com/StrangePerch/laravel-trello-server/internal/ratelimit"
	"github.com/StrangePerch/laravel-trello-server/internal/service"
	"github.com/StrangePerch/laravel-trello-server/internal/store"
	"github.com/StrangePerch/laravel-trello-server/internal/validation"
)

// setupTestServer creates a test server with all dependencies over a
// temporary database.
func setupTestServer(t *testing.T) *Server {
	t.Helper()
	// Generous limiter so only the rate limit tests hit it.
	return setupTestServerWithLimiter(t, ratelimit.New(1000, 1000))
}

// doRequest runs a request against the server and returns the recorder.
func doRequest(t *testing.T, server *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	return w
}

// decodeEnvelope unmarshals a response body into a generic map.
func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), "body: %s", w.Body.String())
	return body
}

// registerAndLogin creates an account and returns its bearer token.
func registerAndLogin(t *testing.T, server *Server, name, email string) string {
	t.Helper()
	w := doRequest(t, server, http.MethodPost, "/auth/register", "", map[string]any{
		"username":              name,
		"email":                 email,
		"password":              "password123",
		"password_confirmation": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code, "register: %s", w.Body.String())

	body := decodeEnvelope(t, w)
	token, ok := body["token"].(string)
	require.True(t, ok, "token missing from register response")
	return token
}

func TestPing(t *testing.T) {
	server := setupTestServer(t)

	w := doRequest(t, server, http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	body := decodeEnvelope(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "pong", body["message"])
}

func TestAuthenticatedEndpoint(t *testing.T) {
	server := setupTestServer(t)

	// No token.
	w := doRequest(t, server, http.MethodGet, "/authenticated", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	body := decodeEnvelope(t, w)
	assert.Equal(t, "Unauthenticated", body["message"])

	// Garbage token.
	w = doRequest(t, server, http.MethodGet, "/authenticated", "v4.local.garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Real token.
	token := registerAndLogin(t, server, "alice", "alice@example.com")
	w = doRequest(t, server, http.MethodGet, "/authenticated", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRegisterValidationEnvelope(t *testing.T) {
	server := setupTestServer(t)

	w := doRequest(t, server, http.MethodPost, "/auth/register", "", map[string]any{
		"username":              "alice",
		"email":                 "not-an-email",
		"password":              "password123",
		"password_confirmation": "password123",
	})
	// Validation failures keep the original 500 + Wrong input contract.
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	body := decodeEnvelope(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Wrong input", body["message"])

	fields, ok := body["validator_errors"].(map[string]any)
	require.True(t, ok, "expected validator_errors")
	assert.Contains(t, fields, "email")

	// The account name field is "username" on the wire, and validation
	// errors report it under that key.
	w = doRequest(t, server, http.MethodPost, "/auth/register", "", map[string]any{
		"email":                 "alice@example.com",
		"password":              "password123",
		"password_confirmation": "password123",
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body = decodeEnvelope(t, w)
	fields, ok = body["validator_errors"].(map[string]any)
	require.True(t, ok, "expected validator_errors")
	assert.Contains(t, fields, "username")
	assert.NotContains(t, fields, "name")
}

func TestLoginFlow(t *testing.T) {
	server := setupTestServer(t)
	registerAndLogin(t, server, "alice", "alice@example.com")

	w := doRequest(t, server, http.MethodPost, "/auth/login", "", map[string]any{
		"username": "alice",
		"password": "password123",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeEnvelope(t, w)
	assert.NotEmpty(t, body["token"])

	w = doRequest(t, server, http.MethodPost, "/auth/login", "", map[string]any{
		"username": "alice",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	body = decodeEnvelope(t, w)
	assert.Equal(t, "Bad credentials", body["message"])
}

func TestLogoutRevokesToken(t *testing.T) {
	server := setupTestServer(t)
	token := registerAndLogin(t, server, "alice", "alice@example.com")

	w := doRequest(t, server, http.MethodPost, "/auth/logout", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, server, http.MethodGet, "/auth/user", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBoardEndpoints(t *testing.T) {
	server := setupTestServer(t)
	token := registerAndLogin(t, server, "alice", "alice@example.com")

	// Create.
	w := doRequest(t, server, http.MethodPost, "/board/store", token, map[string]any{"title": "Sprint"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decodeEnvelope(t, w)
	board := body["board"].(map[string]any)
	boardID := int64(board["id"].(float64))
	require.NotZero(t, boardID)

	// List includes it with empty columns.
	w = doRequest(t, server, http.MethodGet, "/board/get", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body = decodeEnvelope(t, w)
	boards := body["boards"].([]any)
	require.Len(t, boards, 1)

	// Edit.
	w = doRequest(t, server, http.MethodPut, "/board/edit/1", token, map[string]any{"title": "Renamed"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Access level.
	w = doRequest(t, server, http.MethodGet, "/board/access/1", token, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	body = decodeEnvelope(t, w)
	assert.EqualValues(t, 5, body["access_level"])

	// Updated aggregate.
	w = doRequest(t, server, http.MethodGet, "/board/updated", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body = decodeEnvelope(t, w)
	assert.NotNil(t, body["updated_at"])

	// Delete.
	w = doRequest(t, server, http.MethodDelete, "/board/delete/1", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Missing board now 404s.
	w = doRequest(t, server, http.MethodPut, "/board/edit/1", token, map[string]any{"title": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	body = decodeEnvelope(t, w)
	assert.Equal(t, "Board not found", body["message"])
}

func TestAccessControlOverHTTP(t *testing.T) {
	server := setupTestServer(t)
	ownerToken := registerAndLogin(t, server, "owner", "owner@example.com")
	memberToken := registerAndLogin(t, server, "member", "member@example.com")

	w := doRequest(t, server, http.MethodPost, "/board/store", ownerToken, map[string]any{"title": "Sprint"})
	require.Equal(t, http.StatusCreated, w.Code)

	// Non-member gets the membership error with a 401.
	w = doRequest(t, server, http.MethodGet, "/board/access/1", memberToken, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	body := decodeEnvelope(t, w)
	assert.Equal(t, "You are not a member of that board", body["message"])

	// Add at level 2.
	w = doRequest(t, server, http.MethodPost, "/board/1/users/add", ownerToken, map[string]any{
		"username":     "member",
		"access_level": 2,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// Adding twice conflicts.
	w = doRequest(t, server, http.MethodPost, "/board/1/users/add", ownerToken, map[string]any{
		"username":     "member",
		"access_level": 2,
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Level 2 cannot rename the board.
	w = doRequest(t, server, http.MethodPut, "/board/edit/1", memberToken, map[string]any{"title": "Hijack"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	body = decodeEnvelope(t, w)
	assert.Equal(t, "Not enough access", body["message"])

	// Member list round-trips the level.
	w = doRequest(t, server, http.MethodGet, "/board/1/users/get", ownerToken, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	body = decodeEnvelope(t, w)
	users := body["users"].([]any)
	require.Len(t, users, 2)
}

func TestCardFlowOverHTTP(t *testing.T) {
	server := setupTestServer(t)
	token := registerAndLogin(t, server, "alice", "alice@example.com")

	w := doRequest(t, server, http.MethodPost, "/board/store", token, map[string]any{"title": "Sprint"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(t, server, http.MethodPost, "/column/store", token, map[string]any{
		"title":    "Todo",
		"board_id": 1,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doRequest(t, server, http.MethodPost, "/column/store", token, map[string]any{
		"title":    "Done",
		"board_id": 1,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(t, server, http.MethodPost, "/card/store", token, map[string]any{
		"title":     "Fix bug",
		"text":      "repro steps",
		"column_id": 1,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// Fetch.
	w = doRequest(t, server, http.MethodGet, "/card/get/1", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeEnvelope(t, w)
	card := body["card"].(map[string]any)
	assert.Equal(t, "Fix bug", card["title"])

	// Move to column 2.
	w = doRequest(t, server, http.MethodPut, "/card/move/1/2", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body = decodeEnvelope(t, w)
	card = body["card"].(map[string]any)
	assert.EqualValues(t, 2, card["column_id"])

	// Subscribe self, not others.
	w = doRequest(t, server, http.MethodPost, "/card/1/users/add/1", token, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(t, server, http.MethodPost, "/card/1/users/add/99", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	body = decodeEnvelope(t, w)
	assert.Equal(t, "You can only subscribe yourself", body["message"])

	w = doRequest(t, server, http.MethodGet, "/card/1/users/get", token, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	body = decodeEnvelope(t, w)
	users := body["users"].([]any)
	assert.Len(t, users, 1)

	// Delete.
	w = doRequest(t, server, http.MethodDelete, "/card/delete/1", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, server, http.MethodGet, "/card/get/1", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNonNumericIDReads404(t *testing.T) {
	server := setupTestServer(t)
	token := registerAndLogin(t, server, "alice", "alice@example.com")

	w := doRequest(t, server, http.MethodGet, "/card/get/abc", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLoginRateLimit(t *testing.T) {
	server := setupTestServerWithLimiter(t, ratelimit.New(0.1, 2))

	for range 2 {
		w := doRequest(t, server, http.MethodPost, "/auth/login", "", map[string]any{
			"username": "nobody",
			"password": "password123",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}

	w := doRequest(t, server, http.MethodPost, "/auth/login", "", map[string]any{
		"username": "nobody",
		"password": "password123",
	})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

// setupTestServerWithLimiter is setupTestServer with a custom login limiter.
func setupTestServerWithLimiter(t *testing.T, limiter *ratelimit.KeyedRateLimiter) *Server {
	t.Helper()

	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s, err := store.Open(filepath.Join(dir, "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	testKeyHex := "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"
	tokenService, err := auth.NewTokenService(testKeyHex, 15*time.Minute)
	require.NoError(t, err)

	v := validation.New()
	gate := service.NewGate(s)
	t.Cleanup(limiter.Stop)

	return NewServer(
		service.NewAuthService(s, tokenService, v, logger),
		service.NewBoardService(s, gate, v, logger),
		service.NewColumnService(s, gate, v, logger),
		service.NewCardService(s, gate, v, logger),
		limiter,
		logger,
	)
}
