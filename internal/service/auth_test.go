package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/StrangePerch/laravel-trello-server/internal/errors"
)

func TestAuthService_RegisterAndLogin(t *testing.T) {
	ts := setupServices(t)
	ctx := context.Background()

	resp, err := ts.auth.Register(ctx, RegisterRequest{
		Name:                 "alice",
		Email:                "alice@example.com",
		Password:             "password123",
		PasswordConfirmation: "password123",
	})
	require.NoError(t, err)
	assert.NotZero(t, resp.User.ID)
	assert.NotEmpty(t, resp.Token)
	assert.Empty(t, resp.User.PasswordHash, "hash must not leave the service")

	// Token from registration resolves to the user.
	user, err := ts.auth.VerifyToken(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, user.ID)

	// Login by name and by email.
	for _, username := range []string{"alice", "alice@example.com"} {
		loginResp, err := ts.auth.Login(ctx, LoginRequest{Username: username, Password: "password123"})
		require.NoError(t, err, "login as %s", username)
		assert.Equal(t, resp.User.ID, loginResp.User.ID)
	}
}

func TestAuthService_RegisterValidation(t *testing.T) {
	ts := setupServices(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{
			name: "short password",
			req: RegisterRequest{
				Name: "alice", Email: "alice@example.com",
				Password: "short", PasswordConfirmation: "short",
			},
		},
		{
			name: "confirmation mismatch",
			req: RegisterRequest{
				Name: "alice", Email: "alice@example.com",
				Password: "password123", PasswordConfirmation: "password124",
			},
		},
		{
			name: "bad email",
			req: RegisterRequest{
				Name: "alice", Email: "nope",
				Password: "password123", PasswordConfirmation: "password123",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ts.auth.Register(ctx, tt.req)
			var domainErr *domainerrors.Error
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)
			assert.Equal(t, "Wrong input", domainErr.Message)
		})
	}
}

func TestAuthService_RegisterDuplicateEmail(t *testing.T) {
	ts := setupServices(t)
	ctx := context.Background()

	registerUser(t, ts, "alice", "alice@example.com")

	_, err := ts.auth.Register(ctx, RegisterRequest{
		Name:                 "alice2",
		Email:                "alice@example.com",
		Password:             "password123",
		PasswordConfirmation: "password123",
	})
	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)

	fields, ok := domainErr.Details.(map[string]string)
	require.True(t, ok)
	assert.Contains(t, fields, "email")
}

func TestAuthService_LoginBadCredentials(t *testing.T) {
	ts := setupServices(t)
	ctx := context.Background()

	registerUser(t, ts, "alice", "alice@example.com")

	// Wrong password and unknown user read identically.
	for _, req := range []LoginRequest{
		{Username: "alice", Password: "wrongpassword"},
		{Username: "nobody", Password: "password123"},
	} {
		_, err := ts.auth.Login(ctx, req)
		requireDomainError(t, err, domainerrors.CodeInvalidCredentials, "Bad credentials")
	}
}

func TestAuthService_LogoutRevokesAllTokens(t *testing.T) {
	ts := setupServices(t)
	ctx := context.Background()

	resp, err := ts.auth.Register(ctx, RegisterRequest{
		Name:                 "alice",
		Email:                "alice@example.com",
		Password:             "password123",
		PasswordConfirmation: "password123",
	})
	require.NoError(t, err)

	second, err := ts.auth.Login(ctx, LoginRequest{Username: "alice", Password: "password123"})
	require.NoError(t, err)

	require.NoError(t, ts.auth.Logout(ctx, resp.User.ID))

	// Both outstanding tokens are dead, not just the latest.
	for _, token := range []string{resp.Token, second.Token} {
		_, err := ts.auth.VerifyToken(ctx, token)
		requireDomainError(t, err, domainerrors.CodeUnauthenticated, "Unauthenticated")
	}
}

func TestAuthService_VerifyGarbageToken(t *testing.T) {
	ts := setupServices(t)

	_, err := ts.auth.VerifyToken(context.Background(), "v4.local.garbage")
	requireDomainError(t, err, domainerrors.CodeUnauthenticated, "Unauthenticated")
}
