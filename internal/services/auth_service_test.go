package services

import (
	"context"
	"testing"
	"time"

	"task-manager/internal/errors"
	"task-manager/internal/logging"
	"task-manager/internal/repository/sqlite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuthService(t *testing.T) (AuthService, sqlite.Repository, *testClock) {
	t.Helper()
	repo := setupRepo(t)
	clock := newTestClock()
	return NewAuthService(repo, testConfig(), clock.Now, logging.Discard()), repo, clock
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name         string
		email        string
		password     string
		userName     string
		expectedName string
		errType      *errors.ErrorType
	}{
		{name: "should register with name", email: "ada@example.com", password: "correct horse", userName: "Ada", expectedName: "Ada"},
		{name: "should default name to email", email: " grace@example.com ", password: "correct horse", expectedName: "grace@example.com"},
		{name: "should reject invalid email", email: "grace", password: "correct horse", errType: ptrErrorType(errors.ErrorTypeValidation)},
		{name: "should reject short password", email: "ada@example.com", password: "short", errType: ptrErrorType(errors.ErrorTypeValidation)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _, _ := setupAuthService(t)

			user, err := service.Register(context.Background(), tt.email, tt.password, tt.userName)
			if tt.errType != nil {
				require.Error(t, err)
				assert.True(t, errors.IsErrorType(err, *tt.errType), "unexpected error %v", err)
				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, user.ID)
			assert.Equal(t, tt.expectedName, user.Name)
			assert.NotEqual(t, tt.password, user.PasswordHash)
		})
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	service, _, _ := setupAuthService(t)
	ctx := context.Background()

	_, err := service.Register(ctx, "ada@example.com", "correct horse", "")
	require.NoError(t, err)

	_, err = service.Register(ctx, "ADA@example.com", "another password", "")
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeConflict), "emails are unique regardless of case")
}

func TestAuthService_LoginAndAuthenticate(t *testing.T) {
	service, _, _ := setupAuthService(t)
	ctx := context.Background()

	registered, err := service.Register(ctx, "ada@example.com", "correct horse", "Ada")
	require.NoError(t, err)

	user, token, err := service.Login(ctx, "ada@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.Len(t, token, 64)

	authed, lifetime, err := service.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, authed.ID)
	assert.Equal(t, testConfig().Auth.SessionTTL, lifetime)

	require.NoError(t, service.Logout(ctx, token))
	_, _, err = service.Authenticate(ctx, token)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeUnauthenticated))

	require.NoError(t, service.Logout(ctx, token), "logging out twice is fine")
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	service, _, _ := setupAuthService(t)
	ctx := context.Background()

	_, err := service.Register(ctx, "ada@example.com", "correct horse", "")
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
		errType  errors.ErrorType
	}{
		{"wrong password", "ada@example.com", "battery staple", errors.ErrorTypeUnauthenticated},
		{"unknown email", "bob@example.com", "correct horse", errors.ErrorTypeUnauthenticated},
		{"missing fields", "", "", errors.ErrorTypeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, token, err := service.Login(ctx, tt.email, tt.password)
			require.Error(t, err)
			assert.True(t, errors.IsErrorType(err, tt.errType), "unexpected error %v", err)
			assert.Nil(t, user)
			assert.Empty(t, token)
		})
	}

	_, _, errWrong := service.Login(ctx, "ada@example.com", "nope")
	_, _, errUnknown := service.Login(ctx, "nobody@example.com", "nope")
	assert.Equal(t, errWrong.Error(), errUnknown.Error(), "failures do not reveal which part was wrong")
}

func TestAuthService_Authenticate_Expired(t *testing.T) {
	service, repo, clock := setupAuthService(t)
	ctx := context.Background()

	_, err := service.Register(ctx, "ada@example.com", "correct horse", "")
	require.NoError(t, err)
	_, token, err := service.Login(ctx, "ada@example.com", "correct horse")
	require.NoError(t, err)

	clock.Advance(29 * 24 * time.Hour)
	_, lifetime, err := service.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, lifetime, "lifetime shrinks as the session ages")

	clock.Advance(2 * 24 * time.Hour)
	_, _, err = service.Authenticate(ctx, token)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeUnauthenticated))

	_, err = repo.GetSessionByTokenHash(ctx, hashSHA256(token))
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeNotFound), "expired session is deleted")
}

func TestAuthService_Authenticate_Garbage(t *testing.T) {
	service, _, _ := setupAuthService(t)

	for _, token := range []string{"", "not-a-token"} {
		_, _, err := service.Authenticate(context.Background(), token)
		assert.True(t, errors.IsErrorType(err, errors.ErrorTypeUnauthenticated), "token %q", token)
	}
}
