// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/biblio/internal/platform/apperr"
	"github.com/taibuivan/biblio/internal/platform/sec"
)

// # In-Memory Fakes

// fakeUserStore is a mutex-guarded in-memory UserStore.
type fakeUserStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{nextID: 1, users: map[int64]*User{}}
}

func (store *fakeUserStore) Create(_ context.Context, user *User) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	for _, existing := range store.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return apperr.Conflict("Username or email already exists")
		}
	}

	user.ID = store.nextID
	user.CreatedAt = time.Now()
	store.nextID++
	copied := *user
	store.users[user.ID] = &copied
	return nil
}

func (store *fakeUserStore) FindByID(_ context.Context, id int64) (*User, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	user, ok := store.users[id]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	copied := *user
	return &copied, nil
}

func (store *fakeUserStore) FindByUsername(_ context.Context, username string) (*User, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	for _, user := range store.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (store *fakeUserStore) List(_ context.Context) ([]User, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	users := []User{}
	for _, user := range store.users {
		users = append(users, *user)
	}
	return users, nil
}

func (store *fakeUserStore) EnsureAdmin(ctx context.Context, username, email, passwordHash string) error {
	if _, err := store.FindByUsername(ctx, username); err == nil {
		return nil
	}
	return store.Create(ctx, &User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         sec.RoleAdmin,
	})
}

// fakeSessionStore is a mutex-guarded in-memory SessionStore backed by a
// fakeUserStore for the token-to-user join.
type fakeSessionStore struct {
	mu       sync.Mutex
	nextID   int64
	sessions map[string]*Session
	users    *fakeUserStore
}

func newFakeSessionStore(users *fakeUserStore) *fakeSessionStore {
	return &fakeSessionStore{nextID: 1, sessions: map[string]*Session{}, users: users}
}

func (store *fakeSessionStore) Create(_ context.Context, session *Session) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	session.ID = store.nextID
	session.CreatedAt = time.Now()
	store.nextID++
	copied := *session
	store.sessions[session.Token] = &copied
	return nil
}

func (store *fakeSessionStore) FindUserByToken(ctx context.Context, token string) (*User, error) {
	store.mu.Lock()
	session, ok := store.sessions[token]
	store.mu.Unlock()

	if !ok || !session.ExpiresAt.After(time.Now()) {
		return nil, apperr.NotFound("Session")
	}
	return store.users.FindByID(ctx, session.UserID)
}

func (store *fakeSessionStore) DeleteByToken(_ context.Context, token string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	delete(store.sessions, token)
	return nil
}

// compile-time interface checks
var (
	_ UserStore    = (*fakeUserStore)(nil)
	_ SessionStore = (*fakeSessionStore)(nil)
)

// newTestService wires a Service over fresh in-memory stores.
func newTestService(t *testing.T) (*Service, *fakeUserStore, *fakeSessionStore) {
	t.Helper()
	users := newFakeUserStore()
	sessions := newFakeSessionStore(users)
	return NewService(users, sessions), users, sessions
}

// # Registration

func TestService_Register(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService(t)

	user, err := service.Register(ctx, RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	require.NotNil(t, user)

	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, sec.RoleLender, user.Role)
	assert.NotEqual(t, "correct-horse", user.PasswordHash, "password must be stored hashed")
	assert.True(t, sec.CheckPasswordHash("correct-horse", user.PasswordHash))
}

func TestService_Register_DuplicateUsername(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService(t)

	_, err := service.Register(ctx, RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	_, err = service.Register(ctx, RegisterInput{
		Username: "alice",
		Email:    "other@example.com",
		Password: "battery-staple",
	})
	require.Error(t, err)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, http.StatusConflict, appError.HTTPStatus)
}

// # Login

func TestService_Login(t *testing.T) {
	ctx := context.Background()
	service, _, sessions := newTestService(t)

	registered, err := service.Register(ctx, RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	loginSession, err := service.Login(ctx, LoginInput{
		Username: "alice",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	require.NotNil(t, loginSession)

	assert.NotEmpty(t, loginSession.Token)
	assert.Equal(t, registered.ID, loginSession.User.ID)

	stored, ok := sessions.sessions[loginSession.Token]
	require.True(t, ok, "session must be persisted")
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), stored.ExpiresAt, time.Minute)
}

func TestService_Login_InvalidCredentials(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService(t)

	_, err := service.Register(ctx, RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	testCases := []struct {
		name  string
		input LoginInput
	}{
		{
			name:  "unknown username",
			input: LoginInput{Username: "mallory", Password: "correct-horse"},
		},
		{
			name:  "wrong password",
			input: LoginInput{Username: "alice", Password: "wrong"},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := service.Login(ctx, testCase.input)
			require.Error(t, err)

			// Identical message for both failure modes to prevent
			// account enumeration.
			appError := apperr.As(err)
			require.NotNil(t, appError)
			assert.Equal(t, http.StatusUnauthorized, appError.HTTPStatus)
			assert.Equal(t, "Invalid credentials", appError.Message)
		})
	}
}

// # Authentication

func TestService_Authenticate(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService(t)

	_, err := service.Register(ctx, RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	loginSession, err := service.Login(ctx, LoginInput{
		Username: "alice",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	user, err := service.Authenticate(ctx, loginSession.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
}

func TestService_Authenticate_Rejections(t *testing.T) {
	ctx := context.Background()
	service, _, sessions := newTestService(t)

	expired := &Session{
		UserID:    1,
		Token:     "expired-token",
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	require.NoError(t, sessions.Create(ctx, expired))

	testCases := []struct {
		name        string
		token       string
		wantMessage string
	}{
		{
			name:        "missing token",
			token:       "",
			wantMessage: "Authentication required",
		},
		{
			name:        "unknown token",
			token:       "no-such-token",
			wantMessage: "Invalid or expired session",
		},
		{
			name:        "expired session",
			token:       "expired-token",
			wantMessage: "Invalid or expired session",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := service.Authenticate(ctx, testCase.token)
			require.Error(t, err)

			appError := apperr.As(err)
			require.NotNil(t, appError)
			assert.Equal(t, http.StatusUnauthorized, appError.HTTPStatus)
			assert.Equal(t, testCase.wantMessage, appError.Message)
		})
	}
}

func TestService_AuthenticateAdmin(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService(t)

	require.NoError(t, service.EnsureAdmin(ctx, "admin", "admin@library.com", "admin-secret"))

	_, err := service.Register(ctx, RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	adminLogin, err := service.Login(ctx, LoginInput{Username: "admin", Password: "admin-secret"})
	require.NoError(t, err)

	lenderLogin, err := service.Login(ctx, LoginInput{Username: "alice", Password: "correct-horse"})
	require.NoError(t, err)

	admin, err := service.AuthenticateAdmin(ctx, adminLogin.Token)
	require.NoError(t, err)
	assert.True(t, admin.Role.IsAdmin())

	// An authenticated non-admin is Forbidden, not Unauthorized.
	_, err = service.AuthenticateAdmin(ctx, lenderLogin.Token)
	require.Error(t, err)
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, http.StatusForbidden, appError.HTTPStatus)

	// A bad token never reaches the role check.
	_, err = service.AuthenticateAdmin(ctx, "bogus")
	require.Error(t, err)
	appError = apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, http.StatusUnauthorized, appError.HTTPStatus)
}

// # Logout

func TestService_Logout(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService(t)

	_, err := service.Register(ctx, RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	loginSession, err := service.Login(ctx, LoginInput{Username: "alice", Password: "correct-horse"})
	require.NoError(t, err)

	require.NoError(t, service.Logout(ctx, loginSession.Token))

	_, err = service.Authenticate(ctx, loginSession.Token)
	require.Error(t, err)

	// Best-effort contract: missing and unknown tokens are no-ops.
	assert.NoError(t, service.Logout(ctx, ""))
	assert.NoError(t, service.Logout(ctx, "already-gone"))
}

// # Administration

func TestService_EnsureAdmin_Idempotent(t *testing.T) {
	ctx := context.Background()
	service, users, _ := newTestService(t)

	require.NoError(t, service.EnsureAdmin(ctx, "admin", "admin@library.com", "admin-secret"))
	require.NoError(t, service.EnsureAdmin(ctx, "admin", "admin@library.com", "admin-secret"))

	list, err := users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, sec.RoleAdmin, list[0].Role)
}
