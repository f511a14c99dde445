// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// PostgreSQL implementations of the auth storage contracts.
//
// # Error Mapping
//
// Storage-specific errors (pgx.ErrNoRows, SQLSTATE constraint codes) are mapped
// to domain-friendly [apperr.AppError] types to avoid leaking storage
// implementation details.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/biblio/internal/platform/apperr"
	"github.com/taibuivan/biblio/internal/platform/dberr"
	"github.com/taibuivan/biblio/internal/platform/sec"
)

// # User Store

// PostgresUserStore implements the UserStore interface using pgx.
type PostgresUserStore struct {
	pool *pgxpool.Pool
}

// NewUserStore creates a new PostgreSQL implementation of the UserStore.
func NewUserStore(pool *pgxpool.Pool) *PostgresUserStore {
	return &PostgresUserStore{pool: pool}
}

/*
Create persists a new user record and assigns its gateway-generated id.

Description: Uniqueness of username and email is enforced by the table
constraints; a collision surfaces as a client-safe Conflict.

Parameters:
  - context: context.Context
  - user: *User (Entity to persist; ID and CreatedAt are filled in)

Returns:
  - error: apperr.Conflict on duplicate identity, or connectivity errors
*/
func (store *PostgresUserStore) Create(context context.Context, user *User) error {
	const query = `
		INSERT INTO users (username, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := store.pool.QueryRow(context, query,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Role,
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		return dberr.Wrap(err, "Username or email already exists")
	}

	return nil
}

/*
FindByID retrieves a user record by its primary key.

Parameters:
  - context: context.Context
  - id: int64

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (store *PostgresUserStore) FindByID(context context.Context, id int64) (*User, error) {
	const query = `
		SELECT id, username, email, password_hash, role, created_at
		FROM users
		WHERE id = $1`

	user := &User{}
	err := store.pool.QueryRow(context, query, id).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_store_find_by_id_failed: %w", err)
	}

	return user, nil
}

/*
FindByUsername retrieves a user record by its unique username.

Description: Standard lookup for credential verification at login.

Parameters:
  - context: context.Context
  - username: string

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (store *PostgresUserStore) FindByUsername(context context.Context, username string) (*User, error) {
	const query = `
		SELECT id, username, email, password_hash, role, created_at
		FROM users
		WHERE username = $1`

	user := &User{}
	err := store.pool.QueryRow(context, query, username).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_store_find_by_username_failed: %w", err)
	}

	return user, nil
}

/*
List returns every registered account, newest first.

Parameters:
  - context: context.Context

Returns:
  - []User: All accounts
  - error: Database retrieval failures
*/
func (store *PostgresUserStore) List(context context.Context) ([]User, error) {
	const query = `
		SELECT id, username, email, password_hash, role, created_at
		FROM users
		ORDER BY created_at DESC`

	rows, err := store.pool.Query(context, query)
	if err != nil {
		return nil, fmt.Errorf("postgres_user_store_list_failed: %w", err)
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		var user User
		if err := rows.Scan(
			&user.ID,
			&user.Username,
			&user.Email,
			&user.PasswordHash,
			&user.Role,
			&user.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres_user_store_list_scan_failed: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_user_store_list_rows_failed: %w", err)
	}

	return users, nil
}

/*
EnsureAdmin inserts the seeded administrator account on first startup.

Description: ON CONFLICT DO NOTHING keeps the operation idempotent — restarting
the service never duplicates or overwrites the administrator.

Parameters:
  - context: context.Context
  - username: string
  - email: string
  - passwordHash: string

Returns:
  - error: Persistence failures
*/
func (store *PostgresUserStore) EnsureAdmin(context context.Context, username, email, passwordHash string) error {
	const query = `
		INSERT INTO users (username, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (username) DO NOTHING`

	_, err := store.pool.Exec(context, query, username, email, passwordHash, sec.RoleAdmin)
	if err != nil {
		return fmt.Errorf("postgres_user_store_ensure_admin_failed: %w", err)
	}

	return nil
}

// # Session Store

// PostgresSessionStore implements the SessionStore interface.
type PostgresSessionStore struct {
	pool *pgxpool.Pool
}

// NewSessionStore creates a new PostgreSQL implementation of SessionStore.
func NewSessionStore(pool *pgxpool.Pool) *PostgresSessionStore {
	return &PostgresSessionStore{pool: pool}
}

/*
Create persists a new session record.

Parameters:
  - context: context.Context
  - session: *Session (ID and CreatedAt are filled in)

Returns:
  - error: Storage failures
*/
func (store *PostgresSessionStore) Create(context context.Context, session *Session) error {
	const query = `
		INSERT INTO sessions (user_id, token, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := store.pool.QueryRow(context, query,
		session.UserID,
		session.Token,
		session.ExpiresAt,
	).Scan(&session.ID, &session.CreatedAt)

	if err != nil {
		return fmt.Errorf("postgres_session_store_create_failed: %w", err)
	}

	return nil
}

/*
FindUserByToken resolves a live bearer token to its owning user.

Description: Read-only join between sessions and users. The expiry predicate
lives in the query, so an expired session is indistinguishable from an absent
one; expired rows are left in place.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - *User: The session's owner
  - error: apperr.NotFound when no live session holds the token
*/
func (store *PostgresSessionStore) FindUserByToken(context context.Context, token string) (*User, error) {
	const query = `
		SELECT u.id, u.username, u.email, u.password_hash, u.role, u.created_at
		FROM users u
		INNER JOIN sessions s ON u.id = s.user_id
		WHERE s.token = $1 AND s.expires_at > NOW()`

	user := &User{}
	err := store.pool.QueryRow(context, query, token).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Session")
		}
		return nil, fmt.Errorf("postgres_session_store_find_failed: %w", err)
	}

	return user, nil
}

/*
DeleteByToken removes the session holding the given token.

Description: Logout is best-effort; deleting a token that matches no session
is not an error.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - error: Persistence failures
*/
func (store *PostgresSessionStore) DeleteByToken(context context.Context, token string) error {
	const query = "DELETE FROM sessions WHERE token = $1"
	_, err := store.pool.Exec(context, query, token)
	if err != nil {
		return fmt.Errorf("postgres_session_store_delete_failed: %w", err)
	}
	return nil
}

// compile-time interface checks
var (
	_ UserStore    = (*PostgresUserStore)(nil)
	_ SessionStore = (*PostgresSessionStore)(nil)
)
