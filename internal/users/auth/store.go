// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
)

// # User Data Access

// UserStore defines the data access contract for user accounts.
type UserStore interface {

	/*
		Create persists a brand-new user account and assigns its id.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: apperr.Conflict on a username/email collision, or persistence failures
	*/
	Create(context context.Context, user *User) error

	/*
		FindByID returns the account with the given id.

		Parameters:
		  - context: context.Context
		  - id: int64

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByID(context context.Context, id int64) (*User, error)

	/*
		FindByUsername returns the account with the given username.

		Parameters:
		  - context: context.Context
		  - username: string

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByUsername(context context.Context, username string) (*User, error)

	/*
		List returns every registered account, newest first.

		Parameters:
		  - context: context.Context

		Returns:
		  - []User: All accounts
		  - error: Database retrieval failures
	*/
	List(context context.Context) ([]User, error)

	/*
		EnsureAdmin inserts the seeded administrator account if no account with
		that username exists yet. Idempotent across restarts.

		Parameters:
		  - context: context.Context
		  - username: string
		  - email: string
		  - passwordHash: string

		Returns:
		  - error: Persistence failures
	*/
	EnsureAdmin(context context.Context, username, email, passwordHash string) error
}

// # Session Data Access

// SessionStore defines the data access contract for bearer-token sessions.
type SessionStore interface {

	/*
		Create persists a new session for an authenticated login.

		Parameters:
		  - context: context.Context
		  - session: *Session

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, session *Session) error

	/*
		FindUserByToken resolves a bearer token to its owning user, honoring
		expiry. Expired sessions are treated identically to absent ones; they
		are not purged by this read.

		Parameters:
		  - context: context.Context
		  - token: string

		Returns:
		  - *User: The session's owner
		  - error: apperr.NotFound when the token matches no live session
	*/
	FindUserByToken(context context.Context, token string) (*User, error)

	/*
		DeleteByToken removes the session holding the given token, if any.

		Parameters:
		  - context: context.Context
		  - token: string

		Returns:
		  - error: Persistence failures
	*/
	DeleteByToken(context context.Context, token string) error
}
