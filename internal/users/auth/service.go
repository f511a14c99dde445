// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/taibuivan/biblio/internal/platform/apperr"
	"github.com/taibuivan/biblio/internal/platform/constants"
	"github.com/taibuivan/biblio/internal/platform/sec"
)

// # Service

// Service implements registration, login, and session authentication.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, registration,
// or authentication logic must be reviewed carefully.
type Service struct {
	userStore    UserStore
	sessionStore SessionStore
}

// NewService constructs a new [Service] with its storage dependencies.
func NewService(userStore UserStore, sessionStore SessionStore) *Service {
	return &Service{
		userStore:    userStore,
		sessionStore: sessionStore,
	}
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

/*
Register hashes the credential and persists a brand new user account.

Description: Every self-registered account is a lender; the admin role is
seeded once at startup and is never self-assignable through the public API.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *User: Created entity
  - error: Conflict (if identity exists) or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*User, error) {

	// Prevent storing plain-text passwords. Default cost balances security
	// and CPU utilization during registration spikes.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	user := &User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hashedPassword,
		Role:         sec.RoleLender,
	}

	// The store's unique constraints arbitrate username/email collisions
	// atomically; a pre-read would race with concurrent registrations.
	if err := service.userStore.Create(context, user); err != nil {
		return nil, err
	}

	return user, nil
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Username string
	Password string
}

// LoginSession represents a successfully established user session.
type LoginSession struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

/*
Login validates user credentials and issues an opaque session token.

Description: Verifies identity, performs constant-time password comparison
inside bcrypt, and creates a 24-hour session row.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *LoginSession: The minted token plus the user profile
  - error: Unauthorized or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*LoginSession, error) {
	user, err := service.userStore.FindByUsername(context, input.Username)

	// Generic message on both lookup and password failure to prevent
	// account enumeration.
	if err != nil {
		return nil, apperr.Unauthorized("Invalid credentials")
	}

	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid credentials")
	}

	session := &Session{
		UserID:    user.ID,
		Token:     sec.NewSessionToken(),
		ExpiresAt: time.Now().Add(constants.SessionTTL),
	}

	if err := service.sessionStore.Create(context, session); err != nil {
		return nil, fmt.Errorf("auth_service_session_creation_failed: %w", err)
	}

	return &LoginSession{
		Token: session.Token,
		User:  user,
	}, nil
}

/*
Logout deletes the session holding the given token.

Description: Best-effort by contract — a missing, invalid, or already-expired
token is treated as a successful no-op.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - error: Storage failures only
*/
func (service *Service) Logout(context context.Context, token string) error {
	if token == "" {
		return nil
	}
	return service.sessionStore.DeleteByToken(context, token)
}

// # Session Authentication

/*
Authenticate resolves a bearer token to its owning user.

Description: Read-only join between session and user storage. An absent token,
an unknown token, and an expired session are all reported identically as
Unauthorized. There is no sliding expiry and no session renewal.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - *User: The authenticated account
  - error: apperr.Unauthorized or internal failures
*/
func (service *Service) Authenticate(context context.Context, token string) (*User, error) {
	if token == "" {
		return nil, apperr.Unauthorized("Authentication required")
	}

	user, err := service.sessionStore.FindUserByToken(context, token)
	if err != nil {
		if ae := apperr.As(err); ae != nil && ae.HTTPStatus == http.StatusNotFound {
			return nil, apperr.Unauthorized("Invalid or expired session")
		}
		return nil, fmt.Errorf("auth_service_authenticate_failed: %w", err)
	}

	return user, nil
}

/*
AuthenticateAdmin layers a role check on top of [Service.Authenticate].

Description: A successfully authenticated non-admin yields Forbidden, which is
deliberately distinct from the Unauthorized returned for bad tokens.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - *User: The authenticated administrator
  - error: apperr.Unauthorized, apperr.Forbidden, or internal failures
*/
func (service *Service) AuthenticateAdmin(context context.Context, token string) (*User, error) {
	user, err := service.Authenticate(context, token)
	if err != nil {
		return nil, err
	}

	if !user.Role.IsAdmin() {
		return nil, apperr.Forbidden("Administrator access required")
	}

	return user, nil
}

// # Administration

/*
ListUsers returns every registered account for the admin view.

Parameters:
  - context: context.Context

Returns:
  - []User: All accounts, newest first
  - error: Storage failures
*/
func (service *Service) ListUsers(context context.Context) ([]User, error) {
	users, err := service.userStore.List(context)
	if err != nil {
		return nil, fmt.Errorf("auth_service_list_users_failed: %w", err)
	}
	return users, nil
}

/*
EnsureAdmin seeds the administrator account on first startup.

Description: Hashes the configured password and inserts the account only if it
does not exist yet. Called once from the startup sequence.

Parameters:
  - context: context.Context
  - username: string
  - email: string
  - password: string

Returns:
  - error: Hashing or storage failures
*/
func (service *Service) EnsureAdmin(context context.Context, username, email, password string) error {
	hashedPassword, err := sec.HashPassword(password)
	if err != nil {
		return fmt.Errorf("auth_service_admin_hash_failed: %w", err)
	}

	if err := service.userStore.EnsureAdmin(context, username, email, hashedPassword); err != nil {
		return err
	}

	return nil
}
