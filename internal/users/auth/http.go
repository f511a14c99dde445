// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
HTTP-shaped delivery layer for user identity management.

The handler acts as a thin mediation layer between the wire and the domain
service:

  - Protocol: JSON bodies over the single-shot request/response codec.
  - Security: Resolves bearer tokens through the session authenticator.
  - Verification: Enforces strict input validation before passing to [Service].

This layer is strictly responsible for transport concerns (status codes, JSON).
*/
package auth

import (
	"context"
	"net/http"

	"github.com/taibuivan/biblio/internal/httpwire"
	"github.com/taibuivan/biblio/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements authentication-related endpoints.
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Register adds the authentication and admin-user routes to the table.
//
// # Endpoints
//   - POST /api/auth/register : Creates a new account.
//   - POST /api/auth/login    : Authenticates and returns a session token.
//   - POST /api/auth/logout   : Deletes the presented session (best-effort).
//   - GET  /api/auth/me       : Returns the authenticated profile.
//   - GET  /api/admin/users   : Lists all accounts (admin).
func (handler *Handler) Register(router *httpwire.Router) {
	router.Handle(http.MethodPost, "/api/auth/register", handler.register)
	router.Handle(http.MethodPost, "/api/auth/login", handler.login)
	router.Handle(http.MethodPost, "/api/auth/logout", handler.logout)
	router.Handle(http.MethodGet, "/api/auth/me", handler.me)
	router.Handle(http.MethodGet, "/api/admin/users", handler.listUsers)
}

// # Request Payloads

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

/*
register handles the creation of a new user account.

POST /api/auth/register

Request:
  - Body: registerRequest (Username, Email, Password)

Response:
  - 201: User: Created profile (password hash excluded)
  - 400: ErrInvalidJSON: Bad input or validation failure
  - 409: Conflict: Username or email already exists
*/
func (handler *Handler) register(ctx context.Context, request *httpwire.Request) *httpwire.Response {
	var input registerRequest

	if err := request.DecodeJSON(&input); err != nil {
		return httpwire.Error(ctx, validate.ErrInvalidJSON)
	}

	validator := &validate.Validator{}
	validator.Required(FieldUsername, input.Username).
		MinLen(FieldUsername, input.Username, 3).
		Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, 8)

	if err := validator.Err(); err != nil {
		return httpwire.Error(ctx, err)
	}

	user, err := handler.authService.Register(ctx, RegisterInput{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
	})

	if err != nil {
		return httpwire.Error(ctx, err)
	}

	return httpwire.Created(user)
}

/*
login authenticates a user and establishes a session.

POST /api/auth/login

Request:
  - Body: loginRequest (Username, Password)

Response:
  - 200: LoginSession: {token, user}
  - 401: Unauthorized: Invalid credentials
*/
func (handler *Handler) login(ctx context.Context, request *httpwire.Request) *httpwire.Response {
	var input loginRequest

	if err := request.DecodeJSON(&input); err != nil {
		return httpwire.Error(ctx, validate.ErrInvalidJSON)
	}

	validator := &validate.Validator{}
	validator.Required(FieldUsername, input.Username)
	validator.Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		return httpwire.Error(ctx, err)
	}

	session, err := handler.authService.Login(ctx, LoginInput{
		Username: input.Username,
		Password: input.Password,
	})
	if err != nil {
		return httpwire.Error(ctx, err)
	}

	return httpwire.OK(session)
}

/*
logout terminates the presented session.

POST /api/auth/logout

Description: Best-effort — a missing or invalid bearer token is a no-op and
still reports success.

Response:
  - 200: Message: Logged out
*/
func (handler *Handler) logout(ctx context.Context, request *httpwire.Request) *httpwire.Response {
	if err := handler.authService.Logout(ctx, request.BearerToken()); err != nil {
		return httpwire.Error(ctx, err)
	}

	return httpwire.Message(http.StatusOK, "Logged out successfully")
}

/*
me returns the profile of the authenticated user.

GET /api/auth/me

Response:
  - 200: User: The session's owner (password hash excluded)
  - 401: Unauthorized: Missing, invalid, or expired token
*/
func (handler *Handler) me(ctx context.Context, request *httpwire.Request) *httpwire.Response {
	user, err := handler.authService.Authenticate(ctx, request.BearerToken())
	if err != nil {
		return httpwire.Error(ctx, err)
	}

	return httpwire.OK(user)
}

/*
listUsers returns every registered account.

GET /api/admin/users

Response:
  - 200: []User: All accounts, newest first
  - 401: Unauthorized: Missing or invalid token
  - 403: Forbidden: Authenticated but not an administrator
*/
func (handler *Handler) listUsers(ctx context.Context, request *httpwire.Request) *httpwire.Response {
	if _, err := handler.authService.AuthenticateAdmin(ctx, request.BearerToken()); err != nil {
		return httpwire.Error(ctx, err)
	}

	users, err := handler.authService.ListUsers(ctx)
	if err != nil {
		return httpwire.Error(ctx, err)
	}

	return httpwire.OK(users)
}
