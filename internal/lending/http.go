// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package lending

import (
	"context"
	"net/http"

	"github.com/taibuivan/biblio/internal/httpwire"
	"github.com/taibuivan/biblio/internal/platform/constants"
	"github.com/taibuivan/biblio/internal/users/auth"
)

// # Definitions & Constructors

// Handler implements the lending endpoints. Every route requires a session;
// the admin listings additionally require the admin role.
type Handler struct {
	lendingService *Service
	authService    *auth.Service
}

// NewHandler constructs a new [Handler] with its dependencies.
func NewHandler(lendingService *Service, authService *auth.Service) *Handler {
	return &Handler{
		lendingService: lendingService,
		authService:    authService,
	}
}

// Register adds the lending routes to the table.
//
// # Endpoints
//   - POST /api/lending/borrow/{bookId}   : Borrows one copy.
//   - POST /api/lending/return/{recordId} : Returns a borrowed copy.
//   - GET  /api/lending/my-books          : Lists the caller's loans.
//   - GET  /api/admin/lending/active      : Lists all open loans (admin).
//   - GET  /api/admin/lending/overdue     : Lists all overdue loans (admin).
func (handler *Handler) Register(router *httpwire.Router) {
	router.HandleInt(http.MethodPost, "/api/lending/borrow/", handler.borrow)
	router.HandleInt(http.MethodPost, "/api/lending/return/", handler.giveBack)
	router.Handle(http.MethodGet, "/api/lending/my-books", handler.listMine)
	router.Handle(http.MethodGet, "/api/admin/lending/active", handler.listActive)
	router.Handle(http.MethodGet, "/api/admin/lending/overdue", handler.listOverdue)
}

// # Loan Lifecycle

/*
borrow opens a loan of one copy for the authenticated user.

POST /api/lending/borrow/{bookId}

Response:
  - 201: {message, record_id}
  - 401: Unauthorized: Missing, invalid, or expired token
  - 404: NotFound: No such book
  - 409: Conflict: No copy available
*/
func (handler *Handler) borrow(ctx context.Context, request *httpwire.Request) *httpwire.Response {
	user, err := handler.authService.Authenticate(ctx, request.BearerToken())
	if err != nil {
		return httpwire.Error(ctx, err)
	}

	recordID, err := handler.lendingService.Borrow(ctx, user.ID, request.ID)
	if err != nil {
		return httpwire.Error(ctx, err)
	}

	return httpwire.Created(map[string]any{
		constants.FieldMessage:  "Book borrowed successfully",
		constants.FieldRecordID: recordID,
	})
}

/*
giveBack closes one of the authenticated user's open loans.

POST /api/lending/return/{recordId}

Response:
  - 200: Message: Returned
  - 401: Unauthorized: Missing, invalid, or expired token
  - 404: NotFound: No open loan with that id owned by the caller
*/
func (handler *Handler) giveBack(ctx context.Context, request *httpwire.Request) *httpwire.Response {
	user, err := handler.authService.Authenticate(ctx, request.BearerToken())
	if err != nil {
		return httpwire.Error(ctx, err)
	}

	if err := handler.lendingService.Return(ctx, request.ID, user.ID); err != nil {
		return httpwire.Error(ctx, err)
	}

	return httpwire.Message(http.StatusOK, "Book returned successfully")
}

// # Listings

/*
listMine returns the authenticated user's loans.

GET /api/lending/my-books

Response:
  - 200: []RecordDetail: The caller's loans, newest first
  - 401: Unauthorized: Missing, invalid, or expired token
*/
func (handler *Handler) listMine(ctx context.Context, request *httpwire.Request) *httpwire.Response {
	user, err := handler.authService.Authenticate(ctx, request.BearerToken())
	if err != nil {
		return httpwire.Error(ctx, err)
	}

	records, err := handler.lendingService.ListMine(ctx, user.ID)
	if err != nil {
		return httpwire.Error(ctx, err)
	}

	return httpwire.OK(records)
}

/*
listActive returns every open loan.

GET /api/admin/lending/active

Response:
  - 200: []RecordDetail: All borrowed and overdue loans, newest first
  - 401/403: Missing token / non-admin session
*/
func (handler *Handler) listActive(ctx context.Context, request *httpwire.Request) *httpwire.Response {
	if _, err := handler.authService.AuthenticateAdmin(ctx, request.BearerToken()); err != nil {
		return httpwire.Error(ctx, err)
	}

	records, err := handler.lendingService.ListActive(ctx)
	if err != nil {
		return httpwire.Error(ctx, err)
	}

	return httpwire.OK(records)
}

/*
listOverdue returns every overdue loan.

GET /api/admin/lending/overdue

Response:
  - 200: []RecordDetail: All overdue loans, newest first
  - 401/403: Missing token / non-admin session
*/
func (handler *Handler) listOverdue(ctx context.Context, request *httpwire.Request) *httpwire.Response {
	if _, err := handler.authService.AuthenticateAdmin(ctx, request.BearerToken()); err != nil {
		return httpwire.Error(ctx, err)
	}

	records, err := handler.lendingService.ListOverdue(ctx)
	if err != nil {
		return httpwire.Error(ctx, err)
	}

	return httpwire.OK(records)
}
