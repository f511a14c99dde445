// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package books

import (
	"context"
	"net/http"

	"github.com/taibuivan/biblio/internal/httpwire"
	"github.com/taibuivan/biblio/internal/platform/validate"
	"github.com/taibuivan/biblio/internal/users/auth"
)

// # Definitions & Constructors

// Handler implements catalog endpoints. Reads are public; writes require an
// administrator session.
type Handler struct {
	bookService *Service
	authService *auth.Service
}

// NewHandler constructs a new [Handler] with its dependencies.
func NewHandler(bookService *Service, authService *auth.Service) *Handler {
	return &Handler{
		bookService: bookService,
		authService: authService,
	}
}

// Register adds the catalog routes to the table.
//
// # Endpoints
//   - GET    /api/books          : Lists the catalog (public).
//   - GET    /api/books/search   : Free-text search (public).
//   - POST   /api/books          : Adds a book (admin).
//   - PUT    /api/books/{id}     : Partially updates a book (admin).
//   - DELETE /api/books/{id}     : Removes a book (admin).
//
// The search route is registered before the integer routes so that
// "/api/books/search" is never mistaken for a malformed identifier.
func (handler *Handler) Register(router *httpwire.Router) {
	router.Handle(http.MethodGet, "/api/books", handler.list)
	router.HandleQuery(http.MethodGet, "/api/books/search", "q", handler.search)
	router.Handle(http.MethodPost, "/api/books", handler.create)
	router.HandleInt(http.MethodPut, "/api/books/", handler.update)
	router.HandleInt(http.MethodDelete, "/api/books/", handler.remove)
}

// # Request Payloads

type createBookRequest struct {
	Title           string  `json:"title"`
	Author          string  `json:"author"`
	ISBN            string  `json:"isbn"`
	PublicationYear *int    `json:"publication_year"`
	Genre           *string `json:"genre"`
	TotalCopies     int     `json:"total_copies"`
}

type updateBookRequest struct {
	Title           *string `json:"title"`
	Author          *string `json:"author"`
	ISBN            *string `json:"isbn"`
	PublicationYear *int    `json:"publication_year"`
	Genre           *string `json:"genre"`
	TotalCopies     *int    `json:"total_copies"`
}

// # Public Reads

/*
list returns the whole catalog.

GET /api/books

Response:
  - 200: []Book: All entries ordered by title
*/
func (handler *Handler) list(ctx context.Context, request *httpwire.Request) *httpwire.Response {
	books, err := handler.bookService.List(ctx)
	if err != nil {
		return httpwire.Error(ctx, err)
	}

	return httpwire.OK(books)
}

/*
search returns catalog entries matching the "q" query parameter.

GET /api/books/search?q=

Response:
  - 200: []Book: Matching entries ordered by title
*/
func (handler *Handler) search(ctx context.Context, request *httpwire.Request) *httpwire.Response {
	books, err := handler.bookService.Search(ctx, request.Query)
	if err != nil {
		return httpwire.Error(ctx, err)
	}

	return httpwire.OK(books)
}

// # Admin Writes

/*
create adds a new catalog entry.

POST /api/books

Request:
  - Body: createBookRequest

Response:
  - 201: Book: Created entry (available = total)
  - 400: ErrInvalidJSON: Bad input or validation failure
  - 401/403: Missing token / non-admin session
  - 409: Conflict: Duplicate ISBN
*/
func (handler *Handler) create(ctx context.Context, request *httpwire.Request) *httpwire.Response {
	if _, err := handler.authService.AuthenticateAdmin(ctx, request.BearerToken()); err != nil {
		return httpwire.Error(ctx, err)
	}

	var input createBookRequest
	if err := request.DecodeJSON(&input); err != nil {
		return httpwire.Error(ctx, validate.ErrInvalidJSON)
	}

	validator := &validate.Validator{}
	validator.Required(FieldTitle, input.Title).
		Required(FieldAuthor, input.Author).
		Required(FieldISBN, input.ISBN).
		Min(FieldTotalCopies, input.TotalCopies, 0)

	if err := validator.Err(); err != nil {
		return httpwire.Error(ctx, err)
	}

	book, err := handler.bookService.Create(ctx, CreateInput{
		Title:           input.Title,
		Author:          input.Author,
		ISBN:            input.ISBN,
		PublicationYear: input.PublicationYear,
		Genre:           input.Genre,
		TotalCopies:     input.TotalCopies,
	})
	if err != nil {
		return httpwire.Error(ctx, err)
	}

	return httpwire.Created(book)
}

/*
update applies a partial update to a catalog entry.

PUT /api/books/{id}

Request:
  - Body: updateBookRequest (absent fields are left unchanged)

Response:
  - 200: Book: The updated entry
  - 400: ErrInvalidJSON: Bad input or validation failure
  - 401/403: Missing token / non-admin session
  - 404: NotFound: No such book
  - 409: Conflict: Duplicate ISBN, or a copy-count delta that would drop
    availability below zero
*/
func (handler *Handler) update(ctx context.Context, request *httpwire.Request) *httpwire.Response {
	if _, err := handler.authService.AuthenticateAdmin(ctx, request.BearerToken()); err != nil {
		return httpwire.Error(ctx, err)
	}

	var input updateBookRequest
	if err := request.DecodeJSON(&input); err != nil {
		return httpwire.Error(ctx, validate.ErrInvalidJSON)
	}

	validator := &validate.Validator{}
	if input.Title != nil {
		validator.Required(FieldTitle, *input.Title)
	}
	if input.Author != nil {
		validator.Required(FieldAuthor, *input.Author)
	}
	if input.ISBN != nil {
		validator.Required(FieldISBN, *input.ISBN)
	}
	if input.TotalCopies != nil {
		validator.Min(FieldTotalCopies, *input.TotalCopies, 0)
	}

	if err := validator.Err(); err != nil {
		return httpwire.Error(ctx, err)
	}

	fields := UpdateFields{
		Title:           input.Title,
		Author:          input.Author,
		ISBN:            input.ISBN,
		PublicationYear: input.PublicationYear,
		Genre:           input.Genre,
		TotalCopies:     input.TotalCopies,
	}

	if fields.IsEmpty() {
		return httpwire.Error(ctx, validate.RequiredError("body", "At least one field must be provided"))
	}

	book, err := handler.bookService.Update(ctx, request.ID, fields)
	if err != nil {
		return httpwire.Error(ctx, err)
	}

	return httpwire.OK(book)
}

/*
remove deletes a catalog entry.

DELETE /api/books/{id}

Response:
  - 200: Message: Deleted
  - 401/403: Missing token / non-admin session
  - 404: NotFound: No such book
  - 409: Conflict: Lending records still reference the book
*/
func (handler *Handler) remove(ctx context.Context, request *httpwire.Request) *httpwire.Response {
	if _, err := handler.authService.AuthenticateAdmin(ctx, request.BearerToken()); err != nil {
		return httpwire.Error(ctx, err)
	}

	if err := handler.bookService.Delete(ctx, request.ID); err != nil {
		return httpwire.Error(ctx, err)
	}

	return httpwire.Message(http.StatusOK, "Book deleted successfully")
}
