// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package books

import (
	"context"
)

// # Update Shape

// UpdateFields carries the optional fields of a partial catalog update.
//
// A nil pointer means "leave unchanged". Changing TotalCopies shifts
// AvailableCopies by the same delta inside the store, atomically.
type UpdateFields struct {
	Title           *string
	Author          *string
	ISBN            *string
	PublicationYear *int
	Genre           *string
	TotalCopies     *int
}

// IsEmpty reports whether no field is set.
func (fields UpdateFields) IsEmpty() bool {
	return fields.Title == nil &&
		fields.Author == nil &&
		fields.ISBN == nil &&
		fields.PublicationYear == nil &&
		fields.Genre == nil &&
		fields.TotalCopies == nil
}

// # Catalog Data Access

// BookStore defines the data access contract for the catalog.
type BookStore interface {

	/*
		Create persists a new book and assigns its id. Available copies start
		equal to the total.

		Parameters:
		  - context: context.Context
		  - book: *Book

		Returns:
		  - error: apperr.Conflict on a duplicate ISBN, or persistence failures
	*/
	Create(context context.Context, book *Book) error

	/*
		FindByID returns the book with the given id.

		Parameters:
		  - context: context.Context
		  - id: int64

		Returns:
		  - *Book: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByID(context context.Context, id int64) (*Book, error)

	/*
		List returns the whole catalog ordered by title.

		Parameters:
		  - context: context.Context

		Returns:
		  - []Book: All catalog entries
		  - error: Database retrieval failures
	*/
	List(context context.Context) ([]Book, error)

	/*
		Update applies a partial update in one guarded statement. A total-copy
		change shifts availability by the same delta; a shift that would leave
		available_copies outside [0, new_total] is rejected.

		Parameters:
		  - context: context.Context
		  - id: int64
		  - fields: UpdateFields

		Returns:
		  - *Book: The updated entity
		  - error: apperr.NotFound, apperr.Conflict (ISBN or copy-count
		    violation), or persistence failures
	*/
	Update(context context.Context, id int64, fields UpdateFields) (*Book, error)

	/*
		Delete removes a book from the catalog.

		Parameters:
		  - context: context.Context
		  - id: int64

		Returns:
		  - error: apperr.NotFound when absent, apperr.Conflict when lending
		    records still reference the book, or persistence failures
	*/
	Delete(context context.Context, id int64) error

	/*
		Search returns catalog entries whose title, author, ISBN, or genre
		contains the pattern (case-insensitive substring), ordered by title.

		Parameters:
		  - context: context.Context
		  - pattern: string (pre-folded search input)

		Returns:
		  - []Book: Matching entries
		  - error: Database retrieval failures
	*/
	Search(context context.Context, pattern string) ([]Book, error)
}
