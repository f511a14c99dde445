// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package books

import (
	"context"
	"fmt"

	"github.com/taibuivan/biblio/pkg/fold"
)

// # Service

// Service implements catalog management and public search.
type Service struct {
	bookStore BookStore
}

// NewService constructs a new [Service] with its storage dependency.
func NewService(bookStore BookStore) *Service {
	return &Service{bookStore: bookStore}
}

// # Catalog Reads

/*
List returns the whole catalog ordered by title.

Parameters:
  - context: context.Context

Returns:
  - []Book: All catalog entries
  - error: Storage failures
*/
func (service *Service) List(context context.Context) ([]Book, error) {
	books, err := service.bookStore.List(context)
	if err != nil {
		return nil, fmt.Errorf("book_service_list_failed: %w", err)
	}
	return books, nil
}

/*
Search returns catalog entries matching a free-text query.

Description: The query is folded (diacritics stripped, case and whitespace
normalized) before matching, so "Émile Zolà" finds "emile zola". An empty
query degenerates to the full catalog.

Parameters:
  - context: context.Context
  - query: string (raw user input)

Returns:
  - []Book: Matching entries ordered by title
  - error: Storage failures
*/
func (service *Service) Search(context context.Context, query string) ([]Book, error) {
	books, err := service.bookStore.Search(context, fold.Query(query))
	if err != nil {
		return nil, fmt.Errorf("book_service_search_failed: %w", err)
	}
	return books, nil
}

// # Catalog Management

// CreateInput holds the data required to add a catalog entry.
type CreateInput struct {
	Title           string
	Author          string
	ISBN            string
	PublicationYear *int
	Genre           *string
	TotalCopies     int
}

/*
Create adds a new book to the catalog.

Description: Available copies start equal to the total. ISBN uniqueness is
arbitrated by the store.

Parameters:
  - context: context.Context
  - input: CreateInput

Returns:
  - *Book: Created entity
  - error: apperr.Conflict on a duplicate ISBN, or storage failures
*/
func (service *Service) Create(context context.Context, input CreateInput) (*Book, error) {
	book := &Book{
		Title:           input.Title,
		Author:          input.Author,
		ISBN:            input.ISBN,
		PublicationYear: input.PublicationYear,
		Genre:           input.Genre,
		TotalCopies:     input.TotalCopies,
	}

	if err := service.bookStore.Create(context, book); err != nil {
		return nil, err
	}

	return book, nil
}

/*
Update applies a partial update to a catalog entry.

Description: Copy-count semantics live in the store's guarded statement; the
service only forwards the requested fields.

Parameters:
  - context: context.Context
  - id: int64
  - fields: UpdateFields

Returns:
  - *Book: The updated entity
  - error: apperr.NotFound, apperr.Conflict, or storage failures
*/
func (service *Service) Update(context context.Context, id int64, fields UpdateFields) (*Book, error) {
	return service.bookStore.Update(context, id, fields)
}

/*
Delete removes a catalog entry.

Parameters:
  - context: context.Context
  - id: int64

Returns:
  - error: apperr.NotFound, apperr.Conflict (active loans), or storage failures
*/
func (service *Service) Delete(context context.Context, id int64) error {
	return service.bookStore.Delete(context, id)
}
