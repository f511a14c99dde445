// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package books implements the library catalog: the book entity, its storage
contract, and the admin-managed CRUD plus public search operations.

# Invariants

Copy counts are the heart of this domain. At all times:

	0 <= available_copies <= total_copies

Every write that touches a copy count is guarded so the invariant holds even
under concurrent borrows and catalog edits.
*/
package books

import (
	"time"
)

// # Domain Entities

// Book represents one catalog entry with its physical copy counts.
type Book struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	ISBN            string    `json:"isbn"`
	PublicationYear *int      `json:"publication_year"`
	Genre           *string   `json:"genre"`
	TotalCopies     int       `json:"total_copies"`
	AvailableCopies int       `json:"available_copies"`
	CreatedAt       time.Time `json:"created_at"`
}

// # Field Identifiers

// Global field names for validation in the catalog domain.
const (
	FieldTitle           = "title"
	FieldAuthor          = "author"
	FieldISBN            = "isbn"
	FieldPublicationYear = "publication_year"
	FieldGenre           = "genre"
	FieldTotalCopies     = "total_copies"
)
