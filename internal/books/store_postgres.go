// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// PostgreSQL implementation of the catalog storage contract.
//
// # Dynamic SQL
//
// Partial updates and search filters are assembled with squirrel so optional
// fields never force a multi-statement read-modify-write cycle.
package books

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/biblio/internal/platform/apperr"
	"github.com/taibuivan/biblio/internal/platform/dberr"
)

// psql is the shared statement builder bound to Postgres placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// bookColumns is the canonical scan order for book rows.
const bookColumns = "id, title, author, isbn, publication_year, genre, total_copies, available_copies, created_at"

// PostgresBookStore implements the BookStore interface using pgx.
type PostgresBookStore struct {
	pool *pgxpool.Pool
}

// NewStore creates a new PostgreSQL implementation of the BookStore.
func NewStore(pool *pgxpool.Pool) *PostgresBookStore {
	return &PostgresBookStore{pool: pool}
}

// scanBook hydrates one Book from a row in bookColumns order.
func scanBook(row pgx.Row, book *Book) error {
	return row.Scan(
		&book.ID,
		&book.Title,
		&book.Author,
		&book.ISBN,
		&book.PublicationYear,
		&book.Genre,
		&book.TotalCopies,
		&book.AvailableCopies,
		&book.CreatedAt,
	)
}

/*
Create persists a new catalog entry and assigns its id.

Description: Available copies start equal to the total; ISBN uniqueness is
enforced by the table constraint and surfaces as a client-safe Conflict.

Parameters:
  - context: context.Context
  - book: *Book (ID, AvailableCopies, and CreatedAt are filled in)

Returns:
  - error: apperr.Conflict on a duplicate ISBN, or connectivity errors
*/
func (store *PostgresBookStore) Create(context context.Context, book *Book) error {
	const query = `
		INSERT INTO books (title, author, isbn, publication_year, genre, total_copies, available_copies)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING id, available_copies, created_at`

	err := store.pool.QueryRow(context, query,
		book.Title,
		book.Author,
		book.ISBN,
		book.PublicationYear,
		book.Genre,
		book.TotalCopies,
	).Scan(&book.ID, &book.AvailableCopies, &book.CreatedAt)

	if err != nil {
		return dberr.Wrap(err, "Book with this ISBN already exists")
	}

	return nil
}

/*
FindByID retrieves a catalog entry by its primary key.

Parameters:
  - context: context.Context
  - id: int64

Returns:
  - *Book: Hydrated entity
  - error: apperr.NotFound or database errors
*/
func (store *PostgresBookStore) FindByID(context context.Context, id int64) (*Book, error) {
	query := "SELECT " + bookColumns + " FROM books WHERE id = $1"

	book := &Book{}
	if err := scanBook(store.pool.QueryRow(context, query, id), book); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Book")
		}
		return nil, fmt.Errorf("postgres_book_store_find_by_id_failed: %w", err)
	}

	return book, nil
}

/*
List returns the whole catalog ordered by title.

Parameters:
  - context: context.Context

Returns:
  - []Book: All catalog entries
  - error: Database retrieval failures
*/
func (store *PostgresBookStore) List(context context.Context) ([]Book, error) {
	query := "SELECT " + bookColumns + " FROM books ORDER BY title ASC"

	rows, err := store.pool.Query(context, query)
	if err != nil {
		return nil, fmt.Errorf("postgres_book_store_list_failed: %w", err)
	}
	defer rows.Close()

	return collectBooks(rows)
}

/*
Update applies a partial catalog update in one guarded statement.

Description: Only the provided fields are written. A total-copy change shifts
available_copies by the identical delta in the same statement; the WHERE guard
rejects any shift that would leave availability outside [0, new_total], so the
copy-count invariant never breaks even while borrows run concurrently. Zero
affected rows trigger an existence probe to distinguish a missing book from a
rejected delta.

Parameters:
  - context: context.Context
  - id: int64
  - fields: UpdateFields

Returns:
  - *Book: The updated entity
  - error: apperr.NotFound, apperr.Conflict, or persistence failures
*/
func (store *PostgresBookStore) Update(context context.Context, id int64, fields UpdateFields) (*Book, error) {
	builder := psql.Update("books").Where(sq.Eq{"id": id})

	if fields.Title != nil {
		builder = builder.Set("title", *fields.Title)
	}
	if fields.Author != nil {
		builder = builder.Set("author", *fields.Author)
	}
	if fields.ISBN != nil {
		builder = builder.Set("isbn", *fields.ISBN)
	}
	if fields.PublicationYear != nil {
		builder = builder.Set("publication_year", *fields.PublicationYear)
	}
	if fields.Genre != nil {
		builder = builder.Set("genre", *fields.Genre)
	}
	if fields.TotalCopies != nil {
		newTotal := *fields.TotalCopies
		builder = builder.
			Set("total_copies", newTotal).
			Set("available_copies", sq.Expr("available_copies + (? - total_copies)", newTotal)).
			Where(sq.Expr("available_copies + (? - total_copies) BETWEEN 0 AND ?", newTotal, newTotal))
	}

	query, args, err := builder.Suffix("RETURNING " + bookColumns).ToSql()
	if err != nil {
		return nil, fmt.Errorf("postgres_book_store_update_build_failed: %w", err)
	}

	book := &Book{}
	if err := scanBook(store.pool.QueryRow(context, query, args...), book); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if _, probeErr := store.FindByID(context, id); probeErr != nil {
				return nil, probeErr
			}
			return nil, apperr.Conflict("Total copies cannot drop below the number currently borrowed")
		}
		return nil, dberr.Wrap(err, "Book with this ISBN already exists")
	}

	return book, nil
}

/*
Delete removes a catalog entry.

Description: The lending-record foreign key restricts deletion while loans
reference the book; the violation surfaces as a client-safe Conflict.

Parameters:
  - context: context.Context
  - id: int64

Returns:
  - error: apperr.NotFound, apperr.Conflict, or persistence failures
*/
func (store *PostgresBookStore) Delete(context context.Context, id int64) error {
	const query = "DELETE FROM books WHERE id = $1"

	tag, err := store.pool.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "Book has lending records and cannot be deleted")
	}

	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Book")
	}

	return nil
}

/*
Search returns catalog entries matching the pattern, ordered by title.

Description: Case-insensitive substring match over title, author, ISBN, and
genre. NULL genres simply never match.

Parameters:
  - context: context.Context
  - pattern: string

Returns:
  - []Book: Matching entries
  - error: Database retrieval failures
*/
func (store *PostgresBookStore) Search(context context.Context, pattern string) ([]Book, error) {
	like := "%" + pattern + "%"

	query, args, err := psql.
		Select(bookColumns).
		From("books").
		Where(sq.Or{
			sq.ILike{"title": like},
			sq.ILike{"author": like},
			sq.ILike{"isbn": like},
			sq.ILike{"genre": like},
		}).
		OrderBy("title ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("postgres_book_store_search_build_failed: %w", err)
	}

	rows, err := store.pool.Query(context, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres_book_store_search_failed: %w", err)
	}
	defer rows.Close()

	return collectBooks(rows)
}

// collectBooks drains rows into a slice, always returning a non-nil slice so
// empty results serialize as [] rather than null.
func collectBooks(rows pgx.Rows) ([]Book, error) {
	books := []Book{}
	for rows.Next() {
		var book Book
		if err := scanBook(rows, &book); err != nil {
			return nil, fmt.Errorf("postgres_book_store_scan_failed: %w", err)
		}
		books = append(books, book)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_book_store_rows_failed: %w", err)
	}

	return books, nil
}

// compile-time interface check
var _ BookStore = (*PostgresBookStore)(nil)
