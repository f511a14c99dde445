// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// PostgreSQL implementation of the lending storage contract.
//
// # Transactions
//
// Borrow and Return each run inside a pgx transaction so the copy-count change
// and the record write commit or roll back together. The rollback is deferred
// unconditionally; after a successful commit it is a no-op.
package lending

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/biblio/internal/platform/apperr"
)

// PostgresRecordStore implements the RecordStore interface using pgx.
type PostgresRecordStore struct {
	pool *pgxpool.Pool
}

// NewStore creates a new PostgreSQL implementation of the RecordStore.
func NewStore(pool *pgxpool.Pool) *PostgresRecordStore {
	return &PostgresRecordStore{pool: pool}
}

// detailColumns is the canonical scan order for joined record listings.
const detailColumns = `
	r.id, r.user_id, r.book_id, r.borrowed_at, r.due_date, r.returned_at, r.status,
	u.username, b.title, b.author`

/*
Borrow atomically takes one available copy and opens a loan.

Description: The decrement carries its own availability guard and runs first;
the record insert only happens once a copy is secured. Zero affected rows
trigger an existence probe inside the same transaction to tell "no such book"
apart from "no copy free".

Parameters:
  - context: context.Context
  - userID: int64
  - bookID: int64
  - dueDate: time.Time

Returns:
  - int64: The new record's id
  - error: apperr.NotFound, apperr.Conflict, or persistence failures
*/
func (store *PostgresRecordStore) Borrow(context context.Context, userID, bookID int64, dueDate time.Time) (int64, error) {
	tx, err := store.pool.Begin(context)
	if err != nil {
		return 0, fmt.Errorf("postgres_record_store_borrow_begin_failed: %w", err)
	}
	defer tx.Rollback(context)

	const decrement = `
		UPDATE books
		SET available_copies = available_copies - 1
		WHERE id = $1 AND available_copies > 0`

	tag, err := tx.Exec(context, decrement, bookID)
	if err != nil {
		return 0, fmt.Errorf("postgres_record_store_borrow_decrement_failed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		var exists bool
		probe := tx.QueryRow(context, "SELECT EXISTS (SELECT 1 FROM books WHERE id = $1)", bookID)
		if err := probe.Scan(&exists); err != nil {
			return 0, fmt.Errorf("postgres_record_store_borrow_probe_failed: %w", err)
		}
		if !exists {
			return 0, apperr.NotFound("Book")
		}
		return 0, apperr.Conflict("Book not available")
	}

	const insert = `
		INSERT INTO lending_records (user_id, book_id, due_date, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	var recordID int64
	err = tx.QueryRow(context, insert, userID, bookID, dueDate, StatusBorrowed).Scan(&recordID)
	if err != nil {
		return 0, fmt.Errorf("postgres_record_store_borrow_insert_failed: %w", err)
	}

	if err := tx.Commit(context); err != nil {
		return 0, fmt.Errorf("postgres_record_store_borrow_commit_failed: %w", err)
	}

	return recordID, nil
}

/*
Return atomically closes an open loan and releases its copy.

Description: The single guarded update matches record id, owning user, and an
open status; RETURNING hands back the book id for the availability increment.
The increment is unconditional — a copy released by a guarded close always has
room under the table's availability CHECK, because totals only shrink through
the same guarded delta statement.

Parameters:
  - context: context.Context
  - recordID: int64
  - userID: int64

Returns:
  - error: apperr.NotFound or persistence failures
*/
func (store *PostgresRecordStore) Return(context context.Context, recordID, userID int64) error {
	tx, err := store.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres_record_store_return_begin_failed: %w", err)
	}
	defer tx.Rollback(context)

	const closeLoan = `
		UPDATE lending_records
		SET status = $3, returned_at = NOW()
		WHERE id = $1 AND user_id = $2 AND status IN ($4, $5)
		RETURNING book_id`

	var bookID int64
	err = tx.QueryRow(context, closeLoan,
		recordID, userID, StatusReturned, StatusBorrowed, StatusOverdue,
	).Scan(&bookID)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Missing, foreign-owned, and already-returned records are
			// deliberately indistinguishable to the caller.
			return apperr.NotFound("Lending record")
		}
		return fmt.Errorf("postgres_record_store_return_close_failed: %w", err)
	}

	const increment = "UPDATE books SET available_copies = available_copies + 1 WHERE id = $1"
	if _, err := tx.Exec(context, increment, bookID); err != nil {
		return fmt.Errorf("postgres_record_store_return_increment_failed: %w", err)
	}

	if err := tx.Commit(context); err != nil {
		return fmt.Errorf("postgres_record_store_return_commit_failed: %w", err)
	}

	return nil
}

/*
MarkOverdue flips every borrowed record past its due date to overdue.

Description: Idempotent single statement; records already overdue or returned
are untouched.

Parameters:
  - context: context.Context

Returns:
  - error: Persistence failures
*/
func (store *PostgresRecordStore) MarkOverdue(context context.Context) error {
	const query = `
		UPDATE lending_records
		SET status = $1
		WHERE status = $2 AND due_date < NOW()`

	if _, err := store.pool.Exec(context, query, StatusOverdue, StatusBorrowed); err != nil {
		return fmt.Errorf("postgres_record_store_mark_overdue_failed: %w", err)
	}

	return nil
}

/*
ListByUser returns every loan of one user, newest first.

Parameters:
  - context: context.Context
  - userID: int64

Returns:
  - []RecordDetail: The user's loans with book details
  - error: Database retrieval failures
*/
func (store *PostgresRecordStore) ListByUser(context context.Context, userID int64) ([]RecordDetail, error) {
	query := `
		SELECT ` + detailColumns + `
		FROM lending_records r
		INNER JOIN users u ON u.id = r.user_id
		INNER JOIN books b ON b.id = r.book_id
		WHERE r.user_id = $1
		ORDER BY r.borrowed_at DESC`

	rows, err := store.pool.Query(context, query, userID)
	if err != nil {
		return nil, fmt.Errorf("postgres_record_store_list_by_user_failed: %w", err)
	}
	defer rows.Close()

	return collectDetails(rows)
}

/*
ListActive returns every open loan (borrowed or overdue), newest first.

Parameters:
  - context: context.Context

Returns:
  - []RecordDetail: All open loans with borrower and book details
  - error: Database retrieval failures
*/
func (store *PostgresRecordStore) ListActive(context context.Context) ([]RecordDetail, error) {
	query := `
		SELECT ` + detailColumns + `
		FROM lending_records r
		INNER JOIN users u ON u.id = r.user_id
		INNER JOIN books b ON b.id = r.book_id
		WHERE r.status IN ($1, $2)
		ORDER BY r.borrowed_at DESC`

	rows, err := store.pool.Query(context, query, StatusBorrowed, StatusOverdue)
	if err != nil {
		return nil, fmt.Errorf("postgres_record_store_list_active_failed: %w", err)
	}
	defer rows.Close()

	return collectDetails(rows)
}

/*
ListOverdue returns every overdue loan, newest first.

Parameters:
  - context: context.Context

Returns:
  - []RecordDetail: All overdue loans with borrower and book details
  - error: Database retrieval failures
*/
func (store *PostgresRecordStore) ListOverdue(context context.Context) ([]RecordDetail, error) {
	query := `
		SELECT ` + detailColumns + `
		FROM lending_records r
		INNER JOIN users u ON u.id = r.user_id
		INNER JOIN books b ON b.id = r.book_id
		WHERE r.status = $1
		ORDER BY r.borrowed_at DESC`

	rows, err := store.pool.Query(context, query, StatusOverdue)
	if err != nil {
		return nil, fmt.Errorf("postgres_record_store_list_overdue_failed: %w", err)
	}
	defer rows.Close()

	return collectDetails(rows)
}

// collectDetails drains rows into a slice, always returning a non-nil slice so
// empty results serialize as [] rather than null.
func collectDetails(rows pgx.Rows) ([]RecordDetail, error) {
	details := []RecordDetail{}
	for rows.Next() {
		var detail RecordDetail
		if err := rows.Scan(
			&detail.ID,
			&detail.UserID,
			&detail.BookID,
			&detail.BorrowedAt,
			&detail.DueDate,
			&detail.ReturnedAt,
			&detail.Status,
			&detail.Username,
			&detail.Title,
			&detail.Author,
		); err != nil {
			return nil, fmt.Errorf("postgres_record_store_scan_failed: %w", err)
		}
		details = append(details, detail)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_record_store_rows_failed: %w", err)
	}

	return details, nil
}

// compile-time interface check
var _ RecordStore = (*PostgresRecordStore)(nil)
