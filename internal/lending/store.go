// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package lending

import (
	"context"
	"time"
)

// # Loan Data Access

// RecordStore defines the data access contract for lending records.
//
// Borrow and Return are transactional by contract: each couples a guarded
// copy-count change with its record write so the availability invariant holds
// under concurrency.
type RecordStore interface {

	/*
		Borrow atomically takes one available copy and opens a loan.

		Description: The conditional decrement runs first; zero affected rows
		mean either the book does not exist (NotFound) or no copy is free
		(Conflict). A check followed by an unguarded decrement is not an
		acceptable implementation.

		Parameters:
		  - context: context.Context
		  - userID: int64
		  - bookID: int64
		  - dueDate: time.Time

		Returns:
		  - int64: The new record's id
		  - error: apperr.NotFound, apperr.Conflict, or persistence failures
	*/
	Borrow(context context.Context, userID, bookID int64, dueDate time.Time) (int64, error)

	/*
		Return atomically closes an open loan owned by the user and releases
		its copy.

		Description: The guarded update matches id, owning user, and an open
		status in one predicate. A missing record, a foreign owner, and an
		already-returned loan are indistinguishable: all yield NotFound.

		Parameters:
		  - context: context.Context
		  - recordID: int64
		  - userID: int64

		Returns:
		  - error: apperr.NotFound or persistence failures
	*/
	Return(context context.Context, recordID, userID int64) error

	/*
		MarkOverdue flips every borrowed record past its due date to overdue.
		Idempotent; returned records are never touched.

		Parameters:
		  - context: context.Context

		Returns:
		  - error: Persistence failures
	*/
	MarkOverdue(context context.Context) error

	/*
		ListByUser returns every loan of one user, newest first, joined with
		book details.

		Parameters:
		  - context: context.Context
		  - userID: int64

		Returns:
		  - []RecordDetail: The user's loans
		  - error: Database retrieval failures
	*/
	ListByUser(context context.Context, userID int64) ([]RecordDetail, error)

	/*
		ListActive returns every open loan (borrowed or overdue), newest first,
		joined with borrower and book details.

		Parameters:
		  - context: context.Context

		Returns:
		  - []RecordDetail: All open loans
		  - error: Database retrieval failures
	*/
	ListActive(context context.Context) ([]RecordDetail, error)

	/*
		ListOverdue returns every overdue loan, newest first, joined with
		borrower and book details.

		Parameters:
		  - context: context.Context

		Returns:
		  - []RecordDetail: All overdue loans
		  - error: Database retrieval failures
	*/
	ListOverdue(context context.Context) ([]RecordDetail, error)
}
