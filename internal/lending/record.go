// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package lending implements the loan engine: borrowing, returning, and overdue
tracking for catalog books.

# Concurrency Model

Availability is the contended resource. Borrowing decrements a book's
available copies with a single conditional statement inside a transaction, so
N concurrent borrows of a 1-copy book produce exactly one loan — there is no
window between "check" and "take".

# Overdue Tracking

Overdue status is computed lazily. Every listing first sweeps expired loans
(borrowed past their due date) to overdue, then reads; no background job ever
runs.
*/
package lending

import (
	"time"
)

// # Loan Status

// Status is the lifecycle state of a lending record.
type Status string

const (
	// StatusBorrowed marks an open loan inside its lending period.
	StatusBorrowed Status = "borrowed"

	// StatusOverdue marks an open loan past its due date.
	StatusOverdue Status = "overdue"

	// StatusReturned marks a closed loan. Terminal.
	StatusReturned Status = "returned"
)

// # Domain Entities

// Record represents one loan of one physical copy.
type Record struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"user_id"`
	BookID     int64      `json:"book_id"`
	BorrowedAt time.Time  `json:"borrowed_at"`
	DueDate    time.Time  `json:"due_date"`
	ReturnedAt *time.Time `json:"returned_at"`
	Status     Status     `json:"status"`
}

// RecordDetail is the joined listing shape: the record plus the borrower's
// username and the book's title and author.
type RecordDetail struct {
	Record
	Username string `json:"username"`
	Title    string `json:"title"`
	Author   string `json:"author"`
}
