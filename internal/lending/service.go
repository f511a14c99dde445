// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package lending

import (
	"context"
	"fmt"
	"time"

	"github.com/taibuivan/biblio/internal/platform/constants"
)

// # Service

// Service implements the loan engine on top of the record store.
type Service struct {
	recordStore RecordStore
}

// NewService constructs a new [Service] with its storage dependency.
func NewService(recordStore RecordStore) *Service {
	return &Service{recordStore: recordStore}
}

// # Loan Lifecycle

/*
Borrow opens a loan of one copy for the user.

Description: The due date is fixed at borrow time (14 days); the store takes
the copy and writes the record atomically.

Parameters:
  - context: context.Context
  - userID: int64
  - bookID: int64

Returns:
  - int64: The new record's id
  - error: apperr.NotFound (no such book), apperr.Conflict (no copy free), or
    storage failures
*/
func (service *Service) Borrow(context context.Context, userID, bookID int64) (int64, error) {
	dueDate := time.Now().Add(constants.LoanPeriod)
	return service.recordStore.Borrow(context, userID, bookID, dueDate)
}

/*
Return closes one of the user's open loans and releases its copy.

Description: Ownership is part of the store's guarded predicate; a caller can
never close another user's loan, and the failure reveals nothing about whether
the record exists.

Parameters:
  - context: context.Context
  - recordID: int64
  - userID: int64

Returns:
  - error: apperr.NotFound or storage failures
*/
func (service *Service) Return(context context.Context, recordID, userID int64) error {
	return service.recordStore.Return(context, recordID, userID)
}

// # Listings

// sweepThenList flips expired loans to overdue, then runs the read. Every
// listing goes through here so readers always observe current status without
// any background job.
func (service *Service) sweepThenList(context context.Context, list func() ([]RecordDetail, error)) ([]RecordDetail, error) {
	if err := service.recordStore.MarkOverdue(context); err != nil {
		return nil, fmt.Errorf("lending_service_sweep_failed: %w", err)
	}
	return list()
}

/*
ListMine returns the calling user's loans, newest first.

Parameters:
  - context: context.Context
  - userID: int64

Returns:
  - []RecordDetail: The user's loans with book details
  - error: Storage failures
*/
func (service *Service) ListMine(context context.Context, userID int64) ([]RecordDetail, error) {
	return service.sweepThenList(context, func() ([]RecordDetail, error) {
		return service.recordStore.ListByUser(context, userID)
	})
}

/*
ListActive returns every open loan for the admin view, newest first.

Parameters:
  - context: context.Context

Returns:
  - []RecordDetail: All borrowed and overdue loans
  - error: Storage failures
*/
func (service *Service) ListActive(context context.Context) ([]RecordDetail, error) {
	return service.sweepThenList(context, func() ([]RecordDetail, error) {
		return service.recordStore.ListActive(context)
	})
}

/*
ListOverdue returns every overdue loan for the admin view, newest first.

Parameters:
  - context: context.Context

Returns:
  - []RecordDetail: All overdue loans
  - error: Storage failures
*/
func (service *Service) ListOverdue(context context.Context) ([]RecordDetail, error) {
	return service.sweepThenList(context, func() ([]RecordDetail, error) {
		return service.recordStore.ListOverdue(context)
	})
}
