// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package lending

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/biblio/internal/platform/apperr"
)

// # In-Memory Fake

// fakeBook carries the copy counts the fake guards.
type fakeBook struct {
	title     string
	author    string
	available int
}

// fakeRecordStore is a mutex-guarded in-memory RecordStore. The mutex spans
// each whole operation, mirroring the transactional guarantees of the SQL
// implementation.
type fakeRecordStore struct {
	mu      sync.Mutex
	nextID  int64
	books   map[int64]*fakeBook
	records map[int64]*Record
	users   map[int64]string
}

func newFakeRecordStore() *fakeRecordStore {
	return &fakeRecordStore{
		nextID:  1,
		books:   map[int64]*fakeBook{},
		records: map[int64]*Record{},
		users:   map[int64]string{},
	}
}

func (store *fakeRecordStore) addBook(id int64, title, author string, copies int) {
	store.books[id] = &fakeBook{title: title, author: author, available: copies}
}

func (store *fakeRecordStore) addUser(id int64, username string) {
	store.users[id] = username
}

func (store *fakeRecordStore) Borrow(_ context.Context, userID, bookID int64, dueDate time.Time) (int64, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	book, ok := store.books[bookID]
	if !ok {
		return 0, apperr.NotFound("Book")
	}
	if book.available == 0 {
		return 0, apperr.Conflict("Book not available")
	}

	book.available--
	record := &Record{
		ID:         store.nextID,
		UserID:     userID,
		BookID:     bookID,
		BorrowedAt: time.Now(),
		DueDate:    dueDate,
		Status:     StatusBorrowed,
	}
	store.nextID++
	store.records[record.ID] = record
	return record.ID, nil
}

func (store *fakeRecordStore) Return(_ context.Context, recordID, userID int64) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	record, ok := store.records[recordID]
	if !ok || record.UserID != userID || record.Status == StatusReturned {
		return apperr.NotFound("Lending record")
	}

	now := time.Now()
	record.Status = StatusReturned
	record.ReturnedAt = &now
	store.books[record.BookID].available++
	return nil
}

func (store *fakeRecordStore) MarkOverdue(_ context.Context) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	now := time.Now()
	for _, record := range store.records {
		if record.Status == StatusBorrowed && record.DueDate.Before(now) {
			record.Status = StatusOverdue
		}
	}
	return nil
}

func (store *fakeRecordStore) list(filter func(*Record) bool) []RecordDetail {
	store.mu.Lock()
	defer store.mu.Unlock()

	details := []RecordDetail{}
	for _, record := range store.records {
		if !filter(record) {
			continue
		}
		book := store.books[record.BookID]
		details = append(details, RecordDetail{
			Record:   *record,
			Username: store.users[record.UserID],
			Title:    book.title,
			Author:   book.author,
		})
	}
	sort.Slice(details, func(i, j int) bool {
		return details[i].BorrowedAt.After(details[j].BorrowedAt)
	})
	return details
}

func (store *fakeRecordStore) ListByUser(_ context.Context, userID int64) ([]RecordDetail, error) {
	return store.list(func(r *Record) bool { return r.UserID == userID }), nil
}

func (store *fakeRecordStore) ListActive(_ context.Context) ([]RecordDetail, error) {
	return store.list(func(r *Record) bool {
		return r.Status == StatusBorrowed || r.Status == StatusOverdue
	}), nil
}

func (store *fakeRecordStore) ListOverdue(_ context.Context) ([]RecordDetail, error) {
	return store.list(func(r *Record) bool { return r.Status == StatusOverdue }), nil
}

// compile-time interface check
var _ RecordStore = (*fakeRecordStore)(nil)

func newTestService(t *testing.T) (*Service, *fakeRecordStore) {
	t.Helper()
	store := newFakeRecordStore()
	return NewService(store), store
}

// # Borrowing

func TestService_Borrow(t *testing.T) {
	ctx := context.Background()
	service, store := newTestService(t)
	store.addUser(1, "alice")
	store.addBook(10, "Solaris", "Stanislaw Lem", 2)

	recordID, err := service.Borrow(ctx, 1, 10)
	require.NoError(t, err)
	require.NotZero(t, recordID)

	record := store.records[recordID]
	assert.Equal(t, StatusBorrowed, record.Status)
	assert.WithinDuration(t, time.Now().Add(14*24*time.Hour), record.DueDate, time.Minute)
	assert.Equal(t, 1, store.books[10].available)
}

func TestService_Borrow_Failures(t *testing.T) {
	ctx := context.Background()
	service, store := newTestService(t)
	store.addUser(1, "alice")
	store.addBook(10, "Solaris", "Stanislaw Lem", 0)

	testCases := []struct {
		name       string
		bookID     int64
		wantStatus int
	}{
		{name: "unknown book", bookID: 99, wantStatus: http.StatusNotFound},
		{name: "no copy available", bookID: 10, wantStatus: http.StatusConflict},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := service.Borrow(ctx, 1, testCase.bookID)
			require.Error(t, err)

			appError := apperr.As(err)
			require.NotNil(t, appError)
			assert.Equal(t, testCase.wantStatus, appError.HTTPStatus)
		})
	}
}

// TestService_Borrow_SingleWinner races N borrowers against a single copy and
// asserts exactly one loan is granted and availability never goes negative.
func TestService_Borrow_SingleWinner(t *testing.T) {
	ctx := context.Background()
	service, store := newTestService(t)
	store.addBook(10, "Roadside Picnic", "Arkady Strugatsky", 1)

	const borrowers = 32
	for id := int64(1); id <= borrowers; id++ {
		store.addUser(id, "user")
	}

	var wg sync.WaitGroup
	results := make(chan error, borrowers)
	for id := int64(1); id <= borrowers; id++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			_, err := service.Borrow(ctx, userID, 10)
			results <- err
		}(id)
	}
	wg.Wait()
	close(results)

	won, lost := 0, 0
	for err := range results {
		if err == nil {
			won++
			continue
		}
		lost++
		appError := apperr.As(err)
		require.NotNil(t, appError)
		assert.Equal(t, http.StatusConflict, appError.HTTPStatus)
	}

	assert.Equal(t, 1, won, "exactly one borrower wins the last copy")
	assert.Equal(t, borrowers-1, lost)
	assert.Equal(t, 0, store.books[10].available)
}

// # Returning

func TestService_Return(t *testing.T) {
	ctx := context.Background()
	service, store := newTestService(t)
	store.addUser(1, "alice")
	store.addBook(10, "Solaris", "Stanislaw Lem", 1)

	recordID, err := service.Borrow(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, store.books[10].available)

	require.NoError(t, service.Return(ctx, recordID, 1))
	assert.Equal(t, 1, store.books[10].available)

	record := store.records[recordID]
	assert.Equal(t, StatusReturned, record.Status)
	require.NotNil(t, record.ReturnedAt)
}

func TestService_Return_Failures(t *testing.T) {
	ctx := context.Background()
	service, store := newTestService(t)
	store.addUser(1, "alice")
	store.addUser(2, "bob")
	store.addBook(10, "Solaris", "Stanislaw Lem", 1)

	recordID, err := service.Borrow(ctx, 1, 10)
	require.NoError(t, err)

	testCases := []struct {
		name     string
		recordID int64
		userID   int64
	}{
		{name: "unknown record", recordID: 99, userID: 1},
		{name: "foreign owner", recordID: recordID, userID: 2},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			err := service.Return(ctx, testCase.recordID, testCase.userID)
			require.Error(t, err)

			// Missing and foreign-owned records are indistinguishable.
			appError := apperr.As(err)
			require.NotNil(t, appError)
			assert.Equal(t, http.StatusNotFound, appError.HTTPStatus)
		})
	}
}

// TestService_Return_NotIdempotent asserts a second return of the same record
// fails and never double-increments availability.
func TestService_Return_NotIdempotent(t *testing.T) {
	ctx := context.Background()
	service, store := newTestService(t)
	store.addUser(1, "alice")
	store.addBook(10, "Solaris", "Stanislaw Lem", 1)

	recordID, err := service.Borrow(ctx, 1, 10)
	require.NoError(t, err)

	require.NoError(t, service.Return(ctx, recordID, 1))

	err = service.Return(ctx, recordID, 1)
	require.Error(t, err)
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, http.StatusNotFound, appError.HTTPStatus)

	assert.Equal(t, 1, store.books[10].available, "availability incremented exactly once")
}

// # Overdue Sweeping

// TestService_Listings_SweepOverdue asserts that expired loans surface as
// overdue in every listing without any explicit status update call.
func TestService_Listings_SweepOverdue(t *testing.T) {
	ctx := context.Background()
	service, store := newTestService(t)
	store.addUser(1, "alice")
	store.addBook(10, "Solaris", "Stanislaw Lem", 2)

	expiredID, err := service.Borrow(ctx, 1, 10)
	require.NoError(t, err)
	currentID, err := service.Borrow(ctx, 1, 10)
	require.NoError(t, err)

	// Backdate the first loan past its due date.
	store.mu.Lock()
	store.records[expiredID].DueDate = time.Now().Add(-time.Hour)
	store.mu.Unlock()

	mine, err := service.ListMine(ctx, 1)
	require.NoError(t, err)
	require.Len(t, mine, 2)

	statusByID := map[int64]Status{}
	for _, detail := range mine {
		statusByID[detail.ID] = detail.Status
	}
	assert.Equal(t, StatusOverdue, statusByID[expiredID])
	assert.Equal(t, StatusBorrowed, statusByID[currentID])

	overdue, err := service.ListOverdue(ctx)
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, expiredID, overdue[0].ID)
	assert.Equal(t, "alice", overdue[0].Username)
	assert.Equal(t, "Solaris", overdue[0].Title)

	active, err := service.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 2, "active covers both borrowed and overdue")
}

// # Full Cycle

// TestService_OneCopyCycle walks the 1-copy scenario: borrow, competing borrow
// fails, return, competing borrow succeeds.
func TestService_OneCopyCycle(t *testing.T) {
	ctx := context.Background()
	service, store := newTestService(t)
	store.addUser(1, "alice")
	store.addUser(2, "bob")
	store.addBook(10, "Solaris", "Stanislaw Lem", 1)

	aliceLoan, err := service.Borrow(ctx, 1, 10)
	require.NoError(t, err)

	_, err = service.Borrow(ctx, 2, 10)
	require.Error(t, err)

	require.NoError(t, service.Return(ctx, aliceLoan, 1))

	bobLoan, err := service.Borrow(ctx, 2, 10)
	require.NoError(t, err)
	assert.NotEqual(t, aliceLoan, bobLoan)
	assert.Equal(t, 0, store.books[10].available)
}
