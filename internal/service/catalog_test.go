package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/N-Srikar/Athena/internal/errs"
	"github.com/N-Srikar/Athena/internal/model"
)

func (r *fakeRepo) CreateBook(_ context.Context, req model.CreateBookRequest) (model.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := &model.Book{
		BookUid:         uuid.New().String(),
		Title:           req.Title,
		Author:          req.Author,
		Category:        req.Category,
		TotalCopies:     req.TotalCopies,
		AvailableCopies: req.TotalCopies,
	}
	r.books[b.BookUid] = b
	return *b, nil
}

func (r *fakeRepo) UpdateBook(_ context.Context, bookUid string, req model.UpdateBookRequest) (model.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.books[bookUid]
	if !ok {
		return model.Book{}, errs.ErrNotFound
	}
	if req.Title != nil {
		b.Title = *req.Title
	}
	if req.Author != nil {
		b.Author = *req.Author
	}
	if req.Category != nil {
		b.Category = *req.Category
	}
	if req.TotalCopies != nil {
		out := 0
		for _, rec := range r.borrows {
			if rec.BookUid == bookUid && rec.Status == model.StatusApproved {
				out++
			}
		}
		if *req.TotalCopies < out {
			return model.Book{}, errs.ErrCopiesOutstanding
		}
		b.TotalCopies = *req.TotalCopies
		b.AvailableCopies = *req.TotalCopies - out
	}
	return *b, nil
}

// Changing totalCopies while copies are out must keep the ledger
// consistent: available counts only the copies actually on the shelf, and
// the next return still has room to put its copy back.
func TestService_UpdateBookKeepsLedgerConsistent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	const bookUid = "f7cdc58f-2caf-4b15-9727-f89dcc629b27"

	repo := newFakeRepo(model.Book{
		BookUid:         bookUid,
		Title:           "The Go Programming Language",
		TotalCopies:     5,
		AvailableCopies: 5,
	})
	svc := newTestService(repo, start)

	var recs []model.BorrowRecord
	for _, member := range []string{"alice@athena.io", "bob@athena.io", "carol@athena.io"} {
		rec, err := svc.RequestBorrow(ctx, model.CreateBorrowRequest{BookUid: bookUid, Username: member})
		require.NoError(t, err)
		rec, err = svc.ApproveBorrow(ctx, rec.RecordUid)
		require.NoError(t, err)
		recs = append(recs, rec)
	}

	// Three copies out: re-stating the same total keeps available at 2,
	// not 5.
	total := 5
	book, err := svc.UpdateBook(ctx, bookUid, model.UpdateBookRequest{TotalCopies: &total})
	require.NoError(t, err)
	require.Equal(t, 5, book.TotalCopies)
	require.Equal(t, 2, book.AvailableCopies)

	// The next return still fits inside the ledger.
	rec, err := svc.ReturnBorrow(ctx, recs[0].RecordUid, model.ReturnBorrowRequest{})
	require.NoError(t, err)
	require.Equal(t, model.StatusReturned, rec.Status)
	avail, err := svc.CheckAvailable(ctx, bookUid)
	require.NoError(t, err)
	require.Equal(t, 3, avail.AvailableCopies)

	// Two copies remain out; the total cannot shrink below them.
	shrink := 1
	_, err = svc.UpdateBook(ctx, bookUid, model.UpdateBookRequest{TotalCopies: &shrink})
	require.ErrorIs(t, err, errs.ErrCopiesOutstanding)

	grow := 10
	book, err = svc.UpdateBook(ctx, bookUid, model.UpdateBookRequest{TotalCopies: &grow})
	require.NoError(t, err)
	require.Equal(t, 8, book.AvailableCopies)
}

func TestService_CreateBookZeroCopies(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := newFakeRepo()
	svc := NewService(repo, nil, nil, zap.NewNop())

	book, err := svc.CreateBook(ctx, model.CreateBookRequest{
		Title:  "Out-of-print pamphlet",
		Author: "Anon",
	})
	require.NoError(t, err)
	require.Equal(t, 0, book.TotalCopies)
	require.Equal(t, 0, book.AvailableCopies)

	// A zero-copy title exists in the catalog but cannot be requested.
	_, err = svc.RequestBorrow(ctx, model.CreateBorrowRequest{BookUid: book.BookUid, Username: "alice@athena.io"})
	require.ErrorIs(t, err, errs.ErrBookUnavailable)
}
