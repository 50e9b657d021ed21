package repository

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/N-Srikar/Athena/internal/errs"
	"github.com/N-Srikar/Athena/internal/fine"
	"github.com/N-Srikar/Athena/internal/model"
)

const borrowColumns = `id, record_uid, username, book_uid, request_date, due_date,
	approved_at, rejected_at, returned_at, status, fine, fine_paid`

func (r *repository) CreateBorrow(ctx context.Context, username, bookUid string, requestDate, dueDate time.Time) (model.BorrowRecord, error) {
	// Reservation is deferred to approval: the request only checks that a
	// copy is recorded available, it does not hold one.
	available, err := r.AvailableCopies(ctx, bookUid)
	if err != nil {
		return model.BorrowRecord{}, err
	}
	if available < 1 {
		return model.BorrowRecord{}, errs.ErrBookUnavailable
	}

	q, args, err := qb.Insert(borrowsTableName).
		Columns("record_uid", "username", "book_uid", "request_date", "due_date", "status").
		Values(uuid.New(), username, bookUid, requestDate, dueDate, model.StatusPending).
		Suffix("returning " + borrowColumns).
		ToSql()
	if err != nil {
		return model.BorrowRecord{}, err
	}
	var rec model.BorrowRecord
	if err := r.db.GetContext(ctx, &rec, q, args...); err != nil {
		r.log.Error("CreateBorrow", zap.String("q", q), zap.Any("args", args))
		return model.BorrowRecord{}, err
	}
	return rec, nil
}

// ApproveBorrow moves a pending record to APPROVED and reserves a copy.
// Both writes happen in one transaction: if no copy is left the status
// change rolls back with the decrement.
func (r *repository) ApproveBorrow(ctx context.Context, recordUid string, approvedAt time.Time) (model.BorrowRecord, error) {
	var rec model.BorrowRecord
	err := r.inTx(ctx, func(tx *sqlx.Tx) error {
		cur, err := lockBorrow(ctx, tx, recordUid)
		if err != nil {
			return err
		}
		if !model.CanTransition(cur.Status, model.StatusApproved) {
			return errs.ErrInvalidTransition
		}
		if err := reserveCopy(ctx, tx, cur.BookUid); err != nil {
			return err
		}

		const q = `
update borrow_records
    set status = $2, approved_at = $3
where record_uid = $1
returning ` + borrowColumns
		return tx.GetContext(ctx, &rec, q, recordUid, model.StatusApproved, approvedAt)
	})
	if err != nil {
		return model.BorrowRecord{}, err
	}
	return rec, nil
}

func (r *repository) RejectBorrow(ctx context.Context, recordUid string, rejectedAt time.Time) (model.BorrowRecord, error) {
	var rec model.BorrowRecord
	err := r.inTx(ctx, func(tx *sqlx.Tx) error {
		cur, err := lockBorrow(ctx, tx, recordUid)
		if err != nil {
			return err
		}
		if !model.CanTransition(cur.Status, model.StatusRejected) {
			return errs.ErrInvalidTransition
		}

		const q = `
update borrow_records
    set status = $2, rejected_at = $3
where record_uid = $1
returning ` + borrowColumns
		return tx.GetContext(ctx, &rec, q, recordUid, model.StatusRejected, rejectedAt)
	})
	if err != nil {
		return model.BorrowRecord{}, err
	}
	return rec, nil
}

// ReturnBorrow closes an approved record: the fine is computed from the due
// date, set exactly once, and the copy goes back on the shelf — all in one
// transaction.
func (r *repository) ReturnBorrow(ctx context.Context, recordUid string, returnedAt time.Time) (model.BorrowRecord, error) {
	var rec model.BorrowRecord
	err := r.inTx(ctx, func(tx *sqlx.Tx) error {
		cur, err := lockBorrow(ctx, tx, recordUid)
		if err != nil {
			return err
		}
		if !model.CanTransition(cur.Status, model.StatusReturned) {
			return errs.ErrInvalidTransition
		}

		amount := fine.Calculate(cur.DueDate, returnedAt)

		const q = `
update borrow_records
    set status = $2, returned_at = $3, fine = $4
where record_uid = $1
returning ` + borrowColumns
		if err := tx.GetContext(ctx, &rec, q, recordUid, model.StatusReturned, returnedAt, amount); err != nil {
			return err
		}
		return releaseCopy(ctx, tx, cur.BookUid)
	})
	if err != nil {
		return model.BorrowRecord{}, err
	}
	return rec, nil
}

func (r *repository) MarkFinePaid(ctx context.Context, recordUid string) (model.BorrowRecord, error) {
	var rec model.BorrowRecord
	err := r.inTx(ctx, func(tx *sqlx.Tx) error {
		cur, err := lockBorrow(ctx, tx, recordUid)
		if err != nil {
			return err
		}
		if cur.Status != model.StatusReturned || cur.Fine <= 0 {
			return errs.ErrNoFineDue
		}
		if cur.FinePaid {
			return errs.ErrFineAlreadyPaid
		}

		const q = `
update borrow_records
    set fine_paid = true
where record_uid = $1
returning ` + borrowColumns
		return tx.GetContext(ctx, &rec, q, recordUid)
	})
	if err != nil {
		return model.BorrowRecord{}, err
	}
	return rec, nil
}

func (r *repository) GetBorrow(ctx context.Context, recordUid string) (model.BorrowRecord, error) {
	q, args, err := qb.Select(borrowColumns).
		From(borrowsTableName).
		Where(sq.Eq{"record_uid": recordUid}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.BorrowRecord{}, err
	}
	var rec model.BorrowRecord
	if err := r.db.GetContext(ctx, &rec, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.BorrowRecord{}, errs.ErrNotFound
		}
		return model.BorrowRecord{}, err
	}
	return rec, nil
}

func (r *repository) ListBorrows(ctx context.Context, filter model.BorrowFilter) ([]model.BorrowRecord, error) {
	q := qb.Select(borrowColumns).
		From(borrowsTableName).
		OrderBy("request_date desc")

	if filter.Username != "" {
		q = q.Where(sq.Eq{"username": filter.Username})
	}
	if filter.Status != "" {
		q = q.Where(sq.Eq{"status": filter.Status})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	var recs []model.BorrowRecord
	if err := r.db.SelectContext(ctx, &recs, query, args...); err != nil {
		return nil, err
	}
	return recs, nil
}

func (r *repository) ListDueBorrows(ctx context.Context, username string, now time.Time) ([]model.BorrowRecord, error) {
	q, args, err := qb.Select(borrowColumns).
		From(borrowsTableName).
		Where(sq.Eq{"username": username}).
		Where(sq.Eq{"status": model.StatusApproved}).
		Where(sq.GtOrEq{"due_date": now}).
		OrderBy("due_date").
		ToSql()
	if err != nil {
		return nil, err
	}
	var recs []model.BorrowRecord
	if err := r.db.SelectContext(ctx, &recs, q, args...); err != nil {
		return nil, err
	}
	return recs, nil
}

func (r *repository) ListOverdueBorrows(ctx context.Context, now time.Time) ([]model.BorrowRecord, error) {
	q, args, err := qb.Select(borrowColumns).
		From(borrowsTableName).
		Where(sq.Eq{"status": model.StatusApproved}).
		Where(sq.Lt{"due_date": now}).
		OrderBy("due_date").
		ToSql()
	if err != nil {
		return nil, err
	}
	var recs []model.BorrowRecord
	if err := r.db.SelectContext(ctx, &recs, q, args...); err != nil {
		return nil, err
	}
	return recs, nil
}

func lockBorrow(ctx context.Context, tx *sqlx.Tx, recordUid string) (model.BorrowRecord, error) {
	const q = `
select ` + borrowColumns + `
from borrow_records
where record_uid = $1
for update`
	var rec model.BorrowRecord
	if err := tx.GetContext(ctx, &rec, q, recordUid); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.BorrowRecord{}, errs.ErrNotFound
		}
		return model.BorrowRecord{}, err
	}
	return rec, nil
}

func (r *repository) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
