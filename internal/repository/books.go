package repository

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/N-Srikar/Athena/internal/errs"
	"github.com/N-Srikar/Athena/internal/model"
)

const bookColumns = `id, book_uid, title, author, category, total_copies, available_copies`

func (r *repository) CreateBook(ctx context.Context, req model.CreateBookRequest) (model.Book, error) {
	q, args, err := qb.Insert(booksTableName).
		Columns("book_uid", "title", "author", "category", "total_copies", "available_copies").
		Values(uuid.New(), req.Title, req.Author, req.Category, req.TotalCopies, req.TotalCopies).
		Suffix("returning " + bookColumns).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}
	var book model.Book
	if err := r.db.GetContext(ctx, &book, q, args...); err != nil {
		return model.Book{}, err
	}
	return book, nil
}

// UpdateBook applies partial catalog changes. A totalCopies change
// recomputes available_copies as the new total minus the copies currently
// out on loan, in the same statement; shrinking the total below the copies
// out would drive the ledger negative and is rejected by the range CHECK.
func (r *repository) UpdateBook(ctx context.Context, bookUid string, req model.UpdateBookRequest) (model.Book, error) {
	upd := qb.Update(booksTableName).Where(sq.Eq{"book_uid": bookUid})
	if req.Title != nil {
		upd = upd.Set("title", *req.Title)
	}
	if req.Author != nil {
		upd = upd.Set("author", *req.Author)
	}
	if req.Category != nil {
		upd = upd.Set("category", *req.Category)
	}
	if req.TotalCopies != nil {
		upd = upd.Set("total_copies", *req.TotalCopies).
			Set("available_copies", sq.Expr(
				`? - (select count(*) from borrow_records br where br.book_uid = books.book_uid and br.status = ?)`,
				*req.TotalCopies, model.StatusApproved))
	}
	q, args, err := upd.Suffix("returning " + bookColumns).ToSql()
	if err != nil {
		return model.Book{}, err
	}
	var book model.Book
	if err := r.db.GetContext(ctx, &book, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Book{}, errs.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.CheckViolation {
			return model.Book{}, errs.ErrCopiesOutstanding
		}
		return model.Book{}, err
	}
	return book, nil
}

func (r *repository) DeleteBook(ctx context.Context, bookUid string) error {
	q, args, err := qb.Delete(booksTableName).
		Where(sq.Eq{"book_uid": bookUid}).
		ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *repository) GetBook(ctx context.Context, bookUid string) (model.Book, error) {
	q, args, err := qb.Select(bookColumns).
		From(booksTableName).
		Where(sq.Eq{"book_uid": bookUid}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}
	var book model.Book
	if err := r.db.GetContext(ctx, &book, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Book{}, errs.ErrNotFound
		}
		return model.Book{}, err
	}
	return book, nil
}

func (r *repository) ListBooks(ctx context.Context, filter model.BookFilter, page, size int) (model.ListBooks, error) {
	q := qb.Select(bookColumns).
		From(booksTableName).
		OrderBy("title")

	if filter.Title != "" {
		q = q.Where(sq.ILike{"title": "%" + filter.Title + "%"})
	}
	if filter.Author != "" {
		q = q.Where(sq.ILike{"author": "%" + filter.Author + "%"})
	}
	if filter.Category != "" {
		q = q.Where(sq.Eq{"category": filter.Category})
	}
	if page != 0 && size != 0 {
		q = q.Limit(uint64(size)).Offset(uint64((page - 1) * size))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return model.ListBooks{}, err
	}

	var books []model.Book
	if err := r.db.SelectContext(ctx, &books, query, args...); err != nil {
		return model.ListBooks{}, err
	}

	return model.ListBooks{
		Paging: model.Paging{
			Page:          page,
			PageSize:      size,
			TotalElements: len(books),
		},
		Items: books,
	}, nil
}

func (r *repository) AvailableCopies(ctx context.Context, bookUid string) (int, error) {
	q, args, err := qb.Select("available_copies").
		From(booksTableName).
		Where(sq.Eq{"book_uid": bookUid}).
		ToSql()
	if err != nil {
		return 0, err
	}
	var count int
	if err := r.db.GetContext(ctx, &count, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, errs.ErrNotFound
		}
		return 0, err
	}
	return count, nil
}

// reserveCopy decrements available_copies by one as a single conditional
// update; the availability check and the write are the same statement, so
// two concurrent approvals of the last copy cannot both pass.
func reserveCopy(ctx context.Context, tx *sqlx.Tx, bookUid string) error {
	const q = `
update books
    set available_copies = available_copies - 1
where book_uid = $1 and available_copies > 0`
	res, err := tx.ExecContext(ctx, q, bookUid)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if exists, err := bookExists(ctx, tx, bookUid); err != nil {
			return err
		} else if !exists {
			return errs.ErrNotFound
		}
		return errs.ErrInventoryExhausted
	}
	return nil
}

// releaseCopy increments available_copies, clamped at total_copies. A clamp
// hit on an existing book means a double-return slipped past the state
// machine and is reported as an invariant violation.
func releaseCopy(ctx context.Context, tx *sqlx.Tx, bookUid string) error {
	const q = `
update books
    set available_copies = available_copies + 1
where book_uid = $1 and available_copies < total_copies`
	res, err := tx.ExecContext(ctx, q, bookUid)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if exists, err := bookExists(ctx, tx, bookUid); err != nil {
			return err
		} else if !exists {
			return errs.ErrNotFound
		}
		return errs.ErrInvariantViolation
	}
	return nil
}

func bookExists(ctx context.Context, tx *sqlx.Tx, bookUid string) (bool, error) {
	var exists bool
	err := tx.QueryRowContext(ctx,
		`select exists(select 1 from books where book_uid = $1)`, bookUid).Scan(&exists)
	return exists, err
}
