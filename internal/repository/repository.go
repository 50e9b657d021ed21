package repository

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/N-Srikar/Athena/internal/model"
	"github.com/N-Srikar/Athena/pkg/kafka"
)

type Repository interface {
	// catalog
	CreateBook(ctx context.Context, req model.CreateBookRequest) (model.Book, error)
	UpdateBook(ctx context.Context, bookUid string, req model.UpdateBookRequest) (model.Book, error)
	DeleteBook(ctx context.Context, bookUid string) error
	GetBook(ctx context.Context, bookUid string) (model.Book, error)
	ListBooks(ctx context.Context, filter model.BookFilter, page, size int) (model.ListBooks, error)
	AvailableCopies(ctx context.Context, bookUid string) (int, error)

	// borrow lifecycle
	CreateBorrow(ctx context.Context, username, bookUid string, requestDate, dueDate time.Time) (model.BorrowRecord, error)
	ApproveBorrow(ctx context.Context, recordUid string, approvedAt time.Time) (model.BorrowRecord, error)
	RejectBorrow(ctx context.Context, recordUid string, rejectedAt time.Time) (model.BorrowRecord, error)
	ReturnBorrow(ctx context.Context, recordUid string, returnedAt time.Time) (model.BorrowRecord, error)
	MarkFinePaid(ctx context.Context, recordUid string) (model.BorrowRecord, error)
	GetBorrow(ctx context.Context, recordUid string) (model.BorrowRecord, error)
	ListBorrows(ctx context.Context, filter model.BorrowFilter) ([]model.BorrowRecord, error)
	ListDueBorrows(ctx context.Context, username string, now time.Time) ([]model.BorrowRecord, error)
	ListOverdueBorrows(ctx context.Context, now time.Time) ([]model.BorrowRecord, error)

	// users
	CreateUser(ctx context.Context, user model.User) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	UpdateUser(ctx context.Context, id int, name, email *string) (model.User, error)
	DeleteUser(ctx context.Context, id int, role model.Role) error
	ListUsersByRole(ctx context.Context, role model.Role) ([]model.User, error)

	// stats
	InsertEvent(ctx context.Context, event kafka.BorrowEvent) error
	Stats(ctx context.Context) ([]model.StatsRow, error)
}

type repository struct {
	db  *sqlx.DB
	log *zap.Logger
}

func NewRepository(db *sqlx.DB, log *zap.Logger) (*repository, error) {
	return &repository{
		db:  db,
		log: log.Named("repo"),
	}, nil
}

const (
	booksTableName   = `books`
	borrowsTableName = `borrow_records`
	usersTableName   = `users`
	eventsTableName  = `borrow_events`
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
