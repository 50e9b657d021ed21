package handler

import (
	"context"

	"github.com/N-Srikar/Athena/internal/model"
	"github.com/N-Srikar/Athena/internal/service"
	"github.com/N-Srikar/Athena/pkg/kafka"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type BorrowService interface {
	RequestBorrow(ctx context.Context, req model.CreateBorrowRequest) (model.BorrowRecord, error)
	ApproveBorrow(ctx context.Context, recordUid string) (model.BorrowRecord, error)
	RejectBorrow(ctx context.Context, recordUid string) (model.BorrowRecord, error)
	ReturnBorrow(ctx context.Context, recordUid string, req model.ReturnBorrowRequest) (model.BorrowRecord, error)
	MarkFinePaid(ctx context.Context, recordUid string) (model.BorrowRecord, error)
	GetBorrows(ctx context.Context, filter model.BorrowFilter) ([]model.BorrowRecord, error)
	GetDueBorrows(ctx context.Context, username string) ([]model.BorrowRecord, error)
	GetOverdueBorrows(ctx context.Context) ([]model.BorrowRecord, error)
	CheckAvailable(ctx context.Context, bookUid string) (model.AvailableResponse, error)
}

type CatalogService interface {
	CreateBook(ctx context.Context, req model.CreateBookRequest) (model.Book, error)
	UpdateBook(ctx context.Context, bookUid string, req model.UpdateBookRequest) (model.Book, error)
	DeleteBook(ctx context.Context, bookUid string) error
	GetBook(ctx context.Context, bookUid string) (model.Book, error)
	ListBooks(ctx context.Context, filter model.BookFilter, page, size int) (model.ListBooks, error)
}

type AuthService interface {
	Register(ctx context.Context, req model.RegisterRequest) (model.User, error)
	Login(ctx context.Context, req model.AuthRequest) (model.AuthResponse, error)
	CreateLibrarian(ctx context.Context, req model.CreateLibrarianRequest) (model.CreateLibrarianResponse, error)
	UpdateLibrarian(ctx context.Context, id int, req model.UpdateLibrarianRequest) (model.User, error)
	RemoveLibrarian(ctx context.Context, id int) error
	ListLibrarians(ctx context.Context) ([]model.User, error)
}

type StatsService interface {
	RecordEvent(ctx context.Context, event kafka.BorrowEvent) error
	Stats(ctx context.Context) ([]model.StatsRow, error)
}

var (
	_ BorrowService  = (*service.Service)(nil)
	_ CatalogService = (*service.Service)(nil)
	_ AuthService    = (*service.Service)(nil)
	_ StatsService   = (*service.Service)(nil)
)
