package model

import (
	"time"
)

type Role string

const (
	RoleMember    Role = "MEMBER"
	RoleLibrarian Role = "LIBRARIAN"
	RoleAdmin     Role = "ADMIN"
)

type User struct {
	ID           int    `json:"id" db:"id"`
	Name         string `json:"name" db:"name"`
	Email        string `json:"email" db:"email"`
	PasswordHash string `json:"-" db:"password_hash"`
	Role         Role   `json:"role" db:"role"`
}

type Book struct {
	ID              int    `json:"-" db:"id"`
	BookUid         string `json:"bookUid" db:"book_uid"`
	Title           string `json:"title" db:"title"`
	Author          string `json:"author" db:"author"`
	Category        string `json:"category" db:"category"`
	TotalCopies     int    `json:"totalCopies" db:"total_copies"`
	AvailableCopies int    `json:"availableCopies" db:"available_copies"`
}

type Paging struct {
	Page          int `json:"page"`
	PageSize      int `json:"pageSize"`
	TotalElements int `json:"totalElements"`
}

type ListBooks struct {
	Paging `json:",inline"`
	Items  []Book `json:"items"`
}

// BorrowRecord tracks one member's request/approval/return cycle for one book.
// Fine is in whole rupees, set exactly once at the return transition.
type BorrowRecord struct {
	ID          int        `json:"-" db:"id"`
	RecordUid   string     `json:"recordUid" db:"record_uid"`
	Username    string     `json:"username" db:"username"`
	BookUid     string     `json:"bookUid" db:"book_uid"`
	RequestDate time.Time  `json:"requestDate" db:"request_date"`
	DueDate     time.Time  `json:"dueDate" db:"due_date"`
	ApprovedAt  *time.Time `json:"approvedAt,omitempty" db:"approved_at"`
	RejectedAt  *time.Time `json:"rejectedAt,omitempty" db:"rejected_at"`
	ReturnedAt  *time.Time `json:"returnedAt,omitempty" db:"returned_at"`
	Status      Status     `json:"status" db:"status"`
	Fine        int64      `json:"fine" db:"fine"`
	FinePaid    bool       `json:"finePaid" db:"fine_paid"`
}

type CreateBookRequest struct {
	Title       string `json:"title" validate:"required"`
	Author      string `json:"author" validate:"required"`
	Category    string `json:"category"`
	TotalCopies int    `json:"totalCopies" validate:"gte=0"`
}

type UpdateBookRequest struct {
	Title       *string `json:"title"`
	Author      *string `json:"author"`
	Category    *string `json:"category"`
	TotalCopies *int    `json:"totalCopies" validate:"omitempty,gte=0"`
}

type BookFilter struct {
	Title    string
	Author   string
	Category string
}

type CreateBorrowRequest struct {
	BookUid  string `json:"bookUid" validate:"required,uuid"`
	Username string `json:"-" validate:"required"`
}

type ReturnBorrowRequest struct {
	Date *time.Time `json:"date"`
}

type BorrowFilter struct {
	Username string
	Status   Status
}

type AvailableResponse struct {
	BookUid         string `json:"bookUid"`
	AvailableCopies int    `json:"availableCopies"`
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type AuthRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int    `json:"expiresIn"`
}

type CreateLibrarianRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

type CreateLibrarianResponse struct {
	Librarian User   `json:"librarian"`
	Password  string `json:"password"`
}

type UpdateLibrarianRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email" validate:"omitempty,email"`
}

type StatsRow struct {
	EventType string `json:"eventType" db:"event_type"`
	Total     int    `json:"total" db:"total"`
}
