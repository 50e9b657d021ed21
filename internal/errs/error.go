package errs

import (
	"errors"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrBookUnavailable    = errors.New("book not available")
	ErrInventoryExhausted = errors.New("no copies available")
	ErrInvariantViolation = errors.New("copy count invariant violated")
	ErrCopiesOutstanding  = errors.New("copies out on loan exceed total")
	ErrNoFineDue          = errors.New("no fine to mark as paid")
	ErrFineAlreadyPaid    = errors.New("fine already paid")
	ErrAlreadyExists      = errors.New("already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserName           = errors.New("username is required")
	ErrPermissionDenied   = errors.New("permission denied")
)

type ValidationErrorResponse struct {
	Message string `json:"message"`
	Errors  struct {
		AdditionalProperties string `json:"additionalProperties"`
	} `json:"errors"`
}
