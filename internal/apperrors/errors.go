package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates the request conflicts with the current state of a resource.
var ErrConflict = errors.New("conflict")

// ErrInternal indicates an unexpected failure in a lower layer.
var ErrInternal = errors.New("internal error")

// Ledger errors. Callers should match these with errors.Is; the wrapped
// message carries the account, amount or row that triggered it.
var (
	// ErrInvalidAmount is returned for zero, negative or malformed amounts.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInvalidState is returned when an operation is not allowed in the current state.
	ErrInvalidState = errors.New("invalid state")
	// ErrInsufficientFunds is returned when a debit exceeds the available balance.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrNonZeroBalance is returned when closing an account that still holds money.
	ErrNonZeroBalance = errors.New("non-zero balance")
	// ErrAlreadyReversed is returned when reversing a transaction twice.
	ErrAlreadyReversed = errors.New("transaction already reversed")
	// ErrScheduleAlreadyExists is returned when a loan already has repayment rows.
	ErrScheduleAlreadyExists = errors.New("repayment schedule already exists")
	// ErrMissingPrerequisite is returned when required loan terms are absent.
	ErrMissingPrerequisite = errors.New("missing prerequisite")
	// ErrAccountNotFound is returned when a referenced account cannot be resolved.
	ErrAccountNotFound = errors.New("account not found")
	// ErrMissingField is returned when a batch row lacks a required field.
	ErrMissingField = errors.New("missing required field")
)

// AppError carries an HTTP-ish status code alongside the underlying error.
// Repositories use it for infrastructure failures.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates an AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// RowError ties a batch validation failure to the input row that caused it.
type RowError struct {
	Row    int
	Fields []string
	Err    error
}

func (e *RowError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("row %d: %v: %s", e.Row, e.Err, strings.Join(e.Fields, ", "))
	}
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// NewRowError wraps err with the row number and the offending fields.
func NewRowError(row int, err error, fields ...string) *RowError {
	return &RowError{Row: row, Fields: fields, Err: err}
}
