// Package errs implements the error taxonomy of spec §7: NotFound,
// ValidationError, BadRequest, DatabaseError, RpcError, BusError,
// InternalError. Each is a sentinel plus a struct carrying context, so
// callers can match with errors.Is against the sentinel while logging the
// structured detail.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrValidation     = errors.New("validation error")
	ErrBadRequest     = errors.New("bad request")
	ErrDatabase       = errors.New("database error")
	ErrRpc            = errors.New("rpc error")
	ErrBus            = errors.New("bus error")
	ErrInternal       = errors.New("internal error")
)

func sanitize(v any) string {
	s := fmt.Sprintf("%v", v)
	return strings.ReplaceAll(s, "\n", " ")
}

// NotFoundError is returned when a required row is absent (spec §7).
type NotFoundError struct {
	Entity string
	ID     any
	Cause  error
}

func NewNotFoundError(entity string, id any) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

func NewNotFoundErrorWithCause(entity string, id any, cause error) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id, Cause: cause}
}

func (e *NotFoundError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s not found: %s (cause: %s)", e.Entity, sanitize(e.ID), e.Cause)
	}
	return fmt.Sprintf("%s not found: %s", e.Entity, sanitize(e.ID))
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ValidationError signals a format/value violation caught before touching
// the store (spec §7).
type ValidationError struct {
	Message string
	Cause   error
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

func NewValidationErrorWithCause(message string, cause error) *ValidationError {
	return &ValidationError{Message: message, Cause: cause}
}

func (e *ValidationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("validation error: %s (cause: %s)", e.Message, e.Cause)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// BadRequestError signals a caller-visible rejection that is not a pure
// format violation (e.g. "Inventory check failed: ...", spec §4.D step 1).
type BadRequestError struct {
	Message string
	Cause   error
}

func NewBadRequestError(message string) *BadRequestError {
	return &BadRequestError{Message: message}
}

func NewBadRequestErrorWithCause(message string, cause error) *BadRequestError {
	return &BadRequestError{Message: message, Cause: cause}
}

func (e *BadRequestError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("bad request: %s (cause: %s)", e.Message, e.Cause)
	}
	return fmt.Sprintf("bad request: %s", e.Message)
}

func (e *BadRequestError) Unwrap() error { return ErrBadRequest }

// DatabaseError wraps a raw persistence-gateway failure (spec §7).
type DatabaseError struct {
	Op    string
	Cause error
}

func NewDatabaseError(op string, cause error) *DatabaseError {
	return &DatabaseError{Op: op, Cause: cause}
}

func (e *DatabaseError) Error() string {
	return fmt.Sprintf("database error during %s: %s", e.Op, e.Cause)
}

func (e *DatabaseError) Unwrap() error { return ErrDatabase }

// RpcError wraps a transport/business failure from the inventory RPC client
// (spec §4.C, §7).
type RpcError struct {
	Op    string
	Cause error
}

func NewRpcError(op string, cause error) *RpcError {
	return &RpcError{Op: op, Cause: cause}
}

func (e *RpcError) Error() string {
	return fmt.Sprintf("rpc error during %s: %s", e.Op, e.Cause)
}

func (e *RpcError) Unwrap() error { return ErrRpc }

// BusError wraps a message-bus connection/publish/consume failure (spec
// §4.B, §7).
type BusError struct {
	Op    string
	Cause error
}

func NewBusError(op string, cause error) *BusError {
	return &BusError{Op: op, Cause: cause}
}

func (e *BusError) Error() string {
	return fmt.Sprintf("bus error during %s: %s", e.Op, e.Cause)
}

func (e *BusError) Unwrap() error { return ErrBus }

// InternalError is the catch-all for failures that do not fit another
// taxonomy entry (spec §7).
type InternalError struct {
	Op    string
	Cause error
}

func NewInternalError(op string, cause error) *InternalError {
	return &InternalError{Op: op, Cause: cause}
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal error during %s: %s", e.Op, e.Cause)
}

func (e *InternalError) Unwrap() error { return ErrInternal }
