// Package domain contains business logic types and errors.
// Domain errors represent business-level failures, NOT HTTP errors.
// They are infrastructure-agnostic and can be mapped to HTTP/gRPC/etc by adapters.
package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrInvalidInput indicates empty, oversized or otherwise unstorable input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrIndexOutOfRange indicates an index outside [0, count).
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrCapacityExceeded indicates the bounded store is full.
	ErrCapacityExceeded = errors.New("capacity exceeded")

	// ErrStorageWrite indicates the persisted region could not be written.
	ErrStorageWrite = errors.New("storage write failed")

	// ErrStorageRead indicates the persisted region could not be read.
	ErrStorageRead = errors.New("storage read failed")

	// ErrRenderFailure indicates the frame sink reported a failed commit.
	ErrRenderFailure = errors.New("render failure")

	// ErrUnavailable indicates a required dependency is unavailable.
	ErrUnavailable = errors.New("unavailable")
)

// ValidationError provides context for rejected input.
type ValidationError struct {
	Field   string
	Message string
	Value   any
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
	}

	return "invalid input: " + e.Message
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// NewValidationError creates a validation error with context.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewValidationErrorWithValue creates a validation error including the invalid value.
func NewValidationErrorWithValue(field, message string, value any) error {
	return &ValidationError{Field: field, Message: message, Value: value}
}

// IndexOutOfRangeError reports an index that does not address a stored item.
type IndexOutOfRangeError struct {
	Index int
	Count int
}

// Error implements the error interface.
func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("index %d out of range [0, %d)", e.Index, e.Count)
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *IndexOutOfRangeError) Unwrap() error {
	return ErrIndexOutOfRange
}

// NewIndexOutOfRangeError creates an out of range error.
func NewIndexOutOfRangeError(index, count int) error {
	return &IndexOutOfRangeError{Index: index, Count: count}
}

// CapacityError reports an append against a full store.
type CapacityError struct {
	Capacity int
}

// Error implements the error interface.
func (e *CapacityError) Error() string {
	return fmt.Sprintf("store is full (capacity %d)", e.Capacity)
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *CapacityError) Unwrap() error {
	return ErrCapacityExceeded
}

// NewCapacityError creates a capacity exceeded error.
func NewCapacityError(capacity int) error {
	return &CapacityError{Capacity: capacity}
}

// StorageOp identifies the direction of a failed storage access.
type StorageOp string

const (
	StorageOpRead  StorageOp = "read"
	StorageOpWrite StorageOp = "write"
)

// StorageError wraps a medium failure with the region offset involved.
type StorageError struct {
	Op     StorageOp
	Offset int64
	Cause  error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s at offset %d: %v", e.Op, e.Offset, e.Cause)
}

// Unwrap returns both the sentinel and the cause.
func (e *StorageError) Unwrap() []error {
	sentinel := ErrStorageWrite
	if e.Op == StorageOpRead {
		sentinel = ErrStorageRead
	}

	return []error{sentinel, e.Cause}
}

// NewStorageWriteError creates a write failure at the given offset.
func NewStorageWriteError(offset int64, cause error) error {
	return &StorageError{Op: StorageOpWrite, Offset: offset, Cause: cause}
}

// NewStorageReadError creates a read failure at the given offset.
func NewStorageReadError(offset int64, cause error) error {
	return &StorageError{Op: StorageOpRead, Offset: offset, Cause: cause}
}

// RenderError reports a frame commit the sink could not complete.
type RenderError struct {
	Sink  string
	Cause error
}

// Error implements the error interface.
func (e *RenderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("render on %q failed: %v", e.Sink, e.Cause)
	}

	return fmt.Sprintf("render on %q failed", e.Sink)
}

// Unwrap returns both the sentinel and the cause.
func (e *RenderError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrRenderFailure}
	}

	return []error{ErrRenderFailure, e.Cause}
}

// NewRenderError creates a render failure for the named sink.
func NewRenderError(sink string, cause error) error {
	return &RenderError{Sink: sink, Cause: cause}
}

// UnavailableError provides context for unavailable errors.
type UnavailableError struct {
	Service string
	Reason  string
}

// Error implements the error interface.
func (e *UnavailableError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("service %q unavailable: %s", e.Service, e.Reason)
	}

	return fmt.Sprintf("service %q unavailable", e.Service)
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *UnavailableError) Unwrap() error {
	return ErrUnavailable
}

// NewUnavailableError creates an unavailable error with context.
func NewUnavailableError(service, reason string) error {
	return &UnavailableError{Service: service, Reason: reason}
}

// IsInvalidInput checks if an error is a validation error.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsIndexOutOfRange checks if an error is an out of range error.
func IsIndexOutOfRange(err error) bool {
	return errors.Is(err, ErrIndexOutOfRange)
}

// IsCapacityExceeded checks if an error is a capacity error.
func IsCapacityExceeded(err error) bool {
	return errors.Is(err, ErrCapacityExceeded)
}

// IsStorage checks if an error is a storage read or write failure.
func IsStorage(err error) bool {
	return errors.Is(err, ErrStorageWrite) || errors.Is(err, ErrStorageRead)
}

// IsRenderFailure checks if an error is a render failure.
func IsRenderFailure(err error) bool {
	return errors.Is(err, ErrRenderFailure)
}

// IsUnavailable checks if an error is an unavailable error.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
