// Package result is the uniform outcome of every Sync Gateway operation.
// Callers branch on OK and, on failure, on Err.Kind; they never see raw
// transport errors.
package result

import (
	"errors"
	"fmt"
)

// Kind classifies a failed operation.
type Kind string

const (
	KindSessionExpired     Kind = "SessionExpired"
	KindUnreachable        Kind = "Unreachable"
	KindRequestFailed      Kind = "RequestFailed"
	KindTaskNotFound       Kind = "TaskNotFound"
	KindValidationFailed   Kind = "ValidationFailed"
	KindConflict           Kind = "Conflict"
	KindInvalidCredentials Kind = "InvalidCredentials"
	KindInternal           Kind = "Internal"
	// KindBusy rejects a resubmission while the same operation is in flight.
	KindBusy               Kind = "Busy"
)

// Error is the failure half of a Result.
type Error struct {
	Kind   Kind
	Detail string
	// Status is the HTTP status for KindRequestFailed, otherwise zero.
	Status int
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// Is lets errors.Is match on Kind alone.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Result is Ok(payload) or Err(kind, detail).
type Result[T any] struct {
	OK      bool
	Payload T
	Err     *Error
}

func Ok[T any](v T) Result[T] {
	return Result[T]{OK: true, Payload: v}
}

func Fail[T any](kind Kind, detail string) Result[T] {
	return Result[T]{Err: &Error{Kind: kind, Detail: detail}}
}

// FromError turns err into a failed Result. A *Error anywhere in the chain
// is kept as is; anything else becomes KindInternal.
func FromError[T any](err error) Result[T] {
	var re *Error
	if errors.As(err, &re) {
		return Result[T]{Err: re}
	}
	return Fail[T](KindInternal, err.Error())
}

// Is reports whether r failed with kind.
func (r Result[T]) Is(kind Kind) bool {
	return !r.OK && r.Err != nil && r.Err.Kind == kind
}

// Unwrap converts back to Go's (value, error) pair.
func (r Result[T]) Unwrap() (T, error) {
	if r.OK {
		return r.Payload, nil
	}
	if r.Err == nil {
		var zero T
		return zero, &Error{Kind: KindInternal}
	}
	return r.Payload, r.Err
}

// Message is the user-facing text of a failure.
func (r Result[T]) Message() string {
	if r.OK || r.Err == nil {
		return ""
	}
	if r.Err.Detail != "" {
		return r.Err.Detail
	}
	switch r.Err.Kind {
	case KindSessionExpired:
		return "session expired, please log in again"
	case KindUnreachable:
		return "server unreachable"
	case KindTaskNotFound:
		return "task not found"
	case KindBusy:
		return "operation already in progress"
	default:
		return "request failed"
	}
}

// Map converts a successful payload, passing failures through.
func Map[T, U any](r Result[T], fn func(T) U) Result[U] {
	if !r.OK {
		return Result[U]{Err: r.Err}
	}
	return Ok(fn(r.Payload))
}
