package task

import (
	"errors"
	"fmt"
)

// Kind classifies a task error.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindStorageRead
	KindStorageWrite
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindStorageRead:
		return "storage_read"
	case KindStorageWrite:
		return "storage_write"
	}
	return "unknown"
}

// Error is the error type returned by the service and the storage adapter.
// Message is safe to show to clients; Err is the underlying cause.
type Error struct {
	Kind    Kind
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Field)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of err, or KindUnknown if err is not an *Error.
func KindOf(err error) Kind {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return KindUnknown
}

// IsStorage reports whether err is a read or write failure of the backing document.
func IsStorage(err error) bool {
	k := KindOf(err)
	return k == KindStorageRead || k == KindStorageWrite
}

func validationError(field, msg string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: msg}
}

func notFound() *Error {
	return &Error{Kind: KindNotFound, Message: "Task not found"}
}

func readError(err error) *Error {
	return &Error{Kind: KindStorageRead, Message: "Error occurred while reading tasks", Err: err}
}

func writeError(err error) *Error {
	return &Error{Kind: KindStorageWrite, Message: "Error occurred while writing tasks", Err: err}
}
