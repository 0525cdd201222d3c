// Package apperror provides the structured error type shared by the session
// controller, the backend client and the stub backend.
package apperror

import (
	"errors"
	"fmt"
)

// Op describes an operation, usually as "package.function".
type Op string

type Kind int

const (
	KindUnknown Kind = iota
	KindRequestFailed
	KindEmptyResult
	KindConfirmationRequired
	KindBusy
	KindInvalid
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindRequestFailed:
		return "request failed"
	case KindEmptyResult:
		return "empty result"
	case KindConfirmationRequired:
		return "confirmation required"
	case KindBusy:
		return "busy"
	case KindInvalid:
		return "invalid"
	case KindNotFound:
		return "not found"
	default:
		return "unknown error"
	}
}

type Error struct {
	Op      Op
	Kind    Kind
	Err     error
	Context string
}

func (e *Error) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Context, e.Err)
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Err)
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// E creates a new Error. Arguments can be an Op, a Kind, a string context
// message or the underlying error, in any order.
func E(args ...interface{}) error {
	e := &Error{}
	for _, arg := range args {
		switch a := arg.(type) {
		case Op:
			e.Op = a
		case Kind:
			e.Kind = a
		case string:
			e.Context = a
		case error:
			e.Err = a
		}
	}
	if e.Err == nil {
		e.Err = errors.New(e.Context)
		e.Context = ""
	}
	return e
}

// Is reports whether err is of the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

func GetKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Message returns the user facing text of err without operation prefixes.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	if e.Context != "" {
		return e.Context
	}
	return Message(e.Err)
}

// Remote call errors

func RequestFailed(op Op, message string) error {
	return E(op, KindRequestFailed, message)
}

func RequestFailedErr(op Op, err error) error {
	return E(op, KindRequestFailed, err)
}

func EmptyResult(op Op, message string) error {
	return E(op, KindEmptyResult, message)
}

// Contract errors

func ConfirmationRequired(conversationId string) error {
	return E(Op("session.DeleteConversation"), KindConfirmationRequired,
		fmt.Sprintf("deleting conversation %s requires confirmation", conversationId))
}

func SubmissionInFlight() error {
	return E(Op("session.SubmitQuestion"), KindBusy, "a question is already being answered")
}

func Invalid(op Op, reason string) error {
	return E(op, KindInvalid, reason)
}

func NotFound(op Op, message string) error {
	return E(op, KindNotFound, message)
}
