package timeline

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why an edit was rejected.
type ErrorKind string

const (
	KindNotFound           ErrorKind = "NotFound"
	KindTypeMismatch       ErrorKind = "TypeMismatch"
	KindDuplicateID        ErrorKind = "DuplicateId"
	KindInvalidArgument    ErrorKind = "InvalidArgument"
	KindInvariantViolation ErrorKind = "InvariantViolation"
)

// Sentinels for errors.Is checks against an *EditError's kind.
var (
	ErrNotFound           = errors.New("not found")
	ErrTypeMismatch       = errors.New("type mismatch")
	ErrDuplicateID        = errors.New("duplicate id")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvariantViolation = errors.New("invariant violation")
)

var sentinels = map[ErrorKind]error{
	KindNotFound:           ErrNotFound,
	KindTypeMismatch:       ErrTypeMismatch,
	KindDuplicateID:        ErrDuplicateID,
	KindInvalidArgument:    ErrInvalidArgument,
	KindInvariantViolation: ErrInvariantViolation,
}

// EditError reports a rejected command. The document is left unchanged.
type EditError struct {
	Kind ErrorKind
	Op   CommandType
	ID   string
	Msg  string
}

func (e *EditError) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = string(e.Kind)
	}
	switch {
	case e.Op != "" && e.ID != "":
		return fmt.Sprintf("%s %q: %s", e.Op, e.ID, msg)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, msg)
	default:
		return msg
	}
}

// Is matches the sentinel for the error's kind.
func (e *EditError) Is(target error) bool {
	return sentinels[e.Kind] == target
}

// KindOf returns the kind of an *EditError in err's chain, or "".
func KindOf(err error) ErrorKind {
	var ee *EditError
	if errors.As(err, &ee) {
		return ee.Kind
	}
	return ""
}

func notFound(op CommandType, what, id string) error {
	return &EditError{Kind: KindNotFound, Op: op, ID: id, Msg: what + " not found"}
}

func invalidArg(op CommandType, format string, args ...any) error {
	return &EditError{Kind: KindInvalidArgument, Op: op, Msg: fmt.Sprintf(format, args...)}
}
