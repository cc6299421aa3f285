package player

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// Kind classifies Open failures.
type Kind int

const (
	// KindIO covers file open, lock, and read failures.
	KindIO Kind = iota + 1
	// KindBadHeaders covers malformed or incomplete Theora headers and input
	// that holds no container pages at all.
	KindBadHeaders
	// KindNoVideoStream means no logical stream was accepted as Theora.
	KindNoVideoStream
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindBadHeaders:
		return "bad_headers"
	case KindNoVideoStream:
		return "no_video"
	default:
		return "unknown"
	}
}

// Error is the tagged error returned by Open.
type Error struct {
	Kind   Kind
	Detail string
	// Code is the OS errno for KindIO failures, zero otherwise.
	Code unix.Errno
	Err  error
}

// Sentinels for errors.Is comparisons.
var (
	ErrIO            = &Error{Kind: KindIO}
	ErrBadHeaders    = &Error{Kind: KindBadHeaders}
	ErrNoVideoStream = &Error{Kind: KindNoVideoStream}
)

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Code != 0 {
		msg += fmt.Sprintf(" (%s)", CodeName(e.Code))
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf extracts the Kind of err, or zero when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// CodeName returns the symbolic errno name such as ENOENT.
func CodeName(code unix.Errno) string {
	if name := unix.ErrnoName(code); name != "" {
		return name
	}
	return fmt.Sprintf("errno %d", int(code))
}

func ioError(detail string, err error) *Error {
	e := &Error{Kind: KindIO, Detail: detail, Err: err}
	var errno unix.Errno
	if errors.As(err, &errno) {
		e.Code = errno
	}
	return e
}

func badHeaders(err error, format string, args ...any) *Error {
	return &Error{Kind: KindBadHeaders, Detail: fmt.Sprintf(format, args...), Err: err}
}

func noVideoStream(detail string) *Error {
	return &Error{Kind: KindNoVideoStream, Detail: detail}
}
