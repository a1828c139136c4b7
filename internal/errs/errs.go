// Package errs defines the single domain-error kind used across ypms, per
// spec.md §7. Every failure in the core is one of a fixed set of Kinds;
// callers branch on Kind rather than on error string content.
package errs

import "fmt"

// Kind classifies a domain error.
type Kind int

const (
	KindNetwork Kind = iota
	KindDecode
	KindValidation
	KindPlatformMatch
	KindProcess
	KindFilesystem
	KindDependency
	KindNotConfigured
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindDecode:
		return "decode"
	case KindValidation:
		return "validation"
	case KindPlatformMatch:
		return "platform-match"
	case KindProcess:
		return "process"
	case KindFilesystem:
		return "filesystem"
	case KindDependency:
		return "dependency"
	case KindNotConfigured:
		return "not-configured"
	default:
		return "unknown"
	}
}

// Error is the domain error kind carrying a human-readable message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New constructs an *Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap constructs an *Error of the given kind wrapping an underlying error.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if as(err, &e) {
		return e.Kind == kind
	}
	return false
}

// as is a tiny local shim so this file has no import cycle risk with the
// stdlib errors package name; kept separate for readability at call sites.
func as(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
