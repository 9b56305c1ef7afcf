// Package errors provides the structured error kinds reported by kbackup.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failure.
type Kind string

const (
	KindUnknown           Kind = "Unknown"
	KindRemoteUnavailable Kind = "RemoteUnavailable"
	KindMalformedResponse Kind = "MalformedResponse"
	KindLocalIO           Kind = "LocalIOError"
	KindDirectoryNotFound Kind = "DirectoryNotFound"
	KindMissingField      Kind = "MissingField"
	KindInvalidConfig     Kind = "InvalidConfig"
)

// exitCodes maps kinds to process exit codes. Unknown errors exit 1.
var exitCodes = map[Kind]int{
	KindInvalidConfig:     2,
	KindRemoteUnavailable: 3,
	KindMalformedResponse: 4,
	KindLocalIO:           5,
	KindDirectoryNotFound: 6,
	KindMissingField:      7,
}

// Error is the structured error type. Op names the operation that failed,
// Type, Name and Path carry whatever context was known at the failure site.
type Error struct {
	Kind  Kind
	Op    string
	Type  string
	Name  string
	Path  string
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.Type != "" {
		fmt.Fprintf(&b, " type=%s", e.Type)
	}
	if e.Name != "" {
		fmt.Fprintf(&b, " name=%s", e.Name)
	}
	if e.Path != "" {
		fmt.Fprintf(&b, " path=%s", e.Path)
	}
	b.WriteString(": ")
	b.WriteString(string(e.Kind))
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same kind, so that
// errors.Is(err, &Error{Kind: KindMissingField}) works as a kind check.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New builds an *Error of the given kind.
func New(kind Kind, op string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Cause: cause}
}

// Newf builds an *Error whose cause is a formatted message.
func Newf(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Cause: fmt.Errorf(format, args...)}
}

// WithObject returns a copy of e annotated with an object type and name.
func (e *Error) WithObject(objType, name string) *Error {
	c := *e
	c.Type = objType
	c.Name = name
	return &c
}

// WithPath returns a copy of e annotated with a filesystem path.
func (e *Error) WithPath(path string) *Error {
	c := *e
	c.Path = path
	return &c
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// ExitCode returns the process exit code for err: 0 for nil, a per-kind
// code for known kinds and 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if code, ok := exitCodes[KindOf(err)]; ok {
		return code
	}
	return 1
}

// Is reports whether err carries the given kind anywhere in its chain.
func Is(err error, kind Kind) bool {
	return errors.Is(err, &Error{Kind: kind})
}
