package registration

import (
	"errors"
	"fmt"
	"html"
)

//go:generate go run github.com/dmarkham/enumer -type Kind -trimprefix Kind -transform snake-upper -output kind.gen.go

// Kind classifies a registration failure.
type Kind int

const (
	// KindUnauthenticated means there is no verified identity.
	KindUnauthenticated Kind = iota
	// KindNotRegistered means the operation needs a registration that doesn't exist.
	KindNotRegistered
	// KindInvalidSchool means the school id is missing or unknown.
	KindInvalidSchool
	// KindPersistence means the store failed to read or commit.
	KindPersistence
)

// Error is returned by every Service operation that fails.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

// Sentinels for errors.Is. They match any *Error of the same Kind.
var (
	ErrUnauthenticated = &Error{Kind: KindUnauthenticated}
	ErrNotRegistered   = &Error{Kind: KindNotRegistered}
	ErrInvalidSchool   = &Error{Kind: KindInvalidSchool}
	ErrPersistence     = &Error{Kind: KindPersistence}
)

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Op == "" && t.Err == nil
}

// KindOf returns the Kind of err, or -1 if err is not a registration error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return -1
}

func newError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Diagnostic renders the HTML message shown to the user when a
// registration could not be saved. The underlying error is included
// verbatim (escaped) so the user can forward it to support.
func Diagnostic(err error, supportEmail string) string {
	detail := ""
	var e *Error
	if errors.As(err, &e) && e.Err != nil {
		detail = e.Err.Error()
	} else if err != nil {
		detail = err.Error()
	}
	return fmt.Sprintf(
		"Aconteceu um erro!<br>Tente novamente, se o erro persistir, comunique o código abaixo por email para %s<br><br>%s",
		html.EscapeString(supportEmail),
		html.EscapeString(detail),
	)
}
