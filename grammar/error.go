package grammar

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/ardnew/yard/span"
)

// Predefined errors (sentinel values).
//
// Every error returned by this package derives from one of these, so callers
// may classify a failure with [errors.Is] regardless of the location and
// attributes attached to it.
var (
	ErrUnrecognizedInput       = NewError("unrecognized input")
	ErrInvalidDefinition       = NewError("invalid definition")
	ErrInvalidDefinitionName   = NewError("invalid definition name")
	ErrDuplicateDefinitionName = NewError("duplicate definition name")
	ErrInvalidPattern          = NewError("invalid pattern")
	ErrExpectedOperand         = NewError("expected operand")
	ErrUnexpectedOperand       = NewError("unexpected operand")
	ErrUnmatchedBracket        = NewError("unmatched bracket")
	ErrArgumentCount           = NewError("wrong number of arguments")
	ErrArgumentType            = NewError("wrong argument type")
	ErrOperationInvalid        = NewError("invalid operation")
)

// Error represents a located error with optional structured logging
// attributes. It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	kind  *Error      // Sentinel this error was derived from
	spans []span.Span // Source regions the error refers to
	attrs []slog.Attr // Attributes for structured logging
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

func (e *Error) root() *Error {
	if e.kind != nil {
		return e.kind
	}

	return e
}

func (e *Error) clone() *Error {
	return &Error{
		msg:   e.msg,
		err:   e.err,
		kind:  e.root(),
		spans: e.spans,
		attrs: e.attrs,
	}
}

// Error implements the error interface.
//
//	"<msg> at <location>: <err>"
//
// The location is omitted if no span is attached, and the cause is omitted
// if nothing is wrapped.
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(e.msg)

	if len(e.spans) > 0 {
		if b.Len() > 0 {
			b.WriteString(" at ")
		}

		b.WriteString(e.spans[0].Location())
	}

	if e.err != nil {
		if b.Len() > 0 {
			b.WriteString(": ")
		}

		b.WriteString(e.err.Error())
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel e was derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return e.root() == t.root()
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+len(e.spans)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	for _, sp := range e.spans {
		attrs = append(attrs, slog.Any("span", sp))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	ne := e.clone()
	ne.err = err

	return ne
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	ne := e.clone()
	ne.attrs = make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(ne.attrs, e.attrs)
	copy(ne.attrs[len(e.attrs):], attrs)

	return ne
}

// At returns a copy of e located at the given spans.
// The first span is the primary location.
func (e *Error) At(spans ...span.Span) *Error {
	ne := e.clone()
	ne.spans = append(append([]span.Span(nil), e.spans...), spans...)

	return ne
}

// Span returns the primary location of e, or the zero Span if e has none.
func (e *Error) Span() span.Span {
	if len(e.spans) == 0 {
		return span.Span{}
	}

	return e.spans[0]
}

// Spans returns every location attached to e.
func (e *Error) Spans() []span.Span {
	return append([]span.Span(nil), e.spans...)
}

// Attr returns the value of the attribute with the given key.
func (e *Error) Attr(key string) (slog.Value, bool) {
	for i := len(e.attrs) - 1; i >= 0; i-- {
		if e.attrs[i].Key == key {
			return e.attrs[i].Value, true
		}
	}

	return slog.Value{}, false
}

// Snippet renders the source lines of each attached span with the offending
// text underlined.
func (e *Error) Snippet() string {
	var b strings.Builder

	for _, sp := range e.spans {
		b.WriteString(sp.Snippet())
	}

	return b.String()
}
