package rrule

import (
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// Kind names one of the failure modes a rule, set, or parser can raise.
// Iteration itself never produces a new Kind once a rule exists: it can
// only terminate (see Error handling design).
type Kind int

const (
	// KindInvalidParameter covers out-of-bounds or contradictory
	// constructor arguments: a zero BYSETPOS, a negative interval, a
	// weekday built with n == 0, both Count and Until set, or an unknown
	// FREQ. A zero interval is not rejected; it means 1.
	KindInvalidParameter Kind = iota
	// KindUnknownProperty covers a parsed property name outside
	// {RRULE, RDATE, EXRULE, EXDATE, DTSTART, X-*}.
	KindUnknownProperty
	// KindUnsupportedParameter covers a recognized property carrying a
	// parameter this implementation doesn't support, e.g. an RDATE
	// VALUE other than DATE-TIME or DATE.
	KindUnsupportedParameter
	// KindParseError covers malformed key=value pairs, unparsable
	// datetimes, and empty input.
	KindParseError
	// KindIndexOutOfRange covers a positional accessor (At) reaching
	// past the end of a stream. A simply-empty Before/After is not an
	// error and returns the zero time instead.
	KindIndexOutOfRange
)

func (k Kind) String() string {
	switch k {
	case KindInvalidParameter:
		return "InvalidParameter"
	case KindUnknownProperty:
		return "UnknownProperty"
	case KindUnsupportedParameter:
		return "UnsupportedParameter"
	case KindParseError:
		return "ParseError"
	case KindIndexOutOfRange:
		return "IndexOutOfRange"
	default:
		return "Unknown"
	}
}

// Error is the error type returned by every fail-fast site in this
// package: construction, parsing, and positional accessors. Wrap with
// errors.Cause (or errors.As) to recover the Kind.
type Error struct {
	Kind Kind
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("rrule: %s: %s: %v", e.Kind, e.msg, e.err)
	}
	return fmt.Sprintf("rrule: %s: %s", e.Kind, e.msg)
}

func (e *Error) Unwrap() error { return e.err }

func newError(kind Kind, format string, args ...interface{}) error {
	return pkgerrors.WithStack(&Error{Kind: kind, msg: fmt.Sprintf(format, args...)})
}

func wrapError(kind Kind, err error, format string, args ...interface{}) error {
	return pkgerrors.WithStack(&Error{Kind: kind, msg: fmt.Sprintf(format, args...), err: err})
}

// KindOf extracts the Kind carried by err, if any, and reports whether
// err was produced by this package.
func KindOf(err error) (Kind, bool) {
	var target *Error
	if errors.As(err, &target) {
		return target.Kind, true
	}
	return 0, false
}
