// Package acierrors carries the error taxonomy from spec.md §7. Every kind
// is fatal to the call (or the session) that produced it -- there are no
// soft errors at this boundary, so Kind exposes no StatusCode-style mapping
// the way the teacher's internal/errors package does for its HTTP layer.
package acierrors

import "fmt"

// Kind enumerates the closed set of error categories the engine can return.
type Kind string

const (
	KindInvalidParameter    Kind = "INVALID_PARAMETER"
	KindInvalidIndexerState Kind = "INVALID_INDEXER_STATE"
	KindInvalidFingerprint  Kind = "INVALID_FINGERPRINT"
	KindInvalidIndexData    Kind = "INVALID_INDEX_DATA"
	KindInvalidAudioCodes   Kind = "INVALID_AUDIO_CODES"
	KindInvalidMatchSequence Kind = "INVALID_MATCH_SEQUENCE"
)

// Fatal reports whether errors of this kind are always fatal to the call
// (InvalidParameter, InvalidIndexerState, InvalidAudioCodes,
// InvalidMatchSequence, InvalidIndexData) or to the session
// (InvalidFingerprint during identify; during indexing the caller may skip
// the file and decrement FID instead, per spec.md §7).
func (k Kind) Fatal() bool { return true }

// Error is the concrete error type returned across every API boundary in
// the engine.
type Error struct {
	Kind    Kind
	Op      string // the operation that failed, e.g. "Indexer.Index"
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %s: %v", e.Op, e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is allows errors.Is(err, acierrors.InvalidParameter("", "")) style checks
// against the Kind alone, ignoring message/cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newErr(kind Kind, op, msg string) *Error {
	return &Error{Kind: kind, Op: op, Message: msg}
}

func InvalidParameter(op, msg string) *Error    { return newErr(KindInvalidParameter, op, msg) }
func InvalidIndexerState(op, msg string) *Error { return newErr(KindInvalidIndexerState, op, msg) }
func InvalidFingerprint(op, msg string) *Error  { return newErr(KindInvalidFingerprint, op, msg) }
func InvalidIndexData(op, msg string) *Error    { return newErr(KindInvalidIndexData, op, msg) }
func InvalidAudioCodes(op, msg string) *Error   { return newErr(KindInvalidAudioCodes, op, msg) }
func InvalidMatchSequence(op, msg string) *Error {
	return newErr(KindInvalidMatchSequence, op, msg)
}

// Wrap attaches a cause to an existing taxonomy error, mirroring the
// teacher's APIError.WithDetails chaining style.
func (e *Error) Wrap(cause error) *Error {
	e.Cause = cause
	return e
}

// Of reports the Kind of err if it is (or wraps) an *Error, and false
// otherwise.
func Of(err error) (Kind, bool) {
	var e *Error
	if as(err, &e) {
		return e.Kind, true
	}
	return "", false
}

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
