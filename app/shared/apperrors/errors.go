package apperrors

import (
	"errors"
	"fmt"
	"maps"
	"net/http"
)

// Kind classifies an Error for callers that need to react to the category of
// failure rather than the specific code.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindAuthorization Kind = "authorization"
	KindBusinessRule  Kind = "business_rule"
	KindCoordination  Kind = "coordination"
	KindTransaction   Kind = "transaction"
	KindNotFound      Kind = "not_found"
	KindTimeout       Kind = "timeout"
)

// Error is the structured error shared by every module. It always carries a
// machine-readable code and may wrap the underlying cause.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Context map[string]any

	// Coordination errors name the collaborators involved.
	Source string
	Target string
	Step   string

	// RollbackCompleted is only meaningful for transaction errors.
	RollbackCompleted bool

	Err error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil && e.Err.Error() != e.Message {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by kind and code so that sentinel values declared
// by the modules can be used with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	if t.Code == "" {
		return e.Kind == t.Kind
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

// With returns a copy of e with the given context entries merged in.
func (e *Error) With(kv ...any) *Error {
	out := *e
	out.Context = maps.Clone(e.Context)
	if out.Context == nil {
		out.Context = make(map[string]any, len(kv)/2)
	}
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		out.Context[key] = kv[i+1]
	}
	return &out
}

// Wrap returns a copy of e wrapping cause.
func (e *Error) Wrap(cause error) *Error {
	out := *e
	out.Context = maps.Clone(e.Context)
	out.Err = cause
	return &out
}

func newError(kind Kind, code, message string, kv ...any) *Error {
	return (&Error{Kind: kind, Code: code, Message: message}).With(kv...)
}

// Validation builds an input validation error.
func Validation(code, message string, kv ...any) *Error {
	return newError(KindValidation, code, message, kv...)
}

// Authorization builds an access-denied error.
func Authorization(code, message string, kv ...any) *Error {
	return newError(KindAuthorization, code, message, kv...)
}

// BusinessRule builds an error for a domain constraint violated mid-flow.
func BusinessRule(code, message string, kv ...any) *Error {
	return newError(KindBusinessRule, code, message, kv...)
}

// NotFound builds a missing-resource error.
func NotFound(code, message string, kv ...any) *Error {
	return newError(KindNotFound, code, message, kv...)
}

// Timeout builds an error signalling that a caller-supplied deadline expired.
func Timeout(code, message string, cause error, kv ...any) *Error {
	e := newError(KindTimeout, code, message, kv...)
	e.Err = cause
	return e
}

// Coordination reports that a step failed while invoking target on behalf of
// source. The original message is preserved through the wrapped cause.
func Coordination(step, source, target, message string, cause error, kv ...any) *Error {
	e := newError(KindCoordination, "coordination_failed", message, kv...)
	e.Step = step
	e.Source = source
	e.Target = target
	e.Err = cause
	e.Context["step"] = step
	e.Context["source"] = source
	e.Context["target"] = target
	return e
}

// Transaction reports that the execution wrapper failed for a reason not
// already classified.
func Transaction(step string, rollbackCompleted bool, cause error, kv ...any) *Error {
	msg := "transaction failed"
	if step != "" {
		msg = fmt.Sprintf("transaction failed at step %s", step)
	}
	e := newError(KindTransaction, "transaction_failed", msg, kv...)
	e.Step = step
	e.RollbackCompleted = rollbackCompleted
	e.Err = cause
	e.Context["step"] = step
	e.Context["rollback_completed"] = rollbackCompleted
	return e
}

// As extracts the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the kind of the first *Error in err's chain, or an empty
// kind when err carries none.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps an error kind to the status a transport should answer with.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindBusinessRule:
		return http.StatusUnprocessableEntity
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
