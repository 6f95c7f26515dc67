package directory

import (
	"errors"
	"net/http"
)

// Kind classifies a directory failure. Each kind maps to one response status.
type Kind int

const (
	KindUnexpected Kind = iota
	KindValidation
	KindConflict
	KindMissingReference
	KindNotFound
	KindForbidden
	KindMalformed
)

// StatusCode returns the HTTP status reported for the kind.
func (k Kind) StatusCode() int {
	switch k {
	case KindValidation, KindConflict, KindMissingReference, KindMalformed:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindMissingReference:
		return "missing_reference"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindMalformed:
		return "malformed"
	default:
		return "unexpected"
	}
}

// Messages returned to callers.
const (
	MsgOrganizationNameTaken   = "Organization with this name already exists"
	MsgUserEmailTaken          = "User with this email already exists"
	MsgOrganizationNotFound    = "Organization not found"
	MsgUserNotFound            = "User not found"
	MsgUserNotInOrganization   = "User does not belong to the specified organization"
	MsgEmptyOrganizationUpdate = "At least one of name or description must be provided"
	MsgEmptyUserUpdate         = "At least one of name or email must be provided"
	MsgInvalidJSON             = "Invalid Json body"
)

// Error is a classified directory failure. Message is safe to return to the caller.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status for the error kind.
func (e *Error) StatusCode() int {
	return e.Kind.StatusCode()
}

func newError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// Malformed reports an input that could not be parsed at all.
func Malformed(err error) *Error {
	return newError(KindMalformed, MsgInvalidJSON, err)
}

// AsError returns err as a *Error. Unclassified errors become KindUnexpected with the
// raw error text as the message.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}

	var derr *Error
	if errors.As(err, &derr) {
		return derr
	}

	return newError(KindUnexpected, err.Error(), err)
}
