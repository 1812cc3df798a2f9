package ocppj

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
)

// ErrorCode is an OCPP-J error code as carried in a CallError frame. The set
// below covers the codes defined by OCPP 1.6; the type is an open string so
// profile extensions can introduce further codes without touching this
// package.
type ErrorCode string

const (
	NotImplemented                ErrorCode = "NotImplemented"
	NotSupported                  ErrorCode = "NotSupported"
	InternalError                 ErrorCode = "InternalError"
	ProtocolError                 ErrorCode = "ProtocolError"
	SecurityError                 ErrorCode = "SecurityError"
	FormationViolation            ErrorCode = "FormationViolation"
	PropertyConstraintViolation   ErrorCode = "PropertyConstraintViolation"
	OccurrenceConstraintViolation ErrorCode = "OccurrenceConstraintViolation"
	TypeConstraintViolation       ErrorCode = "TypeConstraintViolation"
	GenericError                  ErrorCode = "GenericError"
)

// Error is a protocol-level failure tied to a message id. It is both what a
// received CallError decodes into and what handlers return to have the
// dispatcher emit one.
type Error struct {
	Code        ErrorCode
	Description string
	Details     json.RawMessage
	MessageID   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("ocpp error %s: %s", e.Code, e.Description)
}

// NewError builds a protocol error without a message id; the dispatcher fills
// the id of the offending Call before replying.
func NewError(code ErrorCode, description string) *Error {
	return &Error{Code: code, Description: description}
}

var (
	// ErrCallTimeout completes a pending call whose reply did not arrive in
	// time.
	ErrCallTimeout = errors.New("call timed out")
	// ErrCallCanceled completes every pending call left when a session is
	// torn down.
	ErrCallCanceled = errors.New("call canceled")
)
