package ws

import (
	"errors"

	"github.com/dwalters/cardroom/internal/model"
	"github.com/dwalters/cardroom/internal/services/auth"
	"github.com/dwalters/cardroom/internal/session"
)

// WireError is the structured error object returned to a socket caller
// in place of a throw. Type is machine-readable; Severity signals whether
// the caller can retry.
type WireError struct {
	Severity string `json:"severity"`
	Type     string `json:"type"`
}

// Severities
const (
	SeverityFatal   = "FATAL"
	SeverityError   = "ERROR"
	SeverityWarning = "WARNING"
)

// Error type codes
const (
	TypeAuthRejected       = "AuthRejected"
	TypeRoomNotFound       = "RoomNotFound"
	TypePersistenceFailure = "PersistenceFailure"
	TypeValidationFailure  = "ValidationFailure"
)

// toWireError maps a service error to its wire representation
func toWireError(err error) *WireError {
	switch {
	case errors.Is(err, model.ErrRoomNotFound):
		return &WireError{Severity: SeverityFatal, Type: TypeRoomNotFound}
	case errors.Is(err, session.ErrNotFound), errors.Is(err, errNotLoggedIn):
		return &WireError{Severity: SeverityFatal, Type: TypeAuthRejected}
	case errors.Is(err, auth.ErrUsernameRequired), errors.Is(err, errInvalidPayload), errors.Is(err, errUnknownEvent):
		return &WireError{Severity: SeverityError, Type: TypeValidationFailure}
	default:
		return &WireError{Severity: SeverityError, Type: TypePersistenceFailure}
	}
}

var (
	errInvalidPayload = errors.New("invalid event payload")
	errUnknownEvent   = errors.New("unknown event")
	errNotLoggedIn    = errors.New("session has no user")
)
