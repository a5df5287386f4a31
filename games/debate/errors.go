/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package debate

import (
	"errors"
	"fmt"
)

var (
	// ErrProtocol covers frames that cannot be decoded: bad JSON, a missing
	// type, or a type the server does not know.
	ErrProtocol = errors.New("protocol error")

	// ErrState covers requests that are well formed but not allowed for the
	// sender's role or the room's current phase.
	ErrState = errors.New("state error")

	// ErrCapacity covers requests that cannot be admitted: full rooms, unknown
	// room codes, or an exhausted code space.
	ErrCapacity = errors.New("capacity error")

	// ErrHandshake is returned by Accept when the client did not greet the
	// server with the expected text.
	ErrHandshake = errors.New("invalid handshake")

	ErrConnClosed = errors.New("connection closed")
	ErrSlowClient = errors.New("send queue full")
	ErrRoomClosed = errors.New("room closed")
)

// RequestError is a client-visible rejection. Reason is relayed verbatim in
// the InvalidRequest reply, Kind is one of the sentinels above.
type RequestError struct {
	Kind   error
	Reason string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%v: %s", e.Kind, e.Reason)
}

func (e *RequestError) Unwrap() error {
	return e.Kind
}

func protocolError(format string, args ...any) error {
	return &RequestError{Kind: ErrProtocol, Reason: fmt.Sprintf(format, args...)}
}

func stateError(format string, args ...any) error {
	return &RequestError{Kind: ErrState, Reason: fmt.Sprintf(format, args...)}
}

func capacityError(format string, args ...any) error {
	return &RequestError{Kind: ErrCapacity, Reason: fmt.Sprintf(format, args...)}
}

// reason extracts the text to show a client for err.
func reason(err error) string {
	var re *RequestError
	if errors.As(err, &re) {
		return re.Reason
	}

	return err.Error()
}
