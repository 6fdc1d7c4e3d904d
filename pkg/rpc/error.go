package rpc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// Local, pre-dispatch failures
	ErrUnsupportedMethod = fmt.Errorf("method does not exist or is not supported")
	ErrInvalidParams     = fmt.Errorf("invalid params")
	ErrMarshalingRequest = fmt.Errorf("error marshaling request")

	// Wrapped by ConnectionError
	ErrNotConnected     = fmt.Errorf("not connected to server")
	ErrAlreadyConnected = fmt.Errorf("already connected")
	ErrDialingWebsocket = fmt.Errorf("error dialing websocket server")
	ErrSendingRequest   = fmt.Errorf("error sending request")
	ErrReadingMessage   = fmt.Errorf("error reading message")
	ErrInvalidEndpoint  = fmt.Errorf("invalid endpoint")

	// Wrapped by ResponseError
	ErrHTTPStatus        = fmt.Errorf("unexpected http status")
	ErrMalformedResponse = fmt.Errorf("malformed response")
	ErrIDMismatch        = fmt.Errorf("incorrect response id")
	ErrDaemon            = fmt.Errorf("request error")
)

// ConnectionError means the daemon could not be reached: refused or reset
// connections, DNS failures, timeouts, a dropped websocket.
type ConnectionError struct {
	// Endpoint is the daemon URL with credentials redacted.
	Endpoint string
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("cannot connect to %s: %v", e.Endpoint, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// ResponseError means the daemon was reached but the exchange failed: a 4xx
// or 5xx status, an undecodable body, a correlation id mismatch or a non-null
// error member. Err is one of ErrHTTPStatus, ErrMalformedResponse,
// ErrIDMismatch or ErrDaemon.
type ResponseError struct {
	// Endpoint is the daemon URL with credentials redacted, when known.
	Endpoint string
	// Request is the serialized request envelope. It is empty when the
	// exchange failed before any request was sent, e.g. a rejected handshake.
	Request []byte
	// StatusCode and Body are set for ErrHTTPStatus.
	StatusCode int
	Body       []byte
	// ExpectedID and ActualID are set for ErrIDMismatch.
	ExpectedID *uint64
	ActualID   *uint64
	// Payload is the daemon's error member, verbatim.
	Payload json.RawMessage
	// Daemon is Payload decoded, when it has the usual {code, message} shape.
	Daemon *DaemonError
	Err    error
}

func (e *ResponseError) Error() string {
	switch {
	case errors.Is(e.Err, ErrIDMismatch):
		return fmt.Sprintf("%v (request id: %s, response id: %s)", e.Err, formatID(e.ExpectedID), formatID(e.ActualID))
	case errors.Is(e.Err, ErrDaemon):
		return fmt.Sprintf("%v: %s", e.Err, string(e.Payload))
	case errors.Is(e.Err, ErrHTTPStatus) && len(e.Request) == 0:
		return fmt.Sprintf("%s rejected the connection: %v %d: %s", e.Endpoint, e.Err, e.StatusCode, bytes.TrimSpace(e.Body))
	case errors.Is(e.Err, ErrHTTPStatus):
		return fmt.Sprintf("error processing request %s: %v %d", string(e.Request), e.Err, e.StatusCode)
	default:
		return fmt.Sprintf("error processing request %s: %v", string(e.Request), e.Err)
	}
}

func (e *ResponseError) Unwrap() error {
	return e.Err
}

// DaemonError is the conventional shape of a daemon error member.
type DaemonError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e DaemonError) Error() string {
	return fmt.Sprintf("daemon error %d: %s", e.Code, e.Message)
}

// decodeDaemonError returns nil unless payload is a {code, message} object.
func decodeDaemonError(payload json.RawMessage) *DaemonError {
	var de DaemonError
	if err := json.Unmarshal(payload, &de); err != nil || de.Message == "" {
		return nil
	}
	return &de
}

func formatID(id *uint64) string {
	if id == nil {
		return "null"
	}
	return fmt.Sprintf("%d", *id)
}
