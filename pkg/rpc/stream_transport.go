package rpc

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/weemen/vergeclient/pkg/log"
)

var _ Transport = (*StreamTransport)(nil)

// StreamConfig tunes the websocket binding.
type StreamConfig struct {
	// HandshakeTimeout bounds the websocket opening handshake.
	HandshakeTimeout time.Duration
	// WriteTimeout bounds a single frame write when ctx has no deadline.
	WriteTimeout time.Duration
}

var DefaultStreamConfig = StreamConfig{
	HandshakeTimeout: DefaultConnectTimeout,
	WriteTimeout:     10 * time.Second,
}

// StreamTransport talks to the daemon's websocket endpoint, e.g.
// "ws://user:pass@127.0.0.1:20102/ws". One call is in flight at a time.
//
// Daemons may answer notifications with a null-id frame. Those replies are
// counted as pending and discarded by the next call that expects an id; a
// call without an id takes the next frame as is.
type StreamTransport struct {
	cfg      StreamConfig
	endpoint *url.URL
	user     *url.Userinfo

	mu              sync.Mutex // serializes calls and guards the fields below
	conn            *websocket.Conn
	pendingNotifies int
}

func NewStreamTransport(endpoint string, cfg StreamConfig) (*StreamTransport, error) {
	u, user, err := parseEndpoint(endpoint, "ws", "wss")
	if err != nil {
		return nil, err
	}
	return &StreamTransport{cfg: cfg, endpoint: u, user: user}, nil
}

// Endpoint returns the endpoint with the password redacted.
func (t *StreamTransport) Endpoint() string {
	return redact(t.endpoint, t.user)
}

// Dial opens the websocket. A handshake the daemon rejects with a 4xx/5xx
// status is a *ResponseError; any other failure is a *ConnectionError.
func (t *StreamTransport) Dial(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conn != nil {
		return ErrAlreadyConnected
	}

	header := http.Header{}
	header.Set("User-Agent", ClientName)
	if t.user != nil {
		password, _ := t.user.Password()
		creds := base64.StdEncoding.EncodeToString([]byte(t.user.Username() + ":" + password))
		header.Set("Authorization", "Basic "+creds)
	}

	dialer := websocket.Dialer{HandshakeTimeout: t.cfg.HandshakeTimeout}
	conn, res, err := dialer.DialContext(ctx, t.endpoint.String(), header)
	if err != nil {
		if res != nil && res.StatusCode >= http.StatusBadRequest {
			var body []byte
			if res.Body != nil {
				body, _ = io.ReadAll(res.Body)
			}
			return &ResponseError{
				Endpoint:   t.Endpoint(),
				StatusCode: res.StatusCode,
				Body:       body,
				Err:        ErrHTTPStatus,
			}
		}
		return &ConnectionError{Endpoint: t.Endpoint(), Err: fmt.Errorf("%w: %w", ErrDialingWebsocket, err)}
	}

	t.conn = conn
	t.pendingNotifies = 0
	log.FromContext(ctx).Info("websocket connected", "endpoint", t.Endpoint())
	return nil
}

// IsConnected reports whether Dial succeeded and the connection has not
// failed or been closed since.
func (t *StreamTransport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn != nil
}

// Close closes the websocket; closing a closed transport is a no-op.
func (t *StreamTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dropLocked()
}

func (t *StreamTransport) dropLocked() error {
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	t.pendingNotifies = 0
	return err
}

func (t *StreamTransport) RoundTrip(ctx context.Context, req *Request) ([]byte, error) {
	lg := log.FromContext(ctx)

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMarshalingRequest, err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conn == nil {
		return nil, &ConnectionError{Endpoint: t.Endpoint(), Err: ErrNotConnected}
	}
	conn := t.conn

	writeDeadline := time.Now().Add(t.cfg.WriteTimeout)
	if d, ok := ctx.Deadline(); ok {
		writeDeadline = d
	}
	if err := conn.SetWriteDeadline(writeDeadline); err != nil {
		return nil, t.fail(ctx, ErrSendingRequest, err)
	}

	lg.Debug("sending request", "endpoint", t.Endpoint(), "body", string(payload))
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return nil, t.fail(ctx, ErrSendingRequest, err)
	}

	if req.IsNotification() {
		t.pendingNotifies++
		return nil, nil
	}

	readDeadline := time.Time{}
	if d, ok := ctx.Deadline(); ok {
		readDeadline = d
	}
	if err := conn.SetReadDeadline(readDeadline); err != nil {
		return nil, t.fail(ctx, ErrReadingMessage, err)
	}
	// Unblock the read when ctx is cancelled without a deadline.
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetReadDeadline(time.Now())
	})
	defer stop()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return nil, t.fail(ctx, ErrReadingMessage, err)
		}

		if req.ID != nil && t.pendingNotifies > 0 && frameHasNullID(msg) {
			t.pendingNotifies--
			lg.Debug("discarding notification reply", "endpoint", t.Endpoint(), "body", string(msg))
			continue
		}
		return msg, nil
	}
}

// frameHasNullID reports whether msg is an envelope whose id is null or
// missing. Undecodable frames report false and reach the caller as is.
func frameHasNullID(msg []byte) bool {
	var env struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(msg, &env); err != nil {
		return false
	}
	return isNull(env.ID)
}

// fail drops the connection, which is unusable after a failed read or write.
func (t *StreamTransport) fail(ctx context.Context, kind, err error) error {
	_ = t.dropLocked()
	if ctx.Err() != nil {
		err = fmt.Errorf("%w: %w", ctx.Err(), err)
	}
	return &ConnectionError{Endpoint: t.Endpoint(), Err: fmt.Errorf("%w: %w", kind, err)}
}
