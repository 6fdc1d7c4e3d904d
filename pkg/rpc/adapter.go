package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/weemen/vergeclient/pkg/log"
)

const tracerName = "github.com/weemen/vergeclient/pkg/rpc"

// Caller is the contract the wallet facade depends on.
type Caller interface {
	// Call sends a request and returns the daemon's result member verbatim.
	Call(ctx context.Context, method Method, params ...any) (json.RawMessage, error)
	// Notify sends a request with a null id and does not wait for a result.
	Notify(ctx context.Context, method Method, params ...any) error
}

var _ Caller = (*Adapter)(nil)

// Adapter turns method calls into JSON-RPC envelopes, dispatches them through
// a Transport and validates the responses. It is safe for concurrent use when
// its Transport is.
type Adapter struct {
	transport Transport
	ids       IDPolicy
	lg        log.Logger
	metrics   *Metrics
	tracer    trace.Tracer
	validate  *validator.Validate
}

// AdapterOption customizes an Adapter.
type AdapterOption func(*Adapter)

// WithIDPolicy overrides the correlation id policy of the binding.
func WithIDPolicy(ids IDPolicy) AdapterOption {
	return func(a *Adapter) {
		if ids != nil {
			a.ids = ids
		}
	}
}

// WithMetrics records per-call counters and latencies into m.
func WithMetrics(m *Metrics) AdapterOption {
	return func(a *Adapter) {
		a.metrics = m
	}
}

// WithTracerProvider starts call spans from tp instead of the global provider.
func WithTracerProvider(tp trace.TracerProvider) AdapterOption {
	return func(a *Adapter) {
		if tp != nil {
			a.tracer = tp.Tracer(tracerName)
		}
	}
}

// NewAdapter binds an arbitrary transport. Ids default to a counter.
func NewAdapter(transport Transport, lg log.Logger, opts ...AdapterOption) *Adapter {
	if lg == nil {
		lg = log.NewNoopLogger()
	}

	a := &Adapter{
		transport: transport,
		ids:       NewCounterIDs(),
		lg:        lg.WithName("rpc"),
		tracer:    otel.GetTracerProvider().Tracer(tracerName),
		validate:  getValidator(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// NewHTTPAdapter binds the HTTP transport. Every call carries userID as its
// correlation id; with a nil userID ids are null and not checked.
func NewHTTPAdapter(client *http.Client, endpoint string, lg log.Logger, userID *uint64, opts ...AdapterOption) (*Adapter, error) {
	transport, err := NewHTTPTransport(client, endpoint)
	if err != nil {
		return nil, err
	}

	ids := NoID()
	if lg == nil {
		lg = log.NewNoopLogger()
	}
	if userID != nil {
		ids = FixedID(*userID)
		lg = lg.WithKV("userID", *userID)
	}
	lg = lg.WithKV("endpoint", transport.Endpoint())

	return NewAdapter(transport, lg, append([]AdapterOption{WithIDPolicy(ids)}, opts...)...), nil
}

// NewStreamAdapter binds a websocket transport with counter ids. The caller
// dials and closes the stream.
func NewStreamAdapter(stream *StreamTransport, lg log.Logger, opts ...AdapterOption) *Adapter {
	if lg == nil {
		lg = log.NewNoopLogger()
	}
	lg = lg.WithKV("endpoint", stream.Endpoint())
	return NewAdapter(stream, lg, append([]AdapterOption{WithIDPolicy(NewCounterIDs())}, opts...)...)
}

func (a *Adapter) Call(ctx context.Context, method Method, params ...any) (json.RawMessage, error) {
	return a.invoke(ctx, method, params, false)
}

func (a *Adapter) Notify(ctx context.Context, method Method, params ...any) error {
	_, err := a.invoke(ctx, method, params, true)
	return err
}

func (a *Adapter) invoke(ctx context.Context, method Method, params []any, notify bool) (result json.RawMessage, err error) {
	ctx, span := a.tracer.Start(ctx, "rpc."+method.String(),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("rpc.system", "jsonrpc"),
			attribute.String("rpc.method", method.String()),
		),
	)
	defer span.End()

	ctx = log.SetContextLogger(ctx, a.lg)
	lg := log.FromContext(ctx)

	startedAt := time.Now()
	defer func() {
		outcome := callOutcome(err, notify)
		a.metrics.observe(method, outcome, time.Since(startedAt))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
		}
	}()

	if err := method.checkCall(len(params)); err != nil {
		return nil, err
	}

	var req *Request
	if notify {
		req = NewNotification(method, params)
	} else {
		req = NewRequest(method, params, a.ids.NextID())
	}

	if err := a.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	lg.Info("request created", "method", method.String(), "id", formatID(req.ID), "params", len(params))

	body, err := a.transport.RoundTrip(ctx, req)
	if err != nil {
		lg.Error("request failed", "method", method.String(), "error", err)
		return nil, err
	}

	if notify {
		return nil, nil
	}

	result, err = a.validateResponse(req, body)
	if err != nil {
		lg.Error("invalid response", "method", method.String(), "error", err)
		return nil, err
	}
	return result, nil
}

func (a *Adapter) validateResponse(req *Request, body []byte) (json.RawMessage, error) {
	var res Response
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, a.responseError(req, &ResponseError{
			Body: body,
			Err:  fmt.Errorf("%w: %w", ErrMalformedResponse, err),
		})
	}

	if req.ID != nil && (res.ID == nil || *res.ID != *req.ID) {
		return nil, a.responseError(req, &ResponseError{
			ExpectedID: req.ID,
			ActualID:   res.ID,
			Err:        ErrIDMismatch,
		})
	}

	if res.HasError() {
		return nil, a.responseError(req, &ResponseError{
			Payload: res.Error,
			Daemon:  decodeDaemonError(res.Error),
			Err:     ErrDaemon,
		})
	}

	return res.Result, nil
}

// responseError attaches the serialized request to resErr.
func (a *Adapter) responseError(req *Request, resErr *ResponseError) error {
	if payload, err := json.Marshal(req); err == nil {
		resErr.Request = payload
	}
	return resErr
}

// callOutcome labels a finished call for metrics and spans.
func callOutcome(err error, notify bool) string {
	var (
		connErr *ConnectionError
		resErr  *ResponseError
	)
	switch {
	case err == nil && notify:
		return OutcomeNotified
	case err == nil:
		return OutcomeOK
	case errors.Is(err, ErrUnsupportedMethod):
		return OutcomeUnsupported
	case errors.Is(err, ErrInvalidParams):
		return OutcomeInvalidParams
	case errors.As(err, &connErr):
		return OutcomeConnectionError
	case errors.As(err, &resErr):
		return OutcomeResponseError
	default:
		return OutcomeError
	}
}
