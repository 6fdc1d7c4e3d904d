package rpc_test

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/weemen/vergeclient/pkg/rpc"
)

// MockHandler answers one request. Returning nil body and nil error for a
// non-notification produces an empty body.
type MockHandler func(req *rpc.Request) ([]byte, error)

// MockTransport dispatches requests to handlers registered per method and
// records every envelope it receives.
type MockTransport struct {
	mu       sync.Mutex
	handlers map[rpc.Method]MockHandler
	requests []rpc.Request
}

func NewMockTransport() *MockTransport {
	return &MockTransport{handlers: make(map[rpc.Method]MockHandler)}
}

func (mt *MockTransport) Handle(method rpc.Method, handler MockHandler) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.handlers[method] = handler
}

// HandleResult answers method with result, echoing the request id.
func (mt *MockTransport) HandleResult(method rpc.Method, result any) {
	mt.Handle(method, func(req *rpc.Request) ([]byte, error) {
		return json.Marshal(map[string]any{"id": req.ID, "result": result, "error": nil})
	})
}

func (mt *MockTransport) RoundTrip(_ context.Context, req *rpc.Request) ([]byte, error) {
	mt.mu.Lock()
	mt.requests = append(mt.requests, *req)
	handler, ok := mt.handlers[req.Method]
	mt.mu.Unlock()

	if !ok {
		return json.Marshal(map[string]any{
			"id":     req.ID,
			"result": nil,
			"error":  map[string]any{"code": -32601, "message": "Method not found"},
		})
	}
	return handler(req)
}

func (mt *MockTransport) Requests() []rpc.Request {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	return append([]rpc.Request(nil), mt.requests...)
}

func (mt *MockTransport) LastRequest() rpc.Request {
	reqs := mt.Requests()
	if len(reqs) == 0 {
		return rpc.Request{}
	}
	return reqs[len(reqs)-1]
}
