package wallet_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/weemen/vergeclient/pkg/rpc"
)

type mockCall struct {
	Method rpc.Method
	Params []any
}

// MockCaller answers calls with canned results per method and counts every
// dispatch.
type MockCaller struct {
	mu      sync.Mutex
	results map[rpc.Method]json.RawMessage
	errs    map[rpc.Method]error
	calls   []mockCall
}

func NewMockCaller() *MockCaller {
	return &MockCaller{
		results: make(map[rpc.Method]json.RawMessage),
		errs:    make(map[rpc.Method]error),
	}
}

func (mc *MockCaller) SetResult(method rpc.Method, result string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.results[method] = json.RawMessage(result)
}

func (mc *MockCaller) SetError(method rpc.Method, err error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.errs[method] = err
}

func (mc *MockCaller) Call(_ context.Context, method rpc.Method, params ...any) (json.RawMessage, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.calls = append(mc.calls, mockCall{Method: method, Params: params})
	if err, ok := mc.errs[method]; ok {
		return nil, err
	}
	if res, ok := mc.results[method]; ok {
		return res, nil
	}
	return nil, fmt.Errorf("unexpected call to %s", method)
}

func (mc *MockCaller) Notify(ctx context.Context, method rpc.Method, params ...any) error {
	_, err := mc.Call(ctx, method, params...)
	return err
}

// Count returns how many times method was dispatched.
func (mc *MockCaller) Count(method rpc.Method) int {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	n := 0
	for _, c := range mc.calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

func (mc *MockCaller) Calls() []mockCall {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return append([]mockCall(nil), mc.calls...)
}

// LastCall returns the most recent dispatch of method.
func (mc *MockCaller) LastCall(method rpc.Method) (mockCall, bool) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	for i := len(mc.calls) - 1; i >= 0; i-- {
		if mc.calls[i].Method == method {
			return mc.calls[i], true
		}
	}
	return mockCall{}, false
}
