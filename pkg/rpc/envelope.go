package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Request is the envelope sent to the daemon:
//
//	{"method": "getbalance", "params": ["alice", 1], "id": 1}
//
// A nil ID is encoded as null. Notifications always carry a null id, but a
// null id alone does not make a notification: calls under NoID have one too.
type Request struct {
	Method Method  `json:"method" validate:"required,walletmethod"`
	Params []any   `json:"params" validate:"required"`
	ID     *uint64 `json:"id"`

	notify bool
}

// NewRequest builds a call envelope with params in call order. Nil params
// are sent as an empty array.
func NewRequest(method Method, params []any, id *uint64) *Request {
	if params == nil {
		params = []any{}
	}
	return &Request{Method: method, Params: params, ID: id}
}

// NewNotification builds an envelope with a null id for which no response
// is awaited.
func NewNotification(method Method, params []any) *Request {
	req := NewRequest(method, params, nil)
	req.notify = true
	return req
}

// IsNotification reports whether no response is expected.
func (r *Request) IsNotification() bool {
	return r.notify
}

// Response is the envelope returned by the daemon:
//
//	{"result": 1000.5, "error": null, "id": 1}
type Response struct {
	ID     *uint64         `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  json.RawMessage `json:"error"`
}

// HasError reports whether the error member is present and not null.
func (r *Response) HasError() bool {
	return !isNull(r.Error)
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// getValidator returns a validator that knows the walletmethod rule.
func getValidator() *validator.Validate {
	validate := validator.New()

	if err := validate.RegisterValidation("walletmethod", func(fl validator.FieldLevel) bool {
		return Method(fl.Field().String()).IsAllowed()
	}); err != nil {
		panic(fmt.Sprintf("failed to register walletmethod validation: %v", err))
	}
	return validate
}
