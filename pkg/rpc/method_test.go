package rpc

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMethod(t *testing.T) {
	t.Parallel()

	for _, m := range Methods() {
		parsed, err := ParseMethod(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, parsed)
	}

	for _, name := range []string{"send", "GETBALANCE", "getBalance", " getbalance", "stop", ""} {
		_, err := ParseMethod(name)
		assert.ErrorIs(t, err, ErrUnsupportedMethod, name)
	}
}

func TestMethods(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []Method{
		GetAccountMethod,
		GetAccountAddressMethod,
		GetAddressMethod,
		GetBalanceMethod,
		GetNewAddressMethod,
		GetTransactionMethod,
		ListAccountsMethod,
		MoveMethod,
		SendFromMethod,
		SetAccountMethod,
		ValidateAddressMethod,
	}, Methods())
}

func TestMethod_checkCall(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		method    Method
		numParams int
		err       error
	}{
		{GetBalanceMethod, 0, nil},
		{GetBalanceMethod, 3, nil},
		{GetBalanceMethod, 4, ErrInvalidParams},
		{SetAccountMethod, 2, nil},
		{SetAccountMethod, 1, ErrInvalidParams},
		{MoveMethod, 2, ErrInvalidParams},
		{MoveMethod, 5, nil},
		{SendFromMethod, 6, nil},
		{SendFromMethod, 7, ErrInvalidParams},
		{ValidateAddressMethod, 0, ErrInvalidParams},
		{Method("send"), 3, ErrUnsupportedMethod},
		// unsupported wins over arity
		{Method("dumpwallet"), 100, ErrUnsupportedMethod},
	}

	for _, tc := range tcs {
		err := tc.method.checkCall(tc.numParams)
		if tc.err == nil {
			assert.NoError(t, err, "%s/%d", tc.method, tc.numParams)
			continue
		}
		assert.ErrorIs(t, err, tc.err, "%s/%d", tc.method, tc.numParams)
	}
}

func TestRequestValidation(t *testing.T) {
	t.Parallel()

	validate := getValidator()

	require.NoError(t, validate.Struct(NewRequest(GetBalanceMethod, nil, nil)))
	assert.Error(t, validate.Struct(&Request{Method: GetBalanceMethod}))
	assert.Error(t, validate.Struct(NewRequest(Method("send"), nil, nil)))
}

func TestRequest_IsNotification(t *testing.T) {
	t.Parallel()

	call := NewRequest(GetAccountMethod, []any{"DAddr"}, nil)
	notification := NewNotification(GetAccountMethod, []any{"DAddr"})

	assert.False(t, call.IsNotification())
	assert.True(t, notification.IsNotification())

	// both encode the same way on the wire
	for _, req := range []*Request{call, notification} {
		raw, err := json.Marshal(req)
		require.NoError(t, err)
		assert.JSONEq(t, `{"method":"getaccount","params":["DAddr"],"id":null}`, string(raw))
	}
}
