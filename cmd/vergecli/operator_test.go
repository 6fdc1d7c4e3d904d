package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/c-bata/go-prompt"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weemen/vergeclient/pkg/rpc"
	"github.com/weemen/vergeclient/pkg/wallet"
)

type stubCall struct {
	method rpc.Method
	params []any
}

// stubCaller answers with canned results and records calls.
type stubCaller struct {
	results map[rpc.Method]string
	calls   []stubCall
}

func (s *stubCaller) Call(_ context.Context, method rpc.Method, params ...any) (json.RawMessage, error) {
	s.calls = append(s.calls, stubCall{method: method, params: params})
	res, ok := s.results[method]
	if !ok {
		return nil, fmt.Errorf("unexpected call to %s", method)
	}
	return json.RawMessage(res), nil
}

func (s *stubCaller) Notify(ctx context.Context, method rpc.Method, params ...any) error {
	_, err := s.Call(ctx, method, params...)
	return err
}

func newTestOperator(results map[rpc.Method]string) (*Operator, *stubCaller, *bytes.Buffer) {
	caller := &stubCaller{results: results}
	out := &bytes.Buffer{}
	return NewOperator(caller, wallet.NewClient(caller), out, time.Second), caller, out
}

func TestOperator_Run(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("accounts", func(t *testing.T) {
		t.Parallel()
		o, _, out := newTestOperator(map[rpc.Method]string{
			rpc.ListAccountsMethod: `{"": 0.5, "bob": 2, "alice": 1000.25}`,
		})

		require.NoError(t, o.Run(ctx, []string{"accounts"}))
		got := out.String()
		assert.Contains(t, got, "(default)")
		assert.Contains(t, got, "1000.25")
		assert.Contains(t, got, "2.0")
		assert.Contains(t, got, "1002.75")
		assert.Less(t, bytes.Index(out.Bytes(), []byte("alice")), bytes.Index(out.Bytes(), []byte("bob")))
	})

	t.Run("balance with minconf", func(t *testing.T) {
		t.Parallel()
		o, caller, out := newTestOperator(map[rpc.Method]string{
			rpc.ListAccountsMethod: `{"alice": 3}`,
			rpc.GetBalanceMethod:   `3`,
		})

		require.NoError(t, o.Run(ctx, []string{"balance", "alice", "6"}))
		assert.Equal(t, "3.0\n", out.String())
		last := caller.calls[len(caller.calls)-1]
		assert.Equal(t, []any{"alice", 6}, last.params)
	})

	t.Run("send", func(t *testing.T) {
		t.Parallel()
		o, caller, out := newTestOperator(map[rpc.Method]string{
			rpc.ListAccountsMethod:    `{"alice": 100}`,
			rpc.ValidateAddressMethod: `{"isvalid": true}`,
			rpc.SendFromMethod:        `"6c7f1d0b"`,
		})

		require.NoError(t, o.Run(ctx, []string{"send", "alice", "DAddr", "1.5"}))
		assert.Contains(t, out.String(), "TxID: 6c7f1d0b")
		last := caller.calls[len(caller.calls)-1]
		assert.Equal(t, rpc.SendFromMethod, last.method)
	})

	t.Run("move to unknown account", func(t *testing.T) {
		t.Parallel()
		o, _, _ := newTestOperator(map[rpc.Method]string{
			rpc.ListAccountsMethod: `{"alice": 1000}`,
		})

		err := o.Run(ctx, []string{"move", "alice", "bob", "1000"})
		assert.ErrorIs(t, err, wallet.ErrInvalidAccount)
	})

	t.Run("raw", func(t *testing.T) {
		t.Parallel()
		o, caller, out := newTestOperator(map[rpc.Method]string{
			rpc.GetBalanceMethod: `12.5`,
		})

		require.NoError(t, o.Run(ctx, []string{"raw", "getbalance", "alice", "6", "true"}))
		assert.Equal(t, "12.5\n", out.String())
		assert.Equal(t, []any{"alice", json.Number("6"), true}, caller.calls[0].params)
	})

	t.Run("raw unsupported method", func(t *testing.T) {
		t.Parallel()
		o, caller, _ := newTestOperator(nil)

		err := o.Run(ctx, []string{"raw", "dumpprivkey", "DAddr"})
		assert.ErrorIs(t, err, rpc.ErrUnsupportedMethod)
		assert.Empty(t, caller.calls)
	})

	t.Run("usage errors", func(t *testing.T) {
		t.Parallel()
		o, caller, _ := newTestOperator(nil)

		for _, args := range [][]string{
			{"address"},
			{"balance"},
			{"move", "alice", "bob"},
			{"send", "alice", "DAddr", "lots"},
			{"setaccount", "DAddr"},
		} {
			assert.Error(t, o.Run(ctx, args), args)
		}
		assert.Empty(t, caller.calls)
	})

	t.Run("unknown command", func(t *testing.T) {
		t.Parallel()
		o, _, _ := newTestOperator(nil)
		assert.EqualError(t, o.Run(ctx, []string{"stop"}), "unknown command: stop")
	})
}

func TestOperator_Execute(t *testing.T) {
	t.Parallel()

	o, _, out := newTestOperator(map[rpc.Method]string{
		rpc.GetAccountAddressMethod: `"DAlice"`,
	})

	o.Execute("address alice")
	assert.Equal(t, "DAlice\n", out.String())

	out.Reset()
	o.Execute("tx")
	assert.Contains(t, out.String(), "Error: usage: tx <txid>")

	o.Execute("exit")
	select {
	case <-o.Wait():
	default:
		t.Fatal("operator did not exit")
	}
	o.Execute("exit")
}

func TestOperator_Complete(t *testing.T) {
	t.Parallel()

	o, _, _ := newTestOperator(nil)

	complete := func(text string) []string {
		buf := prompt.NewBuffer()
		buf.InsertText(text, false, true)
		var texts []string
		for _, s := range o.Complete(*buf.Document()) {
			texts = append(texts, s.Text)
		}
		return texts
	}

	assert.ElementsMatch(t, []string{"send", "setaccount"}, complete("se"))
	assert.Equal(t, []string{"validateaddress"}, complete("raw va"))
	assert.Empty(t, complete("balance alice "))
}

func TestParseRawArg(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "alice", parseRawArg("alice"))
	assert.Equal(t, "alice", parseRawArg(`"alice"`))
	assert.Equal(t, json.Number("1.5"), parseRawArg("1.5"))
	assert.Equal(t, "12abc", parseRawArg("12abc"))
	assert.Equal(t, false, parseRawArg("false"))
}

func TestFmtDec(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "1000.0", fmtDec(decimal.NewFromInt(1000)))
	assert.Equal(t, "0.125", fmtDec(decimal.RequireFromString("0.125")))
}
