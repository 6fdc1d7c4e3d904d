package rpc

import (
	"fmt"
	"sort"
)

// Method is a wallet daemon RPC method the adapter is willing to forward.
// The set of constants below is the complete allow-list; any other value is
// rejected before dispatch.
type Method string

const (
	// GetAccountMethod returns the account an address belongs to.
	GetAccountMethod Method = "getaccount"
	// GetAccountAddressMethod returns the current receiving address of an account.
	GetAccountAddressMethod Method = "getaccountaddress"
	// GetAddressMethod is the legacy alias some daemon builds still expose.
	GetAddressMethod Method = "getaddress"
	// GetBalanceMethod returns the balance of an account.
	GetBalanceMethod Method = "getbalance"
	// GetNewAddressMethod creates a new receiving address.
	GetNewAddressMethod Method = "getnewaddress"
	// GetTransactionMethod returns details of an in-wallet transaction.
	GetTransactionMethod Method = "gettransaction"
	// ListAccountsMethod returns every account with its balance.
	ListAccountsMethod Method = "listaccounts"
	// MoveMethod moves funds between two accounts of the same wallet.
	MoveMethod Method = "move"
	// SendFromMethod sends funds from an account to an external address.
	SendFromMethod Method = "sendfrom"
	// SetAccountMethod assigns an address to an account.
	SetAccountMethod Method = "setaccount"
	// ValidateAddressMethod asks the daemon whether an address is well formed.
	ValidateAddressMethod Method = "validateaddress"
)

// paramShape bounds the number of positional params a method accepts.
type paramShape struct {
	min, max int
}

var methodShapes = map[Method]paramShape{
	GetAccountMethod:        {1, 1},
	GetAccountAddressMethod: {1, 1},
	GetAddressMethod:        {0, 1},
	GetBalanceMethod:        {0, 3}, // account, minconf, include watch-only
	GetNewAddressMethod:     {0, 1},
	GetTransactionMethod:    {1, 2},
	ListAccountsMethod:      {0, 2},
	MoveMethod:              {3, 5}, // from, to, amount, minconf, comment
	SendFromMethod:          {3, 6}, // from, to, amount, minconf, comment, comment-to
	SetAccountMethod:        {2, 2},
	ValidateAddressMethod:   {1, 1},
}

// String returns the wire name of the method.
func (m Method) String() string {
	return string(m)
}

// IsAllowed reports whether m is on the allow-list. Matching is exact and
// case-sensitive.
func (m Method) IsAllowed() bool {
	_, ok := methodShapes[m]
	return ok
}

// ParseMethod resolves a free-form method name, e.g. one typed into the CLI.
func ParseMethod(name string) (Method, error) {
	m := Method(name)
	if !m.IsAllowed() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedMethod, name)
	}
	return m, nil
}

// Methods returns the allow-list in lexical order.
func Methods() []Method {
	methods := make([]Method, 0, len(methodShapes))
	for m := range methodShapes {
		methods = append(methods, m)
	}
	sort.Slice(methods, func(i, j int) bool { return methods[i] < methods[j] })
	return methods
}

// checkCall rejects methods off the allow-list and param counts outside the
// method's shape.
func (m Method) checkCall(numParams int) error {
	shape, ok := methodShapes[m]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedMethod, string(m))
	}
	if numParams < shape.min || numParams > shape.max {
		if shape.min == shape.max {
			return fmt.Errorf("%w: %s takes %d params, got %d", ErrInvalidParams, m, shape.min, numParams)
		}
		return fmt.Errorf("%w: %s takes %d to %d params, got %d", ErrInvalidParams, m, shape.min, shape.max, numParams)
	}
	return nil
}
