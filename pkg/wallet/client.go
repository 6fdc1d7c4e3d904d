// Package wallet is the account-level API of a Verge wallet daemon. It sits
// on top of an rpc.Caller and checks accounts and addresses with the daemon
// before moving funds.
package wallet

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/weemen/vergeclient/pkg/log"
	"github.com/weemen/vergeclient/pkg/rpc"
)

// DefaultMinConf is the number of confirmations GetBalance asks for. Daemons
// accept it as an integer.
const DefaultMinConf = 1

// Client exposes the wallet operations. It never owns the transport behind
// its caller.
type Client struct {
	caller rpc.Caller
	lg     log.Logger
}

type Option func(*Client)

// WithLogger sets the logger guard failures are reported to.
func WithLogger(lg log.Logger) Option {
	return func(c *Client) {
		if lg != nil {
			c.lg = lg
		}
	}
}

func NewClient(caller rpc.Caller, opts ...Option) *Client {
	c := &Client{
		caller: caller,
		lg:     log.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.lg = c.lg.WithName("wallet")
	return c
}

// GetAddress returns the receiving address of account, creating the account
// on the daemon if needed.
func (c *Client) GetAddress(ctx context.Context, account string) (string, error) {
	var address string
	if err := c.call(ctx, &address, rpc.GetAccountAddressMethod, account); err != nil {
		return "", err
	}
	return address, nil
}

// GetAccount returns the account address belongs to.
func (c *Client) GetAccount(ctx context.Context, address string) (string, error) {
	if err := c.requireValidAddress(ctx, "Address", address); err != nil {
		return "", err
	}

	var account string
	if err := c.call(ctx, &account, rpc.GetAccountMethod, address); err != nil {
		return "", err
	}
	return account, nil
}

// GetNewAddress creates an address for account. An empty account is the
// wallet's default account.
func (c *Client) GetNewAddress(ctx context.Context, account string) (string, error) {
	var address string
	if err := c.call(ctx, &address, rpc.GetNewAddressMethod, account); err != nil {
		return "", err
	}
	return address, nil
}

// ListAccounts returns every account with its balance.
func (c *Client) ListAccounts(ctx context.Context) (map[string]decimal.Decimal, error) {
	var accounts map[string]decimal.Decimal
	if err := c.call(ctx, &accounts, rpc.ListAccountsMethod); err != nil {
		return nil, err
	}
	if accounts == nil {
		accounts = map[string]decimal.Decimal{}
	}
	return accounts, nil
}

// GetTransaction returns the details of an in-wallet transaction.
func (c *Client) GetTransaction(ctx context.Context, txid string) (*Transaction, error) {
	raw, err := c.caller.Call(ctx, rpc.GetTransactionMethod, txid)
	if err != nil {
		return nil, err
	}

	tx := &Transaction{Raw: raw}
	if err := json.Unmarshal(raw, tx); err != nil {
		return nil, fmt.Errorf("decoding %s result: %w", rpc.GetTransactionMethod, err)
	}
	return tx, nil
}

// SetAccount assigns address to an existing account. The address is checked
// first.
func (c *Client) SetAccount(ctx context.Context, address, account string) error {
	if err := c.requireValidAddress(ctx, "Address", address); err != nil {
		return err
	}
	if err := c.requireAccount(ctx, "Account", account); err != nil {
		return err
	}

	_, err := c.caller.Call(ctx, rpc.SetAccountMethod, address, account)
	return err
}

// GetBalance returns the balance of account with DefaultMinConf
// confirmations.
func (c *Client) GetBalance(ctx context.Context, account string) (decimal.Decimal, error) {
	return c.GetBalanceMinConf(ctx, account, DefaultMinConf)
}

// GetBalanceMinConf returns the balance of account counting only
// transactions with at least minConf confirmations. minConf is a whole
// number of confirmations; it is sent as a JSON integer, so the default of 1
// goes out as 1 rather than 1.0.
func (c *Client) GetBalanceMinConf(ctx context.Context, account string, minConf int) (decimal.Decimal, error) {
	if err := c.requireAccount(ctx, "Source account", account); err != nil {
		return decimal.Zero, err
	}

	var balance decimal.Decimal
	if err := c.call(ctx, &balance, rpc.GetBalanceMethod, account, minConf); err != nil {
		return decimal.Zero, err
	}
	return balance, nil
}

// Move transfers amount between two accounts of the wallet. Both accounts
// must exist; amount is passed to the daemon unchecked.
func (c *Client) Move(ctx context.Context, from, to string, amount decimal.Decimal) (bool, error) {
	if err := c.requireAccount(ctx, "Source account", from); err != nil {
		return false, err
	}
	if err := c.requireAccount(ctx, "Destination account", to); err != nil {
		return false, err
	}

	var moved bool
	if err := c.call(ctx, &moved, rpc.MoveMethod, from, to, amountParam(amount)); err != nil {
		return false, err
	}
	return moved, nil
}

// Send pays amount from account to an external address and returns the
// transaction id. amount is passed to the daemon unchecked.
func (c *Client) Send(ctx context.Context, from, toAddress string, amount decimal.Decimal) (string, error) {
	if err := c.requireAccount(ctx, "Source account", from); err != nil {
		return "", err
	}
	if err := c.requireValidAddress(ctx, "Destination address", toAddress); err != nil {
		return "", err
	}

	var txid string
	if err := c.call(ctx, &txid, rpc.SendFromMethod, from, toAddress, amountParam(amount)); err != nil {
		return "", err
	}
	return txid, nil
}

// ValidateAddress asks the daemon about address. An invalid address is not
// an error.
func (c *Client) ValidateAddress(ctx context.Context, address string) (*AddressValidation, error) {
	raw, err := c.caller.Call(ctx, rpc.ValidateAddressMethod, address)
	if err != nil {
		return nil, err
	}

	v := &AddressValidation{Raw: raw}
	if err := json.Unmarshal(raw, v); err != nil {
		return nil, fmt.Errorf("decoding %s result: %w", rpc.ValidateAddressMethod, err)
	}
	return v, nil
}

// requireAccount fetches a fresh listing and checks account is in it.
func (c *Client) requireAccount(ctx context.Context, subject, account string) error {
	accounts, err := c.ListAccounts(ctx)
	if err != nil {
		return err
	}
	if _, ok := accounts[account]; ok {
		return nil
	}

	err = &InvalidAccountError{Subject: subject, Value: account, Reason: ReasonNotExist}
	c.lg.Warn("guard failed", "error", err)
	return err
}

func (c *Client) requireValidAddress(ctx context.Context, subject, address string) error {
	v, err := c.ValidateAddress(ctx, address)
	if err != nil {
		return err
	}
	if v.IsValid {
		return nil
	}

	err = &InvalidAccountError{Subject: subject, Value: address, Reason: ReasonInvalidAddress}
	c.lg.Warn("guard failed", "error", err)
	return err
}

// call invokes method and decodes its result into out.
func (c *Client) call(ctx context.Context, out any, method rpc.Method, params ...any) error {
	raw, err := c.caller.Call(ctx, method, params...)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding %s result: %w", method, err)
	}
	return nil
}
