package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/c-bata/go-prompt"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/shopspring/decimal"

	"github.com/weemen/vergeclient/pkg/rpc"
	"github.com/weemen/vergeclient/pkg/wallet"
)

var errUsage = errors.New("usage")

type Operator struct {
	wallet      *wallet.Client
	caller      rpc.Caller
	out         io.Writer
	callTimeout time.Duration

	exitCh   chan struct{}
	exitOnce sync.Once
}

func NewOperator(caller rpc.Caller, client *wallet.Client, out io.Writer, callTimeout time.Duration) *Operator {
	return &Operator{
		wallet:      client,
		caller:      caller,
		out:         out,
		callTimeout: callTimeout,
		exitCh:      make(chan struct{}),
	}
}

var commandSuggestions = []prompt.Suggest{
	{Text: "accounts", Description: "List accounts and their balances"},
	{Text: "address", Description: "Show the receiving address of an account"},
	{Text: "newaddress", Description: "Create a new address, optionally for an account"},
	{Text: "account", Description: "Show the account an address belongs to"},
	{Text: "balance", Description: "Show the balance of an account"},
	{Text: "tx", Description: "Show an in-wallet transaction"},
	{Text: "setaccount", Description: "Assign an address to an account"},
	{Text: "move", Description: "Move funds between two accounts of this wallet"},
	{Text: "send", Description: "Send funds from an account to an address"},
	{Text: "validate", Description: "Validate an address"},
	{Text: "raw", Description: "Call an allowed wallet method with JSON arguments"},
	{Text: "exit", Description: "Exit the application"},
}

func (o *Operator) Complete(d prompt.Document) []prompt.Suggest {
	return prompt.FilterHasPrefix(o.complete(d), d.GetWordBeforeCursor(), true)
}

func (o *Operator) complete(d prompt.Document) []prompt.Suggest {
	args := strings.Split(d.TextBeforeCursor(), " ")

	if len(args) < 2 {
		return commandSuggestions
	}

	if len(args) < 3 && args[0] == "raw" {
		methods := rpc.Methods()
		suggestions := make([]prompt.Suggest, 0, len(methods))
		for _, m := range methods {
			suggestions = append(suggestions, prompt.Suggest{Text: m.String()})
		}
		return suggestions
	}

	return nil
}

// Execute runs one line typed into the prompt.
func (o *Operator) Execute(s string) {
	args := strings.Fields(s)
	if len(args) == 0 {
		return
	}

	if args[0] == "exit" {
		o.exit()
		return
	}

	if err := o.Run(context.Background(), args); err != nil {
		fmt.Fprintf(o.out, "Error: %s\n", err.Error())
	}
}

func (o *Operator) Wait() <-chan struct{} {
	return o.exitCh
}

func (o *Operator) exit() {
	o.exitOnce.Do(func() { close(o.exitCh) })
}

// Run executes a single command.
func (o *Operator) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: <command> [args...]", errUsage)
	}

	ctx, cancel := context.WithTimeout(ctx, o.callTimeout)
	defer cancel()

	switch args[0] {
	case "accounts":
		return o.handleListAccounts(ctx)
	case "address":
		if len(args) != 2 {
			return fmt.Errorf("%w: address <account>", errUsage)
		}
		return o.printLine(o.wallet.GetAddress(ctx, args[1]))
	case "newaddress":
		if len(args) > 2 {
			return fmt.Errorf("%w: newaddress [account]", errUsage)
		}
		account := ""
		if len(args) == 2 {
			account = args[1]
		}
		return o.printLine(o.wallet.GetNewAddress(ctx, account))
	case "account":
		if len(args) != 2 {
			return fmt.Errorf("%w: account <address>", errUsage)
		}
		return o.printLine(o.wallet.GetAccount(ctx, args[1]))
	case "balance":
		return o.handleBalance(ctx, args)
	case "tx":
		if len(args) != 2 {
			return fmt.Errorf("%w: tx <txid>", errUsage)
		}
		return o.handleTransaction(ctx, args[1])
	case "setaccount":
		if len(args) != 3 {
			return fmt.Errorf("%w: setaccount <address> <account>", errUsage)
		}
		if err := o.wallet.SetAccount(ctx, args[1], args[2]); err != nil {
			return err
		}
		fmt.Fprintf(o.out, "Address %s assigned to %s\n", args[1], args[2])
		return nil
	case "move":
		return o.handleMove(ctx, args)
	case "send":
		return o.handleSend(ctx, args)
	case "validate":
		if len(args) != 2 {
			return fmt.Errorf("%w: validate <address>", errUsage)
		}
		return o.handleValidate(ctx, args[1])
	case "raw":
		return o.handleRaw(ctx, args)
	default:
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

func (o *Operator) handleListAccounts(ctx context.Context) error {
	accounts, err := o.wallet.ListAccounts(ctx)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(accounts))
	for name := range accounts {
		names = append(names, name)
	}
	sort.Strings(names)

	t := table.NewWriter()
	t.SetOutputMirror(o.out)
	t.AppendHeader(table.Row{"Account", "Balance"})
	t.AppendSeparator()

	total := decimal.Zero
	for _, name := range names {
		display := name
		if display == "" {
			display = "(default)"
		}
		t.AppendRow(table.Row{display, fmtDec(accounts[name])})
		total = total.Add(accounts[name])
	}
	t.AppendFooter(table.Row{"Total", fmtDec(total)})
	t.Render()
	return nil
}

func (o *Operator) handleBalance(ctx context.Context, args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return fmt.Errorf("%w: balance <account> [minconf]", errUsage)
	}

	minConf := wallet.DefaultMinConf
	if len(args) == 3 {
		var err error
		if minConf, err = strconv.Atoi(args[2]); err != nil {
			return fmt.Errorf("invalid minconf %q: %w", args[2], err)
		}
	}

	balance, err := o.wallet.GetBalanceMinConf(ctx, args[1], minConf)
	if err != nil {
		return err
	}
	fmt.Fprintln(o.out, fmtDec(balance))
	return nil
}

func (o *Operator) handleTransaction(ctx context.Context, txid string) error {
	tx, err := o.wallet.GetTransaction(ctx, txid)
	if err != nil {
		return err
	}

	fee := "N/A"
	if tx.Fee.Valid {
		fee = fmtDec(tx.Fee.Decimal)
	}

	fmt.Fprintf(o.out, "TxID:          %s\n", tx.TxID)
	fmt.Fprintf(o.out, "Amount:        %s\n", fmtDec(tx.Amount))
	fmt.Fprintf(o.out, "Fee:           %s\n", fee)
	fmt.Fprintf(o.out, "Confirmations: %d\n", tx.Confirmations)
	if tx.BlockHash != "" {
		fmt.Fprintf(o.out, "Block:         %s\n", tx.BlockHash)
	}
	fmt.Fprintf(o.out, "Time:          %s\n", time.Unix(tx.Time, 0).UTC().Format(time.RFC3339))

	if len(tx.Details) == 0 {
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(o.out)
	t.AppendHeader(table.Row{"Account", "Address", "Category", "Amount"})
	t.AppendSeparator()
	for _, d := range tx.Details {
		t.AppendRow(table.Row{d.Account, d.Address, d.Category, fmtDec(d.Amount)})
	}
	t.Render()
	return nil
}

func (o *Operator) handleMove(ctx context.Context, args []string) error {
	if len(args) != 4 {
		return fmt.Errorf("%w: move <from> <to> <amount>", errUsage)
	}
	amount, err := decimal.NewFromString(args[3])
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", args[3], err)
	}

	moved, err := o.wallet.Move(ctx, args[1], args[2], amount)
	if err != nil {
		return err
	}
	if !moved {
		fmt.Fprintln(o.out, "Move was not applied")
		return nil
	}
	fmt.Fprintf(o.out, "Moved %s from %s to %s\n", fmtDec(amount), args[1], args[2])
	return nil
}

func (o *Operator) handleSend(ctx context.Context, args []string) error {
	if len(args) != 4 {
		return fmt.Errorf("%w: send <from> <address> <amount>", errUsage)
	}
	amount, err := decimal.NewFromString(args[3])
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", args[3], err)
	}

	txid, err := o.wallet.Send(ctx, args[1], args[2], amount)
	if err != nil {
		return err
	}
	fmt.Fprintf(o.out, "Sent %s from %s to %s\nTxID: %s\n", fmtDec(amount), args[1], args[2], txid)
	return nil
}

func (o *Operator) handleValidate(ctx context.Context, address string) error {
	v, err := o.wallet.ValidateAddress(ctx, address)
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(o.out)
	t.AppendHeader(table.Row{"Address", "Valid", "Mine", "Account"})
	t.AppendSeparator()
	t.AppendRow(table.Row{address, bool(v.IsValid), bool(v.IsMine), v.Account})
	t.Render()
	return nil
}

func (o *Operator) handleRaw(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: raw <method> [json-args...]", errUsage)
	}

	method, err := rpc.ParseMethod(args[1])
	if err != nil {
		return err
	}

	params := make([]any, 0, len(args)-2)
	for _, arg := range args[2:] {
		params = append(params, parseRawArg(arg))
	}

	res, err := o.caller.Call(ctx, method, params...)
	if err != nil {
		return err
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, res, "", "  "); err != nil {
		fmt.Fprintln(o.out, string(res))
		return nil
	}
	fmt.Fprintln(o.out, pretty.String())
	return nil
}

// parseRawArg decodes arg as JSON, falling back to the bare string so that
// account names need no quoting.
func parseRawArg(arg string) any {
	dec := json.NewDecoder(strings.NewReader(arg))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil || dec.More() {
		return arg
	}
	return v
}

// printLine prints a single string result.
func (o *Operator) printLine(s string, err error) error {
	if err != nil {
		return err
	}
	fmt.Fprintln(o.out, s)
	return nil
}

func fmtDec(value decimal.Decimal) string {
	if value.Equal(value.Floor()) {
		return value.StringFixed(1)
	}

	return value.String()
}
