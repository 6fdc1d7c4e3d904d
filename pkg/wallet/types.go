package wallet

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Truthy decodes daemon flags that older builds encode as 0/1 instead of a
// JSON boolean. Anything but true or the number 1 is false.
type Truthy bool

func (t *Truthy) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("true")) {
		*t = true
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		if f, err := n.Float64(); err == nil && f == 1 {
			*t = true
			return nil
		}
	}
	*t = false
	return nil
}

// AddressValidation is the result of validateaddress.
type AddressValidation struct {
	IsValid      Truthy `json:"isvalid"`
	Address      string `json:"address,omitempty"`
	IsMine       Truthy `json:"ismine"`
	IsWatchOnly  Truthy `json:"iswatchonly"`
	IsScript     Truthy `json:"isscript"`
	PubKey       string `json:"pubkey,omitempty"`
	IsCompressed Truthy `json:"iscompressed"`
	Account      string `json:"account,omitempty"`

	// Raw is the result as returned by the daemon.
	Raw json.RawMessage `json:"-"`
}

// Transaction is the result of gettransaction.
type Transaction struct {
	TxID          string              `json:"txid"`
	Amount        decimal.Decimal     `json:"amount"`
	Fee           decimal.NullDecimal `json:"fee"`
	Confirmations int64               `json:"confirmations"`
	BlockHash     string              `json:"blockhash,omitempty"`
	BlockIndex    int64               `json:"blockindex,omitempty"`
	BlockTime     int64               `json:"blocktime,omitempty"`
	Time          int64               `json:"time"`
	TimeReceived  int64               `json:"timereceived"`
	Comment       string              `json:"comment,omitempty"`
	To            string              `json:"to,omitempty"`
	Details       []TransactionDetail `json:"details"`
	Hex           string              `json:"hex,omitempty"`

	// Raw is the result as returned by the daemon.
	Raw json.RawMessage `json:"-"`
}

// TransactionDetail is one wallet-side movement of a transaction.
type TransactionDetail struct {
	Account  string              `json:"account"`
	Address  string              `json:"address,omitempty"`
	Category string              `json:"category"`
	Amount   decimal.Decimal     `json:"amount"`
	Fee      decimal.NullDecimal `json:"fee"`
	Vout     int                 `json:"vout"`
}

// amountParam sends a decimal as a bare JSON number.
func amountParam(amount decimal.Decimal) json.Number {
	return json.Number(amount.String())
}
