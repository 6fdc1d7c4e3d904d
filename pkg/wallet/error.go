package wallet

import (
	"errors"
	"fmt"
)

// ErrInvalidAccount matches every *InvalidAccountError.
var ErrInvalidAccount = errors.New("invalid account")

// Reason tells why a guard rejected an account or address.
type Reason int

const (
	// ReasonNotExist means the account is absent from the wallet's listing.
	ReasonNotExist Reason = iota + 1
	// ReasonInvalidAddress means the daemon did not validate the address.
	ReasonInvalidAddress
)

// InvalidAccountError is returned by the guards of Client before the guarded
// call is dispatched.
type InvalidAccountError struct {
	// Subject names the offending argument, e.g. "Source account".
	Subject string
	Value   string
	Reason  Reason
}

func (e *InvalidAccountError) Error() string {
	switch e.Reason {
	case ReasonInvalidAddress:
		return fmt.Sprintf("%s: %s is not a valid verge address", e.Subject, e.Value)
	default:
		return fmt.Sprintf("%s: %s does not exist", e.Subject, e.Value)
	}
}

func (e *InvalidAccountError) Is(target error) bool {
	return target == ErrInvalidAccount
}
