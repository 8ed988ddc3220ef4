package payments

import (
	"fmt"
	"strconv"
)

// CommandType is a typed string for identifying transaction commands.
type CommandType string

// Command types as they appear in the input stream.
const (
	CmdDeposit    CommandType = "deposit"
	CmdWithdrawal CommandType = "withdrawal"
	CmdDispute    CommandType = "dispute"
	CmdResolve    CommandType = "resolve"
	CmdChargeback CommandType = "chargeback"
)

// ParseCommandType parses a command name. Matching is exact and lowercase.
func ParseCommandType(s string) (CommandType, error) {
	switch c := CommandType(s); c {
	case CmdDeposit, CmdWithdrawal, CmdDispute, CmdResolve, CmdChargeback:
		return c, nil
	default:
		return "", fmt.Errorf("unknown transaction type: %q", s)
	}
}

// ClientID identifies a client account.
type ClientID uint16

// TxID identifies a transaction. It is unique across deposits and withdrawals.
type TxID uint32

// ParseClientID parses a decimal client id in the uint16 range.
func ParseClientID(s string) (ClientID, error) {
	v, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid client id %q: %w", s, err)
	}
	return ClientID(v), nil
}

// ParseTxID parses a decimal transaction id in the uint32 range.
func ParseTxID(s string) (TxID, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid tx id %q: %w", s, err)
	}
	return TxID(v), nil
}

// Request is one incoming transaction, as decoded from the input stream.
//
// Amount is required for deposits and withdrawals, and ignored otherwise.
type Request struct {
	Type   CommandType
	Client ClientID
	Tx     TxID
	Amount *Amount
}

// NewDeposit creates a deposit request.
func NewDeposit(client ClientID, tx TxID, amount Amount) Request {
	return Request{Type: CmdDeposit, Client: client, Tx: tx, Amount: &amount}
}

// NewWithdrawal creates a withdrawal request.
func NewWithdrawal(client ClientID, tx TxID, amount Amount) Request {
	return Request{Type: CmdWithdrawal, Client: client, Tx: tx, Amount: &amount}
}

// NewDispute creates a dispute request against tx.
func NewDispute(client ClientID, tx TxID) Request {
	return Request{Type: CmdDispute, Client: client, Tx: tx}
}

// NewResolve creates a resolve request against tx.
func NewResolve(client ClientID, tx TxID) Request {
	return Request{Type: CmdResolve, Client: client, Tx: tx}
}

// NewChargeback creates a chargeback request against tx.
func NewChargeback(client ClientID, tx TxID) Request {
	return Request{Type: CmdChargeback, Client: client, Tx: tx}
}

func (r Request) String() string {
	if r.Amount == nil {
		return fmt.Sprintf("%s client=%d tx=%d", r.Type, r.Client, r.Tx)
	}
	return fmt.Sprintf("%s client=%d tx=%d amount=%s", r.Type, r.Client, r.Tx, r.Amount)
}

// Record is the history entry of an accepted deposit or withdrawal.
//
// Only UnderDispute changes after creation: dispute sets it, resolve clears
// it. A chargeback leaves it set, the owner account being locked anyway.
type Record struct {
	Owner        ClientID
	Type         CommandType // CmdDeposit or CmdWithdrawal
	Amount       Amount
	UnderDispute bool
}

func newRecord(r Request) *Record {
	rec := &Record{Owner: r.Client, Type: r.Type}
	if r.Amount != nil {
		rec.Amount = *r.Amount
	}
	return rec
}
