package payments

import "errors"

// Conditions rejecting a single transaction. None of them is fatal to a run.
var (
	ErrInsufficientFunds = errors.New("insufficient available funds")
	ErrOverflow          = errors.New("calculation overflow")
	ErrNegativeAmount    = errors.New("negative amount")
	ErrAccountLocked     = errors.New("account locked")
	ErrTxNotFound        = errors.New("tx not found, partner error")
	ErrTxNotUnderDispute = errors.New("tx not under dispute, partner error")
	ErrTxNotADeposit     = errors.New("tx is not a deposit")
	ErrTxInvalidAmount   = errors.New("tx invalid amount")
	ErrTxIDConflict      = errors.New("tx id conflict")
	ErrClientIDNoMatch   = errors.New("client id doesn't match")
)

var reasons = []struct {
	err  error
	name string
}{
	{ErrInsufficientFunds, "INSUFFICIENT_FUNDS"},
	{ErrOverflow, "OVERFLOW"},
	{ErrNegativeAmount, "NEGATIVE_AMOUNT"},
	{ErrAccountLocked, "ACCOUNT_LOCKED"},
	{ErrTxNotFound, "TX_NOT_FOUND"},
	{ErrTxNotUnderDispute, "TX_NOT_UNDER_DISPUTE"},
	{ErrTxNotADeposit, "TX_NOT_A_DEPOSIT"},
	{ErrTxInvalidAmount, "TX_INVALID_AMOUNT"},
	{ErrTxIDConflict, "TX_ID_CONFLICT"},
	{ErrClientIDNoMatch, "CLIENT_ID_NO_MATCH"},
}

// Reason returns the condition name of err (e.g. "TX_ID_CONFLICT"), or
// "UNKNOWN" if err does not wrap one of the package errors.
func Reason(err error) string {
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.name
		}
	}
	return "UNKNOWN"
}

// Reasons lists every condition name in a stable order.
func Reasons() []string {
	names := make([]string, len(reasons))
	for i, r := range reasons {
		names[i] = r.name
	}
	return names
}
