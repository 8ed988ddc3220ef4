package payments

import (
	"fmt"
	"iter"

	"go.uber.org/zap"
)

// Engine applies a stream of requests to client accounts and reports the
// resulting balances.
//
// An Engine lives for one run: create it, Submit every request in input order,
// then drain the Report. It is not safe for concurrent use.
type Engine struct {
	accounts map[ClientID]*Account
	records  map[TxID]*Record

	log     *zap.Logger
	partial bool
	drained bool
	stats   Stats
}

// Stats counts what happened to the submitted requests.
type Stats struct {
	Accepted int            // requests applied without error
	Rejected map[string]int // rejected requests by Reason
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the sink receiving one debug entry per rejected request.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithPartialTransfers makes disputes and resolves keep their first leg when
// the second one overflows, instead of leaving the account untouched.
func WithPartialTransfers() Option {
	return func(e *Engine) { e.partial = true }
}

// NewEngine creates an engine with no accounts and no history.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		accounts: make(map[ClientID]*Account),
		records:  make(map[TxID]*Record),
		log:      zap.NewNop(),
		stats:    Stats{Rejected: make(map[string]int)},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Submit applies one request. A rejected request is logged and counted, and
// leaves the ledger as it was.
func (e *Engine) Submit(r Request) {
	if err := e.apply(r); err != nil {
		reason := Reason(err)
		e.stats.Rejected[reason]++
		e.log.Debug("failed to process transaction",
			zap.Uint32("tx", uint32(r.Tx)),
			zap.Uint16("client", uint16(r.Client)),
			zap.String("type", string(r.Type)),
			zap.String("reason", reason),
			zap.Error(err),
		)
		return
	}
	e.stats.Accepted++
}

// apply validates and dispatches r. The account is created before any
// validation: the first reference to a client id always creates it.
func (e *Engine) apply(r Request) error {
	account := e.account(r.Client)

	switch r.Type {
	case CmdDeposit, CmdWithdrawal:
		if _, exists := e.records[r.Tx]; exists {
			return ErrTxIDConflict
		}
		if r.Amount == nil {
			return ErrTxInvalidAmount
		}
		// The record is kept even if the account rejects the operation,
		// so the id stays taken.
		e.records[r.Tx] = newRecord(r)
		if r.Type == CmdDeposit {
			return account.Deposit(*r.Amount)
		}
		return account.Withdraw(*r.Amount)

	case CmdDispute:
		rec, err := e.record(r)
		if err != nil {
			return err
		}
		if rec.Type != CmdDeposit {
			return ErrTxNotADeposit
		}
		rec.UnderDispute = true
		return account.Dispute(rec.Amount)

	case CmdResolve:
		rec, err := e.disputed(r)
		if err != nil {
			return err
		}
		rec.UnderDispute = false
		return account.Resolve(rec.Amount)

	case CmdChargeback:
		rec, err := e.disputed(r)
		if err != nil {
			return err
		}
		return account.Chargeback(rec.Amount)

	default:
		return fmt.Errorf("unsupported transaction type %q", r.Type)
	}
}

// account returns the client account, creating it on first reference.
func (e *Engine) account(id ClientID) *Account {
	a, ok := e.accounts[id]
	if !ok {
		a = NewAccount(id)
		a.partial = e.partial
		e.accounts[id] = a
	}
	return a
}

// record returns the history entry r refers to, owned by r's client.
func (e *Engine) record(r Request) (*Record, error) {
	rec, ok := e.records[r.Tx]
	if !ok {
		return nil, ErrTxNotFound
	}
	if rec.Owner != r.Client {
		return nil, ErrClientIDNoMatch
	}
	return rec, nil
}

// disputed is like record but also requires the entry to be under dispute.
func (e *Engine) disputed(r Request) (*Record, error) {
	rec, err := e.record(r)
	if err != nil {
		return nil, err
	}
	if !rec.UnderDispute {
		return nil, ErrTxNotUnderDispute
	}
	return rec, nil
}

// Account returns the account of a client, or nil if the client is unknown.
func (e *Engine) Account(id ClientID) *Account { return e.accounts[id] }

// Record returns the history entry of a transaction, or nil if unknown.
func (e *Engine) Record(id TxID) *Record { return e.records[id] }

// Stats returns a copy of the request counters.
func (e *Engine) Stats() Stats {
	s := Stats{Accepted: e.stats.Accepted, Rejected: make(map[string]int, len(e.stats.Rejected))}
	for k, v := range e.stats.Rejected {
		s.Rejected[k] = v
	}
	return s
}

// Report yields one ClientReport per known client, in no particular order.
//
// The report can be drained once: later calls yield nothing.
func (e *Engine) Report() iter.Seq[ClientReport] {
	return func(yield func(ClientReport) bool) {
		if e.drained {
			return
		}
		e.drained = true
		for _, a := range e.accounts {
			if !yield(NewClientReport(a)) {
				return
			}
		}
	}
}
