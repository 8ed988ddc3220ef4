package payments

// Account is the balance state of one client.
//
// The zero value is an open account with nothing available and nothing held.
// Available and Held can become negative through disputes and chargebacks;
// that is accepted, not corrected.
type Account struct {
	id        ClientID
	available Amount
	held      Amount
	locked    bool

	// partial keeps the first leg of a dispute or resolve when the second leg
	// overflows, instead of leaving the account untouched.
	partial bool
}

// NewAccount creates an empty, unlocked account.
func NewAccount(id ClientID) *Account {
	return &Account{id: id}
}

func (a *Account) ID() ClientID      { return a.id }
func (a *Account) Available() Amount { return a.available }
func (a *Account) Held() Amount      { return a.held }
func (a *Account) Locked() bool      { return a.locked }

// Total is the full value of the account, available plus held.
func (a *Account) Total() Amount { return a.available.Add(a.held) }

// check is the guard shared by every operation.
func (a *Account) check(amount Amount) error {
	if a.locked {
		return ErrAccountLocked
	}
	if amount.IsNegative() {
		return ErrNegativeAmount
	}
	return nil
}

// Deposit credits amount to available funds.
func (a *Account) Deposit(amount Amount) error {
	if err := a.check(amount); err != nil {
		return err
	}
	v, err := a.available.CheckedAdd(amount)
	if err != nil {
		return err
	}
	a.available = v.Round()
	return nil
}

// Withdraw debits amount from available funds, which must cover it.
func (a *Account) Withdraw(amount Amount) error {
	if err := a.check(amount); err != nil {
		return err
	}
	if amount.GreaterThan(a.available) {
		return ErrInsufficientFunds
	}
	v, err := a.available.CheckedSub(amount)
	if err != nil {
		return err
	}
	a.available = v.Round()
	return nil
}

// Dispute moves amount from available to held funds. Available may go
// negative if the disputed funds were already spent.
func (a *Account) Dispute(amount Amount) error {
	if err := a.check(amount); err != nil {
		return err
	}
	return a.transfer(amount.Neg())
}

// Resolve moves amount back from held to available funds.
func (a *Account) Resolve(amount Amount) error {
	if err := a.check(amount); err != nil {
		return err
	}
	return a.transfer(amount)
}

// Chargeback withdraws amount from held funds and locks the account.
//
// The account is locked even if the debit overflows.
func (a *Account) Chargeback(amount Amount) error {
	if err := a.check(amount); err != nil {
		return err
	}
	a.locked = true
	v, err := a.held.CheckedSub(amount)
	if err != nil {
		return err
	}
	a.held = v.Round()
	return nil
}

// transfer adds delta to available funds and takes it from held funds.
// The available leg is computed first, each leg is checked on its own.
func (a *Account) transfer(delta Amount) error {
	available, err := a.available.CheckedAdd(delta)
	if err != nil {
		return err
	}
	if a.partial {
		a.available = available.Round()
	}
	held, err := a.held.CheckedSub(delta)
	if err != nil {
		return err
	}
	a.available = available.Round()
	a.held = held.Round()
	return nil
}
