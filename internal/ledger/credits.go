package ledger

import "github.com/shopspring/decimal"

// CreditKey identifies a ledger entry: one balance per token per account.
type CreditKey struct {
	Token   string `json:"token_contract"`
	Account string `json:"account_id"`
}

// CreditEntry is a persisted ledger entry.
type CreditEntry struct {
	CreditKey
	Balance decimal.Decimal `json:"balance"`
}

// CreditLedger holds spendable player credits for every token. It is shared by
// all games that use the same token.
type CreditLedger struct {
	entries map[CreditKey]decimal.Decimal
}

func newCreditLedger() *CreditLedger {
	return &CreditLedger{entries: make(map[CreditKey]decimal.Decimal)}
}

// Credit adds amount to the entry, creating it on first use.
func (l *CreditLedger) Credit(token, account string, amount decimal.Decimal) error {
	if !validAmount(amount) {
		return ErrInvalidAmount
	}

	key := CreditKey{Token: token, Account: account}
	l.entries[key] = l.entries[key].Add(amount)

	return nil
}

// Debit removes amount from the entry. A missing entry counts as a zero balance.
func (l *CreditLedger) Debit(token, account string, amount decimal.Decimal) error {
	if !validAmount(amount) {
		return ErrInvalidAmount
	}

	key := CreditKey{Token: token, Account: account}

	balance, ok := l.entries[key]
	if !ok || balance.LessThan(amount) {
		return ErrInsufficientCredit
	}

	l.entries[key] = balance.Sub(amount)

	return nil
}

// BalanceOf returns the balance of an existing entry.
func (l *CreditLedger) BalanceOf(token, account string) (decimal.Decimal, error) {
	balance, ok := l.entries[CreditKey{Token: token, Account: account}]
	if !ok {
		return zero, ErrNotRegistered
	}

	return balance, nil
}

// available is BalanceOf with unregistered entries read as zero.
func (l *CreditLedger) available(token, account string) decimal.Decimal {
	return l.entries[CreditKey{Token: token, Account: account}]
}
