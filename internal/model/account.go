package model

import (
	"github.com/shopspring/decimal"
)

// Common account categories. Categories are free-form; these are the ones the
// importers assign by default.
const (
	CategoryPay    = "PAY"
	CategorySave   = "SAVE"
	CategoryCredit = "CREDIT"
)

// Account is a balance-bearing record owned by a user.
// Balance is the current balance and already reflects every transaction
// recorded against the account.
type Account struct {
	Balance  decimal.Decimal `json:"balance"`
	ID       string          `json:"id"`
	UserID   string          `json:"userId"`
	Number   string          `json:"number"`
	Category string          `json:"type"`
	Currency string          `json:"currency,omitempty"`
}

// AccountPredicate reports whether an account belongs to a selection.
type AccountPredicate func(Account) bool

// ByCategory selects accounts whose category equals category exactly.
// An empty category selects every account.
func ByCategory(category string) AccountPredicate {
	if category == "" {
		return func(Account) bool { return true }
	}
	return func(a Account) bool { return a.Category == category }
}

// Accounts is a set of accounts treated as one portfolio.
type Accounts []Account

// Filter returns the accounts satisfying keep, preserving order.
func (as Accounts) Filter(keep AccountPredicate) Accounts {
	out := make(Accounts, 0, len(as))
	for _, a := range as {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}

// IDs returns the account identifiers.
func (as Accounts) IDs() []string {
	ids := make([]string, len(as))
	for i, a := range as {
		ids[i] = a.ID
	}
	return ids
}

// TotalBalance sums the current balances.
func (as Accounts) TotalBalance() decimal.Decimal {
	total := decimal.Zero
	for _, a := range as {
		total = total.Add(a.Balance)
	}
	return total
}
