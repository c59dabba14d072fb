/*
Package ledger provides the core budget engine.

PURPOSE:
  This package contains the domain types and algorithms that keep account
  balances consistent with a mutable set of dated transactions. Expenses
  and incomes share one record shape; only the sign of their balance
  effect differs.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: A signed decimal amount (exact arithmetic, no float drift)
  - Kind: Expense or Income, the two transaction variants
  - Transaction: A dated expense/income attributed to one account
  - Account: A named balance plus its opening balance

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal to avoid floating-point errors
  2. Sign convention: amounts are stored non-negative, the Kind implies
     the sign of the balance effect
  3. Opening balance: every account carries the baseline against which the
     consistency invariant is checked (balance = opening + sum of effects)

USAGE:
  amount := ledger.MustParseMoney("42.50")
  tx := ledger.Transaction{
      Kind:      ledger.KindExpense,
      Name:      "groceries",
      Amount:    amount,
      AccountID: 1,
      Date:      "2025-03-10",
  }
  delta := tx.Effect() // -42.50

SEE ALSO:
  - engine.go: Operations that mutate stores under the balance invariant
  - checker.go: Recomputes expected balances from the transaction log
  - store.go: Persistence interfaces
*/
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Signed decimal amount
// =============================================================================

type Money struct {
	Value decimal.Decimal
}

func NewMoney(value float64) Money {
	return Money{Value: decimal.NewFromFloat(value)}
}

func NewMoneyFromInt(value int) Money {
	return Money{Value: decimal.NewFromInt(int64(value))}
}

// ParseMoney parses a decimal string such as "12.50" or "-3".
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, err
	}
	return Money{Value: d}, nil
}

// MustParseMoney parses a decimal string, returning zero on failure.
func MustParseMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}
	}
	return Money{Value: d}
}

func Zero() Money { return Money{Value: decimal.Zero} }

func (m Money) Add(o Money) Money      { return Money{Value: m.Value.Add(o.Value)} }
func (m Money) Sub(o Money) Money      { return Money{Value: m.Value.Sub(o.Value)} }
func (m Money) Neg() Money             { return Money{Value: m.Value.Neg()} }
func (m Money) IsNegative() bool       { return m.Value.IsNegative() }
func (m Money) IsZero() bool           { return m.Value.IsZero() }
func (m Money) Equal(o Money) bool     { return m.Value.Equal(o.Value) }
func (m Money) String() string         { return m.Value.String() }

// =============================================================================
// KIND - Expense or Income
// =============================================================================

type Kind string

const (
	KindExpense Kind = "expense" // balance decrease
	KindIncome  Kind = "income"  // balance increase
)

// Valid reports whether k is one of the two known kinds.
func (k Kind) Valid() bool {
	return k == KindExpense || k == KindIncome
}

// =============================================================================
// ACCOUNT - Named balance
// =============================================================================

type Account struct {
	ID      int64
	Name    string
	Balance Money

	// Opening is the baseline the consistency invariant is checked against:
	// Balance == Opening + sum of effects of all live transactions.
	// It starts equal to the creation-time balance and is shifted by direct
	// edits, keep-effect deletes, and transfers.
	Opening Money

	CreatedAt time.Time
}

// =============================================================================
// TRANSACTION - Dated expense or income
// =============================================================================

type Transaction struct {
	ID        int64
	Kind      Kind
	Name      string
	Amount    Money // always >= 0; sign is implied by Kind
	AccountID int64
	Date      string // opaque calendar date, callers parse/default it

	CreatedAt time.Time
}

// Effect returns the signed balance delta this transaction contributes to
// its account: -Amount for an expense, +Amount for an income.
func (t Transaction) Effect() Money {
	if t.Kind == KindExpense {
		return t.Amount.Neg()
	}
	return t.Amount
}
