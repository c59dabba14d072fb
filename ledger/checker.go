/*
checker.go - Consistency invariant checker

PURPOSE:
  Recomputes what every account balance SHOULD be from the full transaction
  log and compares it against the stored balances. The engine maintains
  balances incrementally; the checker validates those increments by
  replaying everything from scratch.

THE INVARIANT:
  For every account:
    balance == opening + sum(Effect(t)) over live transactions
  where Effect is -amount for expenses and +amount for incomes. Keep-effect
  deletes and transfers move the opening balance, so the invariant survives
  them too.

USAGE:
  drifts, err := checker.Check(ctx)
  if len(drifts) > 0 {
      // balances have diverged from the transaction history
  }

  The replay itself (Recompute) is a pure function over plain slices,
  usable in tests without any store.
*/
package ledger

import (
	"context"
	"fmt"
)

// Drift describes one account whose stored balance diverges from the
// balance recomputed from the transaction log.
type Drift struct {
	AccountID int64
	Name      string
	Stored    Money
	Expected  Money
}

func (d Drift) String() string {
	return fmt.Sprintf("account %d (%s): stored %s, expected %s",
		d.AccountID, d.Name, d.Stored, d.Expected)
}

// Recompute returns the expected balance per account ID: opening balance
// plus the net effect of every transaction attributed to it. Pure function;
// transactions referencing unknown accounts are ignored (the stores reject
// them, so such a record is itself a consistency bug surfaced elsewhere).
func Recompute(accounts []Account, transactions []Transaction) map[int64]Money {
	expected := make(map[int64]Money, len(accounts))
	for _, a := range accounts {
		expected[a.ID] = a.Opening
	}
	for _, t := range transactions {
		cur, ok := expected[t.AccountID]
		if !ok {
			continue
		}
		expected[t.AccountID] = cur.Add(t.Effect())
	}
	return expected
}

// Verify compares stored balances against a full recomputation and returns
// one Drift per diverging account, in account order. Empty result means the
// invariant holds.
func Verify(accounts []Account, transactions []Transaction) []Drift {
	expected := Recompute(accounts, transactions)

	var drifts []Drift
	for _, a := range accounts {
		want := expected[a.ID]
		if !a.Balance.Equal(want) {
			drifts = append(drifts, Drift{
				AccountID: a.ID,
				Name:      a.Name,
				Stored:    a.Balance,
				Expected:  want,
			})
		}
	}
	return drifts
}

// Checker loads the full account set and transaction log from a store and
// runs Verify over them.
type Checker struct {
	Store Store
}

func NewChecker(store Store) *Checker {
	return &Checker{Store: store}
}

// Check reads all accounts, expenses, and incomes and reports every account
// whose stored balance does not match the recomputed one.
func (c *Checker) Check(ctx context.Context) ([]Drift, error) {
	accounts, err := c.Store.Accounts(ctx)
	if err != nil {
		return nil, err
	}
	expenses, err := c.Store.Transactions(ctx, KindExpense)
	if err != nil {
		return nil, err
	}
	incomes, err := c.Store.Transactions(ctx, KindIncome)
	if err != nil {
		return nil, err
	}

	all := make([]Transaction, 0, len(expenses)+len(incomes))
	all = append(all, expenses...)
	all = append(all, incomes...)

	return Verify(accounts, all), nil
}
