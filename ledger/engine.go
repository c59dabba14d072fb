/*
engine.go - The balance-consistency engine

PURPOSE:
  Orchestrates the account and transaction stores so that, after every
  successful operation, each account balance equals its opening balance
  plus the net signed effect of the transactions attributed to it.

OPERATIONS:
  Add        create record + apply its effect
  Edit       reverse old effect, apply new one (possibly on another account)
  Delete     remove record, KEEP its balance effect
  Undo       remove record AND reverse its balance effect
  Transfer   pure balance movement between two accounts (no record)

ATOMICITY:
  Each operation is one TxStore.WithTx call. A validation or storage failure
  anywhere inside aborts the whole unit with zero side effects: no partial
  balance adjustment, no orphaned record. Nothing is logged-and-ignored
  here; every failure is returned to the caller.

EDIT WITH ACCOUNT MOVE:
  When an edit changes the target account, TWO adjustments are required -
  the reversal on the old account and the application on the new one - and
  callers must never observe a state where only one of them happened. Both
  run in the same atomic unit.

DELETE vs UNDO:
  Delete models "this was a real historical expense, stop tracking it but
  don't refund it": the record goes away and its effect is folded into the
  account's opening balance so the invariant still holds.
  Undo models "this should never have happened": record and effect both go.

SEE ALSO:
  - checker.go: Validates the incremental updates against a recomputation
  - store.go: The atomic primitives this engine relies on
*/
package ledger

import (
	"context"
	"strings"
)

// Engine guarantees account balances stay consistent with transaction
// effects across all mutating operations. Construct with NewEngine; the
// store handle is injected, there is no global state.
type Engine struct {
	store TxStore
}

func NewEngine(store TxStore) *Engine {
	return &Engine{store: store}
}

// =============================================================================
// ACCOUNT OPERATIONS
// =============================================================================

// CreateAccount creates a named account with an initial balance. The initial
// balance also becomes the account's opening balance.
func (e *Engine) CreateAccount(ctx context.Context, name string, balance Money) (Account, error) {
	if strings.TrimSpace(name) == "" {
		return Account{}, ErrEmptyName
	}
	return e.store.CreateAccount(ctx, name, balance)
}

// Account returns one account.
func (e *Engine) Account(ctx context.Context, id int64) (Account, error) {
	return e.store.Account(ctx, id)
}

// Accounts returns all accounts in insertion order.
func (e *Engine) Accounts(ctx context.Context) ([]Account, error) {
	return e.store.Accounts(ctx)
}

// EditAccount overwrites an account's name and balance. This is the direct
// user edit path: it does not reinterpret the transaction history, it moves
// the opening balance along with the stored balance.
func (e *Engine) EditAccount(ctx context.Context, id int64, name string, balance Money) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	return e.store.WithTx(ctx, func(s Store) error {
		return s.UpdateAccount(ctx, id, name, balance)
	})
}

// DeleteAccount removes an account. Deletion is rejected with
// AccountInUseError while any expense or income references the account;
// delete or move those transactions first.
func (e *Engine) DeleteAccount(ctx context.Context, id int64) error {
	return e.store.WithTx(ctx, func(s Store) error {
		return s.DeleteAccount(ctx, id)
	})
}

// =============================================================================
// TRANSACTION OPERATIONS
// =============================================================================

// Add records a new expense or income and applies its balance effect to the
// target account, atomically. The date is opaque to the engine; callers
// default it (e.g. to today) before calling.
func (e *Engine) Add(ctx context.Context, kind Kind, name string, amount Money, accountID int64, date string) (Transaction, error) {
	if !kind.Valid() {
		return Transaction{}, ErrInvalidKind
	}
	if amount.IsNegative() {
		return Transaction{}, ErrNegativeAmount
	}

	var created Transaction
	err := e.store.WithTx(ctx, func(s Store) error {
		if _, err := s.Account(ctx, accountID); err != nil {
			return err
		}
		tx, err := s.CreateTransaction(ctx, Transaction{
			Kind:      kind,
			Name:      name,
			Amount:    amount,
			AccountID: accountID,
			Date:      date,
		})
		if err != nil {
			return err
		}
		if err := s.AdjustBalance(ctx, accountID, tx.Effect()); err != nil {
			return err
		}
		created = tx
		return nil
	})
	if err != nil {
		return Transaction{}, err
	}
	return created, nil
}

// Edit overwrites a transaction's fields and fixes up balances: the old
// effect is reversed and the new one applied. When the account is unchanged
// this collapses to a single net delta; when the transaction moves between
// accounts, both adjustments happen in the same atomic unit, so no caller
// ever observes only one side of the move.
func (e *Engine) Edit(ctx context.Context, kind Kind, id int64, name string, amount Money, accountID int64, date string) (Transaction, error) {
	if !kind.Valid() {
		return Transaction{}, ErrInvalidKind
	}
	if amount.IsNegative() {
		return Transaction{}, ErrNegativeAmount
	}

	var updated Transaction
	err := e.store.WithTx(ctx, func(s Store) error {
		old, err := s.Transaction(ctx, kind, id)
		if err != nil {
			return err
		}
		if _, err := s.Account(ctx, accountID); err != nil {
			return err
		}

		updated = Transaction{
			ID:        old.ID,
			Kind:      kind,
			Name:      name,
			Amount:    amount,
			AccountID: accountID,
			Date:      date,
			CreatedAt: old.CreatedAt,
		}

		oldEffect := old.Effect()
		newEffect := updated.Effect()

		if accountID == old.AccountID {
			delta := newEffect.Sub(oldEffect)
			if !delta.IsZero() {
				if err := s.AdjustBalance(ctx, accountID, delta); err != nil {
					return err
				}
			}
		} else {
			if err := s.AdjustBalance(ctx, old.AccountID, oldEffect.Neg()); err != nil {
				return err
			}
			if err := s.AdjustBalance(ctx, accountID, newEffect); err != nil {
				return err
			}
		}

		return s.UpdateTransaction(ctx, updated)
	})
	if err != nil {
		return Transaction{}, err
	}
	return updated, nil
}

// Delete removes a transaction record but KEEPS its balance effect: the
// money is treated as having permanently moved. To keep the consistency
// invariant intact, the effect is folded into the account's opening
// balance as the record disappears.
func (e *Engine) Delete(ctx context.Context, kind Kind, id int64) error {
	if !kind.Valid() {
		return ErrInvalidKind
	}
	return e.store.WithTx(ctx, func(s Store) error {
		tx, err := s.Transaction(ctx, kind, id)
		if err != nil {
			return err
		}
		if err := s.DeleteTransaction(ctx, kind, id); err != nil {
			return err
		}
		return s.ShiftOpening(ctx, tx.AccountID, tx.Effect())
	})
}

// Undo removes a transaction record AND reverses its balance effect,
// atomically, restoring the account to the balance it would have had if
// the transaction had never happened.
func (e *Engine) Undo(ctx context.Context, kind Kind, id int64) error {
	if !kind.Valid() {
		return ErrInvalidKind
	}
	return e.store.WithTx(ctx, func(s Store) error {
		tx, err := s.Transaction(ctx, kind, id)
		if err != nil {
			return err
		}
		if err := s.DeleteTransaction(ctx, kind, id); err != nil {
			return err
		}
		return s.AdjustBalance(ctx, tx.AccountID, tx.Effect().Neg())
	})
}

// Transaction returns one expense or income.
func (e *Engine) Transaction(ctx context.Context, kind Kind, id int64) (Transaction, error) {
	if !kind.Valid() {
		return Transaction{}, ErrInvalidKind
	}
	return e.store.Transaction(ctx, kind, id)
}

// Transactions returns all records of a kind in insertion order.
func (e *Engine) Transactions(ctx context.Context, kind Kind) ([]Transaction, error) {
	if !kind.Valid() {
		return nil, ErrInvalidKind
	}
	return e.store.Transactions(ctx, kind)
}

// =============================================================================
// TRANSFER
// =============================================================================

// Transfer atomically moves amount from the source account to the
// destination account.
//
// NOTE: a transfer creates no ledger record - it is a pure balance
// movement, not an expense or income. This asymmetry with Add/Edit is
// deliberate; both balances AND both opening balances shift, so the
// consistency invariant holds on both accounts afterwards.
func (e *Engine) Transfer(ctx context.Context, sourceID, destinationID int64, amount Money) error {
	if amount.IsNegative() {
		return ErrNegativeAmount
	}
	if sourceID == destinationID {
		return ErrSameAccount
	}
	return e.store.WithTx(ctx, func(s Store) error {
		if _, err := s.Account(ctx, sourceID); err != nil {
			return err
		}
		if _, err := s.Account(ctx, destinationID); err != nil {
			return err
		}
		if err := s.AdjustBalance(ctx, sourceID, amount.Neg()); err != nil {
			return err
		}
		if err := s.ShiftOpening(ctx, sourceID, amount.Neg()); err != nil {
			return err
		}
		if err := s.AdjustBalance(ctx, destinationID, amount); err != nil {
			return err
		}
		return s.ShiftOpening(ctx, destinationID, amount)
	})
}
