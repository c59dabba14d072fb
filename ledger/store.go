/*
store.go - Persistence interfaces for accounts and transactions

PURPOSE:
  Defines the interface between the engine and the database. Different
  implementations can use SQLite or in-memory storage; the engine only
  requires that WithTx gives it an atomic unit.

KEY INTERFACES:
  AccountStore:     Account records + the atomic balance primitives
  TransactionStore: Expense/income records (never touches balances)
  Store:            Both record stores together
  TxStore:          Store plus transactional execution (WithTx)

BALANCE PRIMITIVES:
  AdjustBalance is the ONLY way the engine moves a balance, and it must be
  an atomic read-modify-write: two concurrent adjustments to the same
  account both land. ShiftOpening moves the invariant baseline without
  touching the balance (keep-effect deletes, transfers).

ATOMIC UNITS:
  Every engine operation runs inside WithTx. If fn returns an error, every
  mutation made through the Store it received is rolled back.

IMPLEMENTATIONS:
  - store/sqlite: SQLite-backed, used by the server and CLI
  - ledger/store: In-memory, for tests

SEE ALSO:
  - engine.go: The only intended caller of the balance primitives
*/
package ledger

import "context"

// =============================================================================
// ACCOUNT STORE
// =============================================================================

// AccountStore persists accounts and exposes the atomic balance primitives.
type AccountStore interface {
	// CreateAccount adds an account with the given opening balance.
	// Fails with DuplicateNameError without side effects if the name exists.
	CreateAccount(ctx context.Context, name string, balance Money) (Account, error)

	// Account returns one account or ErrAccountNotFound.
	Account(ctx context.Context, id int64) (Account, error)

	// Accounts returns all accounts in insertion order.
	Accounts(ctx context.Context) ([]Account, error)

	// UpdateAccount overwrites name and balance (a direct user edit,
	// independent of the engine's incremental path). The opening balance is
	// shifted by the same delta as the balance so the net effect of the
	// transaction history is preserved.
	UpdateAccount(ctx context.Context, id int64, name string, balance Money) error

	// AdjustBalance atomically applies balance += delta.
	// Two concurrent adjustments to the same account must both land.
	AdjustBalance(ctx context.Context, id int64, delta Money) error

	// ShiftOpening atomically applies opening += delta, balance untouched.
	// Used when a transaction's effect is folded into the baseline
	// (keep-effect delete) or for pure balance movements (transfers also
	// adjust the balance).
	ShiftOpening(ctx context.Context, id int64, delta Money) error

	// DeleteAccount removes an account. Fails with AccountInUseError while
	// any expense or income still references it.
	DeleteAccount(ctx context.Context, id int64) error
}

// =============================================================================
// TRANSACTION STORE
// =============================================================================

// TransactionStore persists expense and income records. It never touches
// account balances; balance effects are the engine's responsibility.
type TransactionStore interface {
	// CreateTransaction adds a record and returns it with its assigned ID.
	CreateTransaction(ctx context.Context, tx Transaction) (Transaction, error)

	// Transaction returns one record or ErrTransactionNotFound.
	Transaction(ctx context.Context, kind Kind, id int64) (Transaction, error)

	// Transactions returns all records of a kind in insertion order.
	Transactions(ctx context.Context, kind Kind) ([]Transaction, error)

	// UpdateTransaction overwrites the record's mutable fields
	// (name, amount, account, date).
	UpdateTransaction(ctx context.Context, tx Transaction) error

	// DeleteTransaction removes the record only.
	DeleteTransaction(ctx context.Context, kind Kind, id int64) error
}

// =============================================================================
// COMBINED + TRANSACTIONAL STORE
// =============================================================================

// Store combines account and transaction persistence.
type Store interface {
	AccountStore
	TransactionStore
}

// TxStore wraps Store with transaction support. Every engine operation is
// one WithTx call: either every contained mutation commits or none do.
type TxStore interface {
	Store

	// WithTx executes fn within a transaction.
	// If fn returns an error, the transaction is rolled back.
	WithTx(ctx context.Context, fn func(Store) error) error
}
