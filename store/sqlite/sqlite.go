/*
Package sqlite provides a SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements ledger.Store and ledger.TxStore using SQLite. In production,
  the same patterns apply to PostgreSQL - only minor SQL dialect
  differences.

KEY TABLES:
  accounts:  Named balances (unique names) plus the opening balance the
             consistency invariant is checked against
  expenses:  Expense records referencing accounts
  incomes:   Income records referencing accounts

DECIMAL STORAGE:
  Balances and amounts are stored as decimal TEXT, never REAL. All
  arithmetic happens in Go with shopspring/decimal; the database only ever
  sees already-computed values.

CONCURRENCY:
  Uses a sync.Mutex so each operation (and each WithTx unit) is a single
  writer: a balance adjustment reads and rewrites the row without another
  writer interleaving, so two concurrent adjustments both land. In
  production with PostgreSQL, row-level locking handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/budget.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  engine := ledger.NewEngine(store)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper migration
  tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - ledger/store.go: Interface definitions
  - ledger/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/budget-engine/ledger"
)

// Store implements ledger.TxStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS accounts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		balance TEXT NOT NULL,
		opening_balance TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS expenses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		amount TEXT NOT NULL,
		account_id INTEGER NOT NULL REFERENCES accounts(id),
		date TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS incomes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		amount TEXT NOT NULL,
		account_id INTEGER NOT NULL REFERENCES accounts(id),
		date TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	-- Account-reference lookups (deletion policy check, per-account views)
	CREATE INDEX IF NOT EXISTS idx_expenses_account ON expenses(account_id);
	CREATE INDEX IF NOT EXISTS idx_incomes_account ON incomes(account_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// dbtx is satisfied by both *sql.DB and *sql.Tx, so the same query helpers
// serve direct calls and WithTx units.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// tableFor maps a transaction kind to its table. The kind is validated
// against the two known tables, never interpolated from caller input.
func tableFor(kind ledger.Kind) (string, error) {
	switch kind {
	case ledger.KindExpense:
		return "expenses", nil
	case ledger.KindIncome:
		return "incomes", nil
	default:
		return "", ledger.ErrInvalidKind
	}
}

// =============================================================================
// ACCOUNT STORE (ledger.AccountStore interface)
// =============================================================================

// CreateAccount adds an account; the initial balance doubles as the opening
// balance.
func (s *Store) CreateAccount(ctx context.Context, name string, balance ledger.Money) (ledger.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createAccount(ctx, s.db, name, balance)
}

func (s *Store) createAccount(ctx context.Context, db dbtx, name string, balance ledger.Money) (ledger.Account, error) {
	if strings.TrimSpace(name) == "" {
		return ledger.Account{}, ledger.ErrEmptyName
	}

	now := time.Now().UTC()
	res, err := db.ExecContext(ctx,
		`INSERT INTO accounts (name, balance, opening_balance, created_at) VALUES (?, ?, ?, ?)`,
		name, balance.String(), balance.String(), now.Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ledger.Account{}, &ledger.DuplicateNameError{Name: name}
		}
		return ledger.Account{}, &ledger.StorageError{Op: "create account", Err: err}
	}

	id, err := res.LastInsertId()
	if err != nil {
		return ledger.Account{}, &ledger.StorageError{Op: "create account", Err: err}
	}

	return ledger.Account{
		ID:        id,
		Name:      name,
		Balance:   balance,
		Opening:   balance,
		CreatedAt: now,
	}, nil
}

// Account retrieves one account by ID.
func (s *Store) Account(ctx context.Context, id int64) (ledger.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.account(ctx, s.db, id)
}

func (s *Store) account(ctx context.Context, db dbtx, id int64) (ledger.Account, error) {
	var (
		a                ledger.Account
		balance, opening string
		createdAt        string
	)

	err := db.QueryRowContext(ctx,
		`SELECT id, name, balance, opening_balance, created_at FROM accounts WHERE id = ?`,
		id,
	).Scan(&a.ID, &a.Name, &balance, &opening, &createdAt)

	if err == sql.ErrNoRows {
		return ledger.Account{}, ledger.ErrAccountNotFound
	}
	if err != nil {
		return ledger.Account{}, &ledger.StorageError{Op: "get account", Err: err}
	}

	a.Balance = ledger.MustParseMoney(balance)
	a.Opening = ledger.MustParseMoney(opening)
	a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return a, nil
}

// Accounts returns all accounts in insertion order.
func (s *Store) Accounts(ctx context.Context) ([]ledger.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accounts(ctx, s.db)
}

func (s *Store) accounts(ctx context.Context, db dbtx) ([]ledger.Account, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, balance, opening_balance, created_at FROM accounts ORDER BY id ASC`,
	)
	if err != nil {
		return nil, &ledger.StorageError{Op: "list accounts", Err: err}
	}
	defer rows.Close()

	var accounts []ledger.Account
	for rows.Next() {
		var (
			a                ledger.Account
			balance, opening string
			createdAt        string
		)
		if err := rows.Scan(&a.ID, &a.Name, &balance, &opening, &createdAt); err != nil {
			return nil, &ledger.StorageError{Op: "scan account", Err: err}
		}
		a.Balance = ledger.MustParseMoney(balance)
		a.Opening = ledger.MustParseMoney(opening)
		a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// UpdateAccount overwrites name and balance; the opening balance shifts by
// the same delta, so the net effect of the transaction history stays intact.
func (s *Store) UpdateAccount(ctx context.Context, id int64, name string, balance ledger.Money) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateAccount(ctx, s.db, id, name, balance)
}

func (s *Store) updateAccount(ctx context.Context, db dbtx, id int64, name string, balance ledger.Money) error {
	if strings.TrimSpace(name) == "" {
		return ledger.ErrEmptyName
	}

	current, err := s.account(ctx, db, id)
	if err != nil {
		return err
	}

	delta := balance.Sub(current.Balance)
	opening := current.Opening.Add(delta)

	_, err = db.ExecContext(ctx,
		`UPDATE accounts SET name = ?, balance = ?, opening_balance = ? WHERE id = ?`,
		name, balance.String(), opening.String(), id,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return &ledger.DuplicateNameError{Name: name}
		}
		return &ledger.StorageError{Op: "update account", Err: err}
	}
	return nil
}

// AdjustBalance atomically applies balance += delta. The read and rewrite
// happen under the store mutex (and, inside WithTx, the same database
// transaction), so concurrent adjustments cannot lose updates.
func (s *Store) AdjustBalance(ctx context.Context, id int64, delta ledger.Money) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.adjustBalance(ctx, s.db, id, delta)
}

func (s *Store) adjustBalance(ctx context.Context, db dbtx, id int64, delta ledger.Money) error {
	var balance string
	err := db.QueryRowContext(ctx, `SELECT balance FROM accounts WHERE id = ?`, id).Scan(&balance)
	if err == sql.ErrNoRows {
		return ledger.ErrAccountNotFound
	}
	if err != nil {
		return &ledger.StorageError{Op: "adjust balance", Err: err}
	}

	next := ledger.MustParseMoney(balance).Add(delta)
	if _, err := db.ExecContext(ctx, `UPDATE accounts SET balance = ? WHERE id = ?`, next.String(), id); err != nil {
		return &ledger.StorageError{Op: "adjust balance", Err: err}
	}
	return nil
}

// ShiftOpening atomically applies opening_balance += delta.
func (s *Store) ShiftOpening(ctx context.Context, id int64, delta ledger.Money) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shiftOpening(ctx, s.db, id, delta)
}

func (s *Store) shiftOpening(ctx context.Context, db dbtx, id int64, delta ledger.Money) error {
	var opening string
	err := db.QueryRowContext(ctx, `SELECT opening_balance FROM accounts WHERE id = ?`, id).Scan(&opening)
	if err == sql.ErrNoRows {
		return ledger.ErrAccountNotFound
	}
	if err != nil {
		return &ledger.StorageError{Op: "shift opening balance", Err: err}
	}

	next := ledger.MustParseMoney(opening).Add(delta)
	if _, err := db.ExecContext(ctx, `UPDATE accounts SET opening_balance = ? WHERE id = ?`, next.String(), id); err != nil {
		return &ledger.StorageError{Op: "shift opening balance", Err: err}
	}
	return nil
}

// DeleteAccount removes an account. Deletion is rejected while expenses or
// incomes still reference it.
func (s *Store) DeleteAccount(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteAccount(ctx, s.db, id)
}

func (s *Store) deleteAccount(ctx context.Context, db dbtx, id int64) error {
	var refs int
	err := db.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM expenses WHERE account_id = ?) +
		        (SELECT COUNT(*) FROM incomes WHERE account_id = ?)`,
		id, id,
	).Scan(&refs)
	if err != nil {
		return &ledger.StorageError{Op: "delete account", Err: err}
	}
	if refs > 0 {
		return &ledger.AccountInUseError{AccountID: id, Count: refs}
	}

	res, err := db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return &ledger.StorageError{Op: "delete account", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ledger.ErrAccountNotFound
	}
	return nil
}

// =============================================================================
// TRANSACTION STORE (ledger.TransactionStore interface)
// =============================================================================

// CreateTransaction adds an expense or income record. Balance effects are
// the engine's job, never this store's.
func (s *Store) CreateTransaction(ctx context.Context, tx ledger.Transaction) (ledger.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createTransaction(ctx, s.db, tx)
}

func (s *Store) createTransaction(ctx context.Context, db dbtx, tx ledger.Transaction) (ledger.Transaction, error) {
	table, err := tableFor(tx.Kind)
	if err != nil {
		return ledger.Transaction{}, err
	}

	now := time.Now().UTC()
	res, err := db.ExecContext(ctx,
		`INSERT INTO `+table+` (name, amount, account_id, date, created_at) VALUES (?, ?, ?, ?, ?)`,
		tx.Name, tx.Amount.String(), tx.AccountID, tx.Date, now.Format(time.RFC3339),
	)
	if err != nil {
		if isForeignKeyError(err) {
			return ledger.Transaction{}, ledger.ErrAccountNotFound
		}
		return ledger.Transaction{}, &ledger.StorageError{Op: "create " + string(tx.Kind), Err: err}
	}

	id, err := res.LastInsertId()
	if err != nil {
		return ledger.Transaction{}, &ledger.StorageError{Op: "create " + string(tx.Kind), Err: err}
	}

	tx.ID = id
	tx.CreatedAt = now
	return tx, nil
}

// Transaction retrieves one record by kind and ID.
func (s *Store) Transaction(ctx context.Context, kind ledger.Kind, id int64) (ledger.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transaction(ctx, s.db, kind, id)
}

func (s *Store) transaction(ctx context.Context, db dbtx, kind ledger.Kind, id int64) (ledger.Transaction, error) {
	table, err := tableFor(kind)
	if err != nil {
		return ledger.Transaction{}, err
	}

	var (
		tx        ledger.Transaction
		amount    string
		createdAt string
	)
	err = db.QueryRowContext(ctx,
		`SELECT id, name, amount, account_id, date, created_at FROM `+table+` WHERE id = ?`,
		id,
	).Scan(&tx.ID, &tx.Name, &amount, &tx.AccountID, &tx.Date, &createdAt)

	if err == sql.ErrNoRows {
		return ledger.Transaction{}, ledger.ErrTransactionNotFound
	}
	if err != nil {
		return ledger.Transaction{}, &ledger.StorageError{Op: "get " + string(kind), Err: err}
	}

	tx.Kind = kind
	tx.Amount = ledger.MustParseMoney(amount)
	tx.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return tx, nil
}

// Transactions returns all records of a kind in insertion order.
func (s *Store) Transactions(ctx context.Context, kind ledger.Kind) ([]ledger.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transactions(ctx, s.db, kind)
}

func (s *Store) transactions(ctx context.Context, db dbtx, kind ledger.Kind) ([]ledger.Transaction, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx,
		`SELECT id, name, amount, account_id, date, created_at FROM `+table+` ORDER BY id ASC`,
	)
	if err != nil {
		return nil, &ledger.StorageError{Op: "list " + string(kind), Err: err}
	}
	defer rows.Close()

	var txs []ledger.Transaction
	for rows.Next() {
		var (
			tx        ledger.Transaction
			amount    string
			createdAt string
		)
		if err := rows.Scan(&tx.ID, &tx.Name, &amount, &tx.AccountID, &tx.Date, &createdAt); err != nil {
			return nil, &ledger.StorageError{Op: "scan " + string(kind), Err: err}
		}
		tx.Kind = kind
		tx.Amount = ledger.MustParseMoney(amount)
		tx.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// UpdateTransaction overwrites the record's fields. No balance is touched.
func (s *Store) UpdateTransaction(ctx context.Context, tx ledger.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateTransaction(ctx, s.db, tx)
}

func (s *Store) updateTransaction(ctx context.Context, db dbtx, tx ledger.Transaction) error {
	table, err := tableFor(tx.Kind)
	if err != nil {
		return err
	}

	res, err := db.ExecContext(ctx,
		`UPDATE `+table+` SET name = ?, amount = ?, account_id = ?, date = ? WHERE id = ?`,
		tx.Name, tx.Amount.String(), tx.AccountID, tx.Date, tx.ID,
	)
	if err != nil {
		if isForeignKeyError(err) {
			return ledger.ErrAccountNotFound
		}
		return &ledger.StorageError{Op: "update " + string(tx.Kind), Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ledger.ErrTransactionNotFound
	}
	return nil
}

// DeleteTransaction removes the record only. No balance is touched.
func (s *Store) DeleteTransaction(ctx context.Context, kind ledger.Kind, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteTransaction(ctx, s.db, kind, id)
}

func (s *Store) deleteTransaction(ctx context.Context, db dbtx, kind ledger.Kind, id int64) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}

	res, err := db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return &ledger.StorageError{Op: "delete " + string(kind), Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ledger.ErrTransactionNotFound
	}
	return nil
}

// =============================================================================
// TRANSACTIONAL STORE (ledger.TxStore interface)
// =============================================================================

// WithTx executes fn within a database transaction. The store mutex is held
// for the whole unit, so each engine operation is a single writer.
func (s *Store) WithTx(ctx context.Context, fn func(store ledger.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &ledger.StorageError{Op: "begin transaction", Err: err}
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{tx: sqlTx, parent: s}); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return &ledger.StorageError{Op: "commit transaction", Err: err}
	}
	return nil
}

type txStore struct {
	tx     *sql.Tx
	parent *Store
}

func (ts *txStore) CreateAccount(ctx context.Context, name string, balance ledger.Money) (ledger.Account, error) {
	return ts.parent.createAccount(ctx, ts.tx, name, balance)
}

func (ts *txStore) Account(ctx context.Context, id int64) (ledger.Account, error) {
	return ts.parent.account(ctx, ts.tx, id)
}

func (ts *txStore) Accounts(ctx context.Context) ([]ledger.Account, error) {
	return ts.parent.accounts(ctx, ts.tx)
}

func (ts *txStore) UpdateAccount(ctx context.Context, id int64, name string, balance ledger.Money) error {
	return ts.parent.updateAccount(ctx, ts.tx, id, name, balance)
}

func (ts *txStore) AdjustBalance(ctx context.Context, id int64, delta ledger.Money) error {
	return ts.parent.adjustBalance(ctx, ts.tx, id, delta)
}

func (ts *txStore) ShiftOpening(ctx context.Context, id int64, delta ledger.Money) error {
	return ts.parent.shiftOpening(ctx, ts.tx, id, delta)
}

func (ts *txStore) DeleteAccount(ctx context.Context, id int64) error {
	return ts.parent.deleteAccount(ctx, ts.tx, id)
}

func (ts *txStore) CreateTransaction(ctx context.Context, tx ledger.Transaction) (ledger.Transaction, error) {
	return ts.parent.createTransaction(ctx, ts.tx, tx)
}

func (ts *txStore) Transaction(ctx context.Context, kind ledger.Kind, id int64) (ledger.Transaction, error) {
	return ts.parent.transaction(ctx, ts.tx, kind, id)
}

func (ts *txStore) Transactions(ctx context.Context, kind ledger.Kind) ([]ledger.Transaction, error) {
	return ts.parent.transactions(ctx, ts.tx, kind)
}

func (ts *txStore) UpdateTransaction(ctx context.Context, tx ledger.Transaction) error {
	return ts.parent.updateTransaction(ctx, ts.tx, tx)
}

func (ts *txStore) DeleteTransaction(ctx context.Context, kind ledger.Kind, id int64) error {
	return ts.parent.deleteTransaction(ctx, ts.tx, kind, id)
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"expenses", "incomes", "accounts"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return &ledger.StorageError{Op: "reset " + table, Err: err}
		}
	}
	// Restart the AUTOINCREMENT sequences too.
	if _, err := s.db.ExecContext(ctx, "DELETE FROM sqlite_sequence"); err != nil {
		return &ledger.StorageError{Op: "reset sequences", Err: err}
	}
	return nil
}

// Helper functions

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isForeignKeyError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
