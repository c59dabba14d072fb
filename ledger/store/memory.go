// Package store provides an in-memory ledger.TxStore implementation
// (for testing/dev).
package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/warp/budget-engine/ledger"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory keeps all state behind one mutex: every operation observes either
// none or all of a concurrent writer's mutations. WithTx snapshots the
// state up front and restores it when fn fails, which gives the same
// all-or-nothing semantics as a database transaction.
type Memory struct {
	mu sync.Mutex

	nextAccountID int64
	accounts      []ledger.Account // insertion order

	nextTxID     map[ledger.Kind]int64
	transactions map[ledger.Kind][]ledger.Transaction // insertion order per kind
}

func NewMemory() *Memory {
	return &Memory{
		nextTxID: map[ledger.Kind]int64{},
		transactions: map[ledger.Kind][]ledger.Transaction{
			ledger.KindExpense: nil,
			ledger.KindIncome:  nil,
		},
	}
}

// =============================================================================
// TRANSACTIONAL EXECUTION
// =============================================================================

type snapshot struct {
	nextAccountID int64
	accounts      []ledger.Account
	nextTxID      map[ledger.Kind]int64
	transactions  map[ledger.Kind][]ledger.Transaction
}

func (m *Memory) snapshotLocked() snapshot {
	snap := snapshot{
		nextAccountID: m.nextAccountID,
		accounts:      append([]ledger.Account(nil), m.accounts...),
		nextTxID:      make(map[ledger.Kind]int64, len(m.nextTxID)),
		transactions:  make(map[ledger.Kind][]ledger.Transaction, len(m.transactions)),
	}
	for k, v := range m.nextTxID {
		snap.nextTxID[k] = v
	}
	for k, v := range m.transactions {
		snap.transactions[k] = append([]ledger.Transaction(nil), v...)
	}
	return snap
}

func (m *Memory) restoreLocked(snap snapshot) {
	m.nextAccountID = snap.nextAccountID
	m.accounts = snap.accounts
	m.nextTxID = snap.nextTxID
	m.transactions = snap.transactions
}

// WithTx executes fn against an unlocked view of the store. The mutex is
// held for the whole unit, so concurrent callers see either none or all of
// its mutations; on error the pre-fn state is restored.
func (m *Memory) WithTx(_ context.Context, fn func(ledger.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.snapshotLocked()
	if err := fn(&txView{m: m}); err != nil {
		m.restoreLocked(snap)
		return err
	}
	return nil
}

// txView exposes the store inside WithTx without re-locking the mutex.
type txView struct {
	m *Memory
}

func (v *txView) CreateAccount(ctx context.Context, name string, balance ledger.Money) (ledger.Account, error) {
	return v.m.createAccountLocked(name, balance)
}

func (v *txView) Account(ctx context.Context, id int64) (ledger.Account, error) {
	return v.m.accountLocked(id)
}

func (v *txView) Accounts(ctx context.Context) ([]ledger.Account, error) {
	return v.m.accountsLocked(), nil
}

func (v *txView) UpdateAccount(ctx context.Context, id int64, name string, balance ledger.Money) error {
	return v.m.updateAccountLocked(id, name, balance)
}

func (v *txView) AdjustBalance(ctx context.Context, id int64, delta ledger.Money) error {
	return v.m.adjustBalanceLocked(id, delta)
}

func (v *txView) ShiftOpening(ctx context.Context, id int64, delta ledger.Money) error {
	return v.m.shiftOpeningLocked(id, delta)
}

func (v *txView) DeleteAccount(ctx context.Context, id int64) error {
	return v.m.deleteAccountLocked(id)
}

func (v *txView) CreateTransaction(ctx context.Context, tx ledger.Transaction) (ledger.Transaction, error) {
	return v.m.createTransactionLocked(tx)
}

func (v *txView) Transaction(ctx context.Context, kind ledger.Kind, id int64) (ledger.Transaction, error) {
	return v.m.transactionLocked(kind, id)
}

func (v *txView) Transactions(ctx context.Context, kind ledger.Kind) ([]ledger.Transaction, error) {
	return v.m.transactionsLocked(kind), nil
}

func (v *txView) UpdateTransaction(ctx context.Context, tx ledger.Transaction) error {
	return v.m.updateTransactionLocked(tx)
}

func (v *txView) DeleteTransaction(ctx context.Context, kind ledger.Kind, id int64) error {
	return v.m.deleteTransactionLocked(kind, id)
}

// =============================================================================
// ACCOUNT STORE
// =============================================================================

func (m *Memory) CreateAccount(_ context.Context, name string, balance ledger.Money) (ledger.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createAccountLocked(name, balance)
}

func (m *Memory) createAccountLocked(name string, balance ledger.Money) (ledger.Account, error) {
	if strings.TrimSpace(name) == "" {
		return ledger.Account{}, ledger.ErrEmptyName
	}
	for _, a := range m.accounts {
		if a.Name == name {
			return ledger.Account{}, &ledger.DuplicateNameError{Name: name}
		}
	}
	m.nextAccountID++
	account := ledger.Account{
		ID:        m.nextAccountID,
		Name:      name,
		Balance:   balance,
		Opening:   balance,
		CreatedAt: time.Now().UTC(),
	}
	m.accounts = append(m.accounts, account)
	return account, nil
}

func (m *Memory) Account(_ context.Context, id int64) (ledger.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accountLocked(id)
}

func (m *Memory) accountLocked(id int64) (ledger.Account, error) {
	for _, a := range m.accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return ledger.Account{}, ledger.ErrAccountNotFound
}

func (m *Memory) Accounts(_ context.Context) ([]ledger.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accountsLocked(), nil
}

func (m *Memory) accountsLocked() []ledger.Account {
	return append([]ledger.Account(nil), m.accounts...)
}

func (m *Memory) UpdateAccount(_ context.Context, id int64, name string, balance ledger.Money) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateAccountLocked(id, name, balance)
}

func (m *Memory) updateAccountLocked(id int64, name string, balance ledger.Money) error {
	if strings.TrimSpace(name) == "" {
		return ledger.ErrEmptyName
	}
	for _, a := range m.accounts {
		if a.Name == name && a.ID != id {
			return &ledger.DuplicateNameError{Name: name}
		}
	}
	for i := range m.accounts {
		if m.accounts[i].ID == id {
			// Shift the opening balance by the same delta so the net effect
			// of the transaction history is preserved.
			delta := balance.Sub(m.accounts[i].Balance)
			m.accounts[i].Name = name
			m.accounts[i].Balance = balance
			m.accounts[i].Opening = m.accounts[i].Opening.Add(delta)
			return nil
		}
	}
	return ledger.ErrAccountNotFound
}

func (m *Memory) AdjustBalance(_ context.Context, id int64, delta ledger.Money) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.adjustBalanceLocked(id, delta)
}

func (m *Memory) adjustBalanceLocked(id int64, delta ledger.Money) error {
	for i := range m.accounts {
		if m.accounts[i].ID == id {
			m.accounts[i].Balance = m.accounts[i].Balance.Add(delta)
			return nil
		}
	}
	return ledger.ErrAccountNotFound
}

func (m *Memory) ShiftOpening(_ context.Context, id int64, delta ledger.Money) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.shiftOpeningLocked(id, delta)
}

func (m *Memory) shiftOpeningLocked(id int64, delta ledger.Money) error {
	for i := range m.accounts {
		if m.accounts[i].ID == id {
			m.accounts[i].Opening = m.accounts[i].Opening.Add(delta)
			return nil
		}
	}
	return ledger.ErrAccountNotFound
}

func (m *Memory) DeleteAccount(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteAccountLocked(id)
}

func (m *Memory) deleteAccountLocked(id int64) error {
	refs := 0
	for _, txs := range m.transactions {
		for _, tx := range txs {
			if tx.AccountID == id {
				refs++
			}
		}
	}
	if refs > 0 {
		return &ledger.AccountInUseError{AccountID: id, Count: refs}
	}
	for i := range m.accounts {
		if m.accounts[i].ID == id {
			m.accounts = append(m.accounts[:i], m.accounts[i+1:]...)
			return nil
		}
	}
	return ledger.ErrAccountNotFound
}

// =============================================================================
// TRANSACTION STORE
// =============================================================================

func (m *Memory) CreateTransaction(_ context.Context, tx ledger.Transaction) (ledger.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createTransactionLocked(tx)
}

func (m *Memory) createTransactionLocked(tx ledger.Transaction) (ledger.Transaction, error) {
	if !tx.Kind.Valid() {
		return ledger.Transaction{}, ledger.ErrInvalidKind
	}
	m.nextTxID[tx.Kind]++
	tx.ID = m.nextTxID[tx.Kind]
	tx.CreatedAt = time.Now().UTC()
	m.transactions[tx.Kind] = append(m.transactions[tx.Kind], tx)
	return tx, nil
}

func (m *Memory) Transaction(_ context.Context, kind ledger.Kind, id int64) (ledger.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transactionLocked(kind, id)
}

func (m *Memory) transactionLocked(kind ledger.Kind, id int64) (ledger.Transaction, error) {
	for _, tx := range m.transactions[kind] {
		if tx.ID == id {
			return tx, nil
		}
	}
	return ledger.Transaction{}, ledger.ErrTransactionNotFound
}

func (m *Memory) Transactions(_ context.Context, kind ledger.Kind) ([]ledger.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transactionsLocked(kind), nil
}

func (m *Memory) transactionsLocked(kind ledger.Kind) []ledger.Transaction {
	return append([]ledger.Transaction(nil), m.transactions[kind]...)
}

func (m *Memory) UpdateTransaction(_ context.Context, tx ledger.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateTransactionLocked(tx)
}

func (m *Memory) updateTransactionLocked(tx ledger.Transaction) error {
	txs := m.transactions[tx.Kind]
	for i := range txs {
		if txs[i].ID == tx.ID {
			txs[i].Name = tx.Name
			txs[i].Amount = tx.Amount
			txs[i].AccountID = tx.AccountID
			txs[i].Date = tx.Date
			return nil
		}
	}
	return ledger.ErrTransactionNotFound
}

func (m *Memory) DeleteTransaction(_ context.Context, kind ledger.Kind, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteTransactionLocked(kind, id)
}

func (m *Memory) deleteTransactionLocked(kind ledger.Kind, id int64) error {
	txs := m.transactions[kind]
	for i := range txs {
		if txs[i].ID == id {
			m.transactions[kind] = append(txs[:i], txs[i+1:]...)
			return nil
		}
	}
	return ledger.ErrTransactionNotFound
}
