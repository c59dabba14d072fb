/*
errors.go - Centralized error types for the budget engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers (HTTP handlers, CLI commands) map these to user-facing behavior.

ERROR CATEGORIES:
  1. Validation errors - Bad input (negative amount, empty name, self transfer)
  2. Not-found errors - Dangling account or transaction references
  3. Conflict errors - Duplicate account names, accounts still in use
  4. Storage errors - Database-level failures; the operation was rolled back

USAGE:
  Callers branch with errors.Is / errors.As:

    if errors.Is(err, ledger.ErrDuplicateName) {
        // re-prompt for another name
    }

SEE ALSO:
  - engine.go: Raises these errors, never swallows them
  - store/sqlite: Maps driver failures onto this taxonomy
*/
package ledger

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrDuplicateName is returned when an account is created or renamed to
	// a name that already exists. Recoverable: the caller should re-prompt.
	ErrDuplicateName = errors.New("account name already exists")

	// ErrAccountNotFound is returned when a referenced account doesn't exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrTransactionNotFound is returned when a referenced expense or income
	// doesn't exist.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrNegativeAmount is returned for a negative transaction or transfer
	// amount. Sign is implied by kind, never stored.
	ErrNegativeAmount = errors.New("amount must not be negative")

	// ErrEmptyName is returned when an account name is blank.
	ErrEmptyName = errors.New("account name must not be empty")

	// ErrSameAccount is returned for a transfer whose source and destination
	// are the same account.
	ErrSameAccount = errors.New("transfer source and destination are the same account")

	// ErrAccountInUse is returned when deleting an account that still has
	// expenses or incomes attributed to it.
	ErrAccountInUse = errors.New("account still has transactions attributed to it")

	// ErrInvalidKind is returned for a transaction kind other than
	// expense/income.
	ErrInvalidKind = errors.New("invalid transaction kind")

	// ErrStorage is returned when the underlying store failed. The whole
	// operation was rolled back; the caller may retry.
	ErrStorage = errors.New("storage failure")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// DuplicateNameError reports which name collided.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("account name %q already exists", e.Name)
}

func (e *DuplicateNameError) Unwrap() error {
	return ErrDuplicateName
}

// AccountInUseError reports how many transactions still reference an account.
type AccountInUseError struct {
	AccountID int64
	Count     int
}

func (e *AccountInUseError) Error() string {
	return fmt.Sprintf("account %d still has %d transaction(s) attributed to it", e.AccountID, e.Count)
}

func (e *AccountInUseError) Unwrap() error {
	return ErrAccountInUse
}

// StorageError wraps a driver-level failure.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return ErrStorage
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrAccountNotFound) ||
		errors.Is(err, ErrTransactionNotFound)
}

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrDuplicateName) ||
		errors.Is(err, ErrNegativeAmount) ||
		errors.Is(err, ErrEmptyName) ||
		errors.Is(err, ErrSameAccount) ||
		errors.Is(err, ErrAccountInUse) ||
		errors.Is(err, ErrInvalidKind)
}

// IsRetryable returns true if the error might succeed on retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStorage)
}
