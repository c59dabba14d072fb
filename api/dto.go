/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

AMOUNTS:
  Monetary values cross the wire as decimal strings ("12.50"), never JSON
  floats, to match the exact decimal arithmetic inside the engine.

VALIDATION:
  Parsing user-supplied text (amounts, IDs) happens in handlers - the
  caller side of the engine boundary. The engine itself only validates
  domain constraints (non-negative amount, existing account, unique name).

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/warp/budget-engine/ledger"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// AccountDTO represents an account in API responses.
type AccountDTO struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Balance   string `json:"balance"`
	CreatedAt string `json:"created_at,omitempty"`
}

func toAccountDTO(a ledger.Account) AccountDTO {
	return AccountDTO{
		ID:        a.ID,
		Name:      a.Name,
		Balance:   a.Balance.String(),
		CreatedAt: a.CreatedAt.Format(time.RFC3339),
	}
}

// AccountRequest is the request to create or overwrite an account.
type AccountRequest struct {
	Name    string `json:"name"`
	Balance string `json:"balance"`
}

// TransactionDTO represents an expense or income in API responses.
type TransactionDTO struct {
	ID        int64  `json:"id"`
	Kind      string `json:"kind"`
	Name      string `json:"name"`
	Amount    string `json:"amount"`
	AccountID int64  `json:"account_id"`
	Date      string `json:"date"`
	CreatedAt string `json:"created_at,omitempty"`
}

func toTransactionDTO(tx ledger.Transaction) TransactionDTO {
	return TransactionDTO{
		ID:        tx.ID,
		Kind:      string(tx.Kind),
		Name:      tx.Name,
		Amount:    tx.Amount.String(),
		AccountID: tx.AccountID,
		Date:      tx.Date,
		CreatedAt: tx.CreatedAt.Format(time.RFC3339),
	}
}

// TransactionRequest is the request to create or overwrite an expense or
// income. Date is optional; blank defaults to today.
type TransactionRequest struct {
	Name      string `json:"name"`
	Amount    string `json:"amount"`
	AccountID int64  `json:"account_id"`
	Date      string `json:"date"`
}

// TransferRequest moves money between two accounts.
type TransferRequest struct {
	DestinationID int64  `json:"destination_id"`
	Amount        string `json:"amount"`
}

// DriftDTO reports one account whose stored balance diverges from the
// balance recomputed from the transaction log.
type DriftDTO struct {
	AccountID int64  `json:"account_id"`
	Name      string `json:"name"`
	Stored    string `json:"stored"`
	Expected  string `json:"expected"`
}

// ConsistencyDTO is the result of a full consistency check.
type ConsistencyDTO struct {
	Consistent bool       `json:"consistent"`
	Drifts     []DriftDTO `json:"drifts,omitempty"`
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
