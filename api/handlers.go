/*
handlers.go - HTTP API handlers for the budget engine

PURPOSE:
  Exposes the budget engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates every mutation to the engine - the
  handlers never touch balances themselves.

ENDPOINTS:
  Accounts:
    GET    /api/accounts                 List accounts
    POST   /api/accounts                 Create account
    GET    /api/accounts/{id}            Get account
    PUT    /api/accounts/{id}            Overwrite name/balance
    DELETE /api/accounts/{id}            Delete (rejected while in use)
    POST   /api/accounts/{id}/transfer   Transfer to another account

  Expenses / Incomes (same shape, opposite balance effect):
    GET    /api/expenses                 List
    POST   /api/expenses                 Add (applies balance effect)
    GET    /api/expenses/{id}            Get
    PUT    /api/expenses/{id}            Edit (fixes up balances)
    DELETE /api/expenses/{id}            Delete, keep balance effect
    DELETE /api/expenses/{id}?undo=true  Delete AND reverse balance effect

  Consistency:
    GET    /api/consistency              Recompute balances, report drift

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Account or transaction not found
  - 409: Duplicate account name, account still in use
  - 500: Storage errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/warp/budget-engine/ledger"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Engine  *ledger.Engine
	Checker *ledger.Checker
}

// NewHandler creates a new handler over the given store.
func NewHandler(store ledger.TxStore) *Handler {
	return &Handler{
		Engine:  ledger.NewEngine(store),
		Checker: ledger.NewChecker(store),
	}
}

// =============================================================================
// ACCOUNT HANDLERS
// =============================================================================

// ListAccounts returns all accounts.
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.Engine.Accounts(r.Context())
	if err != nil {
		writeEngineError(w, "Failed to list accounts", err)
		return
	}

	dtos := make([]AccountDTO, len(accounts))
	for i, a := range accounts {
		dtos[i] = toAccountDTO(a)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateAccount creates a new account.
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req AccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	balance, err := ledger.ParseMoney(req.Balance)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid balance", err)
		return
	}

	account, err := h.Engine.CreateAccount(r.Context(), req.Name, balance)
	if err != nil {
		writeEngineError(w, "Failed to create account", err)
		return
	}
	writeJSON(w, http.StatusCreated, toAccountDTO(account))
}

// GetAccount returns a single account.
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	account, err := h.Engine.Account(r.Context(), id)
	if err != nil {
		writeEngineError(w, "Failed to get account", err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountDTO(account))
}

// UpdateAccount overwrites an account's name and balance (the direct edit
// path, not the incremental one).
func (h *Handler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req AccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	balance, err := ledger.ParseMoney(req.Balance)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid balance", err)
		return
	}

	if err := h.Engine.EditAccount(r.Context(), id, req.Name, balance); err != nil {
		writeEngineError(w, "Failed to update account", err)
		return
	}

	account, err := h.Engine.Account(r.Context(), id)
	if err != nil {
		writeEngineError(w, "Failed to get account", err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountDTO(account))
}

// DeleteAccount removes an account; 409 while transactions reference it.
func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.Engine.DeleteAccount(r.Context(), id); err != nil {
		writeEngineError(w, "Failed to delete account", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

// Transfer moves money from the account in the path to the destination in
// the body. No transaction record is created; this is a pure balance
// movement.
func (h *Handler) Transfer(w http.ResponseWriter, r *http.Request) {
	sourceID, ok := pathID(w, r)
	if !ok {
		return
	}

	var req TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	amount, err := ledger.ParseMoney(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid amount", err)
		return
	}

	if err := h.Engine.Transfer(r.Context(), sourceID, req.DestinationID, amount); err != nil {
		writeEngineError(w, "Failed to transfer", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"source_id":      sourceID,
		"destination_id": req.DestinationID,
		"amount":         amount.String(),
	})
}

// =============================================================================
// TRANSACTION HANDLERS (expenses and incomes share these)
// =============================================================================

// ListTransactions returns all records of one kind.
func (h *Handler) ListTransactions(kind ledger.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		txs, err := h.Engine.Transactions(r.Context(), kind)
		if err != nil {
			writeEngineError(w, "Failed to list "+string(kind)+"s", err)
			return
		}

		dtos := make([]TransactionDTO, len(txs))
		for i, tx := range txs {
			dtos[i] = toTransactionDTO(tx)
		}
		writeJSON(w, http.StatusOK, dtos)
	}
}

// CreateTransaction adds a record and applies its balance effect.
func (h *Handler) CreateTransaction(kind ledger.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TransactionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}

		amount, err := ledger.ParseMoney(req.Amount)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid amount", err)
			return
		}

		// The engine treats the date as opaque; defaulting is caller-side.
		date := req.Date
		if date == "" {
			date = time.Now().Format("2006-01-02")
		}

		tx, err := h.Engine.Add(r.Context(), kind, req.Name, amount, req.AccountID, date)
		if err != nil {
			writeEngineError(w, "Failed to add "+string(kind), err)
			return
		}
		writeJSON(w, http.StatusCreated, toTransactionDTO(tx))
	}
}

// GetTransaction returns one record.
func (h *Handler) GetTransaction(kind ledger.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		tx, err := h.Engine.Transaction(r.Context(), kind, id)
		if err != nil {
			writeEngineError(w, "Failed to get "+string(kind), err)
			return
		}
		writeJSON(w, http.StatusOK, toTransactionDTO(tx))
	}
}

// UpdateTransaction edits a record; old effect reversed, new one applied,
// possibly against a different account.
func (h *Handler) UpdateTransaction(kind ledger.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		var req TransactionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}

		amount, err := ledger.ParseMoney(req.Amount)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid amount", err)
			return
		}

		date := req.Date
		if date == "" {
			date = time.Now().Format("2006-01-02")
		}

		tx, err := h.Engine.Edit(r.Context(), kind, id, req.Name, amount, req.AccountID, date)
		if err != nil {
			writeEngineError(w, "Failed to edit "+string(kind), err)
			return
		}
		writeJSON(w, http.StatusOK, toTransactionDTO(tx))
	}
}

// DeleteTransaction removes a record. By default the balance effect is
// kept; with ?undo=true the effect is reversed as well.
func (h *Handler) DeleteTransaction(kind ledger.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		undo := r.URL.Query().Get("undo") == "true"

		var err error
		if undo {
			err = h.Engine.Undo(r.Context(), kind, id)
		} else {
			err = h.Engine.Delete(r.Context(), kind, id)
		}
		if err != nil {
			writeEngineError(w, "Failed to delete "+string(kind), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"deleted": id, "undone": undo})
	}
}

// =============================================================================
// CONSISTENCY HANDLER
// =============================================================================

// CheckConsistency recomputes every balance from the transaction log and
// reports accounts that have drifted.
func (h *Handler) CheckConsistency(w http.ResponseWriter, r *http.Request) {
	drifts, err := h.Checker.Check(r.Context())
	if err != nil {
		writeEngineError(w, "Failed to check consistency", err)
		return
	}

	dto := ConsistencyDTO{Consistent: len(drifts) == 0}
	for _, d := range drifts {
		dto.Drifts = append(dto.Drifts, DriftDTO{
			AccountID: d.AccountID,
			Name:      d.Name,
			Stored:    d.Stored.String(),
			Expected:  d.Expected.String(),
		})
	}
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// HELPERS
// =============================================================================

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id", err)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeEngineError maps the engine's error taxonomy onto HTTP status codes.
func writeEngineError(w http.ResponseWriter, message string, err error) {
	switch {
	case ledger.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case errors.Is(err, ledger.ErrDuplicateName), errors.Is(err, ledger.ErrAccountInUse):
		writeError(w, http.StatusConflict, message, err)
	case ledger.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
