/*
handlers_test.go - HTTP tests for the budget API

Runs real requests through the chi router over the in-memory store, so the
full path (routing, JSON codec, engine, error mapping) is exercised.
*/
package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/budget-engine/api"
	"github.com/warp/budget-engine/ledger/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	handler := api.NewHandler(store.NewMemory())
	srv := httptest.NewServer(api.NewRouter(handler))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func createAccount(t *testing.T, srv *httptest.Server, name, balance string) api.AccountDTO {
	t.Helper()
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/accounts", api.AccountRequest{Name: name, Balance: balance})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[api.AccountDTO](t, resp)
}

func accountBalance(t *testing.T, srv *httptest.Server, id int64) string {
	t.Helper()
	resp := doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/accounts/%d", srv.URL, id), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decode[api.AccountDTO](t, resp).Balance
}

// =============================================================================
// ACCOUNT ENDPOINTS
// =============================================================================

func TestAPI_CreateAndListAccounts(t *testing.T) {
	srv := newTestServer(t)

	created := createAccount(t, srv, "checking", "100.50")
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, "checking", created.Name)
	assert.Equal(t, "100.5", created.Balance)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/accounts", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	accounts := decode[[]api.AccountDTO](t, resp)
	require.Len(t, accounts, 1)
	assert.Equal(t, "checking", accounts[0].Name)
}

func TestAPI_CreateAccount_InvalidBalance(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/accounts",
		api.AccountRequest{Name: "checking", Balance: "not-a-number"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_CreateAccount_DuplicateName_Conflict(t *testing.T) {
	srv := newTestServer(t)
	createAccount(t, srv, "checking", "0")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/accounts",
		api.AccountRequest{Name: "checking", Balance: "0"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestAPI_GetAccount_NotFound(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/accounts/42", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_UpdateAccount_DirectBalanceSet(t *testing.T) {
	srv := newTestServer(t)
	a := createAccount(t, srv, "checking", "100")

	resp := doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/accounts/%d", srv.URL, a.ID),
		api.AccountRequest{Name: "main", Balance: "250"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[api.AccountDTO](t, resp)
	assert.Equal(t, "main", updated.Name)
	assert.Equal(t, "250", updated.Balance)
}

func TestAPI_DeleteAccount_InUse_Conflict(t *testing.T) {
	srv := newTestServer(t)
	a := createAccount(t, srv, "checking", "100")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/expenses",
		api.TransactionRequest{Name: "rent", Amount: "50", AccountID: a.ID, Date: "2025-03-01"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/accounts/%d", srv.URL, a.ID), nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

// =============================================================================
// EXPENSE / INCOME ENDPOINTS
// =============================================================================

func TestAPI_AddExpense_UpdatesBalance(t *testing.T) {
	srv := newTestServer(t)
	a := createAccount(t, srv, "checking", "100")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/expenses",
		api.TransactionRequest{Name: "groceries", Amount: "12.50", AccountID: a.ID, Date: "2025-03-10"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	tx := decode[api.TransactionDTO](t, resp)
	assert.Equal(t, int64(1), tx.ID)
	assert.Equal(t, "expense", tx.Kind)
	assert.Equal(t, "2025-03-10", tx.Date)

	assert.Equal(t, "87.5", accountBalance(t, srv, a.ID))
}

func TestAPI_AddIncome_UpdatesBalance(t *testing.T) {
	srv := newTestServer(t)
	a := createAccount(t, srv, "checking", "100")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/incomes",
		api.TransactionRequest{Name: "salary", Amount: "2500", AccountID: a.ID, Date: "2025-03-01"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	assert.Equal(t, "2600", accountBalance(t, srv, a.ID))
}

func TestAPI_AddExpense_BlankDate_DefaultsToToday(t *testing.T) {
	srv := newTestServer(t)
	a := createAccount(t, srv, "checking", "100")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/expenses",
		api.TransactionRequest{Name: "coffee", Amount: "3", AccountID: a.ID})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	tx := decode[api.TransactionDTO](t, resp)
	assert.NotEmpty(t, tx.Date)
}

func TestAPI_AddExpense_UnknownAccount_NotFound(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/expenses",
		api.TransactionRequest{Name: "ghost", Amount: "10", AccountID: 99, Date: "2025-03-10"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_EditExpense_MovesBetweenAccounts(t *testing.T) {
	srv := newTestServer(t)
	a := createAccount(t, srv, "A", "100")
	b := createAccount(t, srv, "B", "100")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/expenses",
		api.TransactionRequest{Name: "rent", Amount: "50", AccountID: a.ID, Date: "2025-03-01"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	tx := decode[api.TransactionDTO](t, resp)

	resp = doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/expenses/%d", srv.URL, tx.ID),
		api.TransactionRequest{Name: "rent", Amount: "50", AccountID: b.ID, Date: "2025-03-01"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	moved := decode[api.TransactionDTO](t, resp)
	assert.Equal(t, b.ID, moved.AccountID)

	assert.Equal(t, "100", accountBalance(t, srv, a.ID))
	assert.Equal(t, "50", accountBalance(t, srv, b.ID))
}

func TestAPI_DeleteExpense_KeepsEffect(t *testing.T) {
	srv := newTestServer(t)
	a := createAccount(t, srv, "checking", "100")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/expenses",
		api.TransactionRequest{Name: "groceries", Amount: "30", AccountID: a.ID, Date: "2025-03-10"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	tx := decode[api.TransactionDTO](t, resp)

	resp = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/expenses/%d", srv.URL, tx.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// The money stays spent; only the record is gone.
	assert.Equal(t, "70", accountBalance(t, srv, a.ID))

	resp = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/expenses/%d", srv.URL, tx.ID), nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_DeleteExpense_Undo_ReversesEffect(t *testing.T) {
	srv := newTestServer(t)
	a := createAccount(t, srv, "checking", "100")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/expenses",
		api.TransactionRequest{Name: "groceries", Amount: "30", AccountID: a.ID, Date: "2025-03-10"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	tx := decode[api.TransactionDTO](t, resp)

	resp = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/expenses/%d?undo=true", srv.URL, tx.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	assert.Equal(t, "100", accountBalance(t, srv, a.ID))
}

// =============================================================================
// TRANSFER + CONSISTENCY
// =============================================================================

func TestAPI_Transfer(t *testing.T) {
	srv := newTestServer(t)
	a := createAccount(t, srv, "A", "100")
	b := createAccount(t, srv, "B", "20")

	resp := doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/accounts/%d/transfer", srv.URL, a.ID),
		api.TransferRequest{DestinationID: b.ID, Amount: "30"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	assert.Equal(t, "70", accountBalance(t, srv, a.ID))
	assert.Equal(t, "50", accountBalance(t, srv, b.ID))
}

func TestAPI_Transfer_SameAccount_BadRequest(t *testing.T) {
	srv := newTestServer(t)
	a := createAccount(t, srv, "A", "100")

	resp := doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/accounts/%d/transfer", srv.URL, a.ID),
		api.TransferRequest{DestinationID: a.ID, Amount: "30"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_Consistency_CleanAfterMixedOperations(t *testing.T) {
	srv := newTestServer(t)
	a := createAccount(t, srv, "A", "100")
	b := createAccount(t, srv, "B", "20")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/expenses",
		api.TransactionRequest{Name: "rent", Amount: "50", AccountID: a.ID, Date: "2025-03-01"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/accounts/%d/transfer", srv.URL, a.ID),
		api.TransferRequest{DestinationID: b.ID, Amount: "10"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/consistency", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	report := decode[api.ConsistencyDTO](t, resp)
	assert.True(t, report.Consistent)
	assert.Empty(t, report.Drifts)
}
