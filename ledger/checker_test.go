/*
checker_test.go - Unit tests for the consistency checker

The replay (Recompute/Verify) is pure, so these tests build accounts and
transactions as plain values, without any store.
*/
package ledger_test

import (
	"testing"

	"github.com/warp/budget-engine/ledger"
)

func account(id int64, name, balance, opening string) ledger.Account {
	return ledger.Account{
		ID:      id,
		Name:    name,
		Balance: ledger.MustParseMoney(balance),
		Opening: ledger.MustParseMoney(opening),
	}
}

func expense(id, accountID int64, amount string) ledger.Transaction {
	return ledger.Transaction{
		ID:        id,
		Kind:      ledger.KindExpense,
		Amount:    ledger.MustParseMoney(amount),
		AccountID: accountID,
	}
}

func income(id, accountID int64, amount string) ledger.Transaction {
	return ledger.Transaction{
		ID:        id,
		Kind:      ledger.KindIncome,
		Amount:    ledger.MustParseMoney(amount),
		AccountID: accountID,
	}
}

// =============================================================================
// VERIFY TESTS
// =============================================================================

func TestVerify_ConsistentLedger_NoDrift(t *testing.T) {
	// GIVEN: Opening 100, one 30 expense, one 10 income, stored balance 80
	// WHEN: Verifying
	// THEN: No drift reported

	accounts := []ledger.Account{account(1, "checking", "80", "100")}
	transactions := []ledger.Transaction{
		expense(1, 1, "30"),
		income(1, 1, "10"),
	}

	drifts := ledger.Verify(accounts, transactions)
	if len(drifts) != 0 {
		t.Errorf("Expected no drift, got %v", drifts)
	}
}

func TestVerify_StoredBalanceDiverges_ReportsDrift(t *testing.T) {
	// GIVEN: Opening 100, one 30 expense, stored balance 75 (should be 70)
	// WHEN: Verifying
	// THEN: One drift with stored 75 and expected 70

	accounts := []ledger.Account{account(1, "checking", "75", "100")}
	transactions := []ledger.Transaction{expense(1, 1, "30")}

	drifts := ledger.Verify(accounts, transactions)
	if len(drifts) != 1 {
		t.Fatalf("Expected 1 drift, got %d", len(drifts))
	}
	d := drifts[0]
	if d.AccountID != 1 {
		t.Errorf("Expected drift on account 1, got %d", d.AccountID)
	}
	if !d.Stored.Equal(ledger.MustParseMoney("75")) {
		t.Errorf("Expected stored 75, got %s", d.Stored)
	}
	if !d.Expected.Equal(ledger.MustParseMoney("70")) {
		t.Errorf("Expected expected 70, got %s", d.Expected)
	}
}

func TestVerify_MultipleAccounts_OnlyDivergingReported(t *testing.T) {
	// GIVEN: Two accounts, only the second out of balance
	// WHEN: Verifying
	// THEN: Exactly one drift, for the second account, in account order

	accounts := []ledger.Account{
		account(1, "checking", "70", "100"),
		account(2, "savings", "999", "500"),
	}
	transactions := []ledger.Transaction{
		expense(1, 1, "30"),
		income(1, 2, "50"),
	}

	drifts := ledger.Verify(accounts, transactions)
	if len(drifts) != 1 {
		t.Fatalf("Expected 1 drift, got %d", len(drifts))
	}
	if drifts[0].AccountID != 2 {
		t.Errorf("Expected drift on account 2, got %d", drifts[0].AccountID)
	}
	if !drifts[0].Expected.Equal(ledger.MustParseMoney("550")) {
		t.Errorf("Expected expected 550, got %s", drifts[0].Expected)
	}
}

func TestVerify_AccountWithNoTransactions_OpeningIsExpected(t *testing.T) {
	// GIVEN: An untouched account whose balance equals its opening
	// WHEN: Verifying
	// THEN: No drift

	accounts := []ledger.Account{account(1, "savings", "500", "500")}

	drifts := ledger.Verify(accounts, nil)
	if len(drifts) != 0 {
		t.Errorf("Expected no drift, got %v", drifts)
	}
}

func TestVerify_EmptyLedger_NoDrift(t *testing.T) {
	drifts := ledger.Verify(nil, nil)
	if len(drifts) != 0 {
		t.Errorf("Expected no drift for empty input, got %v", drifts)
	}
}

// =============================================================================
// RECOMPUTE TESTS
// =============================================================================

func TestRecompute_MixedKinds_SignedSum(t *testing.T) {
	// GIVEN: Opening 100, expenses 30 and 20, income 75
	// WHEN: Recomputing
	// THEN: Expected balance is 100 - 30 - 20 + 75 = 125

	accounts := []ledger.Account{account(1, "checking", "0", "100")}
	transactions := []ledger.Transaction{
		expense(1, 1, "30"),
		expense(2, 1, "20"),
		income(1, 1, "75"),
	}

	expected := ledger.Recompute(accounts, transactions)
	if !expected[1].Equal(ledger.MustParseMoney("125")) {
		t.Errorf("Expected 125, got %s", expected[1])
	}
}

func TestRecompute_UnknownAccountReference_Ignored(t *testing.T) {
	// GIVEN: A transaction referencing account 99, which does not exist
	// WHEN: Recomputing
	// THEN: The stray transaction is skipped, known accounts unaffected

	accounts := []ledger.Account{account(1, "checking", "0", "100")}
	transactions := []ledger.Transaction{expense(1, 99, "30")}

	expected := ledger.Recompute(accounts, transactions)
	if len(expected) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(expected))
	}
	if !expected[1].Equal(ledger.MustParseMoney("100")) {
		t.Errorf("Expected 100, got %s", expected[1])
	}
}

func TestRecompute_DecimalAmounts_Exact(t *testing.T) {
	// Repeated 0.1 expenses must sum exactly, no float drift.
	accounts := []ledger.Account{account(1, "checking", "0", "1")}
	var transactions []ledger.Transaction
	for i := 1; i <= 10; i++ {
		transactions = append(transactions, expense(int64(i), 1, "0.1"))
	}

	expected := ledger.Recompute(accounts, transactions)
	if !expected[1].Equal(ledger.MustParseMoney("0")) {
		t.Errorf("Expected exactly 0, got %s", expected[1])
	}
}
