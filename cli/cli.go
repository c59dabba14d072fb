/*
cli.go - Command registry and shared helpers

PURPOSE:
  Hosts the subcommand registry for the budget command-line tool and the
  shared plumbing every command needs: opening the SQLite store, building
  the ledger engine, and rendering tables.

COMMANDS:
  accounts        list accounts with balances
  add-account     create an account
  edit-account    rename an account or set its balance directly
  delete-account  delete an account (rejected while transactions reference it)
  expenses        list expense records
  incomes         list income records
  add             record an expense or income
  edit            edit a record (may move it between accounts)
  delete          delete a record (-undo reverses its balance effect)
  transfer        move money between two accounts
  check           verify stored balances against recorded activity

SEE ALSO:
  - cmd/budget/main.go: Entry point wiring the registry into subcommands
  - ledger/engine.go: Operations the commands drive
*/
package cli

import (
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/subcommands"

	"github.com/warp/budget-engine/ledger"
	"github.com/warp/budget-engine/store/sqlite"
)

// Commands lists every subcommand the budget tool registers, in the order
// they appear in help output.
var Commands = []subcommands.Command{
	&accountsCmd{},
	&addAccountCmd{},
	&editAccountCmd{},
	&deleteAccountCmd{},
	&expensesCmd{},
	&incomesCmd{},
	&addCmd{},
	&editCmd{},
	&deleteCmd{},
	&transferCmd{},
	&checkCmd{},
}

var dbPath = flag.String("db", "budget.db", "Path to the SQLite database file")

// openStore opens the database every command works against.
func openStore() (*sqlite.Store, error) {
	return sqlite.New(*dbPath)
}

// openEngine opens the store and wraps it in a ledger engine. The caller
// must Close the returned store.
func openEngine() (*sqlite.Store, *ledger.Engine, error) {
	store, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	return store, ledger.NewEngine(store), nil
}

// fail prints the error and maps it onto an exit status: usage errors for
// bad input, plain failure otherwise.
func fail(err error) subcommands.ExitStatus {
	fmt.Fprintln(os.Stderr, "Error:", err)
	if ledger.IsClientError(err) {
		return subcommands.ExitUsageError
	}
	return subcommands.ExitFailure
}

// table writes rows as aligned columns on stdout.
func table(header []string, rows [][]string) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for i, h := range header {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, h)
	}
	fmt.Fprintln(w)
	for _, row := range rows {
		for i, cell := range row {
			if i > 0 {
				fmt.Fprint(w, "\t")
			}
			fmt.Fprint(w, cell)
		}
		fmt.Fprintln(w)
	}
	w.Flush()
}
