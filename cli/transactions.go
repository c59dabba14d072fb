package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"

	"github.com/warp/budget-engine/ledger"
)

// parseKind maps the -kind flag value onto a record kind.
func parseKind(s string) (ledger.Kind, error) {
	k := ledger.Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown kind %q (want %q or %q)", s, ledger.KindExpense, ledger.KindIncome)
	}
	return k, nil
}

// listTransactions renders all records of one kind.
func listTransactions(ctx context.Context, kind ledger.Kind) subcommands.ExitStatus {
	store, engine, err := openEngine()
	if err != nil {
		return fail(err)
	}
	defer store.Close()

	transactions, err := engine.Transactions(ctx, kind)
	if err != nil {
		return fail(err)
	}

	rows := make([][]string, 0, len(transactions))
	for _, t := range transactions {
		rows = append(rows, []string{
			fmt.Sprintf("%d", t.ID), t.Name, t.Amount.String(),
			fmt.Sprintf("%d", t.AccountID), t.Date,
		})
	}
	table([]string{"ID", "NAME", "AMOUNT", "ACCOUNT", "DATE"}, rows)
	return subcommands.ExitSuccess
}

type expensesCmd struct{}

func (*expensesCmd) Name() string     { return "expenses" }
func (*expensesCmd) Synopsis() string { return "list expense records" }
func (*expensesCmd) Usage() string {
	return `budget expenses

  Lists every expense record.
`
}
func (*expensesCmd) SetFlags(*flag.FlagSet) {}

func (*expensesCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return listTransactions(ctx, ledger.KindExpense)
}

type incomesCmd struct{}

func (*incomesCmd) Name() string     { return "incomes" }
func (*incomesCmd) Synopsis() string { return "list income records" }
func (*incomesCmd) Usage() string {
	return `budget incomes

  Lists every income record.
`
}
func (*incomesCmd) SetFlags(*flag.FlagSet) {}

func (*incomesCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return listTransactions(ctx, ledger.KindIncome)
}

type addCmd struct {
	kind    string
	name    string
	amount  string
	account int64
	date    string
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "record an expense or income" }
func (*addCmd) Usage() string {
	return `budget add -kind <expense|income> -name <name> -amount <amount> -account <id> [-date <YYYY-MM-DD>]

  Records an expense or income against an account and applies its effect to
  the account balance. The date defaults to today.
`
}

func (p *addCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.kind, "kind", string(ledger.KindExpense), "Record kind: expense or income.")
	f.StringVar(&p.name, "name", "", "Record name (required).")
	f.StringVar(&p.amount, "amount", "", "Amount (required, non-negative).")
	f.Int64Var(&p.account, "account", 0, "Account ID (required).")
	f.StringVar(&p.date, "date", "", "Record date. Defaults to today.")
}

func (p *addCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	kind, err := parseKind(p.kind)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitUsageError
	}
	amount, err := ledger.ParseMoney(p.amount)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing amount: %v\n", err)
		return subcommands.ExitUsageError
	}
	date := p.date
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	store, engine, err := openEngine()
	if err != nil {
		return fail(err)
	}
	defer store.Close()

	tx, err := engine.Add(ctx, kind, p.name, amount, p.account, date)
	if err != nil {
		return fail(err)
	}
	fmt.Printf("Recorded %s %d: %s %s on account %d\n", kind, tx.ID, tx.Name, tx.Amount, tx.AccountID)
	return subcommands.ExitSuccess
}

type editCmd struct {
	kind    string
	id      int64
	name    string
	amount  string
	account int64
	date    string
}

func (*editCmd) Name() string     { return "edit" }
func (*editCmd) Synopsis() string { return "edit a record, possibly moving it between accounts" }
func (*editCmd) Usage() string {
	return `budget edit -kind <expense|income> -id <id> -name <name> -amount <amount> -account <id> [-date <YYYY-MM-DD>]

  Overwrites a record's fields. Balances are fixed up automatically: the old
  effect is reversed and the new one applied, even when the record moves to
  a different account.
`
}

func (p *editCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.kind, "kind", string(ledger.KindExpense), "Record kind: expense or income.")
	f.Int64Var(&p.id, "id", 0, "Record ID (required).")
	f.StringVar(&p.name, "name", "", "New record name (required).")
	f.StringVar(&p.amount, "amount", "", "New amount (required, non-negative).")
	f.Int64Var(&p.account, "account", 0, "Target account ID (required).")
	f.StringVar(&p.date, "date", "", "New record date. Defaults to today.")
}

func (p *editCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	kind, err := parseKind(p.kind)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitUsageError
	}
	amount, err := ledger.ParseMoney(p.amount)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing amount: %v\n", err)
		return subcommands.ExitUsageError
	}
	date := p.date
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	store, engine, err := openEngine()
	if err != nil {
		return fail(err)
	}
	defer store.Close()

	tx, err := engine.Edit(ctx, kind, p.id, p.name, amount, p.account, date)
	if err != nil {
		return fail(err)
	}
	fmt.Printf("Updated %s %d: %s %s on account %d\n", kind, tx.ID, tx.Name, tx.Amount, tx.AccountID)
	return subcommands.ExitSuccess
}

type deleteCmd struct {
	kind string
	id   int64
	undo bool
}

func (*deleteCmd) Name() string     { return "delete" }
func (*deleteCmd) Synopsis() string { return "delete a record" }
func (*deleteCmd) Usage() string {
	return `budget delete -kind <expense|income> -id <id> [-undo]

  Deletes a record. By default the balance effect is kept: the money stays
  spent or received, only the record disappears. With -undo the effect is
  reversed as well, as if the record had never existed.
`
}

func (p *deleteCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.kind, "kind", string(ledger.KindExpense), "Record kind: expense or income.")
	f.Int64Var(&p.id, "id", 0, "Record ID (required).")
	f.BoolVar(&p.undo, "undo", false, "Also reverse the record's balance effect.")
}

func (p *deleteCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	kind, err := parseKind(p.kind)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitUsageError
	}

	store, engine, err := openEngine()
	if err != nil {
		return fail(err)
	}
	defer store.Close()

	if p.undo {
		err = engine.Undo(ctx, kind, p.id)
	} else {
		err = engine.Delete(ctx, kind, p.id)
	}
	if err != nil {
		return fail(err)
	}
	fmt.Printf("Deleted %s %d\n", kind, p.id)
	return subcommands.ExitSuccess
}
