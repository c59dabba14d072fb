package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/warp/budget-engine/ledger"
)

type accountsCmd struct{}

func (*accountsCmd) Name() string     { return "accounts" }
func (*accountsCmd) Synopsis() string { return "list accounts with balances" }
func (*accountsCmd) Usage() string {
	return `budget accounts

  Lists every account with its current and opening balance.
`
}
func (*accountsCmd) SetFlags(*flag.FlagSet) {}

func (*accountsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	store, engine, err := openEngine()
	if err != nil {
		return fail(err)
	}
	defer store.Close()

	accounts, err := engine.Accounts(ctx)
	if err != nil {
		return fail(err)
	}

	rows := make([][]string, 0, len(accounts))
	for _, a := range accounts {
		rows = append(rows, []string{
			fmt.Sprintf("%d", a.ID), a.Name, a.Balance.String(), a.Opening.String(),
		})
	}
	table([]string{"ID", "NAME", "BALANCE", "OPENING"}, rows)
	return subcommands.ExitSuccess
}

type addAccountCmd struct {
	name    string
	balance string
}

func (*addAccountCmd) Name() string     { return "add-account" }
func (*addAccountCmd) Synopsis() string { return "create an account" }
func (*addAccountCmd) Usage() string {
	return `budget add-account -name <name> [-balance <amount>]

  Creates an account. The initial balance defaults to 0 and becomes the
  account's opening balance.
`
}

func (p *addAccountCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.name, "name", "", "Account name (required, unique).")
	f.StringVar(&p.balance, "balance", "0", "Initial balance.")
}

func (p *addAccountCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	balance, err := ledger.ParseMoney(p.balance)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing balance: %v\n", err)
		return subcommands.ExitUsageError
	}

	store, engine, err := openEngine()
	if err != nil {
		return fail(err)
	}
	defer store.Close()

	account, err := engine.CreateAccount(ctx, p.name, balance)
	if err != nil {
		return fail(err)
	}
	fmt.Printf("Created account %d: %s (%s)\n", account.ID, account.Name, account.Balance)
	return subcommands.ExitSuccess
}

type editAccountCmd struct {
	id      int64
	name    string
	balance string
}

func (*editAccountCmd) Name() string     { return "edit-account" }
func (*editAccountCmd) Synopsis() string { return "rename an account or set its balance" }
func (*editAccountCmd) Usage() string {
	return `budget edit-account -id <id> -name <name> -balance <amount>

  Overwrites an account's name and balance. Setting the balance directly
  shifts the opening balance by the same delta, so recorded transactions
  keep adding up.
`
}

func (p *editAccountCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&p.id, "id", 0, "Account ID (required).")
	f.StringVar(&p.name, "name", "", "New account name (required).")
	f.StringVar(&p.balance, "balance", "", "New balance (required).")
}

func (p *editAccountCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	balance, err := ledger.ParseMoney(p.balance)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing balance: %v\n", err)
		return subcommands.ExitUsageError
	}

	store, engine, err := openEngine()
	if err != nil {
		return fail(err)
	}
	defer store.Close()

	if err := engine.EditAccount(ctx, p.id, p.name, balance); err != nil {
		return fail(err)
	}
	fmt.Printf("Updated account %d\n", p.id)
	return subcommands.ExitSuccess
}

type deleteAccountCmd struct {
	id int64
}

func (*deleteAccountCmd) Name() string     { return "delete-account" }
func (*deleteAccountCmd) Synopsis() string { return "delete an account" }
func (*deleteAccountCmd) Usage() string {
	return `budget delete-account -id <id>

  Deletes an account. Rejected while any expense or income still references
  it; delete or move those records first.
`
}

func (p *deleteAccountCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&p.id, "id", 0, "Account ID (required).")
}

func (p *deleteAccountCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	store, engine, err := openEngine()
	if err != nil {
		return fail(err)
	}
	defer store.Close()

	if err := engine.DeleteAccount(ctx, p.id); err != nil {
		return fail(err)
	}
	fmt.Printf("Deleted account %d\n", p.id)
	return subcommands.ExitSuccess
}

type transferCmd struct {
	from   int64
	to     int64
	amount string
}

func (*transferCmd) Name() string     { return "transfer" }
func (*transferCmd) Synopsis() string { return "move money between two accounts" }
func (*transferCmd) Usage() string {
	return `budget transfer -from <id> -to <id> -amount <amount>

  Atomically moves money from one account to another. Transfers leave no
  expense or income record.
`
}

func (p *transferCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&p.from, "from", 0, "Source account ID (required).")
	f.Int64Var(&p.to, "to", 0, "Destination account ID (required).")
	f.StringVar(&p.amount, "amount", "", "Amount to move (required, non-negative).")
}

func (p *transferCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	amount, err := ledger.ParseMoney(p.amount)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing amount: %v\n", err)
		return subcommands.ExitUsageError
	}

	store, engine, err := openEngine()
	if err != nil {
		return fail(err)
	}
	defer store.Close()

	if err := engine.Transfer(ctx, p.from, p.to, amount); err != nil {
		return fail(err)
	}
	fmt.Printf("Transferred %s from account %d to account %d\n", amount, p.from, p.to)
	return subcommands.ExitSuccess
}
