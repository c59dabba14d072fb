package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/warp/budget-engine/ledger"
)

type checkCmd struct{}

func (*checkCmd) Name() string     { return "check" }
func (*checkCmd) Synopsis() string { return "verify stored balances against recorded activity" }
func (*checkCmd) Usage() string {
	return `budget check

  Recomputes every account balance from its opening balance and the full
  transaction log, and reports any account whose stored balance diverges.
  Exits non-zero when a divergence is found.
`
}
func (*checkCmd) SetFlags(*flag.FlagSet) {}

func (*checkCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	store, err := openStore()
	if err != nil {
		return fail(err)
	}
	defer store.Close()

	drifts, err := ledger.NewChecker(store).Check(ctx)
	if err != nil {
		return fail(err)
	}

	if len(drifts) == 0 {
		fmt.Println("All account balances are consistent.")
		return subcommands.ExitSuccess
	}

	fmt.Fprintf(os.Stderr, "%d account(s) out of balance:\n", len(drifts))
	for _, d := range drifts {
		fmt.Fprintf(os.Stderr, "  %s\n", d)
	}
	return subcommands.ExitFailure
}
