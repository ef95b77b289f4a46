package cli

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"breadbot/internal/config"
	"breadbot/internal/domain"
)

func init() {
	rootCmd.AddCommand(ledgerCmd)
	ledgerCmd.AddCommand(ledgerRankCmd)
	ledgerCmd.AddCommand(ledgerShowCmd)

	ledgerRankCmd.Flags().String("scope", "", "restrict to one group scope")
}

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Inspect the ledger offline",
}

var ledgerRankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Print accounts sorted by balance",
	RunE:  runLedgerRank,
}

var ledgerShowCmd = &cobra.Command{
	Use:   "show NICKNAME",
	Short: "Print one account",
	Args:  cobra.ExactArgs(1),
	RunE:  runLedgerShow,
}

func loadLedger(ctx context.Context) (domain.Ledger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	store, closeStore, err := openStore(cfg.Storage)
	if err != nil {
		return nil, err
	}
	defer closeStore()
	return store.Load(ctx)
}

func runLedgerRank(cmd *cobra.Command, args []string) error {
	scope, _ := cmd.Flags().GetString("scope")
	ledger, err := loadLedger(cmd.Context())
	if err != nil {
		return err
	}

	var accts []domain.Account
	for _, a := range ledger {
		if scope == "" || a.Scope == domain.ScopeID(scope) {
			accts = append(accts, a)
		}
	}
	if len(accts) == 0 {
		fmt.Fprintln(os.Stdout, "No accounts.")
		return nil
	}
	sort.SliceStable(accts, func(i, j int) bool {
		if accts[i].Balance != accts[j].Balance {
			return accts[i].Balance > accts[j].Balance
		}
		return accts[i].CreatedAt < accts[j].CreatedAt
	})
	for i, a := range accts {
		fmt.Fprintf(os.Stdout, "%3d. %-16s %6d bread  (scope %s)\n", i+1, a.Nickname, a.Balance, a.Scope)
	}
	return nil
}

func runLedgerShow(cmd *cobra.Command, args []string) error {
	ledger, err := loadLedger(cmd.Context())
	if err != nil {
		return err
	}
	a, ok := ledger.ByNickname(args[0])
	if !ok {
		return fmt.Errorf("no account named %q", args[0])
	}
	fmt.Fprintf(os.Stdout, "nickname:      %s\n", a.Nickname)
	fmt.Fprintf(os.Stdout, "external id:   %s\n", a.ExternalID)
	fmt.Fprintf(os.Stdout, "scope:         %s\n", a.Scope)
	fmt.Fprintf(os.Stdout, "balance:       %d\n", a.Balance)
	fmt.Fprintf(os.Stdout, "last claim at: %d\n", a.LastClaimAt)
	fmt.Fprintf(os.Stdout, "last rob at:   %d\n", a.LastRobAt)
	return nil
}
