// Package sync handles the resynchronization commands.
package sync

import (
	"fmt"
	"time"

	"fjacquet/finsync/cmd/root"
	"fjacquet/finsync/internal/bankfeed"
	"fjacquet/finsync/internal/brokerage"
	"fjacquet/finsync/internal/categorizer"
	"fjacquet/finsync/internal/rates"
	"fjacquet/finsync/internal/reconciler"
	"fjacquet/finsync/internal/store"

	"github.com/spf13/cobra"
)

// Cmd represents the sync command.
var Cmd = &cobra.Command{
	Use:   "sync",
	Short: "Pull balances and transactions from all linked accounts",
	Long: `Run a full resynchronization pass: fetch balances and transactions from the
bank feed and the brokerage, convert amounts into the target currency,
categorize each transaction and rebuild the local transaction table.`,
	RunE: syncFunc,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the outcome of the latest sync run",
	RunE:  statusFunc,
}

func init() {
	Cmd.AddCommand(statusCmd)
}

func newReconciler(s *store.Store) (*reconciler.Reconciler, error) {
	cfg := root.Cfg
	timeout := time.Duration(cfg.Sync.TimeoutSeconds) * time.Second

	keywords := categorizer.NewKeywordStrategy(root.Log)
	if err := keywords.LoadCategoriesFile(cfg.Categorization.CategoriesFile); err != nil {
		return nil, err
	}

	return reconciler.New(
		s,
		bankfeed.NewClient(cfg.Bank.BaseURL, cfg.Bank.SecretID, cfg.Bank.SecretKey, timeout, root.Log),
		brokerage.NewClient(cfg.Brokerage.BaseURL, cfg.Brokerage.APIKey, timeout, root.Log),
		rates.NewClient(cfg.Rates.BaseURL, timeout, root.Log),
		categorizer.NewClassifier(s, keywords, root.Log),
		reconciler.Options{
			BankAccountIDs: cfg.Bank.AccountIDs,
			TargetCurrency: cfg.Sync.TargetCurrency,
			WindowDays:     cfg.Sync.WindowDays,
			OrderLimit:     cfg.Sync.OrderLimit,
		},
		root.Log,
	), nil
}

func syncFunc(cmd *cobra.Command, args []string) error {
	s, err := root.OpenStore()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	r, err := newReconciler(s)
	if err != nil {
		return err
	}
	if err := r.Run(cmd.Context()); err != nil {
		return err
	}

	run, err := r.Status()
	if err != nil {
		return err
	}
	fmt.Printf("Synced %d accounts, %d transactions\n", run.AccountsSynced, run.TransactionsSynced)
	if run.Error != "" {
		fmt.Printf("Partial failures: %s\n", run.Error)
	}
	return nil
}

func statusFunc(cmd *cobra.Command, args []string) error {
	s, err := root.OpenStore()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	run, found, err := s.LatestSyncRun()
	if err != nil {
		return err
	}
	if !found {
		fmt.Println("Status: never synced")
		return nil
	}

	fmt.Printf("Status:       %s\n", run.Status)
	fmt.Printf("Started:      %s\n", run.StartedAt.Local().Format(time.RFC3339))
	if !run.CompletedAt.IsZero() {
		fmt.Printf("Completed:    %s\n", run.CompletedAt.Local().Format(time.RFC3339))
	}
	fmt.Printf("Accounts:     %d\n", run.AccountsSynced)
	fmt.Printf("Transactions: %d\n", run.TransactionsSynced)
	if run.Error != "" {
		fmt.Printf("Errors:       %s\n", run.Error)
	}
	return nil
}
