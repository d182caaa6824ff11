// Package root contains the root command and the shared wiring used by all
// subcommands.
package root

import (
	"fjacquet/finsync/internal/config"
	"fjacquet/finsync/internal/logging"
	"fjacquet/finsync/internal/store"

	"github.com/spf13/cobra"
)

var (
	// Cfg is the loaded application configuration, available to all
	// subcommands after PersistentPreRunE.
	Cfg *config.Config

	// Log is the shared logger instance for commands.
	Log logging.Logger = logging.GetLogger()

	// Cmd is the root command.
	Cmd = &cobra.Command{
		Use:   "finsync",
		Short: "Sync, categorize and reconcile personal finance data.",
		Long: `finsync pulls balances and transactions from your linked bank accounts and
brokerage, converts them into one currency, categorizes them and reconciles
them against your monthly budget.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.InitializeConfig()
			if err != nil {
				return err
			}
			Cfg = cfg
			Log = logging.NewLogrusAdapterFromLogger(config.ConfigureLoggingFromConfig(cfg))
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}
)

// Init configures the root command. Called once from main before subcommands
// are attached.
func Init() {
	Cmd.CompletionOptions.DisableDefaultCmd = true
}

// OpenStore opens the configured database.
func OpenStore() (*store.Store, error) {
	return store.Open(Cfg.Database.Path, Log)
}
