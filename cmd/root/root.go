// Package root contains the root command for the application.
package root

import (
	"fmt"
	"os"

	"mzhou/pocket-ledger/internal/config"
	"mzhou/pocket-ledger/internal/logging"

	"github.com/spf13/cobra"
)

var (
	// Log is the shared logger instance for commands.
	Log = logging.GetLogger()

	// Cfg holds the resolved configuration after PersistentPreRun.
	Cfg *config.Config

	// Cmd is the root command.
	Cmd = &cobra.Command{
		Use:   "pocket-ledger",
		Short: "A bilingual expense tracker: parse, categorize, and total expenses from text or receipts.",
		Long: `pocket-ledger turns quick expense notes ("latte 4.50, muffin 3 星巴克")
and OCR'd receipt text into categorized transactions. It learns vendor
rules from category overrides and reports spending rollups.`,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to pocket-ledger!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.LoadEnv()

			cfg, err := config.Initialize()
			if err != nil {
				fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
				os.Exit(1)
			}
			Cfg = cfg

			logging.SetDefault(logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format))
			Log = logging.GetLogger()
		},
	}

	// Flags shared by subcommands.
	Text       string
	InputFile  string
	OutputFile string
)
