// Package export handles the CSV export command.
package export

import (
	"context"
	"os"

	"mzhou/pocket-ledger/cmd/root"
	"mzhou/pocket-ledger/internal/database"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"
)

// Cmd represents the export command.
var Cmd = &cobra.Command{
	Use:   "export",
	Short: "Export transactions to CSV",
	Long:  `Write all stored transactions to a CSV file, newest first.`,
	Run:   exportFunc,
}

func init() {
	Cmd.Flags().StringVarP(&root.OutputFile, "output", "o", "", "Output CSV file (required)")
	Cmd.MarkFlagRequired("output")
}

func exportFunc(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	db, err := database.Open(root.Cfg.Data.Database, root.Log)
	if err != nil {
		root.Log.WithError(err).Fatal("Failed to open database")
	}
	defer db.Close()

	transactions, err := db.ListAll(ctx)
	if err != nil {
		root.Log.WithError(err).Fatal("Failed to load transactions")
	}

	file, err := os.Create(root.OutputFile)
	if err != nil {
		root.Log.WithError(err).Fatal("Failed to create output file")
	}
	defer file.Close()

	if err := gocsv.MarshalFile(&transactions, file); err != nil {
		root.Log.WithError(err).Fatal("Failed to write CSV")
	}

	root.Log.WithField("count", len(transactions)).Info("Transactions exported")
}
