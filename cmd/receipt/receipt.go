// Package receipt handles the receipt structuring command.
package receipt

import (
	"encoding/json"
	"io"
	"os"

	"mzhou/pocket-ledger/cmd/root"
	"mzhou/pocket-ledger/internal/receipt"

	"github.com/spf13/cobra"
)

// Cmd represents the receipt command.
var Cmd = &cobra.Command{
	Use:   "receipt",
	Short: "Structure OCR'd receipt text",
	Long: `Read receipt text from a file (or stdin) and extract the vendor,
total, date, and item lines.`,
	Run: receiptFunc,
}

func init() {
	Cmd.Flags().StringVarP(&root.InputFile, "input", "i", "", "Receipt text file (defaults to stdin)")
}

func receiptFunc(cmd *cobra.Command, args []string) {
	var text []byte
	var err error
	if root.InputFile != "" {
		text, err = os.ReadFile(root.InputFile)
	} else {
		text, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		root.Log.WithError(err).Fatal("Failed to read receipt text")
	}

	data := receipt.ParseReceipt(string(text))

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		root.Log.WithError(err).Fatal("Failed to encode result")
	}
}
