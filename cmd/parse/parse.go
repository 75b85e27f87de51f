// Package parse handles the expense-text parsing command.
package parse

import (
	"encoding/json"
	"os"
	"strings"

	"mzhou/pocket-ledger/cmd/root"
	"mzhou/pocket-ledger/internal/parser"

	"github.com/spf13/cobra"
)

// Cmd represents the parse command.
var Cmd = &cobra.Command{
	Use:   "parse [text]",
	Short: "Parse expense text into items and a total",
	Long: `Parse free-form expense text such as "latte 4.50, muffin 3" or
"拿铁 4.50" into named items with amounts and an overall total.`,
	Args: cobra.ArbitraryArgs,
	Run:  parseFunc,
}

func init() {
	Cmd.Flags().StringVarP(&root.Text, "text", "t", "", "Expense text to parse (or pass as arguments)")
}

func parseFunc(cmd *cobra.Command, args []string) {
	text := root.Text
	if text == "" {
		text = strings.Join(args, " ")
	}
	if strings.TrimSpace(text) == "" {
		root.Log.Error("No text given, pass it as an argument or with --text")
		os.Exit(1)
	}

	result := parser.ParseExpenseText(text)
	if !result.Success {
		root.Log.WithField("candidates", result.Candidates).Error(result.Error)
		os.Exit(1)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		root.Log.WithError(err).Fatal("Failed to encode result")
	}
}
