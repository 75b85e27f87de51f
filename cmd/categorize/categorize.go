// Package categorize handles the expense categorization command.
package categorize

import (
	"encoding/json"
	"os"
	"strings"

	"mzhou/pocket-ledger/cmd/root"
	"mzhou/pocket-ledger/internal/categorizer"
	"mzhou/pocket-ledger/internal/parser"
	"mzhou/pocket-ledger/internal/store"

	"github.com/spf13/cobra"
)

// Cmd represents the categorize command.
var Cmd = &cobra.Command{
	Use:   "categorize [text]",
	Short: "Parse and categorize expense text",
	Long: `Parse expense text, then assign a category using vendor rules and
bilingual keyword matching from the category configuration.`,
	Args: cobra.ArbitraryArgs,
	Run:  categorizeFunc,
}

func init() {
	Cmd.Flags().StringVarP(&root.Text, "text", "t", "", "Expense text to categorize (or pass as arguments)")
}

func categorizeFunc(cmd *cobra.Command, args []string) {
	text := root.Text
	if text == "" {
		text = strings.Join(args, " ")
	}
	if strings.TrimSpace(text) == "" {
		root.Log.Error("No text given, pass it as an argument or with --text")
		os.Exit(1)
	}

	parsed := parser.ParseExpenseText(text)
	if !parsed.Success {
		root.Log.WithField("candidates", parsed.Candidates).Error(parsed.Error)
		os.Exit(1)
	}

	categoryStore := store.NewCategoryStore(root.Cfg.Data.CategoriesFile, root.Cfg.Data.VendorRulesFile, root.Log)
	categories, err := categoryStore.LoadCategories()
	if err != nil {
		root.Log.WithError(err).Fatal("Failed to load categories")
	}
	rules, err := categoryStore.LoadVendorRules()
	if err != nil {
		root.Log.WithError(err).Fatal("Failed to load vendor rules")
	}

	result := categorizer.CategorizeTransaction(text, parsed.Items, parsed.Vendor, categories, rules)

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(struct {
		Parsed         interface{} `json:"parsed"`
		Categorization interface{} `json:"categorization"`
	}{parsed, result}); err != nil {
		root.Log.WithError(err).Fatal("Failed to encode result")
	}
}
