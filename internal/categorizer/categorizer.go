// Package categorizer assigns a spending category to a parsed transaction
// using three tiers tried in strict precedence order:
//  1. learned vendor rules (substring containment)
//  2. bilingual category keyword matching
//  3. fallback to the user's "Other" category, or Uncategorized
//
// Categorization is total: it always produces a result and never fails.
package categorizer

import (
	"context"

	"mzhou/pocket-ledger/internal/logging"
	"mzhou/pocket-ledger/internal/models"
)

// Engine runs the tier chain. It is stateless and safe for concurrent use.
type Engine struct {
	strategies []Strategy
	logger     logging.Logger
}

// NewEngine builds an Engine with the standard vendor-rule and keyword
// tiers.
func NewEngine(logger logging.Logger) *Engine {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Engine{
		strategies: []Strategy{
			&VendorRuleStrategy{},
			&KeywordStrategy{},
		},
		logger: logger,
	}
}

// Categorize runs the tiers in order and returns the first match, falling
// back to "Other"/Uncategorized when no tier matches.
func (e *Engine) Categorize(ctx context.Context, in Input) models.CategorizationResult {
	for _, strategy := range e.strategies {
		if result, found := strategy.Categorize(ctx, in); found {
			e.logger.WithFields(
				logging.Field{Key: "strategy", Value: strategy.Name()},
				logging.Field{Key: "category", Value: result.CategoryName},
				logging.Field{Key: "confidence", Value: result.Confidence},
			).Debug("Transaction categorized")
			return result
		}
	}
	return e.fallback(in)
}

// fallback assigns the user's "Other" category when one exists.
func (e *Engine) fallback(in Input) models.CategorizationResult {
	for _, category := range in.Categories {
		if category.Name == models.CategoryNameOther {
			id := category.ID
			return models.CategorizationResult{
				CategoryID:   &id,
				CategoryName: category.Name,
				Confidence:   models.ConfidenceLow,
				MatchedBy:    models.MatchedByFallback,
			}
		}
	}
	return models.CategorizationResult{
		CategoryName: models.CategoryNameUncategorized,
		Confidence:   models.ConfidenceLow,
		MatchedBy:    models.MatchedByFallback,
	}
}

// CategorizeTransaction is the convenience form used by callers that do not
// hold an Engine.
func CategorizeTransaction(rawText string, items []models.ParsedItem, vendor string, categories []models.Category, vendorRules []models.VendorRule) models.CategorizationResult {
	engine := NewEngine(nil)
	return engine.Categorize(context.Background(), Input{
		RawText:     rawText,
		Items:       items,
		Vendor:      vendor,
		Categories:  categories,
		VendorRules: vendorRules,
	})
}

// BulkCategorize categorizes a batch of transactions against the same
// category and rule sets.
func (e *Engine) BulkCategorize(ctx context.Context, inputs []Input) []models.CategorizationResult {
	results := make([]models.CategorizationResult, len(inputs))
	for i, in := range inputs {
		results[i] = e.Categorize(ctx, in)
	}
	return results
}
