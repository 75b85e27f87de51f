package categorizer

import (
	"context"
	"strings"

	"mzhou/pocket-ledger/internal/models"
)

// VendorRuleStrategy matches the transaction against the user's learned
// vendor→category rules. A containment hit on the vendor (or raw text when
// no vendor was detected) is high confidence; a hit anywhere in the combined
// text is medium. Rules are tried in their given order, first hit wins.
type VendorRuleStrategy struct{}

func (s *VendorRuleStrategy) Name() string {
	return "VendorRules"
}

func (s *VendorRuleStrategy) Categorize(ctx context.Context, in Input) (models.CategorizationResult, bool) {
	subject := in.Vendor
	if subject == "" {
		subject = in.RawText
	}
	normalizedSubject := normalizeForMatching(subject)

	// Exact containment against the vendor/raw text subject.
	for _, rule := range in.VendorRules {
		normalizedVendor := normalizeForMatching(rule.Vendor)
		if normalizedVendor == "" || !strings.Contains(normalizedSubject, normalizedVendor) {
			continue
		}
		if category, ok := findCategory(in.Categories, rule.CategoryID); ok {
			return vendorResult(category, rule, models.ConfidenceHigh), true
		}
	}

	// Broader pass over raw text plus all item names.
	haystack := normalizeForMatching(combinedText(in.RawText, in.Items))
	for _, rule := range in.VendorRules {
		normalizedVendor := normalizeForMatching(rule.Vendor)
		if normalizedVendor == "" || !strings.Contains(haystack, normalizedVendor) {
			continue
		}
		if category, ok := findCategory(in.Categories, rule.CategoryID); ok {
			return vendorResult(category, rule, models.ConfidenceMedium), true
		}
	}

	return models.CategorizationResult{}, false
}

func vendorResult(category models.Category, rule models.VendorRule, confidence models.Confidence) models.CategorizationResult {
	id := category.ID
	return models.CategorizationResult{
		CategoryID:      &id,
		CategoryName:    category.Name,
		Confidence:      confidence,
		MatchedBy:       models.MatchedByVendor,
		MatchedKeywords: []string{rule.Vendor},
	}
}

func findCategory(categories []models.Category, id int64) (models.Category, bool) {
	for _, category := range categories {
		if category.ID == id {
			return category, true
		}
	}
	return models.Category{}, false
}

// normalizeForMatching lowercases and trims; Chinese text passes through
// unchanged since case folding is a no-op there.
func normalizeForMatching(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// combinedText joins the raw text with every item name, the haystack used by
// the broad vendor pass and by keyword matching.
func combinedText(rawText string, items []models.ParsedItem) string {
	parts := make([]string, 0, len(items)+1)
	parts = append(parts, rawText)
	for _, item := range items {
		parts = append(parts, item.Name)
	}
	return strings.Join(parts, " ")
}
