package categorizer

import (
	"context"
	"testing"

	"mzhou/pocket-ledger/internal/logging"
	"mzhou/pocket-ledger/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCategories() []models.Category {
	return []models.Category{
		{
			ID:         1,
			Name:       "Grocery",
			KeywordsEN: []string{"beef", "carrot", "milk"},
			KeywordsZH: []string{"牛肉", "超市"},
		},
		{
			ID:         2,
			Name:       "Dining",
			KeywordsEN: []string{"coffee", "latte", "lunch"},
			KeywordsZH: []string{"咖啡", "拿铁"},
		},
		{
			ID:   8,
			Name: models.CategoryNameOther,
		},
	}
}

func TestEngine_VendorRuleTier(t *testing.T) {
	engine := NewEngine(logging.NewMockLogger())
	rules := []models.VendorRule{{ID: 1, Vendor: "Costco", CategoryID: 5}}
	categories := append(testCategories(), models.Category{ID: 5, Name: "Wholesale"})

	t.Run("vendor match is high confidence", func(t *testing.T) {
		result := engine.Categorize(context.Background(), Input{
			RawText:     "COSTCO WHOLESALE",
			Vendor:      "COSTCO WHOLESALE",
			Categories:  categories,
			VendorRules: rules,
		})
		require.NotNil(t, result.CategoryID)
		assert.Equal(t, int64(5), *result.CategoryID)
		assert.Equal(t, models.ConfidenceHigh, result.Confidence)
		assert.Equal(t, models.MatchedByVendor, result.MatchedBy)
	})

	t.Run("raw text stands in for a missing vendor", func(t *testing.T) {
		result := engine.Categorize(context.Background(), Input{
			RawText:     "weekly costco run 88",
			Categories:  categories,
			VendorRules: rules,
		})
		require.NotNil(t, result.CategoryID)
		assert.Equal(t, int64(5), *result.CategoryID)
		assert.Equal(t, models.ConfidenceHigh, result.Confidence)
		assert.Equal(t, models.MatchedByVendor, result.MatchedBy)
	})

	t.Run("item-name match is medium confidence", func(t *testing.T) {
		result := engine.Categorize(context.Background(), Input{
			RawText:     "weekly run",
			Vendor:      "Corner Store",
			Items:       []models.ParsedItem{{Name: "costco water", Amount: decimal.NewFromInt(8)}},
			Categories:  categories,
			VendorRules: rules,
		})
		require.NotNil(t, result.CategoryID)
		assert.Equal(t, int64(5), *result.CategoryID)
		assert.Equal(t, models.ConfidenceMedium, result.Confidence)
		assert.Equal(t, models.MatchedByVendor, result.MatchedBy)
	})

	t.Run("rule pointing at missing category is skipped", func(t *testing.T) {
		result := engine.Categorize(context.Background(), Input{
			RawText:     "costco",
			Vendor:      "costco",
			Categories:  testCategories(),
			VendorRules: rules,
		})
		// Falls through to the Other fallback.
		assert.Equal(t, models.CategoryNameOther, result.CategoryName)
	})
}

func TestEngine_KeywordTier(t *testing.T) {
	engine := NewEngine(logging.NewMockLogger())

	t.Run("two keyword matches are medium confidence", func(t *testing.T) {
		result := engine.Categorize(context.Background(), Input{
			RawText: "15 beef, 12.9 carrot",
			Items: []models.ParsedItem{
				{Name: "beef", Amount: decimal.NewFromInt(15)},
				{Name: "carrot", Amount: decimal.RequireFromString("12.9")},
			},
			Categories: testCategories(),
		})
		require.NotNil(t, result.CategoryID)
		assert.Equal(t, int64(1), *result.CategoryID)
		assert.Equal(t, "Grocery", result.CategoryName)
		assert.Equal(t, models.ConfidenceMedium, result.Confidence)
		assert.Equal(t, models.MatchedByKeywordEN, result.MatchedBy)
		assert.ElementsMatch(t, []string{"beef", "carrot"}, result.MatchedKeywords)
	})

	t.Run("more than two matches are high confidence", func(t *testing.T) {
		result := engine.Categorize(context.Background(), Input{
			RawText:    "beef carrot milk",
			Categories: testCategories(),
		})
		assert.Equal(t, "Grocery", result.CategoryName)
		assert.Equal(t, models.ConfidenceHigh, result.Confidence)
	})

	t.Run("chinese text prefers chinese keywords", func(t *testing.T) {
		result := engine.Categorize(context.Background(), Input{
			RawText:    "拿铁 4.50",
			Categories: testCategories(),
		})
		assert.Equal(t, "Dining", result.CategoryName)
		assert.Equal(t, models.MatchedByKeywordZH, result.MatchedBy)
		assert.Equal(t, []string{"拿铁"}, result.MatchedKeywords)
	})

	t.Run("english keywords match case-insensitively", func(t *testing.T) {
		result := engine.Categorize(context.Background(), Input{
			RawText:    "LATTE 4.50",
			Categories: testCategories(),
		})
		assert.Equal(t, "Dining", result.CategoryName)
		assert.Equal(t, models.MatchedByKeywordEN, result.MatchedBy)
	})

	t.Run("highest count wins", func(t *testing.T) {
		result := engine.Categorize(context.Background(), Input{
			RawText:    "coffee with milk and beef",
			Categories: testCategories(),
		})
		// Grocery matches milk+beef, Dining matches coffee.
		assert.Equal(t, "Grocery", result.CategoryName)
	})
}

func TestEngine_Fallback(t *testing.T) {
	engine := NewEngine(logging.NewMockLogger())

	t.Run("other category", func(t *testing.T) {
		result := engine.Categorize(context.Background(), Input{
			RawText:    "mystery purchase 10",
			Categories: testCategories(),
		})
		require.NotNil(t, result.CategoryID)
		assert.Equal(t, int64(8), *result.CategoryID)
		assert.Equal(t, models.CategoryNameOther, result.CategoryName)
		assert.Equal(t, models.ConfidenceLow, result.Confidence)
		assert.Equal(t, models.MatchedByFallback, result.MatchedBy)
	})

	t.Run("no other category yields uncategorized", func(t *testing.T) {
		result := engine.Categorize(context.Background(), Input{
			RawText:    "mystery purchase 10",
			Categories: testCategories()[:2],
		})
		assert.Nil(t, result.CategoryID)
		assert.Equal(t, models.CategoryNameUncategorized, result.CategoryName)
		assert.Equal(t, models.ConfidenceLow, result.Confidence)
	})
}

func TestEngine_VendorRulesBeatKeywords(t *testing.T) {
	engine := NewEngine(logging.NewMockLogger())
	categories := testCategories()
	rules := []models.VendorRule{{ID: 1, Vendor: "latte shop", CategoryID: 1}}

	result := engine.Categorize(context.Background(), Input{
		RawText:     "latte shop latte 4.50",
		Vendor:      "latte shop",
		Categories:  categories,
		VendorRules: rules,
	})
	// The keyword tier would pick Dining; the vendor rule points at Grocery.
	require.NotNil(t, result.CategoryID)
	assert.Equal(t, int64(1), *result.CategoryID)
	assert.Equal(t, models.MatchedByVendor, result.MatchedBy)
}

func TestBulkCategorize(t *testing.T) {
	engine := NewEngine(logging.NewMockLogger())
	categories := testCategories()

	results := engine.BulkCategorize(context.Background(), []Input{
		{RawText: "latte 4.50", Categories: categories},
		{RawText: "beef 15", Categories: categories},
	})
	require.Len(t, results, 2)
	assert.Equal(t, "Dining", results[0].CategoryName)
	assert.Equal(t, "Grocery", results[1].CategoryName)
}

func TestLearnFromOverride(t *testing.T) {
	existing := []models.VendorRule{{ID: 3, Vendor: "Costco", CategoryID: 1}}

	t.Run("blank vendor learns nothing", func(t *testing.T) {
		assert.Nil(t, LearnFromOverride("", 2, existing))
		assert.Nil(t, LearnFromOverride("   ", 2, existing))
	})

	t.Run("new vendor creates a rule", func(t *testing.T) {
		rule := LearnFromOverride("Starbucks", 2, existing)
		require.NotNil(t, rule)
		assert.Equal(t, int64(0), rule.ID)
		assert.Equal(t, "Starbucks", rule.Vendor)
		assert.Equal(t, int64(2), rule.CategoryID)
	})

	t.Run("existing vendor updates in place", func(t *testing.T) {
		rule := LearnFromOverride("  COSTCO ", 7, existing)
		require.NotNil(t, rule)
		assert.Equal(t, int64(3), rule.ID)
		assert.Equal(t, int64(7), rule.CategoryID)
		// The input slice is untouched.
		assert.Equal(t, int64(1), existing[0].CategoryID)
	})

	t.Run("repeated override is idempotent", func(t *testing.T) {
		first := LearnFromOverride("Costco", 7, existing)
		updated := []models.VendorRule{*first}
		second := LearnFromOverride("Costco", 7, updated)
		require.NotNil(t, second)
		assert.Equal(t, *first, *second)
	})
}

func TestSuggestKeywords(t *testing.T) {
	transactions := []CategorizedText{
		{RawText: "oat latte morning"},
		{RawText: "oat latte afternoon"},
		{RawText: "oat latte again"},
	}

	t.Run("recurring words are suggested by frequency", func(t *testing.T) {
		got := SuggestKeywords(transactions, nil)
		assert.Equal(t, []string{"oat", "latte"}, got)
	})

	t.Run("existing keywords are excluded", func(t *testing.T) {
		got := SuggestKeywords(transactions, []string{"latte"})
		assert.Equal(t, []string{"oat"}, got)
	})

	t.Run("rare words are excluded", func(t *testing.T) {
		got := SuggestKeywords(transactions[:2], nil)
		assert.Empty(t, got)
	})
}
