package parser

import (
	"testing"

	"mzhou/pocket-ledger/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func TestDetectVendor(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"english exact", "costco run", "Costco"},
		{"english uppercase", "COSTCO WHOLESALE", "Costco"},
		{"english embedded", "lunch at starbucks downtown", "Starbucks"},
		{"chinese vendor", "星巴克 拿铁 30", "星巴克"},
		{"no vendor", "latte 4.50", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectVendor(tt.input))
		})
	}
}

func TestParseExpenseText_ItemLists(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		expectedItems []models.ParsedItem
		expectedTotal decimal.Decimal
	}{
		{
			name:  "amount first english",
			input: "15 beef, 12.9 carrot",
			expectedItems: []models.ParsedItem{
				{Name: "beef", Amount: dec("15")},
				{Name: "carrot", Amount: dec("12.9")},
			},
			expectedTotal: dec("27.9"),
		},
		{
			name:  "name first chinese",
			input: "牛肉 15, 胡萝卜 12.9",
			expectedItems: []models.ParsedItem{
				{Name: "牛肉", Amount: dec("15")},
				{Name: "胡萝卜", Amount: dec("12.9")},
			},
			expectedTotal: dec("27.9"),
		},
		{
			name:  "fullwidth delimiter",
			input: "拿铁 4.50，松饼 3",
			expectedItems: []models.ParsedItem{
				{Name: "拿铁", Amount: dec("4.50")},
				{Name: "松饼", Amount: dec("3")},
			},
			expectedTotal: dec("7.5"),
		},
		{
			name:  "currency symbols stripped",
			input: "latte $4.50, muffin $3.25",
			expectedItems: []models.ParsedItem{
				{Name: "latte", Amount: dec("4.50")},
				{Name: "muffin", Amount: dec("3.25")},
			},
			expectedTotal: dec("7.75"),
		},
		{
			name:  "mixed languages",
			input: "coffee 4.5, 牛肉 15",
			expectedItems: []models.ParsedItem{
				{Name: "coffee", Amount: dec("4.5")},
				{Name: "牛肉", Amount: dec("15")},
			},
			expectedTotal: dec("19.5"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ParseExpenseText(tt.input)
			require.True(t, result.Success, "expected success, got error %q", result.Error)
			require.Len(t, result.Items, len(tt.expectedItems))
			for i, expected := range tt.expectedItems {
				assert.Equal(t, expected.Name, result.Items[i].Name)
				assert.True(t, expected.Amount.Equal(result.Items[i].Amount),
					"item %d: expected %s, got %s", i, expected.Amount, result.Items[i].Amount)
			}
			assert.True(t, tt.expectedTotal.Equal(result.Total),
				"expected total %s, got %s", tt.expectedTotal, result.Total)
		})
	}
}

func TestParseExpenseText_SingleNumber(t *testing.T) {
	t.Run("vendor with amount", func(t *testing.T) {
		result := ParseExpenseText("uber 18.45")
		require.True(t, result.Success)
		require.Len(t, result.Items, 1)
		assert.Equal(t, "uber", result.Items[0].Name)
		assert.True(t, dec("18.45").Equal(result.Items[0].Amount))
		assert.Equal(t, "Uber", result.Vendor)
	})

	t.Run("bare number", func(t *testing.T) {
		result := ParseExpenseText("18.45")
		require.True(t, result.Success)
		require.Len(t, result.Items, 1)
		assert.Equal(t, "Item", result.Items[0].Name)
		assert.True(t, dec("18.45").Equal(result.Total))
	})
}

func TestParseExpenseText_Failures(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		result := ParseExpenseText("")
		assert.False(t, result.Success)
		assert.Empty(t, result.Items)
		assert.Equal(t, ErrNoAmount, result.Error)
		assert.Empty(t, result.Candidates)
	})

	t.Run("whitespace only", func(t *testing.T) {
		result := ParseExpenseText("   \n  ")
		assert.False(t, result.Success)
		assert.Equal(t, ErrNoAmount, result.Error)
	})

	t.Run("no numbers", func(t *testing.T) {
		result := ParseExpenseText("groceries and stuff")
		assert.False(t, result.Success)
		assert.Equal(t, ErrNoAmount, result.Error)
	})

	t.Run("two bare numbers are ambiguous", func(t *testing.T) {
		result := ParseExpenseText("20 25")
		require.False(t, result.Success)
		assert.Equal(t, ErrAmbiguousAmounts, result.Error)
		require.Len(t, result.Candidates, 2)
		assert.True(t, dec("25").Equal(result.Candidates[0]))
		assert.True(t, dec("20").Equal(result.Candidates[1]))
	})
}

func TestParseExpenseText_ChineseTotalOverride(t *testing.T) {
	t.Run("total keyword with stray numbers", func(t *testing.T) {
		result := ParseExpenseText("牛肉 15\n小计15.00 税2.00 合计17.00")
		require.True(t, result.Success)
		require.Len(t, result.Items, 1)
		assert.Equal(t, "Receipt", result.Items[0].Name)
		assert.True(t, dec("17.00").Equal(result.Total),
			"expected 17.00, got %s", result.Total)
	})

	t.Run("vendor names the collapsed item", func(t *testing.T) {
		result := ParseExpenseText("星巴克 拿铁 30\n小计30.00 税3.90 合计33.90")
		require.True(t, result.Success)
		require.Len(t, result.Items, 1)
		assert.Equal(t, "星巴克", result.Items[0].Name)
		assert.True(t, dec("33.90").Equal(result.Total))
	})

	t.Run("keyword without stray numbers keeps items", func(t *testing.T) {
		result := ParseExpenseText("合计饭 20")
		require.True(t, result.Success)
		require.Len(t, result.Items, 1)
		assert.True(t, dec("20").Equal(result.Total))
	})
}

func TestParseExpenseText_RoundsTotal(t *testing.T) {
	result := ParseExpenseText("a 1.111, b 2.222")
	require.True(t, result.Success)
	assert.True(t, dec("3.33").Equal(result.Total), "expected 3.33, got %s", result.Total)
}
