package receipt

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func TestParseReceiptText(t *testing.T) {
	t.Run("keyword line wins over larger numbers", func(t *testing.T) {
		text := "Item A 12.99\nItem B 99.99\nTOTAL 45.50\nCard 1234"
		result := ParseReceiptText(text)
		require.True(t, result.Success)
		require.Len(t, result.Items, 1)
		assert.True(t, dec("45.50").Equal(result.Total),
			"expected 45.50, got %s", result.Total)
	})

	t.Run("chinese total keyword", func(t *testing.T) {
		result := ParseReceiptText("牛肉面 18.00\n合计 23.50")
		require.True(t, result.Success)
		assert.True(t, dec("23.50").Equal(result.Total))
	})

	t.Run("no keyword falls back to maximum", func(t *testing.T) {
		result := ParseReceiptText("Milk 3.99\nEggs 5.49\nBread 2.89")
		require.True(t, result.Success)
		assert.True(t, dec("5.49").Equal(result.Total))
	})

	t.Run("known vendor names the item", func(t *testing.T) {
		result := ParseReceiptText("COSTCO WHOLESALE\nTOTAL 88.20")
		require.True(t, result.Success)
		require.Len(t, result.Items, 1)
		assert.Equal(t, "Costco", result.Items[0].Name)
		assert.Equal(t, "Costco", result.Vendor)
	})

	t.Run("no numbers at all fails", func(t *testing.T) {
		result := ParseReceiptText("thank you\ncome again")
		require.False(t, result.Success)
		assert.Equal(t, ErrNoTotal, result.Error)
		assert.Empty(t, result.Candidates)
	})
}

func TestParseReceipt(t *testing.T) {
	t.Run("full receipt", func(t *testing.T) {
		text := strings.Join([]string{
			"COSTCO WHOLESALE",
			"2024-01-15",
			"Milk 3.99",
			"Eggs 5.49",
			"TOTAL $42.50",
		}, "\n")

		data := ParseReceipt(text)
		assert.Equal(t, "Costco", data.Vendor)
		require.NotNil(t, data.Amount)
		assert.True(t, dec("42.50").Equal(*data.Amount),
			"expected 42.50, got %s", data.Amount)
		assert.Equal(t, "2024-01-15", data.Date)
		assert.Equal(t, []string{"Milk 3.99", "Eggs 5.49"}, data.Items)
		assert.Equal(t, "CAD", data.Currency)
		assert.InDelta(t, 1.0, data.Confidence, 1e-9)
	})

	t.Run("subtotal lines are skipped", func(t *testing.T) {
		text := strings.Join([]string{
			"Corner Cafe",
			"Subtotal 40.00",
			"Tax 2.50",
			"TOTAL 42.50",
		}, "\n")

		data := ParseReceipt(text)
		require.NotNil(t, data.Amount)
		assert.True(t, dec("42.50").Equal(*data.Amount))
	})

	t.Run("total split across lines", func(t *testing.T) {
		text := "Shop\nTOTAL\n$19.99"
		data := ParseReceipt(text)
		require.NotNil(t, data.Amount)
		assert.True(t, dec("19.99").Equal(*data.Amount))
	})

	t.Run("fallback uses last plausible amount", func(t *testing.T) {
		text := strings.Join([]string{
			"Corner Store",
			"Milk 3.99",
			"Bread 2.89",
			"9.38",
			"Lane 3 Trans 558821",
		}, "\n")

		data := ParseReceipt(text)
		require.NotNil(t, data.Amount)
		assert.True(t, dec("9.38").Equal(*data.Amount),
			"expected 9.38, got %s", data.Amount)
	})

	t.Run("phone numbers are ignored", func(t *testing.T) {
		text := "Corner Store\n416-555-0199\nCoffee 2.50"
		data := ParseReceipt(text)
		require.NotNil(t, data.Amount)
		assert.True(t, dec("2.50").Equal(*data.Amount))
	})

	t.Run("implausible totals are rejected", func(t *testing.T) {
		text := "Shop\nTOTAL 99999.00"
		data := ParseReceipt(text)
		assert.Nil(t, data.Amount)
	})

	t.Run("unknown vendor truncates first line", func(t *testing.T) {
		longName := strings.Repeat("x", 60)
		data := ParseReceipt(longName + "\nTOTAL 5.00")
		assert.Equal(t, strings.Repeat("x", 50), data.Vendor)
	})

	t.Run("empty text yields empty data", func(t *testing.T) {
		data := ParseReceipt("")
		assert.Equal(t, "", data.Vendor)
		assert.Nil(t, data.Amount)
		assert.Equal(t, "", data.Date)
		assert.Empty(t, data.Items)
		assert.InDelta(t, 0.0, data.Confidence, 1e-9)
	})

	t.Run("confidence is additive", func(t *testing.T) {
		// Vendor and amount only: 0.3 + 0.4.
		data := ParseReceipt("COSTCO\nTOTAL $12.00")
		assert.InDelta(t, 0.7, data.Confidence, 1e-9)
	})
}
