// Package receipt derives structure (vendor, total, date) from noisy OCR
// receipt text. Extraction is keyword- and heuristic-driven; nothing in this
// package ever fails hard on malformed text, it just degrades to low
// confidence.
package receipt

import (
	"strings"

	"mzhou/pocket-ledger/internal/models"
	"mzhou/pocket-ledger/internal/parser"
	"mzhou/pocket-ledger/internal/textutils"

	"github.com/shopspring/decimal"
)

// ErrNoTotal is returned when no amount can be detected anywhere.
const ErrNoTotal = "Could not detect total from receipt. Please enter manually."

// Confidence weights per recovered field. Additive heuristic, not a
// probability.
const (
	confidenceVendor = 0.3
	confidenceAmount = 0.4
	confidenceDate   = 0.2
	confidenceItems  = 0.1
)

// totalKeywords flag the line that carries a receipt total in ParseReceiptText.
var totalKeywords = append(append([]string{}, textutils.TotalKeywordsZH...),
	"total", "subtotal", "amount", "due")

// structuredTotalKeywords are the richer keyword set ParseReceipt scans for.
// Lines containing an exclusion word are skipped so subtotals do not win.
var (
	structuredTotalKeywords = []string{"total", "balance", "amount", "balance to pay", "grand total", "final total"}
	totalExclusionWords     = []string{"sub", "before"}
)

// noiseWords mark lines whose numbers are register metadata, not prices.
var noiseWords = []string{"lane", "trans", "terminal"}

// Plausible single-receipt total range, exclusive on both ends.
var maxPlausibleAmount = decimal.NewFromInt(10000)

// ParseReceiptText scans OCR text for a total and reduces the receipt to one
// synthetic item. The first line carrying a total keyword wins with its
// largest number; without a keyword line the overall maximum is used.
func ParseReceiptText(ocrText string) models.ParseResult {
	lines := strings.Split(ocrText, "\n")

	var allNumbers []decimal.Decimal
	var detectedTotal decimal.Decimal

	for _, line := range lines {
		line = strings.TrimSpace(line)
		numbers := textutils.ExtractAmounts(line)

		if lineHasTotalKeyword(line) && len(numbers) > 0 {
			detectedTotal = textutils.MaxAmount(numbers)
			break
		}

		allNumbers = append(allNumbers, numbers...)
	}

	if detectedTotal.IsZero() && len(allNumbers) > 0 {
		detectedTotal = textutils.MaxAmount(allNumbers)
	}

	if detectedTotal.IsZero() {
		result := models.ParseResult{
			Items:   []models.ParsedItem{},
			RawText: ocrText,
			Error:   ErrNoTotal,
		}
		if len(allNumbers) > 0 {
			result.Candidates = textutils.SortDescending(allNumbers)
		}
		return result
	}

	vendor := parser.DetectVendor(ocrText)
	name := vendor
	if name == "" {
		name = "Receipt"
	}

	return models.ParseResult{
		Success: true,
		Items:   []models.ParsedItem{{Name: name, Amount: detectedTotal}},
		Total:   detectedTotal,
		RawText: ocrText,
		Vendor:  vendor,
	}
}

func lineHasTotalKeyword(line string) bool {
	lower := strings.ToLower(line)
	for _, keyword := range totalKeywords {
		if strings.Contains(lower, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}

// ParseReceipt extracts the full ReceiptData view used for OCR receipt
// images: vendor, total, date, item lines and an additive confidence score.
func ParseReceipt(text string) models.ReceiptData {
	lines := nonBlankLines(text)

	data := models.ReceiptData{
		Currency: "CAD",
		RawText:  text,
	}

	data.Vendor = extractVendor(lines)
	data.Amount = extractTotal(lines)
	data.Date = extractDate(lines)
	data.Items = extractItemLines(lines, data.Amount)

	if data.Vendor != "" {
		data.Confidence += confidenceVendor
	}
	if data.Amount != nil {
		data.Confidence += confidenceAmount
	}
	if data.Date != "" {
		data.Confidence += confidenceDate
	}
	if len(data.Items) > 0 {
		data.Confidence += confidenceItems
	}

	return data
}

func nonBlankLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// extractVendor picks the first known vendor found in the first line, else
// the first 50 characters of that line.
func extractVendor(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	firstLine := lines[0]
	if vendor := parser.DetectVendor(firstLine); vendor != "" {
		return vendor
	}
	runes := []rune(firstLine)
	if len(runes) > 50 {
		runes = runes[:50]
	}
	return string(runes)
}

// extractTotal looks for a keyword-flagged total first, concatenating each
// matching line with the next to handle totals split across OCR lines. When
// no keyword matches it falls back to the last plausible amount on a
// non-noise line, since totals print after line items on most receipts.
func extractTotal(lines []string) *decimal.Decimal {
	for i, line := range lines {
		lower := strings.ToLower(line)

		if !containsAny(lower, structuredTotalKeywords) || containsAny(lower, totalExclusionWords) {
			continue
		}

		combined := line
		if i+1 < len(lines) {
			combined += " " + lines[i+1]
		}
		for _, amount := range textutils.ExtractMonetaryAmounts(combined) {
			if plausibleAmount(amount) {
				return &amount
			}
		}
	}

	var amounts []decimal.Decimal
	for _, line := range lines {
		if isNoiseLine(line) {
			continue
		}
		for _, amount := range textutils.ExtractMonetaryAmounts(line) {
			if plausibleAmount(amount) {
				amounts = append(amounts, amount)
			}
		}
	}
	if len(amounts) == 0 {
		return nil
	}
	last := amounts[len(amounts)-1]
	return &last
}

func containsAny(haystack string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}

func plausibleAmount(amount decimal.Decimal) bool {
	return amount.IsPositive() && amount.LessThan(maxPlausibleAmount)
}

// isNoiseLine filters phone numbers, long digit runs such as transaction IDs
// and register metadata lines.
func isNoiseLine(line string) bool {
	if textutils.PhonePattern.MatchString(line) || textutils.LongDigitPattern.MatchString(line) {
		return true
	}
	return containsAny(strings.ToLower(line), noiseWords)
}

func extractDate(lines []string) string {
	for _, line := range lines {
		if date := textutils.ExtractDate(line); date != "" {
			return date
		}
	}
	return ""
}

// extractItemLines collects lines whose amount is strictly below the
// detected total; those are the probable line items.
func extractItemLines(lines []string, total *decimal.Decimal) []string {
	if total == nil {
		return nil
	}
	var items []string
	for _, line := range lines {
		amounts := textutils.ExtractMonetaryAmounts(line)
		if len(amounts) == 0 {
			continue
		}
		if amounts[0].LessThan(*total) {
			items = append(items, strings.TrimSpace(line))
		}
	}
	return items
}
