// Package parser turns free-form bilingual (EN/中文) expense shorthand such
// as "15 beef, 12.9 carrot" or "牛肉 15" into structured items with amounts.
package parser

import (
	"regexp"
	"strings"

	"mzhou/pocket-ledger/internal/models"
	"mzhou/pocket-ledger/internal/textutils"

	"github.com/shopspring/decimal"
)

// ErrNoAmount is the bilingual help text returned when no amount is found.
const ErrNoAmount = "I couldn't find an amount. Try 'latte 4.50' 或 '拿铁 4.50'"

// ErrAmbiguousAmounts asks the user to pick a total from the candidates.
const ErrAmbiguousAmounts = "Multiple amounts detected. Which is the total?"

// Default item names when no residual text is available.
const (
	defaultItemName    = "Item"
	defaultExpenseName = "Expense"
	defaultReceiptName = "Receipt"
)

// Known vendor names used for vendor detection. English names match
// case-insensitively; Chinese names match literally.
var (
	KnownVendorsEN = []string{
		"costco",
		"walmart",
		"no frills",
		"loblaws",
		"metro",
		"uber",
		"lyft",
		"starbucks",
		"tim hortons",
		"mcdonald",
		"amazon",
	}

	KnownVendorsZH = []string{"星巴克", "麦当劳", "肯德基", "淘宝", "京东", "美团", "滴滴"}
)

// Item segment patterns. Amount-first is tried before name-first; this is a
// deliberate precedence, not a fallback order.
var (
	amountFirstPattern = regexp.MustCompile(`^([\d.]+)\s+(.+)$`)
	nameFirstPattern   = regexp.MustCompile(`^(.+?)\s+([\d.]+)$`)
	numericOnlyPattern = regexp.MustCompile(`^[\d.\s]+$`)
)

// validName rejects empty and purely numeric residues; "20 25" is two
// candidate amounts, not an item named "25".
func validName(name string) bool {
	return name != "" && !numericOnlyPattern.MatchString(name)
}

// DetectVendor returns the first known vendor whose name occurs in text, or
// "". English matches are reported with the first letter upper-cased.
func DetectVendor(text string) string {
	lower := strings.ToLower(text)
	for _, vendor := range KnownVendorsEN {
		if strings.Contains(lower, vendor) {
			return strings.ToUpper(vendor[:1]) + vendor[1:]
		}
	}
	for _, vendor := range KnownVendorsZH {
		if strings.Contains(text, vendor) {
			return vendor
		}
	}
	return ""
}

// parseItem resolves a single segment into a name/amount pair, or nil when
// the segment carries no usable item.
func parseItem(segment string) *models.ParsedItem {
	trimmed := textutils.NormalizeCurrency(strings.TrimSpace(segment))
	if trimmed == "" {
		return nil
	}

	amounts := textutils.ExtractAmounts(trimmed)
	if len(amounts) == 0 {
		return nil
	}

	// Pattern 1: "12.9 carrot" or "12.9 胡萝卜" (amount first).
	if match := amountFirstPattern.FindStringSubmatch(trimmed); match != nil {
		if amount, err := decimal.NewFromString(match[1]); err == nil && amount.IsPositive() {
			if name := strings.TrimSpace(match[2]); validName(name) {
				return &models.ParsedItem{Name: name, Amount: amount}
			}
		}
	}

	// Pattern 2: "carrot 12.9" or "牛肉 15" (amount last).
	if match := nameFirstPattern.FindStringSubmatch(trimmed); match != nil {
		if amount, err := decimal.NewFromString(match[2]); err == nil && amount.IsPositive() {
			if name := strings.TrimSpace(match[1]); validName(name) {
				return &models.ParsedItem{Name: name, Amount: amount}
			}
		}
	}

	// Fallback: exactly one number, the de-numbered text becomes the name.
	if len(amounts) == 1 {
		name := textutils.StripFirstAmount(trimmed)
		if name == "" {
			name = defaultItemName
		}
		return &models.ParsedItem{Name: name, Amount: amounts[0]}
	}

	return nil
}

// ParseExpenseText parses shorthand expense text into a ParseResult.
//
// Segments are split on the delimiter set and parsed independently; segments
// that yield no item still contribute their numbers to the unassigned pool
// so ambiguity can be reported. A Chinese total keyword combined with more
// raw numbers than parsed items indicates pasted receipt text and collapses
// the result to one item valued at the largest number found.
func ParseExpenseText(rawText string) models.ParseResult {
	if strings.TrimSpace(rawText) == "" {
		return models.ParseResult{
			Items: []models.ParsedItem{},
			Error: ErrNoAmount,
		}
	}

	trimmed := strings.TrimSpace(rawText)
	vendor := DetectVendor(trimmed)

	segments := textutils.SplitSegments(trimmed)

	items := make([]models.ParsedItem, 0, len(segments))
	allNumbers := make([]decimal.Decimal, 0, len(segments))

	for _, segment := range segments {
		if item := parseItem(segment); item != nil {
			items = append(items, *item)
			allNumbers = append(allNumbers, item.Amount)
		} else {
			allNumbers = append(allNumbers, textutils.ExtractAmounts(segment)...)
		}
	}

	if len(items) == 0 && len(allNumbers) > 0 {
		if len(allNumbers) == 1 {
			// Single number case: "uber 18.45" or "18.45".
			name := textutils.StripFirstAmount(textutils.NormalizeCurrency(trimmed))
			if name == "" {
				name = vendor
			}
			if name == "" {
				name = defaultExpenseName
			}
			items = append(items, models.ParsedItem{Name: name, Amount: allNumbers[0]})
		} else {
			return models.ParseResult{
				Items:      []models.ParsedItem{},
				RawText:    trimmed,
				Vendor:     vendor,
				Error:      ErrAmbiguousAmounts,
				Candidates: textutils.SortDescending(allNumbers),
			}
		}
	}

	if len(items) == 0 && len(allNumbers) == 0 {
		return models.ParseResult{
			Items:   []models.ParsedItem{},
			RawText: trimmed,
			Vendor:  vendor,
			Error:   ErrNoAmount,
		}
	}

	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Amount)
	}

	// Receipt-style override: a Chinese total keyword with stray numbers
	// beyond the parsed items means the itemized reading likely picked up
	// subtotals; trust the largest number instead.
	if textutils.HasChineseTotalKeyword(trimmed) && len(allNumbers) > len(items) {
		maxNumber := textutils.MaxAmount(allNumbers)
		name := vendor
		if name == "" {
			name = defaultReceiptName
		}
		return models.ParseResult{
			Success: true,
			Items:   []models.ParsedItem{{Name: name, Amount: maxNumber}},
			Total:   maxNumber,
			RawText: trimmed,
			Vendor:  vendor,
		}
	}

	return models.ParseResult{
		Success: true,
		Items:   items,
		Total:   total.Round(2),
		RawText: trimmed,
		Vendor:  vendor,
	}
}
