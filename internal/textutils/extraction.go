// Package textutils provides the text extraction primitives shared by the
// expense parser and the receipt structurer: amount extraction, currency
// normalization, language detection and the delimiter/keyword constants.
package textutils

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Pattern constants are exported so keyword and vendor lists can be tested
// and extended without touching control flow.
var (
	// AmountPattern matches integer and decimal forms: 12, 12.9, .99.
	AmountPattern = regexp.MustCompile(`\d+\.?\d*|\.\d+`)

	// MonetaryPattern is the stricter receipt-line form: a $-prefixed
	// number or a bare number with exactly two decimals. Keeps dates and
	// quantities out of total detection.
	MonetaryPattern = regexp.MustCompile(`\$\s*\d{1,6}(?:[.,]\d{2})?|\b\d{1,4}\.\d{2}\b`)

	// DelimiterPattern splits shorthand input into item segments. Covers
	// ASCII and fullwidth commas and semicolons plus newlines.
	DelimiterPattern = regexp.MustCompile(`[,，;；\n]`)

	// DatePattern matches YYYY-MM-DD and MM-DD-YYYY style dates with - or /
	// separators.
	DatePattern = regexp.MustCompile(`\d{4}[-/]\d{1,2}[-/]\d{1,2}|\d{1,2}[-/]\d{1,2}[-/]\d{2,4}`)

	// PhonePattern recognizes phone-number shaped digit runs so receipt
	// amount extraction can skip them.
	PhonePattern = regexp.MustCompile(`\d{3}[-\s]?\d{3}[-\s]?\d{4}`)

	// LongDigitPattern recognizes long digit runs such as transaction IDs.
	LongDigitPattern = regexp.MustCompile(`\d{10,}`)

	chinesePattern = regexp.MustCompile(`[\x{4e00}-\x{9fff}]`)
)

// CurrencySymbols are stripped before item parsing so "$4.50" and "CAD 4.50"
// parse the same way as "4.50". Longer variants must precede their prefixes
// ("CAD$" before "CAD") so alternation picks the full symbol.
var CurrencySymbols = []string{"CAD$", "US$", "C$", "CAD", "USD", "CNY", "RMB", "$", "¥"}

var currencyPattern = buildCurrencyPattern(CurrencySymbols)

// buildCurrencyPattern compiles the symbol list into one case-insensitive
// alternation. Alphabetic edges get word boundaries, otherwise "arcade"
// would lose its "cad".
func buildCurrencyPattern(symbols []string) *regexp.Regexp {
	alternatives := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		runes := []rune(symbol)
		alt := regexp.QuoteMeta(symbol)
		if unicode.IsLetter(runes[0]) {
			alt = `\b` + alt
		}
		if unicode.IsLetter(runes[len(runes)-1]) {
			alt += `\b`
		}
		alternatives = append(alternatives, alt)
	}
	return regexp.MustCompile(`(?i)(` + strings.Join(alternatives, "|") + `)\s*`)
}

// TotalKeywordsZH are the Chinese total keywords that indicate receipt-style
// input carrying a grand total.
var TotalKeywordsZH = []string{"合计", "总计", "应付", "金额", "小计", "总额", "实付"}

// ExtractAmounts returns every strictly positive decimal found in text, in
// left-to-right order. It never fails; empty input yields an empty slice.
func ExtractAmounts(text string) []decimal.Decimal {
	matches := AmountPattern.FindAllString(text, -1)
	amounts := make([]decimal.Decimal, 0, len(matches))
	for _, match := range matches {
		amount, err := decimal.NewFromString(match)
		if err != nil {
			continue
		}
		if amount.IsPositive() {
			amounts = append(amounts, amount)
		}
	}
	return amounts
}

// ExtractMonetaryAmounts returns the positive amounts on a receipt line that
// look like prices per MonetaryPattern, left-to-right.
func ExtractMonetaryAmounts(line string) []decimal.Decimal {
	matches := MonetaryPattern.FindAllString(line, -1)
	amounts := make([]decimal.Decimal, 0, len(matches))
	for _, match := range matches {
		cleaned := strings.NewReplacer("$", "", ",", ".", " ", "").Replace(match)
		amount, err := decimal.NewFromString(cleaned)
		if err != nil {
			continue
		}
		if amount.IsPositive() {
			amounts = append(amounts, amount)
		}
	}
	return amounts
}

// NormalizeCurrency strips currency symbols and collapses whitespace so the
// item patterns only ever see bare numbers and names.
func NormalizeCurrency(text string) string {
	normalized := currencyPattern.ReplaceAllString(text, " ")
	return strings.Join(strings.Fields(normalized), " ")
}

// ContainsChinese reports whether text has any CJK unified ideograph.
func ContainsChinese(text string) bool {
	return chinesePattern.MatchString(text)
}

// HasChineseTotalKeyword reports whether text carries one of the Chinese
// total keywords.
func HasChineseTotalKeyword(text string) bool {
	for _, keyword := range TotalKeywordsZH {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

// SplitSegments breaks input on the delimiter set and drops blank segments.
func SplitSegments(text string) []string {
	parts := DelimiterPattern.Split(text, -1)
	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) != "" {
			segments = append(segments, part)
		}
	}
	return segments
}

// SortDescending returns a copy of amounts sorted largest first, the order
// ambiguity candidates are surfaced in.
func SortDescending(amounts []decimal.Decimal) []decimal.Decimal {
	sorted := append([]decimal.Decimal{}, amounts...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].GreaterThan(sorted[j])
	})
	return sorted
}

// MaxAmount returns the largest of amounts, or zero for an empty slice.
func MaxAmount(amounts []decimal.Decimal) decimal.Decimal {
	max := decimal.Zero
	for _, amount := range amounts {
		if amount.GreaterThan(max) {
			max = amount
		}
	}
	return max
}

// StripFirstAmount removes the first numeric token from text and trims the
// residue; used when a lone number leaves the rest of the segment as a name.
func StripFirstAmount(text string) string {
	return strings.TrimSpace(AmountPattern.ReplaceAllStringFunc(text, firstOnly()))
}

func firstOnly() func(string) string {
	replaced := false
	return func(match string) string {
		if replaced {
			return match
		}
		replaced = true
		return ""
	}
}

// ExtractDate returns the first date-shaped token in text, or "".
func ExtractDate(text string) string {
	return DatePattern.FindString(text)
}
