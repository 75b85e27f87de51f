package categorizer

import (
	"sort"
	"strings"

	"mzhou/pocket-ledger/internal/models"
)

const (
	suggestMinWordLength  = 3
	suggestMinOccurrences = 3
	suggestLimit          = 10
)

// CategorizedText is the text of one transaction already assigned to a
// category, used as keyword-suggestion input.
type CategorizedText struct {
	RawText string
	Items   []models.ParsedItem
}

// SuggestKeywords proposes new keywords for a category from the words that
// recur across its transactions. Words shorter than three characters, words
// already configured and words seen fewer than three times are skipped; at
// most ten suggestions are returned, most frequent first.
func SuggestKeywords(transactions []CategorizedText, existingKeywords []string) []string {
	existing := make(map[string]struct{}, len(existingKeywords))
	for _, keyword := range existingKeywords {
		existing[normalizeForMatching(keyword)] = struct{}{}
	}

	counts := make(map[string]int)
	var order []string
	for _, tx := range transactions {
		words := strings.Fields(strings.ToLower(combinedText(tx.RawText, tx.Items)))
		for _, word := range words {
			if len([]rune(word)) < suggestMinWordLength {
				continue
			}
			if _, ok := existing[word]; ok {
				continue
			}
			if counts[word] == 0 {
				order = append(order, word)
			}
			counts[word]++
		}
	}

	var suggestions []string
	for _, word := range order {
		if counts[word] >= suggestMinOccurrences {
			suggestions = append(suggestions, word)
		}
	}
	sort.SliceStable(suggestions, func(i, j int) bool {
		return counts[suggestions[i]] > counts[suggestions[j]]
	})
	if len(suggestions) > suggestLimit {
		suggestions = suggestions[:suggestLimit]
	}
	return suggestions
}
