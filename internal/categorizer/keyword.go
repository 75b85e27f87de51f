package categorizer

import (
	"context"
	"sort"
	"strings"

	"mzhou/pocket-ledger/internal/models"
	"mzhou/pocket-ledger/internal/textutils"
)

// KeywordStrategy scores every category by how many of its bilingual
// keywords occur in the combined transaction text. English keywords match
// case-insensitively; Chinese keywords match as literal substrings. The
// category with the highest total count wins.
type KeywordStrategy struct{}

func (s *KeywordStrategy) Name() string {
	return "Keyword"
}

type keywordMatch struct {
	category   models.Category
	matchedEN  []string
	matchedZH  []string
	matchCount int
}

func (s *KeywordStrategy) Categorize(ctx context.Context, in Input) (models.CategorizationResult, bool) {
	allText := combinedText(in.RawText, in.Items)
	allTextNormalized := normalizeForMatching(allText)
	isChinese := textutils.ContainsChinese(allText)

	var matches []keywordMatch
	for _, category := range in.Categories {
		match := keywordMatch{category: category}

		for _, keyword := range category.KeywordsEN {
			if keyword == "" {
				continue
			}
			if strings.Contains(allTextNormalized, normalizeForMatching(keyword)) {
				match.matchedEN = append(match.matchedEN, keyword)
			}
		}
		for _, keyword := range category.KeywordsZH {
			if keyword == "" {
				continue
			}
			if strings.Contains(allText, keyword) {
				match.matchedZH = append(match.matchedZH, keyword)
			}
		}

		match.matchCount = len(match.matchedEN) + len(match.matchedZH)
		if match.matchCount > 0 {
			matches = append(matches, match)
		}
	}

	if len(matches) == 0 {
		return models.CategorizationResult{}, false
	}

	// Stable sort: ties keep the caller's category order.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].matchCount > matches[j].matchCount
	})
	best := matches[0]

	confidence := models.ConfidenceMedium
	if best.matchCount > 2 {
		confidence = models.ConfidenceHigh
	}

	matchedBy := models.MatchedByKeywordEN
	matchedKeywords := append(append([]string{}, best.matchedEN...), best.matchedZH...)
	if isChinese && len(best.matchedZH) > 0 {
		matchedBy = models.MatchedByKeywordZH
		matchedKeywords = append([]string{}, best.matchedZH...)
	}

	id := best.category.ID
	return models.CategorizationResult{
		CategoryID:      &id,
		CategoryName:    best.category.Name,
		Confidence:      confidence,
		MatchedBy:       matchedBy,
		MatchedKeywords: matchedKeywords,
	}, true
}
