package models

// Confidence is the coarse strength of a categorization decision. It is a
// heuristic tier, not a calibrated probability.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// MatchedBy records which tier of the categorization engine produced a match.
type MatchedBy string

const (
	MatchedByVendor    MatchedBy = "vendor"
	MatchedByKeywordEN MatchedBy = "keyword-en"
	MatchedByKeywordZH MatchedBy = "keyword-zh"
	MatchedByFallback  MatchedBy = "fallback"
)

// CategoryNameOther is the user category name the fallback tier looks for.
const CategoryNameOther = "Other"

// CategoryNameUncategorized is reported when nothing at all matches.
const CategoryNameUncategorized = "Uncategorized"

// Category is a user-owned spending category with bilingual matching
// vocabulary. Keyword order is irrelevant.
type Category struct {
	ID         int64    `json:"id" yaml:"id"`
	Name       string   `json:"name" yaml:"name"`
	KeywordsEN []string `json:"keywords_en" yaml:"keywords_en"`
	KeywordsZH []string `json:"keywords_zh" yaml:"keywords_zh"`
	Icon       string   `json:"icon" yaml:"icon"`
	Color      string   `json:"color" yaml:"color"`
	IsSystem   bool     `json:"is_system" yaml:"is_system"`
}

// VendorRule maps a merchant-name substring to a category. Rules are learned
// from manual corrections or entered directly, and matched case-insensitively
// after trimming.
type VendorRule struct {
	ID         int64  `json:"id" yaml:"id"`
	Vendor     string `json:"vendor" yaml:"vendor"`
	CategoryID int64  `json:"category_id" yaml:"category_id"`
}

// CategorizationResult is produced fresh per transaction and never stored
// standalone; only CategoryID and Confidence end up on the transaction row.
type CategorizationResult struct {
	CategoryID      *int64     `json:"categoryId"`
	CategoryName    string     `json:"categoryName"`
	Confidence      Confidence `json:"confidence"`
	MatchedBy       MatchedBy  `json:"matchedBy"`
	MatchedKeywords []string   `json:"matchedKeywords,omitempty"`
}
