package categorizer

import (
	"context"

	"mzhou/pocket-ledger/internal/models"
)

// Input carries everything a categorization pass may consult: the parsed
// transaction plus the caller's stored categories and vendor rules. The
// engine only reads it.
type Input struct {
	RawText     string
	Items       []models.ParsedItem
	Vendor      string
	Categories  []models.Category
	VendorRules []models.VendorRule
}

// Strategy is one tier of the categorization engine. Tiers are tried in
// order and the first one to report found wins; there is no blending across
// tiers. Strategies are pure and must not retain the input.
type Strategy interface {
	// Categorize attempts this tier. The result is only valid when found
	// is true.
	Categorize(ctx context.Context, in Input) (models.CategorizationResult, bool)

	// Name identifies the tier for logging.
	Name() string
}
