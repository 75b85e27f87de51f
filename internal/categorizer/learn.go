package categorizer

import (
	"mzhou/pocket-ledger/internal/models"
)

// LearnFromOverride derives a vendor rule from a manual category correction.
//
// Without a vendor there is nothing to learn and nil is returned. When a
// rule for the vendor already exists (case-insensitive, trimmed) an updated
// copy with the new category is returned, preserving the rule ID. Otherwise
// a new rule with a zero ID is returned; the store assigns an identifier
// when the caller persists it. This function has no storage side effect.
func LearnFromOverride(vendor string, newCategoryID int64, existingRules []models.VendorRule) *models.VendorRule {
	if normalizeForMatching(vendor) == "" {
		return nil
	}

	normalizedVendor := normalizeForMatching(vendor)
	for _, rule := range existingRules {
		if normalizeForMatching(rule.Vendor) == normalizedVendor {
			updated := rule
			updated.CategoryID = newCategoryID
			return &updated
		}
	}

	return &models.VendorRule{
		Vendor:     vendor,
		CategoryID: newCategoryID,
	}
}
