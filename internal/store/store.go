// Package store loads and saves the category and vendor-rule data the
// categorization engine consumes. Data lives in YAML files so the matching
// vocabulary can be edited and versioned without touching code.
package store

import (
	"fmt"
	"os"
	"path/filepath"

	"mzhou/pocket-ledger/internal/logging"
	"mzhou/pocket-ledger/internal/models"

	"gopkg.in/yaml.v3"
)

// CategoryStore manages the category and vendor-rule YAML files.
type CategoryStore struct {
	CategoriesFile  string
	VendorRulesFile string
	logger          logging.Logger
}

// categoriesConfig is the on-disk shape of the categories file.
type categoriesConfig struct {
	Categories []models.Category `yaml:"categories"`
}

// vendorRulesConfig is the on-disk shape of the vendor-rules file.
type vendorRulesConfig struct {
	Rules []models.VendorRule `yaml:"rules"`
}

// NewCategoryStore creates a store over the given file paths.
func NewCategoryStore(categoriesFile, vendorRulesFile string, logger logging.Logger) *CategoryStore {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &CategoryStore{
		CategoriesFile:  categoriesFile,
		VendorRulesFile: vendorRulesFile,
		logger:          logger,
	}
}

// findConfigFile looks for a configuration file in standard locations.
func (s *CategoryStore) findConfigFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err == nil {
			return filename, nil
		}
		return "", os.ErrNotExist
	}

	locations := []string{
		filename,
		filepath.Join("config", filename),
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(homeDir, ".pocket-ledger", filename))
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}
	return "", os.ErrNotExist
}

// LoadCategories loads categories from YAML, falling back to the built-in
// default set when no file exists.
func (s *CategoryStore) LoadCategories() ([]models.Category, error) {
	filename := s.CategoriesFile
	if filename == "" {
		filename = "categories.yaml"
	}

	filePath, err := s.findConfigFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.WithField("file", filename).Debug("Categories file not found, using defaults")
			return DefaultCategories(), nil
		}
		return nil, fmt.Errorf("error resolving categories file: %w", err)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading categories file: %w", err)
	}

	var config categoriesConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing categories file: %w", err)
	}
	if len(config.Categories) == 0 {
		s.logger.WithField("file", filePath).Warn("Categories file is empty, using defaults")
		return DefaultCategories(), nil
	}

	s.logger.WithFields(
		logging.Field{Key: "count", Value: len(config.Categories)},
		logging.Field{Key: "file", Value: filePath},
	).Debug("Loaded categories")
	return config.Categories, nil
}

// LoadVendorRules loads vendor rules from YAML. A missing file yields an
// empty rule set, not an error.
func (s *CategoryStore) LoadVendorRules() ([]models.VendorRule, error) {
	filename := s.VendorRulesFile
	if filename == "" {
		filename = "vendor-rules.yaml"
	}

	filePath, err := s.findConfigFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.WithField("file", filename).Debug("Vendor rules file not found")
			return []models.VendorRule{}, nil
		}
		return nil, fmt.Errorf("error resolving vendor rules file: %w", err)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading vendor rules file: %w", err)
	}

	var config vendorRulesConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing vendor rules file: %w", err)
	}

	s.logger.WithFields(
		logging.Field{Key: "count", Value: len(config.Rules)},
		logging.Field{Key: "file", Value: filePath},
	).Debug("Loaded vendor rules")
	return config.Rules, nil
}

// SaveVendorRules writes the rule set back to the vendor-rules file.
func (s *CategoryStore) SaveVendorRules(rules []models.VendorRule) error {
	filename := s.VendorRulesFile
	if filename == "" {
		filename = "vendor-rules.yaml"
	}

	// Prefer overwriting the resolved existing file; otherwise create it
	// at the configured path.
	filePath, err := s.findConfigFile(filename)
	if err != nil {
		filePath = filename
	}

	data, err := yaml.Marshal(vendorRulesConfig{Rules: rules})
	if err != nil {
		return fmt.Errorf("error marshaling vendor rules: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0o600); err != nil {
		return fmt.Errorf("error writing vendor rules file: %w", err)
	}
	return nil
}

// ApplyRule inserts or updates a learned rule in the stored rule set and
// saves the result. New rules receive the next free identifier.
func (s *CategoryStore) ApplyRule(rule models.VendorRule) ([]models.VendorRule, error) {
	rules, err := s.LoadVendorRules()
	if err != nil {
		return nil, err
	}

	if rule.ID != 0 {
		for i := range rules {
			if rules[i].ID == rule.ID {
				rules[i] = rule
				return rules, s.SaveVendorRules(rules)
			}
		}
	}

	var maxID int64
	for _, existing := range rules {
		if existing.ID > maxID {
			maxID = existing.ID
		}
	}
	rule.ID = maxID + 1
	rules = append(rules, rule)
	return rules, s.SaveVendorRules(rules)
}
