// Package service implements the ingest pipeline: validate input, parse it,
// categorize the result, and persist a transaction. It also serves reads
// (recent transactions, rollups) and the category-override learning flow.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mzhou/pocket-ledger/internal/categorizer"
	"mzhou/pocket-ledger/internal/config"
	"mzhou/pocket-ledger/internal/database"
	"mzhou/pocket-ledger/internal/logging"
	"mzhou/pocket-ledger/internal/models"
	"mzhou/pocket-ledger/internal/ocr"
	"mzhou/pocket-ledger/internal/parser"
	"mzhou/pocket-ledger/internal/receipt"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
)

const (
	cacheKeyCategories  = "categories"
	cacheKeyVendorRules = "vendor_rules"
)

// Rollup range names accepted by Rollup.
const (
	RangeToday = "today"
	RangeWeek  = "week"
	RangeMonth = "month"
)

// ValidationError reports rejected input. Handlers map it to a 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ParseError reports text the parser could not resolve into a transaction.
// Candidates carries the amounts found, largest first, for disambiguation.
type ParseError struct {
	Message    string
	Candidates []decimal.Decimal
}

func (e *ParseError) Error() string { return e.Message }

// IngestRequest is one piece of expense input. Items is an optional
// client-side itemization; when present it must be well formed or the
// request is rejected before parsing.
type IngestRequest struct {
	Source   string              `json:"source"`
	RawText  string              `json:"raw_text"`
	Items    []models.ParsedItem `json:"items,omitempty"`
	Note     string              `json:"note"`
	ImageURL string              `json:"image_url"`
}

// IngestResult is the outcome of a successful ingest.
type IngestResult struct {
	Transaction    models.Transaction          `json:"transaction"`
	Categorization models.CategorizationResult `json:"categorization"`
	TodayTotal     decimal.Decimal             `json:"today_total"`
}

// RecategorizeResult reports a category override and whether a vendor rule
// was learned from it.
type RecategorizeResult struct {
	Transaction models.Transaction `json:"transaction"`
	RuleLearned bool               `json:"rule_learned"`
	Vendor      string             `json:"vendor,omitempty"`
}

// Service runs the expense pipeline over a database.
type Service struct {
	db         *database.DB
	engine     *categorizer.Engine
	recognizer ocr.Recognizer
	cache      *gocache.Cache
	logger     logging.Logger

	maxTextBytes int
	maxNoteChars int
	ocrThreshold float64
	now          func() time.Time
}

// NewService wires the pipeline. The recognizer may be nil when OCR is not
// configured; ScanReceipt then returns an error.
func NewService(db *database.DB, recognizer ocr.Recognizer, cfg *config.Config, logger logging.Logger) *Service {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Service{
		db:           db,
		engine:       categorizer.NewEngine(logger),
		recognizer:   recognizer,
		cache:        gocache.New(5*time.Minute, 10*time.Minute),
		logger:       logger,
		maxTextBytes: cfg.Ingest.MaxTextBytes,
		maxNoteChars: cfg.Ingest.MaxNoteChars,
		ocrThreshold: cfg.OCR.ConfidenceThreshold,
		now:          time.Now,
	}
}

// Ingest validates, parses, categorizes, and persists one expense input.
func (s *Service) Ingest(ctx context.Context, req IngestRequest) (IngestResult, error) {
	if err := s.validate(req); err != nil {
		return IngestResult{}, err
	}

	var parsed models.ParseResult
	switch req.Source {
	case models.SourceText:
		parsed = parser.ParseExpenseText(req.RawText)
	case models.SourceReceipt:
		parsed = receipt.ParseReceiptText(req.RawText)
	default:
		return IngestResult{}, &ValidationError{Message: fmt.Sprintf("unknown source %q", req.Source)}
	}

	if !parsed.Success {
		return IngestResult{}, &ParseError{Message: parsed.Error, Candidates: parsed.Candidates}
	}

	categories, rules, err := s.matchingData(ctx)
	if err != nil {
		return IngestResult{}, err
	}

	categorization := s.engine.Categorize(ctx, categorizer.Input{
		RawText:     req.RawText,
		Items:       parsed.Items,
		Vendor:      parsed.Vendor,
		Categories:  categories,
		VendorRules: rules,
	})

	tx := models.Transaction{
		ID:         uuid.New().String(),
		Timestamp:  s.now(),
		Source:     req.Source,
		RawText:    req.RawText,
		Amount:     parsed.Total,
		Items:      parsed.Items,
		CategoryID: categorization.CategoryID,
		Vendor:     parsed.Vendor,
		Note:       req.Note,
		ImageURL:   req.ImageURL,
	}
	if err := s.db.InsertTransaction(ctx, tx); err != nil {
		return IngestResult{}, err
	}

	todayTotal, err := s.db.SumSince(ctx, startOfDay(s.now()))
	if err != nil {
		return IngestResult{}, err
	}

	s.logger.WithFields(
		logging.Field{Key: "id", Value: tx.ID},
		logging.Field{Key: "source", Value: tx.Source},
		logging.Field{Key: "amount", Value: tx.Amount.String()},
		logging.Field{Key: "category", Value: categorization.CategoryName},
		logging.Field{Key: "confidence", Value: categorization.Confidence},
	).Info("Transaction ingested")

	return IngestResult{
		Transaction:    tx,
		Categorization: categorization,
		TodayTotal:     todayTotal,
	}, nil
}

// ScanResult pairs an OCR transcript with its structured receipt.
// LowConfidence signals the caller should offer a retake.
type ScanResult struct {
	OCR           models.OCRResult    `json:"ocr"`
	Receipt       *models.ReceiptData `json:"receipt,omitempty"`
	LowConfidence bool                `json:"low_confidence"`
}

// ScanReceipt runs OCR on an image and structures whatever text came back.
// A transcript below the confidence threshold is still structured, only
// flagged, so the caller can decide between using it and retaking the photo.
func (s *Service) ScanReceipt(ctx context.Context, image []byte, progress ocr.ProgressFunc) (ScanResult, error) {
	if s.recognizer == nil {
		return ScanResult{}, fmt.Errorf("ocr is not configured, set GEMINI_API_KEY")
	}

	result, err := s.recognizer.RecognizeText(ctx, image, progress)
	if err != nil {
		return ScanResult{}, err
	}
	if !result.Success {
		return ScanResult{OCR: result}, nil
	}

	scan := ScanResult{OCR: result}
	if result.Confidence < s.ocrThreshold {
		s.logger.WithFields(
			logging.Field{Key: "confidence", Value: result.Confidence},
			logging.Field{Key: "threshold", Value: s.ocrThreshold},
		).Warn("OCR confidence below threshold")
		scan.LowConfidence = true
	}

	structured := receipt.ParseReceipt(result.Text)
	scan.Receipt = &structured
	return scan, nil
}

// RecentTransactions returns the newest transactions.
func (s *Service) RecentTransactions(ctx context.Context, limit int) ([]models.Transaction, error) {
	return s.db.ListRecent(ctx, limit)
}

// AllTransactions returns every transaction, newest first.
func (s *Service) AllTransactions(ctx context.Context) ([]models.Transaction, error) {
	return s.db.ListAll(ctx)
}

// Categories returns the category set.
func (s *Service) Categories(ctx context.Context) ([]models.Category, error) {
	categories, _, err := s.matchingData(ctx)
	return categories, err
}

// Recategorize repoints a transaction at a new category and learns a vendor
// rule from the override when the transaction carries a vendor.
func (s *Service) Recategorize(ctx context.Context, transactionID string, categoryID int64) (RecategorizeResult, error) {
	tx, err := s.db.GetTransaction(ctx, transactionID)
	if err != nil {
		return RecategorizeResult{}, err
	}

	categories, rules, err := s.matchingData(ctx)
	if err != nil {
		return RecategorizeResult{}, err
	}
	if !categoryExists(categories, categoryID) {
		return RecategorizeResult{}, &ValidationError{Message: fmt.Sprintf("unknown category %d", categoryID)}
	}

	if err := s.db.UpdateTransactionCategory(ctx, transactionID, categoryID); err != nil {
		return RecategorizeResult{}, err
	}
	tx.CategoryID = &categoryID

	result := RecategorizeResult{Transaction: tx, Vendor: tx.Vendor}
	if rule := categorizer.LearnFromOverride(tx.Vendor, categoryID, rules); rule != nil {
		if err := s.db.UpsertVendorRule(ctx, *rule); err != nil {
			return RecategorizeResult{}, err
		}
		s.cache.Delete(cacheKeyVendorRules)
		result.RuleLearned = true
		s.logger.WithFields(
			logging.Field{Key: "vendor", Value: rule.Vendor},
			logging.Field{Key: "category_id", Value: rule.CategoryID},
		).Info("Vendor rule learned from override")
	}
	return result, nil
}

// TodayTotal returns the sum of today's transactions.
func (s *Service) TodayTotal(ctx context.Context) (decimal.Decimal, error) {
	return s.db.SumSince(ctx, startOfDay(s.now()))
}

// Rollup aggregates totals per category for a named range: today, week
// (starting Monday), or month.
func (s *Service) Rollup(ctx context.Context, rangeName string) ([]models.CategoryRollup, error) {
	since, err := rangeStart(s.now(), rangeName)
	if err != nil {
		return nil, err
	}
	return s.db.RollupSince(ctx, since)
}

func (s *Service) validate(req IngestRequest) error {
	text := strings.TrimSpace(req.RawText)
	if text == "" {
		return &ValidationError{Message: "raw_text is required"}
	}
	if len(req.RawText) > s.maxTextBytes {
		return &ValidationError{Message: fmt.Sprintf("raw_text exceeds %d bytes", s.maxTextBytes)}
	}
	if len([]rune(req.Note)) > s.maxNoteChars {
		return &ValidationError{Message: fmt.Sprintf("note exceeds %d characters", s.maxNoteChars)}
	}
	for i, item := range req.Items {
		if strings.TrimSpace(item.Name) == "" {
			return &ValidationError{Message: fmt.Sprintf("items[%d] is missing a name", i)}
		}
		if !item.Amount.IsPositive() {
			return &ValidationError{Message: fmt.Sprintf("items[%d] amount must be positive", i)}
		}
	}
	return nil
}

// matchingData returns the category set and vendor rules, cached briefly so
// repeated ingests skip the database.
func (s *Service) matchingData(ctx context.Context) ([]models.Category, []models.VendorRule, error) {
	var categories []models.Category
	if cached, ok := s.cache.Get(cacheKeyCategories); ok {
		categories = cached.([]models.Category)
	} else {
		loaded, err := s.db.ListCategories(ctx)
		if err != nil {
			return nil, nil, err
		}
		categories = loaded
		s.cache.Set(cacheKeyCategories, categories, gocache.DefaultExpiration)
	}

	var rules []models.VendorRule
	if cached, ok := s.cache.Get(cacheKeyVendorRules); ok {
		rules = cached.([]models.VendorRule)
	} else {
		loaded, err := s.db.ListVendorRules(ctx)
		if err != nil {
			return nil, nil, err
		}
		rules = loaded
		s.cache.Set(cacheKeyVendorRules, rules, gocache.DefaultExpiration)
	}
	return categories, rules, nil
}

func categoryExists(categories []models.Category, id int64) bool {
	for _, c := range categories {
		if c.ID == id {
			return true
		}
	}
	return false
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// rangeStart maps a range name to its start time. Weeks start on Monday.
func rangeStart(now time.Time, rangeName string) (time.Time, error) {
	switch rangeName {
	case RangeToday, "":
		return startOfDay(now), nil
	case RangeWeek:
		day := startOfDay(now)
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset), nil
	case RangeMonth:
		year, month, _ := now.Date()
		return time.Date(year, month, 1, 0, 0, 0, 0, now.Location()), nil
	default:
		return time.Time{}, &ValidationError{Message: fmt.Sprintf("unknown range %q", rangeName)}
	}
}
