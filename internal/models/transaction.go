package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction source values.
const (
	SourceText    = "text"
	SourceReceipt = "receipt"
)

// Transaction is a persisted expense record. Items are stored as JSON on the
// row; the CSV tags drive the export command.
type Transaction struct {
	ID         string          `json:"id" csv:"id"`
	Timestamp  time.Time       `json:"ts" csv:"ts"`
	Source     string          `json:"source" csv:"source"`
	RawText    string          `json:"raw_text" csv:"raw_text"`
	Amount     decimal.Decimal `json:"amount" csv:"amount"`
	Items      []ParsedItem    `json:"items" csv:"-"`
	CategoryID *int64          `json:"category_id" csv:"category_id"`
	Vendor     string          `json:"vendor,omitempty" csv:"vendor"`
	Note       string          `json:"note,omitempty" csv:"note"`
	ImageURL   string          `json:"image_url,omitempty" csv:"-"`
}

// CategoryRollup is one slice of a spending breakdown for a time range.
type CategoryRollup struct {
	CategoryID   *int64          `json:"category_id"`
	CategoryName string          `json:"category_name"`
	Total        decimal.Decimal `json:"total"`
	Count        int             `json:"count"`
}
