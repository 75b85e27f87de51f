// Package models provides the data structures used throughout the application.
package models

import (
	"github.com/shopspring/decimal"
)

// ParsedItem is a single purchased item recovered from shorthand text.
type ParsedItem struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// ParseResult is the outcome of parsing shorthand expense text or receipt
// OCR text. Success acts as the discriminant: on success Items is non-empty
// and Total is populated; on failure either Error carries a human-readable
// message or Candidates lists the ambiguous amounts in descending order.
type ParseResult struct {
	Success    bool              `json:"success"`
	Items      []ParsedItem      `json:"items"`
	Total      decimal.Decimal   `json:"total"`
	RawText    string            `json:"raw_text"`
	Vendor     string            `json:"vendor,omitempty"`
	Error      string            `json:"error,omitempty"`
	Candidates []decimal.Decimal `json:"candidates,omitempty"`
}

// ReceiptData is the structured view of a noisy OCR receipt. All fields are
// best-effort; Confidence is an additive heuristic score, not a probability:
// vendor +0.3, amount +0.4, date +0.2, items +0.1.
type ReceiptData struct {
	Vendor     string           `json:"vendor,omitempty"`
	Amount     *decimal.Decimal `json:"amount,omitempty"`
	Currency   string           `json:"currency"`
	Date       string           `json:"date,omitempty"`
	Items      []string         `json:"items,omitempty"`
	RawText    string           `json:"raw_text"`
	Confidence float64          `json:"confidence"`
}
