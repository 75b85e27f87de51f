// Package ocr extracts text from receipt images. The Recognizer interface
// keeps the engine swappable; the shipped implementation talks to Gemini.
package ocr

import (
	"context"

	"mzhou/pocket-ledger/internal/models"
)

// ProgressFunc receives recognition progress updates. Implementations must
// tolerate a nil callback.
type ProgressFunc func(models.OCRProgress)

// Recognizer turns a receipt image into text.
type Recognizer interface {
	// RecognizeText runs OCR on the image bytes. The returned result
	// carries a failure inline (Success false, Error set) for conditions
	// the caller should surface to the user; the error return is for
	// transport and engine failures.
	RecognizeText(ctx context.Context, image []byte, progress ProgressFunc) (models.OCRResult, error)

	// Close releases engine resources.
	Close() error
}

func report(progress ProgressFunc, status string, fraction float64, message string) {
	if progress == nil {
		return
	}
	progress(models.OCRProgress{Status: status, Progress: fraction, Message: message})
}
