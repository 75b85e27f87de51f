package ocr

import (
	"context"

	"mzhou/pocket-ledger/internal/models"
)

// MockRecognizer returns a canned result. Used in tests and when no API key
// is configured for offline runs.
type MockRecognizer struct {
	Result models.OCRResult
	Err    error
	Calls  int
}

// NewMockRecognizer builds a recognizer returning a successful result with
// the given text.
func NewMockRecognizer(text string, confidence float64) *MockRecognizer {
	return &MockRecognizer{
		Result: models.OCRResult{
			Success:    text != "",
			Text:       text,
			Confidence: confidence,
			Language:   detectLanguage(text),
		},
	}
}

func (m *MockRecognizer) RecognizeText(ctx context.Context, image []byte, progress ProgressFunc) (models.OCRResult, error) {
	m.Calls++
	if m.Err != nil {
		report(progress, models.OCRStatusError, 0, m.Err.Error())
		return models.OCRResult{}, m.Err
	}
	report(progress, models.OCRStatusInitializing, 0, "Preparing image")
	report(progress, models.OCRStatusRecognizing, 0.5, "Recognizing text")
	report(progress, models.OCRStatusComplete, 1, "Done")
	return m.Result, nil
}

func (m *MockRecognizer) Close() error { return nil }
