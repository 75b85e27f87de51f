package models

// OCRResult is what the external text-recognition engine reports. Confidence
// and Language are display surfaces only; categorization never consumes them.
type OCRResult struct {
	Success        bool    `json:"success"`
	Text           string  `json:"text"`
	Confidence     float64 `json:"confidence"`
	Language       string  `json:"language"`
	ProcessingTime int64   `json:"processing_time_ms"`
	Error          string  `json:"error,omitempty"`
}

// OCR progress stages reported while recognition runs on a background worker.
const (
	OCRStatusInitializing = "initializing"
	OCRStatusLoading      = "loading"
	OCRStatusRecognizing  = "recognizing"
	OCRStatusComplete     = "complete"
	OCRStatusError        = "error"
)

// OCRProgress is an incremental progress report from the recognition worker.
// Progress is a 0-1 fraction.
type OCRProgress struct {
	Status   string  `json:"status"`
	Progress float64 `json:"progress"`
	Message  string  `json:"message"`
}
