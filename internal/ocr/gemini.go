package ocr

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"mzhou/pocket-ledger/internal/logging"
	"mzhou/pocket-ledger/internal/models"
	"mzhou/pocket-ledger/internal/textutils"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const geminiPrompt = `Transcribe all text visible in this receipt image.
Return a JSON object with exactly these fields:
{"text": "<full text, one receipt line per line>", "confidence": <0-1 estimate of transcription accuracy>}
Keep the original line order and wording, including Chinese text. Return only the JSON.`

// GeminiRecognizer runs receipt OCR through the Gemini API.
type GeminiRecognizer struct {
	client *genai.Client
	model  *genai.GenerativeModel
	logger logging.Logger
}

// NewGeminiRecognizer creates a recognizer using the given API key and model
// name.
func NewGeminiRecognizer(ctx context.Context, apiKey, modelName string, logger logging.Logger) (*GeminiRecognizer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = "gemini-2.0-flash"
	}
	if logger == nil {
		logger = logging.GetLogger()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("error creating gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0)

	return &GeminiRecognizer{client: client, model: model, logger: logger}, nil
}

// geminiTranscript is the JSON shape the prompt asks the model for.
type geminiTranscript struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// RecognizeText sends the image to Gemini and returns the transcript.
func (g *GeminiRecognizer) RecognizeText(ctx context.Context, image []byte, progress ProgressFunc) (models.OCRResult, error) {
	start := time.Now()
	report(progress, models.OCRStatusInitializing, 0, "Preparing image")

	format, err := imageFormat(image)
	if err != nil {
		report(progress, models.OCRStatusError, 0, err.Error())
		return models.OCRResult{Success: false, Error: err.Error()}, nil
	}

	report(progress, models.OCRStatusRecognizing, 0.3, "Recognizing text")

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	resp, err := g.model.GenerateContent(ctx,
		genai.ImageData(format, image),
		genai.Text(geminiPrompt),
	)
	if err != nil {
		report(progress, models.OCRStatusError, 0.3, "Recognition failed")
		return models.OCRResult{}, fmt.Errorf("error generating content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		report(progress, models.OCRStatusError, 0.3, "Empty response")
		return models.OCRResult{}, fmt.Errorf("no response from gemini")
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			responseText.WriteString(string(text))
		}
	}

	transcript, err := parseTranscript(responseText.String())
	if err != nil {
		report(progress, models.OCRStatusError, 0.7, "Unreadable response")
		return models.OCRResult{}, err
	}

	result := models.OCRResult{
		Success:        transcript.Text != "",
		Text:           transcript.Text,
		Confidence:     transcript.Confidence,
		Language:       detectLanguage(transcript.Text),
		ProcessingTime: time.Since(start).Milliseconds(),
	}
	if !result.Success {
		result.Error = "no text detected in image"
		report(progress, models.OCRStatusError, 1, result.Error)
		return result, nil
	}

	g.logger.WithFields(
		logging.Field{Key: "confidence", Value: result.Confidence},
		logging.Field{Key: "language", Value: result.Language},
		logging.Field{Key: "duration_ms", Value: result.ProcessingTime},
	).Debug("OCR complete")
	report(progress, models.OCRStatusComplete, 1, "Done")
	return result, nil
}

// Close releases the underlying client.
func (g *GeminiRecognizer) Close() error {
	return g.client.Close()
}

// parseTranscript decodes the model's JSON reply, tolerating markdown code
// fences and a bare-text reply.
func parseTranscript(raw string) (geminiTranscript, error) {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var transcript geminiTranscript
	if err := json.Unmarshal([]byte(text), &transcript); err != nil {
		// Some replies skip the JSON wrapper entirely. Treat the body
		// as the transcript with unknown confidence.
		if text == "" {
			return transcript, fmt.Errorf("error parsing transcript: %w", err)
		}
		return geminiTranscript{Text: text, Confidence: 0.5}, nil
	}
	if transcript.Confidence < 0 {
		transcript.Confidence = 0
	}
	if transcript.Confidence > 1 {
		transcript.Confidence = 1
	}
	return transcript, nil
}

// imageFormat sniffs the image type and returns the format suffix Gemini
// expects ("png", "jpeg", "webp").
func imageFormat(image []byte) (string, error) {
	if len(image) == 0 {
		return "", fmt.Errorf("empty image")
	}
	switch http.DetectContentType(image) {
	case "image/png":
		return "png", nil
	case "image/jpeg":
		return "jpeg", nil
	case "image/webp":
		return "webp", nil
	default:
		return "", fmt.Errorf("unsupported image type, use PNG, JPEG, or WebP")
	}
}

func detectLanguage(text string) string {
	if textutils.ContainsChinese(text) {
		return "chi_sim+eng"
	}
	return "eng"
}
