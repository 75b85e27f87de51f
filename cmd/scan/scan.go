// Package scan handles the receipt image OCR command.
package scan

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"mzhou/pocket-ledger/cmd/root"
	"mzhou/pocket-ledger/internal/models"
	"mzhou/pocket-ledger/internal/ocr"
	"mzhou/pocket-ledger/internal/receipt"

	"github.com/spf13/cobra"
)

// Cmd represents the scan command.
var Cmd = &cobra.Command{
	Use:   "scan",
	Short: "OCR a receipt image and structure the result",
	Long: `Run text recognition on a receipt image through the Gemini API,
then extract the vendor, total, date, and item lines. Requires
GEMINI_API_KEY.`,
	Run: scanFunc,
}

func init() {
	Cmd.Flags().StringVarP(&root.InputFile, "input", "i", "", "Receipt image file (required)")
	Cmd.MarkFlagRequired("input")
}

func scanFunc(cmd *cobra.Command, args []string) {
	image, err := os.ReadFile(root.InputFile)
	if err != nil {
		root.Log.WithError(err).Fatal("Failed to read image")
	}

	ctx := context.Background()
	recognizer, err := ocr.NewGeminiRecognizer(ctx, root.Cfg.OCR.APIKey, root.Cfg.OCR.Model, root.Log)
	if err != nil {
		root.Log.WithError(err).Fatal("Failed to create recognizer")
	}
	defer recognizer.Close()

	progress := func(p models.OCRProgress) {
		fmt.Fprintf(os.Stderr, "%s %.0f%% %s\n", p.Status, p.Progress*100, p.Message)
	}

	result, err := recognizer.RecognizeText(ctx, image, progress)
	if err != nil {
		root.Log.WithError(err).Fatal("Recognition failed")
	}
	if !result.Success {
		root.Log.Error(result.Error)
		os.Exit(1)
	}
	if result.Confidence < root.Cfg.OCR.ConfidenceThreshold {
		root.Log.WithField("confidence", result.Confidence).Warn("Low OCR confidence, results may be unreliable")
	}

	data := receipt.ParseReceipt(result.Text)

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(struct {
		OCR     models.OCRResult   `json:"ocr"`
		Receipt models.ReceiptData `json:"receipt"`
	}{result, data}); err != nil {
		root.Log.WithError(err).Fatal("Failed to encode result")
	}
}
