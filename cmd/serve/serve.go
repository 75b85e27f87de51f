// Package serve runs the HTTP API server.
package serve

import (
	"context"
	"os/signal"
	"syscall"

	"mzhou/pocket-ledger/cmd/root"
	"mzhou/pocket-ledger/internal/database"
	"mzhou/pocket-ledger/internal/ocr"
	"mzhou/pocket-ledger/internal/server"
	"mzhou/pocket-ledger/internal/service"
	"mzhou/pocket-ledger/internal/store"

	"github.com/spf13/cobra"
)

// Cmd represents the serve command.
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the expense API server",
	Long: `Start the HTTP server exposing ingest, transactions, rollups, and
receipt scanning endpoints backed by the SQLite database.`,
	Run: serveFunc,
}

var addr string

func init() {
	Cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (defaults to configuration)")
}

func serveFunc(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(root.Cfg.Data.Database, root.Log)
	if err != nil {
		root.Log.WithError(err).Fatal("Failed to open database")
	}
	defer db.Close()

	// Seed the category set from YAML (falling back to the built-in
	// defaults) so a fresh database can categorize immediately.
	categoryStore := store.NewCategoryStore(root.Cfg.Data.CategoriesFile, root.Cfg.Data.VendorRulesFile, root.Log)
	categories, err := categoryStore.LoadCategories()
	if err != nil {
		root.Log.WithError(err).Fatal("Failed to load categories")
	}
	if err := db.SeedCategories(ctx, categories); err != nil {
		root.Log.WithError(err).Fatal("Failed to seed categories")
	}

	var recognizer ocr.Recognizer
	if root.Cfg.OCR.APIKey != "" {
		gemini, err := ocr.NewGeminiRecognizer(ctx, root.Cfg.OCR.APIKey, root.Cfg.OCR.Model, root.Log)
		if err != nil {
			root.Log.WithError(err).Fatal("Failed to create recognizer")
		}
		defer gemini.Close()
		recognizer = gemini
	} else {
		root.Log.Warn("GEMINI_API_KEY not set, receipt scanning is disabled")
	}

	svc := service.NewService(db, recognizer, root.Cfg, root.Log)

	listenAddr := addr
	if listenAddr == "" {
		listenAddr = root.Cfg.Server.Addr
	}

	srv := server.New(svc, root.Log)
	if err := srv.Run(ctx, listenAddr); err != nil {
		root.Log.WithError(err).Fatal("Server error")
	}
	root.Log.Info("Server stopped")
}
