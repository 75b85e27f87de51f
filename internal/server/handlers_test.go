package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"mzhou/pocket-ledger/internal/config"
	"mzhou/pocket-ledger/internal/database"
	"mzhou/pocket-ledger/internal/logging"
	"mzhou/pocket-ledger/internal/ocr"
	"mzhou/pocket-ledger/internal/service"
	"mzhou/pocket-ledger/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, recognizer ocr.Recognizer) *Server {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"), logging.NewMockLogger())
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})
	require.NoError(t, db.SeedCategories(context.Background(), store.DefaultCategories()))

	cfg := &config.Config{}
	cfg.Ingest.MaxTextBytes = 8192
	cfg.Ingest.MaxNoteChars = 500
	cfg.OCR.ConfidenceThreshold = 0.5

	svc := service.NewService(db, recognizer, cfg, logging.NewMockLogger())
	return New(svc, logging.NewMockLogger())
}

func doJSON(t *testing.T, srv *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := doJSON(t, srv, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestHandleIngest(t *testing.T) {
	srv := newTestServer(t, nil)

	t.Run("success", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/api/ingest", map[string]string{
			"source":   "text",
			"raw_text": "latte 4.50, muffin 3.25",
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var result service.IngestResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.NotEmpty(t, result.Transaction.ID)
		assert.Equal(t, "Dining", result.Categorization.CategoryName)
	})

	t.Run("source defaults to text", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/api/ingest", map[string]string{
			"raw_text": "coffee 3.00",
		})
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("ambiguous text returns candidates", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/api/ingest", map[string]string{
			"source":   "text",
			"raw_text": "20 25",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var resp struct {
			Error      string   `json:"error"`
			Candidates []string `json:"candidates"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Error)
		assert.Equal(t, []string{"25", "20"}, resp.Candidates)
	})

	t.Run("malformed item list is rejected", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/api/ingest", map[string]interface{}{
			"source":   "text",
			"raw_text": "latte 4.50",
			"items":    []map[string]interface{}{{"name": "bad", "amount": "-5"}},
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	})

	t.Run("empty text is rejected", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/api/ingest", map[string]string{
			"source":   "text",
			"raw_text": "  ",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/ingest", bytes.NewReader([]byte("{not json")))
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleRecentTransactions(t *testing.T) {
	srv := newTestServer(t, nil)

	for i := 0; i < 3; i++ {
		rec := doJSON(t, srv, http.MethodPost, "/api/ingest", map[string]string{
			"source":   "text",
			"raw_text": fmt.Sprintf("coffee %d.50", i+1),
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	t.Run("respects limit", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodGet, "/api/transactions/recent?limit=2", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Transactions []json.RawMessage `json:"transactions"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp.Transactions, 2)
	})

	t.Run("rejects bad limit", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodGet, "/api/transactions/recent?limit=0", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleRecategorize(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := doJSON(t, srv, http.MethodPost, "/api/ingest", map[string]string{
		"source":   "text",
		"raw_text": "starbucks 6.80",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var ingested service.IngestResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ingested))

	t.Run("override learns a rule", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPut,
			"/api/transactions/"+ingested.Transaction.ID+"/category",
			map[string]int64{"category_id": 1})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var result service.RecategorizeResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.True(t, result.RuleLearned)
	})

	t.Run("unknown transaction is 404", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPut, "/api/transactions/missing/category",
			map[string]int64{"category_id": 1})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("unknown category is 400", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPut,
			"/api/transactions/"+ingested.Transaction.ID+"/category",
			map[string]int64{"category_id": 9999})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleRollup(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := doJSON(t, srv, http.MethodPost, "/api/ingest", map[string]string{
		"source":   "text",
		"raw_text": "latte 4.50",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	t.Run("today", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodGet, "/api/rollups?range=today", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Rollups []struct {
				CategoryName string `json:"category_name"`
				Count        int    `json:"count"`
			} `json:"rollups"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Rollups, 1)
		assert.Equal(t, "Dining", resp.Rollups[0].CategoryName)
		assert.Equal(t, 1, resp.Rollups[0].Count)
	})

	t.Run("unknown range is 400", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodGet, "/api/rollups?range=fortnight", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleCategories(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := doJSON(t, srv, http.MethodGet, "/api/categories", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Categories []struct {
			Name string `json:"name"`
		} `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Categories)
}

func TestHandleScanReceipt(t *testing.T) {
	t.Run("no image body", func(t *testing.T) {
		srv := newTestServer(t, ocr.NewMockRecognizer("TOTAL 5.00", 0.9))
		req := httptest.NewRequest(http.MethodPost, "/api/receipts/scan", bytes.NewReader(nil))
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("successful scan", func(t *testing.T) {
		srv := newTestServer(t, ocr.NewMockRecognizer("COSTCO\nTOTAL $42.50", 0.9))
		req := httptest.NewRequest(http.MethodPost, "/api/receipts/scan", bytes.NewReader([]byte("fake image")))
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp service.ScanResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.OCR.Success)
		assert.False(t, resp.LowConfidence)
		require.NotNil(t, resp.Receipt)
		assert.Equal(t, "Costco", resp.Receipt.Vendor)
	})

	t.Run("recognizer not configured", func(t *testing.T) {
		srv := newTestServer(t, nil)
		req := httptest.NewRequest(http.MethodPost, "/api/receipts/scan", bytes.NewReader([]byte("img")))
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}
