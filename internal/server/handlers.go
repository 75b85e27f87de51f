package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"mzhou/pocket-ledger/internal/models"
	"mzhou/pocket-ledger/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type errorResponse struct {
	Error      string            `json:"error"`
	Candidates []decimal.Decimal `json:"candidates,omitempty"`
}

type recategorizeRequest struct {
	CategoryID int64 `json:"category_id"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req service.IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body", nil)
		return
	}
	if req.Source == "" {
		req.Source = models.SourceText
	}

	result, err := s.service.Ingest(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, result)
}

func (s *Server) handleScanReceipt(w http.ResponseWriter, r *http.Request) {
	image, err := io.ReadAll(r.Body)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "could not read image body", nil)
		return
	}
	if len(image) == 0 {
		s.respondError(w, http.StatusBadRequest, "image body is required", nil)
		return
	}

	scan, err := s.service.ScanReceipt(r.Context(), image, nil)
	if err != nil {
		s.logger.WithError(err).Error("Receipt scan failed")
		s.respondError(w, http.StatusBadGateway, "receipt scan failed", nil)
		return
	}
	s.respondJSON(w, http.StatusOK, scan)
}

func (s *Server) handleRecentTransactions(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 200 {
			s.respondError(w, http.StatusBadRequest, "limit must be between 1 and 200", nil)
			return
		}
		limit = parsed
	}

	transactions, err := s.service.RecentTransactions(r.Context(), limit)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"transactions": transactions})
}

func (s *Server) handleRecategorize(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req recategorizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body", nil)
		return
	}

	result, err := s.service.Recategorize(r.Context(), id, req.CategoryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.respondError(w, http.StatusNotFound, "transaction not found", nil)
			return
		}
		s.writeServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleRollup(w http.ResponseWriter, r *http.Request) {
	rangeName := r.URL.Query().Get("range")
	rollups, err := s.service.Rollup(r.Context(), rangeName)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if rollups == nil {
		rollups = []models.CategoryRollup{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"rollups": rollups})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.service.Categories(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"categories": categories})
}

// writeServiceError maps service errors to HTTP responses. Parse failures
// carry their candidate amounts so a client can disambiguate.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		s.respondError(w, http.StatusBadRequest, validationErr.Message, nil)
		return
	}
	var parseErr *service.ParseError
	if errors.As(err, &parseErr) {
		s.respondError(w, http.StatusBadRequest, parseErr.Message, parseErr.Candidates)
		return
	}
	s.logger.WithError(err).Error("Request failed")
	s.respondError(w, http.StatusInternalServerError, "internal error", nil)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.WithError(err).Error("Failed to encode response")
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string, candidates []decimal.Decimal) {
	s.respondJSON(w, status, errorResponse{Error: message, Candidates: candidates})
}
