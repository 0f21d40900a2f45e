package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/masarify/finance-tracker-backend/internal/api/request"
	"github.com/masarify/finance-tracker-backend/internal/api/response"
	"github.com/masarify/finance-tracker-backend/internal/repository"
	"github.com/masarify/finance-tracker-backend/internal/service"
	"github.com/masarify/finance-tracker-backend/internal/validation"
)

// RecordHandler handles HTTP requests for financial record endpoints.
type RecordHandler struct {
	recordService *service.RecordService
}

// NewRecordHandler creates a new RecordHandler with the provided service dependency.
func NewRecordHandler(recordService *service.RecordService) *RecordHandler {
	return &RecordHandler{
		recordService: recordService,
	}
}

// CreateRecord handles POST requests to add an income or expense entry.
//
// Endpoint: POST /api/users/{userId}/records
// Request Body: CreateRecordRequest
// Response: 201 Created with FinancialRecord
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 500 Internal Server Error if creation fails
func (h *RecordHandler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	req, err := parseJSON[request.CreateRecordRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateRecord(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	record, err := h.recordService.CreateRecord(userID, req)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusCreated, record)
}

// ListRecords handles GET requests to retrieve a user's financial records.
// Optional from/to query parameters (YYYY-MM-DD) bound the date range.
//
// Endpoint: GET /api/users/{userId}/records?from=2025-01-01&to=2025-01-31
// Response: 200 OK with array of FinancialRecord
// Error: 400 Bad Request for malformed date bounds
// Error: 500 Internal Server Error if retrieval fails
func (h *RecordHandler) ListRecords(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	var from, to time.Time
	var err error
	if raw := r.URL.Query().Get("from"); raw != "" {
		if from, err = repository.ParseTime(raw); err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid from date", err.Error())
			return
		}
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		if to, err = repository.ParseTime(raw); err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid to date", err.Error())
			return
		}
	}

	records, err := h.recordService.ListRecords(userID, from, to)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to retrieve records", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, records)
}
