package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/masarify/finance-tracker-backend/internal/api/request"
	"github.com/masarify/finance-tracker-backend/internal/api/response"
	"github.com/masarify/finance-tracker-backend/internal/apperrors"
	"github.com/masarify/finance-tracker-backend/internal/service"
	"github.com/masarify/finance-tracker-backend/internal/validation"
)

// InvestmentHandler handles HTTP requests for investment endpoints.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the investmentService.
type InvestmentHandler struct {
	investmentService *service.InvestmentService
}

// NewInvestmentHandler creates a new InvestmentHandler with the provided service dependency.
func NewInvestmentHandler(investmentService *service.InvestmentService) *InvestmentHandler {
	return &InvestmentHandler{
		investmentService: investmentService,
	}
}

// CreateInvestment handles POST requests to open a new holding.
//
// Endpoint: POST /api/users/{userId}/investments
// Request Body: CreateInvestmentRequest
// Response: 201 Created with Investment
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 500 Internal Server Error if creation fails
func (h *InvestmentHandler) CreateInvestment(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	req, err := parseJSON[request.CreateInvestmentRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateInvestment(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	investment, err := h.investmentService.CreateInvestment(r.Context(), userID, req)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusCreated, investment)
}

// ListInvestments handles GET requests to retrieve a user's holdings.
// The open=true query parameter restricts the result to open holdings.
//
// Endpoint: GET /api/users/{userId}/investments?open=true
// Response: 200 OK with array of Investment
// Error: 500 Internal Server Error if retrieval fails
func (h *InvestmentHandler) ListInvestments(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	openOnly := r.URL.Query().Get("open") == "true"

	investments, err := h.investmentService.ListInvestments(userID, openOnly)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to retrieve investments", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, investments)
}

// GetInvestment handles GET requests to retrieve one holding, including its
// installments for real-estate holdings.
//
// Endpoint: GET /api/users/{userId}/investments/{uuid}
// Response: 200 OK with Investment
// Error: 404 Not Found if the holding does not exist
// Error: 500 Internal Server Error if retrieval fails
func (h *InvestmentHandler) GetInvestment(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	investmentID := chi.URLParam(r, "uuid")

	investment, err := h.investmentService.GetInvestment(userID, investmentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvestmentNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrInvestmentNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to retrieve investment", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, investment)
}

// CloseInvestment handles POST requests to close a holding.
//
// Endpoint: POST /api/users/{userId}/investments/{uuid}/close
// Response: 204 No Content
// Error: 404 Not Found if the holding does not exist
// Error: 500 Internal Server Error if the update fails
func (h *InvestmentHandler) CloseInvestment(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	investmentID := chi.URLParam(r, "uuid")

	if err := h.investmentService.CloseInvestment(userID, investmentID); err != nil {
		respondDomainError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// CreateTransaction handles POST requests to record a ledger entry against a
// holding. Replaying an identical request returns the stored entry with
// 200 OK instead of 201 Created.
//
// Endpoint: POST /api/users/{userId}/investments/{uuid}/transactions
// Request Body: CreateTransactionRequest
// Response: 201 Created with Transaction, 200 OK on idempotent replay
// Error: 400 Bad Request if validation fails
// Error: 404 Not Found if the holding does not exist
// Error: 422 Unprocessable Entity if a sell exceeds the held quantity
// Error: 409 Conflict if the optimistic write loses its retry
func (h *InvestmentHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	investmentID := chi.URLParam(r, "uuid")

	req, err := parseJSON[request.CreateTransactionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateTransaction(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	transaction, created, err := h.investmentService.RecordTransaction(r.Context(), userID, investmentID, req)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	response.RespondJSON(w, status, transaction)
}

// ListTransactions handles GET requests to retrieve the ledger of a holding.
//
// Endpoint: GET /api/users/{userId}/investments/{uuid}/transactions
// Response: 200 OK with array of Transaction
// Error: 404 Not Found if the holding does not exist
// Error: 500 Internal Server Error if retrieval fails
func (h *InvestmentHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	investmentID := chi.URLParam(r, "uuid")

	transactions, err := h.investmentService.ListTransactions(userID, investmentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvestmentNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrInvestmentNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to retrieve transactions", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, transactions)
}

// PayInstallment handles POST requests to mark an installment paid and book
// the payment in the ledger.
//
// Endpoint: POST /api/users/{userId}/investments/{uuid}/installments/{number}/pay
// Request Body: PayInstallmentRequest
// Response: 200 OK with the payment Transaction
// Error: 400 Bad Request for non-numeric installment numbers or repaid installments
// Error: 404 Not Found if the holding or installment does not exist
func (h *InvestmentHandler) PayInstallment(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	investmentID := chi.URLParam(r, "uuid")

	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "installment number must be an integer", err.Error())
		return
	}

	req, err := parseJSON[request.PayInstallmentRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	transaction, err := h.investmentService.PayInstallment(r.Context(), userID, investmentID, number, req)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, transaction)
}

// UnpayInstallment handles POST requests to reverse a paid installment: the
// row flips back to unpaid and a reversing ledger entry is booked.
//
// Endpoint: POST /api/users/{userId}/investments/{uuid}/installments/{number}/unpay
// Response: 200 OK with the reversal Transaction
// Error: 400 Bad Request for non-numeric installment numbers or unpaid installments
// Error: 404 Not Found if the holding or installment does not exist
func (h *InvestmentHandler) UnpayInstallment(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	investmentID := chi.URLParam(r, "uuid")

	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "installment number must be an integer", err.Error())
		return
	}

	transaction, err := h.investmentService.UnpayInstallment(r.Context(), userID, investmentID, number)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, transaction)
}

// UpdateSchedule handles PUT requests to regenerate a real-estate
// installment plan. Paid installments keep their state.
//
// Endpoint: PUT /api/users/{userId}/investments/{uuid}/schedule
// Request Body: UpdateScheduleRequest
// Response: 200 OK with the updated Investment
// Error: 400 Bad Request if validation fails or the plan is empty
// Error: 404 Not Found if the holding does not exist
func (h *InvestmentHandler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	investmentID := chi.URLParam(r, "uuid")

	req, err := parseJSON[request.UpdateScheduleRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateUpdateSchedule(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	investment, err := h.investmentService.UpdateSchedule(userID, investmentID, req)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, investment)
}
