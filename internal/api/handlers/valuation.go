package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/masarify/finance-tracker-backend/internal/api/request"
	"github.com/masarify/finance-tracker-backend/internal/api/response"
	"github.com/masarify/finance-tracker-backend/internal/service"
)

// ValuationHandler handles HTTP requests for portfolio valuation endpoints.
type ValuationHandler struct {
	valuationService  *service.ValuationService
	sweeperService    *service.SweeperService
	investmentService *service.InvestmentService
}

// NewValuationHandler creates a new ValuationHandler with the provided service dependencies.
func NewValuationHandler(
	valuationService *service.ValuationService,
	sweeperService *service.SweeperService,
	investmentService *service.InvestmentService,
) *ValuationHandler {
	return &ValuationHandler{
		valuationService:  valuationService,
		sweeperService:    sweeperService,
		investmentService: investmentService,
	}
}

// Valuate handles GET requests to compute the full portfolio summary for a
// user. Market data is refreshed first; a failing feed slice keeps its last
// stored prices.
//
// Endpoint: GET /api/users/{userId}/valuation
// Response: 200 OK with PortfolioSummary
// Error: 500 Internal Server Error if aggregation fails
func (h *ValuationHandler) Valuate(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	summary, err := h.valuationService.Valuate(r.Context(), userID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, summary)
}

// Recalculate handles POST requests to rebuild every holding of a user from
// its transaction history before valuing. The cached position columns are
// replaced by a replay of the ledger, so the returned summary is derived from
// source entries rather than any cached totals.
//
// Endpoint: POST /api/users/{userId}/valuation/recalculate
// Response: 200 OK with the freshly derived PortfolioSummary
// Error: 409 Conflict if a holding keeps being written to concurrently
func (h *ValuationHandler) Recalculate(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	if _, err := h.investmentService.RecalculateHoldings(r.Context(), userID); err != nil {
		respondDomainError(w, err)
		return
	}

	summary, err := h.valuationService.Valuate(r.Context(), userID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, summary)
}

// SweepMaturities handles POST requests to run a maturity sweep immediately,
// outside the regular schedule. The sweep is idempotent.
//
// Endpoint: POST /api/maintenance/sweep-maturities
// Response: 200 OK with the number of instruments retired
// Error: 500 Internal Server Error if the sweep fails
func (h *ValuationHandler) SweepMaturities(w http.ResponseWriter, r *http.Request) {
	count, err := h.sweeperService.Sweep(r.Context(), time.Now().UTC())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "maturity sweep failed", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, map[string]int{"matured": count})
}

// SetFeedToken handles POST requests to store the market data feed access
// token. The token is encrypted at rest.
//
// Endpoint: POST /api/settings/feed-token
// Request Body: SetFeedTokenRequest
// Response: 204 No Content
// Error: 400 Bad Request for empty tokens
// Error: 500 Internal Server Error if no encryption key is configured
func (h *ValuationHandler) SetFeedToken(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.SetFeedTokenRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := h.valuationService.SetFeedToken(req.Token); err != nil {
		respondDomainError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}
