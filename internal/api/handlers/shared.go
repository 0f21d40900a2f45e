package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/masarify/finance-tracker-backend/internal/api/response"
	"github.com/masarify/finance-tracker-backend/internal/apperrors"
)

// parseJSON decodes a request body into the given request type.
func parseJSON[T any](r *http.Request) (T, error) {
	var req T
	defer func() { _ = r.Body.Close() }()
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, fmt.Errorf("failed to decode request body: %w", err)
	}
	return req, nil
}

// respondDomainError maps the shared business errors onto HTTP status codes.
// Handlers call it after handling their endpoint-specific cases.
func respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperrors.ErrInvestmentNotFound),
		errors.Is(err, apperrors.ErrInstallmentNotFound),
		errors.Is(err, apperrors.ErrTransactionNotFound),
		errors.Is(err, apperrors.ErrRecordNotFound):
		response.RespondError(w, http.StatusNotFound, err.Error(), "")
	case errors.Is(err, apperrors.ErrInsufficientQuantity):
		response.RespondError(w, http.StatusUnprocessableEntity, apperrors.ErrInsufficientQuantity.Error(), err.Error())
	case errors.Is(err, apperrors.ErrConflict):
		response.RespondError(w, http.StatusConflict, apperrors.ErrConflict.Error(), err.Error())
	case errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, apperrors.ErrInvalidAmount),
		errors.Is(err, apperrors.ErrEmptySchedule),
		errors.Is(err, apperrors.ErrConfiguration),
		errors.Is(err, apperrors.ErrInvestmentClosed),
		errors.Is(err, apperrors.ErrInstallmentAlreadyPaid),
		errors.Is(err, apperrors.ErrInstallmentNotPaid):
		response.RespondError(w, http.StatusBadRequest, err.Error(), "")
	case errors.Is(err, apperrors.ErrTransientIO):
		response.RespondError(w, http.StatusBadGateway, apperrors.ErrTransientIO.Error(), err.Error())
	default:
		response.RespondError(w, http.StatusInternalServerError, "internal error", err.Error())
	}
}
