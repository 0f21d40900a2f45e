package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/masarify/finance-tracker-backend/internal/apperrors"
)

func mustDate(t *testing.T, value string) time.Time {
	t.Helper()
	date, err := time.Parse("2006-01-02", value)
	if err != nil {
		t.Fatalf("Bad test date %q: %v", value, err)
	}
	return date
}

func TestRespondDomainError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"investment not found", apperrors.ErrInvestmentNotFound, http.StatusNotFound},
		{"installment not found", apperrors.ErrInstallmentNotFound, http.StatusNotFound},
		{"transaction not found", apperrors.ErrTransactionNotFound, http.StatusNotFound},
		{"insufficient quantity", apperrors.ErrInsufficientQuantity, http.StatusUnprocessableEntity},
		{"conflict", apperrors.ErrConflict, http.StatusConflict},
		{"validation", apperrors.ErrValidation, http.StatusBadRequest},
		{"invalid amount", apperrors.ErrInvalidAmount, http.StatusBadRequest},
		{"empty schedule", apperrors.ErrEmptySchedule, http.StatusBadRequest},
		{"closed holding", apperrors.ErrInvestmentClosed, http.StatusBadRequest},
		{"installment already paid", apperrors.ErrInstallmentAlreadyPaid, http.StatusBadRequest},
		{"installment not paid", apperrors.ErrInstallmentNotPaid, http.StatusBadRequest},
		{"misconfigured schedule", apperrors.ErrConfiguration, http.StatusBadRequest},
		{"transient IO", apperrors.ErrTransientIO, http.StatusBadGateway},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			respondDomainError(w, tt.err)

			if w.Code != tt.want {
				t.Errorf("Expected %d for %v, got %d", tt.want, tt.err, w.Code)
			}
		})
	}

	t.Run("wrapped errors map the same way", func(t *testing.T) {
		w := httptest.NewRecorder()
		respondDomainError(w, errors.Join(errors.New("context"), apperrors.ErrConflict))

		if w.Code != http.StatusConflict {
			t.Errorf("Expected 409 for wrapped conflict, got %d", w.Code)
		}
	})
}
