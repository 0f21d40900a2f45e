package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/masarify/finance-tracker-backend/internal/model"
	"github.com/masarify/finance-tracker-backend/internal/testutil"
)

func setupRecordHandler(t *testing.T) (*RecordHandler, *sql.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestRecordService(t, db)
	return NewRecordHandler(svc), db
}

func TestRecordHandler_CreateRecord(t *testing.T) {
	t.Run("creates expense record successfully", func(t *testing.T) {
		handler, db := setupRecordHandler(t)

		body := `{
			"type": "expense",
			"amount": 3500,
			"category": "rent",
			"date": "2025-05-01",
			"isFixed": true
		}`

		req := testutil.NewRequestWithURLParamsAndBody(
			http.MethodPost,
			"/api/users/user-1/records",
			map[string]string{"userId": "user-1"},
			body,
		)
		w := httptest.NewRecorder()

		handler.CreateRecord(w, req)

		if w.Code != http.StatusCreated {
			t.Errorf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}

		var response model.FinancialRecord
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if response.Type != model.RecordExpense {
			t.Errorf("Expected expense, got %s", response.Type)
		}
		if response.Amount != 3500 {
			t.Errorf("Expected amount 3500, got %f", response.Amount)
		}
		testutil.AssertRowCount(t, db, "financial_records", 1)
	})

	t.Run("returns 400 on invalid type", func(t *testing.T) {
		handler, _ := setupRecordHandler(t)

		body := `{
			"type": "loan",
			"amount": 3500,
			"date": "2025-05-01"
		}`

		req := testutil.NewRequestWithURLParamsAndBody(
			http.MethodPost,
			"/api/users/user-1/records",
			map[string]string{"userId": "user-1"},
			body,
		)
		w := httptest.NewRecorder()

		handler.CreateRecord(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 400 on invalid JSON", func(t *testing.T) {
		handler, _ := setupRecordHandler(t)

		req := testutil.NewRequestWithURLParamsAndBody(
			http.MethodPost,
			"/api/users/user-1/records",
			map[string]string{"userId": "user-1"},
			"invalid json",
		)
		w := httptest.NewRecorder()

		handler.CreateRecord(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestRecordHandler_ListRecords(t *testing.T) {
	t.Run("returns records within the date range", func(t *testing.T) {
		handler, db := setupRecordHandler(t)

		testutil.NewRecord("user-1").WithDate(mustDate(t, "2025-01-15")).Build(t, db)
		testutil.NewRecord("user-1").WithDate(mustDate(t, "2025-06-15")).Build(t, db)

		req := testutil.NewRequestWithURLParams(
			http.MethodGet,
			"/api/users/user-1/records?from=2025-06-01&to=2025-06-30",
			map[string]string{"userId": "user-1"},
		)
		w := httptest.NewRecorder()

		handler.ListRecords(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response []model.FinancialRecord
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if len(response) != 1 {
			t.Errorf("Expected 1 record, got %d", len(response))
		}
	})

	t.Run("returns 400 on malformed date bound", func(t *testing.T) {
		handler, _ := setupRecordHandler(t)

		req := testutil.NewRequestWithURLParams(
			http.MethodGet,
			"/api/users/user-1/records?from=June-1st",
			map[string]string{"userId": "user-1"},
		)
		w := httptest.NewRecorder()

		handler.ListRecords(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})
}
