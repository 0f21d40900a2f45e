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

func setupInvestmentHandler(t *testing.T) (*InvestmentHandler, *sql.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestInvestmentService(t, db)
	return NewInvestmentHandler(svc), db
}

func TestInvestmentHandler_CreateInvestment(t *testing.T) {
	t.Run("creates gold holding successfully", func(t *testing.T) {
		handler, _ := setupInvestmentHandler(t)

		body := `{
			"assetType": "gold",
			"name": "Wedding gold",
			"goldType": "K21"
		}`

		req := testutil.NewRequestWithURLParamsAndBody(
			http.MethodPost,
			"/api/users/user-1/investments",
			map[string]string{"userId": "user-1"},
			body,
		)
		w := httptest.NewRecorder()

		handler.CreateInvestment(w, req)

		if w.Code != http.StatusCreated {
			t.Errorf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}

		var response model.Investment
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if response.ID == "" {
			t.Error("Expected investment ID to be set")
		}
		if response.AssetType != model.AssetGold {
			t.Errorf("Expected gold, got %s", response.AssetType)
		}
		if response.Gold == nil || response.Gold.GoldType != model.GoldK21 {
			t.Errorf("Expected K21 detail, got %+v", response.Gold)
		}
	})

	t.Run("returns 400 on invalid JSON", func(t *testing.T) {
		handler, _ := setupInvestmentHandler(t)

		req := testutil.NewRequestWithURLParamsAndBody(
			http.MethodPost,
			"/api/users/user-1/investments",
			map[string]string{"userId": "user-1"},
			"invalid json",
		)
		w := httptest.NewRecorder()

		handler.CreateInvestment(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 400 on missing class section", func(t *testing.T) {
		handler, _ := setupInvestmentHandler(t)

		body := `{
			"assetType": "stock",
			"name": "No ticker"
		}`

		req := testutil.NewRequestWithURLParamsAndBody(
			http.MethodPost,
			"/api/users/user-1/investments",
			map[string]string{"userId": "user-1"},
			body,
		)
		w := httptest.NewRecorder()

		handler.CreateInvestment(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestInvestmentHandler_ListInvestments(t *testing.T) {
	t.Run("returns empty array when user has no holdings", func(t *testing.T) {
		handler, _ := setupInvestmentHandler(t)

		req := testutil.NewRequestWithURLParams(
			http.MethodGet,
			"/api/users/user-1/investments",
			map[string]string{"userId": "user-1"},
		)
		w := httptest.NewRecorder()

		handler.ListInvestments(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response []model.Investment
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if len(response) != 0 {
			t.Errorf("Expected empty array, got %d holdings", len(response))
		}
	})

	t.Run("open=true filters out closed holdings", func(t *testing.T) {
		handler, db := setupInvestmentHandler(t)

		open := testutil.NewInvestment("user-1").AsStock("COMI").Build(t, db)
		testutil.NewInvestment("user-1").AsStock("HRHO").Closed().Build(t, db)

		req := testutil.NewRequestWithURLParams(
			http.MethodGet,
			"/api/users/user-1/investments?open=true",
			map[string]string{"userId": "user-1"},
		)
		w := httptest.NewRecorder()

		handler.ListInvestments(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response []model.Investment
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if len(response) != 1 {
			t.Fatalf("Expected 1 open holding, got %d", len(response))
		}
		if response[0].ID != open.ID {
			t.Errorf("Expected holding %s, got %s", open.ID, response[0].ID)
		}
	})

	t.Run("returns 500 on database error", func(t *testing.T) {
		handler, db := setupInvestmentHandler(t)
		db.Close()

		req := testutil.NewRequestWithURLParams(
			http.MethodGet,
			"/api/users/user-1/investments",
			map[string]string{"userId": "user-1"},
		)
		w := httptest.NewRecorder()

		handler.ListInvestments(w, req)

		if w.Code != http.StatusInternalServerError {
			t.Errorf("Expected 500, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestInvestmentHandler_GetInvestment(t *testing.T) {
	t.Run("returns holding by ID", func(t *testing.T) {
		handler, db := setupInvestmentHandler(t)

		inv := testutil.NewInvestment("user-1").AsCurrency("USD").Build(t, db)

		req := testutil.NewRequestWithURLParams(
			http.MethodGet,
			"/api/users/user-1/investments/"+inv.ID,
			map[string]string{"userId": "user-1", "uuid": inv.ID},
		)
		w := httptest.NewRecorder()

		handler.GetInvestment(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response model.Investment
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if response.ID != inv.ID {
			t.Errorf("Expected ID %s, got %s", inv.ID, response.ID)
		}
	})

	t.Run("returns 404 when holding not found", func(t *testing.T) {
		handler, _ := setupInvestmentHandler(t)

		missing := testutil.MakeID()
		req := testutil.NewRequestWithURLParams(
			http.MethodGet,
			"/api/users/user-1/investments/"+missing,
			map[string]string{"userId": "user-1", "uuid": missing},
		)
		w := httptest.NewRecorder()

		handler.GetInvestment(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 404 for another user's holding", func(t *testing.T) {
		handler, db := setupInvestmentHandler(t)

		inv := testutil.NewInvestment("user-1").AsStock("COMI").Build(t, db)

		req := testutil.NewRequestWithURLParams(
			http.MethodGet,
			"/api/users/user-2/investments/"+inv.ID,
			map[string]string{"userId": "user-2", "uuid": inv.ID},
		)
		w := httptest.NewRecorder()

		handler.GetInvestment(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestInvestmentHandler_CreateTransaction(t *testing.T) {
	t.Run("creates buy entry and applies it", func(t *testing.T) {
		handler, db := setupInvestmentHandler(t)

		inv := testutil.NewInvestment("user-1").AsStock("COMI").Build(t, db)

		body := `{
			"type": "buy",
			"quantity": 100,
			"pricePerUnit": 10,
			"fees": 5,
			"date": "2025-01-10"
		}`

		req := testutil.NewRequestWithURLParamsAndBody(
			http.MethodPost,
			"/api/users/user-1/investments/"+inv.ID+"/transactions",
			map[string]string{"userId": "user-1", "uuid": inv.ID},
			body,
		)
		w := httptest.NewRecorder()

		handler.CreateTransaction(w, req)

		if w.Code != http.StatusCreated {
			t.Errorf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}

		var response model.Transaction
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if response.Amount != 1005 {
			t.Errorf("Expected amount 1005, got %f", response.Amount)
		}
	})

	t.Run("replay returns 200 with the stored entry", func(t *testing.T) {
		handler, db := setupInvestmentHandler(t)

		inv := testutil.NewInvestment("user-1").AsStock("COMI").Build(t, db)

		body := `{
			"type": "buy",
			"quantity": 100,
			"pricePerUnit": 10,
			"date": "2025-01-10"
		}`

		send := func() *httptest.ResponseRecorder {
			req := testutil.NewRequestWithURLParamsAndBody(
				http.MethodPost,
				"/api/users/user-1/investments/"+inv.ID+"/transactions",
				map[string]string{"userId": "user-1", "uuid": inv.ID},
				body,
			)
			w := httptest.NewRecorder()
			handler.CreateTransaction(w, req)
			return w
		}

		if w := send(); w.Code != http.StatusCreated {
			t.Errorf("Expected 201 on first call, got %d: %s", w.Code, w.Body.String())
		}
		if w := send(); w.Code != http.StatusOK {
			t.Errorf("Expected 200 on replay, got %d: %s", w.Code, w.Body.String())
		}
		testutil.AssertRowCount(t, db, "transactions", 1)
	})

	t.Run("returns 422 on oversell", func(t *testing.T) {
		handler, db := setupInvestmentHandler(t)

		inv := testutil.NewInvestment("user-1").AsStock("COMI").WithHolding(5, 50, 10).Build(t, db)

		body := `{
			"type": "sell",
			"quantity": 10,
			"pricePerUnit": 10,
			"date": "2025-01-10"
		}`

		req := testutil.NewRequestWithURLParamsAndBody(
			http.MethodPost,
			"/api/users/user-1/investments/"+inv.ID+"/transactions",
			map[string]string{"userId": "user-1", "uuid": inv.ID},
			body,
		)
		w := httptest.NewRecorder()

		handler.CreateTransaction(w, req)

		if w.Code != http.StatusUnprocessableEntity {
			t.Errorf("Expected 422, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 400 on closed holding", func(t *testing.T) {
		handler, db := setupInvestmentHandler(t)

		inv := testutil.NewInvestment("user-1").AsStock("COMI").Closed().Build(t, db)

		body := `{
			"type": "buy",
			"quantity": 1,
			"pricePerUnit": 10,
			"date": "2025-01-10"
		}`

		req := testutil.NewRequestWithURLParamsAndBody(
			http.MethodPost,
			"/api/users/user-1/investments/"+inv.ID+"/transactions",
			map[string]string{"userId": "user-1", "uuid": inv.ID},
			body,
		)
		w := httptest.NewRecorder()

		handler.CreateTransaction(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 400 on invalid type", func(t *testing.T) {
		handler, db := setupInvestmentHandler(t)

		inv := testutil.NewInvestment("user-1").AsStock("COMI").Build(t, db)

		body := `{
			"type": "transfer",
			"quantity": 1,
			"pricePerUnit": 10,
			"date": "2025-01-10"
		}`

		req := testutil.NewRequestWithURLParamsAndBody(
			http.MethodPost,
			"/api/users/user-1/investments/"+inv.ID+"/transactions",
			map[string]string{"userId": "user-1", "uuid": inv.ID},
			body,
		)
		w := httptest.NewRecorder()

		handler.CreateTransaction(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 404 when holding not found", func(t *testing.T) {
		handler, _ := setupInvestmentHandler(t)

		missing := testutil.MakeID()
		body := `{
			"type": "buy",
			"quantity": 1,
			"pricePerUnit": 10,
			"date": "2025-01-10"
		}`

		req := testutil.NewRequestWithURLParamsAndBody(
			http.MethodPost,
			"/api/users/user-1/investments/"+missing+"/transactions",
			map[string]string{"userId": "user-1", "uuid": missing},
			body,
		)
		w := httptest.NewRecorder()

		handler.CreateTransaction(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestInvestmentHandler_CloseInvestment(t *testing.T) {
	t.Run("closes holding successfully", func(t *testing.T) {
		handler, db := setupInvestmentHandler(t)

		inv := testutil.NewInvestment("user-1").AsStock("COMI").Build(t, db)

		req := testutil.NewRequestWithURLParams(
			http.MethodPost,
			"/api/users/user-1/investments/"+inv.ID+"/close",
			map[string]string{"userId": "user-1", "uuid": inv.ID},
		)
		w := httptest.NewRecorder()

		handler.CloseInvestment(w, req)

		if w.Code != http.StatusNoContent {
			t.Errorf("Expected 204, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 404 when holding not found", func(t *testing.T) {
		handler, _ := setupInvestmentHandler(t)

		missing := testutil.MakeID()
		req := testutil.NewRequestWithURLParams(
			http.MethodPost,
			"/api/users/user-1/investments/"+missing+"/close",
			map[string]string{"userId": "user-1", "uuid": missing},
		)
		w := httptest.NewRecorder()

		handler.CloseInvestment(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestInvestmentHandler_PayInstallment(t *testing.T) {
	t.Run("returns 400 on non-numeric installment number", func(t *testing.T) {
		handler, db := setupInvestmentHandler(t)

		inv := testutil.NewInvestment("user-1").AsStock("COMI").Build(t, db)

		req := testutil.NewRequestWithURLParamsAndBody(
			http.MethodPost,
			"/api/users/user-1/investments/"+inv.ID+"/installments/abc/pay",
			map[string]string{"userId": "user-1", "uuid": inv.ID, "number": "abc"},
			`{}`,
		)
		w := httptest.NewRecorder()

		handler.PayInstallment(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("pays an unpaid installment", func(t *testing.T) {
		handler, db := setupInvestmentHandler(t)

		inv := testutil.NewInvestment("user-1").
			AsRealEstate(120000, model.FrequencyMonthly, mustDate(t, "2025-01-01"), mustDate(t, "2025-12-01")).
			Build(t, db)
		testutil.NewInstallment(inv.ID, 1).WithAmount(10000).WithDueDate(mustDate(t, "2025-01-01")).Build(t, db)

		req := testutil.NewRequestWithURLParamsAndBody(
			http.MethodPost,
			"/api/users/user-1/investments/"+inv.ID+"/installments/1/pay",
			map[string]string{"userId": "user-1", "uuid": inv.ID, "number": "1"},
			`{"chequeNumber": "CHQ-1", "date": "2025-01-05"}`,
		)
		w := httptest.NewRecorder()

		handler.PayInstallment(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response model.Transaction
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if response.Type != model.TxPayment {
			t.Errorf("Expected payment entry, got %s", response.Type)
		}
		if response.Amount != 10000 {
			t.Errorf("Expected amount 10000, got %f", response.Amount)
		}
	})
}

func TestInvestmentHandler_UnpayInstallment(t *testing.T) {
	t.Run("reverses a paid installment", func(t *testing.T) {
		handler, db := setupInvestmentHandler(t)

		inv := testutil.NewInvestment("user-1").
			AsRealEstate(120000, model.FrequencyMonthly, mustDate(t, "2025-01-01"), mustDate(t, "2025-12-01")).
			Build(t, db)
		testutil.NewInstallment(inv.ID, 1).WithAmount(10000).WithDueDate(mustDate(t, "2025-01-01")).Build(t, db)

		pay := testutil.NewRequestWithURLParamsAndBody(
			http.MethodPost,
			"/api/users/user-1/investments/"+inv.ID+"/installments/1/pay",
			map[string]string{"userId": "user-1", "uuid": inv.ID, "number": "1"},
			`{"chequeNumber": "CHQ-1", "date": "2025-01-05"}`,
		)
		paid := httptest.NewRecorder()
		handler.PayInstallment(paid, pay)
		if paid.Code != http.StatusOK {
			t.Fatalf("Expected 200 on pay, got %d: %s", paid.Code, paid.Body.String())
		}

		req := testutil.NewRequestWithURLParams(
			http.MethodPost,
			"/api/users/user-1/investments/"+inv.ID+"/installments/1/unpay",
			map[string]string{"userId": "user-1", "uuid": inv.ID, "number": "1"},
		)
		w := httptest.NewRecorder()

		handler.UnpayInstallment(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response model.Transaction
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if response.Type != model.TxReversal {
			t.Errorf("Expected reversal entry, got %s", response.Type)
		}
		if response.Amount != -10000 {
			t.Errorf("Expected amount -10000, got %f", response.Amount)
		}
	})

	t.Run("returns 400 when the installment is not paid", func(t *testing.T) {
		handler, db := setupInvestmentHandler(t)

		inv := testutil.NewInvestment("user-1").
			AsRealEstate(120000, model.FrequencyMonthly, mustDate(t, "2025-01-01"), mustDate(t, "2025-12-01")).
			Build(t, db)
		testutil.NewInstallment(inv.ID, 1).WithAmount(10000).WithDueDate(mustDate(t, "2025-01-01")).Build(t, db)

		req := testutil.NewRequestWithURLParams(
			http.MethodPost,
			"/api/users/user-1/investments/"+inv.ID+"/installments/1/unpay",
			map[string]string{"userId": "user-1", "uuid": inv.ID, "number": "1"},
		)
		w := httptest.NewRecorder()

		handler.UnpayInstallment(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})
}
