package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/masarify/finance-tracker-backend/internal/api/request"
	"github.com/masarify/finance-tracker-backend/internal/apperrors"
	"github.com/masarify/finance-tracker-backend/internal/model"
	"github.com/masarify/finance-tracker-backend/internal/service"
	"github.com/masarify/finance-tracker-backend/internal/testutil"
)

func TestInvestmentService_CreateInvestment(t *testing.T) {
	ctx := context.Background()

	t.Run("creates stock holding with empty position", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestInvestmentService(t, db)

		inv, err := svc.CreateInvestment(ctx, "user-1", request.CreateInvestmentRequest{
			AssetType: "stock",
			Name:      "CIB shares",
			Ticker:    "COMI",
		})
		if err != nil {
			t.Fatalf("CreateInvestment failed: %v", err)
		}

		if inv.AssetType != model.AssetStock {
			t.Errorf("Expected asset type stock, got %s", inv.AssetType)
		}
		if inv.Stock == nil || inv.Stock.Ticker != "COMI" {
			t.Errorf("Expected ticker COMI, got %+v", inv.Stock)
		}
		if inv.TotalQuantity != 0 || inv.TotalInvested != 0 || inv.AverageCost != 0 {
			t.Errorf("Expected empty position, got %+v", inv)
		}
	})

	t.Run("creates debt holding and books the principal", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestInvestmentService(t, db)

		inv, err := svc.CreateInvestment(ctx, "user-1", request.CreateInvestmentRequest{
			AssetType:         "debt",
			Name:              "3y certificate",
			DebtSubType:       "certificate",
			Issuer:            "NBE",
			InterestRate:      10,
			InterestFrequency: "monthly",
			MaturityDate:      "2028-06-01",
			Principal:         100000,
			PurchaseDate:      "2025-06-01",
		})
		if err != nil {
			t.Fatalf("CreateInvestment failed: %v", err)
		}

		if inv.TotalInvested != 100000 {
			t.Errorf("Expected invested 100000, got %f", inv.TotalInvested)
		}
		if inv.TotalQuantity != 1 {
			t.Errorf("Expected quantity 1, got %f", inv.TotalQuantity)
		}
		if inv.Debt == nil || inv.Debt.InterestRate != 10 {
			t.Errorf("Expected debt detail with rate 10, got %+v", inv.Debt)
		}

		transactions, err := svc.ListTransactions("user-1", inv.ID)
		if err != nil {
			t.Fatalf("ListTransactions failed: %v", err)
		}
		if len(transactions) != 1 || transactions[0].Type != model.TxBuy {
			t.Fatalf("Expected one buy entry for the principal, got %+v", transactions)
		}
	})

	t.Run("creates real-estate holding with schedule and down payment", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestInvestmentService(t, db)

		inv, err := svc.CreateInvestment(ctx, "user-1", request.CreateInvestmentRequest{
			AssetType:             "real_estate",
			Name:                  "New Capital flat",
			Location:              "New Capital",
			DownPayment:           50000,
			InstallmentFrequency:  "monthly",
			TotalInstallmentPrice: 120000,
			InstallmentStartDate:  "2025-01-01",
			InstallmentEndDate:    "2025-12-01",
		})
		if err != nil {
			t.Fatalf("CreateInvestment failed: %v", err)
		}

		if inv.RealEstate == nil {
			t.Fatal("Expected real-estate detail")
		}
		// 12 monthly installments plus the down payment row
		if len(inv.RealEstate.Installments) != 13 {
			t.Fatalf("Expected 13 installments, got %d", len(inv.RealEstate.Installments))
		}
		// Only the down payment is paid, so it is the whole invested total
		if inv.TotalInvested != 50000 {
			t.Errorf("Expected invested 50000, got %f", inv.TotalInvested)
		}

		var scheduled float64
		for _, inst := range inv.RealEstate.Installments {
			if !inst.IsDownPayment {
				scheduled += inst.Amount
			}
		}
		if scheduled != 120000 {
			t.Errorf("Expected scheduled amounts to sum to 120000, got %f", scheduled)
		}
	})

	t.Run("rejects unknown asset type", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestInvestmentService(t, db)

		_, err := svc.CreateInvestment(ctx, "user-1", request.CreateInvestmentRequest{
			AssetType: "crypto",
			Name:      "nope",
		})
		if !errors.Is(err, apperrors.ErrValidation) {
			t.Errorf("Expected validation error, got %v", err)
		}
	})
}

func TestInvestmentService_RecordTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("buy fees raise invested but not average cost", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestInvestmentService(t, db)
		inv := testutil.NewInvestment("user-1").AsStock("COMI").Build(t, db)

		entry, created, err := svc.RecordTransaction(ctx, "user-1", inv.ID, request.CreateTransactionRequest{
			Type:         "buy",
			Quantity:     100,
			PricePerUnit: 10,
			Fees:         5,
			Date:         "2025-01-10",
		})
		if err != nil {
			t.Fatalf("RecordTransaction failed: %v", err)
		}
		if !created {
			t.Error("Expected entry to be created")
		}
		if entry.Amount != 1005 {
			t.Errorf("Expected amount 1005, got %f", entry.Amount)
		}

		stored, err := svc.GetInvestment("user-1", inv.ID)
		if err != nil {
			t.Fatalf("GetInvestment failed: %v", err)
		}
		if stored.TotalQuantity != 100 {
			t.Errorf("Expected quantity 100, got %f", stored.TotalQuantity)
		}
		if stored.TotalInvested != 1005 {
			t.Errorf("Expected invested 1005, got %f", stored.TotalInvested)
		}
		if stored.AverageCost != 10 {
			t.Errorf("Expected average cost 10, got %f", stored.AverageCost)
		}
	})

	t.Run("second buy reweights average cost from prices", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestInvestmentService(t, db)
		inv := testutil.NewInvestment("user-1").AsGold(model.GoldK21).Build(t, db)

		buys := []request.CreateTransactionRequest{
			{Type: "buy", Quantity: 10, PricePerUnit: 100, Date: "2025-01-01"},
			{Type: "buy", Quantity: 10, PricePerUnit: 200, Date: "2025-02-01"},
		}
		for _, req := range buys {
			if _, _, err := svc.RecordTransaction(ctx, "user-1", inv.ID, req); err != nil {
				t.Fatalf("RecordTransaction failed: %v", err)
			}
		}

		stored, err := svc.GetInvestment("user-1", inv.ID)
		if err != nil {
			t.Fatalf("GetInvestment failed: %v", err)
		}
		if stored.TotalQuantity != 20 {
			t.Errorf("Expected quantity 20, got %f", stored.TotalQuantity)
		}
		if stored.TotalInvested != 3000 {
			t.Errorf("Expected invested 3000, got %f", stored.TotalInvested)
		}
		if stored.AverageCost != 150 {
			t.Errorf("Expected average cost 150, got %f", stored.AverageCost)
		}
	})

	t.Run("sell books profit against average cost and keeps it unchanged", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestInvestmentService(t, db)
		inv := testutil.NewInvestment("user-1").AsGold(model.GoldK21).Build(t, db)

		seed := []request.CreateTransactionRequest{
			{Type: "buy", Quantity: 10, PricePerUnit: 100, Date: "2025-01-01"},
			{Type: "buy", Quantity: 10, PricePerUnit: 200, Date: "2025-02-01"},
		}
		for _, req := range seed {
			if _, _, err := svc.RecordTransaction(ctx, "user-1", inv.ID, req); err != nil {
				t.Fatalf("RecordTransaction failed: %v", err)
			}
		}

		entry, _, err := svc.RecordTransaction(ctx, "user-1", inv.ID, request.CreateTransactionRequest{
			Type:         "sell",
			Quantity:     10,
			PricePerUnit: 200,
			Fees:         10,
			Date:         "2025-03-01",
		})
		if err != nil {
			t.Fatalf("RecordTransaction failed: %v", err)
		}

		// Proceeds come back as negative cash
		if entry.Amount != -1990 {
			t.Errorf("Expected amount -1990, got %f", entry.Amount)
		}
		// 1990 proceeds minus 10 units at average cost 150
		if entry.ProfitOrLoss != 490 {
			t.Errorf("Expected profit 490, got %f", entry.ProfitOrLoss)
		}

		stored, err := svc.GetInvestment("user-1", inv.ID)
		if err != nil {
			t.Fatalf("GetInvestment failed: %v", err)
		}
		if stored.TotalQuantity != 10 {
			t.Errorf("Expected quantity 10, got %f", stored.TotalQuantity)
		}
		if stored.TotalInvested != 1500 {
			t.Errorf("Expected invested 1500, got %f", stored.TotalInvested)
		}
		if stored.AverageCost != 150 {
			t.Errorf("Expected average cost 150 after sell, got %f", stored.AverageCost)
		}
	})

	t.Run("oversell is rejected and mutates nothing", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestInvestmentService(t, db)
		inv := testutil.NewInvestment("user-1").AsStock("COMI").Build(t, db)

		if _, _, err := svc.RecordTransaction(ctx, "user-1", inv.ID, request.CreateTransactionRequest{
			Type: "buy", Quantity: 5, PricePerUnit: 100, Date: "2025-01-01",
		}); err != nil {
			t.Fatalf("RecordTransaction failed: %v", err)
		}

		_, _, err := svc.RecordTransaction(ctx, "user-1", inv.ID, request.CreateTransactionRequest{
			Type: "sell", Quantity: 10, PricePerUnit: 100, Date: "2025-01-02",
		})
		if !errors.Is(err, apperrors.ErrInsufficientQuantity) {
			t.Fatalf("Expected insufficient quantity error, got %v", err)
		}

		stored, err := svc.GetInvestment("user-1", inv.ID)
		if err != nil {
			t.Fatalf("GetInvestment failed: %v", err)
		}
		if stored.TotalQuantity != 5 || stored.TotalInvested != 500 {
			t.Errorf("Expected position untouched, got %+v", stored)
		}
		testutil.AssertRowCount(t, db, "transactions", 1)
	})

	t.Run("replaying the same request is idempotent", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestInvestmentService(t, db)
		inv := testutil.NewInvestment("user-1").AsStock("COMI").Build(t, db)

		req := request.CreateTransactionRequest{
			Type: "buy", Quantity: 100, PricePerUnit: 10, Date: "2025-01-10",
		}

		first, created, err := svc.RecordTransaction(ctx, "user-1", inv.ID, req)
		if err != nil {
			t.Fatalf("RecordTransaction failed: %v", err)
		}
		if !created {
			t.Error("Expected first call to create the entry")
		}

		second, created, err := svc.RecordTransaction(ctx, "user-1", inv.ID, req)
		if err != nil {
			t.Fatalf("Replay failed: %v", err)
		}
		if created {
			t.Error("Expected replay to not create a new entry")
		}
		if first.ID != second.ID {
			t.Errorf("Expected same entry ID, got %s and %s", first.ID, second.ID)
		}

		stored, err := svc.GetInvestment("user-1", inv.ID)
		if err != nil {
			t.Fatalf("GetInvestment failed: %v", err)
		}
		if stored.TotalQuantity != 100 {
			t.Errorf("Expected quantity applied once, got %f", stored.TotalQuantity)
		}
		testutil.AssertRowCount(t, db, "transactions", 1)
	})

	t.Run("sequence distinguishes same-day entries", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestInvestmentService(t, db)
		inv := testutil.NewInvestment("user-1").AsStock("COMI").Build(t, db)

		for seq := 0; seq < 2; seq++ {
			_, created, err := svc.RecordTransaction(ctx, "user-1", inv.ID, request.CreateTransactionRequest{
				Type: "buy", Quantity: 10, PricePerUnit: 10, Date: "2025-01-10", Sequence: seq,
			})
			if err != nil {
				t.Fatalf("RecordTransaction failed: %v", err)
			}
			if !created {
				t.Errorf("Expected sequence %d to create a distinct entry", seq)
			}
		}
		testutil.AssertRowCount(t, db, "transactions", 2)
	})

	t.Run("closed holding rejects new entries", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestInvestmentService(t, db)
		inv := testutil.NewInvestment("user-1").AsStock("COMI").Closed().Build(t, db)

		_, _, err := svc.RecordTransaction(ctx, "user-1", inv.ID, request.CreateTransactionRequest{
			Type: "buy", Quantity: 1, PricePerUnit: 10, Date: "2025-01-10",
		})
		if !errors.Is(err, apperrors.ErrInvestmentClosed) {
			t.Errorf("Expected closed error, got %v", err)
		}
	})

	t.Run("dividend comes back as negative cash without touching the position", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestInvestmentService(t, db)
		inv := testutil.NewInvestment("user-1").AsStock("COMI").WithHolding(100, 1000, 10).Build(t, db)

		entry, _, err := svc.RecordTransaction(ctx, "user-1", inv.ID, request.CreateTransactionRequest{
			Type: "dividend", Amount: 250, Date: "2025-04-01",
		})
		if err != nil {
			t.Fatalf("RecordTransaction failed: %v", err)
		}
		if entry.Amount != -250 {
			t.Errorf("Expected amount -250, got %f", entry.Amount)
		}

		stored, err := svc.GetInvestment("user-1", inv.ID)
		if err != nil {
			t.Fatalf("GetInvestment failed: %v", err)
		}
		if stored.TotalQuantity != 100 || stored.TotalInvested != 1000 {
			t.Errorf("Expected position untouched, got %+v", stored)
		}
	})
}

func TestInvestmentService_PayInstallment(t *testing.T) {
	ctx := context.Background()

	createProperty := func(t *testing.T, svc *service.InvestmentService) *model.Investment {
		t.Helper()
		inv, err := svc.CreateInvestment(ctx, "user-1", request.CreateInvestmentRequest{
			AssetType:             "real_estate",
			Name:                  "Flat",
			Location:              "Maadi",
			InstallmentFrequency:  "monthly",
			TotalInstallmentPrice: 120000,
			InstallmentStartDate:  "2025-01-01",
			InstallmentEndDate:    "2025-12-01",
		})
		if err != nil {
			t.Fatalf("CreateInvestment failed: %v", err)
		}
		return inv
	}

	t.Run("marks installment paid and recomputes invested", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestInvestmentService(t, db)
		inv := createProperty(t, svc)

		entry, err := svc.PayInstallment(ctx, "user-1", inv.ID, 1, request.PayInstallmentRequest{
			ChequeNumber: "CHQ-100",
			Date:         "2025-01-05",
		})
		if err != nil {
			t.Fatalf("PayInstallment failed: %v", err)
		}
		if entry.Type != model.TxPayment {
			t.Errorf("Expected payment entry, got %s", entry.Type)
		}
		if entry.Amount != 10000 {
			t.Errorf("Expected amount 10000, got %f", entry.Amount)
		}

		stored, err := svc.GetInvestment("user-1", inv.ID)
		if err != nil {
			t.Fatalf("GetInvestment failed: %v", err)
		}
		if stored.TotalInvested != 10000 {
			t.Errorf("Expected invested 10000, got %f", stored.TotalInvested)
		}

		var paid *model.Installment
		for i := range stored.RealEstate.Installments {
			if stored.RealEstate.Installments[i].Number == 1 {
				paid = &stored.RealEstate.Installments[i]
			}
		}
		if paid == nil || paid.Status != model.InstallmentPaid {
			t.Errorf("Expected installment 1 to be paid, got %+v", paid)
		}
		if paid != nil && paid.ChequeNumber != "CHQ-100" {
			t.Errorf("Expected cheque number CHQ-100, got %s", paid.ChequeNumber)
		}
	})

	t.Run("paying twice fails and keeps one payment entry", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestInvestmentService(t, db)
		inv := createProperty(t, svc)

		if _, err := svc.PayInstallment(ctx, "user-1", inv.ID, 1, request.PayInstallmentRequest{Date: "2025-01-05"}); err != nil {
			t.Fatalf("PayInstallment failed: %v", err)
		}

		_, err := svc.PayInstallment(ctx, "user-1", inv.ID, 1, request.PayInstallmentRequest{Date: "2025-01-06"})
		if !errors.Is(err, apperrors.ErrInstallmentAlreadyPaid) {
			t.Fatalf("Expected already-paid error, got %v", err)
		}

		stored, err := svc.GetInvestment("user-1", inv.ID)
		if err != nil {
			t.Fatalf("GetInvestment failed: %v", err)
		}
		if stored.TotalInvested != 10000 {
			t.Errorf("Expected invested 10000 after duplicate pay, got %f", stored.TotalInvested)
		}
	})

	t.Run("rejects installments on non-property holdings", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestInvestmentService(t, db)
		inv := testutil.NewInvestment("user-1").AsStock("COMI").Build(t, db)

		_, err := svc.PayInstallment(ctx, "user-1", inv.ID, 1, request.PayInstallmentRequest{})
		if !errors.Is(err, apperrors.ErrValidation) {
			t.Errorf("Expected validation error, got %v", err)
		}
	})
}

func TestInvestmentService_UpdateSchedule(t *testing.T) {
	ctx := context.Background()

	t.Run("regeneration preserves paid installments", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestInvestmentService(t, db)

		inv, err := svc.CreateInvestment(ctx, "user-1", request.CreateInvestmentRequest{
			AssetType:             "real_estate",
			Name:                  "Flat",
			Location:              "Maadi",
			InstallmentFrequency:  "monthly",
			TotalInstallmentPrice: 120000,
			InstallmentStartDate:  "2025-01-01",
			InstallmentEndDate:    "2025-12-01",
		})
		if err != nil {
			t.Fatalf("CreateInvestment failed: %v", err)
		}

		if _, err := svc.PayInstallment(ctx, "user-1", inv.ID, 1, request.PayInstallmentRequest{
			ChequeNumber: "CHQ-7",
			Date:         "2025-01-05",
		}); err != nil {
			t.Fatalf("PayInstallment failed: %v", err)
		}

		// Stretch the same total over 24 months
		updated, err := svc.UpdateSchedule("user-1", inv.ID, request.UpdateScheduleRequest{
			InstallmentFrequency:  "monthly",
			TotalInstallmentPrice: 120000,
			InstallmentStartDate:  "2025-01-01",
			InstallmentEndDate:    "2026-12-01",
		})
		if err != nil {
			t.Fatalf("UpdateSchedule failed: %v", err)
		}

		if updated.RealEstate.TotalInstallmentPrice != 120000 {
			t.Errorf("Expected plan price 120000, got %f", updated.RealEstate.TotalInstallmentPrice)
		}

		var paidCount int
		for _, inst := range updated.RealEstate.Installments {
			if inst.Status == model.InstallmentPaid {
				paidCount++
				if inst.ChequeNumber != "CHQ-7" {
					t.Errorf("Expected preserved cheque number, got %s", inst.ChequeNumber)
				}
			}
		}
		if paidCount != 1 {
			t.Errorf("Expected 1 paid installment to survive, got %d", paidCount)
		}
		if updated.TotalInvested != 10000 {
			t.Errorf("Expected invested 10000 after regeneration, got %f", updated.TotalInvested)
		}
	})
}

func TestInvestmentService_CloseInvestment(t *testing.T) {
	t.Run("closing is idempotent", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestInvestmentService(t, db)
		inv := testutil.NewInvestment("user-1").AsStock("COMI").Build(t, db)

		if err := svc.CloseInvestment("user-1", inv.ID); err != nil {
			t.Fatalf("CloseInvestment failed: %v", err)
		}
		if err := svc.CloseInvestment("user-1", inv.ID); err != nil {
			t.Fatalf("Second CloseInvestment failed: %v", err)
		}

		stored, err := svc.GetInvestment("user-1", inv.ID)
		if err != nil {
			t.Fatalf("GetInvestment failed: %v", err)
		}
		if !stored.IsClosed {
			t.Error("Expected holding to be closed")
		}
	})

	t.Run("returns not found for another user's holding", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestInvestmentService(t, db)
		inv := testutil.NewInvestment("user-1").AsStock("COMI").Build(t, db)

		err := svc.CloseInvestment("user-2", inv.ID)
		if !errors.Is(err, apperrors.ErrInvestmentNotFound) {
			t.Errorf("Expected not found error, got %v", err)
		}
	})
}

func TestInvestmentService_UnpayInstallment(t *testing.T) {
	ctx := context.Background()

	createProperty := func(t *testing.T, svc *service.InvestmentService) *model.Investment {
		t.Helper()
		inv, err := svc.CreateInvestment(ctx, "user-1", request.CreateInvestmentRequest{
			AssetType:             "real_estate",
			Name:                  "Flat",
			Location:              "Maadi",
			InstallmentFrequency:  "monthly",
			TotalInstallmentPrice: 120000,
			InstallmentStartDate:  "2025-01-01",
			InstallmentEndDate:    "2025-12-01",
		})
		if err != nil {
			t.Fatalf("CreateInvestment failed: %v", err)
		}
		return inv
	}

	t.Run("reversal flips the installment back and rolls invested down", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestInvestmentService(t, db)
		inv := createProperty(t, svc)

		if _, err := svc.PayInstallment(ctx, "user-1", inv.ID, 1, request.PayInstallmentRequest{
			ChequeNumber: "CHQ-100",
			Date:         "2025-01-05",
		}); err != nil {
			t.Fatalf("PayInstallment failed: %v", err)
		}

		entry, err := svc.UnpayInstallment(ctx, "user-1", inv.ID, 1)
		if err != nil {
			t.Fatalf("UnpayInstallment failed: %v", err)
		}
		if entry.Type != model.TxReversal {
			t.Errorf("Expected reversal entry, got %s", entry.Type)
		}
		if entry.Amount != -10000 {
			t.Errorf("Expected amount -10000, got %f", entry.Amount)
		}

		stored, err := svc.GetInvestment("user-1", inv.ID)
		if err != nil {
			t.Fatalf("GetInvestment failed: %v", err)
		}
		if stored.TotalInvested != 0 {
			t.Errorf("Expected invested 0 after reversal, got %f", stored.TotalInvested)
		}
		for _, inst := range stored.RealEstate.Installments {
			if inst.Number != 1 {
				continue
			}
			if inst.Status != model.InstallmentUnpaid {
				t.Errorf("Expected installment 1 unpaid, got %s", inst.Status)
			}
			if inst.ChequeNumber != "" {
				t.Errorf("Expected cheque number cleared, got %s", inst.ChequeNumber)
			}
		}
		// One payment entry plus one reversal entry
		testutil.AssertRowCount(t, db, "transactions", 2)
	})

	t.Run("unpaying an unpaid installment fails", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestInvestmentService(t, db)
		inv := createProperty(t, svc)

		_, err := svc.UnpayInstallment(ctx, "user-1", inv.ID, 1)
		if !errors.Is(err, apperrors.ErrInstallmentNotPaid) {
			t.Errorf("Expected not-paid error, got %v", err)
		}
	})

	t.Run("repaying after a same-day reversal takes effect", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestInvestmentService(t, db)
		inv := createProperty(t, svc)

		if _, err := svc.PayInstallment(ctx, "user-1", inv.ID, 1, request.PayInstallmentRequest{Date: "2025-01-05"}); err != nil {
			t.Fatalf("PayInstallment failed: %v", err)
		}
		if _, err := svc.UnpayInstallment(ctx, "user-1", inv.ID, 1); err != nil {
			t.Fatalf("UnpayInstallment failed: %v", err)
		}
		if _, err := svc.PayInstallment(ctx, "user-1", inv.ID, 1, request.PayInstallmentRequest{Date: "2025-01-05"}); err != nil {
			t.Fatalf("Second PayInstallment failed: %v", err)
		}

		stored, err := svc.GetInvestment("user-1", inv.ID)
		if err != nil {
			t.Fatalf("GetInvestment failed: %v", err)
		}
		if stored.TotalInvested != 10000 {
			t.Errorf("Expected invested 10000 after re-pay, got %f", stored.TotalInvested)
		}
		for _, inst := range stored.RealEstate.Installments {
			if inst.Number == 1 && inst.Status != model.InstallmentPaid {
				t.Errorf("Expected installment 1 paid again, got %s", inst.Status)
			}
		}
	})

	t.Run("rejects reversals on non-property holdings", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestInvestmentService(t, db)
		inv := testutil.NewInvestment("user-1").AsStock("COMI").Build(t, db)

		_, err := svc.UnpayInstallment(ctx, "user-1", inv.ID, 1)
		if !errors.Is(err, apperrors.ErrValidation) {
			t.Errorf("Expected validation error, got %v", err)
		}
	})
}

func TestInvestmentService_RecalculateHoldings(t *testing.T) {
	ctx := context.Background()

	t.Run("rebuilds drifted position totals from the ledger", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestInvestmentService(t, db)

		inv, err := svc.CreateInvestment(ctx, "user-1", request.CreateInvestmentRequest{
			AssetType: "stock", Name: "CIB shares", Ticker: "COMI",
		})
		if err != nil {
			t.Fatalf("CreateInvestment failed: %v", err)
		}
		if _, _, err := svc.RecordTransaction(ctx, "user-1", inv.ID, request.CreateTransactionRequest{
			Type: "buy", Quantity: 10, PricePerUnit: 5000, Date: "2025-02-01",
		}); err != nil {
			t.Fatalf("RecordTransaction failed: %v", err)
		}

		// Drift the cached columns away from what the ledger supports
		if _, err := db.Exec(
			`UPDATE investments SET total_invested = 99999, total_quantity = 77 WHERE id = ?`, inv.ID,
		); err != nil {
			t.Fatalf("Failed to drift holding: %v", err)
		}

		rebuilt, err := svc.RecalculateHoldings(ctx, "user-1")
		if err != nil {
			t.Fatalf("RecalculateHoldings failed: %v", err)
		}
		if len(rebuilt) != 1 {
			t.Fatalf("Expected 1 rebuilt holding, got %d", len(rebuilt))
		}
		if rebuilt[0].TotalInvested != 50000 {
			t.Errorf("Expected invested 50000, got %f", rebuilt[0].TotalInvested)
		}
		if rebuilt[0].TotalQuantity != 10 {
			t.Errorf("Expected quantity 10, got %f", rebuilt[0].TotalQuantity)
		}
		if rebuilt[0].AverageCost != 5000 {
			t.Errorf("Expected average cost 5000, got %f", rebuilt[0].AverageCost)
		}

		stored, err := svc.GetInvestment("user-1", inv.ID)
		if err != nil {
			t.Fatalf("GetInvestment failed: %v", err)
		}
		if stored.TotalInvested != 50000 || stored.TotalQuantity != 10 {
			t.Errorf("Expected stored totals rebuilt, got invested %f quantity %f",
				stored.TotalInvested, stored.TotalQuantity)
		}
	})

	t.Run("replays sells at the running average cost", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestInvestmentService(t, db)

		inv, err := svc.CreateInvestment(ctx, "user-1", request.CreateInvestmentRequest{
			AssetType: "stock", Name: "CIB shares", Ticker: "COMI",
		})
		if err != nil {
			t.Fatalf("CreateInvestment failed: %v", err)
		}
		steps := []request.CreateTransactionRequest{
			{Type: "buy", Quantity: 10, PricePerUnit: 100, Date: "2025-01-10"},
			{Type: "buy", Quantity: 10, PricePerUnit: 200, Date: "2025-02-10"},
			{Type: "sell", Quantity: 5, PricePerUnit: 300, Date: "2025-03-10"},
		}
		for _, step := range steps {
			if _, _, err := svc.RecordTransaction(ctx, "user-1", inv.ID, step); err != nil {
				t.Fatalf("RecordTransaction failed: %v", err)
			}
		}

		if _, err := db.Exec(
			`UPDATE investments SET total_invested = 0, total_quantity = 0, average_cost = 0 WHERE id = ?`, inv.ID,
		); err != nil {
			t.Fatalf("Failed to drift holding: %v", err)
		}

		rebuilt, err := svc.RecalculateHoldings(ctx, "user-1")
		if err != nil {
			t.Fatalf("RecalculateHoldings failed: %v", err)
		}
		if rebuilt[0].TotalQuantity != 15 {
			t.Errorf("Expected quantity 15, got %f", rebuilt[0].TotalQuantity)
		}
		if rebuilt[0].TotalInvested != 2250 {
			t.Errorf("Expected invested 2250, got %f", rebuilt[0].TotalInvested)
		}
		if rebuilt[0].AverageCost != 150 {
			t.Errorf("Expected average cost 150, got %f", rebuilt[0].AverageCost)
		}
	})

	t.Run("real-estate invested comes from the paid installments", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestInvestmentService(t, db)

		inv, err := svc.CreateInvestment(ctx, "user-1", request.CreateInvestmentRequest{
			AssetType:             "real_estate",
			Name:                  "Flat",
			InstallmentFrequency:  "monthly",
			TotalInstallmentPrice: 120000,
			InstallmentStartDate:  "2025-01-01",
			InstallmentEndDate:    "2025-12-01",
		})
		if err != nil {
			t.Fatalf("CreateInvestment failed: %v", err)
		}
		if _, err := svc.PayInstallment(ctx, "user-1", inv.ID, 1, request.PayInstallmentRequest{Date: "2025-01-05"}); err != nil {
			t.Fatalf("PayInstallment failed: %v", err)
		}
		if _, err := db.Exec(
			`UPDATE investments SET total_invested = 99999 WHERE id = ?`, inv.ID,
		); err != nil {
			t.Fatalf("Failed to drift holding: %v", err)
		}

		rebuilt, err := svc.RecalculateHoldings(ctx, "user-1")
		if err != nil {
			t.Fatalf("RecalculateHoldings failed: %v", err)
		}
		if rebuilt[0].TotalInvested != 10000 {
			t.Errorf("Expected invested 10000, got %f", rebuilt[0].TotalInvested)
		}
	})
}

func TestInvestmentService_CountDrivenSchedule(t *testing.T) {
	ctx := context.Background()

	t.Run("installment count bounds the plan and derives the end date", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestInvestmentService(t, db)

		inv, err := svc.CreateInvestment(ctx, "user-1", request.CreateInvestmentRequest{
			AssetType:             "real_estate",
			Name:                  "Flat",
			InstallmentFrequency:  "monthly",
			TotalInstallmentPrice: 120000,
			InstallmentStartDate:  "2025-01-01",
			InstallmentCount:      24,
		})
		if err != nil {
			t.Fatalf("CreateInvestment failed: %v", err)
		}
		if len(inv.RealEstate.Installments) != 24 {
			t.Fatalf("Expected 24 installments, got %d", len(inv.RealEstate.Installments))
		}
		if got := inv.RealEstate.InstallmentEndDate.Format("2006-01-02"); got != "2026-12-01" {
			t.Errorf("Expected derived end date 2026-12-01, got %s", got)
		}
	})

	t.Run("rejects a plan with both end date and count", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestInvestmentService(t, db)

		_, err := svc.CreateInvestment(ctx, "user-1", request.CreateInvestmentRequest{
			AssetType:             "real_estate",
			Name:                  "Flat",
			InstallmentFrequency:  "monthly",
			TotalInstallmentPrice: 120000,
			InstallmentStartDate:  "2025-01-01",
			InstallmentEndDate:    "2025-12-01",
			InstallmentCount:      12,
		})
		if !errors.Is(err, apperrors.ErrConfiguration) {
			t.Errorf("Expected configuration error, got %v", err)
		}
	})
}
