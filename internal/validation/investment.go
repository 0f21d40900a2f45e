package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/masarify/finance-tracker-backend/internal/api/request"
	"github.com/masarify/finance-tracker-backend/internal/model"
)

// ValidateCreateInvestment validates an investment creation request.
// The common fields are always checked; the asset-class section matching
// assetType is checked on top.
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateCreateInvestment(req request.CreateInvestmentRequest) error {
	errors := make(map[string]string)

	assetType := model.AssetType(req.AssetType)
	if strings.TrimSpace(req.AssetType) == "" {
		errors["assetType"] = "assetType is required"
	} else if !model.ValidAssetTypes[assetType] {
		errors["assetType"] = fmt.Sprintf("invalid assetType: %s", req.AssetType)
	}

	if strings.TrimSpace(req.Name) == "" {
		errors["name"] = "name is required"
	}

	switch assetType {
	case model.AssetStock:
		if strings.TrimSpace(req.Ticker) == "" {
			errors["ticker"] = "ticker is required"
		}
	case model.AssetGold:
		if !model.ValidGoldTypes[model.GoldType(req.GoldType)] {
			errors["goldType"] = fmt.Sprintf("invalid goldType: %s", req.GoldType)
		}
	case model.AssetCurrency:
		if len(req.CurrencyCode) != 3 {
			errors["currencyCode"] = "currencyCode must be a 3-letter ISO code"
		}
	case model.AssetDebt:
		validateDebtSection(req, errors)
	case model.AssetRealEstate:
		validateRealEstateSection(req, errors)
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

func validateDebtSection(req request.CreateInvestmentRequest, errors map[string]string) {
	if !model.ValidDebtSubTypes[model.DebtSubType(req.DebtSubType)] {
		errors["debtSubType"] = fmt.Sprintf("invalid debtSubType: %s", req.DebtSubType)
	}
	if req.InterestRate < 0.0 {
		errors["interestRate"] = "interestRate cannot be negative"
	}
	if !model.ValidFrequencies[model.Frequency(req.InterestFrequency)] {
		errors["interestFrequency"] = fmt.Sprintf("invalid interestFrequency: %s", req.InterestFrequency)
	}
	if strings.TrimSpace(req.MaturityDate) == "" {
		errors["maturityDate"] = "maturityDate is required"
	} else if _, err := time.Parse("2006-01-02", req.MaturityDate); err != nil {
		errors["maturityDate"] = err.Error()
	}
	if req.Principal <= 0.0 {
		errors["principal"] = "principal must be positive"
	}
	if req.PurchaseDate != "" {
		if _, err := time.Parse("2006-01-02", req.PurchaseDate); err != nil {
			errors["purchaseDate"] = err.Error()
		}
	}
}

func validateRealEstateSection(req request.CreateInvestmentRequest, errors map[string]string) {
	if !model.ValidFrequencies[model.Frequency(req.InstallmentFrequency)] {
		errors["installmentFrequency"] = fmt.Sprintf("invalid installmentFrequency: %s", req.InstallmentFrequency)
	}
	validateScheduleBounds(req.TotalInstallmentPrice, req.InstallmentAmount,
		req.InstallmentEndDate, req.InstallmentCount, errors)
	validateDateField(req.InstallmentStartDate, "installmentStartDate", true, errors)
	validateDateField(req.InstallmentEndDate, "installmentEndDate", false, errors)
	validateDateField(req.MaintenancePaymentDate, "maintenancePaymentDate", false, errors)
	if req.DownPayment < 0.0 {
		errors["downPayment"] = "downPayment cannot be negative"
	}
	if req.MaintenanceAmount < 0.0 {
		errors["maintenanceAmount"] = "maintenanceAmount cannot be negative"
	}
}

// ValidateUpdateSchedule validates a schedule regeneration request.
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateUpdateSchedule(req request.UpdateScheduleRequest) error {
	errors := make(map[string]string)

	if !model.ValidFrequencies[model.Frequency(req.InstallmentFrequency)] {
		errors["installmentFrequency"] = fmt.Sprintf("invalid installmentFrequency: %s", req.InstallmentFrequency)
	}
	validateScheduleBounds(req.TotalInstallmentPrice, req.InstallmentAmount,
		req.InstallmentEndDate, req.InstallmentCount, errors)
	validateDateField(req.InstallmentStartDate, "installmentStartDate", true, errors)
	validateDateField(req.InstallmentEndDate, "installmentEndDate", false, errors)

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

// validateScheduleBounds enforces the two either-or pairs of a schedule rule:
// exactly one of totalInstallmentPrice/installmentAmount and exactly one of
// installmentEndDate/installmentCount.
func validateScheduleBounds(totalPrice, installmentAmount float64, endDate string, count int, errors map[string]string) {
	switch {
	case totalPrice <= 0.0 && installmentAmount <= 0.0:
		errors["totalInstallmentPrice"] = "either totalInstallmentPrice or installmentAmount must be positive"
	case totalPrice > 0.0 && installmentAmount > 0.0:
		errors["totalInstallmentPrice"] = "totalInstallmentPrice and installmentAmount are mutually exclusive"
	}
	switch {
	case strings.TrimSpace(endDate) == "" && count <= 0:
		errors["installmentEndDate"] = "either installmentEndDate or installmentCount is required"
	case strings.TrimSpace(endDate) != "" && count > 0:
		errors["installmentEndDate"] = "installmentEndDate and installmentCount are mutually exclusive"
	}
	if count < 0 {
		errors["installmentCount"] = "installmentCount cannot be negative"
	}
}

func validateDateField(value, field string, required bool, errors map[string]string) {
	if strings.TrimSpace(value) == "" {
		if required {
			errors[field] = field + " is required"
		}
		return
	}
	if _, err := time.Parse("2006-01-02", value); err != nil {
		errors[field] = err.Error()
	}
}
