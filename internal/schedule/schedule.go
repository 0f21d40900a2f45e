package schedule

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/masarify/finance-tracker-backend/internal/apperrors"
	"github.com/masarify/finance-tracker-backend/internal/model"
)

// Rule describes how to lay out an installment schedule. The date range is
// bounded by exactly one of EndDate or TotalCount, and the money side by
// exactly one of InstallmentAmount or TotalPrice: with InstallmentAmount
// every installment carries that amount, with TotalPrice the amount is split
// evenly across the generated dates and the rounding residue lands on the
// last installment so the sum equals TotalPrice exactly. Rules that set both
// alternatives of either pair fail with apperrors.ErrConfiguration.
type Rule struct {
	InvestmentID      string
	Frequency         model.Frequency
	StartDate         time.Time
	EndDate           time.Time
	TotalCount        int
	InstallmentAmount float64
	TotalPrice        float64
}

// monthsPerStep returns the calendar stride for a frequency.
func monthsPerStep(f model.Frequency) int {
	switch f {
	case model.FrequencyQuarterly:
		return 3
	case model.FrequencyYearly:
		return 12
	default:
		return 1
	}
}

// dates expands the rule into its due dates, stepping from StartDate by the
// frequency until EndDate inclusive, or for exactly TotalCount steps on
// count-driven rules.
func dates(rule Rule) []time.Time {
	step := monthsPerStep(rule.Frequency)
	var out []time.Time
	if rule.TotalCount > 0 {
		for i := 0; i < rule.TotalCount; i++ {
			out = append(out, rule.StartDate.AddDate(0, i*step, 0))
		}
		return out
	}
	for i := 0; ; i++ {
		d := rule.StartDate.AddDate(0, i*step, 0)
		if d.After(rule.EndDate) {
			break
		}
		out = append(out, d)
	}
	return out
}

// Generate produces the installment rows for a rule.
//
// Parameters:
//   - rule: the schedule description; StartDate must not be after EndDate
//
// Returns:
//   - []model.Installment: unpaid installments numbered from 1, sorted by due date
//   - error: apperrors.ErrConfiguration on ambiguous rules,
//     apperrors.ErrEmptySchedule when the range yields no dates,
//     apperrors.ErrInvalidAmount when neither amount field is positive
func Generate(rule Rule) ([]model.Installment, error) {
	if rule.TotalCount > 0 && !rule.EndDate.IsZero() {
		return nil, fmt.Errorf("%w: both endDate and totalCount set", apperrors.ErrConfiguration)
	}
	if rule.TotalCount == 0 && rule.EndDate.IsZero() {
		return nil, fmt.Errorf("%w: neither endDate nor totalCount set", apperrors.ErrConfiguration)
	}
	if rule.InstallmentAmount > 0 && rule.TotalPrice > 0 {
		return nil, fmt.Errorf("%w: both installmentAmount and totalPrice set", apperrors.ErrConfiguration)
	}

	due := dates(rule)
	if len(due) == 0 {
		return nil, apperrors.ErrEmptySchedule
	}

	amounts, err := splitAmounts(rule, len(due))
	if err != nil {
		return nil, err
	}

	installments := make([]model.Installment, len(due))
	for i, d := range due {
		installments[i] = model.Installment{
			ID:           uuid.New().String(),
			InvestmentID: rule.InvestmentID,
			Number:       i + 1,
			Amount:       amounts[i],
			DueDate:      d,
			Status:       model.InstallmentUnpaid,
		}
	}
	return installments, nil
}

// splitAmounts resolves the per-installment amounts for n installments.
// Decimal arithmetic keeps the TotalPrice split exact: every installment is
// the 2dp-rounded even share except the last, which absorbs the residue.
func splitAmounts(rule Rule, n int) ([]float64, error) {
	switch {
	case rule.TotalPrice > 0:
		total := decimal.NewFromFloat(rule.TotalPrice)
		per := total.Div(decimal.NewFromInt(int64(n))).Round(2)
		last := total.Sub(per.Mul(decimal.NewFromInt(int64(n - 1))))
		amounts := make([]float64, n)
		for i := range amounts {
			amounts[i], _ = per.Float64()
		}
		amounts[n-1], _ = last.Float64()
		return amounts, nil
	case rule.InstallmentAmount > 0:
		amounts := make([]float64, n)
		for i := range amounts {
			amounts[i] = rule.InstallmentAmount
		}
		return amounts, nil
	default:
		return nil, apperrors.ErrInvalidAmount
	}
}

// Regenerate rebuilds a schedule from a rule while preserving what the user
// already recorded: an existing installment matching a new row by number and
// due date keeps its ID, status, cheque number and description. Paid
// installments that fall outside the new range survive, as do down-payment
// and maintenance rows, which are not part of the periodic schedule.
func Regenerate(rule Rule, existing []model.Installment) ([]model.Installment, error) {
	fresh, err := Generate(rule)
	if err != nil {
		return nil, err
	}

	type key struct {
		number int
		due    string
	}
	prior := make(map[key]model.Installment, len(existing))
	for _, inst := range existing {
		if inst.IsDownPayment || inst.IsMaintenance {
			continue
		}
		prior[key{inst.Number, inst.DueDate.Format("2006-01-02")}] = inst
	}

	matched := make(map[string]bool, len(fresh))
	for i, inst := range fresh {
		k := key{inst.Number, inst.DueDate.Format("2006-01-02")}
		if old, ok := prior[k]; ok {
			fresh[i].ID = old.ID
			fresh[i].Status = old.Status
			fresh[i].ChequeNumber = old.ChequeNumber
			fresh[i].Description = old.Description
			matched[old.ID] = true
		}
	}

	for _, inst := range existing {
		if matched[inst.ID] {
			continue
		}
		if inst.IsDownPayment || inst.IsMaintenance || inst.Status == model.InstallmentPaid {
			fresh = append(fresh, inst)
		}
	}

	Sort(fresh)
	return fresh, nil
}

// Sort orders installments by due date, then by number for same-day rows.
func Sort(installments []model.Installment) {
	sort.SliceStable(installments, func(i, j int) bool {
		if installments[i].DueDate.Equal(installments[j].DueDate) {
			return installments[i].Number < installments[j].Number
		}
		return installments[i].DueDate.Before(installments[j].DueDate)
	})
}

// Sum returns the exact 2dp total of the installment amounts.
func Sum(installments []model.Installment) float64 {
	total := decimal.Zero
	for _, inst := range installments {
		total = total.Add(decimal.NewFromFloat(inst.Amount))
	}
	f, _ := total.Float64()
	return f
}

// MonthlyInterest returns the expected monthly interest payout of a debt
// instrument, rounded to 2dp: principal * annualRatePct/100 / 12.
func MonthlyInterest(principal, annualRatePct float64) float64 {
	v := decimal.NewFromFloat(principal).
		Mul(decimal.NewFromFloat(annualRatePct)).
		Div(decimal.NewFromInt(1200)).
		Round(2)
	f, _ := v.Float64()
	return f
}

// YearlyInterest returns the expected yearly interest payout of a debt
// instrument, rounded to 2dp.
func YearlyInterest(principal, annualRatePct float64) float64 {
	v := decimal.NewFromFloat(principal).
		Mul(decimal.NewFromFloat(annualRatePct)).
		Div(decimal.NewFromInt(100)).
		Round(2)
	f, _ := v.Float64()
	return f
}
