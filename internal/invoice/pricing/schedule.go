package pricing

import (
	"time"

	"github.com/shopspring/decimal"
)

// Installment is one dated entry of an EMI schedule.
type Installment struct {
	Number  int             `json:"installment_number"`
	DueDate time.Time       `json:"due_date"`
	Amount  decimal.Decimal `json:"amount"`
	Paid    bool            `json:"paid"`
}

// InstallmentCount derives how many monthly installments cover the
// balance left after the down payment. A monthly amount at or above the
// balance resolves to a single installment.
func InstallmentCount(grandTotal, downPayment, monthlyAmount decimal.Decimal) int {
	if monthlyAmount.LessThanOrEqual(decimal.Zero) {
		return 0
	}
	balance := RemainingBalance(grandTotal, downPayment)
	if balance.LessThanOrEqual(decimal.Zero) {
		return 0
	}
	return int(balance.Div(monthlyAmount).Ceil().IntPart())
}

// BuildSchedule materializes the EMI schedule. Every installment equals
// the monthly amount except the last, which absorbs the remainder so the
// schedule sums exactly to the post-down-payment balance. A count that
// would leave a non-positive final installment is recomputed from the
// balance instead of producing a zero or negative entry.
func BuildSchedule(plan PlanType, grandTotal, downPayment, monthlyAmount decimal.Decimal, startDate time.Time, count int) []Installment {
	if plan != PlanEMI || monthlyAmount.LessThanOrEqual(decimal.Zero) || startDate.IsZero() || count <= 0 {
		return nil
	}

	balance := RemainingBalance(grandTotal, downPayment)
	if balance.LessThanOrEqual(decimal.Zero) {
		return nil
	}

	final := balance.Sub(monthlyAmount.Mul(decimal.NewFromInt(int64(count - 1))))
	if final.LessThanOrEqual(decimal.Zero) {
		count = InstallmentCount(grandTotal, downPayment, monthlyAmount)
	}

	schedule := make([]Installment, 0, count)
	for i := 0; i < count; i++ {
		amount := monthlyAmount.Round(2)
		if i == count-1 {
			amount = balance.Sub(monthlyAmount.Mul(decimal.NewFromInt(int64(count - 1)))).Round(2)
		}
		schedule = append(schedule, Installment{
			Number:  i + 1,
			DueDate: startDate.AddDate(0, i, 0),
			Amount:  amount,
			Paid:    false,
		})
	}
	return schedule
}
