// Package pricing aggregates line items into invoice totals and derives
// payment-plan figures.
package pricing

import (
	"errors"

	"github.com/shopspring/decimal"
	"github.com/vyapardesk/vyapardesk/internal/gst"
)

var ErrInvalidPaymentPlan = errors.New("invalid_payment_plan")

// PlanType enumerates how an invoice is settled.
type PlanType string

const (
	PlanPaid         PlanType = "PAID"
	PlanPending      PlanType = "PENDING"
	PlanEMI          PlanType = "EMI"
	PlanFinance      PlanType = "FINANCE"
	PlanBankTransfer PlanType = "BANK_TRANSFER"
)

func ParsePlanType(raw string) (PlanType, error) {
	switch PlanType(raw) {
	case PlanPaid, PlanPending, PlanEMI, PlanFinance, PlanBankTransfer:
		return PlanType(raw), nil
	default:
		return "", ErrInvalidPaymentPlan
	}
}

// CarriesDownPayment reports whether the plan keeps an outstanding
// balance after an up-front payment.
func (p PlanType) CarriesDownPayment() bool {
	switch p {
	case PlanPending, PlanEMI, PlanFinance, PlanBankTransfer:
		return true
	default:
		return false
	}
}

// LineInput is the monetary slice of a line item fed to the aggregator.
type LineInput struct {
	Quantity  decimal.Decimal
	UnitRate  decimal.Decimal
	Slab      gst.Slab
	Inclusive bool
}

// BulkOverride replaces all per-item pricing with one flat price.
type BulkOverride struct {
	TotalPrice decimal.Decimal
	Slab       gst.Slab
	Inclusive  bool
}

// Totals is the derived monetary summary of an invoice.
type Totals struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	Tax       decimal.Decimal `json:"tax_amount"`
	Grand     decimal.Decimal `json:"grand_total"`
	Breakdown gst.Breakdown   `json:"breakdown"`
}

// Aggregate computes invoice totals. With a bulk override its flat price
// is the sole monetary input and line items contribute nothing; otherwise
// each line with a positive quantity and rate is taxed per unit and
// accumulated. Pure: identical inputs always yield identical totals.
func Aggregate(calc *gst.Calculator, items []LineInput, bulk *BulkOverride, originState string, taxEnabled bool) Totals {
	supply := calc.ResolveSupply(originState)

	if bulk != nil {
		amounts := calc.ItemTax(bulk.TotalPrice, bulk.Slab, bulk.Inclusive, taxEnabled, originState)
		return Totals{
			Subtotal:  amounts.Base,
			Tax:       amounts.Tax,
			Grand:     amounts.Base.Add(amounts.Tax).Round(2),
			Breakdown: amounts.Breakdown,
		}
	}

	subtotal := decimal.Zero
	tax := decimal.Zero
	cgst := decimal.Zero
	sgst := decimal.Zero
	igst := decimal.Zero

	for _, item := range items {
		if item.Quantity.LessThanOrEqual(decimal.Zero) || item.UnitRate.LessThanOrEqual(decimal.Zero) {
			continue
		}
		line := calc.LineTax(item.UnitRate, item.Quantity, item.Slab, item.Inclusive, taxEnabled, originState)
		subtotal = subtotal.Add(line.Base)
		tax = tax.Add(line.Tax)
		cgst = cgst.Add(line.Breakdown.CGST)
		sgst = sgst.Add(line.Breakdown.SGST)
		igst = igst.Add(line.Breakdown.IGST)
	}

	subtotal = subtotal.Round(2)
	tax = tax.Round(2)

	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Grand:    subtotal.Add(tax).Round(2),
		Breakdown: gst.Breakdown{
			Supply: supply,
			CGST:   cgst.Round(2),
			SGST:   sgst.Round(2),
			IGST:   igst.Round(2),
		},
	}
}

// RemainingBalance is the outstanding amount after the down payment,
// floored at zero.
func RemainingBalance(grandTotal, downPayment decimal.Decimal) decimal.Decimal {
	balance := grandTotal.Sub(downPayment).Round(2)
	if balance.IsNegative() {
		return decimal.Zero
	}
	return balance
}
