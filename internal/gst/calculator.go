package gst

import (
	"strings"

	"github.com/shopspring/decimal"
)

// SupplyType classifies a transaction by place of supply.
type SupplyType string

const (
	SupplyIntraState SupplyType = "intra_state"
	SupplyInterState SupplyType = "inter_state"
)

// Breakdown partitions a tax amount into its GST components. Intra-state
// supplies carry equal CGST and SGST halves; inter-state supplies carry
// the full amount as IGST.
type Breakdown struct {
	Supply SupplyType      `json:"supply"`
	CGST   decimal.Decimal `json:"cgst"`
	SGST   decimal.Decimal `json:"sgst"`
	IGST   decimal.Decimal `json:"igst"`
}

// Amounts is the canonical result of a tax calculation. Every field is
// rounded to 2 decimal places independently.
type Amounts struct {
	Base      decimal.Decimal `json:"base_amount"`
	Tax       decimal.Decimal `json:"tax_amount"`
	Total     decimal.Decimal `json:"total_amount"`
	Breakdown Breakdown       `json:"breakdown"`
}

// Calculator resolves place of supply against a home state and computes
// per-item and per-line tax amounts. It never returns errors: invalid
// numeric input degrades to zero tax, and input validation belongs to
// the API boundary.
type Calculator struct {
	homeState string
}

func NewCalculator(homeState string) *Calculator {
	return &Calculator{homeState: normalizeState(homeState)}
}

func normalizeState(state string) string {
	return strings.ToLower(strings.TrimSpace(state))
}

// ResolveSupply classifies the transaction. Empty or unknown origin
// states are treated as inter-state.
func (c *Calculator) ResolveSupply(originState string) SupplyType {
	origin := normalizeState(originState)
	if origin != "" && origin == c.homeState {
		return SupplyIntraState
	}
	return SupplyInterState
}

// ItemTax derives base, tax and total for a single unit price.
//
// taxEnabled false, a zero slab, or a non-positive price all yield zero
// tax with total equal to the input.
func (c *Calculator) ItemTax(price decimal.Decimal, slab Slab, inclusive, taxEnabled bool, originState string) Amounts {
	supply := c.ResolveSupply(originState)

	if !taxEnabled || slab == SlabZero || price.LessThanOrEqual(decimal.Zero) {
		rounded := price.Round(2)
		return Amounts{
			Base:      rounded,
			Tax:       decimal.Zero.Round(2),
			Total:     rounded,
			Breakdown: splitTax(decimal.Zero, supply),
		}
	}

	divisor := decimal.NewFromInt(1).Add(slab.Rate())

	var base, tax decimal.Decimal
	if inclusive {
		base = price.Div(divisor).Round(2)
		tax = price.Sub(base).Round(2)
	} else {
		base = price.Round(2)
		tax = price.Mul(slab.Rate()).Round(2)
	}
	total := base.Add(tax).Round(2)

	return Amounts{
		Base:      base,
		Tax:       tax,
		Total:     total,
		Breakdown: splitTax(tax, supply),
	}
}

// LineTax multiplies the rounded per-unit amounts by quantity. Lines
// with a non-positive quantity contribute zero.
func (c *Calculator) LineTax(unitRate, quantity decimal.Decimal, slab Slab, inclusive, taxEnabled bool, originState string) Amounts {
	supply := c.ResolveSupply(originState)
	if quantity.LessThanOrEqual(decimal.Zero) {
		return Amounts{
			Base:      decimal.Zero,
			Tax:       decimal.Zero,
			Total:     decimal.Zero,
			Breakdown: splitTax(decimal.Zero, supply),
		}
	}

	unit := c.ItemTax(unitRate, slab, inclusive, taxEnabled, originState)
	base := unit.Base.Mul(quantity).Round(2)
	tax := unit.Tax.Mul(quantity).Round(2)
	total := base.Add(tax).Round(2)

	return Amounts{
		Base:      base,
		Tax:       tax,
		Total:     total,
		Breakdown: splitTax(tax, supply),
	}
}

// BaseFromInclusive backs the pre-tax base out of an all-in amount. The
// full slab rate applies regardless of supply type; the split only
// partitions the resulting tax for display. The derived base is fed back
// through the forward calculation for the canonical triple.
func (c *Calculator) BaseFromInclusive(inclusiveAmount decimal.Decimal, slab Slab, originState string) Amounts {
	return c.ItemTax(inclusiveAmount, slab, true, true, originState)
}

func splitTax(tax decimal.Decimal, supply SupplyType) Breakdown {
	b := Breakdown{
		Supply: supply,
		CGST:   decimal.Zero,
		SGST:   decimal.Zero,
		IGST:   decimal.Zero,
	}
	if tax.LessThanOrEqual(decimal.Zero) {
		return b
	}
	if supply == SupplyIntraState {
		half := tax.Div(decimal.NewFromInt(2)).Round(2)
		b.CGST = half
		b.SGST = tax.Sub(half).Round(2)
		return b
	}
	b.IGST = tax
	return b
}
