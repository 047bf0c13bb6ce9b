// Package gst implements GST rate resolution and item tax calculation.
package gst

import (
	"errors"

	"github.com/shopspring/decimal"
)

var ErrInvalidSlab = errors.New("invalid_tax_slab")

// Slab is a GST rate percentage drawn from the fixed statutory set.
type Slab int64

const (
	SlabZero        Slab = 0
	SlabFive        Slab = 5
	SlabTwelve      Slab = 12
	SlabEighteen    Slab = 18
	SlabTwentyEight Slab = 28
)

var validSlabs = map[Slab]struct{}{
	SlabZero:        {},
	SlabFive:        {},
	SlabTwelve:      {},
	SlabEighteen:    {},
	SlabTwentyEight: {},
}

// ParseSlab validates a raw percentage against the statutory slab set.
func ParseSlab(percent int64) (Slab, error) {
	slab := Slab(percent)
	if _, ok := validSlabs[slab]; !ok {
		return 0, ErrInvalidSlab
	}
	return slab, nil
}

func (s Slab) Valid() bool {
	_, ok := validSlabs[s]
	return ok
}

func (s Slab) Percent() int64 {
	return int64(s)
}

// Rate returns the slab as a decimal fraction, e.g. 18 -> 0.18.
func (s Slab) Rate() decimal.Decimal {
	return decimal.NewFromInt(int64(s)).Div(decimal.NewFromInt(100))
}

// Slabs returns the statutory slab set in ascending order.
func Slabs() []Slab {
	return []Slab{SlabZero, SlabFive, SlabTwelve, SlabEighteen, SlabTwentyEight}
}
