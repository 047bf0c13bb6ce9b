package gst

import "strings"

// hsnSlabs maps HSN chapter/heading prefixes to their usual GST slab.
// Lookup falls back from 8 to 6 to 4 digit prefixes, the way tariff
// classifications narrow from item to heading to chapter.
var hsnSlabs = map[string]Slab{
	"0401":     SlabZero,        // fresh milk
	"0902":     SlabFive,        // tea
	"1001":     SlabZero,        // wheat
	"1701":     SlabFive,        // cane sugar
	"3004":     SlabTwelve,      // medicaments
	"6403":     SlabEighteen,    // footwear
	"8415":     SlabTwentyEight, // air conditioners
	"8471":     SlabEighteen,    // computers
	"847130":   SlabEighteen,    // portable computers
	"85171300": SlabEighteen,    // smartphones
	"8703":     SlabTwentyEight, // motor cars
	"9403":     SlabEighteen,    // furniture
}

// SlabForHSN resolves the expected slab for an HSN code by prefix,
// trying the 8, 6 and 4 digit prefixes in order.
func SlabForHSN(code string) (Slab, bool) {
	code = strings.TrimSpace(code)
	for _, width := range []int{8, 6, 4} {
		if len(code) < width {
			continue
		}
		if slab, ok := hsnSlabs[code[:width]]; ok {
			return slab, true
		}
	}
	return 0, false
}

// SlabMismatch reports whether a declared slab disagrees with the HSN
// classification. Unknown codes never mismatch.
func SlabMismatch(code string, declared Slab) bool {
	expected, ok := SlabForHSN(code)
	if !ok {
		return false
	}
	return expected != declared
}
