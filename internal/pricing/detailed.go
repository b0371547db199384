package pricing

import (
	"github.com/rzzdr/mc-scenario-pricer/pkg/models"
)

const (
	// Columns 0..2 hold the pivot/pivot scenario, one per maturity
	pivotColumns = 3
	// Non-pivot columns per maturity block
	blockWidth = 8
	// Maturities covered by the detailed layout
	detailedMaturities = 3
)

type spotVol struct {
	spot, vol int
}

// Offset inside a maturity block. This is a fixed export layout, not a formula.
var blockOffsets = map[spotVol]int{
	{1, 2}: 0,
	{1, 1}: 1,
	{1, 3}: 2,
	{2, 1}: 3,
	{2, 3}: 4,
	{3, 2}: 5,
	{3, 1}: 6,
	{3, 3}: 7,
}

// DetailedColumn maps a (spot, vol, maturity) index triple to its detailed
// slot. ok is false for triples that are not retained.
func DetailedColumn(spotIdx, volIdx, maturityIdx int) (column int, ok bool) {
	if maturityIdx < 0 || maturityIdx >= detailedMaturities {
		return 0, false
	}

	if spotIdx == models.PivotIndex && volIdx == models.PivotIndex {
		return maturityIdx, true
	}

	offset, ok := blockOffsets[spotVol{spotIdx, volIdx}]
	if !ok {
		return 0, false
	}
	return pivotColumns + blockWidth*maturityIdx + offset, true
}
