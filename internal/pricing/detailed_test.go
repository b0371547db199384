package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rzzdr/mc-scenario-pricer/pkg/models"
)

func TestDetailedColumnTable(t *testing.T) {
	cases := []struct {
		spot, vol, maturity int
		column              int
	}{
		{2, 2, 0, 0},
		{2, 2, 1, 1},
		{2, 2, 2, 2},
		{1, 2, 0, 3},
		{1, 1, 0, 4},
		{1, 3, 0, 5},
		{2, 1, 0, 6},
		{2, 3, 0, 7},
		{3, 2, 0, 8},
		{3, 1, 0, 9},
		{3, 3, 0, 10},
		{1, 2, 1, 11},
		{3, 3, 1, 18},
		{1, 2, 2, 19},
		{3, 3, 2, 26},
	}

	for _, tc := range cases {
		column, ok := DetailedColumn(tc.spot, tc.vol, tc.maturity)
		require.True(t, ok, "(%d,%d,%d)", tc.spot, tc.vol, tc.maturity)
		assert.Equal(t, tc.column, column, "(%d,%d,%d)", tc.spot, tc.vol, tc.maturity)
	}
}

func TestDetailedColumnUnmapped(t *testing.T) {
	for _, idx := range [][3]int{
		{0, 2, 0}, {4, 2, 0}, {2, 0, 1}, {2, 4, 2}, {0, 0, 0}, {4, 4, 1}, {1, 0, 0}, {3, 4, 2},
		// only three maturities have slots
		{2, 2, 3}, {1, 1, 5},
	} {
		_, ok := DetailedColumn(idx[0], idx[1], idx[2])
		assert.False(t, ok, "%v", idx)
	}
}

func TestDetailedColumnIsPermutation(t *testing.T) {
	seen := make(map[int]bool)
	mapped := 0
	for s := 0; s < models.AxisPoints; s++ {
		for v := 0; v < models.AxisPoints; v++ {
			for m := 0; m < 3; m++ {
				column, ok := DetailedColumn(s, v, m)
				if !ok {
					continue
				}
				mapped++
				require.False(t, seen[column], "column %d produced twice", column)
				seen[column] = true
			}
		}
	}

	assert.Equal(t, models.DetailedSlots, mapped)
	for c := 0; c < models.DetailedSlots; c++ {
		assert.True(t, seen[c], "column %d never produced", c)
	}
}

func TestDetailedColumnPerMaturityCount(t *testing.T) {
	for m := 0; m < 3; m++ {
		mapped := 0
		for s := 0; s < models.AxisPoints; s++ {
			for v := 0; v < models.AxisPoints; v++ {
				if _, ok := DetailedColumn(s, v, m); ok {
					mapped++
				}
			}
		}
		assert.Equal(t, 9, mapped)
	}
}
