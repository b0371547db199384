package pricing

import (
	"github.com/rzzdr/mc-scenario-pricer/pkg/models"
)

// SpotAxis builds the geometric spot axis: the pivot bumped by stepPercent
// compounded once and twice in each direction.
func SpotAxis(pivot, stepPercent float64) []float64 {
	step := stepPercent / 100
	down, up := 1-step, 1+step

	axis := make([]float64, models.AxisPoints)
	axis[0] = pivot * down * down
	axis[1] = pivot * down
	axis[2] = pivot
	axis[3] = pivot * up
	axis[4] = pivot * up * up
	return axis
}

// VolAxis builds the arithmetic volatility axis. The pivot must already be a
// decimal, the step is in percentage points.
func VolAxis(pivot, stepPercent float64) []float64 {
	step := stepPercent / 100

	axis := make([]float64, models.AxisPoints)
	axis[0] = pivot - 2*step
	axis[1] = pivot - step
	axis[2] = pivot
	axis[3] = pivot + step
	axis[4] = pivot + 2*step
	return axis
}
