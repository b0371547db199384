package models

import (
	"time"
)

const (
	// Number of points on every scenario axis
	AxisPoints = 5
	// Index of the pivot on every scenario axis
	PivotIndex = 2
	// Number of retained detailed path samples
	DetailedSlots = 27
)

// Inputs of one simulation run. Percent fields are expressed as in the input
// surface (3 means 3%), the engine converts them.
type SimulationParameters struct {
	RiskFreeRate  float64   `json:"r" mapstructure:"r"`
	DividendYield float64   `json:"q" mapstructure:"q"`
	Spot          float64   `json:"s0" mapstructure:"s0"`
	SpotStep      float64   `json:"s0_step" mapstructure:"s0_step"`
	Volatility    float64   `json:"vol" mapstructure:"vol"`
	VolStep       float64   `json:"vol_step" mapstructure:"vol_step"`
	Paths         int       `json:"n_paths" mapstructure:"n_paths"`
	Maturities    []float64 `json:"maturities" mapstructure:"maturities"`
	Strikes       []float64 `json:"strikes" mapstructure:"strikes"`
}

// Returns a deep copy so a run never shares slices with its caller
func (p SimulationParameters) Clone() SimulationParameters {
	out := p
	out.Maturities = append([]float64(nil), p.Maturities...)
	out.Strikes = append([]float64(nil), p.Strikes...)
	return out
}

// Tuples reports the number of (spot, vol, maturity) combinations of a run
func (p SimulationParameters) Tuples() int {
	return AxisPoints * AxisPoints * len(p.Maturities)
}

// One priced outcome of the scenario grid
type ScenarioRow struct {
	SpotIndex     int     `json:"spot_index"`
	VolIndex      int     `json:"vol_index"`
	MaturityIndex int     `json:"maturity_index"`
	StrikeIndex   int     `json:"strike_index"`
	Spot          float64 `json:"spot"`
	Volatility    float64 `json:"vol"`
	Maturity      float64 `json:"maturity"`
	Strike        float64 `json:"strike"`
	Price         float64 `json:"price"`
	StdError      float64 `json:"std_error"`
	ClosedForm    float64 `json:"closed_form"`
}

// A retained terminal-price sample for one designated (spot, vol, maturity) triple
type DetailedSample struct {
	Column        int       `json:"column"`
	SpotIndex     int       `json:"spot_index"`
	VolIndex      int       `json:"vol_index"`
	MaturityIndex int       `json:"maturity_index"`
	Spot          float64   `json:"spot"`
	Volatility    float64   `json:"vol"`
	Maturity      float64   `json:"maturity"`
	Prices        []float64 `json:"prices,omitempty"`
}

// Descriptive statistics of a terminal-price sample
type DistributionSummary struct {
	Count   int     `json:"count"`
	Mean    float64 `json:"mean"`
	StdDev  float64 `json:"std_dev"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	P01     float64 `json:"p01"`
	P05     float64 `json:"p05"`
	P50     float64 `json:"p50"`
	P95     float64 `json:"p95"`
	P99     float64 `json:"p99"`
	Forward float64 `json:"forward"`
}

// Complete output of one simulation run
type SimulationResult struct {
	RunID      string               `json:"run_id"`
	Seed       uint64               `json:"seed"`
	StartedAt  time.Time            `json:"started_at"`
	Duration   time.Duration        `json:"duration"`
	Parameters SimulationParameters `json:"parameters"`
	SpotAxis   []float64            `json:"spot_axis"`
	VolAxis    []float64            `json:"vol_axis"`
	Rows       []ScenarioRow        `json:"rows"`

	// Pivot spot, pivot vol, first maturity
	Central        []float64           `json:"central,omitempty"`
	CentralSummary DistributionSummary `json:"central_summary"`

	// nil entries are slots no triple mapped to
	Detailed [DetailedSlots]*DetailedSample `json:"detailed"`
}

// Row returns the row for the given indices without any value matching
func (r *SimulationResult) Row(spotIdx, volIdx, maturityIdx, strikeIdx int) (ScenarioRow, bool) {
	m, k := len(r.Parameters.Maturities), len(r.Parameters.Strikes)
	if spotIdx < 0 || spotIdx >= AxisPoints || volIdx < 0 || volIdx >= AxisPoints ||
		maturityIdx < 0 || maturityIdx >= m || strikeIdx < 0 || strikeIdx >= k {
		return ScenarioRow{}, false
	}

	i := ((spotIdx*AxisPoints+volIdx)*m+maturityIdx)*k + strikeIdx
	if i >= len(r.Rows) {
		return ScenarioRow{}, false
	}
	return r.Rows[i], true
}

// PopulatedSlots counts the non-empty detailed slots
func (r *SimulationResult) PopulatedSlots() int {
	n := 0
	for _, s := range r.Detailed {
		if s != nil {
			n++
		}
	}
	return n
}

// Emitted after every completed (spot, vol, maturity) tuple
type ProgressEvent struct {
	RunID         string `json:"run_id"`
	Done          int    `json:"done"`
	Total         int    `json:"total"`
	SpotIndex     int    `json:"spot_index"`
	VolIndex      int    `json:"vol_index"`
	MaturityIndex int    `json:"maturity_index"`
}

// Compact view of a run without samples or rows
type RunSummary struct {
	RunID          string               `json:"run_id"`
	Seed           uint64               `json:"seed"`
	StartedAt      time.Time            `json:"started_at"`
	DurationMs     int64                `json:"duration_ms"`
	Parameters     SimulationParameters `json:"parameters"`
	SpotAxis       []float64            `json:"spot_axis"`
	VolAxis        []float64            `json:"vol_axis"`
	RowCount       int                  `json:"row_count"`
	PopulatedSlots int                  `json:"populated_slots"`
	CentralSummary DistributionSummary  `json:"central_summary"`
}

// Summary builds the compact view of the run
func (r *SimulationResult) Summary() RunSummary {
	return RunSummary{
		RunID:          r.RunID,
		Seed:           r.Seed,
		StartedAt:      r.StartedAt,
		DurationMs:     r.Duration.Milliseconds(),
		Parameters:     r.Parameters,
		SpotAxis:       r.SpotAxis,
		VolAxis:        r.VolAxis,
		RowCount:       len(r.Rows),
		PopulatedSlots: r.PopulatedSlots(),
		CentralSummary: r.CentralSummary,
	}
}
