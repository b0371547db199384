package pricing

import (
	"context"
	"math"
	"math/rand/v2"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/rzzdr/mc-scenario-pricer/pkg/models"
	"github.com/rzzdr/mc-scenario-pricer/pkg/utils/errors"
	"github.com/rzzdr/mc-scenario-pricer/pkg/utils/logger"
	"github.com/rzzdr/mc-scenario-pricer/pkg/utils/pools"
)

// Run outcome labels reported to the metrics recorder
const (
	RunStatusOK       = "ok"
	RunStatusInvalid  = "invalid"
	RunStatusFailed   = "failed"
	RunStatusCanceled = "canceled"
)

// EngineConfig contains configuration for the simulation engine
type EngineConfig struct {
	// Workers bounds the number of tuples simulated concurrently
	Workers int
	// Seed fixes the random streams of every run; 0 draws a fresh seed per run
	Seed uint64
	// MaxPaths is the largest accepted path count
	MaxPaths int
	// MaxRows is the largest accepted row count, 25·maturities·strikes
	MaxRows int
}

// MetricsRecorder receives engine measurements
type MetricsRecorder interface {
	RecordRun(status string, latency time.Duration)
	RecordTuple(paths, valuations int, latency time.Duration)
	RecordCentralMean(mean float64)
}

// ProgressObserver is notified after each simulated tuple. It is called from
// worker goroutines and must be safe for concurrent use.
type ProgressObserver interface {
	OnProgress(event models.ProgressEvent)
}

// Engine prices a European call over the full spot × vol × maturity × strike grid
type Engine struct {
	config   EngineConfig
	metrics  MetricsRecorder
	observer ProgressObserver
	buffers  *pools.Float64SlicePool
	log      *logger.Logger
}

// NewEngine creates a new simulation engine. recorder may be nil.
func NewEngine(config EngineConfig, recorder MetricsRecorder) *Engine {
	if config.Workers <= 0 {
		config.Workers = runtime.GOMAXPROCS(0)
	}

	if config.MaxPaths <= 0 {
		config.MaxPaths = DefaultMaxPaths
	}

	if config.MaxRows <= 0 {
		config.MaxRows = DefaultMaxRows
	}

	if recorder == nil {
		recorder = noopRecorder{}
	}

	return &Engine{
		config:  config,
		metrics: recorder,
		buffers: pools.NewFloat64SlicePool(),
		log:     logger.GetLogger("pricing.engine"),
	}
}

// SetObserver registers a progress observer for subsequent runs
func (e *Engine) SetObserver(observer ProgressObserver) {
	e.observer = observer
}

// Run executes one simulation with the configured seed
func (e *Engine) Run(ctx context.Context, params models.SimulationParameters) (*models.SimulationResult, error) {
	return e.RunWithSeed(ctx, params, e.config.Seed)
}

// RunWithSeed executes one simulation. Identical parameters and a non-zero
// seed always give identical results whatever the worker count.
func (e *Engine) RunWithSeed(ctx context.Context, params models.SimulationParameters, seed uint64) (*models.SimulationResult, error) {
	startTime := time.Now()
	params = params.Clone()

	if err := ValidateParameters(params, Limits{MaxPaths: e.config.MaxPaths, MaxRows: e.config.MaxRows}); err != nil {
		e.log.Warnf("Rejected simulation parameters: %v", err)
		e.metrics.RecordRun(RunStatusInvalid, time.Since(startTime))
		return nil, err
	}

	if seed == 0 {
		seed = rand.Uint64() | 1
	}

	result := &models.SimulationResult{
		RunID:      uuid.NewString(),
		Seed:       seed,
		StartedAt:  startTime,
		Parameters: params,
		SpotAxis:   SpotAxis(params.Spot, params.SpotStep),
		VolAxis:    VolAxis(params.Volatility/100, params.VolStep),
	}

	total := params.Tuples()
	result.Rows = make([]models.ScenarioRow, total*len(params.Strikes))

	e.log.Infof("Starting run %s: %d tuples x %d strikes, %d paths, %d workers, seed %d",
		result.RunID, total, len(params.Strikes), params.Paths, e.config.Workers, seed)

	var done atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.config.Workers)

	for tuple := 0; tuple < total; tuple++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := e.runTuple(gctx, result, tuple); err != nil {
				return err
			}
			e.notify(result, tuple, int(done.Add(1)), total)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, e.fail(startTime, result.RunID, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, e.fail(startTime, result.RunID, err)
	}

	forward := params.Spot * math.Exp((params.RiskFreeRate-params.DividendYield)/100*params.Maturities[0])
	result.CentralSummary = Summarize(result.Central, forward)
	result.Duration = time.Since(startTime)

	e.metrics.RecordCentralMean(result.CentralSummary.Mean)
	e.metrics.RecordRun(RunStatusOK, result.Duration)
	e.log.Infof("Completed run %s in %v: %d rows, %d detailed slots, central mean %.4f",
		result.RunID, result.Duration, len(result.Rows), result.PopulatedSlots(), result.CentralSummary.Mean)

	return result, nil
}

// runTuple simulates one (spot, vol, maturity) tuple and values every strike on
// its sample. It writes only the rows and slots owned by the tuple.
func (e *Engine) runTuple(ctx context.Context, result *models.SimulationResult, tuple int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tupleStart := time.Now()
	params := &result.Parameters
	m := len(params.Maturities)
	spotIdx, volIdx, maturityIdx := tuple/(models.AxisPoints*m), (tuple/m)%models.AxisPoints, tuple%m

	r := params.RiskFreeRate / 100
	q := params.DividendYield / 100
	in := PathInput{
		Spot:          result.SpotAxis[spotIdx],
		Volatility:    result.VolAxis[volIdx],
		Maturity:      params.Maturities[maturityIdx],
		RiskFreeRate:  r,
		DividendYield: q,
	}

	central := spotIdx == models.PivotIndex && volIdx == models.PivotIndex && maturityIdx == 0
	column, detailed := DetailedColumn(spotIdx, volIdx, maturityIdx)

	// Samples that outlive the tuple get their own array, the rest are scratch
	var prices []float64
	if central || detailed {
		prices = make([]float64, params.Paths)
	} else {
		prices = e.buffers.Get(params.Paths)
		defer e.buffers.Put(prices)
	}

	if err := SimulateTerminalPricesInto(NewStreamSampler(result.Seed, uint64(tuple)), in, prices); err != nil {
		return errors.Wrapf(err, "simulating tuple (%d,%d,%d)", spotIdx, volIdx, maturityIdx)
	}

	base := tuple * len(params.Strikes)
	for strikeIdx, strike := range params.Strikes {
		valuation, err := ValueCall(prices, strike, in.Maturity, r)
		if err != nil {
			return errors.Wrapf(err, "valuing tuple (%d,%d,%d) strike %g", spotIdx, volIdx, maturityIdx, strike)
		}

		result.Rows[base+strikeIdx] = models.ScenarioRow{
			SpotIndex:     spotIdx,
			VolIndex:      volIdx,
			MaturityIndex: maturityIdx,
			StrikeIndex:   strikeIdx,
			Spot:          in.Spot,
			Volatility:    in.Volatility,
			Maturity:      in.Maturity,
			Strike:        strike,
			Price:         valuation.Price,
			StdError:      valuation.StdError,
			ClosedForm:    BlackScholesCall(in.Spot, strike, in.Volatility, in.Maturity, r, q),
		}
	}

	// The sample is shared read-only between the central and detailed views
	if central {
		result.Central = prices
	}

	if detailed {
		result.Detailed[column] = &models.DetailedSample{
			Column:        column,
			SpotIndex:     spotIdx,
			VolIndex:      volIdx,
			MaturityIndex: maturityIdx,
			Spot:          in.Spot,
			Volatility:    in.Volatility,
			Maturity:      in.Maturity,
			Prices:        prices,
		}
	}

	e.metrics.RecordTuple(params.Paths, len(params.Strikes), time.Since(tupleStart))
	e.log.Debugf("Tuple (%d,%d,%d) done in %v", spotIdx, volIdx, maturityIdx, time.Since(tupleStart))
	return nil
}

func (e *Engine) notify(result *models.SimulationResult, tuple, done, total int) {
	if e.observer == nil {
		return
	}

	m := len(result.Parameters.Maturities)
	e.observer.OnProgress(models.ProgressEvent{
		RunID:         result.RunID,
		Done:          done,
		Total:         total,
		SpotIndex:     tuple / (models.AxisPoints * m),
		VolIndex:      (tuple / m) % models.AxisPoints,
		MaturityIndex: tuple % m,
	})
}

// fail classifies a run error and records it; no partial result escapes
func (e *Engine) fail(startTime time.Time, runID string, err error) error {
	status := RunStatusFailed
	if errors.As(err, new(*errors.AppError)) {
		err = errors.Wrapf(err, "run %s failed", runID)
	} else if err == context.Canceled || err == context.DeadlineExceeded {
		status = RunStatusCanceled
		err = errors.WithType(err, errors.ErrorTypeCanceled, "run "+runID+" canceled")
	} else {
		err = errors.WithType(err, errors.ErrorTypeInternal, "run "+runID+" failed")
	}

	e.log.Errorf("Simulation run failed: %v", err)
	e.metrics.RecordRun(status, time.Since(startTime))
	return err
}

type noopRecorder struct{}

func (noopRecorder) RecordRun(string, time.Duration)     {}
func (noopRecorder) RecordTuple(int, int, time.Duration) {}
func (noopRecorder) RecordCentralMean(float64)           {}
