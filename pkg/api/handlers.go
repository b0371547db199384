package api

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rzzdr/mc-scenario-pricer/pkg/models"
	"github.com/rzzdr/mc-scenario-pricer/pkg/utils/errors"
	"github.com/rzzdr/mc-scenario-pricer/pkg/utils/logger"
)

const publishTimeout = 30 * time.Second

// SimulationRequest is the body of a run request. Omitted fields fall back
// to the configured defaults; a zero seed uses the engine's seed policy.
type SimulationRequest struct {
	models.SimulationParameters
	Seed uint64 `json:"seed"`
}

// CentralResponse carries the central sample and its summary
type CentralResponse struct {
	RunID   string                     `json:"run_id"`
	Summary models.DistributionSummary `json:"summary"`
	Prices  []float64                  `json:"prices,omitempty"`
}

// RowsResponse carries a filtered set of rows
type RowsResponse struct {
	RunID string               `json:"run_id"`
	Count int                  `json:"count"`
	Rows  []models.ScenarioRow `json:"rows"`
}

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	simulator  Simulator
	store      ResultStore
	publisher  Publisher
	notifier   Notifier
	recorder   Recorder
	defaults   models.SimulationParameters
	runTimeout time.Duration
	maxBody    int64
	log        *logger.Logger
}

// CreateHandlers creates new API handlers
func CreateHandlers(config Config, deps Dependencies) *Handlers {
	return &Handlers{
		simulator:  deps.Simulator,
		store:      deps.Store,
		publisher:  deps.Publisher,
		notifier:   deps.Notifier,
		recorder:   deps.Recorder,
		defaults:   config.DefaultParameters,
		runTimeout: config.RunTimeout,
		maxBody:    config.MaxBodyBytes,
		log:        logger.GetLogger("api.handlers"),
	}
}

// HealthCheckHandler handles health check requests
func (h *Handlers) HealthCheckHandler(c *gin.Context) {
	body := gin.H{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	}

	if latest, err := h.store.Latest(); err == nil {
		body["latest_run_id"] = latest.RunID
	}

	c.JSON(http.StatusOK, body)
}

// RunSimulationHandler runs a simulation, stores it as the latest run and
// publishes it
func (h *Handlers) RunSimulationHandler(c *gin.Context) {
	if h.maxBody > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBody)
	}

	req := SimulationRequest{SimulationParameters: h.defaults.Clone()}
	if err := c.ShouldBindJSON(&req); err != nil && !stderrors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			h.respondError(c, errors.ResourceExhausted(
				fmt.Sprintf("request body exceeds the supported maximum of %d bytes", tooLarge.Limit)))
			return
		}
		h.respondError(c, errors.InvalidArgumentf("invalid simulation request: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.runTimeout)
	defer cancel()

	var (
		result *models.SimulationResult
		err    error
	)
	if req.Seed != 0 {
		result, err = h.simulator.RunWithSeed(ctx, req.SimulationParameters, req.Seed)
	} else {
		result, err = h.simulator.Run(ctx, req.SimulationParameters)
	}
	if err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.store.Save(result); err != nil {
		h.respondError(c, err)
		return
	}

	summary := result.Summary()
	h.publish(result)
	if h.notifier != nil {
		h.notifier.BroadcastRunCompleted(summary)
	}

	c.JSON(http.StatusOK, summary)
}

// publish failures are logged and counted but never fail the request
func (h *Handlers) publish(result *models.SimulationResult) {
	if h.publisher == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	status := "ok"
	if err := h.publisher.Publish(ctx, result); err != nil {
		status = "error"
		h.log.With("run_id", result.RunID, "rows", len(result.Rows)).Warnf("Failed to publish run: %v", err)
	}
	if h.recorder != nil {
		h.recorder.RecordPublish(status)
	}
}

// LatestSummaryHandler returns the summary of the latest run
func (h *Handlers) LatestSummaryHandler(c *gin.Context) {
	result, err := h.store.Latest()
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result.Summary())
}

// LatestRowsHandler returns rows of the latest run, optionally filtered by
// spot_index, vol_index, maturity_index and strike_index
func (h *Handlers) LatestRowsHandler(c *gin.Context) {
	result, err := h.store.Latest()
	if err != nil {
		h.respondError(c, err)
		return
	}

	filters := make(map[string]int)
	for _, name := range []string{"spot_index", "vol_index", "maturity_index", "strike_index"} {
		raw, ok := c.GetQuery(name)
		if !ok {
			continue
		}
		value, err := strconv.Atoi(raw)
		if err != nil || value < 0 {
			h.respondError(c, errors.InvalidArgumentf("%s must be a non-negative integer", name))
			return
		}
		filters[name] = value
	}

	rows := make([]models.ScenarioRow, 0)
	for _, row := range result.Rows {
		if matches(filters, "spot_index", row.SpotIndex) &&
			matches(filters, "vol_index", row.VolIndex) &&
			matches(filters, "maturity_index", row.MaturityIndex) &&
			matches(filters, "strike_index", row.StrikeIndex) {
			rows = append(rows, row)
		}
	}

	c.JSON(http.StatusOK, RowsResponse{RunID: result.RunID, Count: len(rows), Rows: rows})
}

func matches(filters map[string]int, name string, value int) bool {
	want, ok := filters[name]
	return !ok || want == value
}

// CentralSampleHandler returns the central terminal-price sample. Pass
// include_samples=false to get the summary only.
func (h *Handlers) CentralSampleHandler(c *gin.Context) {
	result, err := h.store.Latest()
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := CentralResponse{RunID: result.RunID, Summary: result.CentralSummary}
	if includeSamples(c) {
		resp.Prices = result.Central
	}

	c.JSON(http.StatusOK, resp)
}

// DetailedSampleHandler returns one detailed slot of the latest run
func (h *Handlers) DetailedSampleHandler(c *gin.Context) {
	column, err := strconv.Atoi(c.Param("column"))
	if err != nil || column < 0 || column >= models.DetailedSlots {
		h.respondError(c, errors.InvalidArgumentf("column must be an integer in [0, %d)", models.DetailedSlots))
		return
	}

	result, err := h.store.Latest()
	if err != nil {
		h.respondError(c, err)
		return
	}

	slot := result.Detailed[column]
	if slot == nil {
		h.respondError(c, errors.NotFound(fmt.Sprintf("detailed slot %d is empty for run %s", column, result.RunID)))
		return
	}

	if !includeSamples(c) {
		trimmed := *slot
		trimmed.Prices = nil
		slot = &trimmed
	}

	c.JSON(http.StatusOK, slot)
}

// NotFoundHandler handles unknown routes
func (h *Handlers) NotFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"error": fmt.Sprintf("route %s %s not found", c.Request.Method, c.Request.URL.Path),
	})
}

func includeSamples(c *gin.Context) bool {
	include, err := strconv.ParseBool(c.DefaultQuery("include_samples", "true"))
	return err != nil || include
}

// respondError maps typed errors onto HTTP statuses
func (h *Handlers) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch errors.TypeOf(err) {
	case errors.ErrorTypeInvalidArgument:
		status = http.StatusBadRequest
	case errors.ErrorTypeResourceExhausted:
		status = http.StatusRequestEntityTooLarge
	case errors.ErrorTypeNotFound:
		status = http.StatusNotFound
	case errors.ErrorTypeCanceled:
		status = http.StatusServiceUnavailable
		if stderrors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
		}
	}

	if status == http.StatusInternalServerError {
		h.log.Errorf("Request %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	}

	c.JSON(status, gin.H{
		"error": err.Error(),
		"type":  errors.TypeOf(err).String(),
	})
}
