package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorderSimulationMetrics(t *testing.T) {
	r := NewRecorderWith(prometheus.NewRegistry())

	r.RecordRun("ok", 2*time.Second)
	r.RecordRun("ok", time.Second)
	r.RecordRun("invalid", time.Millisecond)
	r.RecordTuple(10000, 2, 5*time.Millisecond)
	r.RecordTuple(10000, 2, 5*time.Millisecond)
	r.RecordCentralMean(52040.5)
	r.RecordPublish("error")

	assert.Equal(t, 2.0, testutil.ToFloat64(r.runCounter.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.runCounter.WithLabelValues("invalid")))
	assert.Equal(t, 20000.0, testutil.ToFloat64(r.pathsCounter))
	assert.Equal(t, 4.0, testutil.ToFloat64(r.valuationsCounter))
	assert.Equal(t, 52040.5, testutil.ToFloat64(r.centralMeanGauge))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.publishCounter.WithLabelValues("error")))
}

func TestRecorderAPIMetrics(t *testing.T) {
	r := NewRecorderWith(prometheus.NewRegistry())

	r.RecordAPIRequest("POST", "/api/v1/simulations", 200, 30*time.Millisecond)
	r.RecordWebSocketClients(3)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.apiRequestCounter.WithLabelValues("POST", "/api/v1/simulations", "200")))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.wsClientCountGauge))
}

func TestRecordersOnSeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewRecorderWith(prometheus.NewRegistry())
		NewRecorderWith(prometheus.NewRegistry())
	})
}
