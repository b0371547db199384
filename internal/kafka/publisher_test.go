package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rzzdr/mc-scenario-pricer/pkg/models"
	"github.com/rzzdr/mc-scenario-pricer/pkg/utils/circuit"
	apperrors "github.com/rzzdr/mc-scenario-pricer/pkg/utils/errors"
)

type fakeWriter struct {
	calls    [][]kafkago.Message
	failWith error
	closed   bool
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafkago.Message) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("write without deadline")
	}
	if f.failWith != nil {
		return f.failWith
	}
	f.calls = append(f.calls, msgs)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func header(msg kafkago.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func testResult(rows int) *models.SimulationResult {
	r := &models.SimulationResult{
		RunID: "run-1",
		Seed:  42,
		Parameters: models.SimulationParameters{
			Paths: 10, Maturities: []float64{1}, Strikes: []float64{100},
		},
		Central: []float64{1, 2, 3},
	}
	for i := 0; i < rows; i++ {
		r.Rows = append(r.Rows, models.ScenarioRow{StrikeIndex: i, Price: float64(i)})
	}
	return r
}

func TestResultPublisherPublish(t *testing.T) {
	writer := &fakeWriter{}
	producer := NewProducerWithWriter(writer, Config{Topic: "pricing.results"})
	publisher := NewResultPublisher(producer, 4)

	require.NoError(t, publisher.Publish(context.Background(), testResult(10)))
	require.Len(t, writer.calls, 2)

	summaryMsgs := writer.calls[0]
	require.Len(t, summaryMsgs, 1)
	assert.Equal(t, "run-1", string(summaryMsgs[0].Key))
	assert.Equal(t, MessageTypeSummary, header(summaryMsgs[0], "message-type"))
	assert.Equal(t, "application/json", header(summaryMsgs[0], "content-type"))

	var summary models.RunSummary
	require.NoError(t, json.Unmarshal(summaryMsgs[0].Value, &summary))
	assert.Equal(t, "run-1", summary.RunID)
	assert.Equal(t, 10, summary.RowCount)

	rowMsgs := writer.calls[1]
	require.Len(t, rowMsgs, 3)
	var offsets []int
	var total int
	for _, msg := range rowMsgs {
		assert.Equal(t, MessageTypeRows, header(msg, "message-type"))
		var batch RowBatch
		require.NoError(t, json.Unmarshal(msg.Value, &batch))
		offsets = append(offsets, batch.Offset)
		total += len(batch.Rows)
		assert.Equal(t, 10, batch.Total)
	}
	assert.Equal(t, []int{0, 4, 8}, offsets)
	assert.Equal(t, 10, total)

	require.NoError(t, publisher.Close())
	assert.True(t, writer.closed)
}

func TestResultPublisherPropagatesWriteErrors(t *testing.T) {
	writer := &fakeWriter{failWith: errors.New("broker down")}
	publisher := NewResultPublisher(NewProducerWithWriter(writer, Config{Topic: "t"}), 0)

	err := publisher.Publish(context.Background(), testResult(3))
	assert.ErrorContains(t, err, "broker down")
}

func TestResultPublisherBreakerFailsFast(t *testing.T) {
	writer := &fakeWriter{failWith: errors.New("broker down")}
	publisher := NewResultPublisher(NewProducerWithWriter(writer, Config{Topic: "t"}), 10)
	publisher.SetBreaker(circuit.New("kafka-test", circuit.Config{MaxFailures: 1, Timeout: time.Hour}))

	assert.ErrorContains(t, publisher.Publish(context.Background(), testResult(3)), "broker down")

	err := publisher.Publish(context.Background(), testResult(3))
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeResourceExhausted))
}

func TestNewProducerValidatesConfig(t *testing.T) {
	_, err := NewProducer(Config{Topic: "t"})
	assert.Error(t, err)

	_, err = NewProducer(Config{Brokers: []string{"localhost:9092"}})
	assert.Error(t, err)

	p, err := NewProducer(Config{Brokers: []string{"localhost:9092"}, Topic: "t"})
	require.NoError(t, err)
	assert.NoError(t, p.Close())
}
