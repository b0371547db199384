package kafka

import (
	"context"

	"github.com/rzzdr/mc-scenario-pricer/pkg/models"
	"github.com/rzzdr/mc-scenario-pricer/pkg/utils/circuit"
)

// Message type header values
const (
	MessageTypeSummary = "run.summary"
	MessageTypeRows    = "run.rows"
)

// RowBatch is one chunk of a run's rows, in result order starting at Offset
type RowBatch struct {
	RunID  string               `json:"run_id"`
	Offset int                  `json:"offset"`
	Total  int                  `json:"total"`
	Rows   []models.ScenarioRow `json:"rows"`
}

// ResultPublisher publishes completed runs: one summary message followed by
// the rows in batches, all keyed by run ID so they land on one partition.
type ResultPublisher struct {
	producer  *Producer
	batchSize int
	breaker   *circuit.Breaker
}

// NewResultPublisher creates a publisher on top of a producer
func NewResultPublisher(producer *Producer, batchSize int) *ResultPublisher {
	if batchSize <= 0 {
		batchSize = 100
	}

	return &ResultPublisher{
		producer:  producer,
		batchSize: batchSize,
	}
}

// SetBreaker makes publishing fail fast while the broker keeps failing
func (p *ResultPublisher) SetBreaker(breaker *circuit.Breaker) {
	p.breaker = breaker
}

// Publish writes the run summary and all rows
func (p *ResultPublisher) Publish(ctx context.Context, result *models.SimulationResult) error {
	if p.breaker == nil {
		return p.publish(ctx, result)
	}
	return p.breaker.Execute(ctx, func(ctx context.Context) error {
		return p.publish(ctx, result)
	})
}

func (p *ResultPublisher) publish(ctx context.Context, result *models.SimulationResult) error {
	key := []byte(result.RunID)

	err := p.producer.ProduceJSON(ctx, key, []interface{}{result.Summary()},
		[]MessageHeader{{Key: "message-type", Value: []byte(MessageTypeSummary)}})
	if err != nil {
		return err
	}

	batches := make([]interface{}, 0, len(result.Rows)/p.batchSize+1)
	for offset := 0; offset < len(result.Rows); offset += p.batchSize {
		end := min(offset+p.batchSize, len(result.Rows))
		batches = append(batches, RowBatch{
			RunID:  result.RunID,
			Offset: offset,
			Total:  len(result.Rows),
			Rows:   result.Rows[offset:end],
		})
	}

	return p.producer.ProduceJSON(ctx, key, batches,
		[]MessageHeader{{Key: "message-type", Value: []byte(MessageTypeRows)}})
}

// Close closes the underlying producer
func (p *ResultPublisher) Close() error {
	return p.producer.Close()
}
