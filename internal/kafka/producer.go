package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/rzzdr/mc-scenario-pricer/pkg/utils/logger"
)

// Config contains configuration for a Kafka producer
type Config struct {
	Brokers      []string
	Topic        string
	MaxAttempts  int
	BatchSize    int
	WriteTimeout time.Duration
}

// MessageHeader represents a Kafka message header
type MessageHeader struct {
	Key   string
	Value []byte
}

// MessageWriter is the subset of *kafkago.Writer the producer uses
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Producer writes JSON messages to one topic
type Producer struct {
	writer  MessageWriter
	topic   string
	timeout time.Duration
	log     *logger.Logger
}

// NewProducer creates a producer backed by a kafka-go writer
func NewProducer(config Config) (*Producer, error) {
	if len(config.Brokers) == 0 {
		return nil, fmt.Errorf("at least one broker is required")
	}
	if config.Topic == "" {
		return nil, fmt.Errorf("topic is required")
	}

	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}

	writer := &kafkago.Writer{
		Addr:                   kafkago.TCP(config.Brokers...),
		Topic:                  config.Topic,
		Balancer:               &kafkago.Hash{},
		AllowAutoTopicCreation: true,
		Compression:            kafkago.Snappy,
		RequiredAcks:           kafkago.RequireAll,
		MaxAttempts:            config.MaxAttempts,
		WriteTimeout:           config.WriteTimeout,
	}

	return NewProducerWithWriter(writer, config), nil
}

// NewProducerWithWriter creates a producer on an existing writer. The writer
// must already target config.Topic.
func NewProducerWithWriter(writer MessageWriter, config Config) *Producer {
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = 10 * time.Second
	}

	return &Producer{
		writer:  writer,
		topic:   config.Topic,
		timeout: config.WriteTimeout,
		log:     logger.GetLogger("kafka.producer").WithField("topic", config.Topic),
	}
}

// ProduceJSON serializes each value and writes all of them in one call
func (p *Producer) ProduceJSON(ctx context.Context, key []byte, values []interface{}, headers []MessageHeader) error {
	if len(values) == 0 {
		return nil
	}

	kafkaHeaders := make([]kafkago.Header, 0, len(headers)+1)
	for _, h := range headers {
		kafkaHeaders = append(kafkaHeaders, kafkago.Header{Key: h.Key, Value: h.Value})
	}
	kafkaHeaders = append(kafkaHeaders, kafkago.Header{Key: "content-type", Value: []byte("application/json")})

	messages := make([]kafkago.Message, 0, len(values))
	for _, value := range values {
		data, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to serialize message to JSON: %w", err)
		}
		messages = append(messages, kafkago.Message{
			Key:     key,
			Value:   data,
			Headers: kafkaHeaders,
		})
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, messages...); err != nil {
		p.log.Errorf("Failed to produce %d messages: %v", len(messages), err)
		return fmt.Errorf("failed to produce messages: %w", err)
	}

	p.log.Debugf("Produced %d messages", len(messages))
	return nil
}

// Close closes the producer
func (p *Producer) Close() error {
	p.log.Info("Closing producer")
	return p.writer.Close()
}
