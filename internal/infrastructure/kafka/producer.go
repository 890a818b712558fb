package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"

	"github.com/Conte777/operator-service/internal/domain/account/entities"
	"github.com/Conte777/operator-service/internal/infrastructure/metrics"
)

// EventProducer publishes account lifecycle events using an asynchronous producer
type EventProducer struct {
	producer  sarama.AsyncProducer
	topic     string
	metrics   *metrics.Metrics
	logger    zerolog.Logger
	wg        sync.WaitGroup
	closeOnce sync.Once
	closeErr  error
}

// ProducerConfig holds configuration for the account event producer
type ProducerConfig struct {
	Brokers []string
	Topic   string
	Metrics *metrics.Metrics
	Logger  zerolog.Logger
}

// NewEventProducer connects to the brokers and starts the delivery report handlers
func NewEventProducer(cfg ProducerConfig) (*EventProducer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("no kafka brokers specified")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka topic is required")
	}

	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.Return.Errors = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Partitioner = sarama.NewHashPartitioner
	config.ClientID = "operator-service-producer"
	config.Version = sarama.V2_6_0_0

	producer, err := sarama.NewAsyncProducer(cfg.Brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	cfg.Logger.Info().
		Strs("brokers", cfg.Brokers).
		Str("topic", cfg.Topic).
		Msg("Kafka producer initialized successfully")

	return newEventProducer(producer, cfg.Topic, cfg.Metrics, cfg.Logger), nil
}

func newEventProducer(producer sarama.AsyncProducer, topic string, m *metrics.Metrics, logger zerolog.Logger) *EventProducer {
	p := &EventProducer{
		producer: producer,
		topic:    topic,
		metrics:  m,
		logger:   logger.With().Str("component", "kafka_producer").Logger(),
	}

	p.wg.Add(2)
	go p.handleSuccesses()
	go p.handleErrors()

	return p
}

// PublishAccountEvent queues event keyed by account id
func (p *EventProducer) PublishAccountEvent(ctx context.Context, event entities.AccountEvent) error {
	if event.AccountID == "" {
		return fmt.Errorf("account_id is required")
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal account event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic:     p.topic,
		Key:       sarama.StringEncoder(event.AccountID),
		Value:     sarama.ByteEncoder(value),
		Timestamp: event.Timestamp,
	}

	select {
	case p.producer.Input() <- msg:
		p.logger.Debug().
			Str("type", event.Type).
			Str("account_id", event.AccountID).
			Msg("Account event queued for sending to Kafka")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("context cancelled while sending message: %w", ctx.Err())
	}
}

func (p *EventProducer) handleSuccesses() {
	defer p.wg.Done()

	for msg := range p.producer.Successes() {
		p.metrics.RecordKafkaMessage()
		p.logger.Debug().
			Str("topic", msg.Topic).
			Int32("partition", msg.Partition).
			Int64("offset", msg.Offset).
			Msg("Message sent to Kafka successfully")
	}
}

func (p *EventProducer) handleErrors() {
	defer p.wg.Done()

	for producerErr := range p.producer.Errors() {
		p.metrics.RecordKafkaError("send_failed")
		p.logger.Error().
			Err(producerErr.Err).
			Str("topic", producerErr.Msg.Topic).
			Msg("Failed to send message to Kafka")
	}
}

// Close flushes pending messages and stops the delivery report handlers
func (p *EventProducer) Close() error {
	p.closeOnce.Do(func() {
		p.closeErr = p.producer.Close()
		p.wg.Wait()
		p.logger.Info().Msg("Kafka producer closed")
	})
	return p.closeErr
}

// NoopPublisher drops events when Kafka is disabled
type NoopPublisher struct {
	logger zerolog.Logger
}

// NewNoopPublisher creates a publisher that only logs events
func NewNoopPublisher(logger zerolog.Logger) *NoopPublisher {
	return &NoopPublisher{logger: logger.With().Str("component", "kafka_noop").Logger()}
}

// PublishAccountEvent logs and discards event
func (p *NoopPublisher) PublishAccountEvent(_ context.Context, event entities.AccountEvent) error {
	p.logger.Debug().
		Str("type", event.Type).
		Str("account_id", event.AccountID).
		Msg("Kafka disabled, account event dropped")
	return nil
}
