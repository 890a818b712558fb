package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Conte777/operator-service/internal/domain/account/entities"
	"github.com/Conte777/operator-service/internal/infrastructure/metrics"
)

func testEvent() entities.AccountEvent {
	return entities.AccountEvent{
		Type:        entities.EventAccountAuthenticated,
		OperatorID:  "op-1",
		AccountID:   "acc-1",
		PhoneNumber: "+380951234567",
		Timestamp:   time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC),
	}
}

func TestNewEventProducer_Validation(t *testing.T) {
	_, err := NewEventProducer(ProducerConfig{Topic: "t", Logger: zerolog.Nop()})
	require.EqualError(t, err, "no kafka brokers specified")

	_, err = NewEventProducer(ProducerConfig{Brokers: []string{"localhost:9092"}, Logger: zerolog.Nop()})
	require.EqualError(t, err, "kafka topic is required")
}

func TestEventProducer_PublishAccountEvent(t *testing.T) {
	config := mocks.NewTestConfig()
	config.Producer.Return.Successes = true
	mockProducer := mocks.NewAsyncProducer(t, config)

	var captured *sarama.ProducerMessage
	mockProducer.ExpectInputWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		captured = msg
		return nil
	})

	m := metrics.NewMetrics(prometheus.NewRegistry())
	p := newEventProducer(mockProducer, "operator.account.events", m, zerolog.Nop())

	require.NoError(t, p.PublishAccountEvent(context.Background(), testEvent()))
	require.NoError(t, p.Close())

	require.NotNil(t, captured)
	assert.Equal(t, "operator.account.events", captured.Topic)

	key, err := captured.Key.Encode()
	require.NoError(t, err)
	assert.Equal(t, "acc-1", string(key))

	value, err := captured.Value.Encode()
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(value, &decoded))
	assert.Equal(t, "account_authenticated", decoded["type"])
	assert.Equal(t, "op-1", decoded["operator_id"])
	assert.Equal(t, "+380951234567", decoded["phone_number"])

	assert.Equal(t, 1.0, testutil.ToFloat64(m.KafkaMessagesProduced))
}

func TestEventProducer_DeliveryFailureCounted(t *testing.T) {
	config := mocks.NewTestConfig()
	config.Producer.Return.Successes = true
	mockProducer := mocks.NewAsyncProducer(t, config)
	mockProducer.ExpectInputAndFail(errors.New("broker down"))

	m := metrics.NewMetrics(prometheus.NewRegistry())
	p := newEventProducer(mockProducer, "operator.account.events", m, zerolog.Nop())

	require.NoError(t, p.PublishAccountEvent(context.Background(), testEvent()))
	require.NoError(t, p.Close())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.KafkaProduceErrors.WithLabelValues("send_failed")))
}

func TestEventProducer_RequiresAccountID(t *testing.T) {
	mockProducer := mocks.NewAsyncProducer(t, nil)
	p := newEventProducer(mockProducer, "topic", metrics.NewMetrics(prometheus.NewRegistry()), zerolog.Nop())
	defer p.Close()

	event := testEvent()
	event.AccountID = ""
	assert.Error(t, p.PublishAccountEvent(context.Background(), event))
}

func TestNoopPublisher(t *testing.T) {
	p := NewNoopPublisher(zerolog.Nop())
	assert.NoError(t, p.PublishAccountEvent(context.Background(), testEvent()))
}
