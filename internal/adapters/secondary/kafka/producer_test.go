package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/admin/tg-bots/raffle-bot/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func headerMap(msg *sarama.ProducerMessage) map[string]string {
	out := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		out[string(h.Key)] = string(h.Value)
	}
	return out
}

func TestPublishPaymentEvent(t *testing.T) {
	mock := mocks.NewSyncProducer(t, nil)
	cfg := &Config{Topic: "payment-events"}
	producer := NewProducerWith(mock, cfg, testLogger())

	event := domain.NewPaymentEvent(domain.PaymentEventApproved, &domain.Payment{
		ID:       7,
		BuyerID:  100,
		RaffleID: 1,
		State:    domain.PaymentStateApproved,
	}, []int{3, 7, 42}, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	mock.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != "payment-events" {
			return fmt.Errorf("unexpected topic %s", msg.Topic)
		}
		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != "7" {
			return fmt.Errorf("unexpected key %s", key)
		}

		headers := headerMap(msg)
		if headers[HeaderEventType] != "payment.approved" || headers[HeaderEventID] != event.EventID.String() {
			return fmt.Errorf("unexpected headers %v", headers)
		}

		value, err := msg.Value.Encode()
		if err != nil {
			return err
		}
		var decoded domain.PaymentEvent
		if err := json.Unmarshal(value, &decoded); err != nil {
			return err
		}
		if decoded.PaymentID != 7 || decoded.State != domain.PaymentStateApproved || len(decoded.Numbers) != 3 {
			return fmt.Errorf("unexpected payload %s", value)
		}
		return nil
	})

	publisher := NewPaymentEventPublisher(producer)
	require.NoError(t, publisher.PublishPaymentEvent(context.Background(), event))
	require.NoError(t, producer.Close())
}

func TestPublishPaymentEventFailure(t *testing.T) {
	mock := mocks.NewSyncProducer(t, nil)
	producer := NewProducerWith(mock, &Config{Topic: "payment-events"}, testLogger())
	mock.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	event := domain.PaymentEvent{EventID: uuid.New(), Type: domain.PaymentEventExpired, PaymentID: 3}
	err := NewPaymentEventPublisher(producer).PublishPaymentEvent(context.Background(), event)

	require.Error(t, err)
	assert.True(t, errors.Is(err, sarama.ErrOutOfBrokers))
	assert.Contains(t, err.Error(), "payment.expired")
}

func TestSendCancelledContext(t *testing.T) {
	mock := mocks.NewSyncProducer(t, nil)
	producer := NewProducerWith(mock, &Config{Topic: "t"}, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, producer.Send(ctx, "k", []byte("v"), nil), context.Canceled)
	require.NoError(t, producer.Close())
}

func TestConfig(t *testing.T) {
	cfg := &Config{Brokers: "a:9092, b:9092"}
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.GetBrokers())
	assert.Equal(t, []string{"localhost:9092"}, (&Config{}).GetBrokers())

	sasl := (&Config{SecurityProtocol: "SASL_SSL", SASLMechanism: "SCRAM-SHA-256", SASLUsername: "u"}).SaramaConfig()
	assert.True(t, sasl.Net.SASL.Enable)
	assert.True(t, sasl.Net.TLS.Enable)
	assert.Equal(t, sarama.SASLMechanism(sarama.SASLTypeSCRAMSHA256), sasl.Net.SASL.Mechanism)

	configs := &KafkaConfigs{List: []KafkaConfig{
		{Name: PaymentEventsName, Config: &Config{Topic: "events"}},
	}}
	assert.Equal(t, "events", configs.Find(PaymentEventsName).Topic)
	assert.Nil(t, configs.Find(ReviewDecisionsName))
}

func TestLoadConfigs(t *testing.T) {
	t.Setenv("TEST_KAFKA_0_NAME", ReviewDecisionsName)
	t.Setenv("TEST_KAFKA_0_CONFIG_TOPIC", "decisions")
	t.Setenv("TEST_KAFKA_0_CONFIG_CONSUMER_GROUP", "raffle-bot")

	configs := &KafkaConfigs{Count: 1}
	require.NoError(t, configs.Load("TEST"))
	require.NotNil(t, configs.Find(ReviewDecisionsName))
	assert.Equal(t, "raffle-bot", configs.Find(ReviewDecisionsName).ConsumerGroup)

	configs = &KafkaConfigs{Count: 2}
	assert.Error(t, configs.Load("TEST"))
}
