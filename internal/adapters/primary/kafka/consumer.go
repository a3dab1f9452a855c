package kafka

import (
	"context"
	"fmt"
	"time"

	"log/slog"

	"github.com/IBM/sarama"

	kafkaAdapter "github.com/admin/tg-bots/raffle-bot/internal/adapters/secondary/kafka"
	"github.com/admin/tg-bots/raffle-bot/internal/domain"
	kafkaPorts "github.com/admin/tg-bots/raffle-bot/internal/ports/kafka"
)

// Consumer реализация Kafka consumer
type Consumer struct {
	consumer sarama.ConsumerGroup
	cfg      *kafkaAdapter.Config
	handler  kafkaPorts.MessageHandler
	log      *slog.Logger
}

// NewConsumer создаёт новый Kafka consumer
func NewConsumer(cfg *kafkaAdapter.Config, handler kafkaPorts.MessageHandler, log *slog.Logger) (*Consumer, error) {
	if cfg.ConsumerGroup == "" {
		return nil, fmt.Errorf("consumer group is required for topic %s", cfg.Topic)
	}

	config := cfg.SaramaConfig()
	config.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	config.Consumer.Offsets.Initial = sarama.OffsetOldest

	consumer, err := sarama.NewConsumerGroup(cfg.GetBrokers(), cfg.ConsumerGroup, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka consumer: %w", err)
	}

	log.Info("kafka consumer created",
		"brokers", cfg.Brokers,
		"topic", cfg.Topic,
		"consumer_group", cfg.ConsumerGroup,
	)

	return &Consumer{
		consumer: consumer,
		cfg:      cfg,
		handler:  handler,
		log:      log,
	}, nil
}

// Start запускает consumer. Сессия, завершённая сбоем обработки, перезапускается
// с последнего закоммиченного offset
func (c *Consumer) Start(ctx context.Context) error {
	handler := newGroupHandler(c.handler, c.cfg.Topic, c.log)

	for {
		select {
		case <-ctx.Done():
			c.log.Info("kafka consumer stopping", "topic", c.cfg.Topic)
			return c.consumer.Close()
		default:
			topics := []string{c.cfg.Topic}
			if err := c.consumer.Consume(ctx, topics, handler); err != nil {
				c.log.Error("error from consumer",
					"error", err,
					"topic", c.cfg.Topic,
				)
				return fmt.Errorf("consumer error: %w", err)
			}
		}
	}
}

// Close закрывает consumer
func (c *Consumer) Close() error {
	if err := c.consumer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka consumer: %w", err)
	}
	c.log.Info("kafka consumer closed", "topic", c.cfg.Topic)
	return nil
}

const (
	handleAttempts = 3
	handleBackoff  = 500 * time.Millisecond
)

// consumerGroupHandler реализует sarama.ConsumerGroupHandler
type consumerGroupHandler struct {
	handler  kafkaPorts.MessageHandler
	log      *slog.Logger
	topic    string
	attempts int
	backoff  time.Duration
}

func newGroupHandler(handler kafkaPorts.MessageHandler, topic string, log *slog.Logger) *consumerGroupHandler {
	return &consumerGroupHandler{
		handler:  handler,
		log:      log,
		topic:    topic,
		attempts: handleAttempts,
		backoff:  handleBackoff,
	}
}

func (h *consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error {
	h.log.Info("kafka consumer group session setup", "topic", h.topic)
	return nil
}

func (h *consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	h.log.Info("kafka consumer group session cleanup", "topic", h.topic)
	return nil
}

// ConsumeClaim обрабатывает сообщения из Kafka. Offset сообщения, которое не удалось
// применить после повторов, не коммитится: сессия завершается с ошибкой
func (h *consumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case <-session.Context().Done():
			return nil
		case message, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			if message == nil {
				continue
			}

			if err := h.handle(session.Context(), message); err != nil {
				if session.Context().Err() != nil {
					return nil
				}
				h.log.Error("failed to handle kafka message",
					"error", err,
					"topic", message.Topic,
					"key", string(message.Key),
					"partition", message.Partition,
					"offset", message.Offset,
				)
				return fmt.Errorf("failed to handle message at offset %d: %w", message.Offset, err)
			}

			// commit offset
			session.MarkMessage(message, "")
		}
	}
}

// handle вызывает обработчик с повторами. Бизнес-исход уже залогирован,
// повторная доставка ничего не изменит
func (h *consumerGroupHandler) handle(ctx context.Context, message *sarama.ConsumerMessage) error {
	key := string(message.Key)
	headers := make(map[string]string, len(message.Headers))
	for _, header := range message.Headers {
		if header != nil {
			headers[string(header.Key)] = string(header.Value)
		}
	}

	attempts := max(h.attempts, 1)
	backoff := h.backoff

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = h.handler.HandleMessage(ctx, key, message.Value, headers)
		if err == nil || domain.IsBusinessError(err) {
			return nil
		}
		if attempt == attempts {
			break
		}

		h.log.Warn("retrying kafka message",
			"error", err,
			"key", key,
			"offset", message.Offset,
			"attempt", attempt,
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return err
}
