package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/admin/tg-bots/raffle-bot/internal/domain"
	kafkaPorts "github.com/admin/tg-bots/raffle-bot/internal/ports/kafka"
	"github.com/admin/tg-bots/raffle-bot/internal/ports/service"
)

const (
	HeaderEventType = "event_type"
	HeaderEventID   = "event_id"
)

// PaymentEventPublisher публикует события платежей: ключ - id платежа, чтобы события одного платежа шли по порядку
type PaymentEventPublisher struct {
	producer kafkaPorts.IKafkaProducer
}

func NewPaymentEventPublisher(producer kafkaPorts.IKafkaProducer) *PaymentEventPublisher {
	return &PaymentEventPublisher{producer: producer}
}

var _ service.IPaymentEventPublisher = (*PaymentEventPublisher)(nil)

func (p *PaymentEventPublisher) PublishPaymentEvent(ctx context.Context, event domain.PaymentEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal payment event: %w", err)
	}

	headers := map[string]string{
		HeaderEventType: string(event.Type),
		HeaderEventID:   event.EventID.String(),
	}

	if err := p.producer.Send(ctx, strconv.FormatInt(event.PaymentID, 10), value, headers); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}
	return nil
}
