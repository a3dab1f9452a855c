package service

import (
	"context"

	"github.com/admin/tg-bots/raffle-bot/internal/domain"
)

// IPaymentEventPublisher публикует события жизненного цикла платежа после коммита
type IPaymentEventPublisher interface {
	PublishPaymentEvent(ctx context.Context, event domain.PaymentEvent) error
}
