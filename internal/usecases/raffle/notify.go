package raffle

import (
	"context"

	"github.com/admin/tg-bots/raffle-bot/internal/domain"
	"github.com/admin/tg-bots/raffle-bot/internal/usecases/texts"
)

// notifyOutcome уведомляет покупателя о финальном состоянии и публикует событие.
// Вызывается после коммита, ошибки только логируются
func (s *Service) notifyOutcome(ctx context.Context, p *domain.Payment, numbers []int) {
	details := &domain.PaymentDetails{Payment: *p, Numbers: numbers}
	if raffle, err := s.RaffleRepo.GetByID(ctx, p.RaffleID); err == nil {
		details.RaffleName = raffle.Name
		details.UnitPrice = raffle.UnitPrice
	} else {
		s.Log.WarnContext(ctx, "failed to load raffle for notification", "error", err, "raffle_id", p.RaffleID)
	}

	if msg := texts.FormatDecision(details); msg != "" && s.Notifier != nil {
		if err := s.Notifier.Notify(ctx, p.BuyerID, msg); err != nil {
			s.Log.WarnContext(ctx, "failed to notify buyer",
				"error", err,
				"buyer_id", p.BuyerID,
				"payment_id", p.ID,
				"state", p.State,
			)
		}
	}

	s.publish(ctx, domain.EventTypeFor(p.State), p, numbers)
}

func (s *Service) publish(ctx context.Context, eventType domain.PaymentEventType, p *domain.Payment, numbers []int) {
	if s.Events == nil {
		return
	}
	event := domain.NewPaymentEvent(eventType, p, numbers, s.Now())
	if err := s.Events.PublishPaymentEvent(ctx, event); err != nil {
		s.Log.WarnContext(ctx, "failed to publish payment event",
			"error", err,
			"type", eventType,
			"payment_id", p.ID,
		)
	}
}
