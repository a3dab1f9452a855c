package telegram

import (
	"context"
	"fmt"

	"github.com/admin/tg-bots/raffle-bot/internal/domain"
)

// Notify отправляет покупателю сообщение в личный чат (id покупателя = chat id)
func (s *Service) Notify(ctx context.Context, buyerID int64, message string) error {
	if err := s.TelegramClient.Send(ctx, domain.OutgoingMessage{ChatID: buyerID, Text: message}); err != nil {
		s.Log.ErrorContext(ctx, "failed to notify buyer",
			"error", err,
			"buyer_id", buyerID,
		)
		return fmt.Errorf("failed to notify buyer: %w", err)
	}

	s.Log.DebugContext(ctx, "buyer notified", "buyer_id", buyerID)
	return nil
}
