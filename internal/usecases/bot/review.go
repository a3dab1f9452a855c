package bot

import (
	"context"
	"errors"
	"fmt"

	"github.com/admin/tg-bots/raffle-bot/internal/domain"
	"github.com/admin/tg-bots/raffle-bot/internal/usecases/texts"
)

// handleDecision решение ревьюера по кнопке под чеком
func (s *Service) handleDecision(ctx context.Context, query *domain.CallbackQuery, action string, paymentID int64) (callbackAnswer, error) {
	if query.From == nil || !s.isAdmin(query.From.ID) {
		return callbackAnswer{text: texts.NotAdmin, alert: true}, nil
	}

	decision := domain.DecisionApprove
	if action == cbReject {
		decision = domain.DecisionReject
	}

	payment, err := s.Raffles.Decide(ctx, paymentID, decision)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return callbackAnswer{text: texts.PaymentNotFound, alert: true}, nil
		case errors.Is(err, domain.ErrInvalidTransition):
			return callbackAnswer{text: texts.ReviewAlreadyDone, alert: true}, nil
		default:
			return callbackAnswer{}, fmt.Errorf("failed to decide payment %d: %w", paymentID, err)
		}
	}

	s.Log.InfoContext(ctx, "payment decided from chat",
		"payment_id", payment.ID,
		"decision", decision,
		"reviewer_id", query.From.ID,
	)

	text := fmt.Sprintf(texts.ReviewApproved, payment.ID)
	if decision == domain.DecisionReject {
		text = fmt.Sprintf(texts.ReviewRejected, payment.ID)
	}

	// итог дописывается под чеком, кнопки снимаются
	edit := domain.OutgoingMessage{
		ChatID:        query.Message.Chat.ID,
		EditMessageID: query.Message.MessageID,
		EditCaption:   len(query.Message.Photo) > 0,
		Text:          withOutcome(query.Message, text),
	}
	if err := s.TelegramClient.Send(ctx, edit); err != nil {
		s.Log.WarnContext(ctx, "failed to edit review message", "error", err, "payment_id", payment.ID)
		if err := s.sendMessage(ctx, query.Message.Chat.ID, text); err != nil {
			s.Log.WarnContext(ctx, "failed to post review outcome", "error", err, "payment_id", payment.ID)
		}
	}
	return callbackAnswer{text: text}, nil
}

func withOutcome(msg *domain.Message, outcome string) string {
	base := ""
	switch {
	case msg.Caption != nil:
		base = *msg.Caption
	case msg.Text != nil:
		base = *msg.Text
	}
	if base == "" {
		return outcome
	}
	return base + "\n\n" + outcome
}
