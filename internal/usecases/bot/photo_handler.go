package bot

import (
	"context"
	"errors"
	"fmt"

	"github.com/admin/tg-bots/raffle-bot/internal/domain"
	"github.com/admin/tg-bots/raffle-bot/internal/usecases/texts"
)

// HandlePhoto фото от покупателя - чек по последней брони
func (s *Service) HandlePhoto(ctx context.Context, sess *domain.Session, msg *domain.Message) error {
	chatID := msg.Chat.ID

	fileID, ok := msg.LargestPhoto()
	if !ok {
		return nil
	}

	payment, err := s.Raffles.SubmitProof(ctx, chatID, fileID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNoPendingPayment):
			return s.sendMessage(ctx, chatID, texts.ProofNoPending)
		case errors.Is(err, domain.ErrPaymentExpired):
			return s.sendMessage(ctx, chatID, texts.FormatProofExpired(s.Deadline))
		case errors.Is(err, domain.ErrInvalidTransition):
			return s.sendMessage(ctx, chatID, texts.ProofAlreadySubmitted)
		default:
			_ = s.sendMessage(ctx, chatID, texts.InternalError)
			return fmt.Errorf("failed to submit proof: %w", err)
		}
	}

	if err := s.sendMessage(ctx, chatID, texts.ProofReceived); err != nil {
		s.Log.WarnContext(ctx, "failed to confirm proof", "error", err, "payment_id", payment.ID)
	}

	details, err := s.Raffles.PaymentDetails(ctx, payment.ID)
	if err != nil {
		return fmt.Errorf("failed to load payment for review: %w", err)
	}
	s.requestReview(ctx, details)

	s.archiveProof(ctx, payment.ID, fileID)
	return nil
}

// requestReview отправляет чек ревьюерам с кнопками решения. Ошибки только логируются
func (s *Service) requestReview(ctx context.Context, d *domain.PaymentDetails) {
	text := texts.FormatReviewRequest(d, s.Now(), s.Deadline)

	for _, chatID := range s.reviewChats() {
		msg := domain.OutgoingMessage{
			ChatID:   chatID,
			Text:     text,
			Keyboard: reviewKeyboard(d.ID),
		}
		if d.ProofReference != nil {
			msg.PhotoFileID = *d.ProofReference
		}

		if err := s.TelegramClient.Send(ctx, msg); err != nil {
			s.Log.WarnContext(ctx, "failed to send review request",
				"error", err,
				"payment_id", d.ID,
				"review_chat_id", chatID,
			)
		}
	}
}

func (s *Service) archiveProof(ctx context.Context, paymentID int64, fileID string) {
	if s.Proofs == nil {
		return
	}

	if _, err := s.Proofs.Archive(ctx, paymentID, fileID); err != nil {
		s.Log.WarnContext(ctx, "failed to archive proof", "error", err, "payment_id", paymentID)
	}
}
