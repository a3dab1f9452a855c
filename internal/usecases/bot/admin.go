package bot

import (
	"context"
	"errors"
	"fmt"

	"github.com/admin/tg-bots/raffle-bot/internal/domain"
	"github.com/admin/tg-bots/raffle-bot/internal/usecases/texts"
)

func (s *Service) handleAdminCallback(ctx context.Context, sess *domain.Session, chatID, messageID int64, action string, raffleID int64) (callbackAnswer, error) {
	switch action {
	case cbAdminRaffles:
		raffles, err := s.Raffles.ListRaffles(ctx)
		if err != nil {
			return callbackAnswer{}, fmt.Errorf("failed to list raffles: %w", err)
		}
		if len(raffles) == 0 {
			return callbackAnswer{}, s.show(ctx, chatID, messageID, texts.NoActiveRaffles, adminMenu())
		}
		return callbackAnswer{}, s.show(ctx, chatID, messageID, texts.ChooseRaffle, adminRafflesKeyboard(raffles))

	case cbAdminNew:
		sess.Reset()
		sess.Step = domain.StepRaffleName
		return callbackAnswer{}, s.sendMessage(ctx, chatID, texts.AskRaffleName)

	case cbAdminPending:
		return callbackAnswer{}, s.resendPendingReviews(ctx, chatID)
	}

	raffle, err := s.Raffles.GetRaffle(ctx, raffleID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return callbackAnswer{text: texts.RaffleUnavailable, alert: true}, nil
		}
		return callbackAnswer{}, fmt.Errorf("failed to get raffle: %w", err)
	}

	switch action {
	case cbAdminRaffle:
		return callbackAnswer{}, s.show(ctx, chatID, messageID, texts.FormatRaffleButton(&domain.RaffleOverview{Raffle: *raffle}), adminRaffleKeyboard(raffle.ID))

	case cbStats:
		stats, err := s.Raffles.Stats(ctx, raffle.ID)
		if err != nil {
			return callbackAnswer{}, fmt.Errorf("failed to get stats: %w", err)
		}
		return callbackAnswer{}, s.show(ctx, chatID, messageID, texts.FormatStats(stats), adminRaffleKeyboard(raffle.ID))

	case cbSold:
		sold, err := s.Raffles.SoldNumbers(ctx, raffle.ID)
		if err != nil {
			return callbackAnswer{}, fmt.Errorf("failed to get sold numbers: %w", err)
		}
		return callbackAnswer{}, s.sendMessage(ctx, chatID, texts.FormatSold(raffle, sold))

	case cbDelete:
		return callbackAnswer{}, s.show(ctx, chatID, messageID, texts.FormatConfirmDelete(raffle), confirmDeleteKeyboard(raffle.ID))

	case cbDeleteOK:
		if err := s.Raffles.DeleteRaffle(ctx, raffle.ID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return callbackAnswer{text: texts.RaffleUnavailable, alert: true}, nil
			}
			return callbackAnswer{}, fmt.Errorf("failed to delete raffle: %w", err)
		}
		s.Log.InfoContext(ctx, "raffle deleted from chat", "raffle_id", raffle.ID, "admin_id", chatID)
		return callbackAnswer{text: texts.RaffleDeleted}, s.show(ctx, chatID, messageID, texts.RaffleDeleted, adminMenu())
	}

	return callbackAnswer{}, fmt.Errorf("unknown admin action %q", action)
}

// resendPendingReviews повторно присылает чеки, ждущие решения
func (s *Service) resendPendingReviews(ctx context.Context, chatID int64) error {
	payments, err := s.Raffles.PaymentsByState(ctx, domain.PaymentStateInReview)
	if err != nil {
		return fmt.Errorf("failed to list payments in review: %w", err)
	}
	if len(payments) == 0 {
		return s.sendMessage(ctx, chatID, texts.NoPendingReviews)
	}

	for _, d := range payments {
		msg := domain.OutgoingMessage{
			ChatID:   chatID,
			Text:     texts.FormatReviewRequest(d, s.Now(), s.Deadline),
			Keyboard: reviewKeyboard(d.ID),
		}
		if d.ProofReference != nil {
			msg.PhotoFileID = *d.ProofReference
		}
		if err := s.send(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}
