package bot

import (
	"context"
	"errors"
	"fmt"

	"github.com/admin/tg-bots/raffle-bot/internal/domain"
	"github.com/admin/tg-bots/raffle-bot/internal/usecases/texts"
)

// renderPool показывает текущую страницу пула с выбором из сессии.
// pool == nil - пул читается заново
func (s *Service) renderPool(ctx context.Context, sess *domain.Session, chatID, messageID int64, pool []domain.PoolEntry) error {
	raffle, err := s.Raffles.GetRaffle(ctx, sess.RaffleID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			sess.Reset()
			return s.show(ctx, chatID, messageID, texts.RaffleUnavailable, nil)
		}
		return fmt.Errorf("failed to get raffle: %w", err)
	}
	if !raffle.Active {
		sess.Reset()
		return s.show(ctx, chatID, messageID, texts.RaffleUnavailable, nil)
	}

	if pool == nil {
		pool, err = s.Raffles.PoolStatus(ctx, raffle.ID)
		if err != nil {
			return fmt.Errorf("failed to get pool: %w", err)
		}
	}

	pages := pageCount(len(pool), s.PageSize)
	sess.Page = max(0, min(sess.Page, pages-1))

	return s.show(ctx, chatID, messageID,
		texts.FormatPoolHeader(raffle, sess.Selected, sess.Page, pages),
		poolKeyboard(pool, sess, sess.Page, s.PageSize),
	)
}

// reserve бронирует выбранные номера. Возвращает текст ответа на callback
func (s *Service) reserve(ctx context.Context, sess *domain.Session, chatID, messageID int64) (string, error) {
	if sess.RaffleID == 0 {
		return texts.RaffleUnavailable, s.show(ctx, chatID, messageID, texts.RaffleUnavailable, nil)
	}
	if len(sess.Selected) == 0 {
		return texts.NothingSelected, nil
	}

	raffleID := sess.RaffleID
	reservation, err := s.Raffles.Reserve(ctx, chatID, raffleID, sess.Selected)
	if err != nil {
		var conflict *domain.ConflictError
		switch {
		case errors.As(err, &conflict):
			for _, v := range conflict.Taken {
				if sess.IsSelected(v) {
					sess.Toggle(v)
				}
			}
			msg := texts.FormatConflict(conflict.Taken)
			return msg, s.renderPool(ctx, sess, chatID, messageID, conflict.Pool)

		case errors.Is(err, domain.ErrBuyerNotFound):
			_, _, err := s.requireBuyer(ctx, sess, chatID)
			return "", err

		case errors.Is(err, domain.ErrNotFound):
			sess.Reset()
			return texts.RaffleUnavailable, s.show(ctx, chatID, messageID, texts.RaffleUnavailable, nil)

		default:
			return texts.InternalError, fmt.Errorf("failed to reserve: %w", err)
		}
	}

	raffleName := ""
	if raffle, err := s.Raffles.GetRaffle(ctx, raffleID); err == nil {
		raffleName = raffle.Name
	}

	sess.Reset()
	return "", s.show(ctx, chatID, messageID, texts.FormatReservation(reservation, raffleName, s.Deadline), nil)
}
