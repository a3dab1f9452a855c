package bot

import (
	"context"
	"fmt"

	"github.com/admin/tg-bots/raffle-bot/internal/domain"
	"github.com/admin/tg-bots/raffle-bot/internal/usecases/texts"
)

// callbackAnswer всплывающий ответ на нажатие кнопки
type callbackAnswer struct {
	text  string
	alert bool
}

// HandleCallback роутинг нажатий inline-кнопок. На каждый callback отвечаем ровно один раз
func (s *Service) HandleCallback(ctx context.Context, sess *domain.Session, query *domain.CallbackQuery) error {
	if query.Message == nil || query.Message.Chat == nil || query.Data == nil {
		s.answer(ctx, query.ID, "", false)
		return nil
	}

	ans, err := s.routeCallback(ctx, sess, query)
	if err != nil {
		s.answer(ctx, query.ID, texts.InternalError, true)
		return err
	}

	s.answer(ctx, query.ID, ans.text, ans.alert)
	return nil
}

func (s *Service) routeCallback(ctx context.Context, sess *domain.Session, query *domain.CallbackQuery) (callbackAnswer, error) {
	chatID := query.Message.Chat.ID
	messageID := query.Message.MessageID

	action, arg, ok := parseCallback(*query.Data)
	if !ok {
		s.Log.WarnContext(ctx, "malformed callback data", "data", *query.Data)
		return callbackAnswer{}, nil
	}

	switch action {
	case cbApprove, cbReject:
		return s.handleDecision(ctx, query, action, arg)
	case cbAdminRaffles, cbAdminNew, cbAdminPending, cbAdminRaffle, cbStats, cbSold, cbDelete, cbDeleteOK:
		if query.From == nil || !s.isAdmin(query.From.ID) {
			return callbackAnswer{text: texts.NotAdmin, alert: true}, nil
		}
		return s.handleAdminCallback(ctx, sess, chatID, messageID, action, arg)
	}

	// остальное - сценарий покупателя, только в личке
	if !query.Message.Chat.IsPrivate() {
		return callbackAnswer{}, nil
	}

	switch action {
	case cbRaffles:
		return callbackAnswer{}, s.HandleRaffles(ctx, sess, chatID, messageID)

	case cbMyTickets:
		return callbackAnswer{}, s.HandleMyTickets(ctx, sess, chatID, messageID)

	case cbRaffle:
		sess.StartSelection(arg)
		return callbackAnswer{}, s.renderPool(ctx, sess, chatID, messageID, nil)

	case cbNumber:
		if sess.RaffleID == 0 {
			return callbackAnswer{text: texts.RaffleUnavailable, alert: true}, nil
		}
		sess.Toggle(int(arg))
		return callbackAnswer{}, s.renderPool(ctx, sess, chatID, messageID, nil)

	case cbTaken:
		return callbackAnswer{text: texts.NumberTaken}, nil

	case cbPage:
		if sess.RaffleID == 0 {
			return callbackAnswer{text: texts.RaffleUnavailable, alert: true}, nil
		}
		sess.Page = int(arg)
		return callbackAnswer{}, s.renderPool(ctx, sess, chatID, messageID, nil)

	case cbConfirm:
		text, err := s.reserve(ctx, sess, chatID, messageID)
		return callbackAnswer{text: text, alert: text != ""}, err

	case cbCancel:
		sess.Reset()
		return callbackAnswer{}, s.show(ctx, chatID, messageID, texts.Cancelled, nil)

	case cbNoop:
		return callbackAnswer{}, nil

	default:
		return callbackAnswer{}, fmt.Errorf("unknown callback action %q", action)
	}
}
