package bot

import (
	"context"
	"fmt"

	"github.com/admin/tg-bots/raffle-bot/internal/domain"
)

func (s *Service) send(ctx context.Context, msg domain.OutgoingMessage) error {
	if err := s.TelegramClient.Send(ctx, msg); err != nil {
		s.Log.ErrorContext(ctx, "failed to send message",
			"error", err,
			"chat_id", msg.ChatID,
			"edit_message_id", msg.EditMessageID,
		)
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

// sendMessage отправляет текст без клавиатуры
func (s *Service) sendMessage(ctx context.Context, chatID int64, text string) error {
	return s.send(ctx, domain.OutgoingMessage{ChatID: chatID, Text: text})
}

func (s *Service) sendMessageWithKeyboard(ctx context.Context, chatID int64, text string, keyboard [][]domain.InlineButton) error {
	return s.send(ctx, domain.OutgoingMessage{ChatID: chatID, Text: text, Keyboard: keyboard})
}

// show редактирует сообщение с кнопками, если оно есть, иначе отправляет новое
func (s *Service) show(ctx context.Context, chatID, messageID int64, text string, keyboard [][]domain.InlineButton) error {
	return s.send(ctx, domain.OutgoingMessage{
		ChatID:        chatID,
		Text:          text,
		Keyboard:      keyboard,
		EditMessageID: messageID,
	})
}

func (s *Service) answer(ctx context.Context, callbackID, text string, alert bool) {
	if err := s.TelegramClient.AnswerCallbackQuery(ctx, callbackID, text, alert); err != nil {
		s.Log.WarnContext(ctx, "failed to answer callback query",
			"error", err,
			"callback_id", callbackID,
		)
	}
}
