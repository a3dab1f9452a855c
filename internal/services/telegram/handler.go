package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/admin/tg-bots/raffle-bot/internal/domain"
	"github.com/admin/tg-bots/raffle-bot/internal/pkg/logger"
)

// HandleUpdate Основной метод для обработки всех типов обновлений.
// Сессия чата загружается до роутинга и сохраняется после
func (s *Service) HandleUpdate(ctx context.Context, update *domain.Update) error {
	if update == nil {
		return fmt.Errorf("update is nil")
	}
	if s.BotService == nil {
		return fmt.Errorf("bot service is not configured")
	}

	chatID, ok := s.routableChat(update)
	if !ok {
		return nil
	}

	ctx = logger.WithAttrs(ctx, "update_id", update.UpdateID, "chat_id", chatID)

	sess, err := s.Sessions.Load(ctx, chatID)
	if err != nil {
		s.Log.ErrorContext(ctx, "failed to load session", "error", err)
		return fmt.Errorf("failed to load session: %w", err)
	}

	handleErr := s.route(ctx, sess, update)

	if err := s.Sessions.Save(ctx, sess); err != nil {
		s.Log.ErrorContext(ctx, "failed to save session", "error", err)
		return errors.Join(handleErr, fmt.Errorf("failed to save session: %w", err))
	}

	return handleErr
}

// routableChat чат апдейта, если его нужно обрабатывать
func (s *Service) routableChat(update *domain.Update) (int64, bool) {
	switch {
	case update.Message != nil:
		message := update.Message
		if message.From == nil || message.From.IsBot || message.Chat == nil {
			s.Log.Debug("ignoring message from bot", "update_id", update.UpdateID)
			return 0, false
		}
		if !message.Chat.IsPrivate() {
			s.Log.Debug("ignoring message from group/chat",
				"update_id", update.UpdateID,
				"chat_type", message.Chat.Type,
				"chat_id", message.Chat.ID,
			)
			return 0, false
		}
		return message.Chat.ID, true

	case update.CallbackQuery != nil:
		query := update.CallbackQuery
		if query.Message == nil || query.Message.Chat == nil {
			return 0, false
		}
		return query.Message.Chat.ID, true
	}

	return 0, false
}

func (s *Service) route(ctx context.Context, sess *domain.Session, update *domain.Update) error {
	if update.CallbackQuery != nil {
		return s.BotService.HandleCallback(ctx, sess, update.CallbackQuery)
	}

	message := update.Message
	switch {
	case len(message.Photo) > 0:
		return s.BotService.HandlePhoto(ctx, sess, message)
	case message.Text != nil && IsCommand(*message.Text):
		return s.BotService.HandleCommand(ctx, sess, message, ParseCommand(*message.Text))
	case message.Text != nil:
		return s.BotService.HandleText(ctx, sess, message)
	}

	return nil
}

func ParseCommand(text string) string {
	text = strings.TrimPrefix(text, "/")

	if idx := strings.Index(text, "@"); idx != -1 {
		text = text[:idx]
	}

	if idx := strings.Index(text, " "); idx != -1 {
		text = text[:idx]
	}

	return strings.ToLower(text)
}

func IsCommand(text string) bool {
	return len(text) > 0 && text[0] == '/'
}
