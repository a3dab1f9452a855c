package telegram

import (
	"encoding/json"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/admin/tg-bots/raffle-bot/internal/domain"
)

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func toUser(u *tgbotapi.User) *domain.TelegramUser {
	if u == nil {
		return nil
	}
	return &domain.TelegramUser{
		ID:        u.ID,
		IsBot:     u.IsBot,
		FirstName: u.FirstName,
		LastName:  optional(u.LastName),
		Username:  optional(u.UserName),
	}
}

func toMessage(m *tgbotapi.Message) *domain.Message {
	if m == nil {
		return nil
	}

	msg := &domain.Message{
		MessageID: int64(m.MessageID),
		From:      toUser(m.From),
		Date:      int64(m.Date),
		Text:      optional(m.Text),
		Caption:   optional(m.Caption),
	}
	if m.Chat != nil {
		msg.Chat = &domain.Chat{ID: m.Chat.ID, Type: m.Chat.Type}
	}
	for _, p := range m.Photo {
		msg.Photo = append(msg.Photo, domain.PhotoSize{
			FileID:       p.FileID,
			FileUniqueID: p.FileUniqueID,
			Width:        p.Width,
			Height:       p.Height,
			FileSize:     p.FileSize,
		})
	}
	return msg
}

// ToDomainUpdate переводит обновление tgbotapi в доменное. Остальные типы обновлений отбрасываются
func ToDomainUpdate(u tgbotapi.Update) *domain.Update {
	update := &domain.Update{
		UpdateID: int64(u.UpdateID),
		Message:  toMessage(u.Message),
	}
	if cb := u.CallbackQuery; cb != nil {
		update.CallbackQuery = &domain.CallbackQuery{
			ID:      cb.ID,
			From:    toUser(cb.From),
			Message: toMessage(cb.Message),
			Data:    optional(cb.Data),
		}
	}
	return update
}

// ParseUpdate тело webhook-запроса
func ParseUpdate(body []byte) (*domain.Update, error) {
	var u tgbotapi.Update
	if err := json.Unmarshal(body, &u); err != nil {
		return nil, fmt.Errorf("failed to parse update: %w", err)
	}
	return ToDomainUpdate(u), nil
}

// ChatID чат, к которому относится обновление; 0 - неизвестен
func ChatID(u *domain.Update) int64 {
	switch {
	case u.Message != nil && u.Message.Chat != nil:
		return u.Message.Chat.ID
	case u.CallbackQuery != nil && u.CallbackQuery.Message != nil && u.CallbackQuery.Message.Chat != nil:
		return u.CallbackQuery.Message.Chat.ID
	case u.CallbackQuery != nil && u.CallbackQuery.From != nil:
		return u.CallbackQuery.From.ID
	}
	return 0
}
