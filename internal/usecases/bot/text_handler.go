package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/admin/tg-bots/raffle-bot/internal/domain"
	"github.com/admin/tg-bots/raffle-bot/internal/usecases/texts"
)

const (
	minPhoneDigits = 7
	maxPhoneDigits = 15
)

// HandleText ответ на шаг диалога из сессии
func (s *Service) HandleText(ctx context.Context, sess *domain.Session, msg *domain.Message) error {
	chatID := msg.Chat.ID
	text := ""
	if msg.Text != nil {
		text = strings.TrimSpace(*msg.Text)
	}

	switch sess.Step {
	case domain.StepRegisterName:
		if text == "" {
			return s.sendMessage(ctx, chatID, texts.InvalidName)
		}
		sess.PendingName = text
		sess.Step = domain.StepRegisterPhone
		return s.sendMessage(ctx, chatID, fmt.Sprintf(texts.AskPhone, text))

	case domain.StepRegisterPhone:
		return s.handlePhone(ctx, sess, msg, text)

	case domain.StepRaffleName:
		if !s.isAdmin(chatID) {
			sess.Reset()
			return s.sendMessage(ctx, chatID, texts.NotAdmin)
		}
		if text == "" {
			return s.sendMessage(ctx, chatID, texts.AskRaffleName)
		}
		sess.DraftName = text
		sess.Step = domain.StepRafflePrice
		return s.sendMessage(ctx, chatID, texts.AskRafflePrice)

	case domain.StepRafflePrice:
		return s.handlePrice(ctx, sess, chatID, text)

	default:
		return s.sendMessage(ctx, chatID, texts.Help)
	}
}

func (s *Service) handlePhone(ctx context.Context, sess *domain.Session, msg *domain.Message, text string) error {
	chatID := msg.Chat.ID

	phone, ok := NormalizePhone(text)
	if !ok {
		return s.sendMessage(ctx, chatID, texts.InvalidPhone)
	}

	buyer := &domain.Buyer{
		ID:    chatID,
		Name:  sess.PendingName,
		Phone: phone,
	}
	if msg.From != nil {
		buyer.Username = msg.From.Username
	}

	if err := s.Raffles.RegisterBuyer(ctx, buyer); err != nil {
		_ = s.sendMessage(ctx, chatID, texts.InternalError)
		return fmt.Errorf("failed to register buyer: %w", err)
	}

	s.Log.InfoContext(ctx, "buyer registered", "buyer_id", buyer.ID)
	sess.Reset()
	return s.sendMessageWithKeyboard(ctx, chatID, texts.Registered, mainMenu())
}

func (s *Service) handlePrice(ctx context.Context, sess *domain.Session, chatID int64, text string) error {
	if !s.isAdmin(chatID) {
		sess.Reset()
		return s.sendMessage(ctx, chatID, texts.NotAdmin)
	}

	price, ok := ParsePrice(text)
	if !ok {
		return s.sendMessage(ctx, chatID, texts.InvalidPrice)
	}

	raffle, err := s.Raffles.CreateRaffle(ctx, sess.DraftName, price)
	if err != nil {
		if errors.Is(err, domain.ErrStoreUnavailable) {
			_ = s.sendMessage(ctx, chatID, texts.InternalError)
			return fmt.Errorf("failed to create raffle: %w", err)
		}
		sess.Reset()
		return s.sendMessage(ctx, chatID, texts.InvalidPrice)
	}

	s.Log.InfoContext(ctx, "raffle created from chat", "raffle_id", raffle.ID, "admin_id", chatID)
	sess.Reset()
	return s.sendMessageWithKeyboard(ctx, chatID, texts.FormatRaffleCreated(raffle), adminMenu())
}

// NormalizePhone оставляет цифры и ведущий "+", длина 7..15 цифр
func NormalizePhone(raw string) (string, bool) {
	var b strings.Builder
	digits := 0
	for i, r := range strings.TrimSpace(raw) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
			digits++
		case r == '+' && i == 0:
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '(' || r == ')' || r == '.':
		default:
			return "", false
		}
	}
	if digits < minPhoneDigits || digits > maxPhoneDigits {
		return "", false
	}
	return b.String(), true
}

// ParsePrice "$20,000" и "20000" дают 20000
func ParsePrice(raw string) (int64, bool) {
	cleaned := strings.NewReplacer("$", "", ",", "", ".", "", " ", "").Replace(raw)
	price, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil || price <= 0 {
		return 0, false
	}
	return price, true
}
