package bot

import (
	"context"
	"errors"
	"fmt"

	"github.com/admin/tg-bots/raffle-bot/internal/domain"
	"github.com/admin/tg-bots/raffle-bot/internal/usecases/texts"
)

func (s *Service) HandleCommand(ctx context.Context, sess *domain.Session, msg *domain.Message, command string) error {
	chatID := msg.Chat.ID

	switch command {
	case "start":
		return s.HandleStart(ctx, sess, msg)
	case "help", "ayuda":
		return s.sendMessage(ctx, chatID, texts.Help)
	case "rifas":
		return s.HandleRaffles(ctx, sess, chatID, 0)
	case "misboletas":
		return s.HandleMyTickets(ctx, sess, chatID, 0)
	case "cancelar":
		sess.Reset()
		return s.sendMessage(ctx, chatID, texts.Cancelled)
	case "admin":
		if !s.isAdmin(chatID) {
			return s.sendMessage(ctx, chatID, texts.NotAdmin)
		}
		sess.Reset()
		return s.sendMessageWithKeyboard(ctx, chatID, texts.AdminMenu, adminMenu())
	default:
		return s.sendMessage(ctx, chatID, texts.FormatUnknownCommand(command))
	}
}

// HandleStart новый покупатель проходит регистрацию, известный получает меню
func (s *Service) HandleStart(ctx context.Context, sess *domain.Session, msg *domain.Message) error {
	sess.Reset()

	buyer, ok, err := s.requireBuyer(ctx, sess, msg.Chat.ID)
	if err != nil || !ok {
		return err
	}

	return s.sendMessageWithKeyboard(ctx, msg.Chat.ID, fmt.Sprintf(texts.WelcomeBack, buyer.Name), mainMenu())
}

// requireBuyer false - покупатель не зарегистрирован, регистрация уже начата
func (s *Service) requireBuyer(ctx context.Context, sess *domain.Session, chatID int64) (*domain.Buyer, bool, error) {
	buyer, err := s.Raffles.GetBuyer(ctx, chatID)
	if err == nil {
		return buyer, true, nil
	}

	if !errors.Is(err, domain.ErrNotFound) {
		s.Log.ErrorContext(ctx, "failed to get buyer", "error", err, "chat_id", chatID)
		_ = s.sendMessage(ctx, chatID, texts.InternalError)
		return nil, false, fmt.Errorf("failed to get buyer: %w", err)
	}

	sess.Reset()
	sess.Step = domain.StepRegisterName
	return nil, false, s.sendMessage(ctx, chatID, texts.AskName)
}

// HandleRaffles список активных розыгрышей
func (s *Service) HandleRaffles(ctx context.Context, sess *domain.Session, chatID, messageID int64) error {
	if _, ok, err := s.requireBuyer(ctx, sess, chatID); err != nil || !ok {
		return err
	}

	raffles, err := s.Raffles.ListActiveRaffles(ctx)
	if err != nil {
		_ = s.sendMessage(ctx, chatID, texts.InternalError)
		return fmt.Errorf("failed to list raffles: %w", err)
	}

	if len(raffles) == 0 {
		return s.show(ctx, chatID, messageID, texts.NoActiveRaffles, nil)
	}

	return s.show(ctx, chatID, messageID, texts.ChooseRaffle, rafflesKeyboard(raffles))
}

// HandleMyTickets платежи покупателя с номерами
func (s *Service) HandleMyTickets(ctx context.Context, sess *domain.Session, chatID, messageID int64) error {
	if _, ok, err := s.requireBuyer(ctx, sess, chatID); err != nil || !ok {
		return err
	}

	payments, err := s.Raffles.BuyerPayments(ctx, chatID)
	if err != nil {
		_ = s.sendMessage(ctx, chatID, texts.InternalError)
		return fmt.Errorf("failed to list buyer payments: %w", err)
	}

	return s.show(ctx, chatID, messageID, texts.FormatMyTickets(payments), nil)
}
