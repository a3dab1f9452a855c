package alerter

import (
	"context"
	"log/slog"

	"github.com/admin/tg-bots/raffle-bot/internal/ports/service"
)

// Sender отправка алерта в Telegram
type Sender interface {
	SendAlert(ctx context.Context, message string) error
}

// Service реализует IAlerterService для отправки алертов
type Service struct {
	client Sender
	log    *slog.Logger
}

// New создаёт новый сервис для отправки алертов.
// Без клиента алерты только пишутся в лог.
func New(client Sender, log *slog.Logger) service.IAlerterService {
	return &Service{
		client: client,
		log:    log,
	}
}

// SendAlert отправляет алерт
func (s *Service) SendAlert(ctx context.Context, message string) error {
	if s.client == nil {
		s.log.ErrorContext(ctx, "alert", "message", message)
		return nil
	}

	return s.client.SendAlert(ctx, message)
}
