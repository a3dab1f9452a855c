package telegram

import (
	"log/slog"

	"github.com/admin/tg-bots/raffle-bot/internal/ports/cache"
	"github.com/admin/tg-bots/raffle-bot/internal/ports/service"
	"github.com/admin/tg-bots/raffle-bot/internal/ports/telegram"
)

type Service struct {
	TelegramClient telegram.IClient
	Sessions       cache.ISessionStore
	BotService     service.IBotService
	Log            *slog.Logger
}

func New(
	telegramClient telegram.IClient,
	sessions cache.ISessionStore,
	log *slog.Logger,
) *Service {
	return &Service{
		TelegramClient: telegramClient,
		Sessions:       sessions,
		Log:            log,
	}
}

// SetBotService устанавливает сценарии чата. Сервис нужен им как INotifier, поэтому создаётся раньше
func (s *Service) SetBotService(botService service.IBotService) {
	s.BotService = botService
}

var (
	_ service.IUpdateHandler = (*Service)(nil)
	_ service.INotifier      = (*Service)(nil)
)
