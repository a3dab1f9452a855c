package bot

import (
	"log/slog"
	"time"

	"github.com/admin/tg-bots/raffle-bot/internal/ports/service"
	"github.com/admin/tg-bots/raffle-bot/internal/ports/telegram"
	"github.com/admin/tg-bots/raffle-bot/internal/ports/usecase"
)

// Config администраторы и чат ревью чеков
type Config struct {
	IDs          []int64 `envconfig:"IDS"`            // chat id администраторов через запятую
	ReviewChatID int64   `envconfig:"REVIEW_CHAT_ID"` // 0 - чеки уходят каждому администратору
	HTTPUser     string  `envconfig:"HTTP_USER" default:"admin"`
	HTTPPassword string  `envconfig:"HTTP_PASSWORD"` // пусто - basic auth для /admin выключен
}

// Service сценарии чата розыгрышей
type Service struct {
	Raffles        usecase.IRaffleService
	TelegramClient telegram.IClient
	Proofs         service.IProofArchive // nil - чеки остаются только в Telegram
	Admins         map[int64]bool
	ReviewChatID   int64
	Deadline       time.Duration
	PageSize       int
	Now            func() time.Time
	Log            *slog.Logger
}

func New(
	raffles usecase.IRaffleService,
	telegramClient telegram.IClient,
	proofs service.IProofArchive,
	cfg *Config,
	deadline time.Duration,
	pageSize int,
	log *slog.Logger,
) *Service {
	admins := make(map[int64]bool, len(cfg.IDs))
	for _, id := range cfg.IDs {
		admins[id] = true
	}

	if pageSize <= 0 {
		pageSize = 50
	}

	return &Service{
		Raffles:        raffles,
		TelegramClient: telegramClient,
		Proofs:         proofs,
		Admins:         admins,
		ReviewChatID:   cfg.ReviewChatID,
		Deadline:       deadline,
		PageSize:       pageSize,
		Now:            time.Now,
		Log:            log,
	}
}

var _ service.IBotService = (*Service)(nil)

func (s *Service) isAdmin(userID int64) bool {
	return s.Admins[userID]
}

// reviewChats куда отправлять чеки на проверку
func (s *Service) reviewChats() []int64 {
	if s.ReviewChatID != 0 {
		return []int64{s.ReviewChatID}
	}
	chats := make([]int64, 0, len(s.Admins))
	for id := range s.Admins {
		chats = append(chats, id)
	}
	return chats
}
