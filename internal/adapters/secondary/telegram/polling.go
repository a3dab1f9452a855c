package telegram

import (
	"context"
	"errors"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/errgroup"

	"github.com/admin/tg-bots/raffle-bot/internal/domain"
)

const pollingRetryDelay = 5 * time.Second

// UpdateHandler функция для обработки обновлений от Telegram
type UpdateHandler func(ctx context.Context, update *domain.Update) error

// Poller реализует long polling. Обновления одного чата обрабатываются по порядку,
// разные чаты параллельно, не больше Workers одновременно
type Poller struct {
	client       *Client
	config       *Config
	handler      UpdateHandler
	lastUpdateID int
	log          *slog.Logger
}

func NewPoller(client *Client, config *Config, handler UpdateHandler, log *slog.Logger) *Poller {
	return &Poller{
		client:  client,
		config:  config,
		handler: handler,
		log:     log,
	}
}

// Start блокируется до отмены ctx
func (p *Poller) Start(ctx context.Context) error {
	timeout := p.config.PollingTimeout
	if timeout <= 0 {
		timeout = 30
	}
	workers := p.config.Workers
	if workers <= 0 {
		workers = 16
	}

	p.log.Info("starting telegram polling", "timeout", timeout, "workers", workers)

	for {
		if ctx.Err() != nil {
			p.log.Info("polling stopped")
			return nil
		}

		cfg := tgbotapi.NewUpdate(p.lastUpdateID)
		cfg.Timeout = timeout
		cfg.AllowedUpdates = []string{"message", "callback_query"}

		updates, err := p.client.bot.GetUpdates(cfg)
		if err != nil {
			var tgErr *tgbotapi.Error
			if errors.As(err, &tgErr) && tgErr.Code == 409 {
				// другой экземпляр бота или активный webhook
				p.log.Warn("telegram API conflict - another bot instance or webhook is active", "description", tgErr.Message)
			} else {
				p.log.Error("failed to get updates", "error", err)
			}

			select {
			case <-ctx.Done():
				return nil
			case <-time.After(pollingRetryDelay):
			}
			continue
		}

		for _, u := range updates {
			if u.UpdateID >= p.lastUpdateID {
				p.lastUpdateID = u.UpdateID + 1
			}
		}

		p.dispatch(ctx, updates, workers)
	}
}

// dispatch раскладывает пачку по чатам и ждёт обработки
func (p *Poller) dispatch(ctx context.Context, updates []tgbotapi.Update, workers int) {
	byChat := make(map[int64][]*domain.Update)
	var order []int64
	for _, u := range updates {
		update := ToDomainUpdate(u)
		chatID := ChatID(update)
		if _, ok := byChat[chatID]; !ok {
			order = append(order, chatID)
		}
		byChat[chatID] = append(byChat[chatID], update)
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for _, chatID := range order {
		chatID := chatID
		chatUpdates := byChat[chatID]
		g.Go(func() error {
			for _, update := range chatUpdates {
				if err := p.handler(ctx, update); err != nil {
					p.log.Error("failed to handle update",
						"error", err,
						"update_id", update.UpdateID,
						"chat_id", chatID,
					)
				}
			}
			return nil
		})
	}
	_ = g.Wait()
}
