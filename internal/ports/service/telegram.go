package service

import (
	"context"

	"github.com/admin/tg-bots/raffle-bot/internal/domain"
)

// IUpdateHandler обработка входящего обновления Telegram (webhook и polling)
type IUpdateHandler interface {
	HandleUpdate(ctx context.Context, update *domain.Update) error
}
