package service

import (
	"context"

	"github.com/admin/tg-bots/raffle-bot/internal/domain"
)

// IBotService сценарии чата. Сессия загружена и будет сохранена вызывающим
type IBotService interface {
	HandleCommand(ctx context.Context, sess *domain.Session, msg *domain.Message, command string) error
	HandleText(ctx context.Context, sess *domain.Session, msg *domain.Message) error
	HandlePhoto(ctx context.Context, sess *domain.Session, msg *domain.Message) error
	HandleCallback(ctx context.Context, sess *domain.Session, query *domain.CallbackQuery) error
}
