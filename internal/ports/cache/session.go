package cache

import (
	"context"

	"github.com/admin/tg-bots/raffle-bot/internal/domain"
)

// ISessionStore хранилище контекста диалога. Load для неизвестного чата возвращает пустую сессию
type ISessionStore interface {
	Load(ctx context.Context, chatID int64) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, chatID int64) error
}
