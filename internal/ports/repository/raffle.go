package repository

import (
	"context"

	"github.com/admin/tg-bots/raffle-bot/internal/domain"
	"github.com/admin/tg-bots/raffle-bot/internal/ports/persistence"
)

// IRaffleRepo интерфейс для работы с розыгрышами в БД
type IRaffleRepo interface {
	WithTransaction(ctx context.Context, fn persistence.TxFunc) error
	CreateTx(ctx context.Context, tx persistence.Transaction, raffle *domain.Raffle) error
	GetByID(ctx context.Context, id int64) (*domain.Raffle, error)
	// GetByIDTx берёт FOR SHARE, чтобы параллельное удаление розыгрыша ждало транзакцию
	GetByIDTx(ctx context.Context, tx persistence.Transaction, id int64) (*domain.Raffle, error)
	List(ctx context.Context) ([]*domain.Raffle, error)
	ListActive(ctx context.Context) ([]*domain.RaffleOverview, error)
	Delete(ctx context.Context, id int64) error
}
