package repository

import (
	"context"

	"github.com/admin/tg-bots/raffle-bot/internal/domain"
)

// IBuyerRepo интерфейс для работы с покупателями
type IBuyerRepo interface {
	Upsert(ctx context.Context, buyer *domain.Buyer) error
	GetByID(ctx context.Context, id int64) (*domain.Buyer, error)
}
