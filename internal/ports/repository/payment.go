package repository

import (
	"context"

	"github.com/admin/tg-bots/raffle-bot/internal/domain"
	"github.com/admin/tg-bots/raffle-bot/internal/ports/persistence"
)

// IPaymentRepo интерфейс для работы с платежами в БД
type IPaymentRepo interface {
	WithTransaction(ctx context.Context, fn persistence.TxFunc) error
	CreateTx(ctx context.Context, tx persistence.Transaction, payment *domain.Payment) error
	GetByID(ctx context.Context, id int64) (*domain.Payment, error)
	GetForUpdateTx(ctx context.Context, tx persistence.Transaction, id int64) (*domain.Payment, error)
	// GetLatestByBuyerForUpdateTx последний по created_at платёж покупателя
	GetLatestByBuyerForUpdateTx(ctx context.Context, tx persistence.Transaction, buyerID int64) (*domain.Payment, error)
	// TransitionTx меняет состояние только если текущее равно from, возвращает число изменённых строк
	TransitionTx(ctx context.Context, tx persistence.Transaction, id int64, from, to domain.PaymentState, proofRef *string) (int64, error)
	ListOverdueIDs(ctx context.Context, state domain.PaymentState, createdBefore int64) ([]int64, error)
	ListDetailsByState(ctx context.Context, state domain.PaymentState) ([]*domain.PaymentDetails, error)
	ListDetailsByBuyer(ctx context.Context, buyerID int64) ([]*domain.PaymentDetails, error)
	GetDetails(ctx context.Context, id int64) (*domain.PaymentDetails, error)
	CountByState(ctx context.Context, raffleID int64) (map[domain.PaymentState]int, error)
}
