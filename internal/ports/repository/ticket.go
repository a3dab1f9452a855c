package repository

import (
	"context"

	"github.com/admin/tg-bots/raffle-bot/internal/domain"
	"github.com/admin/tg-bots/raffle-bot/internal/ports/persistence"
)

// ITicketRepo интерфейс для работы с пулом номеров
type ITicketRepo interface {
	CreatePoolTx(ctx context.Context, tx persistence.Transaction, raffleID int64, count int) (int64, error)
	PoolStatus(ctx context.Context, raffleID int64) ([]domain.PoolEntry, error)
	// LockTx блокирует строки номеров FOR UPDATE в порядке value
	LockTx(ctx context.Context, tx persistence.Transaction, raffleID int64, values []int) ([]*domain.Ticket, error)
	// BindTx привязывает только свободные номера, возвращает число привязанных
	BindTx(ctx context.Context, tx persistence.Transaction, raffleID int64, values []int, paymentID, buyerID int64) (int64, error)
	ReleaseTx(ctx context.Context, tx persistence.Transaction, paymentID int64) (int64, error)
	ListByPayment(ctx context.Context, paymentID int64) ([]int, error)
	ListByPaymentTx(ctx context.Context, tx persistence.Transaction, paymentID int64) ([]int, error)
	ListByPayments(ctx context.Context, paymentIDs []int64) (map[int64][]int, error)
	ListSold(ctx context.Context, raffleID int64) ([]domain.SoldNumber, error)
	CountByState(ctx context.Context, raffleID int64) (map[domain.PaymentState]int, error)
}
