package usecase

import (
	"context"

	"github.com/admin/tg-bots/raffle-bot/internal/domain"
)

// IRaffleService операции ядра бронирования и оплаты
type IRaffleService interface {
	CreateRaffle(ctx context.Context, name string, unitPrice int64) (*domain.Raffle, error)
	DeleteRaffle(ctx context.Context, raffleID int64) error
	GetRaffle(ctx context.Context, raffleID int64) (*domain.Raffle, error)
	ListRaffles(ctx context.Context) ([]*domain.Raffle, error)
	ListActiveRaffles(ctx context.Context) ([]*domain.RaffleOverview, error)
	PoolStatus(ctx context.Context, raffleID int64) ([]domain.PoolEntry, error)
	Stats(ctx context.Context, raffleID int64) (*domain.RaffleStats, error)
	SoldNumbers(ctx context.Context, raffleID int64) ([]domain.SoldNumber, error)

	RegisterBuyer(ctx context.Context, buyer *domain.Buyer) error
	GetBuyer(ctx context.Context, buyerID int64) (*domain.Buyer, error)

	Reserve(ctx context.Context, buyerID, raffleID int64, numbers []int) (*domain.Reservation, error)
	SubmitProof(ctx context.Context, buyerID int64, proofRef string) (*domain.Payment, error)
	Decide(ctx context.Context, paymentID int64, decision domain.Decision) (*domain.Payment, error)
	PaymentDetails(ctx context.Context, paymentID int64) (*domain.PaymentDetails, error)
	PaymentsByState(ctx context.Context, state domain.PaymentState) ([]*domain.PaymentDetails, error)
	BuyerPayments(ctx context.Context, buyerID int64) ([]*domain.PaymentDetails, error)
	SweepExpired(ctx context.Context) (int, error)
}
