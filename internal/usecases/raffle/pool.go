package raffle

import (
	"context"
	"fmt"
	"strings"

	"github.com/admin/tg-bots/raffle-bot/internal/domain"
	"github.com/admin/tg-bots/raffle-bot/internal/ports/persistence"
)

// CreateRaffle создаёт розыгрыш и его пул номеров одной транзакцией
func (s *Service) CreateRaffle(ctx context.Context, name string, unitPrice int64) (*domain.Raffle, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: raffle name is empty", domain.ErrValidation)
	}
	if unitPrice <= 0 {
		return nil, fmt.Errorf("%w: unit price must be positive, got %d", domain.ErrValidation, unitPrice)
	}

	raffle := &domain.Raffle{
		Name:         name,
		UnitPrice:    unitPrice,
		TotalNumbers: s.NumbersPerRaffle,
		Active:       true,
	}

	err := s.RaffleRepo.WithTransaction(ctx, func(ctx context.Context, tx persistence.Transaction) error {
		if err := s.RaffleRepo.CreateTx(ctx, tx, raffle); err != nil {
			return err
		}
		_, err := s.TicketRepo.CreatePoolTx(ctx, tx, raffle.ID, raffle.TotalNumbers)
		return err
	})
	if err != nil {
		return nil, domain.StoreError(fmt.Errorf("failed to create raffle: %w", err))
	}

	s.Log.Info("raffle created",
		"raffle_id", raffle.ID,
		"name", raffle.Name,
		"unit_price", raffle.UnitPrice,
		"numbers", raffle.TotalNumbers,
	)
	return raffle, nil
}

// DeleteRaffle удаляет розыгрыш вместе с номерами и платежами
func (s *Service) DeleteRaffle(ctx context.Context, raffleID int64) error {
	if err := s.RaffleRepo.Delete(ctx, raffleID); err != nil {
		return domain.StoreError(err)
	}
	s.Log.Info("raffle deleted", "raffle_id", raffleID)
	return nil
}

func (s *Service) GetRaffle(ctx context.Context, raffleID int64) (*domain.Raffle, error) {
	raffle, err := s.RaffleRepo.GetByID(ctx, raffleID)
	if err != nil {
		return nil, domain.StoreError(err)
	}
	return raffle, nil
}

func (s *Service) ListRaffles(ctx context.Context) ([]*domain.Raffle, error) {
	raffles, err := s.RaffleRepo.List(ctx)
	if err != nil {
		return nil, domain.StoreError(err)
	}
	return raffles, nil
}

// ListActiveRaffles активные розыгрыши со счётчиком свободных номеров
func (s *Service) ListActiveRaffles(ctx context.Context) ([]*domain.RaffleOverview, error) {
	raffles, err := s.RaffleRepo.ListActive(ctx)
	if err != nil {
		return nil, domain.StoreError(err)
	}
	return raffles, nil
}

// PoolStatus состояние пула по возрастанию номеров. Только для отображения:
// к моменту брони картина может устареть
func (s *Service) PoolStatus(ctx context.Context, raffleID int64) ([]domain.PoolEntry, error) {
	if _, err := s.RaffleRepo.GetByID(ctx, raffleID); err != nil {
		return nil, domain.StoreError(err)
	}
	pool, err := s.TicketRepo.PoolStatus(ctx, raffleID)
	if err != nil {
		return nil, domain.StoreError(err)
	}
	return pool, nil
}

// Stats сводка: продано (aprobado), забронировано (pendiente, en_revision), свободно
func (s *Service) Stats(ctx context.Context, raffleID int64) (*domain.RaffleStats, error) {
	raffle, err := s.RaffleRepo.GetByID(ctx, raffleID)
	if err != nil {
		return nil, domain.StoreError(err)
	}

	numbers, err := s.TicketRepo.CountByState(ctx, raffleID)
	if err != nil {
		return nil, domain.StoreError(err)
	}
	payments, err := s.PaymentRepo.CountByState(ctx, raffleID)
	if err != nil {
		return nil, domain.StoreError(err)
	}

	stats := &domain.RaffleStats{
		Raffle:        *raffle,
		Sold:          numbers[domain.PaymentStateApproved],
		Reserved:      numbers[domain.PaymentStatePending] + numbers[domain.PaymentStateInReview],
		PaymentCounts: payments,
	}
	stats.Free = raffle.TotalNumbers - stats.Sold - stats.Reserved
	return stats, nil
}

// SoldNumbers талонарий розыгрыша
func (s *Service) SoldNumbers(ctx context.Context, raffleID int64) ([]domain.SoldNumber, error) {
	if _, err := s.RaffleRepo.GetByID(ctx, raffleID); err != nil {
		return nil, domain.StoreError(err)
	}
	sold, err := s.TicketRepo.ListSold(ctx, raffleID)
	if err != nil {
		return nil, domain.StoreError(err)
	}
	return sold, nil
}
