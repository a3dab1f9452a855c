package raffle

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/admin/tg-bots/raffle-bot/internal/domain"
	"github.com/admin/tg-bots/raffle-bot/internal/ports/persistence"
)

// normalizeSelection сортирует выбор и убирает дубли
func normalizeSelection(numbers []int) []int {
	values := append([]int(nil), numbers...)
	sort.Ints(values)
	out := values[:0]
	for i, v := range values {
		if i > 0 && v == values[i-1] {
			continue
		}
		out = append(out, v)
	}
	return out
}

// Reserve атомарно бронирует номера под новый платёж в pendiente.
// Либо все номера привязаны к платежу, либо ничего не изменилось
func (s *Service) Reserve(ctx context.Context, buyerID, raffleID int64, numbers []int) (*domain.Reservation, error) {
	values := normalizeSelection(numbers)
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: empty selection", domain.ErrInvalidNumbers)
	}

	if _, err := s.BuyerRepo.GetByID(ctx, buyerID); err != nil {
		return nil, domain.StoreError(err)
	}

	var reservation *domain.Reservation
	err := s.PaymentRepo.WithTransaction(ctx, func(ctx context.Context, tx persistence.Transaction) error {
		raffle, err := s.RaffleRepo.GetByIDTx(ctx, tx, raffleID)
		if err != nil {
			return err
		}
		if !raffle.Active {
			return fmt.Errorf("%w: raffle %d is closed", domain.ErrRaffleNotFound, raffleID)
		}
		for _, v := range values {
			if !raffle.InRange(v) {
				return fmt.Errorf("%w: %d is outside 0..%d", domain.ErrInvalidNumbers, v, raffle.TotalNumbers-1)
			}
		}

		tickets, err := s.TicketRepo.LockTx(ctx, tx, raffleID, values)
		if err != nil {
			return err
		}
		if len(tickets) != len(values) {
			return fmt.Errorf("%w: raffle %d has %d of %d requested numbers", domain.ErrInvalidNumbers, raffleID, len(tickets), len(values))
		}

		var taken []int
		for _, t := range tickets {
			if t.Reserved() {
				taken = append(taken, t.Value)
			}
		}
		if len(taken) > 0 {
			return domain.NewConflictError(raffleID, taken)
		}

		payment := &domain.Payment{
			BuyerID:   buyerID,
			RaffleID:  raffleID,
			State:     domain.PaymentStatePending,
			CreatedAt: s.Now().Unix(),
		}
		if err := s.PaymentRepo.CreateTx(ctx, tx, payment); err != nil {
			return err
		}

		bound, err := s.TicketRepo.BindTx(ctx, tx, raffleID, values, payment.ID, buyerID)
		if err != nil {
			return err
		}
		if bound != int64(len(values)) {
			// кто-то занял номер между проверкой и привязкой, какие именно - покажет свежий пул
			return domain.NewConflictError(raffleID, nil)
		}

		reservation = &domain.Reservation{
			Payment:   *payment,
			Numbers:   values,
			UnitPrice: raffle.UnitPrice,
			Total:     raffle.Total(len(values)),
		}
		return nil
	})
	if err != nil {
		var conflict *domain.ConflictError
		if errors.As(err, &conflict) {
			return nil, s.withFreshPool(ctx, conflict, values)
		}
		return nil, domain.StoreError(err)
	}

	s.Log.InfoContext(ctx, "numbers reserved",
		"payment_id", reservation.Payment.ID,
		"buyer_id", buyerID,
		"raffle_id", raffleID,
		"numbers", values,
		"total", reservation.Total,
	)

	s.publish(ctx, domain.PaymentEventReserved, &reservation.Payment, values)
	return reservation, nil
}

// withFreshPool дополняет конфликт актуальным пулом, прочитанным после отката
func (s *Service) withFreshPool(ctx context.Context, conflict *domain.ConflictError, requested []int) error {
	s.Log.InfoContext(ctx, "reservation conflict",
		"raffle_id", conflict.RaffleID,
		"requested", requested,
		"taken", conflict.Taken,
	)

	pool, err := s.TicketRepo.PoolStatus(ctx, conflict.RaffleID)
	if err != nil {
		s.Log.WarnContext(ctx, "failed to reload pool after conflict", "error", err, "raffle_id", conflict.RaffleID)
		return conflict
	}
	conflict.Pool = pool

	if len(conflict.Taken) == 0 {
		reserved := make(map[int]bool, len(pool))
		for _, e := range pool {
			reserved[e.Value] = e.Reserved
		}
		for _, v := range requested {
			if reserved[v] {
				conflict.Taken = append(conflict.Taken, v)
			}
		}
	}
	return conflict
}
