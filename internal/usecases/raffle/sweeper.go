package raffle

import (
	"context"
	"errors"
	"fmt"

	"github.com/admin/tg-bots/raffle-bot/internal/domain"
	"github.com/admin/tg-bots/raffle-bot/internal/ports/persistence"
)

// SweepExpired переводит просроченные pendiente в expirado и освобождает их номера.
// Каждый платёж в своей транзакции; ошибки по одному платежу не останавливают остальные
func (s *Service) SweepExpired(ctx context.Context) (int, error) {
	now := s.Now()
	cutoff := now.Add(-s.Deadline).Unix()

	ids, err := s.PaymentRepo.ListOverdueIDs(ctx, domain.PaymentStatePending, cutoff)
	if err != nil {
		return 0, domain.StoreError(err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	var (
		expired int
		errs    []error
	)
	for _, id := range ids {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}

		payment, numbers, err := s.expireOne(ctx, id)
		if err != nil {
			s.Log.ErrorContext(ctx, "failed to expire payment", "error", err, "payment_id", id)
			errs = append(errs, fmt.Errorf("payment %d: %w", id, err))
			continue
		}
		if payment == nil {
			continue
		}

		expired++
		s.Log.InfoContext(ctx, "payment expired",
			"payment_id", payment.ID,
			"buyer_id", payment.BuyerID,
			"numbers", numbers,
		)
		s.notifyOutcome(ctx, payment, numbers)
	}

	if len(errs) > 0 {
		return expired, domain.StoreError(errors.Join(errs...))
	}
	return expired, nil
}

// expireOne nil payment - платёж уже не pendiente или ещё не просрочен, пропускаем
func (s *Service) expireOne(ctx context.Context, paymentID int64) (*domain.Payment, []int, error) {
	var (
		payment *domain.Payment
		numbers []int
	)

	err := s.PaymentRepo.WithTransaction(ctx, func(ctx context.Context, tx persistence.Transaction) error {
		p, err := s.PaymentRepo.GetForUpdateTx(ctx, tx, paymentID)
		if err != nil {
			if errors.Is(err, domain.ErrPaymentNotFound) {
				return nil
			}
			return err
		}
		if p.State != domain.PaymentStatePending || !p.IsOverdue(s.Now(), s.Deadline) {
			return nil
		}

		numbers, err = s.expireTx(ctx, tx, p)
		if err != nil {
			return err
		}
		payment = p
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return payment, numbers, nil
}
