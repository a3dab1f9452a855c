package raffle

import (
	"context"
	"errors"
	"fmt"

	"github.com/admin/tg-bots/raffle-bot/internal/domain"
	"github.com/admin/tg-bots/raffle-bot/internal/ports/persistence"
)

// expireTx освобождает номера и переводит платёж в expirado. Вызывается под FOR UPDATE строки платежа
func (s *Service) expireTx(ctx context.Context, tx persistence.Transaction, p *domain.Payment) ([]int, error) {
	next, err := p.State.Next(domain.TriggerDeadlineElapsed)
	if err != nil {
		return nil, err
	}

	numbers, err := s.TicketRepo.ListByPaymentTx(ctx, tx, p.ID)
	if err != nil {
		return nil, err
	}
	if _, err := s.TicketRepo.ReleaseTx(ctx, tx, p.ID); err != nil {
		return nil, err
	}

	changed, err := s.PaymentRepo.TransitionTx(ctx, tx, p.ID, p.State, next, nil)
	if err != nil {
		return nil, err
	}
	if changed == 0 {
		return nil, fmt.Errorf("%w: payment %d left %s concurrently", domain.ErrInvalidTransition, p.ID, p.State)
	}

	p.State = next
	return numbers, nil
}

// SubmitProof принимает чек по последнему платежу покупателя.
// Если дедлайн уже прошёл, платёж истекает (с коммитом) и возвращается ErrPaymentExpired,
// уведомление покупателю при этом не отправляется
func (s *Service) SubmitProof(ctx context.Context, buyerID int64, proofRef string) (*domain.Payment, error) {
	if proofRef == "" {
		return nil, fmt.Errorf("%w: proof reference is empty", domain.ErrValidation)
	}

	var (
		payment  *domain.Payment
		expired  bool
		released []int
	)

	err := s.PaymentRepo.WithTransaction(ctx, func(ctx context.Context, tx persistence.Transaction) error {
		p, err := s.PaymentRepo.GetLatestByBuyerForUpdateTx(ctx, tx, buyerID)
		if err != nil {
			if errors.Is(err, domain.ErrPaymentNotFound) {
				return domain.ErrNoPendingPayment
			}
			return err
		}
		if p.State != domain.PaymentStatePending {
			return fmt.Errorf("%w: payment %d is %s", domain.ErrInvalidTransition, p.ID, p.State)
		}

		if p.IsOverdue(s.Now(), s.Deadline) {
			released, err = s.expireTx(ctx, tx, p)
			if err != nil {
				return err
			}
			payment, expired = p, true
			return nil
		}

		next, err := p.State.Next(domain.TriggerProofSubmitted)
		if err != nil {
			return err
		}
		changed, err := s.PaymentRepo.TransitionTx(ctx, tx, p.ID, p.State, next, &proofRef)
		if err != nil {
			return err
		}
		if changed == 0 {
			return fmt.Errorf("%w: payment %d left %s concurrently", domain.ErrInvalidTransition, p.ID, p.State)
		}

		p.State = next
		p.ProofReference = &proofRef
		payment = p
		return nil
	})
	if err != nil {
		return nil, domain.StoreError(err)
	}

	if expired {
		s.Log.InfoContext(ctx, "payment expired on proof submission",
			"payment_id", payment.ID,
			"buyer_id", buyerID,
			"released", len(released),
		)
		// покупателю отвечает вызывающий, здесь только событие
		s.publish(ctx, domain.EventTypeFor(payment.State), payment, released)
		return nil, fmt.Errorf("%w: payment %d", domain.ErrPaymentExpired, payment.ID)
	}

	s.Log.InfoContext(ctx, "proof submitted",
		"payment_id", payment.ID,
		"buyer_id", buyerID,
		"state", payment.State,
	)
	s.publish(ctx, domain.PaymentEventProofSubmitted, payment, nil)
	return payment, nil
}

// Decide решение ревьюера: approve только из en_revision, reject из pendiente или en_revision
func (s *Service) Decide(ctx context.Context, paymentID int64, decision domain.Decision) (*domain.Payment, error) {
	if !decision.IsValid() {
		return nil, fmt.Errorf("%w: unknown decision %q", domain.ErrInvalidTransition, decision)
	}

	var (
		payment *domain.Payment
		numbers []int
	)

	err := s.PaymentRepo.WithTransaction(ctx, func(ctx context.Context, tx persistence.Transaction) error {
		p, err := s.PaymentRepo.GetForUpdateTx(ctx, tx, paymentID)
		if err != nil {
			return err
		}

		next, err := p.State.Next(decision.Trigger())
		if err != nil {
			return fmt.Errorf("payment %d: %w", paymentID, err)
		}

		numbers, err = s.TicketRepo.ListByPaymentTx(ctx, tx, p.ID)
		if err != nil {
			return err
		}
		if next.ReleasesNumbers() {
			if _, err := s.TicketRepo.ReleaseTx(ctx, tx, p.ID); err != nil {
				return err
			}
		}

		changed, err := s.PaymentRepo.TransitionTx(ctx, tx, p.ID, p.State, next, nil)
		if err != nil {
			return err
		}
		if changed == 0 {
			return fmt.Errorf("%w: payment %d left %s concurrently", domain.ErrInvalidTransition, p.ID, p.State)
		}

		p.State = next
		payment = p
		return nil
	})
	if err != nil {
		return nil, domain.StoreError(err)
	}

	s.Log.InfoContext(ctx, "payment decided",
		"payment_id", payment.ID,
		"decision", decision,
		"state", payment.State,
		"numbers", numbers,
	)
	s.notifyOutcome(ctx, payment, numbers)
	return payment, nil
}

// PaymentDetails платёж с номерами, розыгрышем и покупателем
func (s *Service) PaymentDetails(ctx context.Context, paymentID int64) (*domain.PaymentDetails, error) {
	details, err := s.PaymentRepo.GetDetails(ctx, paymentID)
	if err != nil {
		return nil, domain.StoreError(err)
	}
	details.Numbers, err = s.TicketRepo.ListByPayment(ctx, paymentID)
	if err != nil {
		return nil, domain.StoreError(err)
	}
	return details, nil
}

// PaymentsByState например очередь ревью (en_revision)
func (s *Service) PaymentsByState(ctx context.Context, state domain.PaymentState) ([]*domain.PaymentDetails, error) {
	if !state.IsValid() {
		return nil, fmt.Errorf("%w: unknown payment state %q", domain.ErrValidation, state)
	}
	details, err := s.PaymentRepo.ListDetailsByState(ctx, state)
	if err != nil {
		return nil, domain.StoreError(err)
	}
	return s.attachNumbers(ctx, details)
}

// BuyerPayments история покупателя. У rechazado и expirado номеров уже нет
func (s *Service) BuyerPayments(ctx context.Context, buyerID int64) ([]*domain.PaymentDetails, error) {
	details, err := s.PaymentRepo.ListDetailsByBuyer(ctx, buyerID)
	if err != nil {
		return nil, domain.StoreError(err)
	}
	return s.attachNumbers(ctx, details)
}

func (s *Service) attachNumbers(ctx context.Context, details []*domain.PaymentDetails) ([]*domain.PaymentDetails, error) {
	if len(details) == 0 {
		return details, nil
	}

	ids := make([]int64, 0, len(details))
	for _, d := range details {
		ids = append(ids, d.ID)
	}
	numbers, err := s.TicketRepo.ListByPayments(ctx, ids)
	if err != nil {
		return nil, domain.StoreError(err)
	}
	for _, d := range details {
		d.Numbers = numbers[d.ID]
	}
	return details, nil
}
