package raffle

import (
	"context"
	"fmt"
	"strings"

	"github.com/admin/tg-bots/raffle-bot/internal/domain"
)

// RegisterBuyer создаёт или обновляет покупателя
func (s *Service) RegisterBuyer(ctx context.Context, buyer *domain.Buyer) error {
	buyer.Name = strings.TrimSpace(buyer.Name)
	buyer.Phone = strings.TrimSpace(buyer.Phone)
	if buyer.Name == "" || buyer.Phone == "" {
		return fmt.Errorf("%w: buyer %d: name and phone are required", domain.ErrValidation, buyer.ID)
	}

	if err := s.BuyerRepo.Upsert(ctx, buyer); err != nil {
		return domain.StoreError(err)
	}

	s.Log.Info("buyer registered", "buyer_id", buyer.ID)
	return nil
}

func (s *Service) GetBuyer(ctx context.Context, buyerID int64) (*domain.Buyer, error) {
	buyer, err := s.BuyerRepo.GetByID(ctx, buyerID)
	if err != nil {
		return nil, domain.StoreError(err)
	}
	return buyer, nil
}
