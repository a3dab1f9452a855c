package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"log/slog"

	"github.com/admin/tg-bots/raffle-bot/internal/domain"
	kafkaPorts "github.com/admin/tg-bots/raffle-bot/internal/ports/kafka"
	"github.com/admin/tg-bots/raffle-bot/internal/ports/usecase"
)

// ReviewDecisionHandler применяет решения ревьюеров из внешней системы (топик review-decisions)
type ReviewDecisionHandler struct {
	Raffles usecase.IRaffleService
	Log     *slog.Logger
}

// NewReviewDecisionHandler создаёт новый handler для решений по платежам
func NewReviewDecisionHandler(raffles usecase.IRaffleService, log *slog.Logger) kafkaPorts.MessageHandler {
	return &ReviewDecisionHandler{
		Raffles: raffles,
		Log:     log,
	}
}

// ReviewDecisionMessage решение по одному платежу
type ReviewDecisionMessage struct {
	PaymentID int64           `json:"payment_id"`
	Decision  domain.Decision `json:"decision"`
}

// HandleMessage обрабатывает решение. Неизвестный платёж и повторное решение - бизнес-исходы
func (h *ReviewDecisionHandler) HandleMessage(ctx context.Context, key string, value []byte, headers map[string]string) error {
	var msg ReviewDecisionMessage
	if err := json.Unmarshal(value, &msg); err != nil {
		h.Log.WarnContext(ctx, "malformed review decision dropped", "error", err, "key", key)
		return domain.WrapBusinessError(fmt.Errorf("failed to unmarshal review decision: %w", err))
	}

	if msg.PaymentID == 0 || !msg.Decision.IsValid() {
		h.Log.WarnContext(ctx, "invalid review decision dropped",
			"key", key,
			"payment_id", msg.PaymentID,
			"decision", msg.Decision,
		)
		return domain.WrapBusinessError(fmt.Errorf("invalid review decision for payment %d: %q", msg.PaymentID, msg.Decision))
	}

	h.Log.DebugContext(ctx, "processing review decision",
		"payment_id", msg.PaymentID,
		"decision", msg.Decision,
		"source", headers["source"],
	)

	payment, err := h.Raffles.Decide(ctx, msg.PaymentID, msg.Decision)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidTransition) {
			h.Log.InfoContext(ctx, "review decision not applied",
				"payment_id", msg.PaymentID,
				"decision", msg.Decision,
				"reason", err.Error(),
			)
			return domain.WrapBusinessError(err)
		}
		return fmt.Errorf("failed to decide payment %d: %w", msg.PaymentID, err)
	}

	h.Log.InfoContext(ctx, "review decision applied",
		"payment_id", payment.ID,
		"state", payment.State,
	)
	return nil
}
