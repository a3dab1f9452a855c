package domain

import (
	"time"

	"github.com/google/uuid"
)

// PaymentEventType тип события жизненного цикла платежа
type PaymentEventType string

const (
	PaymentEventReserved       PaymentEventType = "payment.reserved"
	PaymentEventProofSubmitted PaymentEventType = "payment.proof_submitted"
	PaymentEventApproved       PaymentEventType = "payment.approved"
	PaymentEventRejected       PaymentEventType = "payment.rejected"
	PaymentEventExpired        PaymentEventType = "payment.expired"
)

// PaymentEvent событие для внешних подписчиков, публикуется после коммита
type PaymentEvent struct {
	EventID    uuid.UUID        `json:"event_id"`
	Type       PaymentEventType `json:"type"`
	PaymentID  int64            `json:"payment_id"`
	RaffleID   int64            `json:"raffle_id"`
	BuyerID    int64            `json:"buyer_id"`
	State      PaymentState     `json:"state"`
	Numbers    []int            `json:"numbers,omitempty"`
	OccurredAt time.Time        `json:"occurred_at"`
}

func NewPaymentEvent(eventType PaymentEventType, p *Payment, numbers []int, at time.Time) PaymentEvent {
	return PaymentEvent{
		EventID:    uuid.New(),
		Type:       eventType,
		PaymentID:  p.ID,
		RaffleID:   p.RaffleID,
		BuyerID:    p.BuyerID,
		State:      p.State,
		Numbers:    numbers,
		OccurredAt: at.UTC(),
	}
}

// EventTypeFor тип события для состояния, в которое перешёл платёж
func EventTypeFor(state PaymentState) PaymentEventType {
	switch state {
	case PaymentStateInReview:
		return PaymentEventProofSubmitted
	case PaymentStateApproved:
		return PaymentEventApproved
	case PaymentStateRejected:
		return PaymentEventRejected
	case PaymentStateExpired:
		return PaymentEventExpired
	default:
		return PaymentEventReserved
	}
}
