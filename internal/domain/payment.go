package domain

import (
	"fmt"
	"time"
)

// PaymentState состояние платежа в ledger
type PaymentState string

const (
	PaymentStatePending  PaymentState = "pendiente"   // номера забронированы, ждём чек
	PaymentStateInReview PaymentState = "en_revision" // чек получен, ждёт решения ревьюера
	PaymentStateApproved PaymentState = "aprobado"    // номера проданы
	PaymentStateRejected PaymentState = "rechazado"   // номера освобождены
	PaymentStateExpired  PaymentState = "expirado"    // дедлайн истёк, номера освобождены
)

// PaymentStates все состояния в порядке жизненного цикла
var PaymentStates = []PaymentState{
	PaymentStatePending,
	PaymentStateInReview,
	PaymentStateApproved,
	PaymentStateRejected,
	PaymentStateExpired,
}

func (s PaymentState) String() string {
	return string(s)
}

func (s PaymentState) IsValid() bool {
	switch s {
	case PaymentStatePending, PaymentStateInReview, PaymentStateApproved, PaymentStateRejected, PaymentStateExpired:
		return true
	}
	return false
}

// IsTerminal из терминального состояния переходов нет
func (s PaymentState) IsTerminal() bool {
	return s == PaymentStateApproved || s == PaymentStateRejected || s == PaymentStateExpired
}

// HoldsNumbers платёж в этом состоянии удерживает свои номера
func (s PaymentState) HoldsNumbers() bool {
	return s == PaymentStatePending || s == PaymentStateInReview || s == PaymentStateApproved
}

// PaymentTrigger событие, двигающее платёж по state machine
type PaymentTrigger string

const (
	TriggerProofSubmitted  PaymentTrigger = "proof_submitted"
	TriggerDeadlineElapsed PaymentTrigger = "deadline_elapsed"
	TriggerApproved        PaymentTrigger = "approved"
	TriggerRejected        PaymentTrigger = "rejected"
)

type transitionKey struct {
	from    PaymentState
	trigger PaymentTrigger
}

var paymentTransitions = map[transitionKey]PaymentState{
	{PaymentStatePending, TriggerProofSubmitted}:  PaymentStateInReview,
	{PaymentStatePending, TriggerDeadlineElapsed}: PaymentStateExpired,
	{PaymentStatePending, TriggerRejected}:        PaymentStateRejected,
	{PaymentStateInReview, TriggerApproved}:       PaymentStateApproved,
	{PaymentStateInReview, TriggerRejected}:       PaymentStateRejected,
}

// Next возвращает состояние после события или ErrInvalidTransition
func (s PaymentState) Next(trigger PaymentTrigger) (PaymentState, error) {
	next, ok := paymentTransitions[transitionKey{from: s, trigger: trigger}]
	if !ok {
		return "", fmt.Errorf("%w: %s on %s", ErrInvalidTransition, trigger, s)
	}
	return next, nil
}

// ReleasesNumbers переход в это состояние освобождает номера платежа
func (s PaymentState) ReleasesNumbers() bool {
	return s == PaymentStateRejected || s == PaymentStateExpired
}

// Payment попытка покупателя выкупить группу номеров
type Payment struct {
	ID             int64        `json:"id" db:"id"`
	BuyerID        int64        `json:"buyer_id" db:"buyer_id"`
	RaffleID       int64        `json:"raffle_id" db:"raffle_id"`
	ProofReference *string      `json:"proof_reference,omitempty" db:"proof_reference"`
	State          PaymentState `json:"state" db:"state"`
	CreatedAt      int64        `json:"created_at" db:"created_at"` // epoch seconds
}

// CreatedTime время создания
func (p *Payment) CreatedTime() time.Time {
	return time.Unix(p.CreatedAt, 0)
}

// Age возраст платежа относительно now
func (p *Payment) Age(now time.Time) time.Duration {
	return now.Sub(p.CreatedTime())
}

// IsOverdue дедлайн считается истёкшим при age >= deadline
func (p *Payment) IsOverdue(now time.Time, deadline time.Duration) bool {
	return p.Age(now) >= deadline
}

// Decision решение ревьюера
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

func (d Decision) IsValid() bool {
	return d == DecisionApprove || d == DecisionReject
}

// Trigger событие state machine, соответствующее решению
func (d Decision) Trigger() PaymentTrigger {
	if d == DecisionApprove {
		return TriggerApproved
	}
	return TriggerRejected
}

// PaymentDetails платёж вместе с номерами, розыгрышем и покупателем (для ревью и истории)
type PaymentDetails struct {
	Payment
	RaffleName string `json:"raffle_name" db:"raffle_name"`
	UnitPrice  int64  `json:"unit_price" db:"unit_price"`
	BuyerName  string `json:"buyer_name" db:"buyer_name"`
	Numbers    []int  `json:"numbers" db:"-"`
}

// Expected ожидаемая сумма оплаты
func (d *PaymentDetails) Expected() int64 {
	return d.UnitPrice * int64(len(d.Numbers))
}
