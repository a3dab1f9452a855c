package domain

import "fmt"

// TicketHolder привязка номера к платежу
type TicketHolder struct {
	PaymentID int64 `json:"payment_id"`
	BuyerID   int64 `json:"buyer_id"`
}

// Ticket номер розыгрыша. Holder == nil - номер свободен, иначе привязан к платежу
type Ticket struct {
	ID       int64         `json:"id"`
	RaffleID int64         `json:"raffle_id"`
	Value    int           `json:"value"`
	Holder   *TicketHolder `json:"holder,omitempty"`
}

func (t *Ticket) Reserved() bool {
	return t.Holder != nil
}

// Bind привязывает свободный номер к платежу
func (t *Ticket) Bind(paymentID, buyerID int64) error {
	if t.Holder != nil {
		return NewConflictError(t.RaffleID, []int{t.Value})
	}
	t.Holder = &TicketHolder{PaymentID: paymentID, BuyerID: buyerID}
	return nil
}

// Release освобождает номер, повторный вызов ничего не делает
func (t *Ticket) Release() {
	t.Holder = nil
}

// TicketRow строка numbers как она лежит в БД
type TicketRow struct {
	ID        int64  `db:"id"`
	RaffleID  int64  `db:"raffle_id"`
	Value     int    `db:"value"`
	BuyerID   *int64 `db:"buyer_id"`
	PaymentID *int64 `db:"payment_id"`
	Reserved  bool   `db:"reserved"`
}

// ToTicket проверяет согласованность reserved и ссылок
func (r *TicketRow) ToTicket() (*Ticket, error) {
	t := &Ticket{ID: r.ID, RaffleID: r.RaffleID, Value: r.Value}
	switch {
	case r.Reserved && r.PaymentID != nil && r.BuyerID != nil:
		t.Holder = &TicketHolder{PaymentID: *r.PaymentID, BuyerID: *r.BuyerID}
	case !r.Reserved && r.PaymentID == nil && r.BuyerID == nil:
	default:
		return nil, fmt.Errorf("ticket %d of raffle %d has inconsistent binding", r.Value, r.RaffleID)
	}
	return t, nil
}

// PoolEntry проекция пула для отображения
type PoolEntry struct {
	Value    int  `json:"value" db:"value"`
	Reserved bool `json:"reserved" db:"reserved"`
}

// FreeValues свободные номера из пула
func FreeValues(pool []PoolEntry) []int {
	free := make([]int, 0, len(pool))
	for _, e := range pool {
		if !e.Reserved {
			free = append(free, e.Value)
		}
	}
	return free
}
