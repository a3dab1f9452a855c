package domain

import "time"

const (
	DefaultNumbersPerRaffle    = 100
	DefaultReservationDeadline = 600 * time.Second
	DefaultSweepInterval       = 60 * time.Second
)

// Raffle розыгрыш: пул номеров по фиксированной цене
type Raffle struct {
	ID           int64  `json:"id" db:"id"`
	Name         string `json:"name" db:"name"`
	UnitPrice    int64  `json:"unit_price" db:"unit_price"`
	TotalNumbers int    `json:"total_numbers" db:"total_numbers"`
	Active       bool   `json:"active" db:"active"`
}

// InRange значение номера принадлежит пулу 0..total-1
func (r *Raffle) InRange(value int) bool {
	return value >= 0 && value < r.TotalNumbers
}

// Total стоимость count номеров
func (r *Raffle) Total(count int) int64 {
	return r.UnitPrice * int64(count)
}

// RaffleOverview розыгрыш со счётчиком свободных номеров (для списка в боте)
type RaffleOverview struct {
	Raffle
	FreeNumbers int `json:"free_numbers" db:"free_numbers"`
}

// RaffleStats сводка по розыгрышу
type RaffleStats struct {
	Raffle        Raffle               `json:"raffle"`
	Sold          int                  `json:"sold"`     // номера в aprobado
	Reserved      int                  `json:"reserved"` // номера в pendiente/en_revision
	Free          int                  `json:"free"`
	PaymentCounts map[PaymentState]int `json:"payment_counts"`
}

// SoldNumber строка талона: проданный номер и его покупатель
type SoldNumber struct {
	Value     int     `json:"value" db:"value"`
	BuyerID   int64   `json:"buyer_id" db:"buyer_id"`
	BuyerName string  `json:"buyer_name" db:"buyer_name"`
	Username  *string `json:"username,omitempty" db:"username"`
	Phone     string  `json:"phone" db:"phone"`
	PaymentID int64   `json:"payment_id" db:"payment_id"`
}

// Reservation результат успешной брони
type Reservation struct {
	Payment   Payment `json:"payment"`
	Numbers   []int   `json:"numbers"`
	UnitPrice int64   `json:"unit_price"`
	Total     int64   `json:"total"`
}
