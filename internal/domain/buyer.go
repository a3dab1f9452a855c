package domain

// Buyer покупатель, ID - chat id в Telegram
type Buyer struct {
	ID       int64   `json:"id" db:"id"`
	Username *string `json:"username,omitempty" db:"username"`
	Name     string  `json:"name" db:"name"`
	Phone    string  `json:"phone" db:"phone"`
}
