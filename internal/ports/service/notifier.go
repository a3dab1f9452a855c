package service

import "context"

// INotifier доставка сообщений покупателю. Ошибка доставки не влияет на состояние платежей
type INotifier interface {
	Notify(ctx context.Context, buyerID int64, message string) error
}
