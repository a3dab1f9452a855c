package service

import (
	"context"
	"time"
)

// IProofArchive копии чеков об оплате во внешнем хранилище
type IProofArchive interface {
	// Archive сохраняет чек, возвращает ключ объекта
	Archive(ctx context.Context, paymentID int64, fileID string) (string, error)
	// URL временная ссылка на сохранённый чек
	URL(ctx context.Context, paymentID int64, fileID string, expires time.Duration) (string, error)
}
