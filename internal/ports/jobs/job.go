package jobs

import (
	"context"
	"time"
)

// Job представляет периодическую задачу, которую можно запланировать
type Job interface {
	Name() string
	NextRun(now time.Time) time.Time
	Run(ctx context.Context) error
}

// Retryable джоба со своей лестницей ретраев. Пустой список - без ретраев, ждём следующего запуска
type Retryable interface {
	RetryDelays() []time.Duration
}
