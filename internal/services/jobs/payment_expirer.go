package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/admin/tg-bots/raffle-bot/internal/domain"
)

const paymentExpirerName = "payment-expirer"

// Sweeper освобождает номера просроченных броней
type Sweeper interface {
	SweepExpired(ctx context.Context) (int, error)
}

// PaymentExpirer джоба, переводящая просроченные pendiente в expirado, раз в interval
type PaymentExpirer struct {
	sweeper  Sweeper
	interval time.Duration
	log      *slog.Logger
}

func NewPaymentExpirer(sweeper Sweeper, interval time.Duration, log *slog.Logger) *PaymentExpirer {
	if interval <= 0 {
		interval = domain.DefaultSweepInterval
	}
	return &PaymentExpirer{
		sweeper:  sweeper,
		interval: interval,
		log:      log,
	}
}

func (j *PaymentExpirer) Name() string {
	return paymentExpirerName
}

func (j *PaymentExpirer) NextRun(now time.Time) time.Time {
	return now.Add(j.interval)
}

// RetryDelays без ретраев: следующий запуск и так через interval
func (j *PaymentExpirer) RetryDelays() []time.Duration {
	return nil
}

func (j *PaymentExpirer) Run(ctx context.Context) error {
	expired, err := j.sweeper.SweepExpired(ctx)
	if expired > 0 {
		j.log.Info("expired payments released", "job_name", paymentExpirerName, "expired", expired)
	}
	return err
}
