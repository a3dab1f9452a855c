package raffle

import (
	"log/slog"
	"time"

	"github.com/admin/tg-bots/raffle-bot/internal/domain"
	"github.com/admin/tg-bots/raffle-bot/internal/ports/repository"
	"github.com/admin/tg-bots/raffle-bot/internal/ports/service"
	"github.com/admin/tg-bots/raffle-bot/internal/ports/usecase"
)

var _ usecase.IRaffleService = (*Service)(nil)

// Config параметры розыгрышей
type Config struct {
	ReservationDeadline time.Duration `envconfig:"RESERVATION_DEADLINE" default:"10m"`
	SweepInterval       time.Duration `envconfig:"SWEEP_INTERVAL" default:"60s"`
	NumbersPerRaffle    int           `envconfig:"NUMBERS_PER_RAFFLE" default:"100"`
	SessionTTL          time.Duration `envconfig:"SESSION_TTL" default:"30m"`
	PageSize            int           `envconfig:"PAGE_SIZE" default:"50"`
}

// Service ядро бронирования номеров и жизненного цикла платежей
type Service struct {
	RaffleRepo  repository.IRaffleRepo
	TicketRepo  repository.ITicketRepo
	PaymentRepo repository.IPaymentRepo
	BuyerRepo   repository.IBuyerRepo
	Notifier    service.INotifier
	Events      service.IPaymentEventPublisher // может быть nil, если Kafka не настроена
	Log         *slog.Logger

	Deadline         time.Duration
	NumbersPerRaffle int
	Now              func() time.Time
}

func New(
	raffleRepo repository.IRaffleRepo,
	ticketRepo repository.ITicketRepo,
	paymentRepo repository.IPaymentRepo,
	buyerRepo repository.IBuyerRepo,
	notifier service.INotifier,
	events service.IPaymentEventPublisher,
	cfg *Config,
	log *slog.Logger,
) *Service {
	s := &Service{
		RaffleRepo:       raffleRepo,
		TicketRepo:       ticketRepo,
		PaymentRepo:      paymentRepo,
		BuyerRepo:        buyerRepo,
		Notifier:         notifier,
		Events:           events,
		Log:              log,
		Deadline:         domain.DefaultReservationDeadline,
		NumbersPerRaffle: domain.DefaultNumbersPerRaffle,
		Now:              time.Now,
	}
	if cfg != nil {
		if cfg.ReservationDeadline > 0 {
			s.Deadline = cfg.ReservationDeadline
		}
		if cfg.NumbersPerRaffle > 0 {
			s.NumbersPerRaffle = cfg.NumbersPerRaffle
		}
	}
	return s
}
