package raffle_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/admin/tg-bots/raffle-bot/internal/adapters/secondary/storage/pg"
	"github.com/admin/tg-bots/raffle-bot/internal/domain"
	buyerRepo "github.com/admin/tg-bots/raffle-bot/internal/repository/buyer"
	paymentRepo "github.com/admin/tg-bots/raffle-bot/internal/repository/payment"
	raffleRepo "github.com/admin/tg-bots/raffle-bot/internal/repository/raffle"
	ticketRepo "github.com/admin/tg-bots/raffle-bot/internal/repository/ticket"
	"github.com/admin/tg-bots/raffle-bot/internal/usecases/raffle"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent map[int64][]string
}

func (n *recordingNotifier) Notify(_ context.Context, buyerID int64, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.sent == nil {
		n.sent = map[int64][]string{}
	}
	n.sent[buyerID] = append(n.sent[buyerID], message)
	return nil
}

// newPostgresService поднимает сервис на реальной БД из RAFFLE_TEST_POSTGRES_DSN
func newPostgresService(t *testing.T) (*raffle.Service, *recordingNotifier) {
	t.Helper()

	dsn := os.Getenv("RAFFLE_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("RAFFLE_TEST_POSTGRES_DSN is not set")
	}

	ctx := context.Background()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := &pg.Config{URL: dsn, StatementTimeoutMillis: 10000, MaxOpenConns: 25}
	conn, err := cfg.NewConnection()
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, pg.RunMigrations(ctx, conn, log))
	_, err = conn.ExecContext(ctx, `TRUNCATE numbers, payments, buyers, raffles RESTART IDENTITY CASCADE`)
	require.NoError(t, err)

	db := pg.NewDB(conn)
	notifier := &recordingNotifier{}
	svc := raffle.New(
		raffleRepo.New(db, log),
		ticketRepo.New(db, log),
		paymentRepo.New(db, log),
		buyerRepo.New(db, log),
		notifier,
		nil,
		nil,
		log,
	)
	return svc, notifier
}

func TestPostgres_ConcurrentReservations(t *testing.T) {
	svc, _ := newPostgresService(t)
	ctx := context.Background()

	r, err := svc.CreateRaffle(ctx, "Rifa concurrente", 1000)
	require.NoError(t, err)

	const buyers = 16
	for i := 0; i < buyers; i++ {
		require.NoError(t, svc.RegisterBuyer(ctx, &domain.Buyer{
			ID:    int64(5000 + i),
			Name:  fmt.Sprintf("Comprador %d", i),
			Phone: "3000000000",
		}))
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners int
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// пересекающиеся наборы в разном порядке
			numbers := []int{30, 20 + i%5, 10}
			if i%2 == 1 {
				numbers = []int{10, 20 + i%5, 30}
			}
			_, err := svc.Reserve(ctx, int64(5000+i), r.ID, numbers)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				winners++
				return
			}
			if !errors.Is(err, domain.ErrConflict) {
				t.Errorf("buyer %d: unexpected error: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, winners)

	pool, err := svc.PoolStatus(ctx, r.ID)
	require.NoError(t, err)
	reserved := 0
	for _, e := range pool {
		if e.Reserved {
			reserved++
		}
	}
	assert.Equal(t, 3, reserved)
}

func TestPostgres_Scenario(t *testing.T) {
	svc, notifier := newPostgresService(t)
	ctx := context.Background()

	for _, id := range []int64{1, 2, 3} {
		require.NoError(t, svc.RegisterBuyer(ctx, &domain.Buyer{ID: id, Name: fmt.Sprintf("B%d", id), Phone: "3001112233"}))
	}

	r, err := svc.CreateRaffle(ctx, "Rifa", 20000)
	require.NoError(t, err)

	resA, err := svc.Reserve(ctx, 1, r.ID, []int{3, 7, 42})
	require.NoError(t, err)
	assert.Equal(t, int64(60000), resA.Total)

	_, err = svc.Reserve(ctx, 2, r.ID, []int{7, 9})
	var conflict *domain.ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, []int{7}, conflict.Taken)
	assert.False(t, conflict.Pool[9].Reserved)

	_, err = svc.SubmitProof(ctx, 1, "file-a")
	require.NoError(t, err)
	_, err = svc.Decide(ctx, resA.Payment.ID, domain.DecisionApprove)
	require.NoError(t, err)
	require.Len(t, notifier.sent[1], 1)
	assert.Contains(t, notifier.sent[1][0], "3, 7, 42")

	resC, err := svc.Reserve(ctx, 3, r.ID, []int{9, 10})
	require.NoError(t, err)

	svc.Now = func() time.Time { return time.Now().Add(11 * time.Minute) }
	released, err := svc.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, released)

	history, err := svc.BuyerPayments(ctx, 3)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, resC.Payment.ID, history[0].ID)
	assert.Equal(t, domain.PaymentStateExpired, history[0].State)
	assert.Empty(t, history[0].Numbers)

	released, err = svc.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, released)
}
