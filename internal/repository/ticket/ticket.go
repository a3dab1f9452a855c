package ticketRepo

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/admin/tg-bots/raffle-bot/internal/domain"
	"github.com/admin/tg-bots/raffle-bot/internal/ports/persistence"
	ports "github.com/admin/tg-bots/raffle-bot/internal/ports/repository"
	"github.com/lib/pq"
)

type ticketColumns struct {
	TableName string
	ID        string
	RaffleID  string
	Value     string
	BuyerID   string
	PaymentID string
	Reserved  string
}

type Repository struct {
	db      persistence.Persistence
	Log     *slog.Logger
	columns ticketColumns
}

// New создаёт репозиторий пула номеров
func New(db persistence.Persistence, log *slog.Logger) ports.ITicketRepo {
	cols := ticketColumns{
		TableName: "numbers",
		ID:        "id",
		RaffleID:  "raffle_id",
		Value:     "value",
		BuyerID:   "buyer_id",
		PaymentID: "payment_id",
		Reserved:  "reserved",
	}
	return &Repository{
		db:      db,
		Log:     log,
		columns: cols,
	}
}

func (r *Repository) allColumns() string {
	return fmt.Sprintf("%s, %s, %s, %s, %s, %s",
		r.columns.ID,
		r.columns.RaffleID,
		r.columns.Value,
		r.columns.BuyerID,
		r.columns.PaymentID,
		r.columns.Reserved,
	)
}

func toInt64s(values []int) pq.Int64Array {
	out := make(pq.Int64Array, len(values))
	for i, v := range values {
		out[i] = int64(v)
	}
	return out
}

// CreatePoolTx создаёт номера 0..count-1 одним INSERT в транзакции розыгрыша
func (r *Repository) CreatePoolTx(ctx context.Context, tx persistence.Transaction, raffleID int64, count int) (int64, error) {
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s) SELECT $1, g FROM generate_series(0, $2 - 1) AS g`,
		r.columns.TableName,
		r.columns.RaffleID,
		r.columns.Value,
	)

	created, err := tx.ExecWithResult(ctx, query, raffleID, count)
	if err != nil {
		r.Log.Error("failed to create number pool",
			"error", err,
			"raffle_id", raffleID,
			"count", count,
		)
		return 0, fmt.Errorf("failed to create number pool: %w", err)
	}
	if created != int64(count) {
		r.Log.Error("number pool created partially",
			"raffle_id", raffleID,
			"expected", count,
			"created", created,
		)
		return created, fmt.Errorf("number pool created partially: %d of %d", created, count)
	}

	r.Log.Debug("number pool created", "raffle_id", raffleID, "count", created)
	return created, nil
}

// PoolStatus проекция пула по возрастанию номера, только для отображения
func (r *Repository) PoolStatus(ctx context.Context, raffleID int64) ([]domain.PoolEntry, error) {
	query := fmt.Sprintf(`SELECT %s, %s FROM %s WHERE %s = $1 ORDER BY %s`,
		r.columns.Value,
		r.columns.Reserved,
		r.columns.TableName,
		r.columns.RaffleID,
		r.columns.Value,
	)

	var pool []domain.PoolEntry
	if err := r.db.Select(ctx, &pool, query, raffleID); err != nil {
		r.Log.Error("failed to get pool status", "error", err, "raffle_id", raffleID)
		return nil, fmt.Errorf("failed to get pool status: %w", err)
	}

	return pool, nil
}

// LockTx перечитывает текущий статус номеров под FOR UPDATE. Порядок по value исключает дедлоки
func (r *Repository) LockTx(ctx context.Context, tx persistence.Transaction, raffleID int64, values []int) ([]*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = ANY($2) ORDER BY %s FOR UPDATE`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.RaffleID,
		r.columns.Value,
		r.columns.Value,
	)

	var rows []domain.TicketRow
	if err := tx.Select(ctx, &rows, query, raffleID, toInt64s(values)); err != nil {
		r.Log.Error("failed to lock numbers",
			"error", err,
			"raffle_id", raffleID,
			"values", values,
		)
		return nil, fmt.Errorf("failed to lock numbers: %w", err)
	}

	tickets := make([]*domain.Ticket, 0, len(rows))
	for i := range rows {
		ticket, err := rows[i].ToTicket()
		if err != nil {
			r.Log.Error("inconsistent number binding", "error", err, "raffle_id", raffleID)
			return nil, err
		}
		tickets = append(tickets, ticket)
	}

	return tickets, nil
}

// BindTx одна условная операция: проверка reserved = false и привязка без окна между ними
func (r *Repository) BindTx(ctx context.Context, tx persistence.Transaction, raffleID int64, values []int, paymentID, buyerID int64) (int64, error) {
	query := fmt.Sprintf(`UPDATE %s SET %s = true, %s = $1, %s = $2 WHERE %s = $3 AND %s = ANY($4) AND %s = false`,
		r.columns.TableName,
		r.columns.Reserved,
		r.columns.PaymentID,
		r.columns.BuyerID,
		r.columns.RaffleID,
		r.columns.Value,
		r.columns.Reserved,
	)

	bound, err := tx.ExecWithResult(ctx, query, paymentID, buyerID, raffleID, toInt64s(values))
	if err != nil {
		r.Log.Error("failed to bind numbers",
			"error", err,
			"raffle_id", raffleID,
			"payment_id", paymentID,
		)
		return 0, fmt.Errorf("failed to bind numbers: %w", err)
	}

	r.Log.Debug("numbers bound",
		"raffle_id", raffleID,
		"payment_id", paymentID,
		"requested", len(values),
		"bound", bound,
	)
	return bound, nil
}

// ReleaseTx освобождает все номера платежа. Повторный вызов ничего не меняет
func (r *Repository) ReleaseTx(ctx context.Context, tx persistence.Transaction, paymentID int64) (int64, error) {
	query := fmt.Sprintf(`UPDATE %s SET %s = false, %s = NULL, %s = NULL WHERE %s = $1`,
		r.columns.TableName,
		r.columns.Reserved,
		r.columns.PaymentID,
		r.columns.BuyerID,
		r.columns.PaymentID,
	)

	released, err := tx.ExecWithResult(ctx, query, paymentID)
	if err != nil {
		r.Log.Error("failed to release numbers", "error", err, "payment_id", paymentID)
		return 0, fmt.Errorf("failed to release numbers: %w", err)
	}

	r.Log.Debug("numbers released", "payment_id", paymentID, "released", released)
	return released, nil
}

func (r *Repository) listByPaymentQuery() string {
	return fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 ORDER BY %s`,
		r.columns.Value,
		r.columns.TableName,
		r.columns.PaymentID,
		r.columns.Value,
	)
}

// ListByPayment номера, привязанные к платежу
func (r *Repository) ListByPayment(ctx context.Context, paymentID int64) ([]int, error) {
	var values []int
	if err := r.db.Select(ctx, &values, r.listByPaymentQuery(), paymentID); err != nil {
		r.Log.Error("failed to list payment numbers", "error", err, "payment_id", paymentID)
		return nil, fmt.Errorf("failed to list payment numbers: %w", err)
	}
	return values, nil
}

// ListByPaymentTx номера платежа внутри транзакции
func (r *Repository) ListByPaymentTx(ctx context.Context, tx persistence.Transaction, paymentID int64) ([]int, error) {
	var values []int
	if err := tx.Select(ctx, &values, r.listByPaymentQuery(), paymentID); err != nil {
		r.Log.Error("failed to list payment numbers", "error", err, "payment_id", paymentID)
		return nil, fmt.Errorf("failed to list payment numbers: %w", err)
	}
	return values, nil
}

type paymentNumber struct {
	PaymentID int64 `db:"payment_id"`
	Value     int   `db:"value"`
}

// ListByPayments номера сразу для нескольких платежей
func (r *Repository) ListByPayments(ctx context.Context, paymentIDs []int64) (map[int64][]int, error) {
	result := make(map[int64][]int, len(paymentIDs))
	if len(paymentIDs) == 0 {
		return result, nil
	}

	query := fmt.Sprintf(`SELECT %s, %s FROM %s WHERE %s = ANY($1) ORDER BY %s, %s`,
		r.columns.PaymentID,
		r.columns.Value,
		r.columns.TableName,
		r.columns.PaymentID,
		r.columns.PaymentID,
		r.columns.Value,
	)

	var rows []paymentNumber
	if err := r.db.Select(ctx, &rows, query, pq.Int64Array(paymentIDs)); err != nil {
		r.Log.Error("failed to list numbers for payments", "error", err, "payments", len(paymentIDs))
		return nil, fmt.Errorf("failed to list numbers for payments: %w", err)
	}

	for _, row := range rows {
		result[row.PaymentID] = append(result[row.PaymentID], row.Value)
	}
	return result, nil
}

// ListSold талон: проданные номера с данными покупателя
func (r *Repository) ListSold(ctx context.Context, raffleID int64) ([]domain.SoldNumber, error) {
	query := fmt.Sprintf(`SELECT n.%s, n.%s, b.id AS buyer_id, b.name AS buyer_name, b.username, b.phone
		FROM %s n
		JOIN payments p ON p.id = n.%s
		JOIN buyers b ON b.id = n.%s
		WHERE n.%s = $1 AND p.state = $2
		ORDER BY n.%s`,
		r.columns.Value,
		r.columns.PaymentID,
		r.columns.TableName,
		r.columns.PaymentID,
		r.columns.BuyerID,
		r.columns.RaffleID,
		r.columns.Value,
	)

	var sold []domain.SoldNumber
	if err := r.db.Select(ctx, &sold, query, raffleID, string(domain.PaymentStateApproved)); err != nil {
		r.Log.Error("failed to list sold numbers", "error", err, "raffle_id", raffleID)
		return nil, fmt.Errorf("failed to list sold numbers: %w", err)
	}

	return sold, nil
}

type numbersByState struct {
	State domain.PaymentState `db:"state"`
	Count int                 `db:"count"`
}

// CountByState количество занятых номеров розыгрыша по состоянию их платежа
func (r *Repository) CountByState(ctx context.Context, raffleID int64) (map[domain.PaymentState]int, error) {
	query := fmt.Sprintf(`SELECT p.state, COUNT(*) AS count
		FROM %s n
		JOIN payments p ON p.id = n.%s
		WHERE n.%s = $1 AND n.%s = true
		GROUP BY p.state`,
		r.columns.TableName,
		r.columns.PaymentID,
		r.columns.RaffleID,
		r.columns.Reserved,
	)

	var rows []numbersByState
	if err := r.db.Select(ctx, &rows, query, raffleID); err != nil {
		r.Log.Error("failed to count numbers", "error", err, "raffle_id", raffleID)
		return nil, fmt.Errorf("failed to count numbers: %w", err)
	}

	counts := make(map[domain.PaymentState]int, len(rows))
	for _, row := range rows {
		counts[row.State] = row.Count
	}
	return counts, nil
}
