package paymentRepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/admin/tg-bots/raffle-bot/internal/domain"
	"github.com/admin/tg-bots/raffle-bot/internal/ports/persistence"
	ports "github.com/admin/tg-bots/raffle-bot/internal/ports/repository"
)

type paymentColumns struct {
	TableName      string
	ID             string
	BuyerID        string
	RaffleID       string
	ProofReference string
	State          string
	CreatedAt      string
}

type Repository struct {
	db      persistence.Persistence
	Log     *slog.Logger
	columns paymentColumns
}

// New создаёт новый репозиторий для работы с платежами
func New(db persistence.Persistence, log *slog.Logger) ports.IPaymentRepo {
	cols := paymentColumns{
		TableName:      "payments",
		ID:             "id",
		BuyerID:        "buyer_id",
		RaffleID:       "raffle_id",
		ProofReference: "proof_reference",
		State:          "state",
		CreatedAt:      "created_at",
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
		r.columns.BuyerID,
		r.columns.RaffleID,
		r.columns.ProofReference,
		r.columns.State,
		r.columns.CreatedAt,
	)
}

// detailsSelect платёж с названием розыгрыша, ценой и именем покупателя
func (r *Repository) detailsSelect() string {
	return fmt.Sprintf(`SELECT p.%s, p.%s, p.%s, p.%s, p.%s, p.%s,
		rf.name AS raffle_name, rf.unit_price, b.name AS buyer_name
		FROM %s p
		JOIN raffles rf ON rf.id = p.%s
		JOIN buyers b ON b.id = p.%s`,
		r.columns.ID,
		r.columns.BuyerID,
		r.columns.RaffleID,
		r.columns.ProofReference,
		r.columns.State,
		r.columns.CreatedAt,
		r.columns.TableName,
		r.columns.RaffleID,
		r.columns.BuyerID,
	)
}

// WithTransaction выполняет fn в одной транзакции
func (r *Repository) WithTransaction(ctx context.Context, fn persistence.TxFunc) error {
	return r.db.WithTransaction(ctx, fn)
}

// CreateTx создаёт платёж в транзакции и заполняет его ID
func (r *Repository) CreateTx(ctx context.Context, tx persistence.Transaction, payment *domain.Payment) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s, %s, %s) VALUES ($1, $2, $3, $4, $5) RETURNING %s`,
		r.columns.TableName,
		r.columns.BuyerID,
		r.columns.RaffleID,
		r.columns.ProofReference,
		r.columns.State,
		r.columns.CreatedAt,
		r.columns.ID,
	)

	err := tx.QueryRow(ctx, query,
		payment.BuyerID,
		payment.RaffleID,
		payment.ProofReference,
		string(payment.State),
		payment.CreatedAt,
	).Scan(&payment.ID)
	if err != nil {
		r.Log.Error("failed to create payment",
			"error", err,
			"buyer_id", payment.BuyerID,
			"raffle_id", payment.RaffleID,
		)
		return fmt.Errorf("failed to create payment: %w", err)
	}

	r.Log.Debug("payment created successfully",
		"payment_id", payment.ID,
		"buyer_id", payment.BuyerID,
		"raffle_id", payment.RaffleID,
	)
	return nil
}

func (r *Repository) getOne(ctx context.Context, q persistence.Querier, query string, args ...interface{}) (*domain.Payment, error) {
	var payment domain.Payment
	if err := q.Get(ctx, &payment, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, err
	}
	return &payment, nil
}

// GetByID получает платёж по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Payment, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.ID,
	)

	payment, err := r.getOne(ctx, r.db, query, id)
	if err != nil {
		if errors.Is(err, domain.ErrPaymentNotFound) {
			r.Log.Warn("payment not found", "payment_id", id)
			return nil, err
		}
		r.Log.Error("failed to get payment", "error", err, "payment_id", id)
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	r.Log.Debug("payment retrieved successfully", "payment_id", id)
	return payment, nil
}

// GetForUpdateTx получает платёж и блокирует строку до конца транзакции
func (r *Repository) GetForUpdateTx(ctx context.Context, tx persistence.Transaction, id int64) (*domain.Payment, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 FOR UPDATE`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.ID,
	)

	payment, err := r.getOne(ctx, tx, query, id)
	if err != nil {
		if errors.Is(err, domain.ErrPaymentNotFound) {
			r.Log.Warn("payment not found", "payment_id", id)
			return nil, err
		}
		r.Log.Error("failed to lock payment", "error", err, "payment_id", id)
		return nil, fmt.Errorf("failed to lock payment: %w", err)
	}

	return payment, nil
}

// GetLatestByBuyerForUpdateTx последний платёж покупателя с блокировкой строки
func (r *Repository) GetLatestByBuyerForUpdateTx(ctx context.Context, tx persistence.Transaction, buyerID int64) (*domain.Payment, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 ORDER BY %s DESC, %s DESC LIMIT 1 FOR UPDATE`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.BuyerID,
		r.columns.CreatedAt,
		r.columns.ID,
	)

	payment, err := r.getOne(ctx, tx, query, buyerID)
	if err != nil {
		if errors.Is(err, domain.ErrPaymentNotFound) {
			r.Log.Debug("buyer has no payments", "buyer_id", buyerID)
			return nil, err
		}
		r.Log.Error("failed to get latest payment", "error", err, "buyer_id", buyerID)
		return nil, fmt.Errorf("failed to get latest payment: %w", err)
	}

	return payment, nil
}

// TransitionTx guarded update: WHERE state = from. 0 строк - кто-то успел раньше
func (r *Repository) TransitionTx(ctx context.Context, tx persistence.Transaction, id int64, from, to domain.PaymentState, proofRef *string) (int64, error) {
	var (
		query string
		args  []interface{}
	)
	if proofRef != nil {
		query = fmt.Sprintf(`UPDATE %s SET %s = $1, %s = $2 WHERE %s = $3 AND %s = $4`,
			r.columns.TableName,
			r.columns.State,
			r.columns.ProofReference,
			r.columns.ID,
			r.columns.State,
		)
		args = []interface{}{string(to), *proofRef, id, string(from)}
	} else {
		query = fmt.Sprintf(`UPDATE %s SET %s = $1 WHERE %s = $2 AND %s = $3`,
			r.columns.TableName,
			r.columns.State,
			r.columns.ID,
			r.columns.State,
		)
		args = []interface{}{string(to), id, string(from)}
	}

	rows, err := tx.ExecWithResult(ctx, query, args...)
	if err != nil {
		r.Log.Error("failed to transition payment",
			"error", err,
			"payment_id", id,
			"from", from,
			"to", to,
		)
		return 0, fmt.Errorf("failed to transition payment: %w", err)
	}

	r.Log.Debug("payment transition applied",
		"payment_id", id,
		"from", from,
		"to", to,
		"rows_affected", rows,
	)
	return rows, nil
}

// ListOverdueIDs ID платежей в state, созданных не позже createdBefore
func (r *Repository) ListOverdueIDs(ctx context.Context, state domain.PaymentState, createdBefore int64) ([]int64, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s <= $2 ORDER BY %s, %s`,
		r.columns.ID,
		r.columns.TableName,
		r.columns.State,
		r.columns.CreatedAt,
		r.columns.CreatedAt,
		r.columns.ID,
	)

	var ids []int64
	if err := r.db.Select(ctx, &ids, query, string(state), createdBefore); err != nil {
		r.Log.Error("failed to list overdue payments",
			"error", err,
			"state", state,
			"created_before", createdBefore,
		)
		return nil, fmt.Errorf("failed to list overdue payments: %w", err)
	}

	return ids, nil
}

// ListDetailsByState платежи в состоянии state, старые первыми
func (r *Repository) ListDetailsByState(ctx context.Context, state domain.PaymentState) ([]*domain.PaymentDetails, error) {
	query := fmt.Sprintf(`%s WHERE p.%s = $1 ORDER BY p.%s, p.%s`,
		r.detailsSelect(),
		r.columns.State,
		r.columns.CreatedAt,
		r.columns.ID,
	)

	var details []*domain.PaymentDetails
	if err := r.db.Select(ctx, &details, query, string(state)); err != nil {
		r.Log.Error("failed to list payments by state", "error", err, "state", state)
		return nil, fmt.Errorf("failed to list payments by state: %w", err)
	}

	return details, nil
}

// ListDetailsByBuyer история платежей покупателя, новые первыми
func (r *Repository) ListDetailsByBuyer(ctx context.Context, buyerID int64) ([]*domain.PaymentDetails, error) {
	query := fmt.Sprintf(`%s WHERE p.%s = $1 ORDER BY p.%s DESC, p.%s DESC`,
		r.detailsSelect(),
		r.columns.BuyerID,
		r.columns.CreatedAt,
		r.columns.ID,
	)

	var details []*domain.PaymentDetails
	if err := r.db.Select(ctx, &details, query, buyerID); err != nil {
		r.Log.Error("failed to list buyer payments", "error", err, "buyer_id", buyerID)
		return nil, fmt.Errorf("failed to list buyer payments: %w", err)
	}

	return details, nil
}

// GetDetails один платёж с деталями
func (r *Repository) GetDetails(ctx context.Context, id int64) (*domain.PaymentDetails, error) {
	query := fmt.Sprintf(`%s WHERE p.%s = $1`, r.detailsSelect(), r.columns.ID)

	var details domain.PaymentDetails
	if err := r.db.Get(ctx, &details, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.Log.Warn("payment not found", "payment_id", id)
			return nil, domain.ErrPaymentNotFound
		}
		r.Log.Error("failed to get payment details", "error", err, "payment_id", id)
		return nil, fmt.Errorf("failed to get payment details: %w", err)
	}

	return &details, nil
}

type stateCount struct {
	State domain.PaymentState `db:"state"`
	Count int                 `db:"count"`
}

// CountByState количество платежей розыгрыша по состояниям
func (r *Repository) CountByState(ctx context.Context, raffleID int64) (map[domain.PaymentState]int, error) {
	query := fmt.Sprintf(`SELECT %s, COUNT(*) AS count FROM %s WHERE %s = $1 GROUP BY %s`,
		r.columns.State,
		r.columns.TableName,
		r.columns.RaffleID,
		r.columns.State,
	)

	var rows []stateCount
	if err := r.db.Select(ctx, &rows, query, raffleID); err != nil {
		r.Log.Error("failed to count payments", "error", err, "raffle_id", raffleID)
		return nil, fmt.Errorf("failed to count payments: %w", err)
	}

	counts := make(map[domain.PaymentState]int, len(domain.PaymentStates))
	for _, state := range domain.PaymentStates {
		counts[state] = 0
	}
	for _, row := range rows {
		counts[row.State] = row.Count
	}
	return counts, nil
}
