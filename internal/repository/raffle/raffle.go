package raffleRepo

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

type raffleColumns struct {
	TableName    string
	ID           string
	Name         string
	UnitPrice    string
	TotalNumbers string
	Active       string
}

type Repository struct {
	db      persistence.Persistence
	Log     *slog.Logger
	columns raffleColumns
}

// New создаёт новый репозиторий для работы с розыгрышами
func New(db persistence.Persistence, log *slog.Logger) ports.IRaffleRepo {
	return &Repository{
		db:  db,
		Log: log,
		columns: raffleColumns{
			TableName:    "raffles",
			ID:           "id",
			Name:         "name",
			UnitPrice:    "unit_price",
			TotalNumbers: "total_numbers",
			Active:       "active",
		},
	}
}

func (r *Repository) allColumns() string {
	return fmt.Sprintf("%s, %s, %s, %s, %s",
		r.columns.ID,
		r.columns.Name,
		r.columns.UnitPrice,
		r.columns.TotalNumbers,
		r.columns.Active,
	)
}

func (r *Repository) WithTransaction(ctx context.Context, fn persistence.TxFunc) error {
	return r.db.WithTransaction(ctx, fn)
}

// CreateTx создаёт розыгрыш в транзакции и заполняет ID
func (r *Repository) CreateTx(ctx context.Context, tx persistence.Transaction, raffle *domain.Raffle) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s, %s) VALUES ($1, $2, $3, $4) RETURNING %s`,
		r.columns.TableName,
		r.columns.Name,
		r.columns.UnitPrice,
		r.columns.TotalNumbers,
		r.columns.Active,
		r.columns.ID,
	)

	err := tx.QueryRow(ctx, query, raffle.Name, raffle.UnitPrice, raffle.TotalNumbers, raffle.Active).Scan(&raffle.ID)
	if err != nil {
		r.Log.Error("failed to create raffle", "error", err, "name", raffle.Name)
		return fmt.Errorf("failed to create raffle: %w", err)
	}

	r.Log.Debug("raffle created successfully", "raffle_id", raffle.ID, "name", raffle.Name)
	return nil
}

func (r *Repository) getByID(ctx context.Context, q persistence.Querier, id int64, lock string) (*domain.Raffle, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 %s`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.ID,
		lock,
	)

	var raffle domain.Raffle
	if err := q.Get(ctx, &raffle, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.Log.Warn("raffle not found", "raffle_id", id)
			return nil, domain.ErrRaffleNotFound
		}
		r.Log.Error("failed to get raffle", "error", err, "raffle_id", id)
		return nil, fmt.Errorf("failed to get raffle: %w", err)
	}

	return &raffle, nil
}

// GetByID получает розыгрыш по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Raffle, error) {
	return r.getByID(ctx, r.db, id, "")
}

// GetByIDTx получает розыгрыш в транзакции под FOR SHARE
func (r *Repository) GetByIDTx(ctx context.Context, tx persistence.Transaction, id int64) (*domain.Raffle, error) {
	return r.getByID(ctx, tx, id, "FOR SHARE")
}

// List все розыгрыши, новые первыми
func (r *Repository) List(ctx context.Context) ([]*domain.Raffle, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY %s DESC`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.ID,
	)

	var raffles []*domain.Raffle
	if err := r.db.Select(ctx, &raffles, query); err != nil {
		r.Log.Error("failed to list raffles", "error", err)
		return nil, fmt.Errorf("failed to list raffles: %w", err)
	}

	return raffles, nil
}

// ListActive активные розыгрыши со счётчиком свободных номеров
func (r *Repository) ListActive(ctx context.Context) ([]*domain.RaffleOverview, error) {
	query := fmt.Sprintf(`SELECT rf.%s, rf.%s, rf.%s, rf.%s, rf.%s,
		(SELECT COUNT(*) FROM numbers n WHERE n.raffle_id = rf.%s AND n.reserved = false) AS free_numbers
		FROM %s rf
		WHERE rf.%s = true
		ORDER BY rf.%s DESC`,
		r.columns.ID,
		r.columns.Name,
		r.columns.UnitPrice,
		r.columns.TotalNumbers,
		r.columns.Active,
		r.columns.ID,
		r.columns.TableName,
		r.columns.Active,
		r.columns.ID,
	)

	var raffles []*domain.RaffleOverview
	if err := r.db.Select(ctx, &raffles, query); err != nil {
		r.Log.Error("failed to list active raffles", "error", err)
		return nil, fmt.Errorf("failed to list active raffles: %w", err)
	}

	return raffles, nil
}

// Delete удаляет розыгрыш, номера и платежи удаляются каскадом
func (r *Repository) Delete(ctx context.Context, id int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, r.columns.TableName, r.columns.ID)

	rows, err := r.db.ExecWithResult(ctx, query, id)
	if err != nil {
		r.Log.Error("failed to delete raffle", "error", err, "raffle_id", id)
		return fmt.Errorf("failed to delete raffle: %w", err)
	}
	if rows == 0 {
		r.Log.Warn("raffle not found for delete", "raffle_id", id)
		return domain.ErrRaffleNotFound
	}

	r.Log.Info("raffle deleted", "raffle_id", id)
	return nil
}
