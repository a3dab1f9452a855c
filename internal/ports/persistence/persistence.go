package persistence

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// Querier общие методы БД и транзакции
type Querier interface {
	Get(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	Select(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	Exec(ctx context.Context, query string, args ...interface{}) error
	ExecWithResult(ctx context.Context, query string, args ...interface{}) (int64, error)
	NamedExec(ctx context.Context, query string, arg interface{}) error
	QueryRow(ctx context.Context, query string, args ...interface{}) *sqlx.Row
}

// Transaction открытая транзакция. Все изменения в ней видны другим только после Commit
type Transaction interface {
	Querier
	Commit() error
	Rollback() error
}

// TxFunc тело транзакции
type TxFunc func(ctx context.Context, tx Transaction) error

type Persistence interface {
	Querier
	BeginTx(ctx context.Context) (Transaction, error)
	// WithTransaction коммитит, если fn вернула nil, иначе откатывает
	WithTransaction(ctx context.Context, fn TxFunc) error
	Ping(ctx context.Context) error
}
