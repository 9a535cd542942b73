package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// SQLExecutor абстрагирует *sql.DB и *sql.Tx, чтобы методы репозиториев
// могли выполняться как сами по себе, так и внутри внешней транзакции.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

var (
	// ErrTxConflict: конкурирующая транзакция не дала зафиксировать изменения
	// (serialization failure или deadlock). Вызывающий может повторить попытку.
	ErrTxConflict = errors.New("transaction conflict, safe to retry")
)

// Transactor выполняет функцию внутри одной атомарной транзакции.
// Координаторы зависят только от этого интерфейса, а не от *sql.DB.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(exec SQLExecutor) error) error
}

type sqlTransactor struct {
	db *sql.DB
}

func NewSQLTransactor(db *sql.DB) Transactor {
	return &sqlTransactor{db: db}
}

// WithinTx начинает serializable-транзакцию, выполняет fn и коммитит.
// Любая ошибка fn откатывает транзакцию целиком: частичных изменений не бывает.
func (t *sqlTransactor) WithinTx(ctx context.Context, fn func(exec SQLExecutor) error) error {
	tx, err := t.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return fmt.Errorf("transaction error: %w (rollback also failed: %v)", err, rbErr)
		}
		// Serializable-конфликт может прийти не только на коммите, но и из
		// любого запроса внутри транзакции (например SELECT ... FOR UPDATE).
		return mapTxError(err)
	}

	if err := tx.Commit(); err != nil {
		return mapTxError(err)
	}
	return nil
}

// mapTxError переводит ошибки изоляции Postgres в ErrTxConflict.
// Ошибки драйвера приходят обёрнутыми репозиториями, поэтому errors.As.
func mapTxError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001", "40P01": // serialization_failure, deadlock_detected
			return fmt.Errorf("%w: %v", ErrTxConflict, err)
		}
	}
	return err
}

func checkAffectedRows(result sql.Result, notFoundError error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return notFoundError
	}
	return nil
}
