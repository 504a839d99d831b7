package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alimgiray/persons/pkg/logger"
)

// TxRunner runs a unit of work against a PersonRepository bound to one transaction
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(repo PersonRepository) error) error
}

type Transactor struct {
	db *sql.DB
}

func NewTransactor(db *sql.DB) *Transactor {
	return &Transactor{db: db}
}

// WithinTx begins a transaction, commits it when fn returns nil and rolls it back
// when fn returns an error or panics. Panics are re-raised after the rollback.
func (t *Transactor) WithinTx(ctx context.Context, fn func(repo PersonRepository) error) error {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		logger.WithError(err).Error("Failed to begin transaction")
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.WithError(rbErr).WithField("panic", p).Error("Failed to roll back transaction after panic")
			}
			panic(p)
		}
	}()

	if err := fn(NewPersonRepository(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.WithError(rbErr).WithField("original_error", err.Error()).Error("Failed to roll back transaction")
			return fmt.Errorf("error rolling back transaction: %v (original error: %w)", rbErr, err)
		}
		logger.WithError(err).Debug("Rolled back transaction")
		return err
	}

	if err := tx.Commit(); err != nil {
		logger.WithError(err).Error("Failed to commit transaction")
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
