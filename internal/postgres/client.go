package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/taxmill/taxmill/internal/config"
	ierr "github.com/taxmill/taxmill/internal/errors"
	"github.com/taxmill/taxmill/internal/logger"
)

type ctxTxKey struct{}

// IClient wraps the database handle and exposes transactional scoping.
// Rule resolution and calculation run inside one read-consistent
// transaction so a calculation never mixes a rate fetched before a
// concurrent update with a profile fetched after it.
type IClient interface {
	DB() *sqlx.DB
	Querier(ctx context.Context) sqlx.ExtContext
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type client struct {
	db     *sqlx.DB
	logger *logger.Logger
}

// NewClient connects to postgres using the configured DSN
func NewClient(cfg *config.Configuration, logger *logger.Logger) (IClient, error) {
	db, err := sqlx.Connect("postgres", cfg.Postgres.DSN())
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to connect to postgres").
			Mark(ierr.ErrDatabase)
	}

	return &client{db: db, logger: logger}, nil
}

// NewClientFromDB wraps an existing handle, used by tests
func NewClientFromDB(db *sqlx.DB, logger *logger.Logger) IClient {
	return &client{db: db, logger: logger}
}

func (c *client) DB() *sqlx.DB {
	return c.db
}

// Querier returns the transaction bound to the context when present,
// otherwise the base handle
func (c *client) Querier(ctx context.Context) sqlx.ExtContext {
	if tx, ok := ctx.Value(ctxTxKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return c.db
}

// WithTx runs fn inside a transaction. Nested calls reuse the outer
// transaction.
func (c *client) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(ctxTxKey{}).(*sqlx.Tx); ok {
		return fn(ctx)
	}

	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to begin transaction").
			Mark(ierr.ErrDatabase)
	}

	txCtx := context.WithValue(ctx, ctxTxKey{}, tx)

	if err := fn(txCtx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			c.logger.Errorw("failed to rollback transaction", "error", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to commit transaction").
			Mark(ierr.ErrDatabase)
	}

	return nil
}
