package testutil

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/taxmill/taxmill/internal/logger"
	"github.com/taxmill/taxmill/internal/postgres"
)

var _ postgres.IClient = (*MockPostgresClient)(nil) // Ensure MockPostgresClient implements IClient

// MockPostgresClient is a mock implementation of postgres client for testing
type MockPostgresClient struct {
	logger *logger.Logger
}

// NewMockPostgresClient creates a new mock postgres client
func NewMockPostgresClient(logger *logger.Logger) postgres.IClient {
	return &MockPostgresClient{logger: logger}
}

func (c *MockPostgresClient) DB() *sqlx.DB {
	return nil
}

func (c *MockPostgresClient) Querier(ctx context.Context) sqlx.ExtContext {
	return nil
}

// WithTx executes the given function without a real transaction; the
// in-memory stores have no transactional semantics
func (c *MockPostgresClient) WithTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}
