package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/taxmill/taxmill/internal/domain/taxrate"
	ierr "github.com/taxmill/taxmill/internal/errors"
	"github.com/taxmill/taxmill/internal/logger"
	"github.com/taxmill/taxmill/internal/postgres"
	"github.com/taxmill/taxmill/internal/types"
)

type taxRateRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

func NewTaxRateRepository(db postgres.IClient, logger *logger.Logger) taxrate.Repository {
	return &taxRateRepository{db: db, logger: logger}
}

func (r *taxRateRepository) Create(ctx context.Context, rate *taxrate.TaxRate) error {
	query := `
		INSERT INTO tax_rates (
			id, tax_code_id, rate_bps, effective_from, effective_to,
			tenant_id, status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :tax_code_id, :rate_bps, :effective_from, :effective_to,
			:tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by
		)`

	if _, err := sqlx.NamedExecContext(ctx, r.db.Querier(ctx), query, rate); err != nil {
		if isUniqueViolation(err) {
			return ierr.WithError(err).
				WithHint("A tax rate with this identifier already exists").
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create tax rate").
			Mark(ierr.ErrDatabase)
	}

	return nil
}

func (r *taxRateRepository) Get(ctx context.Context, id string) (*taxrate.TaxRate, error) {
	var rate taxrate.TaxRate
	query := `
		SELECT * FROM tax_rates
		WHERE id = $1 AND tenant_id = $2 AND status = $3`

	err := sqlx.GetContext(ctx, r.db.Querier(ctx), &rate, query,
		id, types.GetTenantID(ctx), types.StatusPublished)
	if err != nil {
		if isNoRows(err) {
			return nil, ierr.NewError("tax rate not found").
				WithHintf("Tax rate %s was not found", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get tax rate").
			Mark(ierr.ErrDatabase)
	}

	return &rate, nil
}

func (r *taxRateRepository) ListByTaxCode(ctx context.Context, taxCodeID string) ([]*taxrate.TaxRate, error) {
	rates := []*taxrate.TaxRate{}
	query := `
		SELECT * FROM tax_rates
		WHERE tax_code_id = $1 AND tenant_id = $2 AND status = $3
		ORDER BY effective_from ASC`

	err := sqlx.SelectContext(ctx, r.db.Querier(ctx), &rates, query,
		taxCodeID, types.GetTenantID(ctx), types.StatusPublished)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list tax rates").
			Mark(ierr.ErrDatabase)
	}

	return rates, nil
}

func (r *taxRateRepository) Update(ctx context.Context, rate *taxrate.TaxRate) error {
	rate.UpdatedAt = time.Now().UTC()
	rate.UpdatedBy = types.GetUserID(ctx)

	query := `
		UPDATE tax_rates SET
			rate_bps = :rate_bps,
			effective_from = :effective_from, effective_to = :effective_to,
			updated_at = :updated_at, updated_by = :updated_by
		WHERE id = :id AND tenant_id = :tenant_id`

	if _, err := sqlx.NamedExecContext(ctx, r.db.Querier(ctx), query, rate); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update tax rate").
			Mark(ierr.ErrDatabase)
	}

	return nil
}

func (r *taxRateRepository) Delete(ctx context.Context, rate *taxrate.TaxRate) error {
	query := `
		UPDATE tax_rates SET status = $1, updated_at = $2, updated_by = $3
		WHERE id = $4 AND tenant_id = $5`

	_, err := r.db.Querier(ctx).ExecContext(ctx, query,
		types.StatusArchived, time.Now().UTC(), types.GetUserID(ctx),
		rate.ID, types.GetTenantID(ctx))
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to delete tax rate").
			Mark(ierr.ErrDatabase)
	}

	return nil
}

func (r *taxRateRepository) GetEffectiveAt(ctx context.Context, taxCodeID string, at time.Time) (*taxrate.TaxRate, error) {
	var rate taxrate.TaxRate
	query := `
		SELECT * FROM tax_rates
		WHERE tax_code_id = $1 AND tenant_id = $2 AND status = $3
		  AND effective_from <= $4
		  AND (effective_to IS NULL OR effective_to > $4)`

	err := sqlx.GetContext(ctx, r.db.Querier(ctx), &rate, query,
		taxCodeID, types.GetTenantID(ctx), types.StatusPublished, at)
	if err != nil {
		if isNoRows(err) {
			return nil, ierr.NewError("no tax rate effective at date").
				WithHintf("No rate is effective at %s", at.Format(time.RFC3339)).
				WithReportableDetails(map[string]any{
					"tax_code_id": taxCodeID,
					"at":          at.Format(time.RFC3339),
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to resolve tax rate").
			Mark(ierr.ErrDatabase)
	}

	return &rate, nil
}
