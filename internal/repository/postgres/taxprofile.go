package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/taxmill/taxmill/internal/domain/taxprofile"
	ierr "github.com/taxmill/taxmill/internal/errors"
	"github.com/taxmill/taxmill/internal/logger"
	"github.com/taxmill/taxmill/internal/postgres"
	"github.com/taxmill/taxmill/internal/types"
)

type taxProfileRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

func NewTaxProfileRepository(db postgres.IClient, logger *logger.Logger) taxprofile.Repository {
	return &taxProfileRepository{db: db, logger: logger}
}

func (r *taxProfileRepository) Create(ctx context.Context, profile *taxprofile.TaxProfile) error {
	query := `
		INSERT INTO tax_profiles (
			id, country, regime, vat_id, currency, filing_frequency,
			effective_from, effective_to,
			tenant_id, status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :country, :regime, :vat_id, :currency, :filing_frequency,
			:effective_from, :effective_to,
			:tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by
		)`

	if _, err := sqlx.NamedExecContext(ctx, r.db.Querier(ctx), query, profile); err != nil {
		if isUniqueViolation(err) {
			return ierr.WithError(err).
				WithHint("A tax profile with this identifier already exists").
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create tax profile").
			Mark(ierr.ErrDatabase)
	}

	return nil
}

func (r *taxProfileRepository) Get(ctx context.Context, id string) (*taxprofile.TaxProfile, error) {
	var profile taxprofile.TaxProfile
	query := `
		SELECT * FROM tax_profiles
		WHERE id = $1 AND tenant_id = $2 AND status = $3`

	err := sqlx.GetContext(ctx, r.db.Querier(ctx), &profile, query,
		id, types.GetTenantID(ctx), types.StatusPublished)
	if err != nil {
		if isNoRows(err) {
			return nil, ierr.NewError("tax profile not found").
				WithHintf("Tax profile %s was not found", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get tax profile").
			Mark(ierr.ErrDatabase)
	}

	return &profile, nil
}

func (r *taxProfileRepository) List(ctx context.Context, filter *types.TaxProfileFilter) ([]*taxprofile.TaxProfile, error) {
	profiles := []*taxprofile.TaxProfile{}
	query := `
		SELECT * FROM tax_profiles
		WHERE tenant_id = $1 AND status = $2
		  AND ($3 = '' OR country = $3)
		ORDER BY effective_from DESC`

	args := []any{types.GetTenantID(ctx), types.StatusPublished, filter.Country}

	if !filter.IsUnlimited() {
		query += ` LIMIT $4 OFFSET $5`
		args = append(args, filter.GetLimit(), filter.GetOffset())
	}

	if err := sqlx.SelectContext(ctx, r.db.Querier(ctx), &profiles, query, args...); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list tax profiles").
			Mark(ierr.ErrDatabase)
	}

	return profiles, nil
}

func (r *taxProfileRepository) Count(ctx context.Context, filter *types.TaxProfileFilter) (int, error) {
	var count int
	query := `
		SELECT COUNT(*) FROM tax_profiles
		WHERE tenant_id = $1 AND status = $2
		  AND ($3 = '' OR country = $3)`

	err := sqlx.GetContext(ctx, r.db.Querier(ctx), &count, query,
		types.GetTenantID(ctx), types.StatusPublished, filter.Country)
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count tax profiles").
			Mark(ierr.ErrDatabase)
	}

	return count, nil
}

func (r *taxProfileRepository) Update(ctx context.Context, profile *taxprofile.TaxProfile) error {
	profile.UpdatedAt = time.Now().UTC()
	profile.UpdatedBy = types.GetUserID(ctx)

	query := `
		UPDATE tax_profiles SET
			regime = :regime, vat_id = :vat_id, currency = :currency,
			filing_frequency = :filing_frequency,
			effective_from = :effective_from, effective_to = :effective_to,
			updated_at = :updated_at, updated_by = :updated_by
		WHERE id = :id AND tenant_id = :tenant_id`

	if _, err := sqlx.NamedExecContext(ctx, r.db.Querier(ctx), query, profile); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update tax profile").
			Mark(ierr.ErrDatabase)
	}

	return nil
}

func (r *taxProfileRepository) Delete(ctx context.Context, profile *taxprofile.TaxProfile) error {
	query := `
		UPDATE tax_profiles SET status = $1, updated_at = $2, updated_by = $3
		WHERE id = $4 AND tenant_id = $5`

	_, err := r.db.Querier(ctx).ExecContext(ctx, query,
		types.StatusArchived, time.Now().UTC(), types.GetUserID(ctx),
		profile.ID, types.GetTenantID(ctx))
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to delete tax profile").
			Mark(ierr.ErrDatabase)
	}

	return nil
}

func (r *taxProfileRepository) ListEffectiveAt(ctx context.Context, country string, at time.Time) ([]*taxprofile.TaxProfile, error) {
	profiles := []*taxprofile.TaxProfile{}
	query := `
		SELECT * FROM tax_profiles
		WHERE tenant_id = $1 AND status = $2
		  AND ($3 = '' OR country = $3)
		  AND effective_from <= $4
		  AND (effective_to IS NULL OR effective_to > $4)
		ORDER BY effective_from DESC`

	err := sqlx.SelectContext(ctx, r.db.Querier(ctx), &profiles, query,
		types.GetTenantID(ctx), types.StatusPublished, country, at)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to resolve tax profiles").
			Mark(ierr.ErrDatabase)
	}

	return profiles, nil
}
