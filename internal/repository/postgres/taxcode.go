package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/taxmill/taxmill/internal/domain/taxcode"
	ierr "github.com/taxmill/taxmill/internal/errors"
	"github.com/taxmill/taxmill/internal/logger"
	"github.com/taxmill/taxmill/internal/postgres"
	"github.com/taxmill/taxmill/internal/types"
)

type taxCodeRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

func NewTaxCodeRepository(db postgres.IClient, logger *logger.Logger) taxcode.Repository {
	return &taxCodeRepository{db: db, logger: logger}
}

func (r *taxCodeRepository) Create(ctx context.Context, code *taxcode.TaxCode) error {
	query := `
		INSERT INTO tax_codes (
			id, code, kind, label, description, is_active,
			tenant_id, status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :code, :kind, :label, :description, :is_active,
			:tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by
		)`

	if _, err := sqlx.NamedExecContext(ctx, r.db.Querier(ctx), query, code); err != nil {
		if isUniqueViolation(err) {
			return ierr.WithError(err).
				WithHintf("A tax code %s already exists", code.Code).
				WithReportableDetails(map[string]any{
					"code": code.Code,
				}).
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create tax code").
			Mark(ierr.ErrDatabase)
	}

	return nil
}

func (r *taxCodeRepository) Get(ctx context.Context, id string) (*taxcode.TaxCode, error) {
	var code taxcode.TaxCode
	query := `
		SELECT * FROM tax_codes
		WHERE id = $1 AND tenant_id = $2 AND status = $3`

	err := sqlx.GetContext(ctx, r.db.Querier(ctx), &code, query,
		id, types.GetTenantID(ctx), types.StatusPublished)
	if err != nil {
		if isNoRows(err) {
			return nil, ierr.NewError("tax code not found").
				WithHintf("Tax code %s was not found", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get tax code").
			Mark(ierr.ErrDatabase)
	}

	return &code, nil
}

func (r *taxCodeRepository) GetByCode(ctx context.Context, codeStr string) (*taxcode.TaxCode, error) {
	var code taxcode.TaxCode
	query := `
		SELECT * FROM tax_codes
		WHERE code = $1 AND tenant_id = $2 AND status = $3`

	err := sqlx.GetContext(ctx, r.db.Querier(ctx), &code, query,
		codeStr, types.GetTenantID(ctx), types.StatusPublished)
	if err != nil {
		if isNoRows(err) {
			return nil, ierr.NewError("tax code not found").
				WithHintf("Tax code %s was not found", codeStr).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get tax code").
			Mark(ierr.ErrDatabase)
	}

	return &code, nil
}

func (r *taxCodeRepository) List(ctx context.Context, filter *types.TaxCodeFilter) ([]*taxcode.TaxCode, error) {
	codes := []*taxcode.TaxCode{}
	query := `
		SELECT * FROM tax_codes
		WHERE tenant_id = $1 AND status = $2
		  AND ($3 = '' OR kind = $3)
		  AND ($4 = false OR is_active = true)
		ORDER BY code ASC`

	args := []any{types.GetTenantID(ctx), types.StatusPublished, filter.Kind, filter.OnlyActive}

	if !filter.IsUnlimited() {
		query += ` LIMIT $5 OFFSET $6`
		args = append(args, filter.GetLimit(), filter.GetOffset())
	}

	if err := sqlx.SelectContext(ctx, r.db.Querier(ctx), &codes, query, args...); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list tax codes").
			Mark(ierr.ErrDatabase)
	}

	return codes, nil
}

func (r *taxCodeRepository) Count(ctx context.Context, filter *types.TaxCodeFilter) (int, error) {
	var count int
	query := `
		SELECT COUNT(*) FROM tax_codes
		WHERE tenant_id = $1 AND status = $2
		  AND ($3 = '' OR kind = $3)
		  AND ($4 = false OR is_active = true)`

	err := sqlx.GetContext(ctx, r.db.Querier(ctx), &count, query,
		types.GetTenantID(ctx), types.StatusPublished, filter.Kind, filter.OnlyActive)
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count tax codes").
			Mark(ierr.ErrDatabase)
	}

	return count, nil
}

func (r *taxCodeRepository) Update(ctx context.Context, code *taxcode.TaxCode) error {
	code.UpdatedAt = time.Now().UTC()
	code.UpdatedBy = types.GetUserID(ctx)

	query := `
		UPDATE tax_codes SET
			label = :label, description = :description, is_active = :is_active,
			updated_at = :updated_at, updated_by = :updated_by
		WHERE id = :id AND tenant_id = :tenant_id`

	if _, err := sqlx.NamedExecContext(ctx, r.db.Querier(ctx), query, code); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update tax code").
			Mark(ierr.ErrDatabase)
	}

	return nil
}

func (r *taxCodeRepository) Delete(ctx context.Context, code *taxcode.TaxCode) error {
	query := `
		UPDATE tax_codes SET status = $1, updated_at = $2, updated_by = $3
		WHERE id = $4 AND tenant_id = $5`

	_, err := r.db.Querier(ctx).ExecContext(ctx, query,
		types.StatusArchived, time.Now().UTC(), types.GetUserID(ctx),
		code.ID, types.GetTenantID(ctx))
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to delete tax code").
			Mark(ierr.ErrDatabase)
	}

	return nil
}
