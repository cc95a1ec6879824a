package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/samber/lo"
	"github.com/taxmill/taxmill/internal/domain/taxfiling"
	ierr "github.com/taxmill/taxmill/internal/errors"
	"github.com/taxmill/taxmill/internal/logger"
	"github.com/taxmill/taxmill/internal/postgres"
	"github.com/taxmill/taxmill/internal/types"
)

type taxFilingRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

func NewTaxFilingRepository(db postgres.IClient, logger *logger.Logger) taxfiling.Repository {
	return &taxFilingRepository{db: db, logger: logger}
}

// taxFilingRow mirrors TaxFiling with the issues serialized for the
// jsonb column
type taxFilingRow struct {
	ID           string             `db:"id"`
	FilingNumber string             `db:"filing_number"`
	FilingType   types.FilingType   `db:"filing_type"`
	PeriodKey    string             `db:"period_key"`
	PeriodStart  time.Time          `db:"period_start"`
	PeriodEnd    time.Time          `db:"period_end"`
	DueDate      time.Time          `db:"due_date"`
	Currency     string             `db:"currency"`
	FilingStatus types.FilingStatus `db:"filing_status"`

	SalesNetCents    int64 `db:"sales_net_cents"`
	SalesVatCents    int64 `db:"sales_vat_cents"`
	PurchaseNetCents int64 `db:"purchase_net_cents"`
	PurchaseVatCents int64 `db:"purchase_vat_cents"`
	TaxDueCents      int64 `db:"tax_due_cents"`

	SubmittedAt      *time.Time `db:"submitted_at"`
	SubmissionMethod string     `db:"submission_method"`
	SubmissionID     string     `db:"submission_id"`

	PaidAt             *time.Time `db:"paid_at"`
	PaymentMethod      string     `db:"payment_method"`
	PaymentAmountCents *int64     `db:"payment_amount_cents"`

	Issues []byte `db:"issues"`
	types.BaseModel
}

func toFilingRow(filing *taxfiling.TaxFiling) (*taxFilingRow, error) {
	issues, err := json.Marshal(filing.Issues)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to serialize filing issues").
			Mark(ierr.ErrSystem)
	}

	return &taxFilingRow{
		ID:                 filing.ID,
		FilingNumber:       filing.FilingNumber,
		FilingType:         filing.FilingType,
		PeriodKey:          filing.PeriodKey,
		PeriodStart:        filing.PeriodStart,
		PeriodEnd:          filing.PeriodEnd,
		DueDate:            filing.DueDate,
		Currency:           filing.Currency,
		FilingStatus:       filing.FilingStatus,
		SalesNetCents:      filing.SalesNetCents,
		SalesVatCents:      filing.SalesVatCents,
		PurchaseNetCents:   filing.PurchaseNetCents,
		PurchaseVatCents:   filing.PurchaseVatCents,
		TaxDueCents:        filing.TaxDueCents,
		SubmittedAt:        filing.SubmittedAt,
		SubmissionMethod:   filing.SubmissionMethod,
		SubmissionID:       filing.SubmissionID,
		PaidAt:             filing.PaidAt,
		PaymentMethod:      filing.PaymentMethod,
		PaymentAmountCents: filing.PaymentAmountCents,
		Issues:             issues,
		BaseModel:          filing.BaseModel,
	}, nil
}

func (r *taxFilingRow) toFiling() (*taxfiling.TaxFiling, error) {
	issues := []*taxfiling.Issue{}
	if len(r.Issues) > 0 {
		if err := json.Unmarshal(r.Issues, &issues); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to deserialize filing issues").
				Mark(ierr.ErrSystem)
		}
	}

	return &taxfiling.TaxFiling{
		ID:                 r.ID,
		FilingNumber:       r.FilingNumber,
		FilingType:         r.FilingType,
		PeriodKey:          r.PeriodKey,
		PeriodStart:        r.PeriodStart,
		PeriodEnd:          r.PeriodEnd,
		DueDate:            r.DueDate,
		Currency:           r.Currency,
		FilingStatus:       r.FilingStatus,
		SalesNetCents:      r.SalesNetCents,
		SalesVatCents:      r.SalesVatCents,
		PurchaseNetCents:   r.PurchaseNetCents,
		PurchaseVatCents:   r.PurchaseVatCents,
		TaxDueCents:        r.TaxDueCents,
		SubmittedAt:        r.SubmittedAt,
		SubmissionMethod:   r.SubmissionMethod,
		SubmissionID:       r.SubmissionID,
		PaidAt:             r.PaidAt,
		PaymentMethod:      r.PaymentMethod,
		PaymentAmountCents: r.PaymentAmountCents,
		Issues:             issues,
		BaseModel:          r.BaseModel,
	}, nil
}

// Create inserts the filing. The unique index on
// (tenant_id, filing_type, period_key) resolves concurrent creation
// races: exactly one insert wins, the rest get an already-exists
// conflict.
func (r *taxFilingRepository) Create(ctx context.Context, filing *taxfiling.TaxFiling) error {
	row, err := toFilingRow(filing)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO tax_filings (
			id, filing_number, filing_type, period_key, period_start, period_end,
			due_date, currency, filing_status,
			sales_net_cents, sales_vat_cents, purchase_net_cents, purchase_vat_cents, tax_due_cents,
			submitted_at, submission_method, submission_id,
			paid_at, payment_method, payment_amount_cents, issues,
			tenant_id, status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :filing_number, :filing_type, :period_key, :period_start, :period_end,
			:due_date, :currency, :filing_status,
			:sales_net_cents, :sales_vat_cents, :purchase_net_cents, :purchase_vat_cents, :tax_due_cents,
			:submitted_at, :submission_method, :submission_id,
			:paid_at, :payment_method, :payment_amount_cents, :issues,
			:tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by
		)`

	if _, err := sqlx.NamedExecContext(ctx, r.db.Querier(ctx), query, row); err != nil {
		if isUniqueViolation(err) {
			return ierr.WithError(err).
				WithHintf("A %s filing already exists for period %s", filing.FilingType, filing.PeriodKey).
				WithReportableDetails(map[string]any{
					"filing_type": filing.FilingType,
					"period_key":  filing.PeriodKey,
				}).
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create tax filing").
			Mark(ierr.ErrDatabase)
	}

	return nil
}

func (r *taxFilingRepository) Get(ctx context.Context, id string) (*taxfiling.TaxFiling, error) {
	var row taxFilingRow
	query := `
		SELECT * FROM tax_filings
		WHERE id = $1 AND tenant_id = $2 AND status = $3`

	err := sqlx.GetContext(ctx, r.db.Querier(ctx), &row, query,
		id, types.GetTenantID(ctx), types.StatusPublished)
	if err != nil {
		if isNoRows(err) {
			return nil, ierr.NewError("tax filing not found").
				WithHintf("Tax filing %s was not found", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get tax filing").
			Mark(ierr.ErrDatabase)
	}

	return row.toFiling()
}

func (r *taxFilingRepository) GetByPeriod(ctx context.Context, filingType types.FilingType, periodKey string) (*taxfiling.TaxFiling, error) {
	var row taxFilingRow
	query := `
		SELECT * FROM tax_filings
		WHERE filing_type = $1 AND period_key = $2 AND tenant_id = $3 AND status = $4`

	err := sqlx.GetContext(ctx, r.db.Querier(ctx), &row, query,
		filingType, periodKey, types.GetTenantID(ctx), types.StatusPublished)
	if err != nil {
		if isNoRows(err) {
			return nil, ierr.NewError("tax filing not found").
				WithHintf("No %s filing exists for period %s", filingType, periodKey).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get tax filing").
			Mark(ierr.ErrDatabase)
	}

	return row.toFiling()
}

func filingConditions(ctx context.Context, filter *types.TaxFilingFilter) (string, []any) {
	conditions := []string{"tenant_id = $1", "status = $2"}
	args := []any{types.GetTenantID(ctx), types.StatusPublished}

	if filter.FilingType != "" {
		args = append(args, filter.FilingType)
		conditions = append(conditions, fmt.Sprintf("filing_type = $%d", len(args)))
	}

	if len(filter.Statuses) > 0 {
		args = append(args, pq.Array(lo.Map(filter.Statuses, func(s types.FilingStatus, _ int) string {
			return s.String()
		})))
		conditions = append(conditions, fmt.Sprintf("filing_status = ANY($%d)", len(args)))
	}

	if filter.Year != 0 {
		// period keys start with the four digit year
		args = append(args, fmt.Sprintf("%04d-%%", filter.Year), fmt.Sprintf("%04d", filter.Year))
		conditions = append(conditions, fmt.Sprintf("(period_key LIKE $%d OR period_key = $%d)", len(args)-1, len(args)))
	}

	if filter.PeriodKey != "" {
		args = append(args, filter.PeriodKey)
		conditions = append(conditions, fmt.Sprintf("period_key = $%d", len(args)))
	}

	return strings.Join(conditions, " AND "), args
}

func (r *taxFilingRepository) List(ctx context.Context, filter *types.TaxFilingFilter) ([]*taxfiling.TaxFiling, error) {
	where, args := filingConditions(ctx, filter)
	query := fmt.Sprintf(`
		SELECT * FROM tax_filings
		WHERE %s
		ORDER BY period_start DESC, filing_type ASC`, where)

	if !filter.IsUnlimited() {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, filter.GetLimit(), filter.GetOffset())
	}

	rows := []*taxFilingRow{}
	if err := sqlx.SelectContext(ctx, r.db.Querier(ctx), &rows, query, args...); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list tax filings").
			Mark(ierr.ErrDatabase)
	}

	filings := make([]*taxfiling.TaxFiling, 0, len(rows))
	for _, row := range rows {
		filing, err := row.toFiling()
		if err != nil {
			return nil, err
		}
		filings = append(filings, filing)
	}

	return filings, nil
}

func (r *taxFilingRepository) Count(ctx context.Context, filter *types.TaxFilingFilter) (int, error) {
	where, args := filingConditions(ctx, filter)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM tax_filings WHERE %s`, where)

	var count int
	if err := sqlx.GetContext(ctx, r.db.Querier(ctx), &count, query, args...); err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count tax filings").
			Mark(ierr.ErrDatabase)
	}

	return count, nil
}

func (r *taxFilingRepository) Update(ctx context.Context, filing *taxfiling.TaxFiling) error {
	filing.UpdatedAt = time.Now().UTC()
	filing.UpdatedBy = types.GetUserID(ctx)

	row, err := toFilingRow(filing)
	if err != nil {
		return err
	}

	query := `
		UPDATE tax_filings SET
			filing_status = :filing_status,
			sales_net_cents = :sales_net_cents, sales_vat_cents = :sales_vat_cents,
			purchase_net_cents = :purchase_net_cents, purchase_vat_cents = :purchase_vat_cents,
			tax_due_cents = :tax_due_cents,
			submitted_at = :submitted_at, submission_method = :submission_method, submission_id = :submission_id,
			paid_at = :paid_at, payment_method = :payment_method, payment_amount_cents = :payment_amount_cents,
			issues = :issues,
			updated_at = :updated_at, updated_by = :updated_by
		WHERE id = :id AND tenant_id = :tenant_id`

	if _, err := sqlx.NamedExecContext(ctx, r.db.Querier(ctx), query, row); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update tax filing").
			Mark(ierr.ErrDatabase)
	}

	return nil
}
