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
	"github.com/taxmill/taxmill/internal/domain/taxsnapshot"
	ierr "github.com/taxmill/taxmill/internal/errors"
	"github.com/taxmill/taxmill/internal/logger"
	"github.com/taxmill/taxmill/internal/postgres"
	"github.com/taxmill/taxmill/internal/types"
)

type taxSnapshotRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

func NewTaxSnapshotRepository(db postgres.IClient, logger *logger.Logger) taxsnapshot.Repository {
	return &taxSnapshotRepository{db: db, logger: logger}
}

// taxSnapshotRow mirrors TaxSnapshot with the breakdown serialized for
// the jsonb column
type taxSnapshotRow struct {
	ID           string           `db:"id"`
	SourceType   types.SourceType `db:"source_type"`
	SourceID     string           `db:"source_id"`
	Jurisdiction string           `db:"jurisdiction"`
	Regime       types.VatRegime  `db:"regime"`
	RoundingMode string           `db:"rounding_mode"`
	Currency     string           `db:"currency"`
	CalculatedAt time.Time        `db:"calculated_at"`
	Breakdown    []byte           `db:"breakdown"`
	types.BaseModel
}

func toSnapshotRow(snapshot *taxsnapshot.TaxSnapshot) (*taxSnapshotRow, error) {
	breakdown, err := json.Marshal(snapshot.Breakdown)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to serialize tax breakdown").
			Mark(ierr.ErrSystem)
	}

	return &taxSnapshotRow{
		ID:           snapshot.ID,
		SourceType:   snapshot.SourceType,
		SourceID:     snapshot.SourceID,
		Jurisdiction: snapshot.Jurisdiction,
		Regime:       snapshot.Regime,
		RoundingMode: snapshot.RoundingMode,
		Currency:     snapshot.Currency,
		CalculatedAt: snapshot.CalculatedAt,
		Breakdown:    breakdown,
		BaseModel:    snapshot.BaseModel,
	}, nil
}

func (r *taxSnapshotRow) toSnapshot() (*taxsnapshot.TaxSnapshot, error) {
	var breakdown taxsnapshot.TaxBreakdown
	if err := json.Unmarshal(r.Breakdown, &breakdown); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to deserialize tax breakdown").
			Mark(ierr.ErrSystem)
	}

	return &taxsnapshot.TaxSnapshot{
		ID:           r.ID,
		SourceType:   r.SourceType,
		SourceID:     r.SourceID,
		Jurisdiction: r.Jurisdiction,
		Regime:       r.Regime,
		RoundingMode: r.RoundingMode,
		Currency:     r.Currency,
		CalculatedAt: r.CalculatedAt,
		Breakdown:    &breakdown,
		BaseModel:    r.BaseModel,
	}, nil
}

// Create freezes a snapshot. The unique index on
// (tenant_id, source_type, source_id) makes the write-once guarantee
// atomic under concurrent freezes of the same document.
func (r *taxSnapshotRepository) Create(ctx context.Context, snapshot *taxsnapshot.TaxSnapshot) error {
	row, err := toSnapshotRow(snapshot)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO tax_snapshots (
			id, source_type, source_id, jurisdiction, regime,
			rounding_mode, currency, calculated_at, breakdown,
			tenant_id, status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :source_type, :source_id, :jurisdiction, :regime,
			:rounding_mode, :currency, :calculated_at, :breakdown,
			:tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by
		)`

	if _, err := sqlx.NamedExecContext(ctx, r.db.Querier(ctx), query, row); err != nil {
		if isUniqueViolation(err) {
			return ierr.WithError(err).
				WithHint("A tax snapshot already exists for this source document").
				WithReportableDetails(map[string]any{
					"source_type": snapshot.SourceType,
					"source_id":   snapshot.SourceID,
				}).
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create tax snapshot").
			Mark(ierr.ErrDatabase)
	}

	return nil
}

func (r *taxSnapshotRepository) Get(ctx context.Context, id string) (*taxsnapshot.TaxSnapshot, error) {
	var row taxSnapshotRow
	query := `
		SELECT * FROM tax_snapshots
		WHERE id = $1 AND tenant_id = $2 AND status = $3`

	err := sqlx.GetContext(ctx, r.db.Querier(ctx), &row, query,
		id, types.GetTenantID(ctx), types.StatusPublished)
	if err != nil {
		if isNoRows(err) {
			return nil, ierr.NewError("tax snapshot not found").
				WithHintf("Tax snapshot %s was not found", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get tax snapshot").
			Mark(ierr.ErrDatabase)
	}

	return row.toSnapshot()
}

func (r *taxSnapshotRepository) GetBySource(ctx context.Context, sourceType types.SourceType, sourceID string) (*taxsnapshot.TaxSnapshot, error) {
	var row taxSnapshotRow
	query := `
		SELECT * FROM tax_snapshots
		WHERE source_type = $1 AND source_id = $2 AND tenant_id = $3 AND status = $4`

	err := sqlx.GetContext(ctx, r.db.Querier(ctx), &row, query,
		sourceType, sourceID, types.GetTenantID(ctx), types.StatusPublished)
	if err != nil {
		if isNoRows(err) {
			return nil, ierr.NewError("tax snapshot not found").
				WithHintf("No tax snapshot exists for %s %s", sourceType, sourceID).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get tax snapshot").
			Mark(ierr.ErrDatabase)
	}

	return row.toSnapshot()
}

func snapshotConditions(ctx context.Context, filter *types.TaxSnapshotFilter) (string, []any) {
	conditions := []string{"tenant_id = $1", "status = $2"}
	args := []any{types.GetTenantID(ctx), types.StatusPublished}

	if len(filter.SourceTypes) > 0 {
		args = append(args, pq.Array(lo.Map(filter.SourceTypes, func(st types.SourceType, _ int) string {
			return st.String()
		})))
		conditions = append(conditions, fmt.Sprintf("source_type = ANY($%d)", len(args)))
	}

	if len(filter.SourceIDs) > 0 {
		args = append(args, pq.Array(filter.SourceIDs))
		conditions = append(conditions, fmt.Sprintf("source_id = ANY($%d)", len(args)))
	}

	// time range is half-open, matching period boundaries
	if filter.TimeRangeFilter != nil {
		if filter.StartTime != nil {
			args = append(args, *filter.StartTime)
			conditions = append(conditions, fmt.Sprintf("calculated_at >= $%d", len(args)))
		}
		if filter.EndTime != nil {
			args = append(args, *filter.EndTime)
			conditions = append(conditions, fmt.Sprintf("calculated_at < $%d", len(args)))
		}
	}

	return strings.Join(conditions, " AND "), args
}

// List returns snapshots in a stable order so period aggregation and
// filing line items paginate deterministically.
func (r *taxSnapshotRepository) List(ctx context.Context, filter *types.TaxSnapshotFilter) ([]*taxsnapshot.TaxSnapshot, error) {
	where, args := snapshotConditions(ctx, filter)
	query := fmt.Sprintf(`
		SELECT * FROM tax_snapshots
		WHERE %s
		ORDER BY calculated_at ASC, id ASC`, where)

	if !filter.IsUnlimited() {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, filter.GetLimit(), filter.GetOffset())
	}

	rows := []*taxSnapshotRow{}
	if err := sqlx.SelectContext(ctx, r.db.Querier(ctx), &rows, query, args...); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list tax snapshots").
			Mark(ierr.ErrDatabase)
	}

	snapshots := make([]*taxsnapshot.TaxSnapshot, 0, len(rows))
	for _, row := range rows {
		snapshot, err := row.toSnapshot()
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot)
	}

	return snapshots, nil
}

func (r *taxSnapshotRepository) Count(ctx context.Context, filter *types.TaxSnapshotFilter) (int, error) {
	where, args := snapshotConditions(ctx, filter)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM tax_snapshots WHERE %s`, where)

	var count int
	if err := sqlx.GetContext(ctx, r.db.Querier(ctx), &count, query, args...); err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count tax snapshots").
			Mark(ierr.ErrDatabase)
	}

	return count, nil
}
