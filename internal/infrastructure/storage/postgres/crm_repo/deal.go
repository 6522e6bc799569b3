package crm_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"omnicrm/internal/core/apperror"
	"omnicrm/internal/core/id"
	"omnicrm/internal/core/types"
	"omnicrm/internal/domain/crm/deal"
	"omnicrm/internal/infrastructure/storage/postgres"
)

const dealTable = "crm_deals"

// DealRepo implements deal.Repository.
type DealRepo struct {
	*BaseRecordRepo[*deal.Deal]
}

// NewDealRepo creates a new deal repository.
func NewDealRepo() *DealRepo {
	return &DealRepo{
		BaseRecordRepo: NewBaseRecordRepo[*deal.Deal](
			dealTable,
			postgres.ExtractDBColumns[deal.Deal](),
			[]string{"title", "number"},
			func() *deal.Deal { return &deal.Deal{} },
		),
	}
}

// GetByNumber retrieves deal by its human-readable number.
func (r *DealRepo) GetByNumber(ctx context.Context, number string) (*deal.Deal, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"number": number}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	d, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("deal", number)
		}
		return nil, err
	}
	return d, nil
}

// ListByPipeline retrieves non-deleted deals for a pipeline.
func (r *DealRepo) ListByPipeline(ctx context.Context, pipelineID id.ID) ([]deal.Deal, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"pipeline_id": pipelineID}).
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("created_at ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []deal.Deal
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list by pipeline: %w", err)
	}
	return items, nil
}

// SumByStage returns total open amount per stage slug for a pipeline.
// Closed deals are excluded.
func (r *DealRepo) SumByStage(ctx context.Context, pipelineID id.ID) (map[string]types.Money, error) {
	q := r.Builder().
		Select("stage_slug", "COALESCE(SUM(amount), 0) AS total").
		From(dealTable).
		Where(squirrel.Eq{"pipeline_id": pipelineID}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Where(squirrel.Eq{"closed_at": nil}).
		GroupBy("stage_slug")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.getTxManager(ctx).GetQuerier(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("sum by stage: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]types.Money)
	for rows.Next() {
		var slug string
		var total decimal.Decimal
		if err := rows.Scan(&slug, &total); err != nil {
			return nil, fmt.Errorf("scan stage total: %w", err)
		}
		totals[slug] = total
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stage totals: %w", err)
	}

	return totals, nil
}
