package crm_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"omnicrm/internal/core/apperror"
	"omnicrm/internal/domain/crm/pipeline"
	"omnicrm/internal/infrastructure/storage/postgres"
)

const pipelineTable = "crm_pipelines"

// PipelineRepo implements pipeline.Repository.
type PipelineRepo struct {
	*BaseRecordRepo[*pipeline.Pipeline]
}

// NewPipelineRepo creates a new pipeline repository.
func NewPipelineRepo() *PipelineRepo {
	return &PipelineRepo{
		BaseRecordRepo: NewBaseRecordRepo[*pipeline.Pipeline](
			pipelineTable,
			postgres.ExtractDBColumns[pipeline.Pipeline](),
			[]string{"name"},
			func() *pipeline.Pipeline { return &pipeline.Pipeline{} },
		),
	}
}

// GetDefault retrieves the tenant's default pipeline.
func (r *PipelineRepo) GetDefault(ctx context.Context) (*pipeline.Pipeline, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"is_default": true}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	p, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("pipeline", "default")
		}
		return nil, err
	}
	return p, nil
}

// SetDefault marks one pipeline as default and clears the flag on others.
// Run inside a transaction so the flag is never on two rows.
func (r *PipelineRepo) SetDefault(ctx context.Context, pipelineID string) error {
	querier := r.getTxManager(ctx).GetQuerier(ctx)

	clearQ := r.Builder().
		Update(pipelineTable).
		Set("is_default", false).
		Where(squirrel.Eq{"is_default": true})
	sql, args, err := clearQ.ToSql()
	if err != nil {
		return fmt.Errorf("build clear default: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("clear default: %w", err)
	}

	setQ := r.Builder().
		Update(pipelineTable).
		Set("is_default", true).
		Where(squirrel.Eq{"id": pipelineID})
	sql, args, err = setQ.ToSql()
	if err != nil {
		return fmt.Errorf("build set default: %w", err)
	}
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("set default: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("pipeline", pipelineID)
	}

	return nil
}
