package crm_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"omnicrm/internal/core/apperror"
	"omnicrm/internal/core/id"
	"omnicrm/internal/domain/crm/segment"
	"omnicrm/internal/infrastructure/storage/postgres"
)

const segmentTable = "crm_segments"

// SegmentRepo implements segment.Repository.
type SegmentRepo struct {
	*BaseRecordRepo[*segment.Segment]
}

// NewSegmentRepo creates a new segment repository.
func NewSegmentRepo() *SegmentRepo {
	return &SegmentRepo{
		BaseRecordRepo: NewBaseRecordRepo[*segment.Segment](
			segmentTable,
			postgres.ExtractDBColumns[segment.Segment](),
			[]string{"name", "description"},
			func() *segment.Segment { return &segment.Segment{} },
		),
	}
}

// UpdateMemberCount stores the size from the last evaluation.
func (r *SegmentRepo) UpdateMemberCount(ctx context.Context, segmentID id.ID, count int) error {
	q := r.Builder().
		Update(segmentTable).
		Set("member_count", count).
		Where(squirrel.Eq{"id": segmentID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update member count: %w", err)
	}

	result, err := r.getTxManager(ctx).GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update member count: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("segment", segmentID.String())
	}
	return nil
}
