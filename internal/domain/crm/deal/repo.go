package deal

import (
	"context"

	"omnicrm/internal/core/id"
	"omnicrm/internal/core/types"
	"omnicrm/internal/domain"
)

// Repository defines the interface for Deal persistence.
type Repository interface {
	domain.RecordRepository[*Deal]

	// GetByNumber retrieves deal by its human-readable number.
	GetByNumber(ctx context.Context, number string) (*Deal, error)

	// ListByPipeline retrieves non-deleted deals for a pipeline.
	ListByPipeline(ctx context.Context, pipelineID id.ID) ([]Deal, error)

	// SumByStage returns total open amount per stage slug for a pipeline.
	SumByStage(ctx context.Context, pipelineID id.ID) (map[string]types.Money, error)
}
