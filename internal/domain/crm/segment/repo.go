package segment

import (
	"context"

	"omnicrm/internal/core/id"
	"omnicrm/internal/domain"
)

// Repository defines the interface for Segment persistence.
type Repository interface {
	domain.RecordRepository[*Segment]

	// UpdateMemberCount stores the size from the last evaluation.
	UpdateMemberCount(ctx context.Context, segmentID id.ID, count int) error
}
