package pipeline

import (
	"context"

	"omnicrm/internal/domain"
)

// Repository defines the interface for Pipeline persistence.
type Repository interface {
	domain.RecordRepository[*Pipeline]

	// GetDefault retrieves the tenant's default pipeline.
	GetDefault(ctx context.Context) (*Pipeline, error)

	// SetDefault marks one pipeline as default and clears the flag on others.
	SetDefault(ctx context.Context, pipelineID string) error
}
