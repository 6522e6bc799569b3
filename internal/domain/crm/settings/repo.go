package settings

import (
	"context"

	"omnicrm/internal/domain"
)

// Repository defines the interface for lookup item persistence.
type Repository interface {
	domain.RecordRepository[*Item]

	// FindBySlug retrieves an item by kind and slug.
	FindBySlug(ctx context.Context, kind Kind, slug string) (*Item, error)

	// ListByKind retrieves non-deleted items of one kind ordered by position.
	ListByKind(ctx context.Context, kind Kind) ([]Item, error)
}
