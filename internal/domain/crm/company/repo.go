package company

import (
	"context"

	"omnicrm/internal/domain"
)

// Repository defines the interface for Company persistence.
type Repository interface {
	domain.RecordRepository[*Company]

	// FindByDomain retrieves company by web domain (unique within tenant).
	FindByDomain(ctx context.Context, domain string) (*Company, error)
}
