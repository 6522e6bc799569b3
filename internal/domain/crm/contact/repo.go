package contact

import (
	"context"

	"omnicrm/internal/core/id"
	"omnicrm/internal/domain"
)

// Repository defines the interface for Contact persistence.
type Repository interface {
	domain.RecordRepository[*Contact]

	// FindByPhone retrieves contact by phone (unique within tenant).
	FindByPhone(ctx context.Context, phone string) (*Contact, error)

	// FindByEmail retrieves contact by email (unique within tenant).
	FindByEmail(ctx context.Context, email string) (*Contact, error)

	// SetOwner assigns the contact to a user.
	SetOwner(ctx context.Context, contactID id.ID, ownerID *id.ID) error

	// ListAll streams every non-deleted contact in creation order (for export).
	ListAll(ctx context.Context) ([]Contact, error)
}
