package access

import (
	"context"

	"omnicrm/internal/core/id"
)

// RoleRepository defines role storage operations (tenant database).
type RoleRepository interface {
	// Create creates a new role with its permission set.
	Create(ctx context.Context, role *Role) error

	// GetBySlug retrieves a role with permissions loaded.
	GetBySlug(ctx context.Context, slug string) (*Role, error)

	// List retrieves all roles with permissions loaded.
	List(ctx context.Context) ([]Role, error)

	// Update updates role name/description.
	Update(ctx context.Context, role *Role) error

	// ReplacePermissions atomically replaces a role's base permission set.
	// This is the administrative save path behind the role builder.
	ReplacePermissions(ctx context.Context, roleID id.ID, keys []Key) error

	// Delete deletes a non-system role.
	Delete(ctx context.Context, roleID id.ID) error
}

// OverrideRepository defines per-user override storage operations.
type OverrideRepository interface {
	// ListForUser returns all override rows for a user.
	ListForUser(ctx context.Context, userID id.ID) ([]Override, error)

	// Upsert inserts or replaces the override for (user, permission).
	Upsert(ctx context.Context, o *Override) error

	// Remove deletes the override for (user, permission) if present.
	Remove(ctx context.Context, userID id.ID, permission Key) error
}
