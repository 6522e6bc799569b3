package access

import (
	"context"
	"time"

	"omnicrm/internal/core/apperror"
	"omnicrm/internal/core/id"
)

// Role is a named bundle of baseline permission keys.
// The base set is immutable except through the administrative
// role-builder save path (Service.ReplacePermissions).
type Role struct {
	ID          id.ID     `db:"id" json:"id"`
	Slug        string    `db:"slug" json:"slug"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description,omitempty"`
	IsSystem    bool      `db:"is_system" json:"isSystem"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`

	// Permissions is the role's base grant, loaded from role_permissions.
	Permissions []Key `db:"-" json:"permissions,omitempty"`
}

// NewRole creates a custom (non-system) role.
func NewRole(slug, name string, permissions []Key) *Role {
	now := time.Now().UTC()
	return &Role{
		ID:          id.New(),
		Slug:        slug,
		Name:        name,
		Permissions: permissions,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Validate checks role invariants.
func (r *Role) Validate(ctx context.Context) error {
	if r.Slug == "" {
		return apperror.NewValidation("role slug is required").WithDetail("field", "slug")
	}
	if r.Name == "" {
		return apperror.NewValidation("role name is required").WithDetail("field", "name")
	}
	for _, k := range r.Permissions {
		if !IsKnown(k) {
			return apperror.NewValidation("unknown permission key").
				WithDetail("field", "permissions").
				WithDetail("key", string(k))
		}
	}
	return nil
}

// Builtin role slugs seeded into every tenant database.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleAgent   = "agent"
	RoleMember  = "member"
	RolePOS     = "pos"
)

// BuiltinRoles returns the system roles with their baseline permission
// sets. These are seed data: at runtime roles always come from the
// tenant database so administrative edits take effect immediately.
func BuiltinRoles() []Role {
	return []Role{
		{
			Slug: RoleAdmin, Name: "Administrator", IsSystem: true,
			Description: "Full access to every module",
			Permissions: Keys(),
		},
		{
			Slug: RoleManager, Name: "Manager", IsSystem: true,
			Description: "Full CRM access except destructive company and segment operations",
			Permissions: []Key{
				"contacts.view", "contacts.create", "contacts.edit", "contacts.delete",
				"contacts.export", "contacts.assign",
				"companies.view", "companies.create", "companies.edit",
				"segments.view", "segments.create", "segments.edit",
				"deals.view", "deals.create", "deals.edit", "deals.delete", "deals.assign",
				"pipelines.view", "pipelines.manage",
				"tags.manage", "statuses.manage", "lead_sources.manage",
				"users.view",
				"campaigns.view", "campaigns.create",
				"conversations.view", "conversations.reply", "conversations.assign",
				"tickets.view", "tickets.create", "tickets.edit",
				"analytics.view",
			},
		},
		{
			Slug: RoleAgent, Name: "Agent", IsSystem: true,
			Description: "Day-to-day CRM work without destructive operations",
			Permissions: []Key{
				"contacts.view", "contacts.create", "contacts.edit",
				"companies.view", "companies.create", "companies.edit",
				"segments.view",
				"deals.view", "deals.create", "deals.edit",
				"pipelines.view",
				"conversations.view", "conversations.reply",
				"tickets.view", "tickets.create",
			},
		},
		{
			Slug: RoleMember, Name: "Member", IsSystem: true,
			Description: "Read-only access",
			Permissions: []Key{
				"contacts.view", "companies.view", "segments.view",
				"deals.view", "pipelines.view", "analytics.view",
			},
		},
		{
			Slug: RolePOS, Name: "Point of Sale", IsSystem: true,
			Description: "Curated subset for point-of-sale stations",
			Permissions: []Key{
				"contacts.view", "contacts.create",
				"deals.view", "deals.create",
			},
		},
	}
}
