package dto

import (
	"time"

	"omnicrm/internal/domain/access"
)

// --- Roles ---

// RoleResponse represents a role with its base permission set.
type RoleResponse struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsSystem    bool      `json:"isSystem"`
	Permissions []string  `json:"permissions"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// FromRole creates response from domain role.
func FromRole(r *access.Role) *RoleResponse {
	perms := make([]string, len(r.Permissions))
	for i, k := range r.Permissions {
		perms[i] = string(k)
	}
	return &RoleResponse{
		ID:          r.ID.String(),
		Slug:        r.Slug,
		Name:        r.Name,
		Description: r.Description,
		IsSystem:    r.IsSystem,
		Permissions: perms,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// CreateRoleRequest creates a custom role via the role builder.
type CreateRoleRequest struct {
	Slug        string   `json:"slug" binding:"required"`
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

// ToEntity converts the request to a domain role.
func (r CreateRoleRequest) ToEntity() *access.Role {
	keys := make([]access.Key, len(r.Permissions))
	for i, p := range r.Permissions {
		keys[i] = access.Key(p)
	}
	role := access.NewRole(r.Slug, r.Name, keys)
	role.Description = r.Description
	return role
}

// ReplacePermissionsRequest replaces a role's base permission set.
type ReplacePermissionsRequest struct {
	Permissions []string `json:"permissions" binding:"required"`
}

// Keys converts the raw strings to permission keys.
func (r ReplacePermissionsRequest) Keys() []access.Key {
	keys := make([]access.Key, len(r.Permissions))
	for i, p := range r.Permissions {
		keys[i] = access.Key(p)
	}
	return keys
}

// --- Overrides ---

// OverrideResponse represents one per-user permission override.
type OverrideResponse struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	Permission string    `json:"permission"`
	Effect     string    `json:"effect"`
	CreatedAt  time.Time `json:"createdAt"`
	CreatedBy  string    `json:"createdBy,omitempty"`
}

// FromOverride creates response from domain override.
func FromOverride(o *access.Override) *OverrideResponse {
	return &OverrideResponse{
		ID:         o.ID.String(),
		UserID:     o.UserID.String(),
		Permission: string(o.Permission),
		Effect:     string(o.Effect),
		CreatedAt:  o.CreatedAt,
		CreatedBy:  o.CreatedBy,
	}
}

// SetOverrideRequest upserts a grant or revoke for a user.
type SetOverrideRequest struct {
	Permission string `json:"permission" binding:"required"`
	Effect     string `json:"effect" binding:"required,oneof=grant revoke"`
}

// --- Users ---

// InviteUserRequest creates a workspace member with a role.
type InviteUserRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Role      string `json:"role" binding:"required"`
}

// UpdateUserRequest for user profile updates by an administrator.
type UpdateUserRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	IsActive  *bool   `json:"isActive"`
}

// SetUserRoleRequest changes a user's role.
type SetUserRoleRequest struct {
	Role string `json:"role" binding:"required"`
}
