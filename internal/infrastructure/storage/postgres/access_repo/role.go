// Package access_repo provides PostgreSQL implementations for permission
// storage. In Database-per-Tenant architecture, TxManager is obtained
// from context.
package access_repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"omnicrm/internal/core/apperror"
	"omnicrm/internal/core/id"
	"omnicrm/internal/domain/access"
	"omnicrm/internal/infrastructure/storage/postgres"
)

// RoleRepo implements access.RoleRepository.
// In Database-per-Tenant, TxManager is obtained from context.
type RoleRepo struct{}

// NewRoleRepo creates a new role repository.
func NewRoleRepo() *RoleRepo {
	return &RoleRepo{}
}

// getTxManager retrieves TxManager from context.
func (r *RoleRepo) getTxManager(ctx context.Context) *postgres.TxManager {
	return postgres.MustGetTxManager(ctx)
}

// Create creates a new role with its permission set.
func (r *RoleRepo) Create(ctx context.Context, role *access.Role) error {
	q := r.getTxManager(ctx).GetQuerier(ctx)

	query := `
		INSERT INTO roles (id, slug, name, description, is_system, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := q.Exec(ctx, query,
		role.ID, role.Slug, role.Name,
		role.Description, role.IsSystem, role.CreatedAt, role.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert role: %w", err)
	}

	if err := r.insertPermissions(ctx, role.ID, role.Permissions); err != nil {
		return err
	}

	return nil
}

// GetBySlug retrieves role by slug with permissions loaded.
func (r *RoleRepo) GetBySlug(ctx context.Context, slug string) (*access.Role, error) {
	q := r.getTxManager(ctx).GetQuerier(ctx)

	query := `
		SELECT id, slug, name, description, is_system, created_at, updated_at
		FROM roles WHERE slug = $1
	`

	var role access.Role
	err := q.QueryRow(ctx, query, slug).Scan(
		&role.ID, &role.Slug, &role.Name,
		&role.Description, &role.IsSystem, &role.CreatedAt, &role.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, apperror.NewNotFound("role", slug)
	}
	if err != nil {
		return nil, fmt.Errorf("query role: %w", err)
	}

	perms, err := r.loadPermissions(ctx, role.ID)
	if err != nil {
		return nil, err
	}
	role.Permissions = perms

	return &role, nil
}

// List retrieves all roles with permissions loaded.
func (r *RoleRepo) List(ctx context.Context) ([]access.Role, error) {
	q := r.getTxManager(ctx).GetQuerier(ctx)

	query := `
		SELECT id, slug, name, description, is_system, created_at, updated_at
		FROM roles ORDER BY slug
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query roles: %w", err)
	}
	defer rows.Close()

	var roles []access.Role
	for rows.Next() {
		var role access.Role
		if err := rows.Scan(
			&role.ID, &role.Slug, &role.Name,
			&role.Description, &role.IsSystem, &role.CreatedAt, &role.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roles: %w", err)
	}

	for i := range roles {
		perms, err := r.loadPermissions(ctx, roles[i].ID)
		if err != nil {
			return nil, err
		}
		roles[i].Permissions = perms
	}

	return roles, nil
}

// Update updates role name/description.
func (r *RoleRepo) Update(ctx context.Context, role *access.Role) error {
	q := r.getTxManager(ctx).GetQuerier(ctx)

	query := `
		UPDATE roles SET name = $2, description = $3, updated_at = now()
		WHERE id = $1
	`

	result, err := q.Exec(ctx, query, role.ID, role.Name, role.Description)
	if err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("role", role.ID.String())
	}

	return nil
}

// ReplacePermissions atomically replaces a role's base permission set.
// Callers wrap this in a transaction; delete and insert then commit or
// roll back together.
func (r *RoleRepo) ReplacePermissions(ctx context.Context, roleID id.ID, keys []access.Key) error {
	q := r.getTxManager(ctx).GetQuerier(ctx)

	if _, err := q.Exec(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, roleID); err != nil {
		return fmt.Errorf("clear role permissions: %w", err)
	}

	return r.insertPermissions(ctx, roleID, keys)
}

// Delete deletes a role (only non-system roles).
func (r *RoleRepo) Delete(ctx context.Context, roleID id.ID) error {
	q := r.getTxManager(ctx).GetQuerier(ctx)

	result, err := q.Exec(ctx, `DELETE FROM roles WHERE id = $1 AND is_system = false`, roleID)
	if err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("role", roleID.String())
	}

	return nil
}

func (r *RoleRepo) loadPermissions(ctx context.Context, roleID id.ID) ([]access.Key, error) {
	q := r.getTxManager(ctx).GetQuerier(ctx)

	rows, err := q.Query(ctx,
		`SELECT permission FROM role_permissions WHERE role_id = $1 ORDER BY permission`, roleID)
	if err != nil {
		return nil, fmt.Errorf("query role permissions: %w", err)
	}
	defer rows.Close()

	var keys []access.Key
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan permission: %w", err)
		}
		keys = append(keys, access.Key(raw))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate permissions: %w", err)
	}

	return keys, nil
}

func (r *RoleRepo) insertPermissions(ctx context.Context, roleID id.ID, keys []access.Key) error {
	if len(keys) == 0 {
		return nil
	}

	q := r.getTxManager(ctx).GetQuerier(ctx)
	for _, k := range keys {
		_, err := q.Exec(ctx,
			`INSERT INTO role_permissions (role_id, permission) VALUES ($1, $2)
			 ON CONFLICT (role_id, permission) DO NOTHING`,
			roleID, string(k))
		if err != nil {
			return fmt.Errorf("insert role permission %s: %w", k, err)
		}
	}

	return nil
}
