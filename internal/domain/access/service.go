package access

import (
	"context"
	"fmt"

	"omnicrm/internal/core/apperror"
	"omnicrm/internal/core/id"
	"omnicrm/internal/core/tenant"
	"omnicrm/internal/core/tx"
	"omnicrm/pkg/logger"
)

// Service is the administrative surface of the permission engine:
// role CRUD, the role-builder commit path, and per-user overrides.
// Runtime authorization goes through Resolver, never through here.
type Service struct {
	roles     RoleRepository
	overrides OverrideRepository
	txManager tx.Manager // optional; obtained from context when nil
	labels    LabelSource
}

// NewService creates the access administration service.
func NewService(roles RoleRepository, overrides OverrideRepository, labels LabelSource) *Service {
	if labels == nil {
		labels = CatalogLabels{}
	}
	return &Service{roles: roles, overrides: overrides, labels: labels}
}

func (s *Service) getTxManager(ctx context.Context) (tx.Manager, error) {
	if s.txManager != nil {
		return s.txManager, nil
	}
	return tenant.GetTxManager(ctx)
}

// Resolver returns a resolver sharing this service's repositories.
func (s *Service) Resolver() *Resolver {
	return NewResolver(s.roles, s.overrides)
}

// --- Roles ---

// ListRoles returns all roles with their permission sets.
func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	return s.roles.List(ctx)
}

// GetRole returns one role by slug.
func (s *Service) GetRole(ctx context.Context, slug string) (*Role, error) {
	return s.roles.GetBySlug(ctx, slug)
}

// CreateRole creates a custom role with an initial permission set.
func (s *Service) CreateRole(ctx context.Context, role *Role) error {
	if err := role.Validate(ctx); err != nil {
		return err
	}
	existing, err := s.roles.GetBySlug(ctx, role.Slug)
	if err != nil && !apperror.IsNotFound(err) {
		return fmt.Errorf("check role slug: %w", err)
	}
	if existing != nil {
		return apperror.NewDuplicate("role", "slug", role.Slug)
	}

	txm, err := s.getTxManager(ctx)
	if err != nil {
		return apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}
	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.roles.Create(ctx, role)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "role created", "slug", role.Slug, "permissions", len(role.Permissions))
	return nil
}

// ReplaceRolePermissions is the role-builder commit path: it replaces
// a role's base permission set atomically. Unknown keys are rejected,
// not dropped — the administrator must see the mistake.
func (s *Service) ReplaceRolePermissions(ctx context.Context, slug string, keys []Key) error {
	for _, k := range keys {
		if !IsKnown(k) {
			return apperror.NewValidation("unknown permission key").
				WithDetail("key", string(k))
		}
	}

	role, err := s.roles.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}

	txm, err := s.getTxManager(ctx)
	if err != nil {
		return apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}
	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.roles.ReplacePermissions(ctx, role.ID, keys)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "role permissions replaced", "slug", slug, "count", len(keys))
	return nil
}

// DeleteRole deletes a non-system role.
func (s *Service) DeleteRole(ctx context.Context, slug string) error {
	role, err := s.roles.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if role.IsSystem {
		return apperror.NewBusinessRule("CANNOT_DELETE_SYSTEM_ROLE", "Cannot delete system role").
			WithDetail("slug", slug)
	}
	return s.roles.Delete(ctx, role.ID)
}

// --- Overrides ---

// ListOverrides returns all override rows for a user.
func (s *Service) ListOverrides(ctx context.Context, userID id.ID) ([]Override, error) {
	return s.overrides.ListForUser(ctx, userID)
}

// SetOverride upserts the override for (user, permission). At most one
// entry exists per pair: setting grant over a previous revoke replaces
// it, and vice versa.
func (s *Service) SetOverride(ctx context.Context, o *Override) error {
	if err := o.Validate(ctx); err != nil {
		return err
	}
	txm, err := s.getTxManager(ctx)
	if err != nil {
		return apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}
	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.overrides.Upsert(ctx, o)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "permission override set",
		"user_id", o.UserID, "permission", string(o.Permission), "effect", string(o.Effect))
	return nil
}

// ClearOverride removes the override for (user, permission).
func (s *Service) ClearOverride(ctx context.Context, userID id.ID, permission Key) error {
	return s.overrides.Remove(ctx, userID, permission)
}

// --- Discovery ---

// Discover returns the categorized bilingual permission tree for the
// role-builder screen.
func (s *Service) Discover(ctx context.Context, locale string) []Group {
	return Discover(ctx, Keys(), locale, s.labels)
}
