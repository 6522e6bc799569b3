package access

import (
	"context"
	"fmt"

	"omnicrm/internal/core/apperror"
	"omnicrm/internal/core/id"
)

// Resolver computes effective permission sets and authorization
// decisions for principals. It is stateless: role and override rows
// are read from the tenant database on every check, never cached
// across requests, so a revoke is effective on the next call.
type Resolver struct {
	roles     RoleRepository
	overrides OverrideRepository
}

// NewResolver creates a resolver over the given repositories.
func NewResolver(roles RoleRepository, overrides OverrideRepository) *Resolver {
	return &Resolver{roles: roles, overrides: overrides}
}

// EffectiveSet resolves the principal's permissions:
// (role base ∪ grants) \ revokes. An unknown role slug resolves to the
// empty base set (fail closed), not an error. Storage failures
// propagate so the caller denies by erroring, never by guessing.
func (r *Resolver) EffectiveSet(ctx context.Context, roleSlug string, userID id.ID) (Set, error) {
	var base []Key
	role, err := r.roles.GetBySlug(ctx, roleSlug)
	switch {
	case err == nil:
		base = role.Permissions
	case apperror.IsNotFound(err):
		// Fail closed: no role row means no base permissions.
	default:
		return nil, fmt.Errorf("load role %q: %w", roleSlug, err)
	}

	var overrides []Override
	if !id.IsNil(userID) {
		overrides, err = r.overrides.ListForUser(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("load overrides: %w", err)
		}
	}

	grants, revokes := Split(overrides)
	return Effective(base, grants, revokes), nil
}

// Authorize resolves the principal's effective set and decides the
// requested permission. Pure given identical database state: calling
// twice with the same inputs yields the same decision.
func (r *Resolver) Authorize(ctx context.Context, roleSlug string, userID id.ID, required Key) (Decision, error) {
	if required == "" {
		// Unguarded operation: skip the row lookups entirely.
		return Decision{Allowed: true}, nil
	}
	set, err := r.EffectiveSet(ctx, roleSlug, userID)
	if err != nil {
		return Decision{}, err
	}
	return Authorize(set, required), nil
}
