package access

import (
	"context"
	"sort"
	"time"

	"omnicrm/internal/core/apperror"
	"omnicrm/internal/core/id"
)

// Effect is the direction of a per-user override.
type Effect string

const (
	EffectGrant  Effect = "grant"
	EffectRevoke Effect = "revoke"
)

// Override is a per-user delta on top of the role's base grant.
// The database enforces at most one row per (user, permission);
// upserting replaces the previous effect.
type Override struct {
	ID         id.ID     `db:"id" json:"id"`
	UserID     id.ID     `db:"user_id" json:"userId"`
	Permission Key       `db:"permission" json:"permission"`
	Effect     Effect    `db:"effect" json:"effect"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	CreatedBy  string    `db:"created_by" json:"createdBy,omitempty"`
}

// NewOverride creates an override entry for a user.
func NewOverride(userID id.ID, permission Key, effect Effect) *Override {
	return &Override{
		ID:         id.New(),
		UserID:     userID,
		Permission: permission,
		Effect:     effect,
		CreatedAt:  time.Now().UTC(),
	}
}

// Validate checks override invariants.
func (o *Override) Validate(ctx context.Context) error {
	if id.IsNil(o.UserID) {
		return apperror.NewValidation("user is required").WithDetail("field", "userId")
	}
	if o.Effect != EffectGrant && o.Effect != EffectRevoke {
		return apperror.NewValidation("effect must be grant or revoke").
			WithDetail("field", "effect").
			WithDetail("value", string(o.Effect))
	}
	if !IsKnown(o.Permission) {
		return apperror.NewValidation("unknown permission key").
			WithDetail("field", "permission").
			WithDetail("key", string(o.Permission))
	}
	return nil
}

// Split partitions overrides into grant and revoke key lists.
func Split(overrides []Override) (grants, revokes []Key) {
	for _, o := range overrides {
		switch o.Effect {
		case EffectGrant:
			grants = append(grants, o.Permission)
		case EffectRevoke:
			revokes = append(revokes, o.Permission)
		}
	}
	return grants, revokes
}

// Set is a resolved permission set. Derived, never stored: it is
// recomputed on every authorization check so role and override
// changes take effect on the very next request.
type Set map[Key]struct{}

// NewSet builds a set from keys.
func NewSet(keys ...Key) Set {
	s := make(Set, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s Set) Has(k Key) bool {
	_, ok := s[k]
	return ok
}

// Keys returns the set's keys in lexical order.
func (s Set) Keys() []Key {
	out := make([]Key, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Effective computes a principal's effective permission set:
// (base ∪ grants) \ revokes. Revokes are applied after grants, so an
// explicit revoke always suppresses a role-inherited or granted key;
// when the same key appears in both lists, revoke wins. A key present
// in both the base set and grants unions idempotently.
func Effective(base, grants, revokes []Key) Set {
	s := make(Set, len(base)+len(grants))
	for _, k := range base {
		s[k] = struct{}{}
	}
	for _, k := range grants {
		s[k] = struct{}{}
	}
	for _, k := range revokes {
		delete(s, k)
	}
	return s
}
