package access

import (
	"context"
	"errors"
	"testing"

	"omnicrm/internal/core/apperror"
	"omnicrm/internal/core/id"
)

// --- Fakes ---

type fakeRoleRepo struct {
	roles map[string]*Role
	err   error
}

func (f *fakeRoleRepo) Create(ctx context.Context, role *Role) error { return nil }

func (f *fakeRoleRepo) GetBySlug(ctx context.Context, slug string) (*Role, error) {
	if f.err != nil {
		return nil, f.err
	}
	role, ok := f.roles[slug]
	if !ok {
		return nil, apperror.NewNotFound("role", slug)
	}
	return role, nil
}

func (f *fakeRoleRepo) List(ctx context.Context) ([]Role, error)      { return nil, nil }
func (f *fakeRoleRepo) Update(ctx context.Context, role *Role) error  { return nil }
func (f *fakeRoleRepo) Delete(ctx context.Context, roleID id.ID) error { return nil }
func (f *fakeRoleRepo) ReplacePermissions(ctx context.Context, roleID id.ID, keys []Key) error {
	return nil
}

type fakeOverrideRepo struct {
	overrides map[id.ID][]Override
	err       error
}

func (f *fakeOverrideRepo) ListForUser(ctx context.Context, userID id.ID) ([]Override, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.overrides[userID], nil
}

func (f *fakeOverrideRepo) Upsert(ctx context.Context, o *Override) error { return nil }
func (f *fakeOverrideRepo) Remove(ctx context.Context, userID id.ID, permission Key) error {
	return nil
}

func newTestResolver(roles map[string]*Role, overrides map[id.ID][]Override) *Resolver {
	return NewResolver(
		&fakeRoleRepo{roles: roles},
		&fakeOverrideRepo{overrides: overrides},
	)
}

// --- Tests ---

func TestResolver_BaseSetOnly(t *testing.T) {
	ctx := context.Background()
	userID := id.New()

	r := newTestResolver(map[string]*Role{
		"agent": {Slug: "agent", Permissions: []Key{"contacts.view", "contacts.create"}},
	}, nil)

	set, err := r.EffectiveSet(ctx, "agent", userID)
	if err != nil {
		t.Fatalf("EffectiveSet failed: %v", err)
	}
	if !set.Has("contacts.view") || !set.Has("contacts.create") {
		t.Error("base permissions missing")
	}
	if set.Has("contacts.delete") {
		t.Error("unexpected permission in set")
	}
}

func TestResolver_UnknownRoleFailsClosed(t *testing.T) {
	ctx := context.Background()

	r := newTestResolver(map[string]*Role{}, nil)

	set, err := r.EffectiveSet(ctx, "ghost", id.New())
	if err != nil {
		t.Fatalf("unknown role must not error: %v", err)
	}
	if len(set) != 0 {
		t.Errorf("unknown role resolved to %d permissions, want 0", len(set))
	}

	d, err := r.Authorize(ctx, "ghost", id.New(), "contacts.view")
	if err != nil {
		t.Fatalf("Authorize failed: %v", err)
	}
	if d.Allowed {
		t.Error("unknown role must deny")
	}
}

func TestResolver_OverridesApply(t *testing.T) {
	ctx := context.Background()
	userID := id.New()

	r := newTestResolver(
		map[string]*Role{
			"agent": {Slug: "agent", Permissions: []Key{"contacts.view", "contacts.edit"}},
		},
		map[id.ID][]Override{
			userID: {
				*NewOverride(userID, "contacts.export", EffectGrant),
				*NewOverride(userID, "contacts.edit", EffectRevoke),
			},
		},
	)

	set, err := r.EffectiveSet(ctx, "agent", userID)
	if err != nil {
		t.Fatalf("EffectiveSet failed: %v", err)
	}

	if !set.Has("contacts.export") {
		t.Error("granted override missing")
	}
	if set.Has("contacts.edit") {
		t.Error("revoked permission still present")
	}
	if !set.Has("contacts.view") {
		t.Error("untouched base permission missing")
	}
}

func TestResolver_RevokeStripsAdminRole(t *testing.T) {
	// No role bypasses overrides: a revoke suppresses the key even for
	// a role whose base set carries everything.
	ctx := context.Background()
	userID := id.New()

	r := newTestResolver(
		map[string]*Role{
			RoleAdmin: {Slug: RoleAdmin, Permissions: Keys()},
		},
		map[id.ID][]Override{
			userID: {*NewOverride(userID, "contacts.delete", EffectRevoke)},
		},
	)

	d, err := r.Authorize(ctx, RoleAdmin, userID, "contacts.delete")
	if err != nil {
		t.Fatalf("Authorize failed: %v", err)
	}
	if d.Allowed {
		t.Error("revoked admin permission must deny")
	}

	// Everything else stays intact
	d, err = r.Authorize(ctx, RoleAdmin, userID, "contacts.create")
	if err != nil {
		t.Fatalf("Authorize failed: %v", err)
	}
	if !d.Allowed {
		t.Error("unrelated admin permission denied")
	}
}

func TestResolver_StorageErrorPropagates(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("connection reset")

	r := NewResolver(&fakeRoleRepo{err: boom}, &fakeOverrideRepo{})

	if _, err := r.EffectiveSet(ctx, "agent", id.New()); !errors.Is(err, boom) {
		t.Errorf("storage error lost: %v", err)
	}

	r = NewResolver(
		&fakeRoleRepo{roles: map[string]*Role{"agent": {Slug: "agent"}}},
		&fakeOverrideRepo{err: boom},
	)
	if _, err := r.EffectiveSet(ctx, "agent", id.New()); !errors.Is(err, boom) {
		t.Errorf("override storage error lost: %v", err)
	}
}

func TestResolver_AuthorizeEmptyKeySkipsLookups(t *testing.T) {
	ctx := context.Background()

	// Repos that would fail loudly if touched
	r := NewResolver(&fakeRoleRepo{err: errors.New("no")}, &fakeOverrideRepo{err: errors.New("no")})

	d, err := r.Authorize(ctx, "agent", id.New(), "")
	if err != nil {
		t.Fatalf("empty key must not hit storage: %v", err)
	}
	if !d.Allowed {
		t.Error("empty key must allow")
	}
}
