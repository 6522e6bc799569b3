package access

import (
	"context"
	"testing"
)

func TestBuiltinRoles(t *testing.T) {
	roles := BuiltinRoles()

	slugs := make(map[string]Role, len(roles))
	for _, r := range roles {
		if !r.IsSystem {
			t.Errorf("builtin role %s not marked system", r.Slug)
		}
		for _, k := range r.Permissions {
			if !IsKnown(k) {
				t.Errorf("role %s carries unknown key %q", r.Slug, k)
			}
		}
		slugs[r.Slug] = r
	}

	for _, want := range []string{RoleAdmin, RoleManager, RoleAgent, RoleMember, RolePOS} {
		if _, ok := slugs[want]; !ok {
			t.Errorf("builtin role %s missing", want)
		}
	}

	// Admin's base set is the full catalog; admin power is data, not a
	// bypass flag.
	admin := slugs[RoleAdmin]
	if len(admin.Permissions) != len(Keys()) {
		t.Errorf("admin base set has %d keys, catalog has %d",
			len(admin.Permissions), len(Keys()))
	}

	// Member is read-only: no mutating actions.
	for _, k := range slugs[RoleMember].Permissions {
		switch k.Action() {
		case "view":
		default:
			t.Errorf("member role carries mutating key %q", k)
		}
	}
}

func TestRoleValidate(t *testing.T) {
	ctx := context.Background()

	valid := NewRole("support", "Support", []Key{"contacts.view", "tickets.view"})
	if err := valid.Validate(ctx); err != nil {
		t.Errorf("valid role rejected: %v", err)
	}

	if err := NewRole("", "No Slug", nil).Validate(ctx); err == nil {
		t.Error("empty slug accepted")
	}
	if err := NewRole("bad", "Bad Keys", []Key{"nope"}).Validate(ctx); err == nil {
		t.Error("malformed permission key accepted")
	}
	if err := NewRole("unknown", "Unknown Keys", []Key{"warp.drive"}).Validate(ctx); err == nil {
		t.Error("unknown permission key accepted")
	}
}
