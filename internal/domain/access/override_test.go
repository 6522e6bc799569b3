package access

import (
	"context"
	"testing"

	"omnicrm/internal/core/id"
)

func TestEffective_RevokeWins(t *testing.T) {
	base := []Key{"contacts.view", "contacts.create", "contacts.delete"}
	grants := []Key{"contacts.export"}
	revokes := []Key{"contacts.delete"}

	set := Effective(base, grants, revokes)

	if !set.Has("contacts.view") || !set.Has("contacts.create") {
		t.Error("base permissions missing from effective set")
	}
	if !set.Has("contacts.export") {
		t.Error("granted permission missing from effective set")
	}
	if set.Has("contacts.delete") {
		t.Error("revoked permission present in effective set")
	}
}

func TestEffective_RevokeBeatsGrantOfSameKey(t *testing.T) {
	// A grant and a revoke for the same key never coexist in storage,
	// but the resolution must still be deterministic: revoke wins.
	set := Effective(nil, []Key{"deals.edit"}, []Key{"deals.edit"})
	if set.Has("deals.edit") {
		t.Error("revoke must win over grant for the same key")
	}
}

func TestEffective_UnionIsIdempotent(t *testing.T) {
	// Granting a key the role already carries changes nothing.
	base := []Key{"deals.view", "deals.create"}
	with := Effective(base, []Key{"deals.view"}, nil)
	without := Effective(base, nil, nil)

	if len(with.Keys()) != len(without.Keys()) {
		t.Errorf("redundant grant changed set size: %d vs %d",
			len(with.Keys()), len(without.Keys()))
	}
}

func TestEffective_EmptyBase(t *testing.T) {
	set := Effective(nil, nil, nil)
	if len(set) != 0 {
		t.Errorf("expected empty set, got %d keys", len(set))
	}

	// Overrides still apply without a base
	set = Effective(nil, []Key{"contacts.view"}, nil)
	if !set.Has("contacts.view") {
		t.Error("grant on empty base missing")
	}
}

func TestSplit(t *testing.T) {
	userID := id.New()
	overrides := []Override{
		*NewOverride(userID, "contacts.export", EffectGrant),
		*NewOverride(userID, "contacts.delete", EffectRevoke),
		*NewOverride(userID, "deals.assign", EffectGrant),
	}

	grants, revokes := Split(overrides)

	if len(grants) != 2 {
		t.Fatalf("expected 2 grants, got %d", len(grants))
	}
	if len(revokes) != 1 || revokes[0] != "contacts.delete" {
		t.Fatalf("expected [contacts.delete] revokes, got %v", revokes)
	}
}

func TestOverrideValidate(t *testing.T) {
	ctx := context.Background()
	userID := id.New()

	if err := NewOverride(userID, "contacts.create", EffectGrant).Validate(ctx); err != nil {
		t.Errorf("valid override rejected: %v", err)
	}
	if err := NewOverride(id.Nil(), "contacts.create", EffectGrant).Validate(ctx); err == nil {
		t.Error("nil user accepted")
	}
	if err := NewOverride(userID, "contacts.create", Effect("maybe")).Validate(ctx); err == nil {
		t.Error("bogus effect accepted")
	}
	if err := NewOverride(userID, "not-in-catalog.nope", EffectGrant).Validate(ctx); err == nil {
		t.Error("unknown permission key accepted")
	}
}

func TestSetKeysSorted(t *testing.T) {
	set := NewSet("deals.view", "contacts.view", "analytics.view")
	keys := set.Keys()
	for i := 1; i < len(keys); i++ {
		if keys[i-1] > keys[i] {
			t.Fatalf("Keys() not sorted: %v", keys)
		}
	}
}
