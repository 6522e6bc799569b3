package access

import (
	"context"
	"testing"
)

func TestDiscover_GroupsByModuleInOrder(t *testing.T) {
	ctx := context.Background()

	groups := Discover(ctx, []Key{
		"contacts.view", "contacts.create",
		"deals.view",
		"contacts.delete", // belongs to the already-open contacts group
	}, LocaleEN, nil)

	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].Module != "contacts" || groups[1].Module != "deals" {
		t.Errorf("group order wrong: %s, %s", groups[0].Module, groups[1].Module)
	}
	if len(groups[0].Items) != 3 {
		t.Errorf("contacts group has %d items, want 3", len(groups[0].Items))
	}
	if groups[0].Category != CategoryCRM {
		t.Errorf("contacts category = %q", groups[0].Category)
	}
}

func TestDiscover_DropsMalformedKeys(t *testing.T) {
	ctx := context.Background()

	groups := Discover(ctx, []Key{
		"contacts.view",
		"malformed",
		"",
		"a.b.c",
	}, LocaleEN, nil)

	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	if len(groups[0].Items) != 1 {
		t.Errorf("expected 1 item, got %d", len(groups[0].Items))
	}
}

func TestDiscover_FullCatalog(t *testing.T) {
	ctx := context.Background()

	groups := Discover(ctx, Keys(), LocaleEN, nil)

	total := 0
	for _, g := range groups {
		if g.Label == "" {
			t.Errorf("group %s has empty label", g.Module)
		}
		for _, item := range g.Items {
			if item.Label == "" {
				t.Errorf("item %s has empty label", item.Key)
			}
		}
		total += len(g.Items)
	}
	if total != len(Keys()) {
		t.Errorf("discovery lost keys: %d of %d", total, len(Keys()))
	}
}

type staticLabels map[Key]string

func (s staticLabels) LabelFor(key Key, locale string) (string, bool) {
	l, ok := s[key]
	return l, ok
}

func TestDiscover_ExternalLabelSourceWins(t *testing.T) {
	ctx := context.Background()

	groups := Discover(ctx, []Key{"contacts.view"}, LocaleEN, staticLabels{
		"contacts.view": "See people",
	})

	if groups[0].Items[0].Label != "See people" {
		t.Errorf("external label ignored: %q", groups[0].Items[0].Label)
	}
}

func TestDiscover_ArabicLocale(t *testing.T) {
	ctx := context.Background()

	groups := Discover(ctx, []Key{"contacts.view"}, LocaleAR, nil)
	if groups[0].Label == "Contacts" {
		t.Error("module label not localized for ar")
	}
}
