package access

import (
	"strings"
	"testing"
)

func TestCatalogKeysAreWellFormed(t *testing.T) {
	seen := make(map[Key]struct{})
	for _, k := range Keys() {
		if !k.Valid() {
			t.Errorf("catalog contains malformed key %q", k)
		}
		if _, dup := seen[k]; dup {
			t.Errorf("catalog contains duplicate key %q", k)
		}
		seen[k] = struct{}{}
	}
}

func TestIsKnown(t *testing.T) {
	if !IsKnown("contacts.create") {
		t.Error("contacts.create should be known")
	}
	if IsKnown("contacts.frobnicate") {
		t.Error("unknown action reported as known")
	}
	if IsKnown("") {
		t.Error("empty key reported as known")
	}
}

func TestCategorize(t *testing.T) {
	groups := Categorize([]Key{
		"contacts.view", "deals.create", "tags.manage", "users.invite",
	})

	if _, ok := groups[CategoryCRM]; !ok {
		t.Error("crm category missing")
	}
	if _, ok := groups[CategorySettings]; !ok {
		t.Error("settings category missing")
	}
	if _, ok := groups[CategoryTeam]; !ok {
		t.Error("team category missing")
	}

	crm := groups[CategoryCRM]
	if len(crm) != 2 {
		t.Errorf("expected 2 crm keys, got %v", crm)
	}
}

func TestLabelFallback(t *testing.T) {
	// Known module and action have explicit labels
	label := Label("contacts.create", "en")
	if label == "" || strings.Contains(label, ".") {
		t.Errorf("unexpected label %q", label)
	}

	// Unknown locale falls back to English
	if got := Label("contacts.create", "xx"); got != label {
		t.Errorf("unknown locale label %q differs from English %q", got, label)
	}
}
