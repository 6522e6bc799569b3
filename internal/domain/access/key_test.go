package access

import "testing"

func TestParseKey(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"simple", "contacts.create", false},
		{"manage action", "tags.manage", false},
		{"underscore module", "lead_sources.manage", false},
		{"empty", "", true},
		{"no dot", "contacts", true},
		{"empty module", ".create", true},
		{"empty action", "contacts.", true},
		{"two dots", "contacts.create.extra", true},
		{"only dot", ".", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := ParseKey(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseKey(%q) expected error, got key %q", tt.raw, key)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseKey(%q) failed: %v", tt.raw, err)
			}
			if string(key) != tt.raw {
				t.Errorf("ParseKey(%q) = %q", tt.raw, key)
			}
		})
	}
}

func TestKeyParts(t *testing.T) {
	k := Key("deals.edit")
	if k.Module() != "deals" {
		t.Errorf("Module() = %q, want deals", k.Module())
	}
	if k.Action() != "edit" {
		t.Errorf("Action() = %q, want edit", k.Action())
	}

	malformed := Key("nodot")
	if malformed.Module() != "" || malformed.Action() != "" {
		t.Errorf("malformed key parts should be empty, got %q / %q",
			malformed.Module(), malformed.Action())
	}
}
