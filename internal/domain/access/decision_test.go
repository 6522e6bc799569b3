package access

import (
	"testing"

	"omnicrm/internal/core/apperror"
)

func TestAuthorize_EmptyKeyAlwaysAllows(t *testing.T) {
	// Unguarded operations pass even for principals with zero permissions.
	d := Authorize(NewSet(), "")
	if !d.Allowed {
		t.Fatal("empty required key must allow")
	}
	if d.ErrorCode != "" {
		t.Errorf("allow decision carries error code %q", d.ErrorCode)
	}
}

func TestAuthorize_Allow(t *testing.T) {
	set := NewSet("contacts.view", "contacts.create")
	d := Authorize(set, "contacts.create")
	if !d.Allowed {
		t.Fatal("expected allow")
	}
	if d.Required != "contacts.create" {
		t.Errorf("Required = %q", d.Required)
	}
}

func TestAuthorize_DenyCarriesRequiredKeyAndCode(t *testing.T) {
	set := NewSet("contacts.view")
	d := Authorize(set, "contacts.delete")

	if d.Allowed {
		t.Fatal("expected deny")
	}
	if d.Required != "contacts.delete" {
		t.Errorf("Required = %q, want contacts.delete", d.Required)
	}
	if d.ErrorCode != apperror.CodeInsufficientPermissions {
		t.Errorf("ErrorCode = %q, want %q", d.ErrorCode, apperror.CodeInsufficientPermissions)
	}
}

func TestAuthorize_DenyOnEmptySet(t *testing.T) {
	d := Authorize(NewSet(), "deals.view")
	if d.Allowed {
		t.Fatal("empty set must deny any non-empty key")
	}
}
