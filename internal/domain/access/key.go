// Package access implements permission resolution and enforcement for the CRM.
// A principal carries exactly one role plus optional per-user overrides;
// every mutating endpoint is gated through a single decision path.
package access

import (
	"strings"

	"omnicrm/internal/core/apperror"
)

// Key identifies one guardable operation as "<module>.<action>",
// e.g. "contacts.create". The empty Key means "no permission required".
type Key string

// ParseKey validates raw input as a permission key.
// A valid key has exactly one dot with non-empty module and action parts.
func ParseKey(raw string) (Key, error) {
	module, action, ok := strings.Cut(raw, ".")
	if !ok || module == "" || action == "" || strings.Contains(action, ".") {
		return "", apperror.NewValidation("invalid permission key").
			WithDetail("key", raw)
	}
	return Key(raw), nil
}

// Valid reports whether the key is well-formed.
func (k Key) Valid() bool {
	_, err := ParseKey(string(k))
	return err == nil
}

// Module returns the resource part of the key ("contacts" in "contacts.create").
// Returns empty string for malformed keys.
func (k Key) Module() string {
	module, _, ok := strings.Cut(string(k), ".")
	if !ok {
		return ""
	}
	return module
}

// Action returns the verb part of the key ("create" in "contacts.create").
// Returns empty string for malformed keys.
func (k Key) Action() string {
	module, action, ok := strings.Cut(string(k), ".")
	if !ok || module == "" {
		return ""
	}
	return action
}

func (k Key) String() string { return string(k) }
