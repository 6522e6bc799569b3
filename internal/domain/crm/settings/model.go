// Package settings provides workspace-level lookup items: tags, contact
// statuses and lead sources. All three share one slim record shape
// distinguished by Kind.
package settings

import (
	"context"
	"regexp"
	"strings"

	"omnicrm/internal/core/apperror"
	"omnicrm/internal/core/entity"
)

var slugRE = regexp.MustCompile(`^[a-z0-9]+(_[a-z0-9]+)*$`)

// Kind discriminates the lookup type an item belongs to.
type Kind string

const (
	KindTag        Kind = "tag"
	KindStatus     Kind = "status"
	KindLeadSource Kind = "lead_source"
)

// Item is one lookup entry (a tag, a status or a lead source).
type Item struct {
	entity.Record

	// Kind discriminates the lookup type
	Kind Kind `db:"kind" json:"kind"`

	// Slug is the machine name; unique per kind within tenant
	Slug string `db:"slug" json:"slug"`

	// Name is the display name
	Name string `db:"name" json:"name"`

	// Color is an optional hex color for UI chips
	Color *string `db:"color" json:"color,omitempty"`

	// Position orders items inside their kind
	Position int `db:"position" json:"position"`
}

// NewItem creates a new lookup item.
func NewItem(kind Kind, slug, name string) *Item {
	return &Item{
		Record: entity.NewRecord(),
		Kind:   kind,
		Slug:   slug,
		Name:   name,
	}
}

// Validate implements entity.Validatable interface.
func (i *Item) Validate(ctx context.Context) error {
	if !isValidKind(i.Kind) {
		return apperror.NewValidation("invalid item kind").
			WithDetail("field", "kind").
			WithDetail("value", string(i.Kind))
	}
	if !slugRE.MatchString(i.Slug) {
		return apperror.NewValidation("slug must be snake_case").
			WithDetail("field", "slug").
			WithDetail("value", i.Slug)
	}
	if strings.TrimSpace(i.Name) == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	return nil
}

func isValidKind(k Kind) bool {
	switch k {
	case KindTag, KindStatus, KindLeadSource:
		return true
	}
	return false
}
