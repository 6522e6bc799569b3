// Package company provides the Company record: an organization that
// contacts belong to and deals are made with.
package company

import (
	"context"
	"regexp"
	"strings"

	"omnicrm/internal/core/apperror"
	"omnicrm/internal/core/entity"
	"omnicrm/internal/core/id"
)

var (
	emailRE  = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	domainRE = regexp.MustCompile(`^([a-zA-Z0-9-]+\.)+[a-zA-Z]{2,}$`)
)

// Size buckets a company by employee count.
type Size string

const (
	SizeMicro  Size = "micro"  // 1-9
	SizeSmall  Size = "small"  // 10-49
	SizeMedium Size = "medium" // 50-249
	SizeLarge  Size = "large"  // 250+
)

// Company represents an organization in the CRM.
type Company struct {
	entity.Record

	// Name is the display name, required
	Name string `db:"name" json:"name"`

	// Domain is the primary web domain; unique within tenant when set
	Domain *string `db:"domain" json:"domain,omitempty"`

	// Industry is a free-form industry label
	Industry *string `db:"industry" json:"industry,omitempty"`

	// Size bucket
	Size *Size `db:"size" json:"size,omitempty"`

	Phone *string `db:"phone" json:"phone,omitempty"`
	Email *string `db:"email" json:"email,omitempty"`

	Address *string `db:"address" json:"address,omitempty"`
	City    *string `db:"city" json:"city,omitempty"`
	Country *string `db:"country" json:"country,omitempty"`

	// OwnerID is the user responsible for this account
	OwnerID *id.ID `db:"owner_id" json:"ownerId,omitempty"`

	// Tags are settings item slugs of kind "tag"
	Tags []string `db:"tags" json:"tags,omitempty"`

	// Comment is a free-form note
	Comment *string `db:"comment" json:"comment,omitempty"`
}

// NewCompany creates a new Company with required fields.
func NewCompany(name string) *Company {
	return &Company{
		Record: entity.NewRecord(),
		Name:   name,
	}
}

// Validate implements entity.Validatable interface.
func (c *Company) Validate(ctx context.Context) error {
	if strings.TrimSpace(c.Name) == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}

	if c.Size != nil && !isValidSize(*c.Size) {
		return apperror.NewValidation("invalid company size").
			WithDetail("field", "size").
			WithDetail("value", string(*c.Size))
	}

	if c.Domain != nil && *c.Domain != "" && !domainRE.MatchString(*c.Domain) {
		return apperror.NewValidation("invalid domain format").
			WithDetail("field", "domain")
	}

	if c.Email != nil && *c.Email != "" && !emailRE.MatchString(*c.Email) {
		return apperror.NewValidation("invalid email format").
			WithDetail("field", "email")
	}

	return nil
}

func isValidSize(s Size) bool {
	switch s {
	case SizeMicro, SizeSmall, SizeMedium, SizeLarge:
		return true
	}
	return false
}
