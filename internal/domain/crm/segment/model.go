// Package segment provides the Segment record: a saved contact filter
// defined as a CEL expression, used for campaign audiences.
package segment

import (
	"context"
	"strings"

	"omnicrm/internal/core/apperror"
	"omnicrm/internal/core/entity"
)

// Segment represents a saved dynamic contact filter.
type Segment struct {
	entity.Record

	// Name is the display name, required
	Name string `db:"name" json:"name"`

	// Description is a free-form note
	Description *string `db:"description" json:"description,omitempty"`

	// Expression is a CEL predicate over the contact variable, e.g.
	//   contact.channel == "whatsapp" && "vip" in contact.tags
	Expression string `db:"expression" json:"expression"`

	// MemberCount is the size at last evaluation, refreshed lazily
	MemberCount int `db:"member_count" json:"memberCount"`
}

// NewSegment creates a new Segment with required fields.
func NewSegment(name, expression string) *Segment {
	return &Segment{
		Record:     entity.NewRecord(),
		Name:       name,
		Expression: expression,
	}
}

// Validate implements entity.Validatable interface.
// Expression syntax is checked separately by the evaluator.
func (s *Segment) Validate(ctx context.Context) error {
	if strings.TrimSpace(s.Name) == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	if strings.TrimSpace(s.Expression) == "" {
		return apperror.NewValidation("expression is required").
			WithDetail("field", "expression")
	}
	return nil
}
