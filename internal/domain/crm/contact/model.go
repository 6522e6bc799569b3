// Package contact provides the Contact record: a person reachable over
// WhatsApp, email or phone, optionally linked to a company.
package contact

import (
	"context"
	"regexp"
	"strings"
	"time"

	"omnicrm/internal/core/apperror"
	"omnicrm/internal/core/entity"
	"omnicrm/internal/core/id"
)

// Pre-compiled regex patterns for validation (performance optimization)
var (
	emailRE = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phoneRE = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
)

// Channel identifies how a contact was acquired or is reached.
type Channel string

const (
	ChannelWhatsApp  Channel = "whatsapp"
	ChannelEmail     Channel = "email"
	ChannelPhone     Channel = "phone"
	ChannelWebForm   Channel = "web_form"
	ChannelImport    Channel = "import"
	ChannelManual    Channel = "manual"
)

// Contact represents a person in the CRM.
type Contact struct {
	entity.Record

	// FirstName is required; LastName may be empty for WhatsApp-only leads
	FirstName string  `db:"first_name" json:"firstName"`
	LastName  *string `db:"last_name" json:"lastName,omitempty"`

	// Phone in E.164-ish form; unique within tenant when set
	Phone *string `db:"phone" json:"phone,omitempty"`

	// Email; unique within tenant when set
	Email *string `db:"email" json:"email,omitempty"`

	// Channel the contact originated from
	Channel Channel `db:"channel" json:"channel"`

	// CompanyID links the contact to a company record
	CompanyID *id.ID `db:"company_id" json:"companyId,omitempty"`

	// OwnerID is the user responsible for this contact
	OwnerID *id.ID `db:"owner_id" json:"ownerId,omitempty"`

	// StatusSlug references a settings item of kind "status"
	StatusSlug *string `db:"status_slug" json:"status,omitempty"`

	// LeadSourceSlug references a settings item of kind "lead_source"
	LeadSourceSlug *string `db:"lead_source_slug" json:"leadSource,omitempty"`

	// Tags are settings item slugs of kind "tag"
	Tags []string `db:"tags" json:"tags,omitempty"`

	// City and Country for coarse geography
	City    *string `db:"city" json:"city,omitempty"`
	Country *string `db:"country" json:"country,omitempty"`

	// LastContactedAt is the time of the last outbound touch
	LastContactedAt *time.Time `db:"last_contacted_at" json:"lastContactedAt,omitempty"`

	// Comment is a free-form note
	Comment *string `db:"comment" json:"comment,omitempty"`
}

// NewContact creates a new Contact with required fields.
func NewContact(firstName string, channel Channel) *Contact {
	return &Contact{
		Record:    entity.NewRecord(),
		FirstName: firstName,
		Channel:   channel,
	}
}

// Validate implements entity.Validatable interface.
func (c *Contact) Validate(ctx context.Context) error {
	if strings.TrimSpace(c.FirstName) == "" {
		return apperror.NewValidation("first name is required").
			WithDetail("field", "firstName")
	}

	if !isValidChannel(c.Channel) {
		return apperror.NewValidation("invalid channel").
			WithDetail("field", "channel").
			WithDetail("value", string(c.Channel))
	}

	// A contact must be reachable somehow
	if (c.Phone == nil || *c.Phone == "") && (c.Email == nil || *c.Email == "") {
		return apperror.NewValidation("phone or email is required").
			WithDetail("fields", "phone, email")
	}

	if c.Phone != nil && *c.Phone != "" && !isValidPhone(*c.Phone) {
		return apperror.NewValidation("invalid phone format").
			WithDetail("field", "phone")
	}

	if c.Email != nil && *c.Email != "" && !emailRE.MatchString(*c.Email) {
		return apperror.NewValidation("invalid email format").
			WithDetail("field", "email")
	}

	return nil
}

// FullName returns the contact's display name.
func (c *Contact) FullName() string {
	if c.LastName == nil || *c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + *c.LastName
}

// HasTag reports whether the contact carries the given tag slug.
func (c *Contact) HasTag(slug string) bool {
	for _, t := range c.Tags {
		if t == slug {
			return true
		}
	}
	return false
}

// --- Validation Helpers ---

func isValidChannel(ch Channel) bool {
	switch ch {
	case ChannelWhatsApp, ChannelEmail, ChannelPhone, ChannelWebForm, ChannelImport, ChannelManual:
		return true
	}
	return false
}

func isValidPhone(phone string) bool {
	cleaned := strings.ReplaceAll(strings.ReplaceAll(phone, " ", ""), "-", "")
	return phoneRE.MatchString(cleaned)
}
