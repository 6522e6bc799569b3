package contact

import (
	"context"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestContactValidate(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(*Contact)
		wantErr bool
	}{
		{
			name:   "valid with phone",
			mutate: func(c *Contact) { c.Phone = strPtr("+971501234567") },
		},
		{
			name:   "valid with email only",
			mutate: func(c *Contact) { c.Email = strPtr("lead@example.com") },
		},
		{
			name: "phone with spaces and dashes",
			mutate: func(c *Contact) {
				c.Phone = strPtr("+971 50-123-4567")
			},
		},
		{
			name: "empty first name",
			mutate: func(c *Contact) {
				c.FirstName = "  "
				c.Phone = strPtr("+971501234567")
			},
			wantErr: true,
		},
		{
			name:    "no phone and no email",
			mutate:  func(c *Contact) {},
			wantErr: true,
		},
		{
			name:    "bad phone",
			mutate:  func(c *Contact) { c.Phone = strPtr("not-a-number") },
			wantErr: true,
		},
		{
			name:    "too short phone",
			mutate:  func(c *Contact) { c.Phone = strPtr("+1234") },
			wantErr: true,
		},
		{
			name:    "bad email",
			mutate:  func(c *Contact) { c.Email = strPtr("nope@") },
			wantErr: true,
		},
		{
			name: "unknown channel",
			mutate: func(c *Contact) {
				c.Channel = Channel("telegram")
				c.Phone = strPtr("+971501234567")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewContact("Amira", ChannelWhatsApp)
			tt.mutate(c)

			err := c.Validate(ctx)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFullName(t *testing.T) {
	c := NewContact("Amira", ChannelWhatsApp)
	if got := c.FullName(); got != "Amira" {
		t.Errorf("FullName() = %q, want %q", got, "Amira")
	}

	c.LastName = strPtr("Hassan")
	if got := c.FullName(); got != "Amira Hassan" {
		t.Errorf("FullName() = %q, want %q", got, "Amira Hassan")
	}
}

func TestHasTag(t *testing.T) {
	c := NewContact("Amira", ChannelWhatsApp)
	c.Tags = []string{"vip", "newsletter"}

	if !c.HasTag("vip") {
		t.Error("HasTag(vip) = false")
	}
	if c.HasTag("cold") {
		t.Error("HasTag(cold) = true")
	}
}
