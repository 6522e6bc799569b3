package segment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"omnicrm/internal/domain/crm/contact"
)

func testContact() *contact.Contact {
	country := "AE"
	city := "Dubai"
	status := "customer"
	c := contact.NewContact("Amira", contact.ChannelWhatsApp)
	c.Country = &country
	c.City = &city
	c.StatusSlug = &status
	c.Tags = []string{"vip", "newsletter"}
	return c
}

func TestEvaluatorCompile(t *testing.T) {
	ev, err := NewEvaluator()
	require.NoError(t, err)

	tests := []struct {
		name       string
		expression string
		wantErr    bool
	}{
		{name: "simple comparison", expression: `contact.country == "AE"`},
		{name: "tag membership", expression: `"vip" in contact.tags`},
		{
			name:       "string extension function",
			expression: `contact.email.endsWith("@example.com")`,
		},
		{
			name:       "compound condition",
			expression: `contact.channel == "whatsapp" && contact.status == "customer"`,
		},
		{name: "syntax error", expression: `contact.country ==`, wantErr: true},
		{name: "unknown field", expression: `contact.shoeSize > 40`, wantErr: true},
		{name: "non-boolean result", expression: `contact.firstName`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ev.Compile(tt.expression)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEvaluatorMatches(t *testing.T) {
	ev, err := NewEvaluator()
	require.NoError(t, err)

	c := testContact()

	tests := []struct {
		name       string
		expression string
		want       bool
	}{
		{name: "country match", expression: `contact.country == "AE"`, want: true},
		{name: "country mismatch", expression: `contact.country == "SA"`, want: false},
		{name: "tag present", expression: `"vip" in contact.tags`, want: true},
		{name: "tag absent", expression: `"cold" in contact.tags`, want: false},
		{
			name:       "compound",
			expression: `contact.status == "customer" && contact.city == "Dubai"`,
			want:       true,
		},
		{
			name: "nil optional fields read as empty string",
			// testContact leaves email unset
			expression: `contact.email == ""`,
			want:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prg, err := ev.Compile(tt.expression)
			require.NoError(t, err)

			got, err := ev.Matches(prg, c)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
