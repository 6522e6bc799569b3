package settings

import (
	"context"
	"testing"
)

func TestItemValidate(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		item    *Item
		wantErr bool
	}{
		{name: "valid tag", item: NewItem(KindTag, "vip", "VIP")},
		{name: "valid lead source", item: NewItem(KindLeadSource, "web_form", "Web Form")},
		{name: "slug with digits", item: NewItem(KindStatus, "tier_2", "Tier 2")},
		{name: "unknown kind", item: NewItem(Kind("flavor"), "vip", "VIP"), wantErr: true},
		{name: "slug with dashes", item: NewItem(KindTag, "web-form", "Web Form"), wantErr: true},
		{name: "slug with uppercase", item: NewItem(KindTag, "VIP", "VIP"), wantErr: true},
		{name: "slug with trailing underscore", item: NewItem(KindTag, "vip_", "VIP"), wantErr: true},
		{name: "empty slug", item: NewItem(KindTag, "", "VIP"), wantErr: true},
		{name: "empty name", item: NewItem(KindTag, "vip", "  "), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.item.Validate(ctx)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
