package deal

import (
	"context"
	"testing"

	"omnicrm/internal/core/id"
	"omnicrm/internal/core/types"
)

func TestDealValidate(t *testing.T) {
	ctx := context.Background()
	pipelineID := id.New()

	tests := []struct {
		name    string
		mutate  func(*Deal)
		wantErr bool
	}{
		{
			name:   "valid",
			mutate: func(d *Deal) {},
		},
		{
			name:    "empty title",
			mutate:  func(d *Deal) { d.Title = "  " },
			wantErr: true,
		},
		{
			name:    "negative amount",
			mutate:  func(d *Deal) { d.Amount = types.NewMoney(-1) },
			wantErr: true,
		},
		{
			name:    "bad currency",
			mutate:  func(d *Deal) { d.Currency = "DIRHAM" },
			wantErr: true,
		},
		{
			name:    "nil pipeline",
			mutate:  func(d *Deal) { d.PipelineID = id.Nil() },
			wantErr: true,
		},
		{
			name:    "empty stage",
			mutate:  func(d *Deal) { d.StageSlug = "" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDeal("Enterprise plan", pipelineID, "new")
			tt.mutate(d)

			err := d.Validate(ctx)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestWeightedAmount(t *testing.T) {
	d := NewDeal("Enterprise plan", id.New(), "proposal")
	d.Amount = types.MustMoney("1000")

	got := d.WeightedAmount(60)
	if !got.Equal(types.MustMoney("600")) {
		t.Errorf("WeightedAmount(60) = %s, want 600", got)
	}

	got = d.WeightedAmount(0)
	if !got.Equal(types.Zero()) {
		t.Errorf("WeightedAmount(0) = %s, want 0", got)
	}
}
