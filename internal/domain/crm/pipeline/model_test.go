package pipeline

import (
	"context"
	"testing"
)

func TestPipelineValidate(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(*Pipeline)
		wantErr bool
	}{
		{
			name:   "default stages are valid",
			mutate: func(p *Pipeline) {},
		},
		{
			name:    "empty name",
			mutate:  func(p *Pipeline) { p.Name = "  " },
			wantErr: true,
		},
		{
			name:    "single stage",
			mutate:  func(p *Pipeline) { p.Stages = Stages{{Slug: "only", Name: "Only"}} },
			wantErr: true,
		},
		{
			name: "duplicate stage slug",
			mutate: func(p *Pipeline) {
				p.Stages = Stages{
					{Slug: "new", Name: "New", Probability: 10},
					{Slug: "new", Name: "New Again", Probability: 20},
				}
			},
			wantErr: true,
		},
		{
			name: "stage both won and lost",
			mutate: func(p *Pipeline) {
				p.Stages = Stages{
					{Slug: "new", Name: "New"},
					{Slug: "end", Name: "End", IsWon: true, IsLost: true},
				}
			},
			wantErr: true,
		},
		{
			name: "probability out of range",
			mutate: func(p *Pipeline) {
				p.Stages = Stages{
					{Slug: "new", Name: "New", Probability: 101},
					{Slug: "won", Name: "Won", IsWon: true},
				}
			},
			wantErr: true,
		},
		{
			name: "stage missing name",
			mutate: func(p *Pipeline) {
				p.Stages = Stages{
					{Slug: "new", Name: ""},
					{Slug: "won", Name: "Won", IsWon: true},
				}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPipeline("Sales", DefaultStages())
			tt.mutate(p)

			err := p.Validate(ctx)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestStagesFind(t *testing.T) {
	stages := DefaultStages()

	st, ok := stages.Find("negotiation")
	if !ok {
		t.Fatal("negotiation stage not found")
	}
	if st.Probability != 80 {
		t.Errorf("negotiation probability = %d, want 80", st.Probability)
	}

	if _, ok := stages.Find("missing"); ok {
		t.Error("found stage that does not exist")
	}
}

func TestStagesValueScanRoundtrip(t *testing.T) {
	original := DefaultStages()

	v, err := original.Value()
	if err != nil {
		t.Fatalf("Value() failed: %v", err)
	}

	var restored Stages
	if err := restored.Scan(v); err != nil {
		t.Fatalf("Scan() failed: %v", err)
	}

	if len(restored) != len(original) {
		t.Fatalf("roundtrip lost stages: got %d, want %d", len(restored), len(original))
	}
	for i := range original {
		if restored[i] != original[i] {
			t.Errorf("stage %d changed in roundtrip: %+v != %+v", i, restored[i], original[i])
		}
	}
}

func TestStagesScanNil(t *testing.T) {
	var s Stages
	if err := s.Scan(nil); err != nil {
		t.Fatalf("Scan(nil) failed: %v", err)
	}
	if s != nil {
		t.Error("Scan(nil) should leave stages nil")
	}
}

func TestFirstStage(t *testing.T) {
	p := NewPipeline("Sales", DefaultStages())
	if got := p.FirstStage().Slug; got != "new" {
		t.Errorf("FirstStage() = %q, want %q", got, "new")
	}

	empty := &Pipeline{}
	if got := empty.FirstStage(); got.Slug != "" {
		t.Errorf("FirstStage() on empty pipeline = %+v, want zero", got)
	}
}
