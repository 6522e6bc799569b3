// Package pipeline provides the sales Pipeline record: an ordered set of
// stages that deals move through.
package pipeline

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"omnicrm/internal/core/apperror"
	"omnicrm/internal/core/entity"
)

// Stage is one step in a pipeline. Stored as part of the pipeline's
// JSONB stages column, not as a separate table.
type Stage struct {
	Slug string `json:"slug"`
	Name string `json:"name"`

	// Probability is the win likelihood in percent (0-100) used for
	// weighted forecasts.
	Probability int `json:"probability"`

	// Terminal stages end the deal (won/lost)
	IsWon  bool `json:"isWon,omitempty"`
	IsLost bool `json:"isLost,omitempty"`
}

// Stages is a JSONB-backed ordered stage list.
type Stages []Stage

// Value implements driver.Valuer for JSONB storage.
func (s Stages) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal stages: %w", err)
	}
	return string(data), nil
}

// Scan implements sql.Scanner for JSONB retrieval.
func (s *Stages) Scan(value any) error {
	if value == nil {
		*s = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for stages: %T", value)
	}

	return json.Unmarshal(data, s)
}

// Find returns the stage with the given slug, if present.
func (s Stages) Find(slug string) (Stage, bool) {
	for _, st := range s {
		if st.Slug == slug {
			return st, true
		}
	}
	return Stage{}, false
}

// Pipeline represents an ordered deal funnel.
type Pipeline struct {
	entity.Record

	// Name is the display name, required
	Name string `db:"name" json:"name"`

	// Stages is the ordered stage list; at least two stages required
	Stages Stages `db:"stages" json:"stages"`

	// IsDefault marks the pipeline new deals land in when none is given
	IsDefault bool `db:"is_default" json:"isDefault"`
}

// NewPipeline creates a new Pipeline with required fields.
func NewPipeline(name string, stages Stages) *Pipeline {
	return &Pipeline{
		Record: entity.NewRecord(),
		Name:   name,
		Stages: stages,
	}
}

// Validate implements entity.Validatable interface.
func (p *Pipeline) Validate(ctx context.Context) error {
	if strings.TrimSpace(p.Name) == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}

	if len(p.Stages) < 2 {
		return apperror.NewValidation("pipeline needs at least two stages").
			WithDetail("field", "stages")
	}

	seen := make(map[string]struct{}, len(p.Stages))
	for i, st := range p.Stages {
		if st.Slug == "" || st.Name == "" {
			return apperror.NewValidation("stage slug and name are required").
				WithDetail("index", i)
		}
		if st.Probability < 0 || st.Probability > 100 {
			return apperror.NewValidation("stage probability must be within 0-100").
				WithDetail("stage", st.Slug)
		}
		if st.IsWon && st.IsLost {
			return apperror.NewValidation("stage cannot be both won and lost").
				WithDetail("stage", st.Slug)
		}
		if _, dup := seen[st.Slug]; dup {
			return apperror.NewValidation("duplicate stage slug").
				WithDetail("stage", st.Slug)
		}
		seen[st.Slug] = struct{}{}
	}

	return nil
}

// FirstStage returns the entry stage of the pipeline.
func (p *Pipeline) FirstStage() Stage {
	if len(p.Stages) == 0 {
		return Stage{}
	}
	return p.Stages[0]
}

// DefaultStages is the funnel seeded for new tenants.
func DefaultStages() Stages {
	return Stages{
		{Slug: "new", Name: "New", Probability: 10},
		{Slug: "qualified", Name: "Qualified", Probability: 30},
		{Slug: "proposal", Name: "Proposal", Probability: 60},
		{Slug: "negotiation", Name: "Negotiation", Probability: 80},
		{Slug: "won", Name: "Won", Probability: 100, IsWon: true},
		{Slug: "lost", Name: "Lost", Probability: 0, IsLost: true},
	}
}
