// Package deal provides the Deal record: a revenue opportunity moving
// through a pipeline's stages.
package deal

import (
	"context"
	"strings"
	"time"

	"omnicrm/internal/core/apperror"
	"omnicrm/internal/core/entity"
	"omnicrm/internal/core/id"
	"omnicrm/internal/core/types"
)

// Deal represents a revenue opportunity.
type Deal struct {
	entity.Record

	// Number is the human-readable identifier (e.g. DL-000042),
	// generated on create when empty
	Number string `db:"number" json:"number"`

	// Title is the display name, required
	Title string `db:"title" json:"title"`

	// Amount is the expected revenue; never negative
	Amount types.Money `db:"amount" json:"amount"`

	// Currency is an ISO 4217 code
	Currency string `db:"currency" json:"currency"`

	// PipelineID and StageSlug place the deal in a funnel
	PipelineID id.ID  `db:"pipeline_id" json:"pipelineId"`
	StageSlug  string `db:"stage_slug" json:"stage"`

	// ContactID and CompanyID link the deal to CRM records
	ContactID *id.ID `db:"contact_id" json:"contactId,omitempty"`
	CompanyID *id.ID `db:"company_id" json:"companyId,omitempty"`

	// OwnerID is the user responsible for this deal
	OwnerID *id.ID `db:"owner_id" json:"ownerId,omitempty"`

	// ExpectedCloseAt is the forecast close date
	ExpectedCloseAt *time.Time `db:"expected_close_at" json:"expectedCloseAt,omitempty"`

	// ClosedAt is set when the deal reaches a terminal stage
	ClosedAt *time.Time `db:"closed_at" json:"closedAt,omitempty"`

	// Comment is a free-form note
	Comment *string `db:"comment" json:"comment,omitempty"`
}

// NewDeal creates a new Deal with required fields.
func NewDeal(title string, pipelineID id.ID, stageSlug string) *Deal {
	return &Deal{
		Record:     entity.NewRecord(),
		Title:      title,
		Amount:     types.Zero(),
		Currency:   "USD",
		PipelineID: pipelineID,
		StageSlug:  stageSlug,
	}
}

// Validate implements entity.Validatable interface.
func (d *Deal) Validate(ctx context.Context) error {
	if strings.TrimSpace(d.Title) == "" {
		return apperror.NewValidation("title is required").
			WithDetail("field", "title")
	}

	if d.Amount.IsNegative() {
		return apperror.NewValidation("amount cannot be negative").
			WithDetail("field", "amount")
	}

	if len(d.Currency) != 3 {
		return apperror.NewValidation("currency must be a 3-letter ISO code").
			WithDetail("field", "currency").
			WithDetail("value", d.Currency)
	}

	if id.IsNil(d.PipelineID) {
		return apperror.NewValidation("pipeline is required").
			WithDetail("field", "pipelineId")
	}

	if d.StageSlug == "" {
		return apperror.NewValidation("stage is required").
			WithDetail("field", "stage")
	}

	return nil
}

// IsClosed reports whether the deal reached a terminal stage.
func (d *Deal) IsClosed() bool {
	return d.ClosedAt != nil
}

// WeightedAmount returns amount scaled by the stage win probability.
func (d *Deal) WeightedAmount(probability int) types.Money {
	return d.Amount.Mul(types.NewMoney(float64(probability))).Div(types.NewMoney(100))
}
