package dto

import (
	"time"

	"omnicrm/internal/core/id"
	"omnicrm/internal/core/types"
	"omnicrm/internal/domain/crm/company"
	"omnicrm/internal/domain/crm/contact"
	"omnicrm/internal/domain/crm/deal"
	"omnicrm/internal/domain/crm/pipeline"
	"omnicrm/internal/domain/crm/segment"
	"omnicrm/internal/domain/crm/settings"
)

// parseIDPtr converts an optional string id into *id.ID, silently
// dropping malformed values (binding validates format via uuid tag).
func parseIDPtr(s *string) *id.ID {
	if s == nil || *s == "" {
		return nil
	}
	parsed, err := id.Parse(*s)
	if err != nil {
		return nil
	}
	return &parsed
}

// --- Contact ---

// CreateContactRequest for creating contacts.
type CreateContactRequest struct {
	FirstName  string   `json:"firstName" binding:"required"`
	LastName   *string  `json:"lastName"`
	Phone      *string  `json:"phone"`
	Email      *string  `json:"email"`
	Channel    string   `json:"channel" binding:"required"`
	CompanyID  *string  `json:"companyId" binding:"omitempty,uuid"`
	OwnerID    *string  `json:"ownerId" binding:"omitempty,uuid"`
	Status     *string  `json:"status"`
	LeadSource *string  `json:"leadSource"`
	Tags       []string `json:"tags"`
	City       *string  `json:"city"`
	Country    *string  `json:"country"`
	Comment    *string  `json:"comment"`
}

// ToEntity converts the request to a domain contact.
func (r CreateContactRequest) ToEntity() *contact.Contact {
	c := contact.NewContact(r.FirstName, contact.Channel(r.Channel))
	c.LastName = r.LastName
	c.Phone = r.Phone
	c.Email = r.Email
	c.CompanyID = parseIDPtr(r.CompanyID)
	c.OwnerID = parseIDPtr(r.OwnerID)
	c.StatusSlug = r.Status
	c.LeadSourceSlug = r.LeadSource
	c.Tags = r.Tags
	c.City = r.City
	c.Country = r.Country
	c.Comment = r.Comment
	return c
}

// UpdateContactRequest for partial contact updates.
type UpdateContactRequest struct {
	FirstName  *string  `json:"firstName"`
	LastName   *string  `json:"lastName"`
	Phone      *string  `json:"phone"`
	Email      *string  `json:"email"`
	Channel    *string  `json:"channel"`
	CompanyID  *string  `json:"companyId" binding:"omitempty,uuid"`
	OwnerID    *string  `json:"ownerId" binding:"omitempty,uuid"`
	Status     *string  `json:"status"`
	LeadSource *string  `json:"leadSource"`
	Tags       []string `json:"tags"`
	City       *string  `json:"city"`
	Country    *string  `json:"country"`
	Comment    *string  `json:"comment"`
	Version    int      `json:"version" binding:"required,min=1"`
}

// Apply merges the request onto an existing contact.
func (r UpdateContactRequest) Apply(c *contact.Contact) *contact.Contact {
	if r.FirstName != nil {
		c.FirstName = *r.FirstName
	}
	if r.LastName != nil {
		c.LastName = r.LastName
	}
	if r.Phone != nil {
		c.Phone = r.Phone
	}
	if r.Email != nil {
		c.Email = r.Email
	}
	if r.Channel != nil {
		c.Channel = contact.Channel(*r.Channel)
	}
	if r.CompanyID != nil {
		c.CompanyID = parseIDPtr(r.CompanyID)
	}
	if r.OwnerID != nil {
		c.OwnerID = parseIDPtr(r.OwnerID)
	}
	if r.Status != nil {
		c.StatusSlug = r.Status
	}
	if r.LeadSource != nil {
		c.LeadSourceSlug = r.LeadSource
	}
	if r.Tags != nil {
		c.Tags = r.Tags
	}
	if r.City != nil {
		c.City = r.City
	}
	if r.Country != nil {
		c.Country = r.Country
	}
	if r.Comment != nil {
		c.Comment = r.Comment
	}
	c.Version = r.Version
	return c
}

// AssignRequest sets or clears the owner of a record.
type AssignRequest struct {
	OwnerID *string `json:"ownerId" binding:"omitempty,uuid"`
}

// --- Company ---

// CreateCompanyRequest for creating companies.
type CreateCompanyRequest struct {
	Name     string   `json:"name" binding:"required"`
	Domain   *string  `json:"domain"`
	Industry *string  `json:"industry"`
	Size     *string  `json:"size"`
	Phone    *string  `json:"phone"`
	Email    *string  `json:"email"`
	Address  *string  `json:"address"`
	City     *string  `json:"city"`
	Country  *string  `json:"country"`
	OwnerID  *string  `json:"ownerId" binding:"omitempty,uuid"`
	Tags     []string `json:"tags"`
	Comment  *string  `json:"comment"`
}

// ToEntity converts the request to a domain company.
func (r CreateCompanyRequest) ToEntity() *company.Company {
	c := company.NewCompany(r.Name)
	c.Domain = r.Domain
	c.Industry = r.Industry
	if r.Size != nil {
		size := company.Size(*r.Size)
		c.Size = &size
	}
	c.Phone = r.Phone
	c.Email = r.Email
	c.Address = r.Address
	c.City = r.City
	c.Country = r.Country
	c.OwnerID = parseIDPtr(r.OwnerID)
	c.Tags = r.Tags
	c.Comment = r.Comment
	return c
}

// UpdateCompanyRequest for partial company updates.
type UpdateCompanyRequest struct {
	Name     *string  `json:"name"`
	Domain   *string  `json:"domain"`
	Industry *string  `json:"industry"`
	Size     *string  `json:"size"`
	Phone    *string  `json:"phone"`
	Email    *string  `json:"email"`
	Address  *string  `json:"address"`
	City     *string  `json:"city"`
	Country  *string  `json:"country"`
	OwnerID  *string  `json:"ownerId" binding:"omitempty,uuid"`
	Tags     []string `json:"tags"`
	Comment  *string  `json:"comment"`
	Version  int      `json:"version" binding:"required,min=1"`
}

// Apply merges the request onto an existing company.
func (r UpdateCompanyRequest) Apply(c *company.Company) *company.Company {
	if r.Name != nil {
		c.Name = *r.Name
	}
	if r.Domain != nil {
		c.Domain = r.Domain
	}
	if r.Industry != nil {
		c.Industry = r.Industry
	}
	if r.Size != nil {
		size := company.Size(*r.Size)
		c.Size = &size
	}
	if r.Phone != nil {
		c.Phone = r.Phone
	}
	if r.Email != nil {
		c.Email = r.Email
	}
	if r.Address != nil {
		c.Address = r.Address
	}
	if r.City != nil {
		c.City = r.City
	}
	if r.Country != nil {
		c.Country = r.Country
	}
	if r.OwnerID != nil {
		c.OwnerID = parseIDPtr(r.OwnerID)
	}
	if r.Tags != nil {
		c.Tags = r.Tags
	}
	if r.Comment != nil {
		c.Comment = r.Comment
	}
	c.Version = r.Version
	return c
}

// --- Deal ---

// CreateDealRequest for creating deals.
type CreateDealRequest struct {
	Title           string     `json:"title" binding:"required"`
	Amount          string     `json:"amount"`
	Currency        string     `json:"currency"`
	PipelineID      *string    `json:"pipelineId" binding:"omitempty,uuid"`
	Stage           string     `json:"stage"`
	ContactID       *string    `json:"contactId" binding:"omitempty,uuid"`
	CompanyID       *string    `json:"companyId" binding:"omitempty,uuid"`
	OwnerID         *string    `json:"ownerId" binding:"omitempty,uuid"`
	ExpectedCloseAt *time.Time `json:"expectedCloseAt"`
	Comment         *string    `json:"comment"`
}

// ToEntity converts the request to a domain deal. Pipeline and stage
// are defaulted by the service when empty.
func (r CreateDealRequest) ToEntity() (*deal.Deal, error) {
	var pipelineID id.ID
	if p := parseIDPtr(r.PipelineID); p != nil {
		pipelineID = *p
	}

	d := deal.NewDeal(r.Title, pipelineID, r.Stage)
	if r.Amount != "" {
		amount, err := types.NewMoneyFromString(r.Amount)
		if err != nil {
			return nil, err
		}
		d.Amount = amount
	}
	if r.Currency != "" {
		d.Currency = r.Currency
	}
	d.ContactID = parseIDPtr(r.ContactID)
	d.CompanyID = parseIDPtr(r.CompanyID)
	d.OwnerID = parseIDPtr(r.OwnerID)
	d.ExpectedCloseAt = r.ExpectedCloseAt
	d.Comment = r.Comment
	return d, nil
}

// UpdateDealRequest for partial deal updates. Stage changes go through
// the dedicated stage endpoint, not here.
type UpdateDealRequest struct {
	Title           *string    `json:"title"`
	Amount          *string    `json:"amount"`
	Currency        *string    `json:"currency"`
	ContactID       *string    `json:"contactId" binding:"omitempty,uuid"`
	CompanyID       *string    `json:"companyId" binding:"omitempty,uuid"`
	OwnerID         *string    `json:"ownerId" binding:"omitempty,uuid"`
	ExpectedCloseAt *time.Time `json:"expectedCloseAt"`
	Comment         *string    `json:"comment"`
	Version         int        `json:"version" binding:"required,min=1"`
}

// Apply merges the request onto an existing deal.
func (r UpdateDealRequest) Apply(d *deal.Deal) (*deal.Deal, error) {
	if r.Title != nil {
		d.Title = *r.Title
	}
	if r.Amount != nil {
		amount, err := types.NewMoneyFromString(*r.Amount)
		if err != nil {
			return nil, err
		}
		d.Amount = amount
	}
	if r.Currency != nil {
		d.Currency = *r.Currency
	}
	if r.ContactID != nil {
		d.ContactID = parseIDPtr(r.ContactID)
	}
	if r.CompanyID != nil {
		d.CompanyID = parseIDPtr(r.CompanyID)
	}
	if r.OwnerID != nil {
		d.OwnerID = parseIDPtr(r.OwnerID)
	}
	if r.ExpectedCloseAt != nil {
		d.ExpectedCloseAt = r.ExpectedCloseAt
	}
	if r.Comment != nil {
		d.Comment = r.Comment
	}
	d.Version = r.Version
	return d, nil
}

// MoveStageRequest moves a deal to another stage of its pipeline.
type MoveStageRequest struct {
	Stage string `json:"stage" binding:"required"`
}

// ForecastResponse is the weighted pipeline forecast, amounts keyed by
// stage slug.
type ForecastResponse struct {
	PipelineID string            `json:"pipelineId"`
	Stages     map[string]string `json:"stages"`
}

// NewForecastResponse formats decimal amounts as strings.
func NewForecastResponse(pipelineID id.ID, stages map[string]types.Money) ForecastResponse {
	out := make(map[string]string, len(stages))
	for slug, amount := range stages {
		out[slug] = amount.String()
	}
	return ForecastResponse{
		PipelineID: pipelineID.String(),
		Stages:     out,
	}
}

// --- Pipeline ---

// StageRequest is one stage in a pipeline payload.
type StageRequest struct {
	Slug        string `json:"slug" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Probability int    `json:"probability" binding:"min=0,max=100"`
	IsWon       bool   `json:"isWon"`
	IsLost      bool   `json:"isLost"`
}

// CreatePipelineRequest for creating pipelines. Stages may be omitted
// to get the standard funnel.
type CreatePipelineRequest struct {
	Name   string         `json:"name" binding:"required"`
	Stages []StageRequest `json:"stages"`
}

// ToEntity converts the request to a domain pipeline.
func (r CreatePipelineRequest) ToEntity() *pipeline.Pipeline {
	stages := make(pipeline.Stages, len(r.Stages))
	for i, s := range r.Stages {
		stages[i] = pipeline.Stage{
			Slug:        s.Slug,
			Name:        s.Name,
			Probability: s.Probability,
			IsWon:       s.IsWon,
			IsLost:      s.IsLost,
		}
	}
	if len(stages) == 0 {
		stages = pipeline.DefaultStages()
	}
	return pipeline.NewPipeline(r.Name, stages)
}

// UpdatePipelineRequest for pipeline updates. Stages replace the whole
// list when present.
type UpdatePipelineRequest struct {
	Name    *string        `json:"name"`
	Stages  []StageRequest `json:"stages"`
	Version int            `json:"version" binding:"required,min=1"`
}

// Apply merges the request onto an existing pipeline.
func (r UpdatePipelineRequest) Apply(p *pipeline.Pipeline) *pipeline.Pipeline {
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.Stages != nil {
		stages := make(pipeline.Stages, len(r.Stages))
		for i, s := range r.Stages {
			stages[i] = pipeline.Stage{
				Slug:        s.Slug,
				Name:        s.Name,
				Probability: s.Probability,
				IsWon:       s.IsWon,
				IsLost:      s.IsLost,
			}
		}
		p.Stages = stages
	}
	p.Version = r.Version
	return p
}

// --- Segment ---

// CreateSegmentRequest for creating segments.
type CreateSegmentRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
	Expression  string  `json:"expression" binding:"required"`
}

// ToEntity converts the request to a domain segment.
func (r CreateSegmentRequest) ToEntity() *segment.Segment {
	s := segment.NewSegment(r.Name, r.Expression)
	s.Description = r.Description
	return s
}

// UpdateSegmentRequest for partial segment updates.
type UpdateSegmentRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Expression  *string `json:"expression"`
	Version     int     `json:"version" binding:"required,min=1"`
}

// Apply merges the request onto an existing segment.
func (r UpdateSegmentRequest) Apply(s *segment.Segment) *segment.Segment {
	if r.Name != nil {
		s.Name = *r.Name
	}
	if r.Description != nil {
		s.Description = r.Description
	}
	if r.Expression != nil {
		s.Expression = *r.Expression
	}
	s.Version = r.Version
	return s
}

// ValidateExpressionRequest checks a segment expression without saving.
type ValidateExpressionRequest struct {
	Expression string `json:"expression" binding:"required"`
}

// ValidateExpressionResponse reports compile result.
type ValidateExpressionResponse struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// --- Settings items ---

// CreateSettingsItemRequest for creating lookup items (tags, statuses,
// lead sources). Kind comes from the route.
type CreateSettingsItemRequest struct {
	Slug     string  `json:"slug" binding:"required"`
	Name     string  `json:"name" binding:"required"`
	Color    *string `json:"color"`
	Position int     `json:"position"`
}

// ToEntity converts the request to a domain item of the given kind.
func (r CreateSettingsItemRequest) ToEntity(kind settings.Kind) *settings.Item {
	item := settings.NewItem(kind, r.Slug, r.Name)
	item.Color = r.Color
	item.Position = r.Position
	return item
}

// UpdateSettingsItemRequest for lookup item updates. Slug and kind are
// immutable.
type UpdateSettingsItemRequest struct {
	Name     *string `json:"name"`
	Color    *string `json:"color"`
	Position *int    `json:"position"`
	Version  int     `json:"version" binding:"required,min=1"`
}

// Apply merges the request onto an existing item.
func (r UpdateSettingsItemRequest) Apply(i *settings.Item) *settings.Item {
	if r.Name != nil {
		i.Name = *r.Name
	}
	if r.Color != nil {
		i.Color = r.Color
	}
	if r.Position != nil {
		i.Position = *r.Position
	}
	i.Version = r.Version
	return i
}
