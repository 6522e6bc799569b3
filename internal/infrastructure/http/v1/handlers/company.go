package handlers

import (
	"omnicrm/internal/domain/crm/company"
	"omnicrm/internal/infrastructure/http/v1/dto"
)

// CompanyHandler is the generic record handler for companies.
type CompanyHandler struct {
	*RecordHandler[*company.Company, dto.CreateCompanyRequest, dto.UpdateCompanyRequest]
	service *company.Service
}

// NewCompanyHandler creates a new company handler.
func NewCompanyHandler(base *BaseHandler, service *company.Service) *CompanyHandler {
	rh := NewRecordHandler(base, RecordHandlerConfig[*company.Company, dto.CreateCompanyRequest, dto.UpdateCompanyRequest]{
		Service:    service.RecordService,
		EntityName: "company",
		MapCreateDTO: func(req dto.CreateCompanyRequest) (*company.Company, error) {
			return req.ToEntity(), nil
		},
		MapUpdateDTO: func(req dto.UpdateCompanyRequest, existing *company.Company) (*company.Company, error) {
			return req.Apply(existing), nil
		},
	})

	return &CompanyHandler{
		RecordHandler: rh,
		service:       service,
	}
}
