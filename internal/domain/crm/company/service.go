package company

import (
	"context"

	"omnicrm/internal/core/apperror"
	"omnicrm/internal/domain"
	"omnicrm/internal/domain/audit"
)

// Service provides business logic for the Company record.
type Service struct {
	*domain.RecordService[*Company]
	repo Repository
}

// NewService creates a new Company service.
func NewService(repo Repository) *Service {
	base := domain.NewRecordService(domain.RecordServiceConfig[*Company]{
		Repo:       repo,
		TxManager:  nil,
		EntityName: "company",
	})

	svc := &Service{
		RecordService: base,
		repo:          repo,
	}

	base.Hooks().OnBeforeCreate(svc.prepareForCreate)
	base.Hooks().OnBeforeUpdate(svc.prepareForUpdate)

	return svc
}

func (s *Service) prepareForCreate(ctx context.Context, c *Company) error {
	if err := audit.EnrichCreatedBy(ctx, c); err != nil {
		return err
	}
	return s.checkDomainUnique(ctx, c)
}

func (s *Service) prepareForUpdate(ctx context.Context, c *Company) error {
	if err := audit.EnrichUpdatedBy(ctx, c); err != nil {
		return err
	}
	return s.checkDomainUnique(ctx, c)
}

func (s *Service) checkDomainUnique(ctx context.Context, c *Company) error {
	if c.Domain == nil || *c.Domain == "" {
		return nil
	}
	existing, err := s.repo.FindByDomain(ctx, *c.Domain)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != c.ID {
		return apperror.NewConflict("company with this domain already exists").
			WithDetail("domain", *c.Domain)
	}
	return nil
}

// FindByDomain retrieves company by web domain.
func (s *Service) FindByDomain(ctx context.Context, domain string) (*Company, error) {
	return s.repo.FindByDomain(ctx, domain)
}
