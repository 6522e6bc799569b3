package settings

import (
	"context"

	"omnicrm/internal/core/apperror"
	"omnicrm/internal/domain"
	"omnicrm/internal/domain/audit"
)

// Service provides business logic for workspace lookup items.
type Service struct {
	*domain.RecordService[*Item]
	repo Repository
}

// NewService creates a new settings service.
func NewService(repo Repository) *Service {
	base := domain.NewRecordService(domain.RecordServiceConfig[*Item]{
		Repo:       repo,
		TxManager:  nil,
		EntityName: "settings item",
	})

	svc := &Service{
		RecordService: base,
		repo:          repo,
	}

	base.Hooks().OnBeforeCreate(svc.prepareForCreate)
	base.Hooks().OnBeforeUpdate(func(ctx context.Context, i *Item) error {
		return audit.EnrichUpdatedBy(ctx, i)
	})

	return svc
}

func (s *Service) prepareForCreate(ctx context.Context, i *Item) error {
	if err := audit.EnrichCreatedBy(ctx, i); err != nil {
		return err
	}

	existing, err := s.repo.FindBySlug(ctx, i.Kind, i.Slug)
	if err != nil && !apperror.IsNotFound(err) {
		return err
	}
	if err == nil && existing.ID != i.ID {
		return apperror.NewDuplicate("settings item", "slug", i.Slug)
	}
	return nil
}

// ListByKind retrieves items of one kind ordered by position.
func (s *Service) ListByKind(ctx context.Context, kind Kind) ([]Item, error) {
	if !isValidKind(kind) {
		return nil, apperror.NewValidation("invalid item kind").
			WithDetail("value", string(kind))
	}
	return s.repo.ListByKind(ctx, kind)
}
